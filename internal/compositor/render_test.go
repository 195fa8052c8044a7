package compositor

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modelpaint/pkg/geometry"
)

// redCentroid locates the centroid of strongly red pixels on a surface.
func redCentroid(s *Surface) (geometry.Point2D, int) {
	var sumX, sumY float64
	count := 0
	b := s.RGBA.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := s.RGBA.RGBAAt(x, y)
			if c.R > 180 && c.G < 90 && c.B < 90 {
				sumX += float64(x)
				sumY += float64(y)
				count++
			}
		}
	}
	if count == 0 {
		return geometry.Point2D{}, 0
	}
	return geometry.NewPoint2D(sumX/float64(count), sumY/float64(count)), count
}

func TestRenderCentroidProportionalAcrossSurfaceSizes(t *testing.T) {
	s := NewStack()
	s.AddLayer(solidImage(50, 50, color.RGBA{255, 0, 0, 255}), Placement{})
	s.ClearSelection()

	small := NewSurface(100, 100, false)
	large := NewSurface(300, 200, false)

	s.Render(small)
	s.Render(large)

	cSmall, nSmall := redCentroid(small)
	cLarge, nLarge := redCentroid(large)
	require.NotZero(t, nSmall)
	require.NotZero(t, nLarge)

	// A layer at normalized center (0.5, 0.5) sits at the midpoint of
	// every target regardless of its pixel size.
	assert.InDelta(t, 50, cSmall.X, 1.5)
	assert.InDelta(t, 50, cSmall.Y, 1.5)
	assert.InDelta(t, 150, cLarge.X, 1.5)
	assert.InDelta(t, 100, cLarge.Y, 1.5)
}

func TestRenderBackgroundFill(t *testing.T) {
	s := NewStack()
	target := NewSurface(64, 64, false)
	s.Render(target)

	assert.Equal(t, backgroundColor, target.RGBA.RGBAAt(0, 0))
	assert.Equal(t, backgroundColor, target.RGBA.RGBAAt(63, 63))
}

func TestRenderSkipsHiddenLayers(t *testing.T) {
	s := NewStack()
	l := s.AddLayer(solidImage(50, 50, color.RGBA{255, 0, 0, 255}), Placement{})
	l.Visible = false
	s.ClearSelection()

	target := NewSurface(100, 100, false)
	s.Render(target)

	_, n := redCentroid(target)
	assert.Zero(t, n)
}

// hasSelectionColor reports whether any pixel matches the decoration color.
func hasSelectionColor(s *Surface) bool {
	b := s.RGBA.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if s.RGBA.RGBAAt(x, y) == selectionColor {
				return true
			}
		}
	}
	return false
}

func TestSelectionDecorationOnlyOnInteractiveSurface(t *testing.T) {
	s := NewStack()
	s.AddLayer(solidImage(50, 50, color.RGBA{255, 0, 0, 255}), Placement{})

	interactive := NewSurface(128, 128, true)
	export := NewSurface(128, 128, false)

	s.Render(interactive)
	s.Render(export)

	assert.True(t, hasSelectionColor(interactive), "interactive surface should carry decoration")
	assert.False(t, hasSelectionColor(export), "export surface must stay decoration-free")
}

func TestExportRenderIdenticalWithAndWithoutSelection(t *testing.T) {
	s := NewStack()
	s.AddLayer(solidImage(50, 50, color.RGBA{255, 0, 0, 255}), Placement{})

	selected := NewSurface(96, 96, false)
	s.Render(selected)

	s.ClearSelection()
	deselected := NewSurface(96, 96, false)
	s.Render(deselected)

	assert.Equal(t, selected.RGBA.Pix, deselected.RGBA.Pix,
		"export output must not depend on selection state")
}

func TestRenderOpacityBlendsWithBackground(t *testing.T) {
	s := NewStack()
	l := s.AddLayer(solidImage(50, 50, color.RGBA{255, 0, 0, 255}), Placement{})
	l.Opacity = 0.5
	s.ClearSelection()

	target := NewSurface(100, 100, false)
	s.Render(target)

	center := target.RGBA.RGBAAt(50, 50)
	assert.Less(t, int(center.R), 220, "half-opacity red should darken toward background")
	assert.Greater(t, int(center.R), 100)
}

func TestRotatedLayerCorners(t *testing.T) {
	s := NewStack()
	size := geometry.NewSize(0.4, 0.2)
	l := s.AddLayer(solidImage(40, 20, color.RGBA{255, 0, 0, 255}), Placement{
		Size:     &size,
		Rotation: 1.5707963267948966, // quarter turn
	})

	corners := l.Corners()
	box := geometry.BoundingBox(corners[:])

	// A quarter turn swaps the extents around the center.
	assert.InDelta(t, 0.2, box.Width, 1e-9)
	assert.InDelta(t, 0.4, box.Height, 1e-9)
}
