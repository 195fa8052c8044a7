// Package compositor provides ordered raster layer management and
// multi-surface compositing in normalized coordinate space.
package compositor

import (
	"image"

	"github.com/google/uuid"

	"modelpaint/pkg/geometry"
)

// defaultPlacementFraction caps the larger dimension of a newly placed
// layer at this fraction of normalized space.
const defaultPlacementFraction = 0.75

// Layer represents one placed raster image. Geometry is expressed in
// normalized [0,1] space; the source raster is shared and read-only and
// must outlive the layer.
type Layer struct {
	ID       string
	Source   image.Image // Decoded raster data, never mutated
	Center   geometry.Point2D
	Size     geometry.Size // Width/Height in normalized units, both > 0
	Rotation float64       // Radians, counter-clockwise
	Opacity  float64       // 0.0 - 1.0
	Visible  bool
	Selected bool
}

// Placement controls where and how AddLayer places a new layer.
// The zero value requests default placement: centered, with the larger
// dimension capped at 75% of normalized space.
type Placement struct {
	Center   *geometry.Point2D
	Size     *geometry.Size
	Rotation float64
	Opacity  float64 // 0 means fully opaque
}

// newLayer builds a layer for the given source with placement applied.
func newLayer(src image.Image, placement Placement) *Layer {
	l := &Layer{
		ID:      uuid.NewString(),
		Source:  src,
		Center:  geometry.NewPoint2D(0.5, 0.5),
		Opacity: 1.0,
		Visible: true,
	}

	l.Size = defaultSize(src)
	if placement.Size != nil {
		l.Size = *placement.Size
	}
	if placement.Center != nil {
		l.Center = *placement.Center
	}
	l.Rotation = placement.Rotation
	if placement.Opacity > 0 {
		l.Opacity = placement.Opacity
	}
	return l
}

// defaultSize preserves the source aspect ratio while capping the larger
// dimension at defaultPlacementFraction of normalized space.
func defaultSize(src image.Image) geometry.Size {
	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w <= 0 || h <= 0 {
		return geometry.NewSize(defaultPlacementFraction, defaultPlacementFraction)
	}
	if w >= h {
		return geometry.NewSize(defaultPlacementFraction, defaultPlacementFraction*h/w)
	}
	return geometry.NewSize(defaultPlacementFraction*w/h, defaultPlacementFraction)
}

// Bounds returns the axis-aligned normalized bounds of the layer,
// ignoring rotation. Hit testing is defined over these bounds.
func (l *Layer) Bounds() geometry.Rect {
	return geometry.RectAround(l.Center, l.Size)
}

// Corners returns the layer's four corners in normalized space with
// rotation applied, clockwise from the top-left.
func (l *Layer) Corners() [4]geometry.Point2D {
	corners := l.Bounds().Corners()
	if l.Rotation != 0 {
		for i := range corners {
			corners[i] = corners[i].RotateAround(l.Center, l.Rotation)
		}
	}
	return corners
}
