package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"modelpaint/internal/normspace"
	"modelpaint/pkg/geometry"
)

// backgroundColor fills surfaces before layers are drawn.
var backgroundColor = color.RGBA{40, 40, 40, 255}

// selectionColor is used for the selected layer's outline and handles on
// interactive surfaces.
var selectionColor = color.RGBA{64, 156, 255, 255}

// Surface is a concrete pixel target for Render. Interactive surfaces get
// selection decoration; export surfaces must stay pixel-identical to what
// the end consumer sees, so they never do.
type Surface struct {
	RGBA        *image.RGBA
	Interactive bool
}

// NewSurface allocates a surface of the given pixel size.
func NewSurface(width, height int, interactive bool) *Surface {
	return &Surface{
		RGBA:        image.NewRGBA(image.Rect(0, 0, width, height)),
		Interactive: interactive,
	}
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.RGBA.Bounds().Dx() }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.RGBA.Bounds().Dy() }

// Render clears the target to the background color and draws every visible
// layer bottom-to-top, scaled to the target's pixel size. The same stack
// state renders geometrically consistent results on surfaces of any size.
func (s *Stack) Render(target *Surface) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dst := target.RGBA
	draw.Draw(dst, dst.Bounds(), &image.Uniform{backgroundColor}, image.Point{}, draw.Src)

	for _, id := range s.order {
		l := s.layers[id]
		if l == nil || l.Source == nil || !l.Visible {
			continue
		}
		renderLayer(dst, l, target.Width(), target.Height())
	}

	if !target.Interactive {
		return
	}
	if sel, ok := s.layers[s.selected]; ok && sel.Visible {
		drawSelectionDecoration(dst, sel, target.Width(), target.Height())
	}
}

// renderLayer draws one layer onto dst with its position, rotation, and
// opacity applied, mapping normalized geometry to pixels.
func renderLayer(dst *image.RGBA, l *Layer, width, height int) {
	srcBounds := l.Source.Bounds()
	srcW := float64(srcBounds.Dx())
	srcH := float64(srcBounds.Dy())
	if srcW <= 0 || srcH <= 0 {
		return
	}

	destW := normspace.ToSurface(l.Size.Width, width)
	destH := normspace.ToSurface(l.Size.Height, height)
	center := normspace.PointToSurface(l.Center, width, height)

	sx := destW / srcW
	sy := destH / srcH
	sin, cos := math.Sincos(l.Rotation)

	// dst = translate(center) * rotate * scale * translate(-srcCenter)
	a := cos * sx
	b := -sin * sy
	c := sin * sx
	d := cos * sy
	srcCx := float64(srcBounds.Min.X) + srcW/2
	srcCy := float64(srcBounds.Min.Y) + srcH/2
	m := f64.Aff3{
		a, b, center.X - a*srcCx - b*srcCy,
		c, d, center.Y - c*srcCx - d*srcCy,
	}

	var opts *xdraw.Options
	if l.Opacity < 1.0 {
		alpha := uint8(clamp(l.Opacity, 0, 1) * 255)
		opts = &xdraw.Options{
			SrcMask: image.NewUniform(color.Alpha{A: alpha}),
		}
	}
	xdraw.BiLinear.Transform(dst, m, l.Source, srcBounds, xdraw.Over, opts)
}

// handleExtent returns the half-size of a corner resize handle in pixels,
// scaled with the surface so handles stay usable at any resolution.
func handleExtent(width, height int) int {
	extent := min(width, height) / 100
	if extent < 3 {
		extent = 3
	}
	return extent
}

// drawSelectionDecoration draws the rotated outline and corner resize
// handles for the selected layer.
func drawSelectionDecoration(dst *image.RGBA, l *Layer, width, height int) {
	corners := l.Corners()
	var px [4]geometry.Point2D
	for i, c := range corners {
		px[i] = normspace.PointToSurface(c, width, height)
	}

	for i := 0; i < 4; i++ {
		next := px[(i+1)%4]
		drawLine(dst, int(px[i].X), int(px[i].Y), int(next.X), int(next.Y), selectionColor, 1)
	}

	extent := handleExtent(width, height)
	for _, p := range px {
		fillSquare(dst, int(p.X), int(p.Y), extent, selectionColor)
	}
}

// drawLine draws a line using integer stepping along the longer axis.
func drawLine(dst *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	steps := dx
	if dy > steps {
		steps = dy
	}
	if steps == 0 {
		setThick(dst, x1, y1, col, thickness)
		return
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := x1 + int(math.Round(t*float64(x2-x1)))
		y := y1 + int(math.Round(t*float64(y2-y1)))
		setThick(dst, x, y, col, thickness)
	}
}

// setThick sets a pixel with the given thickness, clipping to bounds.
func setThick(dst *image.RGBA, x, y int, col color.RGBA, thickness int) {
	bounds := dst.Bounds()
	for oy := 0; oy < thickness; oy++ {
		for ox := 0; ox < thickness; ox++ {
			px, py := x+ox, y+oy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				dst.SetRGBA(px, py, col)
			}
		}
	}
}

// fillSquare fills a square of the given half-extent centered at (x, y).
func fillSquare(dst *image.RGBA, x, y, extent int, col color.RGBA) {
	bounds := dst.Bounds()
	for py := y - extent; py <= y+extent; py++ {
		for px := x - extent; px <= x+extent; px++ {
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				dst.SetRGBA(px, py, col)
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
