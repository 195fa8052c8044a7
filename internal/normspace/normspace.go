// Package normspace defines the normalized coordinate space in which layer
// geometry is expressed. Both axes range over [0,1] regardless of the pixel
// size of the surface being rendered to, so the same layer stack can be
// drawn consistently onto surfaces of different resolutions.
package normspace

import (
	"fmt"

	"modelpaint/pkg/geometry"
)

// ToSurface maps a normalized-space scalar to a pixel scalar for a surface
// of the given size. Panics if surfaceSize is not positive: that is a
// caller contract violation, not a recoverable condition.
func ToSurface(v float64, surfaceSize int) float64 {
	if surfaceSize <= 0 {
		panic(fmt.Sprintf("normspace: non-positive surface size %d", surfaceSize))
	}
	return v * float64(surfaceSize)
}

// FromSurface is the exact inverse of ToSurface for the same surfaceSize.
func FromSurface(px float64, surfaceSize int) float64 {
	if surfaceSize <= 0 {
		panic(fmt.Sprintf("normspace: non-positive surface size %d", surfaceSize))
	}
	return px / float64(surfaceSize)
}

// PointToSurface maps a normalized point onto a width x height surface.
func PointToSurface(p geometry.Point2D, width, height int) geometry.Point2D {
	return geometry.Point2D{
		X: ToSurface(p.X, width),
		Y: ToSurface(p.Y, height),
	}
}

// PointFromSurface maps a pixel point back into normalized space.
func PointFromSurface(p geometry.Point2D, width, height int) geometry.Point2D {
	return geometry.Point2D{
		X: FromSurface(p.X, width),
		Y: FromSurface(p.Y, height),
	}
}

// RectToSurface maps a normalized rectangle onto a width x height surface.
func RectToSurface(r geometry.Rect, width, height int) geometry.Rect {
	return geometry.Rect{
		X:      ToSurface(r.X, width),
		Y:      ToSurface(r.Y, height),
		Width:  ToSurface(r.Width, width),
		Height: ToSurface(r.Height, height),
	}
}
