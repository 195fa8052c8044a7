package scene

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max r3.Vec
}

// NewAABB builds a box from two opposite corners, normalizing min/max.
func NewAABB(a, b r3.Vec) AABB {
	return AABB{
		Min: r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)},
		Max: r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)},
	}
}

// Empty reports whether the box has no volume.
func (b AABB) Empty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y || b.Min.Z >= b.Max.Z
}

// Ray is a world-space ray with unit-length direction.
type Ray struct {
	Origin, Dir r3.Vec
}

// NewRay builds a ray, normalizing the direction.
func NewRay(origin, dir r3.Vec) Ray {
	n := r3.Norm(dir)
	if n > 0 {
		dir = r3.Scale(1/n, dir)
	}
	return Ray{Origin: origin, Dir: dir}
}

// Hit is one ray intersection with a scene object.
type Hit struct {
	Object   *Object
	Distance float64
	Point    r3.Vec
}

// Raycaster resolves a ray against a set of candidate objects and returns
// hits ordered nearest first. The production implementation is supplied by
// the external renderer; AABBRaycaster is the in-module reference.
type Raycaster interface {
	Cast(ray Ray, candidates []*Object) []Hit
}

// AABBRaycaster intersects rays with the world-space bounding boxes of
// drawable nodes in each candidate subtree.
type AABBRaycaster struct{}

// Cast returns every bounding-box intersection under the candidates,
// nearest first. An empty candidate list yields no hits.
func (AABBRaycaster) Cast(ray Ray, candidates []*Object) []Hit {
	var hits []Hit
	for _, c := range candidates {
		Walk(c, func(o *Object) {
			if o.Kind != KindMesh || o.Bounds.Empty() {
				return
			}
			if dist, ok := intersectAABB(ray, o.Bounds); ok {
				hits = append(hits, Hit{
					Object:   o,
					Distance: dist,
					Point:    r3.Add(ray.Origin, r3.Scale(dist, ray.Dir)),
				})
			}
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// intersectAABB is the slab test. It returns the distance to the nearest
// intersection in front of the ray origin.
func intersectAABB(ray Ray, box AABB) (float64, bool) {
	tmin := math.Inf(-1)
	tmax := math.Inf(1)

	origin := [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	dir := [3]float64{ray.Dir.X, ray.Dir.Y, ray.Dir.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}

	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
