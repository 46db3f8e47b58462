package geometry

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
)

// Box represents an axis-aligned rectangular box
type Box struct {
	Center core.Vec3 // Center point of the box
	Size   core.Vec3 // Half-extents along each axis
	bbox   core.AABB // Cached bounds
}

// NewBox creates a new axis-aligned box with the given center and half-extents,
// so a size of (1,1,1) creates a 2x2x2 box
func NewBox(center, size core.Vec3) *Box {
	return &Box{
		Center: center,
		Size:   size,
		bbox:   core.NewAABB(center.Subtract(size), center.Add(size)),
	}
}

// slabs returns the ray's entry and exit distances through the box and the
// axes of the entry and exit faces
func (b *Box) slabs(ray core.Ray) (tNear, tFar float64, nearAxis, farAxis int, ok bool) {
	tNear, tFar = math.Inf(-1), math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin.Axis(axis)
		dir := ray.Direction.Axis(axis)
		lo, hi := b.bbox.Min.Axis(axis), b.bbox.Max.Axis(axis)

		if math.Abs(dir) < 1e-12 {
			if origin < lo || origin > hi {
				return 0, 0, 0, 0, false
			}
			continue
		}

		t0 := (lo - origin) / dir
		t1 := (hi - origin) / dir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear, nearAxis = t0, axis
		}
		if t1 < tFar {
			tFar, farAxis = t1, axis
		}
		if tNear > tFar {
			return 0, 0, 0, 0, false
		}
	}
	return tNear, tFar, nearAxis, farAxis, true
}

// faceNormal returns the outward normal of the face on axis containing point
func (b *Box) faceNormal(point core.Vec3, axis int) core.Vec3 {
	var n [3]float64
	if point.Axis(axis) >= b.Center.Axis(axis) {
		n[axis] = 1
	} else {
		n[axis] = -1
	}
	return core.NewVec3(n[0], n[1], n[2])
}

// Hit tests if a ray intersects with any face of the box
func (b *Box) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	tNear, tFar, nearAxis, farAxis, ok := b.slabs(ray)
	if !ok {
		return nil, false
	}

	root, axis := tNear, nearAxis
	if root < tMin || root > tMax {
		root, axis = tFar, farAxis
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	hitRecord := &HitRecord{
		T:     root,
		Point: ray.At(root),
	}
	hitRecord.SetFaceNormal(ray, b.faceNormal(hitRecord.Point, axis))
	return hitRecord, true
}

// Intersections returns the entry and exit distances in front of the ray origin
func (b *Box) Intersections(ray core.Ray) []float64 {
	tNear, tFar, _, _, ok := b.slabs(ray)
	if !ok {
		return nil
	}
	var ts []float64
	if tNear > intersectionEpsilon {
		ts = append(ts, tNear)
	}
	if tFar > intersectionEpsilon && tFar != tNear {
		ts = append(ts, tFar)
	}
	return ts
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox
}
