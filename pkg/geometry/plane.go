package geometry

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point  core.Vec3 // A point on the plane
	Normal core.Vec3 // Normal vector (normalized)
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3) *Plane {
	return &Plane{
		Point:  point,
		Normal: normal.Normalize(),
	}
}

// intersect returns the ray parameter where the ray meets the plane
func (p *Plane) intersect(ray core.Ray) (float64, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Ray is parallel to plane
	if math.Abs(denominator) < 1e-8 {
		return 0, false
	}
	return p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator, true
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	t, ok := p.intersect(ray)
	if !ok || t < tMin || t > tMax {
		return nil, false
	}

	hitRecord := &HitRecord{
		T:     t,
		Point: ray.At(t),
	}
	hitRecord.SetFaceNormal(ray, p.Normal)

	return hitRecord, true
}

// Intersections returns the single crossing in front of the ray origin, if any
func (p *Plane) Intersections(ray core.Ray) []float64 {
	t, ok := p.intersect(ray)
	if !ok || t <= intersectionEpsilon {
		return nil
	}
	return []float64{t}
}

// BoundingBox returns a bounding box for this plane
func (p *Plane) BoundingBox() core.AABB {
	const largeValue = 1e6
	const epsilon = 0.001 // Small thickness to avoid zero-width bounding box

	switch getAxisAlignment(p.Normal) {
	case XAxisAligned:
		x := p.Point.X
		return core.NewAABB(
			core.NewVec3(x-epsilon, -largeValue, -largeValue),
			core.NewVec3(x+epsilon, largeValue, largeValue),
		)
	case YAxisAligned:
		y := p.Point.Y
		return core.NewAABB(
			core.NewVec3(-largeValue, y-epsilon, -largeValue),
			core.NewVec3(largeValue, y+epsilon, largeValue),
		)
	case ZAxisAligned:
		z := p.Point.Z
		return core.NewAABB(
			core.NewVec3(-largeValue, -largeValue, z-epsilon),
			core.NewVec3(largeValue, largeValue, z+epsilon),
		)
	default:
		// Not axis-aligned - use large bounding box (less optimal but correct)
		return core.NewAABB(
			core.NewVec3(-largeValue, -largeValue, -largeValue),
			core.NewVec3(largeValue, largeValue, largeValue),
		)
	}
}

// AxisAlignment describes which axis a plane normal is aligned to
type AxisAlignment int

const (
	NotAxisAligned AxisAlignment = iota
	XAxisAligned
	YAxisAligned
	ZAxisAligned
)

func getAxisAlignment(normal core.Vec3) AxisAlignment {
	const tolerance = 1e-6
	switch {
	case math.Abs(math.Abs(normal.X)-1) < tolerance:
		return XAxisAligned
	case math.Abs(math.Abs(normal.Y)-1) < tolerance:
		return YAxisAligned
	case math.Abs(math.Abs(normal.Z)-1) < tolerance:
		return ZAxisAligned
	default:
		return NotAxisAligned
	}
}
