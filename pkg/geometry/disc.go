package geometry

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
)

// Disc represents a circular disc in 3D space
type Disc struct {
	Center core.Vec3 // Center of the disc
	Normal core.Vec3 // Normal vector (pointing "up" from the disc)
	Radius float64   // Radius of the disc
	Right  core.Vec3 // Right vector (perpendicular to normal)
	Up     core.Vec3 // Up vector (perpendicular to normal and right)
}

// NewDisc creates a new disc
func NewDisc(center, normal core.Vec3, radius float64) *Disc {
	normalNormalized := normal.Normalize()

	// Create orthogonal vectors
	var right core.Vec3
	if math.Abs(normalNormalized.X) > 0.1 {
		right = core.NewVec3(0, 1, 0)
	} else {
		right = core.NewVec3(1, 0, 0)
	}

	right = right.Cross(normalNormalized).Normalize()
	up := normalNormalized.Cross(right).Normalize()

	return &Disc{
		Center: center,
		Normal: normalNormalized,
		Radius: radius,
		Right:  right,
		Up:     up,
	}
}

// intersect returns the ray parameter where the ray crosses the disc
func (d *Disc) intersect(ray core.Ray) (float64, bool) {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-8 {
		return 0, false // Ray is parallel to disc
	}

	t := d.Normal.Dot(d.Center.Subtract(ray.Origin)) / denom
	if ray.At(t).Subtract(d.Center).LengthSquared() > d.Radius*d.Radius {
		return 0, false // Outside disc
	}
	return t, true
}

// Hit implements the Shape interface
func (d *Disc) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	t, ok := d.intersect(ray)
	if !ok || t < tMin || t > tMax {
		return nil, false
	}

	hitRecord := &HitRecord{
		Point: ray.At(t),
		T:     t,
	}
	hitRecord.SetFaceNormal(ray, d.Normal)

	return hitRecord, true
}

// Intersections returns the single crossing in front of the ray origin, if any
func (d *Disc) Intersections(ray core.Ray) []float64 {
	t, ok := d.intersect(ray)
	if !ok || t <= intersectionEpsilon {
		return nil
	}
	return []float64{t}
}

// BoundingBox implements the Shape interface
func (d *Disc) BoundingBox() core.AABB {
	// The disc extends radius along right and up
	rightExtent := d.Right.Multiply(d.Radius)
	upExtent := d.Up.Multiply(d.Radius)

	return core.NewAABBFromPoints(
		d.Center.Add(rightExtent).Add(upExtent),
		d.Center.Add(rightExtent).Subtract(upExtent),
		d.Center.Subtract(rightExtent).Add(upExtent),
		d.Center.Subtract(rightExtent).Subtract(upExtent),
	)
}
