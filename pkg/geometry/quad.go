package geometry

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
)

// Quad represents a rectangular surface defined by a corner and two edge vectors
type Quad struct {
	Corner core.Vec3 // One corner of the quad
	U      core.Vec3 // First edge vector
	V      core.Vec3 // Second edge vector
	Normal core.Vec3 // Normal vector (computed from U × V)
	D      float64   // Plane equation constant: ax + by + cz = d
	W      core.Vec3 // Cached cross product for barycentric coordinates
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner: corner,
		U:      u,
		V:      v,
		Normal: normal,
		D:      normal.Dot(corner),
		W:      normal.Multiply(1.0 / normal.Dot(cross)),
	}
}

// intersect returns the ray parameter where the ray crosses the quad
func (q *Quad) intersect(ray core.Ray) (float64, bool) {
	denominator := ray.Direction.Dot(q.Normal)
	if math.Abs(denominator) < 1e-8 {
		return 0, false
	}
	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator

	// barycentric coordinates of the hit within the quad
	hitVector := ray.At(t).Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return 0, false
	}
	return t, true
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	t, ok := q.intersect(ray)
	if !ok || t < tMin || t > tMax {
		return nil, false
	}

	hitRecord := &HitRecord{
		T:     t,
		Point: ray.At(t),
	}
	hitRecord.SetFaceNormal(ray, q.Normal)

	return hitRecord, true
}

// Intersections returns the single crossing in front of the ray origin, if any
func (q *Quad) Intersections(ray core.Ray) []float64 {
	t, ok := q.intersect(ray)
	if !ok || t <= intersectionEpsilon {
		return nil
	}
	return []float64{t}
}

// BoundingBox returns the box around the four corners, padded so a flat
// quad still has volume
func (q *Quad) BoundingBox() core.AABB {
	const padding = 0.0001
	box := core.NewAABBFromPoints(
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	)
	pad := core.NewVec3(padding, padding, padding)
	return core.NewAABB(box.Min.Subtract(pad), box.Max.Add(pad))
}
