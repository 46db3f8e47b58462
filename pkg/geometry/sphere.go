package geometry

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) *Sphere {
	return &Sphere{
		Center: center,
		Radius: radius,
	}
}

// roots returns both solutions of the ray/sphere quadratic, nearest first
func (s *Sphere) roots(ray core.Ray) (t0, t1 float64, ok bool) {
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	if a == 0 {
		return 0, 0, false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, 0, false
	}

	sqrtD := math.Sqrt(discriminant)
	return (-halfB - sqrtD) / a, (-halfB + sqrtD) / a, true
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	t0, t1, ok := s.roots(ray)
	if !ok {
		return nil, false
	}

	// Try the closer intersection point first
	root := t0
	if root < tMin || root > tMax {
		root = t1
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	hitRecord := &HitRecord{
		T:     root,
		Point: ray.At(root),
	}

	// Calculate outward normal (from center to hit point)
	outwardNormal := hitRecord.Point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	hitRecord.SetFaceNormal(ray, outwardNormal)

	return hitRecord, true
}

// Intersections returns the entry and exit distances in front of the ray origin
func (s *Sphere) Intersections(ray core.Ray) []float64 {
	t0, t1, ok := s.roots(ray)
	if !ok {
		return nil
	}
	var ts []float64
	if t0 > intersectionEpsilon {
		ts = append(ts, t0)
	}
	if t1 > intersectionEpsilon && t1 != t0 {
		ts = append(ts, t1)
	}
	return ts
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	)
}
