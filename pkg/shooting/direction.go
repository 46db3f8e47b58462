package shooting

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/lights"
)

// Direction is the shooting frame of one light aimed at one target's
// bounding sphere. ToCenter points from the light at the target; Up and
// Left complete an orthonormal basis around it.
type Direction struct {
	Light  *lights.Light
	Target core.BoundingSphere

	Origin   core.Vec3 // light location, or the projected center for parallel lights
	ToCenter core.Vec3
	Up       core.Vec3
	Left     core.Vec3
	Dist     float64 // distance from Origin to the target center
}

// NewDirection computes the shooting frame from the light's position
func NewDirection(light *lights.Light, target core.BoundingSphere) Direction {
	d := Direction{Light: light, Target: target, Origin: light.Position}
	d.compute()
	return d
}

func (d *Direction) compute() {
	if d.Light.IsParallel() {
		// rays leave a plane through the light perpendicular to its direction;
		// center the pattern on the target's projection onto that plane
		d.ToCenter = d.Light.Direction()
		along := d.Target.Center.Subtract(d.Light.Position).Dot(d.ToCenter)
		d.Origin = d.Target.Center.Subtract(d.ToCenter.Multiply(along))
		d.Dist = along
	} else {
		toCenter := d.Target.Center.Subtract(d.Origin)
		d.Dist = toCenter.Length()
		d.ToCenter = toCenter.Normalize()
	}

	if math.Abs(math.Abs(d.ToCenter.Z)-1) < 1e-6 {
		d.Up = core.NewVec3(1, 0, 0)
	} else {
		d.Up = core.NewVec3(0, 0, 1)
	}
	d.Left = d.Up.Cross(d.ToCenter).Normalize()
	d.Up = d.ToCenter.Cross(d.Left).Normalize()
}

// ForAreaSample returns the frame for grid cell (i, j) of an area light
func (d Direction) ForAreaSample(i, j int) Direction {
	d.Origin = d.Light.AreaPoint(i, j)
	d.compute()
	return d
}

// Ray returns the photon ray for spiral coordinates (theta, phi). For
// parallel lights theta is a distance from the pattern center, otherwise
// it is the angle from ToCenter.
func (d Direction) Ray(theta, phi float64) core.Ray {
	sinPhi, cosPhi := math.Sincos(phi)
	if d.Light.IsParallel() {
		offset := d.Up.Multiply(theta * cosPhi).Add(d.Left.Multiply(theta * sinPhi))
		return core.NewRay(d.Origin.Add(offset), d.ToCenter)
	}

	sinTheta, cosTheta := math.Sincos(theta)
	dir := d.ToCenter.Multiply(cosTheta).
		Add(d.Up.Multiply(sinTheta * cosPhi)).
		Add(d.Left.Multiply(sinTheta * sinPhi))
	return core.NewRay(d.Origin, dir)
}
