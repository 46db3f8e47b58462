package tracer

import (
	"math"

	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/geometry"
	"github.com/df07/go-photonmap/pkg/photon"
	"github.com/df07/go-photonmap/pkg/scene"
	"github.com/df07/go-photonmap/pkg/shooting"
)

// rayEpsilon offsets secondary rays from the surface they leave
const rayEpsilon = 1e-4

// PhotonTracer follows photons through a scene's specular surfaces and
// deposits them where they land. Surface photons are stored on diffuse
// surfaces reached after at least one specular bounce; global photons on
// diffuse surfaces reached after a diffuse bounce; media photons along
// segments through the scene's fog after a specular bounce.
//
// A PhotonTracer only reads the scene and is safe for concurrent use.
type PhotonTracer struct {
	primitives []*scene.Object
	owners     map[*scene.Object]*scene.Object // primitive -> enclosing photon target
	bvh        *geometry.BVH
	fog        *scene.Fog
}

// New prepares a tracer for s
func New(s *scene.Scene) *PhotonTracer {
	primitives := s.Primitives()
	shapes := make([]geometry.Shape, len(primitives))
	for i, p := range primitives {
		shapes[i] = p.Shape
	}

	owners := make(map[*scene.Object]*scene.Object)
	for _, target := range s.Targets() {
		for _, p := range scene.Primitives([]*scene.Object{target}) {
			owners[p] = target
		}
	}

	return &PhotonTracer{
		primitives: primitives,
		owners:     owners,
		bvh:        geometry.NewBVH(shapes),
		fog:        s.Fog,
	}
}

// TracePhoton implements shooting.Tracer
func (pt *PhotonTracer) TracePhoton(ray core.Ray, color core.Vec3, ticket *shooting.Ticket) bool {
	ray.Direction = ray.Direction.Normalize()
	specular := false
	diffuse := false

	for level := 0; level < ticket.MaxTraceLevel; level++ {
		hit, index, ok := pt.bvh.Hit(ray, rayEpsilon, math.Inf(1))

		tEnd := math.Inf(1)
		if ok {
			tEnd = hit.T
		}
		if specular {
			color = pt.depositMedia(ray, tEnd, color, ticket)
		}
		if !ok {
			return level > 0
		}

		obj := pt.primitives[index]
		if level == 0 && pt.owners[obj] != ticket.Target {
			// photons that miss the target are left to direct lighting
			return false
		}

		var next core.Vec3
		switch obj.Finish.Kind {
		case scene.FinishDiffuse:
			if !obj.IgnorePhotons {
				switch {
				case specular:
					ticket.Deposit(photon.Surface, hit.Point, ray.Direction, color)
				case diffuse && ticket.GlobalEnabled:
					ticket.Deposit(photon.Global, hit.Point, ray.Direction, color)
				}
			}
			if !ticket.GlobalEnabled {
				return true
			}
			next = core.SampleCosineHemisphere(hit.Normal, ticket.Sampler.Get2D())
			color = color.MultiplyVec(obj.Finish.Albedo)
			specular, diffuse = false, true

		case scene.FinishMirror:
			if !ticket.Reflection {
				return true
			}
			next = reflectVector(ray.Direction, hit.Normal)
			color = color.MultiplyVec(obj.Finish.Albedo)
			specular = true

		case scene.FinishGlass:
			dir, weight, scattered := pt.scatterGlass(ray.Direction, hit, obj.Finish, ticket)
			if !scattered {
				return true
			}
			next = dir
			color = color.MultiplyVec(obj.Finish.Albedo).Multiply(weight)
			specular = true
		}

		if color.MaxComponent() < ticket.ADCBailout {
			return true
		}
		ray = core.NewRay(hit.Point, next.Normalize())
	}
	return true
}

// scatterGlass chooses reflection or refraction at a dielectric surface.
// With both modes allowed the choice is random with Fresnel probability;
// with one mode only, the photon takes it and is weighted by its Fresnel share.
func (pt *PhotonTracer) scatterGlass(dir core.Vec3, hit *geometry.HitRecord, finish scene.Finish, ticket *shooting.Ticket) (core.Vec3, float64, bool) {
	ratio := finish.RefractiveIndex
	if hit.FrontFace {
		ratio = 1.0 / finish.RefractiveIndex
	}

	cosTheta := math.Min(-dir.Dot(hit.Normal), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)
	if ratio*sinTheta > 1.0 {
		// total internal reflection
		if !ticket.Reflection {
			return core.Vec3{}, 0, false
		}
		return reflectVector(dir, hit.Normal), 1, true
	}

	r := reflectance(cosTheta, ratio)
	switch {
	case ticket.Reflection && ticket.Refraction:
		if ticket.Sampler.Get1D() < r {
			return reflectVector(dir, hit.Normal), 1, true
		}
		return refractVector(dir, hit.Normal, ratio), 1, true
	case ticket.Refraction:
		return refractVector(dir, hit.Normal, ratio), 1 - r, true
	case ticket.Reflection:
		return reflectVector(dir, hit.Normal), r, true
	default:
		return core.Vec3{}, 0, false
	}
}

// depositMedia stores photons at MediaSpread intervals along the part of
// ray [0, tEnd) inside the fog and returns the colour left after extinction
func (pt *PhotonTracer) depositMedia(ray core.Ray, tEnd float64, color core.Vec3, ticket *shooting.Ticket) core.Vec3 {
	fog := pt.fog
	if fog == nil || fog.Density <= 0 {
		return color
	}

	tNear, tFar, ok := clipToBox(ray, fog.Bounds, 0, tEnd)
	if !ok {
		return color
	}

	if ticket.MaxMediaSteps > 0 && ticket.MediaSpread > 0 {
		scattered := color.MultiplyVec(fog.Color).Multiply(1 - math.Exp(-fog.Density*ticket.MediaSpread))
		t := tNear + ticket.MediaSpread*ticket.Sampler.Get1D()
		for steps := 0; t < tFar && steps < ticket.MaxMediaSteps; steps++ {
			transmitted := math.Exp(-fog.Density * (t - tNear))
			ticket.Deposit(photon.Media, ray.At(t), ray.Direction, scattered.Multiply(transmitted))
			t += ticket.MediaSpread
		}
	}

	return color.Multiply(math.Exp(-fog.Density * (tFar - tNear)))
}

// clipToBox returns the part of [tMin, tMax] where ray is inside box
func clipToBox(ray core.Ray, box core.AABB, tMin, tMax float64) (float64, float64, bool) {
	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin.Axis(axis)
		dir := ray.Direction.Axis(axis)
		lo, hi := box.Min.Axis(axis), box.Max.Axis(axis)

		if math.Abs(dir) < 1e-12 {
			if origin < lo || origin > hi {
				return 0, 0, false
			}
			continue
		}
		t0 := (lo - origin) / dir
		t1 := (hi - origin) / dir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math.Max(tMin, t0)
		tMax = math.Min(tMax, t1)
		if tMin >= tMax {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}
