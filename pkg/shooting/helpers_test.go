package shooting

import (
	"math"
	"sync"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/geometry"
	"github.com/df07/go-photonmap/pkg/scene"
)

func newTarget(name string, center core.Vec3, radius float64) *scene.Object {
	o := scene.NewObject(name, geometry.NewSphere(center, radius), scene.NewGlass(1.5))
	o.PhotonTarget = true
	return o
}

func testSettings() config.Photons {
	settings := config.Default()
	settings.Workers = 2
	return settings
}

// recordingTracer records every traced ray and reports a hit when the
// ray's direction is within hitAngle of axis
type recordingTracer struct {
	mu       sync.Mutex
	axis     core.Vec3
	hitAngle float64
	rays     []core.Ray
	colors   []core.Vec3
	depths   []float64
}

func (r *recordingTracer) TracePhoton(ray core.Ray, color core.Vec3, ticket *Ticket) bool {
	r.mu.Lock()
	r.rays = append(r.rays, ray)
	r.colors = append(r.colors, color)
	r.depths = append(r.depths, ticket.InitialDepth)
	r.mu.Unlock()

	cos := ray.Direction.Normalize().Dot(r.axis)
	hit := math.Acos(math.Max(-1, math.Min(1, cos))) < r.hitAngle
	if hit {
		ticket.Deposit(0, ray.At(1), ray.Direction, color)
	}
	return hit
}
