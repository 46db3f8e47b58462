package photonmap

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/geometry"
	"github.com/df07/go-photonmap/pkg/lights"
	"github.com/df07/go-photonmap/pkg/photon"
	"github.com/df07/go-photonmap/pkg/scene"
	"github.com/df07/go-photonmap/pkg/shooting"
)

// testLogger collects log lines
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *testLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// depositTracer deposits one surface photon per traced ray and reports every ray as a hit
type depositTracer struct {
	calls     atomic.Int64
	noDeposit bool
	onTrace   func()
}

func (d *depositTracer) TracePhoton(ray core.Ray, color core.Vec3, ticket *shooting.Ticket) bool {
	d.calls.Add(1)
	if d.onTrace != nil {
		d.onTrace()
	}
	if !d.noDeposit {
		ticket.Deposit(photon.Surface, ray.At(1), ray.Direction, color)
	}
	return true
}

// newTestScene creates two glass spheres under a point light
func newTestScene() *scene.Scene {
	left := scene.NewObject("left", geometry.NewSphere(core.NewVec3(-2, 0, 0), 1), scene.NewGlass(1.5))
	left.PhotonTarget = true
	right := scene.NewObject("right", geometry.NewSphere(core.NewVec3(2, 0, 0), 1), scene.NewGlass(1.5))
	right.PhotonTarget = true

	settings := config.Default()
	settings.SurfaceSeparation = 0.1
	settings.Workers = 2

	return &scene.Scene{
		Name:    "test",
		Objects: []*scene.Object{left, right},
		Lights:  []*lights.Light{lights.NewPointLight(core.NewVec3(0, 5, 0), core.NewVec3(1, 1, 1))},
		Photons: settings,
	}
}
