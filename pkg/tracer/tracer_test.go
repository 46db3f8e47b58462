package tracer

import (
	"math"
	"testing"

	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/geometry"
	"github.com/df07/go-photonmap/pkg/photon"
	"github.com/df07/go-photonmap/pkg/scene"
	"github.com/df07/go-photonmap/pkg/shooting"
)

type deposit struct {
	kind  photon.Kind
	point core.Vec3
	dir   core.Vec3
	color core.Vec3
}

type collector struct {
	deposits []deposit
}

func (c *collector) deposit(kind photon.Kind, point, dir, color core.Vec3) bool {
	c.deposits = append(c.deposits, deposit{kind, point, dir, color})
	return true
}

func (c *collector) count(kind photon.Kind) int {
	n := 0
	for _, d := range c.deposits {
		if d.kind == kind {
			n++
		}
	}
	return n
}

func newTicket(target *scene.Object, c *collector) *shooting.Ticket {
	return &shooting.Ticket{
		Target:        target,
		Reflection:    true,
		Refraction:    true,
		MaxTraceLevel: 10,
		ADCBailout:    1.0 / 255.0,
		Sampler:       core.NewSeededSampler(1),
		Deposit:       c.deposit,
	}
}

// glassScene is a glass sphere floating above a diffuse floor
func glassScene() (*scene.Scene, *scene.Object, *scene.Object) {
	glass := scene.NewObject("glass", geometry.NewSphere(core.NewVec3(0, 2, 0), 1), scene.NewGlass(1.5))
	glass.PhotonTarget = true
	ground := scene.NewObject("ground", geometry.NewPlane(core.Vec3{}, core.NewVec3(0, 1, 0)), scene.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)))
	return &scene.Scene{Objects: []*scene.Object{ground, glass}}, glass, ground
}

func TestTracePhoton_RefractsOntoFloor(t *testing.T) {
	s, glass, _ := glassScene()
	pt := New(s)
	c := &collector{}
	ticket := newTicket(glass, c)
	ticket.Reflection = false

	ray := core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0, -1, 0))
	if !pt.TracePhoton(ray, core.NewVec3(1, 1, 1), ticket) {
		t.Fatal("Expected the photon to hit the target")
	}

	if len(c.deposits) != 1 || c.deposits[0].kind != photon.Surface {
		t.Fatalf("Expected one surface photon, got %+v", c.deposits)
	}
	d := c.deposits[0]
	if d.point.Length() > 1e-6 {
		t.Errorf("Expected photon straight below the sphere center, got %v", d.point)
	}
	if d.dir.Subtract(core.NewVec3(0, -1, 0)).Length() > 1e-6 {
		t.Errorf("Expected downward incoming direction, got %v", d.dir)
	}

	// two interfaces at normal incidence each transmit 1 - R0
	r0 := math.Pow((1-1.5)/(1+1.5), 2)
	expected := (1 - r0) * (1 - r0)
	if math.Abs(d.color.X-expected) > 1e-9 {
		t.Errorf("Expected transmitted power %v, got %v", expected, d.color.X)
	}
}

func TestTracePhoton_MissingTargetDiscarded(t *testing.T) {
	s, glass, _ := glassScene()
	pt := New(s)
	c := &collector{}

	// straight down next to the sphere: hits the floor first
	ray := core.NewRay(core.NewVec3(3, 10, 0), core.NewVec3(0, -1, 0))
	if pt.TracePhoton(ray, core.NewVec3(1, 1, 1), newTicket(glass, c)) {
		t.Error("Expected miss when the first hit is not the target")
	}
	if len(c.deposits) != 0 {
		t.Errorf("Expected no deposits, got %d", len(c.deposits))
	}

	// into the sky
	ray = core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0, 1, 0))
	if pt.TracePhoton(ray, core.NewVec3(1, 1, 1), newTicket(glass, c)) {
		t.Error("Expected miss for a photon leaving the scene")
	}
}

func TestTracePhoton_Mirror(t *testing.T) {
	mirror := scene.NewObject("mirror", geometry.NewBox(core.NewVec3(0, 2, 0), core.NewVec3(1, 0.1, 1)), scene.NewMirror(core.NewVec3(0.8, 0.8, 0.8)))
	mirror.PhotonTarget = true
	ground := scene.NewObject("ground", geometry.NewPlane(core.Vec3{}, core.NewVec3(0, 1, 0)), scene.NewDiffuse(core.NewVec3(1, 1, 1)))
	pt := New(&scene.Scene{Objects: []*scene.Object{ground, mirror}})

	// a photon travelling up from below bounces off the mirror's underside back down
	ray := core.NewRay(core.NewVec3(0.5, 0.5, 0), core.NewVec3(0, 1, 0))

	t.Run("reflection enabled", func(t *testing.T) {
		c := &collector{}
		if !pt.TracePhoton(ray, core.NewVec3(1, 1, 1), newTicket(mirror, c)) {
			t.Fatal("Expected target hit")
		}
		if c.count(photon.Surface) != 1 {
			t.Fatalf("Expected one surface photon, got %d", c.count(photon.Surface))
		}
		if got := c.deposits[0].color; math.Abs(got.X-0.8) > 1e-12 {
			t.Errorf("Expected mirror-tinted colour 0.8, got %v", got)
		}
	})

	t.Run("reflection disabled", func(t *testing.T) {
		c := &collector{}
		ticket := newTicket(mirror, c)
		ticket.Reflection = false
		if !pt.TracePhoton(ray, core.NewVec3(1, 1, 1), ticket) {
			t.Error("Expected target hit")
		}
		if len(c.deposits) != 0 {
			t.Errorf("Expected no deposits, got %d", len(c.deposits))
		}
	})

	t.Run("trace level exhausted", func(t *testing.T) {
		c := &collector{}
		ticket := newTicket(mirror, c)
		ticket.MaxTraceLevel = 1
		pt.TracePhoton(ray, core.NewVec3(1, 1, 1), ticket)
		if len(c.deposits) != 0 {
			t.Errorf("Expected no deposits past the trace limit, got %d", len(c.deposits))
		}
	})

	t.Run("bailout", func(t *testing.T) {
		c := &collector{}
		ticket := newTicket(mirror, c)
		ticket.ADCBailout = 0.9
		pt.TracePhoton(ray, core.NewVec3(1, 1, 1), ticket)
		if len(c.deposits) != 0 {
			t.Errorf("Expected the weakened photon to be dropped, got %d deposits", len(c.deposits))
		}
	})
}

func TestTracePhoton_IgnorePhotons(t *testing.T) {
	s, glass, ground := glassScene()
	ground.IgnorePhotons = true
	pt := New(s)
	c := &collector{}

	ray := core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0, -1, 0))
	pt.TracePhoton(ray, core.NewVec3(1, 1, 1), newTicket(glass, c))
	if len(c.deposits) != 0 {
		t.Errorf("Expected no photons on an object ignoring photons, got %d", len(c.deposits))
	}
}

func TestTracePhoton_GlobalPhotons(t *testing.T) {
	s, glass, _ := glassScene()
	ceiling := scene.NewObject("ceiling", geometry.NewPlane(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0)), scene.NewDiffuse(core.NewVec3(0.9, 0.9, 0.9)))
	s.Objects = append(s.Objects, ceiling)
	pt := New(s)

	c := &collector{}
	for i := 0; i < 50; i++ {
		ticket := newTicket(glass, c)
		ticket.Sampler = core.NewSeededSampler(int64(i))
		ticket.Reflection = false
		ticket.GlobalEnabled = true
		ray := core.NewRay(core.NewVec3(0, 4.5, 0), core.NewVec3(0, -1, 0))
		pt.TracePhoton(ray, core.NewVec3(1, 1, 1), ticket)
	}

	if c.count(photon.Surface) == 0 {
		t.Error("Expected caustic photons")
	}
	if c.count(photon.Global) == 0 {
		t.Error("Expected global photons after diffuse bounces")
	}
}

func TestTracePhoton_Media(t *testing.T) {
	s, glass, _ := glassScene()
	s.Fog = &scene.Fog{
		Bounds:  core.NewAABB(core.NewVec3(-5, 0, -5), core.NewVec3(5, 0.9, 5)),
		Density: 0.5,
		Color:   core.NewVec3(1, 1, 1),
	}
	pt := New(s)

	c := &collector{}
	ticket := newTicket(glass, c)
	ticket.Reflection = false
	ticket.MediaSpread = 0.1
	ticket.MaxMediaSteps = 5

	ray := core.NewRay(core.NewVec3(0, 10, 0), core.NewVec3(0, -1, 0))
	pt.TracePhoton(ray, core.NewVec3(1, 1, 1), ticket)

	media := c.count(photon.Media)
	if media == 0 || media > 5 {
		t.Errorf("Expected between 1 and 5 media photons, got %d", media)
	}
	for _, d := range c.deposits {
		if d.kind == photon.Media && !s.Fog.Contains(d.point) {
			t.Errorf("Media photon outside the fog at %v", d.point)
		}
	}

	// extinction through the fog dims the caustic photon
	r0 := math.Pow((1-1.5)/(1+1.5), 2)
	unfogged := (1 - r0) * (1 - r0)
	for _, d := range c.deposits {
		if d.kind == photon.Surface && d.color.X >= unfogged {
			t.Errorf("Expected fog extinction, got %v", d.color.X)
		}
	}

	// no media photons before the photon reaches the target
	c2 := &collector{}
	ticket2 := newTicket(glass, c2)
	ticket2.MediaSpread = 0.1
	ticket2.MaxMediaSteps = 5
	s.Fog.Bounds = core.NewAABB(core.NewVec3(-5, 3.5, -5), core.NewVec3(5, 9, 5))
	pt = New(s)
	ticket2.Reflection = false
	pt.TracePhoton(ray, core.NewVec3(1, 1, 1), ticket2)
	if c2.count(photon.Media) != 0 {
		t.Errorf("Expected no media photons on the light-to-target segment, got %d", c2.count(photon.Media))
	}
}

func TestClipToBox(t *testing.T) {
	box := core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))
	ray := core.NewRay(core.NewVec3(-5, 0, 0), core.NewVec3(1, 0, 0))

	tNear, tFar, ok := clipToBox(ray, box, 0, math.Inf(1))
	if !ok || math.Abs(tNear-4) > 1e-12 || math.Abs(tFar-6) > 1e-12 {
		t.Errorf("Expected [4, 6], got [%v, %v] ok=%t", tNear, tFar, ok)
	}
	if _, _, ok := clipToBox(ray, box, 0, 3); ok {
		t.Error("Expected no overlap when the segment ends before the box")
	}
}
