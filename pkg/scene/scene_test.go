package scene

import (
	"math"
	"testing"

	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/geometry"
)

func TestWalk_OrderAndSkip(t *testing.T) {
	a := NewObject("a", geometry.NewSphere(core.Vec3{}, 1), NewDiffuse(core.NewVec3(1, 1, 1)))
	b := NewObject("b", geometry.NewSphere(core.Vec3{}, 1), NewDiffuse(core.NewVec3(1, 1, 1)))
	c := NewObject("c", geometry.NewSphere(core.Vec3{}, 1), NewDiffuse(core.NewVec3(1, 1, 1)))
	inner := NewGroup("inner", b, c)
	outer := NewGroup("outer", a, inner)
	d := NewObject("d", geometry.NewSphere(core.Vec3{}, 1), NewDiffuse(core.NewVec3(1, 1, 1)))

	var visited []string
	Walk([]*Object{outer, d}, func(node *Object, _ Context) bool {
		visited = append(visited, node.Name)
		return true
	})
	expected := []string{"outer", "a", "inner", "b", "c", "d"}
	if len(visited) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, visited)
	}
	for i := range expected {
		if visited[i] != expected[i] {
			t.Fatalf("Expected %v, got %v", expected, visited)
		}
	}

	visited = nil
	Walk([]*Object{outer, d}, func(node *Object, _ Context) bool {
		visited = append(visited, node.Name)
		return node.Name != "inner"
	})
	if len(visited) != 4 {
		t.Errorf("Expected children of inner to be skipped, got %v", visited)
	}
}

func TestWalk_DeepNesting(t *testing.T) {
	leaf := NewObject("leaf", geometry.NewSphere(core.Vec3{}, 1), NewDiffuse(core.NewVec3(1, 1, 1)))
	node := leaf
	for i := 0; i < 100000; i++ {
		node = NewGroup("group", node)
	}

	prims := Primitives([]*Object{node})
	if len(prims) != 1 || prims[0] != leaf {
		t.Errorf("Expected the single leaf, got %d primitives", len(prims))
	}
}

func TestWalk_Context(t *testing.T) {
	s := NewLightGroupScene()

	contexts := map[string]Context{}
	Walk(s.Objects, func(node *Object, ctx Context) bool {
		contexts[node.Name] = ctx
		return true
	})

	if ctx := contexts["left glass"]; ctx.Group == nil || ctx.Group.Name != "left group" || ctx.NoGlobalLights {
		t.Errorf("Unexpected context for left glass: %+v", ctx)
	}
	if ctx := contexts["right mirror"]; ctx.Group == nil || ctx.Group.Name != "right group" || !ctx.NoGlobalLights {
		t.Errorf("Unexpected context for right mirror: %+v", ctx)
	}
	if ctx := contexts["ground"]; ctx.Group != nil || ctx.Depth != 0 {
		t.Errorf("Unexpected context for ground: %+v", ctx)
	}
}

func TestObject_BoundingSphere(t *testing.T) {
	group := NewGroup("pair",
		NewObject("left", geometry.NewSphere(core.NewVec3(-1, 0, 0), 1), NewDiffuse(core.NewVec3(1, 1, 1))),
		NewObject("right", geometry.NewSphere(core.NewVec3(1, 0, 0), 1), NewDiffuse(core.NewVec3(1, 1, 1))),
	)

	sphere := group.BoundingSphere()
	if sphere.Center.Length() > 1e-12 {
		t.Errorf("Expected center at origin, got %v", sphere.Center)
	}
	expected := math.Sqrt(4 + 1 + 1)
	if math.Abs(sphere.Radius-expected) > 1e-12 {
		t.Errorf("Expected radius %v, got %v", expected, sphere.Radius)
	}
}

func TestScene_Targets(t *testing.T) {
	s := NewDefaultScene()
	targets := s.Targets()

	names := map[string]bool{}
	for _, o := range targets {
		names[o.Name] = true
	}
	for _, want := range []string{"glass sphere", "mirror sphere", "hollow glass", "mirror panel"} {
		if !names[want] {
			t.Errorf("Expected target %q, got %v", want, names)
		}
	}
	if names["outer shell"] {
		t.Error("Children of a compound target must not be separate targets")
	}
}

func TestBuiltinScenes(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := Builtin(name)
			if err != nil {
				t.Fatalf("Builtin(%q) failed: %v", name, err)
			}
			if err := s.Validate(); err != nil {
				t.Errorf("Expected valid scene, got %v", err)
			}
			if len(s.Targets()) == 0 {
				t.Error("Expected at least one photon target")
			}
		})
	}

	if _, err := Builtin("missing"); err == nil {
		t.Error("Expected error for unknown scene")
	}
}

func TestScene_ValidateRejectsEmptyObject(t *testing.T) {
	s := NewDefaultScene()
	s.Objects = append(s.Objects, &Object{Name: "empty"})
	if err := s.Validate(); err == nil {
		t.Error("Expected error for object without shape or children")
	}
}

func TestFog_Contains(t *testing.T) {
	fog := &Fog{Bounds: core.NewAABB(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))}
	if !fog.Contains(core.NewVec3(0.5, 0.5, 0.5)) {
		t.Error("Expected point inside fog")
	}
	if fog.Contains(core.NewVec3(1.5, 0.5, 0.5)) {
		t.Error("Expected point outside fog")
	}
}
