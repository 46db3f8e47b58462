package scene

import (
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/geometry"
	"github.com/df07/go-photonmap/pkg/lights"
)

// PhotonToggle is an object-level override of a light's photon capability
type PhotonToggle int

const (
	PhotonInherit PhotonToggle = iota // use the light's setting
	PhotonOn                          // force enable
	PhotonOff                         // force disable
)

// Object is a node of the scene graph. A node with children is a compound
// (union/CSG or light group); its Shape, if any, is ignored for traversal.
type Object struct {
	Name     string
	Shape    geometry.Shape
	Finish   Finish
	Children []*Object

	// Photon flags
	PhotonTarget   bool         // photons are shot at this object
	Spacing        float64      // multiplies the surface separation for this target; 0 means 1
	Reflection     PhotonToggle // override of the light's photon reflection
	Refraction     PhotonToggle // override of the light's photon refraction
	NoGlobalLights bool         // scene-level lights ignore this object and its children
	IgnorePhotons  bool         // photons landing on this object are not stored

	// Lights owned by a light group. They only illuminate the group's children.
	Lights []*lights.Light
}

// NewObject creates a primitive object
func NewObject(name string, shape geometry.Shape, finish Finish) *Object {
	return &Object{Name: name, Shape: shape, Finish: finish}
}

// NewGroup creates a compound object owning children
func NewGroup(name string, children ...*Object) *Object {
	return &Object{Name: name, Children: children}
}

// NewLightGroup creates a compound whose lights only shine on its children
func NewLightGroup(name string, groupLights []*lights.Light, children ...*Object) *Object {
	return &Object{Name: name, Children: children, Lights: groupLights}
}

// IsCompound reports whether the object has children
func (o *Object) IsCompound() bool {
	return len(o.Children) > 0
}

// IsLightGroup reports whether the object owns lights
func (o *Object) IsLightGroup() bool {
	return len(o.Lights) > 0
}

// ForEachChild calls fn for each direct child
func (o *Object) ForEachChild(fn func(child *Object)) {
	for _, child := range o.Children {
		fn(child)
	}
}

// SpacingMultiplier returns the target's surface separation multiplier
func (o *Object) SpacingMultiplier() float64 {
	if o.Spacing <= 0 {
		return 1.0
	}
	return o.Spacing
}

// BoundingBox returns the bounds of the object and all its descendants
func (o *Object) BoundingBox() core.AABB {
	var bbox core.AABB
	first := true
	Walk([]*Object{o}, func(node *Object, _ Context) bool {
		if node.Shape != nil && !node.IsCompound() {
			if first {
				bbox = node.Shape.BoundingBox()
				first = false
			} else {
				bbox = bbox.Union(node.Shape.BoundingBox())
			}
		}
		return true
	})
	return bbox
}

// BoundingSphere returns the sphere enclosing the object's bounds
func (o *Object) BoundingSphere() core.BoundingSphere {
	return o.BoundingBox().BoundingSphere()
}

// Context describes where a node sits in the graph during a Walk
type Context struct {
	Group          *Object         // innermost enclosing light group, nil at scene level
	GroupLights    []*lights.Light // lights of every enclosing light group
	NoGlobalLights bool            // the node or an ancestor ignores scene-level lights
	Depth          int
}

type walkEntry struct {
	node *Object
	ctx  Context
}

// Walk visits roots and their descendants depth-first in declaration order
// using an explicit stack. Returning false from fn skips the node's children.
func Walk(roots []*Object, fn func(node *Object, ctx Context) bool) {
	stack := make([]walkEntry, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, walkEntry{node: roots[i]})
	}

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node, ctx := entry.node, entry.ctx
		if node == nil {
			continue
		}
		ctx.NoGlobalLights = ctx.NoGlobalLights || node.NoGlobalLights

		if !fn(node, ctx) {
			continue
		}

		childCtx := Context{
			Group:          ctx.Group,
			GroupLights:    ctx.GroupLights,
			NoGlobalLights: ctx.NoGlobalLights,
			Depth:          ctx.Depth + 1,
		}
		if node.IsLightGroup() {
			childCtx.Group = node
			childCtx.GroupLights = append(ctx.GroupLights[:len(ctx.GroupLights):len(ctx.GroupLights)], node.Lights...)
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, walkEntry{node: node.Children[i], ctx: childCtx})
		}
	}
}

// Primitives returns every object with a shape and no children, in walk order
func Primitives(roots []*Object) []*Object {
	var out []*Object
	Walk(roots, func(node *Object, _ Context) bool {
		if node.Shape != nil && !node.IsCompound() {
			out = append(out, node)
		}
		return true
	})
	return out
}
