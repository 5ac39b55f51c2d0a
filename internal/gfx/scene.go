package gfx

import "sort"

// Transform is the local placement of a node.
type Transform struct {
	Position Vec3
	Rotation float64 // radians, counter-clockwise
	Scale    Vec2
}

func identityTransform() Transform { return Transform{Scale: Vec2{1, 1}} }

// Matrix returns the 2D part of the transform.
func (t Transform) Matrix() Affine {
	return TRS(t.Position.XY(), t.Rotation, t.Scale)
}

// Node is an Object or a Group.
type Node interface {
	Parent() *Group
	setParent(g *Group)
}

// Object is a drawable: a geometry shaded by a material.
type Object struct {
	Transform
	Geometry *Geometry
	Material *Material

	parent *Group
}

// NewObject returns an object at the origin.
func NewObject(g *Geometry, m *Material) *Object {
	return &Object{Transform: identityTransform(), Geometry: g, Material: m}
}

func (o *Object) Parent() *Group     { return o.parent }
func (o *Object) setParent(g *Group) { o.parent = g }

// RemoveFromParent detaches the object from its group, if any.
func (o *Object) RemoveFromParent() {
	if o.parent != nil {
		o.parent.Remove(o)
	}
}

// Group is a transform node with ordered children.
type Group struct {
	Transform
	children []Node
	parent   *Group
}

// NewGroup returns an empty group with an identity transform.
func NewGroup() *Group { return &Group{Transform: identityTransform()} }

func (g *Group) Parent() *Group     { return g.parent }
func (g *Group) setParent(p *Group) { g.parent = p }

// Add appends n, moving it out of its previous group.
func (g *Group) Add(n Node) {
	if n == nil || n == Node(g) {
		return
	}
	if p := n.Parent(); p != nil {
		p.Remove(n)
	}
	n.setParent(g)
	g.children = append(g.children, n)
}

// Remove detaches n and reports whether it was a child of g.
func (g *Group) Remove(n Node) bool {
	for i, c := range g.children {
		if c == n {
			g.children = append(g.children[:i], g.children[i+1:]...)
			n.setParent(nil)
			return true
		}
	}
	return false
}

// Clear detaches every child.
func (g *Group) Clear() {
	for _, c := range g.children {
		c.setParent(nil)
	}
	g.children = g.children[:0]
}

// Children returns the child nodes in insertion order.
func (g *Group) Children() []Node { return g.children }

// Len returns the number of direct children.
func (g *Group) Len() int { return len(g.children) }

// Traverse visits every object below g in depth-first insertion order.
// Returning false from fn stops the walk.
func (g *Group) Traverse(fn func(*Object) bool) bool {
	for _, c := range g.children {
		switch n := c.(type) {
		case *Object:
			if !fn(n) {
				return false
			}
		case *Group:
			if !n.Traverse(fn) {
				return false
			}
		}
	}
	return true
}

// Scene is the root of everything a device renders.
type Scene struct {
	Root *Group
	// ClearColor fills the destination before drawing.
	ClearColor RGB
}

// NewScene returns an empty scene with a black clear color.
func NewScene() *Scene { return &Scene{Root: NewGroup()} }

// Add appends n to the root group.
func (s *Scene) Add(n Node) { s.Root.Add(n) }

// Remove detaches n from the root group.
func (s *Scene) Remove(n Node) bool { return s.Root.Remove(n) }

// Traverse visits every object in the scene.
func (s *Scene) Traverse(fn func(*Object) bool) { s.Root.Traverse(fn) }

// DrawItem is one object resolved to world space.
type DrawItem struct {
	Object *Object
	World  Affine
	Z      float64
}

// Collect resolves world transforms and returns the drawable objects ordered
// back to front: ascending world Z, insertion order within equal Z. Objects
// without geometry or material, or with disposed ones, are skipped.
func (s *Scene) Collect() []DrawItem {
	var items []DrawItem
	var walk func(g *Group, parent Affine, z float64)
	walk = func(g *Group, parent Affine, z float64) {
		world := parent.Mul(g.Matrix())
		z += g.Position.Z
		for _, c := range g.children {
			switch n := c.(type) {
			case *Group:
				walk(n, world, z)
			case *Object:
				if n.Geometry.Empty() || n.Material.Disposed() {
					continue
				}
				items = append(items, DrawItem{
					Object: n,
					World:  world.Mul(n.Matrix()),
					Z:      z + n.Position.Z,
				})
			}
		}
	}
	walk(s.Root, Identity(), 0)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Z < items[j].Z })
	return items
}
