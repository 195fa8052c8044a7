// Package scene defines the boundary to the external 3D renderer: scene
// graph nodes, ray casting against candidate objects, and overlay hosting.
// The renderer itself (cameras, shading, model loading) lives outside this
// module and is consumed only through these types.
package scene

// Kind classifies a scene graph node.
type Kind int

const (
	KindGroup Kind = iota
	KindMesh
	KindLight
	KindHelper
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "Group"
	case KindMesh:
		return "Mesh"
	case KindLight:
		return "Light"
	case KindHelper:
		return "Helper"
	default:
		return "Unknown"
	}
}

// Object is a handle to a node in the external scene graph. Identity is by
// pointer. Selectable is a tri-state declaration: nil means undeclared, and
// the effective flag is found by walking the ancestor chain.
type Object struct {
	Name       string
	Kind       Kind
	Parent     *Object
	Children   []*Object
	Bounds     AABB  // World-space bounds, meaningful for meshes
	Selectable *bool // Explicit declaration, nil = undeclared

	released bool
}

// NewObject creates a named node of the given kind.
func NewObject(name string, kind Kind) *Object {
	return &Object{Name: name, Kind: kind}
}

// AddChild attaches a child node.
func (o *Object) AddChild(child *Object) {
	child.Parent = o
	o.Children = append(o.Children, child)
}

// RemoveFromParent detaches the node from its parent. No-op for roots or
// nodes already detached.
func (o *Object) RemoveFromParent() {
	p := o.Parent
	if p == nil {
		return
	}
	for i, c := range p.Children {
		if c == o {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	o.Parent = nil
}

// Release marks the node's renderer resources as released. Releasing an
// already-released node is a no-op.
func (o *Object) Release() {
	o.released = true
}

// Released reports whether renderer resources have been released.
func (o *Object) Released() bool {
	return o.released
}

// SelectableFlag resolves the effective selectability of a node by walking
// its ancestor chain until a node declares the flag explicitly. Absence of
// any declaration means not selectable. Callers resolve this once per
// candidate refresh, not per pick.
func SelectableFlag(o *Object) bool {
	for n := o; n != nil; n = n.Parent {
		if n.Selectable != nil {
			return *n.Selectable
		}
	}
	return false
}

// ContainsDrawable reports whether the node or any descendant is a
// drawable primitive.
func ContainsDrawable(o *Object) bool {
	if o.Kind == KindMesh {
		return true
	}
	for _, c := range o.Children {
		if ContainsDrawable(c) {
			return true
		}
	}
	return false
}

// Walk visits the node and all descendants depth-first.
func Walk(o *Object, visit func(*Object)) {
	visit(o)
	for _, c := range o.Children {
		Walk(c, visit)
	}
}

// OverlayHost is the renderer-side facility for attaching and removing
// visual overlay nodes (selection wireframes, helpers).
type OverlayHost interface {
	AddOverlay(o *Object)
	RemoveOverlay(o *Object)
}
