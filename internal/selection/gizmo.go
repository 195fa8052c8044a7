package selection

import (
	"sync"

	"modelpaint/internal/scene"
)

// Gizmo is the in-module reference TransformTool. A production renderer
// supplies its own tool; Gizmo carries the same contract with three axis
// handle objects and an externally driven dragging signal.
type Gizmo struct {
	mu       sync.Mutex
	target   *scene.Object
	handles  []*scene.Object
	dragging bool
	subs     []func(bool)
}

var _ TransformTool = (*Gizmo)(nil)

// NewGizmo creates a detached gizmo with x/y/z handle objects.
func NewGizmo() *Gizmo {
	notSelectable := false
	handles := make([]*scene.Object, 0, 3)
	for _, axis := range []string{"x", "y", "z"} {
		h := scene.NewObject("gizmo-"+axis, scene.KindHelper)
		h.Selectable = &notSelectable
		handles = append(handles, h)
	}
	return &Gizmo{handles: handles}
}

// Attach binds the gizmo to an object.
func (g *Gizmo) Attach(o *scene.Object) {
	g.mu.Lock()
	g.target = o
	g.mu.Unlock()
}

// Detach unbinds the gizmo.
func (g *Gizmo) Detach() {
	g.mu.Lock()
	g.target = nil
	g.mu.Unlock()
}

// Target returns the currently attached object, or nil.
func (g *Gizmo) Target() *scene.Object {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.target
}

// OnDragging subscribes to the dragging signal.
func (g *Gizmo) OnDragging(fn func(bool)) {
	g.mu.Lock()
	g.subs = append(g.subs, fn)
	g.mu.Unlock()
}

// GizmoObjects enumerates the gizmo's own handle objects.
func (g *Gizmo) GizmoObjects() []*scene.Object {
	return g.handles
}

// SetDragging drives the dragging signal. The renderer calls this when a
// pointer grab starts or ends on a handle.
func (g *Gizmo) SetDragging(dragging bool) {
	g.mu.Lock()
	if g.dragging == dragging {
		g.mu.Unlock()
		return
	}
	g.dragging = dragging
	subs := make([]func(bool), len(g.subs))
	copy(subs, g.subs)
	g.mu.Unlock()

	for _, fn := range subs {
		fn(dragging)
	}
}

// Orbit is a minimal camera-orbit collaborator holding an enabled flag.
type Orbit struct {
	mu      sync.Mutex
	enabled bool
}

var _ OrbitControl = (*Orbit)(nil)

// NewOrbit creates an enabled orbit control.
func NewOrbit() *Orbit {
	return &Orbit{enabled: true}
}

// SetEnabled toggles the control.
func (o *Orbit) SetEnabled(enabled bool) {
	o.mu.Lock()
	o.enabled = enabled
	o.mu.Unlock()
}

// Enabled reports whether orbiting is allowed.
func (o *Orbit) Enabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.enabled
}
