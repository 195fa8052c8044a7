// Package selection resolves pointer input to scene objects and maintains
// multi-object selection state, with a single primary selection that
// drives the external transform tool.
package selection

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"modelpaint/internal/scene"
)

// Listener is called after every selection change with the current
// selection (insertion order) and primary object.
type Listener func(selected []*scene.Object, primary *scene.Object)

// Engine owns the set of selected scene objects and the primary selection.
// Exactly one Engine instance exists per editor session; all selection
// state lives here rather than in process-wide globals.
type Engine struct {
	mu sync.RWMutex

	// Selection state. The slice keeps insertion order so that primary
	// reassignment can pick the most recently selected remaining member.
	selected []*scene.Object
	members  map[*scene.Object]bool
	primary  *scene.Object

	// Per-selected-object overlay nodes, owned exclusively by the engine.
	visuals map[*scene.Object]*scene.Object

	// Candidate list and the capability table derived from it, both
	// recomputed by RefreshSelectableObjects. selectableRoot maps every
	// node in a candidate subtree to its selectable root.
	candidates     []*scene.Object
	selectableRoot map[*scene.Object]*scene.Object

	raycaster scene.Raycaster
	overlays  scene.OverlayHost

	tool     TransformTool
	orbit    OrbitControl
	gizmo    map[*scene.Object]bool // Pick exclusion set for the bound tool
	dragging bool

	listeners []Listener
}

// NewEngine creates an engine with no selection. The raycaster and overlay
// host are supplied by the external renderer.
func NewEngine(raycaster scene.Raycaster, overlays scene.OverlayHost) *Engine {
	return &Engine{
		members:        make(map[*scene.Object]bool),
		visuals:        make(map[*scene.Object]*scene.Object),
		selectableRoot: make(map[*scene.Object]*scene.Object),
		gizmo:          make(map[*scene.Object]bool),
		raycaster:      raycaster,
		overlays:       overlays,
	}
}

// OnChange registers a selection-changed listener.
func (e *Engine) OnChange(fn Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Selected returns the selected objects in insertion order.
func (e *Engine) Selected() []*scene.Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*scene.Object, len(e.selected))
	copy(out, e.selected)
	return out
}

// Primary returns the primary selection, or nil when nothing is selected.
func (e *Engine) Primary() *scene.Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.primary
}

// IsSelected reports whether the object is currently selected.
func (e *Engine) IsSelected(o *scene.Object) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.members[o]
}

// SelectObject selects an object and makes it primary. With replace, the
// prior selection is cleared first. Re-selecting an already-selected
// object without replace leaves the selection and primary unchanged.
// Objects that fail the selectability check are ignored.
func (e *Engine) SelectObject(o *scene.Object, replace bool) {
	if o == nil || !scene.SelectableFlag(o) {
		return
	}

	e.mu.Lock()
	if !replace && e.members[o] {
		e.mu.Unlock()
		return
	}
	if replace {
		e.clearLocked()
	}
	e.addLocked(o)
	e.mu.Unlock()

	e.rebindTool()
	e.notify()
}

// ToggleObject selects the object if absent and deselects it if present.
func (e *Engine) ToggleObject(o *scene.Object) {
	if o == nil {
		return
	}
	e.mu.RLock()
	present := e.members[o]
	e.mu.RUnlock()

	if present {
		e.DeselectObject(o)
	} else {
		e.SelectObject(o, false)
	}
}

// SelectRange replaces the selection with every object between a and b,
// inclusive, in the supplied ordered list. No-op if either endpoint is
// missing from the list.
func (e *Engine) SelectRange(a, b *scene.Object, ordered []*scene.Object) {
	ia, ib := -1, -1
	for i, o := range ordered {
		if o == a {
			ia = i
		}
		if o == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return
	}
	if ia > ib {
		ia, ib = ib, ia
	}

	e.mu.Lock()
	e.clearLocked()
	for _, o := range ordered[ia : ib+1] {
		if scene.SelectableFlag(o) {
			e.addLocked(o)
		}
	}
	e.mu.Unlock()

	e.rebindTool()
	e.notify()
}

// DeselectObject removes an object from the selection. Passing nil
// deselects the primary selection. Unknown objects are a no-op.
func (e *Engine) DeselectObject(o *scene.Object) {
	e.mu.Lock()
	if o == nil {
		o = e.primary
	}
	if o == nil || !e.members[o] {
		e.mu.Unlock()
		return
	}
	e.removeLocked(o)
	e.mu.Unlock()

	e.rebindTool()
	e.notify()
}

// DeselectAll empties the selection, destroys all selection visuals, and
// detaches the transform tool.
func (e *Engine) DeselectAll() {
	e.mu.Lock()
	if len(e.selected) == 0 {
		e.mu.Unlock()
		return
	}
	e.clearLocked()
	e.mu.Unlock()

	e.rebindTool()
	e.notify()
}

// DeleteSelected deselects every selected object, then removes it from the
// scene graph and releases its renderer resources. Objects whose resources
// are already released are tolerated.
func (e *Engine) DeleteSelected() {
	e.mu.Lock()
	doomed := make([]*scene.Object, len(e.selected))
	copy(doomed, e.selected)
	e.clearLocked()

	// Prune deleted objects from the candidate list so cycling does not
	// land on removed nodes before the next refresh.
	if len(doomed) > 0 {
		kept := e.candidates[:0]
		gone := make(map[*scene.Object]bool, len(doomed))
		for _, o := range doomed {
			gone[o] = true
		}
		for _, c := range e.candidates {
			if !gone[c] {
				kept = append(kept, c)
			}
		}
		e.candidates = kept
	}
	e.mu.Unlock()

	for _, o := range doomed {
		o.RemoveFromParent()
		if !o.Released() {
			o.Release()
		}
	}

	e.rebindTool()
	e.notify()
}

// ResolvePick casts a ray against the maintained candidate list and
// returns the nearest hit's selectable root, or nil. Picks are suppressed
// while the transform tool is dragging, and hits on the tool's own gizmo
// are filtered out. An empty or stale candidate list yields nil.
func (e *Engine) ResolvePick(origin, dir r3.Vec) *scene.Object {
	e.mu.RLock()
	if e.dragging || len(e.candidates) == 0 {
		e.mu.RUnlock()
		return nil
	}
	candidates := make([]*scene.Object, len(e.candidates))
	copy(candidates, e.candidates)
	e.mu.RUnlock()

	hits := e.raycaster.Cast(scene.NewRay(origin, dir), candidates)

	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, hit := range hits {
		if e.onGizmoLocked(hit.Object) {
			continue
		}
		if root := e.selectableRoot[hit.Object]; root != nil {
			return root
		}
	}
	return nil
}

// Cycle replaces the selection with the next (direction > 0) or previous
// candidate relative to the current primary, wrapping at both ends.
func (e *Engine) Cycle(direction int) {
	e.mu.RLock()
	n := len(e.candidates)
	if n == 0 {
		e.mu.RUnlock()
		return
	}
	current := -1
	for i, c := range e.candidates {
		if c == e.primary {
			current = i
			break
		}
	}
	step := 1
	if direction < 0 {
		step = -1
	}
	var next *scene.Object
	if current < 0 {
		next = e.candidates[0]
	} else {
		next = e.candidates[(current+step+n)%n]
	}
	e.mu.RUnlock()

	e.SelectObject(next, true)
}

// RefreshSelectableObjects recomputes the candidate list from the direct
// scene children: lights, helpers, and explicitly non-selectable nodes are
// excluded, and only composites that transitively contain a drawable
// primitive are kept. The selectability walk is resolved here, once per
// refresh, into a lookup used by ResolvePick.
func (e *Engine) RefreshSelectableObjects(children []*scene.Object) {
	candidates := make([]*scene.Object, 0, len(children))
	index := make(map[*scene.Object]*scene.Object)

	for _, child := range children {
		if child.Kind == scene.KindLight || child.Kind == scene.KindHelper {
			continue
		}
		if !scene.SelectableFlag(child) {
			continue
		}
		if !scene.ContainsDrawable(child) {
			continue
		}
		candidates = append(candidates, child)
		root := child
		scene.Walk(child, func(o *scene.Object) {
			index[o] = root
		})
	}

	e.mu.Lock()
	e.candidates = candidates
	e.selectableRoot = index
	e.mu.Unlock()
}

// Candidates returns the maintained candidate list.
func (e *Engine) Candidates() []*scene.Object {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*scene.Object, len(e.candidates))
	copy(out, e.candidates)
	return out
}

// BindTransformTool connects the transform tool and camera-orbit control.
// The gizmo pick-exclusion set is refreshed here and again on every
// reattach. While the tool reports dragging, pick resolution is suppressed
// and the orbit control is disabled.
func (e *Engine) BindTransformTool(tool TransformTool, orbit OrbitControl) {
	e.mu.Lock()
	e.tool = tool
	e.orbit = orbit
	e.refreshGizmoLocked()
	e.mu.Unlock()

	tool.OnDragging(func(dragging bool) {
		e.mu.Lock()
		e.dragging = dragging
		orbit := e.orbit
		e.mu.Unlock()
		if orbit != nil {
			orbit.SetEnabled(!dragging)
		}
	})

	e.rebindTool()
}

// Dragging reports whether the bound transform tool is mid-drag.
func (e *Engine) Dragging() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dragging
}

// Dispose destroys all selection visuals and detaches the tool. The engine
// must not be used afterwards.
func (e *Engine) Dispose() {
	e.mu.Lock()
	e.clearLocked()
	tool := e.tool
	e.tool = nil
	e.mu.Unlock()

	if tool != nil {
		tool.Detach()
	}
}

// addLocked inserts an object, creates its visual, and makes it primary.
// Caller must hold mu.
func (e *Engine) addLocked(o *scene.Object) {
	if !e.members[o] {
		e.members[o] = true
		e.selected = append(e.selected, o)
		e.createVisualLocked(o)
	}
	e.primary = o
}

// removeLocked removes one member and reassigns the primary selection to
// the most recently selected remaining member (nil when the set empties).
// Caller must hold mu.
func (e *Engine) removeLocked(o *scene.Object) {
	delete(e.members, o)
	for i, s := range e.selected {
		if s == o {
			e.selected = append(e.selected[:i], e.selected[i+1:]...)
			break
		}
	}
	e.destroyVisualLocked(o)

	if e.primary == o {
		if len(e.selected) > 0 {
			e.primary = e.selected[len(e.selected)-1]
		} else {
			e.primary = nil
		}
	}
}

// clearLocked empties the selection and destroys every visual.
// Caller must hold mu.
func (e *Engine) clearLocked() {
	for _, o := range e.selected {
		e.destroyVisualLocked(o)
	}
	e.selected = e.selected[:0]
	e.members = make(map[*scene.Object]bool)
	e.primary = nil
}

// refreshGizmoLocked rebuilds the pick-exclusion set from the bound tool.
// Caller must hold mu.
func (e *Engine) refreshGizmoLocked() {
	e.gizmo = make(map[*scene.Object]bool)
	if e.tool == nil {
		return
	}
	for _, g := range e.tool.GizmoObjects() {
		scene.Walk(g, func(o *scene.Object) {
			e.gizmo[o] = true
		})
	}
}

// onGizmoLocked reports whether the object or an ancestor belongs to the
// transform tool's gizmo. Caller must hold mu.
func (e *Engine) onGizmoLocked(o *scene.Object) bool {
	for n := o; n != nil; n = n.Parent {
		if e.gizmo[n] {
			return true
		}
	}
	return false
}

// rebindTool points the transform tool at the current primary selection,
// detaching it when nothing is selected, and refreshes the gizmo
// exclusion set.
func (e *Engine) rebindTool() {
	e.mu.Lock()
	tool := e.tool
	primary := e.primary
	if tool != nil {
		e.refreshGizmoLocked()
	}
	e.mu.Unlock()

	if tool == nil {
		return
	}
	if primary != nil {
		tool.Attach(primary)
	} else {
		tool.Detach()
	}
}

// notify calls every listener with a snapshot of the selection state.
func (e *Engine) notify() {
	e.mu.RLock()
	listeners := make([]Listener, len(e.listeners))
	copy(listeners, e.listeners)
	selected := make([]*scene.Object, len(e.selected))
	copy(selected, e.selected)
	primary := e.primary
	e.mu.RUnlock()

	for _, fn := range listeners {
		fn(selected, primary)
	}
}
