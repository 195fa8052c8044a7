package selection

import (
	"modelpaint/internal/scene"
)

// Selection visuals are ephemeral wireframe overlay nodes, one per
// selected object, owned exclusively by the engine. They are created on
// selection, destroyed on deselection or Dispose, and never persisted.

// createVisualLocked builds the overlay node for a newly selected object
// and hands it to the overlay host. Caller must hold mu.
func (e *Engine) createVisualLocked(o *scene.Object) {
	if e.visuals[o] != nil {
		return
	}

	notSelectable := false
	visual := &scene.Object{
		Name:       o.Name + "-selection",
		Kind:       scene.KindHelper,
		Bounds:     o.Bounds,
		Selectable: &notSelectable,
	}
	e.visuals[o] = visual

	if e.overlays != nil {
		e.overlays.AddOverlay(visual)
	}
}

// destroyVisualLocked removes and releases the overlay node for an object.
// Caller must hold mu.
func (e *Engine) destroyVisualLocked(o *scene.Object) {
	visual := e.visuals[o]
	if visual == nil {
		return
	}
	delete(e.visuals, o)

	if e.overlays != nil {
		e.overlays.RemoveOverlay(visual)
	}
	visual.Release()
}
