package selection

import (
	"modelpaint/internal/scene"
)

// TransformTool is the external gizmo that moves, rotates, and scales the
// primary selection. The engine attaches it to at most one object at a
// time and observes its dragging signal.
type TransformTool interface {
	// Attach binds the tool to an object, replacing any previous target.
	Attach(o *scene.Object)
	// Detach unbinds the tool from its current target, if any.
	Detach()
	// OnDragging subscribes to the tool's dragging signal. The callback
	// fires with true when a drag starts and false when it ends.
	OnDragging(fn func(dragging bool))
	// GizmoObjects enumerates the tool's own visual sub-objects so picks
	// on the gizmo are never interpreted as scene picks.
	GizmoObjects() []*scene.Object
}

// OrbitControl is the external camera-orbit collaborator. The engine
// disables it for the duration of a transform drag and restores it after.
type OrbitControl interface {
	SetEnabled(enabled bool)
}
