// Package app provides editor session state, configuration, and events.
package app

import (
	"sync"

	"modelpaint/internal/compositor"
	"modelpaint/internal/raster"
	"modelpaint/internal/scene"
	"modelpaint/internal/selection"
	"modelpaint/pkg/geometry"
)

// State holds the editor session: the layer stack, the selection engine,
// the scene root, and event listeners. One State exists per session and is
// passed by reference to event handlers; there are no process-wide
// selection or mode globals.
type State struct {
	mu sync.RWMutex

	// Layer compositing
	Stack *compositor.Stack

	// Scene selection
	Selection *selection.Engine
	SceneRoot *scene.Object

	// Starter image library, filled by the optional boot stage
	Library []*raster.Source

	Modified bool

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different editor events.
type EventType int

const (
	EventLayersChanged EventType = iota
	EventLayerSelected
	EventSelectionChanged
	EventSceneChanged
	EventLibraryLoaded
	EventModified
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new editor state around the given selection engine.
func NewState(engine *selection.Engine, root *scene.Object) *State {
	s := &State{
		Stack:     compositor.NewStack(),
		Selection: engine,
		SceneRoot: root,
		listeners: make(map[EventType][]EventListener),
	}

	if engine != nil {
		engine.OnChange(func(selected []*scene.Object, primary *scene.Object) {
			s.Emit(EventSelectionChanged, primary)
		})
	}
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the session as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// AddLayer places a raster source as a new top layer.
func (s *State) AddLayer(src *raster.Source, placement compositor.Placement) *compositor.Layer {
	layer := s.Stack.AddLayer(src.Image, placement)
	s.SetModified(true)
	s.Emit(EventLayersChanged, nil)
	s.Emit(EventLayerSelected, layer.ID)
	return layer
}

// RemoveLayer deletes a layer. Unknown ids are a no-op.
func (s *State) RemoveLayer(id string) {
	s.Stack.RemoveLayer(id)
	s.SetModified(true)
	s.Emit(EventLayersChanged, nil)
}

// MoveLayerUp raises a layer one step in the z-order.
func (s *State) MoveLayerUp(id string) {
	s.Stack.MoveLayerUp(id)
	s.SetModified(true)
	s.Emit(EventLayersChanged, nil)
}

// MoveLayerDown lowers a layer one step in the z-order.
func (s *State) MoveLayerDown(id string) {
	s.Stack.MoveLayerDown(id)
	s.SetModified(true)
	s.Emit(EventLayersChanged, nil)
}

// SelectLayerAt hit-tests the stack at a normalized point and selects the
// topmost layer found, clearing layer selection on a miss.
func (s *State) SelectLayerAt(p geometry.Point2D) *compositor.Layer {
	layer := s.Stack.HitTest(p)
	if layer == nil {
		s.Stack.ClearSelection()
		s.Emit(EventLayerSelected, "")
		return nil
	}
	s.Stack.SelectLayer(layer.ID)
	s.Emit(EventLayerSelected, layer.ID)
	return layer
}

// DeleteSelectedObjects removes the selected scene objects and their
// renderer resources.
func (s *State) DeleteSelectedObjects() {
	if s.Selection == nil {
		return
	}
	s.Selection.DeleteSelected()
	s.SetModified(true)
	s.Emit(EventSceneChanged, nil)
}

// RefreshSelectables recomputes the selection engine's candidate list from
// the scene root's direct children.
func (s *State) RefreshSelectables() {
	if s.Selection == nil || s.SceneRoot == nil {
		return
	}
	s.Selection.RefreshSelectableObjects(s.SceneRoot.Children)
}

// SetLibrary stores the starter image library.
func (s *State) SetLibrary(sources []*raster.Source) {
	s.mu.Lock()
	s.Library = sources
	s.mu.Unlock()
	s.Emit(EventLibraryLoaded, len(sources))
}
