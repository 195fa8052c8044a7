package compositor

import (
	"image"
	"sync"

	"modelpaint/pkg/geometry"
)

// Stack maintains an ordered collection of layers. Order is back-to-front:
// the first entry is the bottommost layer. The id sequence and the id map
// always cover exactly the same layers, and at most one layer is selected.
type Stack struct {
	mu sync.RWMutex

	order  []string          // Layer IDs, back-to-front
	layers map[string]*Layer // ID -> layer

	selected string // Selected layer ID, or ""
}

// NewStack creates an empty layer stack.
func NewStack() *Stack {
	return &Stack{
		order:  make([]string, 0),
		layers: make(map[string]*Layer),
	}
}

// AddLayer appends a new layer at the top of the z-order and makes it the
// sole selected layer.
func (s *Stack) AddLayer(src image.Image, placement Placement) *Layer {
	l := newLayer(src, placement)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.layers[l.ID] = l
	s.order = append(s.order, l.ID)
	s.selectLocked(l.ID)
	return l
}

// RemoveLayer removes a layer and its z-order entry. Unknown ids are a
// silent no-op: layer deletion routinely races with UI actions.
func (s *Stack) RemoveLayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layers[id]; !ok {
		return
	}
	delete(s.layers, id)
	for i, lid := range s.order {
		if lid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.selected == id {
		s.selected = ""
	}
}

// MoveLayerUp swaps the layer with the one above it. No-op at the top of
// the stack or for unknown ids.
func (s *Stack) MoveLayerUp(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, lid := range s.order {
		if lid == id {
			if i+1 < len(s.order) {
				s.order[i], s.order[i+1] = s.order[i+1], s.order[i]
			}
			return
		}
	}
}

// MoveLayerDown swaps the layer with the one below it. No-op at the bottom
// of the stack or for unknown ids.
func (s *Stack) MoveLayerDown(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, lid := range s.order {
		if lid == id {
			if i > 0 {
				s.order[i], s.order[i-1] = s.order[i-1], s.order[i]
			}
			return
		}
	}
}

// HitTest returns the topmost visible layer whose axis-aligned normalized
// bounds contain the point, or nil if no layer matches.
func (s *Stack) HitTest(p geometry.Point2D) *Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.order) - 1; i >= 0; i-- {
		l := s.layers[s.order[i]]
		if l == nil || !l.Visible {
			continue
		}
		if l.Bounds().Contains(p) {
			return l
		}
	}
	return nil
}

// SelectLayer makes the given layer the sole selected layer. Unknown ids
// are a silent no-op.
func (s *Stack) SelectLayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layers[id]; !ok {
		return
	}
	s.selectLocked(id)
}

// selectLocked sets the selection, clearing any previous one.
// Caller must hold mu.
func (s *Stack) selectLocked(id string) {
	if prev, ok := s.layers[s.selected]; ok {
		prev.Selected = false
	}
	s.selected = id
	s.layers[id].Selected = true
}

// ClearSelection deselects the selected layer, if any.
func (s *Stack) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.layers[s.selected]; ok {
		l.Selected = false
	}
	s.selected = ""
}

// SelectedLayer returns the selected layer, or nil.
func (s *Stack) SelectedLayer() *Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers[s.selected]
}

// LayerByID returns the layer with the given id, or nil.
func (s *Stack) LayerByID(id string) *Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers[id]
}

// Layers returns the layers in back-to-front order.
func (s *Stack) Layers() []*Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Layer, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.layers[id])
	}
	return result
}

// Len returns the number of layers.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// LayerInfo is a read-only description of one layer, exposed for
// persistence and UI collaborators. The on-disk format is owned elsewhere.
type LayerInfo struct {
	ID       string           `json:"id"`
	Center   geometry.Point2D `json:"center"`
	Size     geometry.Size    `json:"size"`
	Rotation float64          `json:"rotation"`
	Opacity  float64          `json:"opacity"`
	Visible  bool             `json:"visible"`
	Selected bool             `json:"selected"`
}

// Snapshot returns a read-only view of the stack in back-to-front order.
func (s *Stack) Snapshot() []LayerInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]LayerInfo, 0, len(s.order))
	for _, id := range s.order {
		l := s.layers[id]
		infos = append(infos, LayerInfo{
			ID:       l.ID,
			Center:   l.Center,
			Size:     l.Size,
			Rotation: l.Rotation,
			Opacity:  l.Opacity,
			Visible:  l.Visible,
			Selected: l.Selected,
		})
	}
	return infos
}
