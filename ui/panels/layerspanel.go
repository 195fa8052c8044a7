// Package panels provides UI panels for the application.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"modelpaint/internal/app"
	"modelpaint/internal/compositor"
	"modelpaint/ui/canvas"
)

// LayersPanel lists the layer stack top-to-bottom and issues reorder,
// visibility, opacity, and delete commands back into the editor state.
type LayersPanel struct {
	state  *app.State
	canvas *canvas.SurfaceCanvas

	list      *widget.List
	opacity   *widget.Slider
	visible   *widget.Check
	container fyne.CanvasObject

	// Cached stack snapshot, top layer first for display
	infos []compositor.LayerInfo
}

// NewLayersPanel creates the layers panel.
func NewLayersPanel(state *app.State, canvas *canvas.SurfaceCanvas) *LayersPanel {
	lp := &LayersPanel{
		state:  state,
		canvas: canvas,
	}

	lp.list = widget.NewList(
		func() int { return len(lp.infos) },
		func() fyne.CanvasObject { return widget.NewLabel("layer") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			info := lp.infos[i]
			label := obj.(*widget.Label)
			name := fmt.Sprintf("Layer %d", len(lp.infos)-i)
			if !info.Visible {
				name += " (hidden)"
			}
			label.SetText(name)
		},
	)
	lp.list.OnSelected = func(i widget.ListItemID) {
		lp.state.Stack.SelectLayer(lp.infos[i].ID)
		lp.state.Emit(app.EventLayerSelected, lp.infos[i].ID)
		lp.syncControls()
	}

	lp.visible = widget.NewCheck("Visible", func(on bool) {
		if l := lp.state.Stack.SelectedLayer(); l != nil {
			l.Visible = on
			lp.state.Emit(app.EventLayersChanged, nil)
		}
	})

	lp.opacity = widget.NewSlider(0, 1)
	lp.opacity.Step = 0.01
	lp.opacity.OnChanged = func(v float64) {
		if l := lp.state.Stack.SelectedLayer(); l != nil {
			l.Opacity = v
			lp.canvas.Refresh()
		}
	}

	up := widget.NewButton("Raise", func() { lp.withSelected(lp.state.MoveLayerUp) })
	down := widget.NewButton("Lower", func() { lp.withSelected(lp.state.MoveLayerDown) })
	del := widget.NewButton("Delete", func() { lp.withSelected(lp.state.RemoveLayer) })

	lp.container = container.NewBorder(
		nil,
		container.NewVBox(
			lp.visible,
			widget.NewLabel("Opacity"),
			lp.opacity,
			container.NewGridWithColumns(3, up, down, del),
		),
		nil, nil,
		lp.list,
	)

	state.On(app.EventLayersChanged, func(interface{}) { lp.Reload() })
	state.On(app.EventLayerSelected, func(interface{}) { lp.Reload() })

	lp.Reload()
	return lp
}

// Container returns the panel container.
func (lp *LayersPanel) Container() fyne.CanvasObject {
	return lp.container
}

// Reload re-reads the stack snapshot and refreshes the list.
func (lp *LayersPanel) Reload() {
	snapshot := lp.state.Stack.Snapshot()

	// Display top layer first
	lp.infos = lp.infos[:0]
	for i := len(snapshot) - 1; i >= 0; i-- {
		lp.infos = append(lp.infos, snapshot[i])
	}

	lp.list.Refresh()
	lp.syncControls()
}

// syncControls points the shared controls at the selected layer.
func (lp *LayersPanel) syncControls() {
	l := lp.state.Stack.SelectedLayer()
	if l == nil {
		return
	}
	lp.visible.SetChecked(l.Visible)
	lp.opacity.SetValue(l.Opacity)
}

// withSelected runs fn with the selected layer's id, if any.
func (lp *LayersPanel) withSelected(fn func(id string)) {
	if l := lp.state.Stack.SelectedLayer(); l != nil {
		fn(l.ID)
	}
}
