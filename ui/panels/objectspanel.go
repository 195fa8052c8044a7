package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"modelpaint/internal/app"
	"modelpaint/internal/scene"
)

// ObjectsPanel lists the selectable scene objects and issues select,
// cycle, and delete commands into the selection engine.
type ObjectsPanel struct {
	state *app.State

	list      *widget.List
	status    *widget.Label
	container fyne.CanvasObject

	candidates []*scene.Object
}

// NewObjectsPanel creates the scene objects panel.
func NewObjectsPanel(state *app.State) *ObjectsPanel {
	op := &ObjectsPanel{state: state}

	op.list = widget.NewList(
		func() int { return len(op.candidates) },
		func() fyne.CanvasObject { return widget.NewLabel("object") },
		func(i widget.ListItemID, obj fyne.CanvasObject) {
			o := op.candidates[i]
			label := obj.(*widget.Label)
			text := o.Name
			if state.Selection.IsSelected(o) {
				text = "* " + text
			}
			label.SetText(text)
		},
	)
	op.list.OnSelected = func(i widget.ListItemID) {
		state.Selection.SelectObject(op.candidates[i], true)
	}

	op.status = widget.NewLabel("No selection")

	prev := widget.NewButton("Prev", func() { state.Selection.Cycle(-1) })
	next := widget.NewButton("Next", func() { state.Selection.Cycle(1) })
	clear := widget.NewButton("Clear", func() { state.Selection.DeselectAll() })
	del := widget.NewButton("Delete", func() {
		state.DeleteSelectedObjects()
		op.Reload()
	})

	op.container = container.NewBorder(
		nil,
		container.NewVBox(
			op.status,
			container.NewGridWithColumns(4, prev, next, clear, del),
		),
		nil, nil,
		op.list,
	)

	state.On(app.EventSelectionChanged, func(data interface{}) {
		op.updateStatus()
		op.list.Refresh()
	})
	state.On(app.EventSceneChanged, func(interface{}) { op.Reload() })

	op.Reload()
	return op
}

// Container returns the panel container.
func (op *ObjectsPanel) Container() fyne.CanvasObject {
	return op.container
}

// Reload re-reads the candidate list from the selection engine.
func (op *ObjectsPanel) Reload() {
	op.state.RefreshSelectables()
	op.candidates = op.state.Selection.Candidates()
	op.list.Refresh()
	op.updateStatus()
}

// updateStatus shows the primary selection's name.
func (op *ObjectsPanel) updateStatus() {
	primary := op.state.Selection.Primary()
	if primary == nil {
		op.status.SetText("No selection")
		return
	}
	op.status.SetText("Primary: " + primary.Name)
}
