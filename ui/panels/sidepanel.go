package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"modelpaint/internal/app"
	"modelpaint/ui/canvas"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	layersPanel  *LayersPanel
	objectsPanel *ObjectsPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, canvas *canvas.SurfaceCanvas) *SidePanel {
	sp := &SidePanel{state: state}

	sp.layersPanel = NewLayersPanel(state, canvas)
	sp.objectsPanel = NewObjectsPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Layers", sp.layersPanel.Container()),
		container.NewTabItem("Objects", sp.objectsPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// Objects returns the scene objects panel.
func (sp *SidePanel) Objects() *ObjectsPanel {
	return sp.objectsPanel
}
