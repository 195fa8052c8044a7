// Package mainwindow assembles the editor's main window.
package mainwindow

import (
	"fmt"
	"image/png"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	log "github.com/sirupsen/logrus"

	"modelpaint/internal/app"
	"modelpaint/internal/compositor"
	"modelpaint/internal/raster"
	"modelpaint/ui/canvas"
	"modelpaint/ui/dialogs"
	"modelpaint/ui/panels"
	"modelpaint/ui/prefs"
)

// MainWindow is the top-level editor window: canvas in the center, tabbed
// side panel on the right, toolbar on top.
type MainWindow struct {
	window fyne.Window
	state  *app.State
	prefs  *prefs.Prefs

	canvas    *canvas.SurfaceCanvas
	sidePanel *panels.SidePanel
}

// New builds the main window for the given session.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	mw := &MainWindow{
		window: fyneApp.NewWindow("Model Paint"),
		state:  state,
		prefs:  p,
	}

	mw.canvas = canvas.NewSurfaceCanvas(state)
	mw.sidePanel = panels.NewSidePanel(state, mw.canvas)

	toolbar := container.NewHBox(
		widget.NewButton("Add Image", mw.openImage),
		widget.NewButton("Properties", mw.editLayerProperties),
		widget.NewButton("Export Texture", mw.exportTexture),
	)

	content := container.NewBorder(
		toolbar, nil, nil,
		mw.sidePanel.Container(),
		mw.canvas.Container(),
	)
	mw.window.SetContent(content)

	w := float32(p.Int(prefs.KeyWindowW, 1280))
	h := float32(p.Int(prefs.KeyWindowH, 860))
	mw.window.Resize(fyne.NewSize(w, h))

	mw.window.Canvas().SetOnTypedKey(mw.typedKey)
	mw.window.SetOnClosed(func() {
		size := mw.window.Canvas().Size()
		p.SetInt(prefs.KeyWindowW, int(size.Width))
		p.SetInt(prefs.KeyWindowH, int(size.Height))
		mw.SavePreferencesIfChanged()
	})

	return mw
}

// Window returns the underlying fyne window.
func (mw *MainWindow) Window() fyne.Window {
	return mw.window
}

// Show displays the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// SavePreferences writes preferences unconditionally.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		log.Warnf("failed to save preferences: %v", err)
	}
}

// SavePreferencesIfChanged writes preferences when values changed.
func (mw *MainWindow) SavePreferencesIfChanged() {
	if err := mw.prefs.SaveIfChanged(); err != nil {
		log.Warnf("failed to save preferences: %v", err)
	}
}

// typedKey handles editor shortcuts.
func (mw *MainWindow) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyDelete, fyne.KeyBackspace:
		if l := mw.state.Stack.SelectedLayer(); l != nil {
			mw.state.RemoveLayer(l.ID)
			return
		}
		mw.state.DeleteSelectedObjects()
	case fyne.KeyTab:
		mw.state.Selection.Cycle(1)
	case fyne.KeyEscape:
		mw.state.Stack.ClearSelection()
		mw.state.Selection.DeselectAll()
		mw.canvas.Refresh()
	}
}

// openImage prompts for an image file and places it as a new layer.
func (mw *MainWindow) openImage() {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()

		if !raster.IsSupportedFormat(path) {
			dialog.ShowError(fmt.Errorf("unsupported format: %s", path), mw.window)
			return
		}
		src, err := raster.Load(path)
		if err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		mw.state.AddLayer(src, compositor.Placement{})
		log.Infof("added layer from %s", path)
	}, mw.window)
	fd.SetFilter(storage.NewExtensionFileFilter(raster.SupportedFormats()))
	fd.Show()
}

// editLayerProperties opens the placement dialog for the selected layer.
func (mw *MainWindow) editLayerProperties() {
	layer := mw.state.Stack.SelectedLayer()
	if layer == nil {
		dialog.ShowInformation("Layer Properties", "No layer selected", mw.window)
		return
	}
	dialogs.ShowLayerProperties(mw.window, mw.state, layer)
}

// exportTexture renders the stack to an export surface and saves it as
// PNG. Export surfaces never carry selection decoration.
func (mw *MainWindow) exportTexture() {
	size := mw.prefs.Int(prefs.KeyTextureSize, 2048)

	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()

		surface := compositor.NewSurface(size, size, false)
		mw.state.Stack.Render(surface)

		if err := png.Encode(wc, surface.RGBA); err != nil {
			dialog.ShowError(err, mw.window)
			return
		}
		log.Infof("exported %dx%d texture to %s", size, size, wc.URI().Path())
	}, mw.window)
	fd.SetFileName("texture.png")
	fd.Show()
}
