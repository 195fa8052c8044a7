// Package dialogs provides modal dialogs for the application.
package dialogs

import (
	"fmt"
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"modelpaint/internal/app"
	"modelpaint/internal/compositor"
)

// ShowLayerProperties opens a placement editor for the given layer.
// Center and size are edited in normalized units, rotation in degrees.
func ShowLayerProperties(parent fyne.Window, state *app.State, layer *compositor.Layer) {
	centerX := widget.NewEntry()
	centerX.SetText(formatFloat(layer.Center.X))
	centerY := widget.NewEntry()
	centerY.SetText(formatFloat(layer.Center.Y))
	rotation := widget.NewEntry()
	rotation.SetText(formatFloat(layer.Rotation * 180 / math.Pi))

	opacity := widget.NewSlider(0, 1)
	opacity.Step = 0.01
	opacity.SetValue(layer.Opacity)

	items := []*widget.FormItem{
		widget.NewFormItem("Center X", centerX),
		widget.NewFormItem("Center Y", centerY),
		widget.NewFormItem("Rotation (deg)", rotation),
		widget.NewFormItem("Opacity", opacity),
	}

	dialog.ShowForm("Layer Properties", "Apply", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		if v, err := strconv.ParseFloat(centerX.Text, 64); err == nil {
			layer.Center.X = v
		}
		if v, err := strconv.ParseFloat(centerY.Text, 64); err == nil {
			layer.Center.Y = v
		}
		if v, err := strconv.ParseFloat(rotation.Text, 64); err == nil {
			layer.Rotation = v * math.Pi / 180
		}
		layer.Opacity = opacity.Value

		state.SetModified(true)
		state.Emit(app.EventLayersChanged, nil)
	}, parent)
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
