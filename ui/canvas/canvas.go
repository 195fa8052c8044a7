// Package canvas provides the interactive paint surface with pan, zoom,
// and layer picking.
package canvas

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"modelpaint/internal/app"
	"modelpaint/internal/compositor"
	"modelpaint/internal/normspace"
	"modelpaint/pkg/geometry"
)

const (
	minZoom  = 0.25
	maxZoom  = 8.0
	zoomStep = 1.25

	// Base pixel size of the interactive surface at zoom 1.0.
	baseSurfaceSize = 768
)

// SurfaceCanvas displays the compositor's interactive surface and routes
// pointer input to layer hit testing. The widget owns the only interactive
// surface; export surfaces are rendered elsewhere and never share its
// selection decoration.
type SurfaceCanvas struct {
	widget.BaseWidget

	state *app.State

	raster  *fynecanvas.Raster
	surface *compositor.Surface

	zoom    float64
	scroll  *zoomScroll
	content *tappableContent

	// Drag state for moving the selected layer
	dragLayer *compositor.Layer
	dragStart geometry.Point2D

	onLayerTap func(layer *compositor.Layer)
}

// NewSurfaceCanvas creates the canvas bound to the editor state.
func NewSurfaceCanvas(state *app.State) *SurfaceCanvas {
	sc := &SurfaceCanvas{
		state: state,
		zoom:  1.0,
	}

	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.raster.SetMinSize(fyne.NewSize(baseSurfaceSize, baseSurfaceSize))

	sc.content = newTappableContent(sc)
	sc.scroll = newZoomScroll(sc.content, sc)

	sc.ExtendBaseWidget(sc)

	state.On(app.EventLayersChanged, func(interface{}) { sc.Refresh() })
	state.On(app.EventLayerSelected, func(interface{}) { sc.Refresh() })

	return sc
}

// Container returns the canvas container for embedding in layouts.
func (sc *SurfaceCanvas) Container() fyne.CanvasObject {
	return sc.scroll
}

// OnLayerTap sets a callback fired after a tap hit-tests the stack.
// The layer argument is nil when the tap hit no layer.
func (sc *SurfaceCanvas) OnLayerTap(fn func(layer *compositor.Layer)) {
	sc.onLayerTap = fn
}

// SetZoom sets the zoom level, clamped to the supported range.
func (sc *SurfaceCanvas) SetZoom(zoom float64) {
	if zoom < minZoom {
		zoom = minZoom
	}
	if zoom > maxZoom {
		zoom = maxZoom
	}
	sc.zoom = zoom

	px := float32(baseSurfaceSize * sc.zoom)
	sc.raster.SetMinSize(fyne.NewSize(px, px))
	sc.raster.Resize(fyne.NewSize(px, px))
	sc.content.Resize(fyne.NewSize(px, px))
	sc.Refresh()
}

// Zoom returns the current zoom level.
func (sc *SurfaceCanvas) Zoom() float64 {
	return sc.zoom
}

// ZoomIn increases the zoom level.
func (sc *SurfaceCanvas) ZoomIn() { sc.SetZoom(sc.zoom * zoomStep) }

// ZoomOut decreases the zoom level.
func (sc *SurfaceCanvas) ZoomOut() { sc.SetZoom(sc.zoom / zoomStep) }

// Refresh redraws the surface.
func (sc *SurfaceCanvas) Refresh() {
	sc.raster.Refresh()
}

// draw renders the layer stack onto the interactive surface at the
// requested pixel size.
func (sc *SurfaceCanvas) draw(w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if sc.surface == nil || sc.surface.Width() != w || sc.surface.Height() != h {
		sc.surface = compositor.NewSurface(w, h, true)
	}
	sc.state.Stack.Render(sc.surface)
	return sc.surface.RGBA
}

// normalizedAt converts a widget position to a normalized surface point.
func (sc *SurfaceCanvas) normalizedAt(pos fyne.Position) geometry.Point2D {
	size := sc.content.Size()
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return geometry.Point2D{}
	}
	offset := sc.scroll.Offset()
	return normspace.PointFromSurface(geometry.Point2D{
		X: float64(pos.X + offset.X),
		Y: float64(pos.Y + offset.Y),
	}, w, h)
}

// handleTap hit-tests the stack and selects the topmost layer.
func (sc *SurfaceCanvas) handleTap(pos fyne.Position) {
	p := sc.normalizedAt(pos)
	layer := sc.state.SelectLayerAt(p)
	sc.Refresh()
	if sc.onLayerTap != nil {
		sc.onLayerTap(layer)
	}
}

// handleDrag moves the selected layer by the pointer delta.
func (sc *SurfaceCanvas) handleDrag(pos fyne.Position) {
	p := sc.normalizedAt(pos)
	if sc.dragLayer == nil {
		sc.dragLayer = sc.state.Stack.HitTest(p)
		if sc.dragLayer == nil {
			return
		}
		sc.state.Stack.SelectLayer(sc.dragLayer.ID)
		sc.dragStart = p
		return
	}
	delta := p.Sub(sc.dragStart)
	sc.dragLayer.Center = sc.dragLayer.Center.Add(delta)
	sc.dragStart = p
	sc.Refresh()
}

// handleDragEnd finishes a layer move.
func (sc *SurfaceCanvas) handleDragEnd() {
	if sc.dragLayer != nil {
		sc.state.SetModified(true)
		sc.state.Emit(app.EventLayersChanged, nil)
	}
	sc.dragLayer = nil
}

// CreateRenderer implements fyne.Widget.
func (sc *SurfaceCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sc.scroll)
}

// zoomScroll wraps a scroll container but intercepts the wheel for zoom.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	canvas *SurfaceCanvas
}

func newZoomScroll(content fyne.CanvasObject, canvas *SurfaceCanvas) *zoomScroll {
	scroll := container.NewScroll(content)
	scroll.Direction = container.ScrollBoth
	zs := &zoomScroll{scroll: scroll, canvas: canvas}
	zs.ExtendBaseWidget(zs)
	return zs
}

func (zs *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		zs.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		zs.canvas.ZoomOut()
	}
}

func (zs *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(zs.scroll)
}

// Offset returns the scroll container's current offset.
func (zs *zoomScroll) Offset() fyne.Position {
	return zs.scroll.Offset
}

// tappableContent wraps the raster to handle pointer events.
type tappableContent struct {
	widget.BaseWidget
	canvas *SurfaceCanvas
}

func newTappableContent(canvas *SurfaceCanvas) *tappableContent {
	tc := &tappableContent{canvas: canvas}
	tc.ExtendBaseWidget(tc)
	return tc
}

func (tc *tappableContent) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(tc.canvas.raster)
}

func (tc *tappableContent) MinSize() fyne.Size {
	return tc.canvas.raster.MinSize()
}

func (tc *tappableContent) Tapped(ev *fyne.PointEvent) {
	// Reject positions outside the widget bounds
	size := tc.Size()
	if ev.Position.X < 0 || ev.Position.Y < 0 ||
		ev.Position.X > size.Width || ev.Position.Y > size.Height {
		return
	}
	tc.canvas.handleTap(ev.Position)
}

func (tc *tappableContent) Dragged(ev *fyne.DragEvent) {
	tc.canvas.handleDrag(ev.Position)
}

func (tc *tappableContent) DragEnd() {
	tc.canvas.handleDragEnd()
}

func (tc *tappableContent) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		tc.canvas.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		tc.canvas.ZoomOut()
	}
}
