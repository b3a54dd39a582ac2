package main

import (
	"context"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"wren/pkg/box"
	"wren/pkg/frame"
	"wren/pkg/layout"
	"wren/pkg/render"
	"wren/pkg/text"
)

// pageView shows a frame's canvas and forwards pointer and keyboard input
// to it. All
// fields are only touched on the fyne main goroutine.
type pageView struct {
	widget.BaseWidget

	frame  *frame.Frame
	fonts  *text.GoFonts
	log    *zap.Logger
	raster *canvas.Raster
	scroll float64
	cursor desktop.Cursor

	// onHover receives the tooltip under the pointer, or "".
	onHover func(tooltip string)
}

var (
	_ fyne.Tappable      = (*pageView)(nil)
	_ fyne.Focusable     = (*pageView)(nil)
	_ fyne.Scrollable    = (*pageView)(nil)
	_ desktop.Hoverable  = (*pageView)(nil)
	_ desktop.Cursorable = (*pageView)(nil)
)

func newPageView(f *frame.Frame, fonts *text.GoFonts, log *zap.Logger) *pageView {
	v := &pageView{frame: f, fonts: fonts, log: log, cursor: desktop.DefaultCursor}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// draw paints the visible part of the page in logical units; the raster
// scales it to the device.
func (v *pageView) draw(_, _ int) image.Image {
	size := v.Size()
	r := render.NewRenderer(max(int(size.Width), 1), max(int(size.Height), 1), v.fonts)
	r.Render(nil, 0)
	v.frame.Paint(func(c *layout.Canvas) {
		r.Render(c, v.scroll)
	})
	return r.Image()
}

func (v *pageView) Resize(size fyne.Size) {
	if size != v.Size() {
		v.frame.Resize(float64(size.Width))
	}
	v.BaseWidget.Resize(size)
}

// ScrollTop returns to the top of the page.
func (v *pageView) ScrollTop() {
	v.scroll = 0
	v.Refresh()
}

func (v *pageView) Scrolled(ev *fyne.ScrollEvent) {
	height := 0.0
	v.frame.Paint(func(c *layout.Canvas) { height = c.Height })
	limit := max(height-float64(v.Size().Height), 0)
	v.scroll = min(max(v.scroll-float64(ev.Scrolled.DY), 0), limit)
	v.Refresh()
}

func (v *pageView) Tapped(ev *fyne.PointEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(v); c != nil {
		c.Focus(v)
	}
	x, y := float64(ev.Position.X), float64(ev.Position.Y)+v.scroll
	go func() {
		if err := v.frame.Click(context.Background(), x, y); err != nil {
			v.log.Warn("click failed", zap.Error(err))
		}
	}()
}

func (v *pageView) FocusGained() {}

func (v *pageView) FocusLost() {}

// TypedRune types into the frame's focused text entry.
func (v *pageView) TypedRune(r rune) {
	v.frame.Type(string(r))
}

func (v *pageView) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyBackspace:
		v.frame.Backspace()
	case fyne.KeyReturn, fyne.KeyEnter:
		v.frame.Type("\n")
	case fyne.KeyUp:
		v.frame.Step(1)
	case fyne.KeyDown:
		v.frame.Step(-1)
	}
}

func (v *pageView) MouseIn(ev *desktop.MouseEvent) { v.hover(ev.Position) }

func (v *pageView) MouseMoved(ev *desktop.MouseEvent) { v.hover(ev.Position) }

func (v *pageView) MouseOut() {
	v.cursor = desktop.DefaultCursor
	if v.onHover != nil {
		v.onHover("")
	}
}

func (v *pageView) Cursor() desktop.Cursor { return v.cursor }

// hover updates the cursor and tooltip from the innermost items under pos.
func (v *pageView) hover(pos fyne.Position) {
	var path []box.Visual
	v.frame.Paint(func(c *layout.Canvas) {
		path = c.Hit(float64(pos.X), float64(pos.Y)+v.scroll)
	})

	pointer, tooltip := false, ""
	for i := len(path) - 1; i >= 0; i-- {
		b := path[i].Common()
		pointer = pointer || b.Pointer
		if tooltip == "" {
			tooltip = b.Tooltip
		}
	}
	v.cursor = desktop.DefaultCursor
	if pointer {
		v.cursor = desktop.PointerCursor
	}
	if v.onHover != nil {
		v.onHover(tooltip)
	}
}
