// Package render paints a laid out canvas with gg.
package render

import (
	"image"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"wren/pkg/box"
	"wren/pkg/css"
	"wren/pkg/layout"
	"wren/pkg/text"
)

var (
	borderColor      = css.MustColor("#767676")
	placeholderColor = css.MustColor("#757575")
	invalidColor     = css.MustColor("red")
	trackColor       = css.MustColor("#e6e6e6")
	disabledColor    = css.MustColor("#f0f0f0")
)

type Renderer struct {
	context *gg.Context
	fonts   *text.GoFonts
}

// NewRenderer returns a renderer with a white width×height surface. fonts
// may be nil.
func NewRenderer(width, height int, fonts *text.GoFonts) *Renderer {
	if fonts == nil {
		fonts = text.NewGoFonts()
	}
	return &Renderer{context: gg.NewContext(width, height), fonts: fonts}
}

// Render clears the surface and paints c with its origin at (0, -scroll).
func (r *Renderer) Render(c *layout.Canvas, scroll float64) {
	r.context.SetRGB(1, 1, 1)
	r.context.Clear()
	if c == nil {
		return
	}
	r.context.Push()
	r.context.Translate(0, -scroll)
	r.canvas(c)
	r.context.Pop()
}

func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

func (r *Renderer) canvas(c *layout.Canvas) {
	for i := range c.Boxes {
		r.drawBox(&c.Boxes[i])
	}
}

// nested paints an inner canvas with its origin at (x, y).
func (r *Renderer) nested(c *layout.Canvas, x, y float64) {
	if c == nil {
		return
	}
	r.context.Push()
	r.context.Translate(x, y)
	r.canvas(c)
	r.context.Pop()
}

func (r *Renderer) setColor(c css.Color) {
	r.context.SetRGB255(int(c.R), int(c.G), int(c.B))
}

func (r *Renderer) fillRect(x, y, w, h float64, c css.Color) {
	r.setColor(c)
	r.context.DrawRectangle(x, y, w, h)
	r.context.Fill()
}

func (r *Renderer) strokeRect(x, y, w, h float64, c css.Color) {
	r.setColor(c)
	r.context.SetLineWidth(1)
	r.context.DrawRectangle(x+0.5, y+0.5, w-1, h-1)
	r.context.Stroke()
}

func (r *Renderer) drawBox(b *layout.Box) {
	x, y, w, h := b.Content()
	y += b.Offset()

	switch v := b.Visual.(type) {
	case *box.Text:
		r.drawText(v, x, y, w, h)

	case *box.Button:
		if !v.Bare {
			face := v.Background
			if v.Disabled {
				face = disabledColor
			}
			r.fillRect(x, y, w, h, face)
			r.strokeRect(x, y, w, h, borderColor)
		}
		if b.Inner != nil {
			r.nested(b.Inner, b.X+b.InnerX, b.Y+b.InnerY)
		} else {
			r.label(v.Label, x+layout.ButtonPadX, y+layout.ButtonPadY, css.DefaultColor)
		}

	case *box.Checkbox:
		r.fillRect(x, y, w, h, css.DefaultBackground)
		r.strokeRect(x, y, w, h, outline(v.Invalid))
		if v.Checked {
			r.setColor(css.DefaultColor)
			r.context.SetLineWidth(2)
			r.context.MoveTo(x+4, y+h/2)
			r.context.LineTo(x+w/2-1, y+h-5)
			r.context.LineTo(x+w-4, y+4)
			r.context.Stroke()
		}

	case *box.Dropdown:
		r.fillRect(x, y, w, h, css.DefaultBackground)
		r.strokeRect(x, y, w, h, outline(v.Invalid))
		if s, ok := v.Value(); ok {
			r.label(s, x+5, y+7, css.DefaultColor)
		}
		r.setColor(css.DefaultColor)
		r.context.MoveTo(x+w-16, y+h/2-3)
		r.context.LineTo(x+w-6, y+h/2-3)
		r.context.LineTo(x+w-11, y+h/2+3)
		r.context.ClosePath()
		r.context.Fill()

	case *box.Stepper:
		r.fillRect(x, y, w, h, css.DefaultBackground)
		r.strokeRect(x, y, w, h, outline(v.Invalid))
		r.label(strconv.FormatFloat(v.Value, 'f', -1, 64), x+5, y+7, css.DefaultColor)
		r.setColor(css.DefaultColor)
		r.context.DrawLine(x+w-20, y, x+w-20, y+h)
		r.context.DrawLine(x+w-20, y+h/2, x+w, y+h/2)
		r.context.Stroke()

	case *box.TextEntry:
		bg := css.DefaultBackground
		if v.Disabled {
			bg = disabledColor
		}
		r.fillRect(x, y, w, h, bg)
		r.strokeRect(x, y, w, h, outline(v.Invalid))
		r.drawEntryText(v, x, y, w, h)

	case *box.Image:
		r.drawImage(v, x, y, w, h)

	case *box.Meter:
		r.fillRect(x, y, w, h, trackColor)
		r.fillRect(x, y, w*v.Fraction(), h, v.Bar)

	case *box.Table:
		for i := range b.Cells {
			cell := &b.Cells[i]
			r.strokeRect(b.X+cell.X-v.Border, b.Y+cell.Y-v.Border, cell.W+2*v.Border, cell.H+2*v.Border, borderColor)
			r.nested(cell.Inner, b.X+cell.InnerX, b.Y+cell.InnerY)
		}

	case *box.SubFrame:
		r.context.Push()
		r.context.DrawRectangle(x, y, w, h)
		r.context.Clip()
		r.nested(b.Inner, b.X+b.InnerX, b.Y+b.InnerY)
		r.context.ResetClip()
		r.context.Pop()
		r.strokeRect(x, y, w, h, borderColor)

	case *box.Separator:
		if v.Rule {
			r.fillRect(x, y, w, h, v.Color)
		}
	}
}

func outline(invalid bool) css.Color {
	if invalid {
		return invalidColor
	}
	return borderColor
}

// label draws s in the control label style with its top-left at (x, y).
func (r *Renderer) label(s string, x, y float64, c css.Color) {
	st := layout.LabelStyle()
	st.Color = c
	r.drawLines([]string{s}, st, x, y)
}

func (r *Renderer) drawText(t *box.Text, x, y, w, h float64) {
	st := t.Style
	if st.Background != css.DefaultBackground {
		r.fillRect(x, y, w, h, st.Background)
	}
	lines := strings.Split(t.Content, "\n")
	r.drawLines(lines, st, x, y)

	size := st.EffectiveFontSize()
	thickness := max(size/12.0, 1)
	r.context.SetLineWidth(thickness)
	r.setColor(st.Color)
	if st.Underline {
		lineY := y + size + size*0.1
		r.context.DrawLine(x, lineY, x+w, lineY)
		r.context.Stroke()
	}
	if st.Strikethrough {
		lineY := y + size*0.6
		r.context.DrawLine(x, lineY, x+w, lineY)
		r.context.Stroke()
	}
}

// drawLines draws each line top-aligned, one line height apart.
func (r *Renderer) drawLines(lines []string, st css.Style, x, y float64) {
	face := text.FaceFor(st)
	if ff := r.fonts.FontFace(face); ff != nil {
		r.context.SetFontFace(ff)
	}
	r.setColor(st.Color)
	lineHeight := face.Size * text.LineSpacing
	for i, line := range lines {
		r.context.DrawStringAnchored(line, x, y+float64(i)*lineHeight, 0, 1)
	}
}

func (r *Renderer) drawEntryText(e *box.TextEntry, x, y, w, h float64) {
	st := layout.LabelStyle()
	st.Monospace = e.Monospace
	s := e.Display()
	if s == "" {
		s = e.Placeholder
		st.Color = placeholderColor
	}
	if s == "" {
		return
	}

	r.context.Push()
	r.context.DrawRectangle(x, y, w, h)
	r.context.Clip()
	if e.Multiline {
		r.drawLines(text.BreakLines(r.fonts, s, st, w-10), st, x+5, y+5)
	} else {
		r.drawLines([]string{s}, st, x+5, y+7)
	}
	r.context.ResetClip()
	r.context.Pop()
}

func (r *Renderer) drawImage(img *box.Image, x, y, w, h float64) {
	if img.Picture == nil {
		// broken image: light box with a cross
		r.context.SetRGB(0.9, 0.9, 0.9)
		r.context.DrawRectangle(x, y, w, h)
		r.context.Fill()

		r.context.SetRGB(0.5, 0.5, 0.5)
		r.context.SetLineWidth(2)
		r.context.DrawLine(x, y, x+w, y+h)
		r.context.DrawLine(x+w, y, x, y+h)
		r.context.Stroke()
		return
	}

	bounds := img.Picture.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return
	}
	r.context.Push()
	r.context.Translate(x, y)
	r.context.Scale(w/float64(bounds.Dx()), h/float64(bounds.Dy()))
	r.context.DrawImage(img.Picture, 0, 0)
	r.context.Pop()
}
