package layout

import (
	"slices"

	"wren/pkg/box"
	"wren/pkg/css"
	"wren/pkg/text"
)

// Fixed sizes of controls whose size does not depend on content.
const (
	CheckboxSize     = 20.0
	ControlHeight    = 30.0
	DropdownWidth    = 150.0
	ButtonPadX       = 10.0
	ButtonPadY       = 5.0
	DefaultCellWidth = 150.0
)

// Engine lays out visuals. Text is sized with Text.
type Engine struct {
	Text text.Measurer
}

func NewEngine(m text.Measurer) *Engine {
	if m == nil {
		m = text.NewGoFonts()
	}
	return &Engine{Text: m}
}

// Layout packs visuals into lines no wider than width.
func (e *Engine) Layout(visuals []box.Visual, width float64) *Canvas {
	c := &Canvas{engine: e, visuals: visuals, Avail: width}
	c.Relayout()
	return c
}

// LayoutItems runs Flow over items and lays out the result.
func (e *Engine) LayoutItems(items []box.Item, width float64) *Canvas {
	return e.Layout(Flow(slices.Values(items)), width)
}

// place sizes v for a canvas of the given width. Position fields are left
// for the caller.
func (e *Engine) place(v box.Visual, avail float64) Box {
	b := Box{Visual: v}
	m := v.Common().Margin
	var w, h float64
	switch v := v.(type) {
	case *box.Text:
		w, h = e.Text.Measure(v.Content, v.Style)
	case *box.Button:
		if len(v.Content) > 0 {
			b.Inner = e.LayoutItems(v.Content, avail)
			w, h = b.Inner.Width, b.Inner.Height
		} else {
			w, h = e.Text.Measure(v.Label, LabelStyle())
		}
		if !v.Bare {
			w += 2 * ButtonPadX
			h += 2 * ButtonPadY
			b.InnerX, b.InnerY = ButtonPadX, ButtonPadY
		}
	case *box.Checkbox:
		w, h = CheckboxSize, CheckboxSize
	case *box.Dropdown:
		w, h = orDefault(v.Width, DropdownWidth), ControlHeight
	case *box.Stepper:
		w, h = v.Width, orDefault(v.Height, ControlHeight)
	case *box.TextEntry:
		w, h = v.Width, orDefault(v.Height, ControlHeight)
	case *box.Image:
		w, h = v.Width, v.Height
	case *box.Meter:
		w, h = v.Width, v.Height
	case *box.Table:
		w, h, b.Cells = e.table(v)
	case *box.SubFrame:
		w, h = v.Width, v.Height
		b.Inner = e.LayoutItems(v.Items, v.Width)
	case *box.Separator:
		w, h = v.Width, v.Height
		if v.IsBreak() {
			w = max(avail-m.Horizontal(), 0)
		}
	}

	b.InnerX += m.Left
	b.InnerY += m.Top
	b.W = w + m.Horizontal()
	b.H = h + m.Vertical()
	return b
}

// LabelStyle is the text style of button labels and control text.
func LabelStyle() css.Style {
	s := css.Default()
	s.FontSize = 14
	return s
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
