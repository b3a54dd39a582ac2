// Package box holds the render items the resolver produces and the layout
// engine places: visual payloads, their line-break flags and the click
// behaviours attached to them.
package box

import (
	"image"

	"wren/pkg/css"
)

// Visual is implemented by every render item payload.
type Visual interface {
	Common() *Base
}

// Base carries the fields every payload shares.
type Base struct {
	Hidden bool
	// Folded counts the closed toggles governing the item.
	Folded  int
	Margin  css.Edges
	Tooltip string
	Pointer bool
	Click   Click // nil when the item does nothing on click
}

func (b *Base) Common() *Base { return b }

// Visible reports whether the item takes part in layout.
func (b *Base) Visible() bool { return !b.Hidden && b.Folded == 0 }

// Item is one entry of the resolver's output.
type Item struct {
	Visual     Visual
	StartsLine bool
	EndsLine   bool
}

// Text is one word (or one preformatted run) of styled text.
type Text struct {
	Base
	Content string
	Style   css.Style
}

// Button is a push button. Its face is either Label or the nested Content
// items of a <button> element.
type Button struct {
	Base
	Label      string
	Content    []Item
	Background css.Color
	Disabled   bool
	// Bare buttons have no padding or chrome; their content is the face.
	Bare bool
	// Press runs when the button is activated; nil for plain buttons.
	Press func()
}

type Checkbox struct {
	Base
	Checked bool
	Invalid bool
}

type Dropdown struct {
	Base
	Options  []string
	Selected int // -1 when nothing is selected
	Width    float64
	Invalid  bool
}

// Value returns the selected option, or "" with ok false.
func (d *Dropdown) Value() (string, bool) {
	if d.Selected < 0 || d.Selected >= len(d.Options) {
		return "", false
	}
	return d.Options[d.Selected], true
}

type Stepper struct {
	Base
	Value    float64
	Min, Max float64
	Width    float64
	Height   float64
	Invalid  bool
}

// Set clamps v into [Min, Max].
func (s *Stepper) Set(v float64) {
	s.Value = min(max(v, s.Min), s.Max)
}

// TextEntry is a single or multi line text input.
type TextEntry struct {
	Base
	Value       string
	Placeholder string
	MaxLength   int // 0 means unlimited
	Disabled    bool
	ReadOnly    bool
	Password    bool
	Multiline   bool
	Monospace   bool
	Width       float64
	Height      float64 // 0 means one text line
	Invalid     bool
}

// SetValue stores v truncated to MaxLength runes.
func (t *TextEntry) SetValue(v string) {
	if t.MaxLength > 0 {
		r := []rune(v)
		if len(r) > t.MaxLength {
			v = string(r[:t.MaxLength])
		}
	}
	t.Value = v
}

// Display returns the text shown in the entry.
func (t *TextEntry) Display() string {
	if t.Password {
		n := len([]rune(t.Value))
		out := make([]rune, n)
		for i := range out {
			out[i] = '•'
		}
		return string(out)
	}
	return t.Value
}

// Image is a loaded picture or the broken-image placeholder.
type Image struct {
	Base
	Picture image.Image // nil for the placeholder
	Width   float64
	Height  float64
	Broken  bool
}

// Meter is a meter or progress bar.
type Meter struct {
	Base
	Min, Max, Value float64
	Bar             css.Color
	Width, Height   float64
}

// Fraction returns how full the bar is, in [0, 1].
func (m *Meter) Fraction() float64 {
	if m.Max <= m.Min {
		return 0
	}
	return min(max((m.Value-m.Min)/(m.Max-m.Min), 0), 1)
}

// Cell is one table cell positioned on the grid.
type Cell struct {
	Row, Col         int
	RowSpan, ColSpan int
	Items            []Item
}

type Table struct {
	Base
	Rows, Cols int
	Cells      []Cell
	CellWidth  float64
	Padding    float64
	Border     float64
}

// SubFrame is a nested, independently laid out document.
type SubFrame struct {
	Base
	Width, Height float64
	Title         string
	Items         []Item
}

// Separator is a forced line break marker or a horizontal rule.
type Separator struct {
	Base
	// Width 0 spans the whole line.
	Width  float64
	Height float64
	Rule   bool
	Color  css.Color
}

// IsBreak reports whether the separator occupies a whole line.
func (s *Separator) IsBreak() bool { return s.Width == 0 }

// NewBreak returns a full-width marker of the given height.
func NewBreak(height float64) *Separator {
	return &Separator{Height: height}
}
