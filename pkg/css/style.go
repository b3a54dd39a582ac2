package css

// Edges holds the four sides of a box in left, top, right, bottom order.
type Edges struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Add returns the side-wise sum.
func (e Edges) Add(o Edges) Edges {
	return Edges{e.Left + o.Left, e.Top + o.Top, e.Right + o.Right, e.Bottom + o.Bottom}
}

func (e Edges) Horizontal() float64 { return e.Left + e.Right }
func (e Edges) Vertical() float64   { return e.Top + e.Bottom }

// Style is the inherited visual state of a node. It is a value: each
// branch of the traversal holds its own copy, so an override made for one
// node reaches only that node's descendants.
type Style struct {
	Color         Color
	Background    Color
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Monospace     bool
	FontSize      float64
	Margin        Edges
	Subscript     bool
	Superscript   bool
	Tooltip       string
	Pointer       bool
	StartsLine    bool
	EndsLine      bool
	Pre           bool
}

const DefaultFontSize = 16

var (
	DefaultColor      = Color{0x33, 0x33, 0x33}
	DefaultBackground = Color{0xff, 0xff, 0xff}
)

// Default is the style of the document root.
func Default() Style {
	return Style{
		Color:      DefaultColor,
		Background: DefaultBackground,
		FontSize:   DefaultFontSize,
	}
}

// Child returns the style inherited by child index of count children.
// Line-break flags pass only to the first (start) and last (end) child,
// and only when inheritBreaks is set. Top and bottom margins pass the same
// way when they are non-zero; side margins pass to every child.
func (s Style) Child(index, count int, inheritBreaks bool) Style {
	c := s
	c.StartsLine = false
	c.EndsLine = false
	c.Margin = Edges{Left: s.Margin.Left, Right: s.Margin.Right}

	first := index == 0
	last := index == count-1
	if inheritBreaks {
		c.StartsLine = first && s.StartsLine
		c.EndsLine = last && s.EndsLine
	}
	if first && s.Margin.Top != 0 {
		c.Margin.Top = s.Margin.Top
	}
	if last && s.Margin.Bottom != 0 {
		c.Margin.Bottom = s.Margin.Bottom
	}
	return c
}

// Breaks returns s forced onto its own line.
func (s Style) Breaks() Style {
	s.StartsLine = true
	s.EndsLine = true
	return s
}

// ScriptScale is the font size factor for one level of sub or superscript.
const ScriptScale = 0.45

// EffectiveFontSize applies sub/superscript scaling, compounding when
// both are set.
func (s Style) EffectiveFontSize() float64 {
	size := s.FontSize
	if s.Subscript {
		size *= ScriptScale
	}
	if s.Superscript {
		size *= ScriptScale
	}
	return size
}
