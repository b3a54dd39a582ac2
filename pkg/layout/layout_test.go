package layout

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wren/pkg/box"
	"wren/pkg/css"
	"wren/pkg/text"
)

func img(w, h float64) *box.Image {
	return &box.Image{Width: w, Height: h}
}

func engine() *Engine {
	return NewEngine(text.Fixed{})
}

type placed struct {
	X, Y float64
	Line int
}

func positions(c *Canvas) []placed {
	out := make([]placed, len(c.Boxes))
	for i, b := range c.Boxes {
		out[i] = placed{b.X, b.Y, b.Line}
	}
	return out
}

func TestWrapOnOverflow(t *testing.T) {
	c := engine().Layout([]box.Visual{img(100, 10), img(100, 20), img(100, 15)}, 250)

	want := []placed{{0, 0, 0}, {100, 0, 0}, {0, 20, 1}}
	if diff := cmp.Diff(want, positions(c)); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, c.Lines)
	assert.Equal(t, 200.0, c.Width)
	assert.Equal(t, 35.0, c.Height)
	assert.Equal(t, 20.0, c.Boxes[0].LineHeight)
}

func TestWideItemAtLineStartStays(t *testing.T) {
	c := engine().Layout([]box.Visual{img(300, 10), img(10, 10)}, 250)
	assert.Equal(t, []placed{{0, 0, 0}, {0, 10, 1}}, positions(c))
	assert.Equal(t, 300.0, c.Width)
}

func TestBreakMarkers(t *testing.T) {
	t.Run("leading marker does not advance", func(t *testing.T) {
		c := engine().Layout([]box.Visual{box.NewBreak(0), img(10, 10)}, 100)
		// the marker fills the first line, so the image wraps below it
		assert.Equal(t, []placed{{0, 0, 0}, {0, 0, 1}}, positions(c))
		assert.Equal(t, 10.0, c.Height)
	})

	t.Run("marker separates lines", func(t *testing.T) {
		c := engine().Layout([]box.Visual{img(10, 10), box.NewBreak(5), img(10, 10)}, 100)
		assert.Equal(t, []placed{{0, 0, 0}, {0, 10, 1}, {0, 15, 2}}, positions(c))
		assert.Equal(t, 25.0, c.Height)
		assert.Equal(t, 10.0, c.Width, "markers do not widen the canvas")
	})
}

func TestButtonWithBlockContentFitsContent(t *testing.T) {
	btn := &box.Button{Content: []box.Item{{Visual: img(30, 10), StartsLine: true, EndsLine: true}}}
	c := engine().LayoutItems([]box.Item{{Visual: btn}}, 500)
	b := c.Boxes[0]
	require.NotNil(t, b.Inner)
	assert.Equal(t, 30.0, b.Inner.Width)
	assert.Equal(t, 30+2*ButtonPadX, b.W)
}

func TestHiddenSkipped(t *testing.T) {
	hidden := img(50, 50)
	hidden.Hidden = true
	c := engine().Layout([]box.Visual{img(10, 10), hidden, img(10, 10)}, 100)
	require.Len(t, c.Boxes, 2)
	assert.Equal(t, 10.0, c.Boxes[1].X)
	assert.Equal(t, 10.0, c.Height)

	hidden.Hidden = false
	c.Relayout()
	require.Len(t, c.Boxes, 3)
	assert.Equal(t, 50.0, c.Height)
}

func TestMarginsAddToSize(t *testing.T) {
	v := img(10, 10)
	v.Margin = css.Edges{Left: 5, Top: 2, Right: 3, Bottom: 1}
	c := engine().Layout([]box.Visual{v}, 100)
	b := c.Boxes[0]
	assert.Equal(t, 18.0, b.W)
	assert.Equal(t, 13.0, b.H)

	x, y, w, h := b.Content()
	assert.Equal(t, []float64{5, 2, 10, 10}, []float64{x, y, w, h})
}

func TestFlow(t *testing.T) {
	a, b, c := img(1, 1), img(2, 2), img(3, 3)
	isBreak := func(v box.Visual) bool {
		s, ok := v.(*box.Separator)
		return ok && s.IsBreak()
	}
	shape := func(vs []box.Visual) string {
		out := ""
		for _, v := range vs {
			switch {
			case isBreak(v):
				out += "|"
			case v == box.Visual(a):
				out += "a"
			case v == box.Visual(b):
				out += "b"
			case v == box.Visual(c):
				out += "c"
			}
		}
		return out
	}

	tests := []struct {
		name  string
		items []box.Item
		want  string
	}{
		{"plain", []box.Item{{Visual: a}, {Visual: b}}, "ab"},
		{"start at beginning", []box.Item{{Visual: a, StartsLine: true}, {Visual: b}}, "ab"},
		{"start mid line", []box.Item{{Visual: a}, {Visual: b, StartsLine: true}}, "a|b"},
		{"end", []box.Item{{Visual: a, EndsLine: true}, {Visual: b}}, "a|b"},
		{"end then start", []box.Item{{Visual: a, EndsLine: true}, {Visual: b, StartsLine: true}}, "a|b"},
		{"both", []box.Item{{Visual: a}, {Visual: b, StartsLine: true, EndsLine: true}, {Visual: c}}, "a|b|c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shape(Flow(slices.Values(tt.items))))
		})
	}
}

func TestFlowMarkersAreZeroHeight(t *testing.T) {
	vs := Flow(slices.Values([]box.Item{{Visual: img(1, 1), EndsLine: true}}))
	require.Len(t, vs, 2)
	sep := vs[1].(*box.Separator)
	assert.Zero(t, sep.Height)
}

func TestTextSizes(t *testing.T) {
	st := css.Default()
	plain := &box.Text{Content: "abcd", Style: st}
	st.Subscript = true
	sub := &box.Text{Content: "ab", Style: st}

	c := engine().Layout([]box.Visual{plain, sub}, 500)
	require.Len(t, c.Boxes, 2)
	assert.Equal(t, 32.0, c.Boxes[0].W)
	assert.InDelta(t, 16*css.ScriptScale, c.Boxes[1].W, 1e-9)

	lineH := c.Boxes[0].H
	assert.InDelta(t, lineH-c.Boxes[1].H, c.Boxes[1].Offset(), 1e-9)
	assert.Zero(t, c.Boxes[0].Offset())
}

func TestControlSizes(t *testing.T) {
	c := engine().Layout([]box.Visual{
		&box.Checkbox{},
		&box.Dropdown{Selected: -1},
		&box.TextEntry{Width: 200},
		&box.Stepper{Width: 200, Height: 30},
	}, 1000)
	got := make([][2]float64, len(c.Boxes))
	for i, b := range c.Boxes {
		got[i] = [2]float64{b.W, b.H}
	}
	assert.Equal(t, [][2]float64{{20, 20}, {150, 30}, {200, 30}, {200, 30}}, got)
}

func TestButtonContent(t *testing.T) {
	btn := &box.Button{Content: []box.Item{{Visual: img(40, 10)}, {Visual: img(30, 20)}}}
	c := engine().Layout([]box.Visual{btn}, 500)
	b := c.Boxes[0]
	require.NotNil(t, b.Inner)
	assert.Equal(t, 70+2*ButtonPadX, b.W)
	assert.Equal(t, 20+2*ButtonPadY, b.H)

	path := c.Hit(ButtonPadX+45, ButtonPadY+5)
	require.Len(t, path, 2)
	assert.Same(t, btn, path[0])
	assert.Same(t, btn.Content[1].Visual, path[1])
}

func TestTableSpans(t *testing.T) {
	tbl := &box.Table{
		Rows: 2, Cols: 2, CellWidth: 100, Padding: 5, Border: 1,
		Cells: []box.Cell{
			{Row: 0, Col: 0, RowSpan: 2, ColSpan: 1, Items: []box.Item{{Visual: img(10, 50)}}},
			{Row: 0, Col: 1, RowSpan: 1, ColSpan: 1, Items: []box.Item{{Visual: img(10, 10)}}},
			{Row: 1, Col: 1, RowSpan: 1, ColSpan: 1, Items: []box.Item{{Visual: img(10, 10)}}},
		},
	}
	c := engine().Layout([]box.Visual{tbl}, 1000)
	b := c.Boxes[0]
	require.Len(t, b.Cells, 3)

	// two columns of 110 with three borders
	assert.Equal(t, 223.0, b.W)
	// first row 20, second row grown so the spanning cell (60) fits
	assert.Equal(t, 62.0, b.H)

	assert.Equal(t, [2]float64{1, 1}, [2]float64{b.Cells[0].X, b.Cells[0].Y})
	assert.Equal(t, 60.0, b.Cells[0].H)
	assert.Equal(t, [2]float64{112, 1}, [2]float64{b.Cells[1].X, b.Cells[1].Y})
	assert.Equal(t, [2]float64{112, 22}, [2]float64{b.Cells[2].X, b.Cells[2].Y})

	path := c.Hit(120, 30)
	require.Len(t, path, 2)
	assert.Same(t, tbl.Cells[2].Items[0].Visual, path[1])
}

func TestColSpanWidth(t *testing.T) {
	tbl := &box.Table{
		Rows: 1, Cols: 3, CellWidth: 100, Padding: 5, Border: 1,
		Cells: []box.Cell{{Row: 0, Col: 0, RowSpan: 1, ColSpan: 3}},
	}
	c := engine().Layout([]box.Visual{tbl}, 1000)
	assert.Equal(t, 332.0, c.Boxes[0].Cells[0].W)
}

func TestSubFrame(t *testing.T) {
	sf := &box.SubFrame{Width: 300, Height: 150, Items: []box.Item{{Visual: img(200, 10)}, {Visual: img(200, 10)}}}
	c := engine().Layout([]box.Visual{sf}, 1000)
	b := c.Boxes[0]
	assert.Equal(t, 300.0, b.W)
	assert.Equal(t, 150.0, b.H)
	require.NotNil(t, b.Inner)
	assert.Equal(t, 2, b.Inner.Lines)
}

func TestHitMiss(t *testing.T) {
	c := engine().Layout([]box.Visual{img(10, 10)}, 100)
	assert.Nil(t, c.Hit(50, 5))
	assert.Len(t, c.Hit(5, 5), 1)
}

func TestFoldedSkipped(t *testing.T) {
	v := img(10, 10)
	v.Folded = 1
	c := engine().Layout([]box.Visual{v, img(5, 5)}, 100)
	require.Len(t, c.Boxes, 1)
	assert.Equal(t, 5.0, c.Boxes[0].W)
}

func TestBareButtonHasNoPadding(t *testing.T) {
	btn := &box.Button{Bare: true, Content: []box.Item{{Visual: img(40, 10)}}}
	c := engine().Layout([]box.Visual{btn}, 500)
	assert.Equal(t, 40.0, c.Boxes[0].W)
	assert.Equal(t, 10.0, c.Boxes[0].H)
}

func TestRelayoutAfterVisibilityChange(t *testing.T) {
	a, b := img(60, 10), img(60, 20)
	c := engine().Layout([]box.Visual{a, b}, 100)
	require.Equal(t, 2, c.Lines)

	a.Hidden = true
	c.Relayout()
	require.Len(t, c.Boxes, 1)
	assert.Equal(t, placed{0, 0, 0}, positions(c)[0])
	assert.Equal(t, 20.0, c.Height)

	a.Hidden = false
	a.Width = 30
	c.Relayout()
	assert.Equal(t, 1, c.Lines)
	assert.Equal(t, []placed{{0, 0, 0}, {30, 0, 0}}, positions(c))
}

func TestHitPathThroughButton(t *testing.T) {
	inner := img(40, 10)
	btn := &box.Button{Content: []box.Item{{Visual: inner}}}
	c := engine().Layout([]box.Visual{img(20, 20), btn}, 500)

	path := c.Hit(20+ButtonPadX+5, ButtonPadY+5)
	require.Len(t, path, 2)
	assert.Same(t, btn, path[0])
	assert.Same(t, inner, path[1])

	// padding belongs to the button only
	path = c.Hit(21, 1)
	require.Len(t, path, 1)
	assert.Same(t, btn, path[0])
}
