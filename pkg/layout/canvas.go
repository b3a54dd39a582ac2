package layout

import (
	"wren/pkg/box"
)

// Box is a placed visual. X and Y are the top-left of its margin box
// relative to the canvas; Y is the top of its line.
type Box struct {
	Visual     box.Visual
	X, Y       float64
	W, H       float64 // margins included
	Line       int
	LineHeight float64

	// Inner is the nested layout of a button's content or a sub-frame,
	// with its origin at (X+InnerX, Y+InnerY).
	Inner          *Canvas
	InnerX, InnerY float64
	// Cells of a table, positioned relative to the box.
	Cells []CellBox
}

// Content returns the rectangle inside the margins.
func (b *Box) Content() (x, y, w, h float64) {
	m := b.Visual.Common().Margin
	return b.X + m.Left, b.Y + m.Top, b.W - m.Horizontal(), b.H - m.Vertical()
}

// Offset is how far below the line top the box is drawn. Subscripts sit
// at the bottom of their line; everything else at the top.
func (b *Box) Offset() float64 {
	if t, ok := b.Visual.(*box.Text); ok && t.Style.Subscript && !t.Style.Superscript {
		return b.LineHeight - b.H
	}
	return 0
}

func (b *Box) contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.W && y >= b.Y && y < b.Y+b.LineHeight
}

// CellBox is one laid out table cell.
type CellBox struct {
	Cell           *box.Cell
	X, Y, W, H     float64
	Inner          *Canvas
	InnerX, InnerY float64
}

// Canvas is the result of laying out a list of visuals.
type Canvas struct {
	Width, Height float64
	Boxes         []Box
	Lines         int
	// Avail is the width lines wrap at.
	Avail float64

	engine  *Engine
	visuals []box.Visual
}

// Visuals returns the laid out visuals, hidden ones included.
func (c *Canvas) Visuals() []box.Visual { return c.visuals }

// Relayout places the visuals again, picking up visibility and size
// changes made since the last layout.
func (c *Canvas) Relayout() {
	c.Boxes = c.Boxes[:0]
	c.Lines = 0

	var x, y, lineHeight, width float64
	line, lineStart := 0, 0
	closeLine := func() {
		for i := lineStart; i < len(c.Boxes); i++ {
			c.Boxes[i].LineHeight = lineHeight
		}
	}

	for _, v := range c.visuals {
		if !v.Common().Visible() {
			continue
		}
		b := c.engine.place(v, c.Avail)
		sep, isSep := v.(*box.Separator)
		forced := isSep && sep.IsBreak() && (x != 0 || y != 0)
		if forced || (x > 0 && x+b.W > c.Avail) {
			closeLine()
			y += lineHeight
			x, lineHeight = 0, 0
			line++
			lineStart = len(c.Boxes)
		}
		b.X, b.Y, b.Line = x, y, line
		c.Boxes = append(c.Boxes, b)
		x += b.W
		lineHeight = max(lineHeight, b.H)
		if !isSep || !sep.IsBreak() {
			width = max(width, x)
		}
	}
	closeLine()

	c.Width = width
	c.Height = y + lineHeight
	if len(c.Boxes) > 0 {
		c.Lines = line + 1
	}
}

// Hit returns the visuals under (x, y), outermost first.
func (c *Canvas) Hit(x, y float64) []box.Visual {
	for i := range c.Boxes {
		b := &c.Boxes[i]
		if !b.contains(x, y) {
			continue
		}
		path := []box.Visual{b.Visual}
		if b.Inner != nil {
			path = append(path, b.Inner.Hit(x-b.X-b.InnerX, y-b.Y-b.InnerY)...)
		}
		for _, cell := range b.Cells {
			cx, cy := x-b.X-cell.X, y-b.Y-cell.Y
			if cx >= 0 && cx < cell.W && cy >= 0 && cy < cell.H {
				path = append(path, cell.Inner.Hit(x-b.X-cell.InnerX, y-b.Y-cell.InnerY)...)
			}
		}
		return path
	}
	return nil
}
