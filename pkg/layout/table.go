package layout

import (
	"wren/pkg/box"
)

// table lays out every cell at the table's cell width and sizes rows to
// their tallest cell. Borders are shared between neighbouring cells.
func (e *Engine) table(t *box.Table) (w, h float64, cells []CellBox) {
	if t.Rows == 0 || t.Cols == 0 {
		return 0, 0, nil
	}
	cellW := orDefault(t.CellWidth, DefaultCellWidth)
	pad, border := t.Padding, t.Border
	colW := cellW + 2*pad

	spanWidth := func(span int) float64 {
		return float64(span)*colW + float64(span-1)*border
	}

	cells = make([]CellBox, len(t.Cells))
	rowHeights := make([]float64, t.Rows)
	for i := range t.Cells {
		c := &t.Cells[i]
		rowSpan := clampSpan(c.RowSpan, c.Row, t.Rows)
		colSpan := clampSpan(c.ColSpan, c.Col, t.Cols)
		inner := e.LayoutItems(c.Items, spanWidth(colSpan)-2*pad)
		cells[i] = CellBox{Cell: c, Inner: inner, W: spanWidth(colSpan), H: inner.Height + 2*pad}
		if rowSpan == 1 {
			rowHeights[c.Row] = max(rowHeights[c.Row], cells[i].H)
		}
	}

	// cells spanning rows grow the last row they cover when they do not fit
	for i := range t.Cells {
		c := &t.Cells[i]
		rowSpan := clampSpan(c.RowSpan, c.Row, t.Rows)
		if rowSpan == 1 {
			continue
		}
		last := c.Row + rowSpan - 1
		if need := cells[i].H - rowSpanHeight(rowHeights, c.Row, last, border); need > 0 {
			rowHeights[last] += need
		}
	}

	margin := t.Margin
	for i := range t.Cells {
		c := &t.Cells[i]
		rowSpan := clampSpan(c.RowSpan, c.Row, t.Rows)
		cb := &cells[i]
		cb.X = margin.Left + border + float64(c.Col)*(colW+border)
		cb.Y = margin.Top + border + rowSpanHeight(rowHeights, 0, c.Row-1, border)
		if c.Row > 0 {
			cb.Y += border
		}
		cb.H = rowSpanHeight(rowHeights, c.Row, c.Row+rowSpan-1, border)
		cb.InnerX, cb.InnerY = cb.X+pad, cb.Y+pad
	}

	w = float64(t.Cols)*(colW+border) + border
	h = rowSpanHeight(rowHeights, 0, t.Rows-1, border) + 2*border
	return w, h, cells
}

// rowSpanHeight is the height of rows first..last with the borders
// between them.
func rowSpanHeight(rows []float64, first, last int, border float64) float64 {
	if last < first {
		return 0
	}
	var h float64
	for r := first; r <= last; r++ {
		h += rows[r]
	}
	return h + float64(last-first)*border
}

func clampSpan(span, start, limit int) int {
	return max(min(span, limit-start), 1)
}
