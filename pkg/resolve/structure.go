package resolve

import (
	"wren/pkg/box"
	"wren/pkg/html"
)

const (
	CellWidth   = 150
	CellPadding = 5
	CellBorder  = 1
)

type gridPos struct{ row, col int }

// table places cells on a grid. Captions and stray content are emitted
// before the table itself.
func (r *resolver) table(id html.NodeID, st state, yield emit) bool {
	t := &box.Table{Base: st.base(), CellWidth: CellWidth, Padding: CellPadding, Border: CellBorder}
	reserved := make(map[gridPos]bool)
	row := -1

	kids := r.doc.Children(id)
	for i, c := range kids {
		cst := st.child(i, len(kids), true)
		switch r.doc.Tag(c) {
		case "tr":
			row++
			r.tableRow(c, cst, row, t, reserved)
		case "thead", "tbody", "tfoot":
			if r.doc.HasAttr(c, "hidden") {
				continue
			}
			rows := r.doc.Children(c)
			for j, tr := range rows {
				if r.doc.Tag(tr) != "tr" {
					continue
				}
				row++
				r.tableRow(tr, cst.child(j, len(rows), true), row, t, reserved)
			}
		case "colgroup", "col":
		default:
			if !r.node(c, cst, yield) {
				return false
			}
		}
	}

	t.Rows = max(t.Rows, row+1)
	return yield(box.Item{Visual: t, StartsLine: true, EndsLine: true})
}

// tableRow adds the cells of one row. Cells skip columns reserved by a
// rowspan from an earlier row.
func (r *resolver) tableRow(tr html.NodeID, st state, row int, t *box.Table, reserved map[gridPos]bool) {
	if r.doc.HasAttr(tr, "hidden") {
		return
	}
	col := -1
	kids := r.doc.Children(tr)
	for i, c := range kids {
		if tag := r.doc.Tag(c); tag != "td" && tag != "th" {
			continue
		}
		col++
		for reserved[gridPos{row, col}] {
			col++
		}

		colSpan := r.span(c, "colspan")
		rowSpan := r.span(c, "rowspan")
		cst := st.child(i, len(kids), true)
		t.Cells = append(t.Cells, box.Cell{
			Row:     row,
			Col:     col,
			RowSpan: rowSpan,
			ColSpan: colSpan,
			Items:   gather(func(y emit) bool { return r.node(c, cst, y) }),
		})
		for k := 1; k < rowSpan; k++ {
			for j := range colSpan {
				reserved[gridPos{row + k, col + j}] = true
			}
		}

		col += colSpan - 1
		t.Cols = max(t.Cols, col+1)
		t.Rows = max(t.Rows, row+rowSpan)
	}
}

func (r *resolver) span(id html.NodeID, name string) int {
	if n, ok := r.intAttr(id, name); ok && n > 1 {
		return n
	}
	return 1
}

// details emits an arrow that toggles everything else the element
// produces, with the first summary as its always-visible label.
func (r *resolver) details(id html.NodeID, st state, yield emit) bool {
	if !yield(box.Item{Visual: box.NewBreak(BreakHeight)}) {
		return false
	}

	arrowStyle := st.style
	arrowStyle.StartsLine, arrowStyle.EndsLine = false, false
	toggle := box.NewToggle(r.doc.HasAttr(id, "open"), box.Text{
		Base:  box.Base{Tooltip: st.style.Tooltip, Pointer: true},
		Style: arrowStyle,
	})
	if !yield(box.Item{Visual: toggle.Arrow}) {
		return false
	}

	kids := r.doc.Children(id)
	summary := -1
	for i, c := range kids {
		if r.doc.Tag(c) == "summary" {
			summary = i
			break
		}
	}
	if summary >= 0 {
		sst := st.child(summary, len(kids), true)
		sst.click = toggle
		sst.style.Pointer = true
		if !r.children(kids[summary], sst, "", "", true, yield) {
			return false
		}
		if !yield(box.Item{Visual: box.NewBreak(BreakHeight)}) {
			return false
		}
	} else {
		label := &box.Text{
			Base:    box.Base{Tooltip: st.style.Tooltip, Pointer: true, Click: toggle},
			Content: "Details",
			Style:   arrowStyle,
		}
		if !yield(box.Item{Visual: label}) {
			return false
		}
	}

	fold := func(it box.Item) bool {
		toggle.Add(it.Visual)
		return yield(it)
	}
	for i, c := range kids {
		if !r.node(c, st.child(i, len(kids), true), fold) {
			return false
		}
	}
	return true
}
