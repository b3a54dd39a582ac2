// Package layout places render items on lines: left to right, wrapping at
// the available width and at forced break markers.
package layout

import (
	"iter"

	"wren/pkg/box"
)

// Flow turns line-break flags into break markers. A marker goes before an
// item that starts a line unless the output is already at a line start,
// and always after an item that ends a line. Markers are zero-height and
// span the whole line.
func Flow(items iter.Seq[box.Item]) []box.Visual {
	var out []box.Visual
	atLineStart := func() bool {
		if len(out) == 0 {
			return true
		}
		sep, ok := out[len(out)-1].(*box.Separator)
		return ok && sep.IsBreak()
	}
	for it := range items {
		if it.Visual == nil {
			continue
		}
		if it.StartsLine && !atLineStart() {
			out = append(out, box.NewBreak(0))
		}
		out = append(out, it.Visual)
		if it.EndsLine {
			out = append(out, box.NewBreak(0))
		}
	}
	return out
}
