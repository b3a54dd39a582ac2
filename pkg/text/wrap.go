package text

import (
	"strings"

	"wren/pkg/css"
)

// BreakLines breaks s into lines no wider than maxWidth, splitting at
// spaces. Explicit newlines are kept. A word wider than maxWidth gets a
// line of its own.
func BreakLines(m Measurer, s string, style css.Style, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, breakParagraph(m, para, style, maxWidth)...)
	}
	return lines
}

func breakParagraph(m Measurer, para string, style css.Style, maxWidth float64) []string {
	if w, _ := m.Measure(para, style); w <= maxWidth {
		return []string{para}
	}
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{para}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if w, _ := m.Measure(candidate, style); w <= maxWidth || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
