package css

import (
	"strconv"
	"strings"
)

// Declarations is a parsed style attribute with shorthands expanded.
type Declarations map[string]string

// ParseInlineStyle parses "prop: value; ..." as found in a style attribute.
func ParseInlineStyle(styleAttr string) Declarations {
	decls := make(Declarations)
	for _, decl := range strings.Split(styleAttr, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		parts := strings.SplitN(decl, ":", 2)
		if len(parts) != 2 {
			continue
		}
		property := strings.TrimSpace(strings.ToLower(parts[0]))
		value := strings.TrimSpace(parts[1])
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		decls.expandShorthand(property, value)
	}
	return decls
}

func (d Declarations) expandShorthand(property, value string) {
	switch property {
	case "margin":
		d.expandBox("margin", value)
	case "background":
		// only the color part of the shorthand is used
		for _, part := range strings.Fields(value) {
			if _, ok := ParseColor(part); ok {
				d["background-color"] = part
			}
		}
	default:
		d[property] = value
	}
}

// expandBox expands margin shorthand
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
//
//	"10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func (d Declarations) expandBox(prefix, value string) {
	parts := strings.Fields(value)
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, right, bottom, left = parts[0], parts[1], parts[0], parts[1]
	case 3:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[1]
	case 4:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	d[prefix+"-top"] = top
	d[prefix+"-right"] = right
	d[prefix+"-bottom"] = bottom
	d[prefix+"-left"] = left
}

// ParseLength parses a length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// Apply overrides s with the declarations it understands. Unknown
// properties and unparsable values are ignored.
func (d Declarations) Apply(s Style) Style {
	if c, ok := ParseColor(d["color"]); ok {
		s.Color = c
	}
	if c, ok := ParseColor(d["background-color"]); ok {
		s.Background = c
	}
	if size, ok := ParseLength(d["font-size"]); ok && size > 0 {
		s.FontSize = size
	}
	switch d["font-weight"] {
	case "bold", "bolder", "600", "700", "800", "900":
		s.Bold = true
	case "normal", "lighter", "100", "200", "300", "400":
		s.Bold = false
	}
	switch d["font-style"] {
	case "italic", "oblique":
		s.Italic = true
	case "normal":
		s.Italic = false
	}
	if deco, ok := d["text-decoration"]; ok {
		s.Underline = strings.Contains(deco, "underline")
		s.Strikethrough = strings.Contains(deco, "line-through")
	}
	if strings.Contains(d["font-family"], "monospace") {
		s.Monospace = true
	}
	if d["white-space"] == "pre" {
		s.Pre = true
	}
	if d["cursor"] == "pointer" {
		s.Pointer = true
	}
	if d["display"] == "block" {
		s = s.Breaks()
	}
	if v, ok := ParseLength(d["margin-left"]); ok {
		s.Margin.Left = v
	}
	if v, ok := ParseLength(d["margin-top"]); ok {
		s.Margin.Top = v
	}
	if v, ok := ParseLength(d["margin-right"]); ok {
		s.Margin.Right = v
	}
	if v, ok := ParseLength(d["margin-bottom"]); ok {
		s.Margin.Bottom = v
	}
	return s
}
