package css

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed tags.toml
var tagsTOML []byte

// Kind classifies how the generic traversal treats a tag.
type Kind int

const (
	KindGeneric Kind = iota
	KindSuppressed
	KindTransparent
)

// Rule is the presentation default for one tag. Zero fields leave the
// inherited value alone; Margin is added to the inherited margin.
type Rule struct {
	Color         string     `toml:"color"`
	Background    string     `toml:"background"`
	Bold          bool       `toml:"bold"`
	Italic        bool       `toml:"italic"`
	Underline     bool       `toml:"underline"`
	Strikethrough bool       `toml:"strikethrough"`
	Monospace     bool       `toml:"monospace"`
	Pointer       bool       `toml:"pointer"`
	Pre           bool       `toml:"pre"`
	Subscript     bool       `toml:"subscript"`
	Superscript   bool       `toml:"superscript"`
	Breaks        bool       `toml:"breaks"`
	Size          float64    `toml:"size"`
	Margin        [4]float64 `toml:"margin"` // left, top, right, bottom

	color      Color
	background Color
}

// Table maps tag names to their defaults.
type Table struct {
	Breaks      []string        `toml:"breaks"`
	Suppressed  []string        `toml:"suppressed"`
	Transparent []string        `toml:"transparent"`
	Tags        map[string]Rule `toml:"tag"`

	kinds map[string]Kind
}

// ParseTable decodes and validates a tag table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decoding tag table: %w", err)
	}
	if t.Tags == nil {
		t.Tags = make(map[string]Rule)
	}
	for name, r := range t.Tags {
		var ok bool
		if r.Color != "" {
			if r.color, ok = ParseColor(r.Color); !ok {
				return nil, fmt.Errorf("tag %s: bad color %q", name, r.Color)
			}
		}
		if r.Background != "" {
			if r.background, ok = ParseColor(r.Background); !ok {
				return nil, fmt.Errorf("tag %s: bad background %q", name, r.Background)
			}
		}
		t.Tags[name] = r
	}
	for _, name := range t.Breaks {
		r := t.Tags[name]
		r.Breaks = true
		t.Tags[name] = r
	}
	t.kinds = make(map[string]Kind, len(t.Suppressed)+len(t.Transparent))
	for _, name := range t.Suppressed {
		t.kinds[name] = KindSuppressed
	}
	for _, name := range t.Transparent {
		if t.kinds[name] == KindSuppressed {
			return nil, fmt.Errorf("tag %s is both suppressed and transparent", name)
		}
		t.kinds[name] = KindTransparent
	}
	return &t, nil
}

var (
	defaultTable     *Table
	defaultTableOnce sync.Once
)

// Tags returns the built-in table.
func Tags() *Table {
	defaultTableOnce.Do(func() {
		t, err := ParseTable(tagsTOML)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

func (t *Table) Kind(tag string) Kind {
	return t.kinds[tag]
}

// Apply returns s with the defaults for tag applied.
func (t *Table) Apply(tag string, s Style) Style {
	r, ok := t.Tags[tag]
	if !ok {
		return s
	}
	return r.Apply(s)
}

func (r Rule) Apply(s Style) Style {
	if r.Color != "" {
		s.Color = r.color
	}
	if r.Background != "" {
		s.Background = r.background
	}
	s.Bold = s.Bold || r.Bold
	s.Italic = s.Italic || r.Italic
	s.Underline = s.Underline || r.Underline
	s.Strikethrough = s.Strikethrough || r.Strikethrough
	s.Monospace = s.Monospace || r.Monospace
	s.Pointer = s.Pointer || r.Pointer
	s.Pre = s.Pre || r.Pre
	s.Subscript = s.Subscript || r.Subscript
	s.Superscript = s.Superscript || r.Superscript
	if r.Size != 0 {
		s.FontSize = r.Size
	}
	s.Margin = s.Margin.Add(Edges{r.Margin[0], r.Margin[1], r.Margin[2], r.Margin[3]})
	if r.Breaks {
		s = s.Breaks()
	}
	return s
}
