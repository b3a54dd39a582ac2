// Package text measures styled text with the Go font family.
package text

import (
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"wren/pkg/css"
)

// LineSpacing is the line height as a multiple of the font size.
const LineSpacing = 1.2

// Face identifies one font face at one size.
type Face struct {
	Bold   bool
	Italic bool
	Mono   bool
	Size   float64
}

// FaceFor returns the face text in style s is drawn with.
func FaceFor(s css.Style) Face {
	return Face{Bold: s.Bold, Italic: s.Italic, Mono: s.Monospace, Size: s.EffectiveFontSize()}
}

// Measurer sizes text. Widths and heights are in pixels.
type Measurer interface {
	Measure(s string, style css.Style) (width, height float64)
}

// fontSet holds the parsed Go fonts.
type fontSet struct {
	regular, bold, italic, boldItalic, mono, monoBold *truetype.Font
}

var (
	fonts     fontSet
	fontsErr  error
	fontsOnce sync.Once
)

func loadFonts() (*fontSet, error) {
	fontsOnce.Do(func() {
		parse := func(ttf []byte) *truetype.Font {
			if fontsErr != nil {
				return nil
			}
			f, err := truetype.Parse(ttf)
			if err != nil {
				fontsErr = err
			}
			return f
		}
		fonts = fontSet{
			regular:    parse(goregular.TTF),
			bold:       parse(gobold.TTF),
			italic:     parse(goitalic.TTF),
			boldItalic: parse(gobolditalic.TTF),
			mono:       parse(gomono.TTF),
			monoBold:   parse(gomonobold.TTF),
		}
	})
	return &fonts, fontsErr
}

func (fs *fontSet) pick(f Face) *truetype.Font {
	if f.Mono {
		// no italic monospace face; italic mono falls back to upright
		if f.Bold {
			return fs.monoBold
		}
		return fs.mono
	}
	switch {
	case f.Bold && f.Italic:
		return fs.boldItalic
	case f.Bold:
		return fs.bold
	case f.Italic:
		return fs.italic
	}
	return fs.regular
}

// GoFonts measures with the Go fonts and caches one font.Face per Face.
// It is safe for concurrent use.
type GoFonts struct {
	mu    sync.Mutex
	faces map[Face]font.Face
}

func NewGoFonts() *GoFonts {
	return &GoFonts{faces: make(map[Face]font.Face)}
}

// FontFace returns the drawing face for f, or nil when the fonts failed
// to load.
func (g *GoFonts) FontFace(f Face) font.Face {
	g.mu.Lock()
	defer g.mu.Unlock()
	if face, ok := g.faces[f]; ok {
		return face
	}
	fs, err := loadFonts()
	if err != nil {
		return nil
	}
	face := truetype.NewFace(fs.pick(f), &truetype.Options{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	g.faces[f] = face
	return face
}

// Measure returns the size of s. Embedded newlines start new lines.
func (g *GoFonts) Measure(s string, style css.Style) (width, height float64) {
	f := FaceFor(style)
	face := g.FontFace(f)
	lines := strings.Split(s, "\n")
	if face == nil {
		return estimate(lines, f.Size)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, line := range lines {
		w := float64(font.MeasureString(face, line)) / 64
		width = max(width, w)
	}
	return width, float64(len(lines)) * f.Size * LineSpacing
}

// Fixed gives every rune the same advance. Used where real fonts are not
// wanted, such as tests.
type Fixed struct {
	// Advance is the rune width as a multiple of the font size; 0 means 0.5.
	Advance float64
}

func (m Fixed) Measure(s string, style css.Style) (width, height float64) {
	if m.Advance == 0 {
		m.Advance = 0.5
	}
	return m.measureLines(strings.Split(s, "\n"), style.EffectiveFontSize())
}

// rough estimate used if fonts could not be parsed
func estimate(lines []string, size float64) (width, height float64) {
	return Fixed{Advance: 0.6}.measureLines(lines, size)
}

func (m Fixed) measureLines(lines []string, size float64) (width, height float64) {
	for _, line := range lines {
		width = max(width, float64(len([]rune(line)))*size*m.Advance)
	}
	return width, float64(len(lines)) * size * LineSpacing
}
