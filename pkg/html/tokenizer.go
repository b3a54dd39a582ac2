package html

import (
	gohtml "html"
	"strings"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenStartTag:
		return "StartTag"
	case TokenEndTag:
		return "EndTag"
	case TokenText:
		return "Text"
	}
	return "EOF"
}

type Token struct {
	Type       TokenType
	TagName    string
	Attributes []Attribute
	Text       string // decoded
}

// Attr looks up an attribute of a start tag token.
func (t Token) Attr(name string) (string, bool) {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Tokenizer splits markup into tags and text. It never fails: anything it
// cannot make sense of becomes text or is dropped.
type Tokenizer struct {
	input string
	pos   int
}

func NewTokenizer(html string) *Tokenizer {
	return &Tokenizer{input: html, pos: 0}
}

func (t *Tokenizer) NextToken() Token {
	for t.pos < len(t.input) {
		if t.startsTag(t.pos) {
			if tok, ok := t.readTag(); ok {
				return tok
			}
			// comment, doctype or empty end tag: nothing to emit
			continue
		}
		return t.readText()
	}
	return Token{Type: TokenEOF}
}

// startsTag reports whether the '<' at i opens markup. A '<' followed by
// anything but a letter, '!' or '/' is literal text.
func (t *Tokenizer) startsTag(i int) bool {
	if t.input[i] != '<' || i+1 >= len(t.input) {
		return false
	}
	c := t.input[i+1]
	return c == '!' || c == '/' || isLetter(c)
}

func (t *Tokenizer) readTag() (Token, bool) {
	t.pos++ // '<'

	if strings.HasPrefix(t.input[t.pos:], "!--") {
		t.pos += 3
		if end := strings.Index(t.input[t.pos:], "-->"); end >= 0 {
			t.pos += end + 3
		} else {
			t.pos = len(t.input)
		}
		return Token{}, false
	}

	// <!DOCTYPE ...> and other declarations
	if t.input[t.pos] == '!' {
		t.skipPast('>')
		return Token{}, false
	}

	isEndTag := false
	if t.input[t.pos] == '/' {
		isEndTag = true
		t.pos++
	}
	tagName := t.readTagName()
	if isEndTag {
		t.skipPast('>')
		if tagName == "" {
			return Token{}, false
		}
		return Token{Type: TokenEndTag, TagName: tagName}, true
	}

	attrs := t.readAttributes()
	return Token{Type: TokenStartTag, TagName: tagName, Attributes: attrs}, true
}

// readTagName consumes up to whitespace, '/' or '>'.
func (t *Tokenizer) readTagName() string {
	start := t.pos
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if isSpace(c) || c == '/' || c == '>' {
			break
		}
		t.pos++
	}
	return strings.ToLower(t.input[start:t.pos])
}

// readAttributes consumes the rest of a start tag including its '>'.
// Whitespace and '/' outside quotes separate attributes, '=' ends a name,
// and a value that begins with a quote runs to the matching quote. The
// first occurrence of a name wins.
func (t *Tokenizer) readAttributes() []Attribute {
	var attrs []Attribute
	var name, value strings.Builder
	inValue := false
	var quote byte

	finish := func() {
		if name.Len() == 0 {
			inValue = false
			value.Reset()
			return
		}
		n := strings.ToLower(name.String())
		dup := false
		for _, a := range attrs {
			if a.Name == n {
				dup = true
				break
			}
		}
		if !dup {
			attrs = append(attrs, Attribute{Name: n, Value: gohtml.UnescapeString(value.String())})
		}
		name.Reset()
		value.Reset()
		inValue = false
	}

	for t.pos < len(t.input) {
		c := t.input[t.pos]
		t.pos++
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				value.WriteByte(c)
			}
		case c == '>':
			finish()
			return attrs
		case isSpace(c) || c == '/':
			finish()
		case !inValue && c == '=':
			inValue = true
		case !inValue:
			name.WriteByte(c)
		case (c == '"' || c == '\'') && value.Len() == 0:
			quote = c
		default:
			value.WriteByte(c)
		}
	}
	// unterminated tag at end of input
	finish()
	return attrs
}

func (t *Tokenizer) readText() Token {
	start := t.pos
	t.pos++
	for t.pos < len(t.input) && !t.startsTag(t.pos) {
		t.pos++
	}
	return Token{Type: TokenText, Text: gohtml.UnescapeString(t.input[start:t.pos])}
}

func (t *Tokenizer) skipPast(target byte) {
	if i := strings.IndexByte(t.input[t.pos:], target); i >= 0 {
		t.pos += i + 1
		return
	}
	t.pos = len(t.input)
}

// ReadRawUntil reads raw content until the closing end tag is found (e.g., </script>).
// This is used for raw text elements like <script> and <style> where '<' does not
// start a new tag.
func (t *Tokenizer) ReadRawUntil(endTag string) string {
	needle := "</" + endTag
	start := t.pos
	for t.pos+len(needle) <= len(t.input) {
		if strings.EqualFold(t.input[t.pos:t.pos+len(needle)], needle) {
			content := t.input[start:t.pos]
			t.pos += len(needle)
			t.skipPast('>')
			return content
		}
		t.pos++
	}
	// No closing tag found; consume everything remaining
	content := t.input[start:]
	t.pos = len(t.input)
	return content
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}
