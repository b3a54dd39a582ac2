package html

import (
	gohtml "html"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// interTagSpace matches whitespace that separates two tags.
var interTagSpace = regexp.MustCompile(`>[ \t\r\n]*<`)

type Parser struct {
	tokenizer *Tokenizer
	doc       *Document
	cursor    NodeID
	log       *zap.Logger
}

func NewParser(html string, log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	normalized := strings.TrimSpace(interTagSpace.ReplaceAllString(html, "><"))
	return &Parser{
		tokenizer: NewTokenizer(normalized),
		doc:       NewDocument(),
		log:       log,
	}
}

// Parse builds the tree. It never fails: unmatched end tags are ignored
// and elements still open at the end of input are closed.
func (p *Parser) Parse() *Document {
	p.cursor = p.doc.Root()

	for {
		token := p.tokenizer.NextToken()
		if token.Type == TokenEOF {
			break
		}

		switch token.Type {
		case TokenStartTag:
			p.startTag(token)

		case TokenText:
			if token.Text != "" {
				p.doc.AppendText(p.cursor, token.Text)
			}

		case TokenEndTag:
			p.endTag(token.TagName)
		}
	}

	// Close whatever is still open.
	for id := p.cursor; id != NoNode; id = p.doc.Parent(id) {
		if id != p.doc.Root() {
			p.log.Debug("element not closed before end of input", zap.String("tag", p.doc.Tag(id)))
			p.closeElement(id)
		}
	}
	return p.doc
}

func (p *Parser) startTag(token Token) {
	id := p.doc.AppendElement(p.cursor, token.TagName, token.Attributes)

	if IsVoid(token.TagName) {
		p.closeElement(id)
		return
	}

	switch token.TagName {
	case "script", "style":
		if raw := p.tokenizer.ReadRawUntil(token.TagName); raw != "" {
			p.doc.AppendText(id, raw)
		}
		p.closeElement(id)
		return
	case "textarea", "title":
		if raw := p.tokenizer.ReadRawUntil(token.TagName); raw != "" {
			p.doc.AppendText(id, gohtml.UnescapeString(raw))
		}
		p.closeElement(id)
		return
	}

	p.cursor = id
}

// endTag pops the cursor only when the name matches the current element.
func (p *Parser) endTag(tagName string) {
	if p.cursor == p.doc.Root() || p.doc.Tag(p.cursor) != tagName {
		p.log.Debug("ignoring unmatched end tag",
			zap.String("tag", tagName),
			zap.String("open", p.doc.Tag(p.cursor)))
		return
	}
	p.closeElement(p.cursor)
	p.cursor = p.doc.Parent(p.cursor)
}

// closeElement gives an element with no content its single empty text child.
func (p *Parser) closeElement(id NodeID) {
	if len(p.doc.Children(id)) == 0 {
		p.doc.AppendText(id, "")
	}
}

// Parse builds a document tree from markup.
func Parse(html string) *Document {
	return NewParser(html, nil).Parse()
}

// ParseWithLogger is Parse with recovery decisions logged at debug level.
func ParseWithLogger(html string, log *zap.Logger) *Document {
	return NewParser(html, log).Parse()
}
