// Package resolve walks a parsed document, folds tag presentation into an
// inherited style and produces the render items the layout engine places.
package resolve

import (
	"image"
	"iter"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"wren/pkg/box"
	"wren/pkg/css"
	"wren/pkg/form"
	"wren/pkg/html"
	"wren/std/net"
)

// DefaultTitle is used when the document has no usable title.
const DefaultTitle = "Untitled document"

// Host is the display surface a document is resolved for. Loads run in
// the background; done callbacks run only if the surface still shows the
// document that asked for them.
type Host interface {
	box.Navigator
	// LoadImage fetches r and calls done with the decoded picture. Failures
	// are dropped.
	LoadImage(r *net.Request, done func(image.Image))
	// LoadFrame fetches r and resolves it into sf.
	LoadFrame(r *net.Request, sf *box.SubFrame)
	// Embed returns the host of a document nested in sf.
	Embed(sf *box.SubFrame) Host
}

// Context is everything a traversal needs besides the document.
type Context struct {
	// Origin is the response the document came from; nil for markup that
	// was not fetched.
	Origin *net.Response
	// Base overrides the URL relative references resolve against. The
	// default is the origin URL.
	Base *url.URL
	// Host may be nil, in which case links have no target and nothing is
	// loaded.
	Host Host
	Log  *zap.Logger
	// Tags defaults to css.Tags().
	Tags *css.Table
}

// state is the inherited traversal context of one node.
type state struct {
	style css.Style
	click box.Click
	form  *form.Form
}

func (s state) child(index, count int, inheritBreaks bool) state {
	s.style = s.style.Child(index, count, inheritBreaks)
	return s
}

func (s state) base() box.Base {
	return box.Base{
		Margin:  s.style.Margin,
		Tooltip: s.style.Tooltip,
		Pointer: s.style.Pointer,
		Click:   s.click,
	}
}

func (s state) item(v box.Visual) box.Item {
	return box.Item{Visual: v, StartsLine: s.style.StartsLine, EndsLine: s.style.EndsLine}
}

type emit = func(box.Item) bool

type resolver struct {
	doc    *html.Document
	tags   *css.Table
	host   Host
	origin *net.Response
	page   *url.URL // referrer of requests the page makes
	base   *url.URL
	policy net.RefPolicy
	log    *zap.Logger
	title  string
}

// Resolve returns the document title and its render items. The items are
// produced lazily, in document order, each time the sequence is ranged
// over.
func Resolve(doc *html.Document, ctx Context) (string, iter.Seq[box.Item]) {
	r := &resolver{
		doc:    doc,
		tags:   ctx.Tags,
		host:   ctx.Host,
		origin: ctx.Origin,
		base:   ctx.Base,
		log:    ctx.Log,
		title:  DefaultTitle,
	}
	if r.tags == nil {
		r.tags = css.Tags()
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if ctx.Origin != nil {
		r.page = ctx.Origin.URL
		r.policy = ctx.Origin.Policy
		if r.base == nil {
			r.base = ctx.Origin.URL
		}
	}
	r.scanHead()

	return r.title, func(yield func(box.Item) bool) {
		r.node(doc.Root(), state{style: css.Default()}, yield)
	}
}

// scanHead reads the title and base URL.
func (r *resolver) scanHead() {
	head := r.doc.Find(r.doc.Root(), "head")
	if head == html.NoNode {
		return
	}
	for _, c := range r.doc.Children(head) {
		switch r.doc.Tag(c) {
		case "title":
			if t := strings.TrimSpace(r.doc.TextContent(c)); t != "" {
				r.title = t
			}
		case "base":
			href, ok := r.doc.Attr(c, "href")
			if !ok {
				continue
			}
			if u, err := net.ResolveURL(r.base, href); err == nil {
				r.base = u
			} else {
				r.log.Debug("ignoring bad base href", zap.String("href", href), zap.Error(err))
			}
		}
	}
}

// node resolves one node. It returns false once yield has asked to stop.
func (r *resolver) node(id html.NodeID, st state, yield emit) bool {
	n := r.doc.Node(id)
	if n.Type == html.TextNode {
		return r.text(n.Text, st, yield)
	}
	if _, hidden := n.Attr("hidden"); hidden {
		return true
	}
	if title, ok := n.Attr("title"); ok {
		st.style.Tooltip = title
	}

	switch n.Tag {
	case "head", "wbr":
		return true
	case "br":
		return yield(box.Item{Visual: box.NewBreak(BreakHeight)})
	case "hr":
		return r.rule(st, yield)
	case "img":
		return r.image(id, st, yield)
	case "input":
		return r.input(id, st, yield)
	case "textarea":
		return r.textarea(id, st, yield)
	case "button":
		return r.button(id, st, yield)
	case "select", "datalist":
		return r.selectBox(id, st, yield)
	case "form":
		return r.form(id, st, yield)
	case "table":
		return r.table(id, st, yield)
	case "details":
		return r.details(id, st, yield)
	case "meter", "progress":
		return r.meter(id, st, yield)
	case "iframe":
		src, ok := n.Attr("src")
		return r.iframe(id, st, src, ok, yield)
	case "embed":
		typ, _ := n.Attr("type")
		if major, _, _ := strings.Cut(typ, "/"); strings.EqualFold(major, "image") {
			return r.image(id, st, yield)
		}
		src, ok := n.Attr("src")
		return r.iframe(id, st, src, ok, yield)
	case "object":
		if data, ok := n.Attr("data"); ok {
			return r.iframe(id, st, data, true, yield)
		}
		return true
	case "ul", "ol":
		return r.list(id, st, yield)
	}
	return r.element(id, st, "", "", yield)
}

// element is the generic transform: tag defaults, inline style, then the
// children. prefix and suffix become extra first and last text children.
func (r *resolver) element(id html.NodeID, st state, prefix, suffix string, yield emit) bool {
	n := r.doc.Node(id)
	switch r.tags.Kind(n.Tag) {
	case css.KindSuppressed:
		return true
	case css.KindTransparent:
	default:
		st.style = r.tags.Apply(n.Tag, st.style)
	}
	if decl, ok := n.Attr("style"); ok {
		st.style = css.ParseInlineStyle(decl).Apply(st.style)
	}

	switch n.Tag {
	case "a":
		st.click = r.link(id)
	case "q":
		prefix, suffix = `"`+prefix, suffix+`"`
	}
	return r.children(id, st, prefix, suffix, true, yield)
}

func (r *resolver) children(id html.NodeID, st state, prefix, suffix string, inheritBreaks bool, yield emit) bool {
	kids := r.doc.Children(id)
	count, offset := len(kids), 0
	if prefix != "" {
		count++
		offset = 1
	}
	if suffix != "" {
		count++
	}

	if prefix != "" && !r.text(prefix, st.child(0, count, inheritBreaks), yield) {
		return false
	}
	for i, c := range kids {
		if !r.node(c, st.child(i+offset, count, inheritBreaks), yield) {
			return false
		}
	}
	if suffix != "" {
		return r.text(suffix, st.child(count-1, count, inheritBreaks), yield)
	}
	return true
}

var whitespace = regexp.MustCompile(`\s+`)

// words splits a text run into the tokens that wrap independently. Every
// token but the last keeps the space that followed it.
func words(s string, pre bool) []string {
	if pre {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	parts := strings.Split(whitespace.ReplaceAllString(s, " "), " ")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i < len(parts)-1 {
			p += " "
		}
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// text emits one Text per word. An empty run still emits one empty Text
// so its line breaks take effect.
func (r *resolver) text(content string, st state, yield emit) bool {
	tokens := words(content, st.style.Pre)
	if len(tokens) == 0 {
		tokens = []string{""}
	}
	m := st.style.Margin
	style := st.style
	style.Margin = css.Edges{}
	last := len(tokens) - 1
	for i, tok := range tokens {
		t := &box.Text{Base: st.base(), Content: tok, Style: style}
		t.Margin = css.Edges{Top: m.Top, Bottom: m.Bottom}
		if i == 0 {
			t.Margin.Left = m.Left
		}
		if i == last {
			t.Margin.Right = m.Right
		}
		it := box.Item{
			Visual:     t,
			StartsLine: i == 0 && st.style.StartsLine,
			EndsLine:   i == last && st.style.EndsLine,
		}
		if !yield(it) {
			return false
		}
	}
	return true
}

func (r *resolver) link(id html.NodeID) *box.Link {
	l := &box.Link{
		Href:     r.resolveAttr(id, "href"),
		Ping:     r.resolveAttr(id, "ping"),
		Download: r.doc.HasAttr(id, "download"),
		Policy:   r.policy,
		Referrer: r.page,
		Target:   r.host,
	}
	if p, ok := r.doc.Attr(id, "referrerpolicy"); ok {
		l.Policy = net.ParseRefPolicy(p)
	}
	return l
}

// resolveAttr resolves a URL attribute against the base URL, or returns
// nil.
func (r *resolver) resolveAttr(id html.NodeID, name string) *url.URL {
	ref, ok := r.doc.Attr(id, name)
	if !ok {
		return nil
	}
	u, err := net.ResolveURL(r.base, ref)
	if err != nil {
		r.log.Debug("ignoring bad URL", zap.String("attr", name), zap.String("value", ref), zap.Error(err))
		return nil
	}
	return u
}

func (r *resolver) list(id html.NodeID, st state, yield emit) bool {
	tag := r.doc.Tag(id)
	st.style = r.tags.Apply(tag, st.style)
	ordered := tag == "ol"

	counter, step := 1, 1
	if ordered {
		if v, ok := r.intAttr(id, "start"); ok {
			counter = v
		}
		if r.doc.HasAttr(id, "reversed") {
			counter += len(r.doc.ChildElements(id, "li")) - 1
			step = -1
		}
	}

	kids := r.doc.Children(id)
	for i, c := range kids {
		cst := st.child(i, len(kids), true)
		if r.doc.IsText(c) || r.doc.Tag(c) != "li" {
			if !r.node(c, cst, yield) {
				return false
			}
			continue
		}

		prefix := "• "
		if ordered {
			if v, ok := r.intAttr(c, "value"); ok {
				counter = v
			}
			prefix = strconv.Itoa(counter) + ". "
			counter += step
		}
		if r.doc.HasAttr(c, "hidden") {
			continue
		}
		if title, ok := r.doc.Attr(c, "title"); ok {
			cst.style.Tooltip = title
		}
		if !r.element(c, cst, prefix, "", yield) {
			return false
		}
	}
	return true
}

// gather runs f and collects what it emits.
func gather(f func(yield emit) bool) []box.Item {
	var out []box.Item
	f(func(it box.Item) bool {
		out = append(out, it)
		return true
	})
	return out
}

func (r *resolver) floatAttr(id html.NodeID, name string) (float64, bool) {
	v, ok := r.doc.Attr(id, name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (r *resolver) intAttr(id html.NodeID, name string) (int, bool) {
	v, ok := r.doc.Attr(id, name)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}
