package html

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shape renders the tree as nested tag names with quoted text, for diffs.
func shape(d *Document, id NodeID) string {
	n := d.Node(id)
	if n.Type == TextNode {
		return `"` + n.Text + `"`
	}
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		parts = append(parts, shape(d, c))
	}
	return n.Tag + "(" + strings.Join(parts, " ") + ")"
}

func TestParser_SingleElement(t *testing.T) {
	doc := Parse("<div></div>")
	root := doc.Root()
	require.Len(t, doc.Children(root), 1)
	assert.Equal(t, "div", doc.Tag(doc.Children(root)[0]))
}

func TestParser_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"nested", `<div><p>Hello</p></div>`, `document(div(p("Hello")))`},
		{"siblings", `<div></div><p>x</p>`, `document(div("") p("x"))`},
		{"void gets empty child", `<p>a<br>b</p>`, `document(p("a" br("") "b"))`},
		{"void with explicit close", `<br></br>`, `document(br(""))`},
		{"case folded", `<DIV><P>x</p></Div>`, `document(div(p("x")))`},
		{"whitespace between tags removed", "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>", `document(ul(li("a") li("b")))`},
		{"mismatched close ignored", `<b>x</i>y</b>`, `document(b("x" "y"))`},
		{"close at root ignored", `</p>x`, `document("x")`},
		{"unclosed at eof", `<html><head><p>`, `document(html(head(p(""))))`},
		{"pending text flushed", `<div>tail`, `document(div("tail"))`},
		{"script is raw", `<script>a<b>c</b></script>d`, `document(script("a<b>c</b>") "d")`},
		{"empty script", `<style></style>`, `document(style(""))`},
		{"comment dropped", `a<!-- x -->b`, `document("a" "b")`},
		{"literal lt", `a < b`, `document("a < b")`},
		{"entities decoded once", `<p>&amp;lt; &copy;</p>`, `document(p("&lt; ©"))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.input)
			if diff := cmp.Diff(tt.want, shape(doc, doc.Root())); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParser_Attributes(t *testing.T) {
	doc := Parse(`<a HREF="/x?a=1&amp;b=2" href="/y" Target=_blank>go</a>`)
	a := doc.Find(doc.Root(), "a")
	require.NotEqual(t, NoNode, a)

	assert.Equal(t, []Attribute{
		{Name: "href", Value: "/x?a=1&b=2"},
		{Name: "target", Value: "_blank"},
	}, doc.Node(a).Attributes)
	assert.Equal(t, "go", doc.TextContent(a))
	assert.Equal(t, "none", doc.AttrOr(a, "rel", "none"))
	assert.True(t, doc.HasAttr(a, "target"))
}

func TestParser_ParentLinks(t *testing.T) {
	doc := Parse(`<div><span><b>x</b></span></div>`)
	b := doc.Find(doc.Root(), "b")
	span := doc.Parent(b)
	div := doc.Parent(span)
	assert.Equal(t, "span", doc.Tag(span))
	assert.Equal(t, "div", doc.Tag(div))
	assert.Equal(t, doc.Root(), doc.Parent(div))
	assert.Equal(t, NoNode, doc.Parent(doc.Root()))
}

func TestParser_EveryVoidTagHasOneEmptyChild(t *testing.T) {
	for _, tag := range []string{"br", "hr", "img", "input", "meta", "wbr", "embed"} {
		doc := Parse("<" + tag + " a=1>")
		id := doc.Find(doc.Root(), tag)
		require.NotEqual(t, NoNode, id, tag)
		children := doc.Children(id)
		require.Len(t, children, 1, tag)
		assert.True(t, doc.IsText(children[0]))
		assert.Empty(t, doc.Node(children[0]).Text)
	}
}

func TestParser_TitleAndTextareaDecoded(t *testing.T) {
	doc := Parse(`<title>A &amp; <B></title><textarea>x &lt; y</textarea>`)
	assert.Equal(t, "A & <B>", doc.TextContent(doc.Find(doc.Root(), "title")))
	assert.Equal(t, "x < y", doc.TextContent(doc.Find(doc.Root(), "textarea")))
}

func TestParser_Serialize(t *testing.T) {
	input := `<div id="a"><p>x &amp; y</p><br></div>`
	doc := Parse(input)
	assert.Equal(t, input, doc.Serialize(doc.Root()))
}

func TestParser_SerializeEscapesAndRoundTrips(t *testing.T) {
	doc := Parse(`<a title='say "hi" &amp; go'>1 &lt; 2 &amp; it's</a>`)
	out := doc.Serialize(doc.Root())
	assert.Equal(t, `<a title="say &#34;hi&#34; &amp; go">1 &lt; 2 &amp; it&#39;s</a>`, out)

	again := Parse(out)
	a := again.Find(again.Root(), "a")
	assert.Equal(t, `say "hi" & go`, again.AttrOr(a, "title", ""))
	assert.Equal(t, "1 < 2 & it's", again.TextContent(a))
}

// Text content of well-formed documents agrees with an HTML5 parser.
func TestParser_TextAgreesWithGoquery(t *testing.T) {
	inputs := []string{
		`<html><body><p>Fish &amp; chips</p><p>caf&eacute; &#169; &#x263A;</p></body></html>`,
		`<html><body><ul><li>one</li><li>two &lt;three&gt;</li></ul></body></html>`,
		`<html><body><div><b>bold</b> and <i>italic</i></div></body></html>`,
	}
	for _, input := range inputs {
		ref, err := goquery.NewDocumentFromReader(strings.NewReader(input))
		require.NoError(t, err)

		doc := Parse(input)
		body := doc.Find(doc.Root(), "body")
		require.NotEqual(t, NoNode, body)
		assert.Equal(t, ref.Find("body").Text(), doc.DeepText(body))
	}
}
