package resolve

import (
	"context"
	"image"
	"net/url"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wren/pkg/box"
	"wren/pkg/css"
	"wren/pkg/html"
	"wren/std/net"
)

type fakeHost struct {
	navigated []*net.Request
	images    []*net.Request
	done      []func(image.Image)
	frames    []*net.Request
	embedded  []*box.SubFrame
}

func (h *fakeHost) Navigate(_ context.Context, r *net.Request) error {
	h.navigated = append(h.navigated, r)
	return nil
}

func (h *fakeHost) LoadImage(r *net.Request, done func(image.Image)) {
	h.images = append(h.images, r)
	h.done = append(h.done, done)
}

func (h *fakeHost) LoadFrame(r *net.Request, _ *box.SubFrame) {
	h.frames = append(h.frames, r)
}

func (h *fakeHost) Embed(sf *box.SubFrame) Host {
	h.embedded = append(h.embedded, sf)
	return h
}

var pageURL, _ = url.Parse("https://a.example/dir/page.html")

func resolve(t *testing.T, markup string, host Host) (string, []box.Item) {
	t.Helper()
	origin := &net.Response{URL: pageURL, Status: 200, MIMEType: "text/html"}
	title, seq := Resolve(html.Parse(markup), Context{Origin: origin, Host: host})
	return title, slices.Collect(seq)
}

func visuals[T box.Visual](items []box.Item) []T {
	var out []T
	for _, it := range items {
		if v, ok := it.Visual.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// visibleTexts returns the content of every visible text item.
func visibleTexts(items []box.Item) []string {
	var out []string
	for _, tx := range visuals[*box.Text](items) {
		if tx.Visible() {
			out = append(out, tx.Content)
		}
	}
	return out
}

func textItem(t *testing.T, items []box.Item, content string) (*box.Text, box.Item) {
	t.Helper()
	for _, it := range items {
		if tx, ok := it.Visual.(*box.Text); ok && tx.Content == content {
			return tx, it
		}
	}
	t.Fatalf("no text %q", content)
	return nil, box.Item{}
}

func TestTitle(t *testing.T) {
	title, _ := resolve(t, `<p>x</p>`, nil)
	assert.Equal(t, DefaultTitle, title)

	title, _ = resolve(t, `<html><head><title>Hello</title></head><body>x</body></html>`, nil)
	assert.Equal(t, "Hello", title)

	title, _ = resolve(t, `<head><title></title></head>`, nil)
	assert.Equal(t, DefaultTitle, title)
}

func TestWords(t *testing.T) {
	tests := []struct {
		in   string
		pre  bool
		want []string
	}{
		{"Hello   big\n world", false, []string{"Hello ", "big ", "world"}},
		{" lead", false, []string{" ", "lead"}},
		{"trail ", false, []string{"trail "}},
		{"a\tb", false, []string{"a ", "b"}},
		{"", false, []string{}},
		{"  keep\n  this ", true, []string{"  keep\n  this "}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, words(tt.in, tt.pre)); diff != "" {
			t.Errorf("words(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestTextMarginsAndFlags(t *testing.T) {
	_, items := resolve(t, `<blockquote>a b</blockquote>`, nil)
	require.Len(t, items, 2)

	first := items[0].Visual.(*box.Text)
	last := items[1].Visual.(*box.Text)
	assert.Equal(t, css.Edges{Left: 16, Top: 40, Bottom: 40}, first.Margin)
	assert.Equal(t, css.Edges{Top: 40, Right: 16, Bottom: 40}, last.Margin)
	assert.True(t, items[0].StartsLine)
	assert.False(t, items[0].EndsLine)
	assert.False(t, items[1].StartsLine)
	assert.True(t, items[1].EndsLine)
}

func TestEmptyElementStillBreaks(t *testing.T) {
	_, items := resolve(t, `<p></p>`, nil)
	require.Len(t, items, 1)
	assert.Equal(t, "", items[0].Visual.(*box.Text).Content)
	assert.True(t, items[0].StartsLine)
	assert.True(t, items[0].EndsLine)
}

func TestStyleDoesNotLeak(t *testing.T) {
	_, items := resolve(t, `<p><b>x</b>y</p>`, nil)
	x, xi := textItem(t, items, "x")
	y, yi := textItem(t, items, "y")
	assert.True(t, x.Style.Bold)
	assert.False(t, y.Style.Bold)
	assert.True(t, xi.StartsLine)
	assert.False(t, xi.EndsLine)
	assert.True(t, yi.EndsLine)
}

func TestInlineStyleAndTooltip(t *testing.T) {
	_, items := resolve(t, `<span title="tip" style="color: red; font-weight: bold">x</span>`, nil)
	x, _ := textItem(t, items, "x")
	assert.True(t, x.Style.Bold)
	assert.Equal(t, css.MustColor("red"), x.Style.Color)
	assert.Equal(t, "tip", x.Tooltip)
}

func TestHiddenAndSuppressed(t *testing.T) {
	_, items := resolve(t, `<p hidden>gone</p><div>a<script>var x</script>b</div><input hidden>`, nil)
	assert.Equal(t, []string{"a", "b"}, visibleTexts(items))
	assert.Empty(t, visuals[*box.TextEntry](items))
}

func TestQuote(t *testing.T) {
	_, items := resolve(t, `<q>hi</q>`, nil)
	assert.Equal(t, []string{`"`, "hi", `"`}, visibleTexts(items))
}

func TestLineBreakAndRule(t *testing.T) {
	_, items := resolve(t, `a<br>b<hr>`, nil)
	seps := visuals[*box.Separator](items)
	require.Len(t, seps, 2)
	assert.True(t, seps[0].IsBreak())
	assert.Equal(t, float64(BreakHeight), seps[0].Height)

	assert.True(t, seps[1].Rule)
	assert.Equal(t, 2.0, seps[1].Height)
	assert.Equal(t, css.Edges{Left: 8, Top: 5, Right: 8, Bottom: 5}, seps[1].Margin)
	assert.True(t, items[len(items)-1].StartsLine)
}

func TestOrderedList(t *testing.T) {
	prefixes := func(items []box.Item) []string {
		var out []string
		for _, s := range visibleTexts(items) {
			if len(s) > 2 && s[len(s)-2:] == ". " {
				out = append(out, s)
			}
		}
		return out
	}

	tests := []struct {
		name   string
		markup string
		want   []string
	}{
		{"default", `<ol><li>a</li><li>b</li></ol>`, []string{"1. ", "2. "}},
		{"start", `<ol start="5"><li>a</li><li>b</li><li>c</li></ol>`, []string{"5. ", "6. ", "7. "}},
		{"reversed", `<ol reversed start="5"><li>a</li><li>b</li><li>c</li></ol>`, []string{"7. ", "6. ", "5. "}},
		{"bad start", `<ol start="x"><li>a</li></ol>`, []string{"1. "}},
		{"value", `<ol><li>a</li><li value="10">b</li><li>c</li></ol>`, []string{"1. ", "10. ", "11. "}},
		{"hidden item counts", `<ol><li hidden>a</li><li>b</li></ol>`, []string{"2. "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, items := resolve(t, tt.markup, nil)
			assert.Equal(t, tt.want, prefixes(items))
		})
	}
}

func TestUnorderedList(t *testing.T) {
	_, items := resolve(t, `<ul><li>a</li></ul>`, nil)
	bullet, bi := textItem(t, items, "• ")
	assert.Equal(t, 10.0, bullet.Margin.Left)
	assert.True(t, bi.StartsLine)
	_, ai := textItem(t, items, "a")
	assert.True(t, ai.EndsLine)
}

func TestLink(t *testing.T) {
	host := &fakeHost{}
	_, items := resolve(t, `<a href="next" ping="/p" referrerpolicy="no-referrer" download>x</a>`, host)
	x, _ := textItem(t, items, "x")
	assert.True(t, x.Style.Underline)
	assert.True(t, x.Pointer)

	link, ok := x.Click.(*box.Link)
	require.True(t, ok)
	assert.Equal(t, "https://a.example/dir/next", link.Href.String())
	assert.Equal(t, "https://a.example/p", link.Ping.String())
	assert.True(t, link.Download)
	assert.Equal(t, net.NoReferrer, link.Policy)
	assert.Equal(t, pageURL, link.Referrer)
	assert.Same(t, host, link.Target)
}

func TestBaseHref(t *testing.T) {
	_, items := resolve(t, `<head><base href="https://b.example/root/"></head><a href="x">y</a>`, nil)
	y, _ := textItem(t, items, "y")
	assert.Equal(t, "https://b.example/root/x", y.Click.(*box.Link).Href.String())
	assert.Equal(t, pageURL, y.Click.(*box.Link).Referrer)
}

func TestNilHost(t *testing.T) {
	title, seq := Resolve(html.Parse(`<a href="x">y</a><img src="a.png"><iframe src="f"></iframe>`), Context{})
	assert.Equal(t, DefaultTitle, title)
	items := slices.Collect(seq)
	y, _ := textItem(t, items, "y")
	assert.Nil(t, y.Click.(*box.Link).Target)
}

func TestStopEarly(t *testing.T) {
	_, seq := Resolve(html.Parse(`<p>a b c</p><p>d</p>`), Context{})
	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestDetails(t *testing.T) {
	_, items := resolve(t, `<details><summary>Sum</summary><p>body</p></details>`, nil)
	assert.Equal(t, []string{box.ArrowClosed, "Sum"}, visibleTexts(items))

	sum, _ := textItem(t, items, "Sum")
	toggle, ok := sum.Click.(*box.Toggle)
	require.True(t, ok)

	toggle.Flip()
	assert.Equal(t, []string{box.ArrowOpen, "Sum", "body"}, visibleTexts(items))
}

func TestDetailsWithoutSummary(t *testing.T) {
	_, items := resolve(t, `<details open><p>body</p></details>`, nil)
	assert.Equal(t, []string{box.ArrowOpen, "Details", "body"}, visibleTexts(items))
}

func TestNestedDetails(t *testing.T) {
	_, items := resolve(t, `<details><summary>out</summary><details><summary>in</summary>deep</details></details>`, nil)
	out, _ := textItem(t, items, "out")
	in, _ := textItem(t, items, "in")

	out.Click.(*box.Toggle).Flip()
	assert.Contains(t, visibleTexts(items), "in")
	assert.NotContains(t, visibleTexts(items), "deep")

	in.Click.(*box.Toggle).Flip()
	assert.Contains(t, visibleTexts(items), "deep")
}

func TestTable(t *testing.T) {
	_, items := resolve(t, `<table><caption>cap</caption><tr><td rowspan="2">a</td><td>b</td></tr><tr><td>c</td></tr></table>`, nil)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"cap"}, visibleTexts(items[:1]))

	tbl := items[1].Visual.(*box.Table)
	assert.True(t, items[1].StartsLine)
	assert.Equal(t, 2, tbl.Rows)
	assert.Equal(t, 2, tbl.Cols)

	type pos struct{ Row, Col, RowSpan, ColSpan int }
	var got []pos
	for _, c := range tbl.Cells {
		got = append(got, pos{c.Row, c.Col, c.RowSpan, c.ColSpan})
	}
	assert.Equal(t, []pos{{0, 0, 2, 1}, {0, 1, 1, 1}, {1, 1, 1, 1}}, got)
	assert.Equal(t, []string{"c"}, visibleTexts(tbl.Cells[2].Items))
}

func TestTableBlockSpanReservesEveryCell(t *testing.T) {
	_, items := resolve(t, `<table><tr><td colspan=2 rowspan=2>A</td><td>B</td></tr><tr><td>C</td></tr><tr><td>D</td></tr></table>`, nil)
	tbl := visuals[*box.Table](items)[0]

	type pos struct{ Row, Col int }
	var got []pos
	for _, c := range tbl.Cells {
		got = append(got, pos{c.Row, c.Col})
	}
	assert.Equal(t, []pos{{0, 0}, {0, 2}, {1, 2}, {2, 0}}, got)
	assert.Equal(t, 3, tbl.Rows)
	assert.Equal(t, 3, tbl.Cols)
}

func TestTableColSpanAndSections(t *testing.T) {
	_, items := resolve(t, `<table><thead><tr><th colspan="2">h</th></tr></thead><tbody><tr><td>b</td><td>c</td><td>d</td></tr></tbody></table>`, nil)
	tbl := visuals[*box.Table](items)[0]
	assert.Equal(t, 2, tbl.Rows)
	assert.Equal(t, 3, tbl.Cols)
	assert.Equal(t, 2, tbl.Cells[0].ColSpan)
	assert.Equal(t, 2, tbl.Cells[3].Col)
}

func TestImageLoad(t *testing.T) {
	host := &fakeHost{}
	_, items := resolve(t, `<img src="cat.png" alt="a cat" width="80">`, host)
	assert.Equal(t, []string{"a ", "cat"}, visibleTexts(items))

	require.Len(t, host.images, 1)
	req := host.images[0]
	assert.Equal(t, "https://a.example/dir/cat.png", req.URL.String())
	assert.Equal(t, net.AcceptImage, req.Accept)
	assert.Equal(t, pageURL, req.Referrer)

	pics := visuals[*box.Image](items)
	require.Len(t, pics, 1)
	assert.False(t, pics[0].Visible())

	host.done[0](image.NewRGBA(image.Rect(0, 0, 40, 30)))
	assert.True(t, pics[0].Visible())
	assert.Equal(t, 80.0, pics[0].Width)
	assert.Equal(t, 60.0, pics[0].Height)
	assert.Empty(t, visibleTexts(items))
}

func TestImagePlaceholder(t *testing.T) {
	host := &fakeHost{}
	_, items := resolve(t, `<img>`, host)
	pics := visuals[*box.Image](items)
	require.Len(t, pics, 1)
	assert.True(t, pics[0].Broken)
	assert.Equal(t, float64(PlaceholderSize), pics[0].Width)
	assert.Empty(t, host.images)
}

func TestEmbedImage(t *testing.T) {
	host := &fakeHost{}
	resolve(t, `<embed type="image/png" src="x.png">`, host)
	assert.Len(t, host.images, 1)
	assert.Empty(t, host.frames)
}

func TestIframeSrcdoc(t *testing.T) {
	host := &fakeHost{}
	_, items := resolve(t, `<iframe width="400" srcdoc="&lt;head&gt;&lt;title&gt;Inner&lt;/title&gt;&lt;/head&gt;&lt;p&gt;hi&lt;/p&gt;"></iframe>`, host)
	frames := visuals[*box.SubFrame](items)
	require.Len(t, frames, 1)
	sf := frames[0]
	assert.Equal(t, "Inner", sf.Title)
	assert.Equal(t, 400.0, sf.Width)
	assert.Equal(t, float64(FrameHeight), sf.Height)
	assert.Equal(t, []string{"hi"}, visibleTexts(sf.Items))
	assert.Equal(t, []*box.SubFrame{sf}, host.embedded)
	assert.Empty(t, host.frames)
}

func TestIframeSrc(t *testing.T) {
	host := &fakeHost{}
	resolve(t, `<iframe src="f.html"></iframe><object data="o.html"></object>`, host)
	require.Len(t, host.frames, 2)
	assert.Equal(t, "https://a.example/dir/f.html", host.frames[0].URL.String())
	assert.Equal(t, net.HomeURL, host.frames[0].Referrer)
	assert.Equal(t, "https://a.example/dir/o.html", host.frames[1].URL.String())
}

func button(t *testing.T, items []box.Item, label string) *box.Button {
	t.Helper()
	for _, b := range visuals[*box.Button](items) {
		if b.Label == label {
			return b
		}
	}
	t.Fatalf("no button %q", label)
	return nil
}

func TestFormSubmit(t *testing.T) {
	host := &fakeHost{}
	_, items := resolve(t, `<form action="/s" method="post"><input name="q" value="v"><input type="submit"></form>`, host)
	submit := button(t, items, "Submit")
	require.NotNil(t, submit.Press)

	submit.Press()
	require.Len(t, host.navigated, 1)
	r := host.navigated[0]
	assert.Equal(t, "POST", r.Method)
	assert.Equal(t, "https://a.example/s", r.URL.String())
	assert.Equal(t, "q=v", string(r.Body))
	assert.Equal(t, pageURL, r.Referrer)
}

func TestFormValidation(t *testing.T) {
	host := &fakeHost{}
	_, items := resolve(t, `<form action="/s"><input type="email" name="e" value="bad"><input type="submit" name="go" value="Go"><input type="hidden" name="h" value="1"></form>`, host)
	entry := visuals[*box.TextEntry](items)[0]
	submit := button(t, items, "Go")

	submit.Press()
	assert.Empty(t, host.navigated)
	assert.True(t, entry.Invalid)

	entry.Value = "me@example.com"
	submit.Press()
	require.Len(t, host.navigated, 1)
	q := host.navigated[0].URL.Query()
	assert.Equal(t, "me@example.com", q.Get("e"))
	assert.Equal(t, "Go", q.Get("go"))
	assert.Equal(t, "1", q.Get("h"))
}

func TestFormReset(t *testing.T) {
	_, items := resolve(t, `<form><input value="x"><input type="checkbox" checked><select><option>a</option><option selected>b</option></select><input type="reset"></form>`, &fakeHost{})
	entry := visuals[*box.TextEntry](items)[0]
	cb := visuals[*box.Checkbox](items)[0]
	dd := visuals[*box.Dropdown](items)[0]

	entry.Value, cb.Checked, dd.Selected = "changed", false, 0
	button(t, items, "Reset").Press()
	assert.Equal(t, "x", entry.Value)
	assert.True(t, cb.Checked)
	assert.Equal(t, 1, dd.Selected)
}

func TestButtonElement(t *testing.T) {
	host := &fakeHost{}
	_, items := resolve(t, `<form action="/go"><button name="b" value="1"><b>Press</b> me</button><button disabled>off</button></form>`, host)
	buttons := visuals[*box.Button](items)
	require.Len(t, buttons, 2)

	assert.Equal(t, []string{"Press", " ", "me"}, visibleTexts(buttons[0].Content))
	assert.Equal(t, ButtonFace, buttons[0].Background)
	for _, it := range buttons[0].Content {
		assert.False(t, it.StartsLine || it.EndsLine)
	}
	assert.Nil(t, buttons[1].Press)

	buttons[0].Press()
	require.Len(t, host.navigated, 1)
	assert.Equal(t, "1", host.navigated[0].URL.Query().Get("b"))
}

func TestImageInput(t *testing.T) {
	host := &fakeHost{}
	_, items := resolve(t, `<form action="/s"><input type="image" name="i" value="v" src="go.png" alt="Go"></form>`, host)
	b := visuals[*box.Button](items)[0]
	assert.True(t, b.Bare)
	assert.Equal(t, []string{"Go"}, visibleTexts(b.Content))
	require.Len(t, host.images, 1)

	b.Press()
	require.Len(t, host.navigated, 1)
	assert.Equal(t, "v", host.navigated[0].URL.Query().Get("i"))
}

func TestControls(t *testing.T) {
	_, items := resolve(t, `<input type="number" min="1" max="5" value="9"><textarea cols="10" rows="2">hello</textarea><input type="password" maxlength="4" placeholder="pw"><select><option selected>a</option><option selected>b</option></select>`, nil)

	s := visuals[*box.Stepper](items)[0]
	assert.Equal(t, 5.0, s.Value)
	assert.Equal(t, float64(EntryWidth), s.Width)

	entries := visuals[*box.TextEntry](items)
	require.Len(t, entries, 2)
	area, pw := entries[0], entries[1]
	assert.True(t, area.Multiline)
	assert.Equal(t, "hello", area.Value)
	assert.InDelta(t, 103.4, area.Width, 1e-9)
	assert.InDelta(t, 60.64, area.Height, 1e-9)

	assert.True(t, pw.Password)
	assert.Equal(t, 4, pw.MaxLength)
	assert.Equal(t, "pw", pw.Placeholder)
	assert.Equal(t, float64(EntryWidth), pw.Width)

	dd := visuals[*box.Dropdown](items)[0]
	assert.Equal(t, []string{"a", "b"}, dd.Options)
	assert.Equal(t, 0, dd.Selected)
}

func TestSelectFirstSelectedWins(t *testing.T) {
	_, items := resolve(t, `<select><option>a</option><option selected>b</option><option selected>c</option></select>`, nil)
	dd := visuals[*box.Dropdown](items)[0]
	v, ok := dd.Value()
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, items = resolve(t, `<select><option>a</option><option>b</option></select>`, nil)
	assert.Equal(t, -1, visuals[*box.Dropdown](items)[0].Selected)
}

func TestMeterColors(t *testing.T) {
	_, items := resolve(t, `<meter value="0.9" high="0.8"></meter><meter value="0.5"></meter><progress value="0.5" max="2"></progress>`, nil)
	meters := visuals[*box.Meter](items)
	require.Len(t, meters, 3)
	assert.Equal(t, MeterWarn, meters[0].Bar)
	assert.Equal(t, MeterOK, meters[1].Bar)
	assert.Equal(t, ProgressColor, meters[2].Bar)
	assert.Equal(t, 0.25, meters[2].Fraction())
	assert.Equal(t, 20.0, meters[0].Width)
}
