package box

import (
	"context"
	"net/url"

	"wren/std/net"
)

// Navigator loads a request into a display surface.
type Navigator interface {
	Navigate(ctx context.Context, r *net.Request) error
}

// Click is what happens when an item is clicked: a *Link, a *Toggle, or
// nil for nothing.
type Click interface {
	click()
}

// Link navigates, downloads or pings.
type Link struct {
	Href     *url.URL // nil when the href did not resolve
	Ping     *url.URL
	Download bool
	Policy   net.RefPolicy
	Referrer *url.URL
	Target   Navigator
}

func (*Link) click() {}

// Request returns the request following the link issues, or nil when the
// link has no target.
func (l *Link) Request() *net.Request {
	if l.Href == nil {
		return nil
	}
	r := net.NewRequest(l.Href, l.Referrer)
	r.Policy = l.Policy.OrDefault()
	return r
}

// PingRequest returns the POST sent to the ping URL, or nil.
func (l *Link) PingRequest() *net.Request {
	if l.Ping == nil {
		return nil
	}
	r := net.NewRequest(l.Ping, l.Referrer)
	r.Method = "POST"
	r.Body = []byte("PING")
	r.MediaType = "text/ping"
	r.Accept = "*/*"
	r.Policy = l.Policy.OrDefault()
	return r
}

// Toggle opens and closes a details section.
type Toggle struct {
	Open    bool
	Arrow   *Text
	Content []Visual
}

func (*Toggle) click() {}

// Arrow glyphs shown before a details summary.
const (
	ArrowOpen   = "▼ "
	ArrowClosed = "▶ "
)

// NewToggle returns a toggle in the given state. The arrow text is built
// from arrow with its content set to match the state.
func NewToggle(open bool, arrow Text) *Toggle {
	t := &Toggle{Open: open, Arrow: &arrow}
	t.Arrow.Click = t
	t.setArrow()
	return t
}

// Add records content governed by the toggle.
func (t *Toggle) Add(v Visual) {
	t.Content = append(t.Content, v)
	if !t.Open {
		v.Common().Folded++
	}
}

// Flip switches between open and closed.
func (t *Toggle) Flip() {
	t.Open = !t.Open
	t.setArrow()
	for _, v := range t.Content {
		if t.Open {
			v.Common().Folded--
		} else {
			v.Common().Folded++
		}
	}
}

func (t *Toggle) setArrow() {
	if t.Open {
		t.Arrow.Content = ArrowOpen
	} else {
		t.Arrow.Content = ArrowClosed
	}
}
