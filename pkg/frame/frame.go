// Package frame implements the display surface that owns one page. A Frame
// fetches a request, runs it through parse, resolve and layout, publishes
// the canvas and then starts the page's image and sub-frame loads.
package frame

import (
	"context"
	"iter"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wren/pkg/box"
	"wren/pkg/config"
	"wren/pkg/html"
	"wren/pkg/images"
	"wren/pkg/layout"
	"wren/pkg/metrics"
	"wren/pkg/resolve"
	"wren/std/net"
)

// LocalURL is the address of markup shown with ShowHTML.
var LocalURL = &url.URL{Scheme: "browser", Host: "local", Path: "/"}

// Frame is a top-level display surface. All exported methods are safe to
// call from the UI goroutine while loads complete in the background.
type Frame struct {
	fetcher     net.Fetcher
	engine      *layout.Engine
	images      *images.Cache
	limiter     *rate.Limiter
	log         *zap.Logger
	metrics     *metrics.Metrics
	downloadDir string
	onChange    func()

	mu sync.Mutex
	// gen increases with every page shown; loads started for an older
	// generation are dropped when they complete.
	gen       uint64
	published bool
	queue     []load
	width     float64
	canvas    *layout.Canvas
	title     string
	// focus is the text entry or stepper receiving typed input.
	focus     box.Visual
	history   []*net.Request
	loads     sync.WaitGroup
}

type Option func(*Frame)

// WithEngine replaces the layout engine, mostly to use fixed text metrics.
func WithEngine(e *layout.Engine) Option {
	return func(f *Frame) { f.engine = e }
}

// WithOnChange registers fn to run after the canvas changed.
func WithOnChange(fn func()) Option {
	return func(f *Frame) { f.onChange = fn }
}

func WithImageCache(c *images.Cache) Option {
	return func(f *Frame) { f.images = c }
}

// New returns an empty frame. log and m may be nil.
func New(fetcher net.Fetcher, cfg *config.Config, log *zap.Logger, m *metrics.Metrics, opts ...Option) *Frame {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	limit := rate.Inf
	if cfg.Images.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.Images.RequestsPerSecond)
	}
	f := &Frame{
		fetcher:     fetcher,
		images:      images.NewCache(images.DefaultCacheSize),
		limiter:     rate.NewLimiter(limit, max(cfg.Images.Burst, 1)),
		log:         log.Named("frame"),
		metrics:     m,
		downloadDir: cfg.Network.DownloadDir,
		width:       float64(cfg.Viewport.Width),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.engine == nil {
		f.engine = layout.NewEngine(nil)
	}
	return f
}

// Navigate fetches r and shows the result. Failures show an internal
// error page; the returned error is always nil.
func (f *Frame) Navigate(ctx context.Context, r *net.Request) error {
	f.show(f.fetchPage(ctx, r), true)
	return nil
}

// fetchPage fetches r, or returns the error page describing why it could
// not be fetched.
func (f *Frame) fetchPage(ctx context.Context, r *net.Request) *net.Response {
	resp, err := f.fetcher.Fetch(ctx, r)
	if err == nil {
		return resp
	}
	f.log.Warn("navigation failed", zap.Stringer("url", r.URL), zap.Error(err))
	page := net.PageNoResponse
	var urlErr *url.Error
	switch {
	case errors.Is(err, net.ErrUnsupportedScheme):
		page = net.PageWrongProtocol
	case errors.As(err, &urlErr) && urlErr.Op == "parse":
		page = net.PageWrongURLFormat
	}
	return net.Internal(net.NewRequest(net.ErrorURL(page), nil))
}

// ShowHTML displays markup that was not fetched.
func (f *Frame) ShowHTML(markup string) {
	req := net.NewRequest(LocalURL, nil)
	f.show(&net.Response{
		Request:  req,
		URL:      LocalURL,
		Status:   200,
		MIMEType: "text/html",
		Charset:  "utf-8",
		Body:     []byte(markup),
	}, false)
}

// Back shows the previous page again. It reports false when there is no
// previous page.
func (f *Frame) Back(ctx context.Context) bool {
	f.mu.Lock()
	if len(f.history) < 2 {
		f.mu.Unlock()
		return false
	}
	f.history = f.history[:len(f.history)-1]
	prev := f.history[len(f.history)-1]
	f.mu.Unlock()

	f.show(f.fetchPage(ctx, prev), false)
	return true
}

// show runs resp through the pipeline and publishes the canvas.
func (f *Frame) show(resp *net.Response, record bool) {
	start := time.Now()
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.published = false
	f.queue = nil
	width := f.width
	f.mu.Unlock()

	doc := html.ParseWithLogger(resp.Document(), f.log)
	title, items := resolve.Resolve(doc, resolve.Context{
		Origin: resp,
		Host:   &host{frame: f, gen: gen},
		Log:    f.log,
	})
	canvas := f.engine.Layout(layout.Flow(f.counted(items)), width)

	f.mu.Lock()
	if gen != f.gen {
		// a newer navigation started while this page was being built
		f.mu.Unlock()
		return
	}
	f.canvas, f.title = canvas, title
	f.focus = nil
	f.published = true
	if record && resp.Request != nil && !net.IsInternal(resp.URL) {
		f.history = append(f.history, resp.Request)
	}
	queued := f.queue
	f.queue = nil
	for _, l := range queued {
		f.start(gen, l)
	}
	f.mu.Unlock()

	f.metrics.PagesRendered.Inc()
	f.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	f.log.Debug("page shown",
		zap.Stringer("url", resp.URL),
		zap.String("title", title),
		zap.Int("boxes", len(canvas.Boxes)))
	f.changed()
}

func (f *Frame) counted(items iter.Seq[box.Item]) iter.Seq[box.Item] {
	return func(yield func(box.Item) bool) {
		for it := range items {
			f.metrics.ItemsEmitted.Inc()
			if !yield(it) {
				return
			}
		}
	}
}

func (f *Frame) changed() {
	if f.onChange != nil {
		f.onChange()
	}
}

func (f *Frame) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

// Canvas returns the published canvas, or nil before the first page.
func (f *Frame) Canvas() *layout.Canvas {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canvas
}

func (f *Frame) Width() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width
}

// Resize lays the current page out again at width.
func (f *Frame) Resize(width float64) {
	f.mu.Lock()
	f.width = width
	if f.canvas != nil {
		f.canvas = f.engine.Layout(f.canvas.Visuals(), width)
	}
	f.mu.Unlock()
	f.changed()
}

// Paint runs fn with the canvas while no load can change it.
func (f *Frame) Paint(fn func(*layout.Canvas)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.canvas != nil {
		fn(f.canvas)
	}
}

// Wait blocks until every load started so far has finished.
func (f *Frame) Wait() {
	f.loads.Wait()
}

// Click performs the action of the innermost clickable item at (x, y).
// Checkboxes flip, dropdowns move to the next option and steppers step up.
// Text entries and steppers take the focus; a click anywhere else drops it.
func (f *Frame) Click(ctx context.Context, x, y float64) error {
	f.mu.Lock()
	var path []box.Visual
	if f.canvas != nil {
		path = f.canvas.Hit(x, y)
	}
	f.focus = nil
	f.mu.Unlock()

	for i := len(path) - 1; i >= 0; i-- {
		v := path[i]
		switch c := v.(type) {
		case *box.Button:
			if c.Press != nil && !c.Disabled {
				c.Press()
				return nil
			}
		case *box.Checkbox:
			f.update(func() { c.Checked = !c.Checked })
			return nil
		case *box.Dropdown:
			if len(c.Options) > 0 {
				f.update(func() { c.Selected = (c.Selected + 1) % len(c.Options) })
			}
			return nil
		case *box.Stepper:
			f.update(func() {
				f.focus = c
				c.Set(c.Value + 1)
			})
			return nil
		case *box.TextEntry:
			if !c.Disabled {
				f.mu.Lock()
				f.focus = c
				f.mu.Unlock()
			}
			return nil
		}
		switch c := v.Common().Click.(type) {
		case *box.Link:
			return f.follow(ctx, c)
		case *box.Toggle:
			f.mu.Lock()
			c.Flip()
			f.canvas.Relayout()
			f.mu.Unlock()
			f.changed()
			return nil
		}
	}
	return nil
}

// update changes control state under the lock and reports the change.
func (f *Frame) update(fn func()) {
	f.mu.Lock()
	fn()
	f.mu.Unlock()
	f.changed()
}

// Focused returns the control receiving typed input, or nil.
func (f *Frame) Focused() box.Visual {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focus
}

// Type appends s to the focused text entry. Line breaks are dropped unless
// the entry is multiline.
func (f *Frame) Type(s string) {
	f.edit(func(e *box.TextEntry) string {
		if !e.Multiline {
			s = strings.NewReplacer("\r", "", "\n", "").Replace(s)
		}
		return e.Value + s
	})
}

// Backspace removes the last character of the focused text entry.
func (f *Frame) Backspace() {
	f.edit(func(e *box.TextEntry) string {
		r := []rune(e.Value)
		if len(r) == 0 {
			return e.Value
		}
		return string(r[:len(r)-1])
	})
}

func (f *Frame) edit(fn func(*box.TextEntry) string) {
	f.mu.Lock()
	e, ok := f.focus.(*box.TextEntry)
	if !ok || e.Disabled || e.ReadOnly {
		f.mu.Unlock()
		return
	}
	e.SetValue(fn(e))
	f.mu.Unlock()
	f.changed()
}

// Step moves the focused stepper by delta within its range.
func (f *Frame) Step(delta float64) {
	f.mu.Lock()
	s, ok := f.focus.(*box.Stepper)
	if !ok {
		f.mu.Unlock()
		return
	}
	s.Set(s.Value + delta)
	f.mu.Unlock()
	f.changed()
}

// follow pings, downloads or navigates to a link target.
func (f *Frame) follow(ctx context.Context, l *box.Link) error {
	req := l.Request()
	if req == nil {
		return nil
	}
	if ping := l.PingRequest(); ping != nil {
		go func() {
			if _, err := f.fetcher.Fetch(context.Background(), ping); err != nil {
				f.log.Debug("ping failed", zap.Stringer("url", ping.URL), zap.Error(err))
			}
		}()
	}
	if l.Download {
		_, err := f.Download(ctx, req)
		return err
	}
	if l.Target == nil {
		return nil
	}
	return l.Target.Navigate(ctx, req)
}
