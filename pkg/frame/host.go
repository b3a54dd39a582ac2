package frame

import (
	"context"
	"image"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"wren/pkg/box"
	"wren/pkg/html"
	"wren/pkg/images"
	"wren/pkg/metrics"
	"wren/pkg/resolve"
	"wren/std/net"
)

const (
	kindImage = "image"
	kindFrame = "frame"
)

// host is the resolve.Host of one generation of a frame. With sub set it
// is the host of a document nested in that sub-frame.
type host struct {
	frame *Frame
	gen   uint64
	sub   *box.SubFrame
}

var _ resolve.Host = (*host)(nil)

func (h *host) Navigate(ctx context.Context, r *net.Request) error {
	if h.sub == nil {
		return h.frame.Navigate(ctx, r)
	}
	apply, err := h.loadFrame(ctx, r)
	if err != nil {
		return err
	}
	h.frame.apply(h.gen, kindFrame, apply)
	return nil
}

func (h *host) LoadImage(r *net.Request, done func(image.Image)) {
	h.frame.enqueue(h.gen, load{kind: kindImage, run: func(ctx context.Context) (func(), error) {
		img, err := h.frame.fetchImage(ctx, r)
		if err != nil {
			return nil, err
		}
		return func() { done(img) }, nil
	}})
}

func (h *host) LoadFrame(r *net.Request, sf *box.SubFrame) {
	sub := &host{frame: h.frame, gen: h.gen, sub: sf}
	h.frame.enqueue(h.gen, load{kind: kindFrame, run: func(ctx context.Context) (func(), error) {
		return sub.loadFrame(ctx, r)
	}})
}

func (h *host) Embed(sf *box.SubFrame) resolve.Host {
	return &host{frame: h.frame, gen: h.gen, sub: sf}
}

// loadFrame fetches r and resolves it for the sub-frame. The returned
// function installs the result.
func (h *host) loadFrame(ctx context.Context, r *net.Request) (func(), error) {
	resp, err := h.frame.fetcher.Fetch(ctx, r)
	if err != nil {
		return nil, errors.Wrap(err, "loading frame")
	}
	doc := html.ParseWithLogger(resp.Document(), h.frame.log)
	title, items := resolve.Resolve(doc, resolve.Context{Origin: resp, Host: h, Log: h.frame.log})
	collected := slices.Collect(items)
	sf := h.sub
	return func() {
		sf.Title = title
		sf.Items = collected
	}, nil
}

// load is background work whose result is applied under the frame lock.
type load struct {
	kind string
	run  func(ctx context.Context) (apply func(), err error)
}

// enqueue starts l, or holds it until the generation's canvas is
// published. Loads for an older generation are dropped.
func (f *Frame) enqueue(gen uint64, l load) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case gen != f.gen:
		f.metrics.ResourceLoads.WithLabelValues(l.kind, metrics.Stale).Inc()
	case !f.published:
		f.queue = append(f.queue, l)
	default:
		f.start(gen, l)
	}
}

// start runs l in the background. Callers hold f.mu.
func (f *Frame) start(gen uint64, l load) {
	f.loads.Add(1)
	go func() {
		defer f.loads.Done()
		ctx := context.Background()
		if err := f.limiter.Wait(ctx); err != nil {
			f.log.Debug("load not started", zap.String("kind", l.kind), zap.Error(err))
			return
		}
		apply, err := l.run(ctx)
		if err != nil {
			f.log.Debug("load failed", zap.String("kind", l.kind), zap.Error(err))
			f.metrics.ResourceLoads.WithLabelValues(l.kind, metrics.Error).Inc()
			return
		}
		f.apply(gen, l.kind, apply)
	}()
}

// apply installs a load result if the frame still shows generation gen.
func (f *Frame) apply(gen uint64, kind string, fn func()) {
	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		f.metrics.ResourceLoads.WithLabelValues(kind, metrics.Stale).Inc()
		return
	}
	fn()
	if f.canvas != nil {
		f.canvas.Relayout()
	}
	f.mu.Unlock()
	f.metrics.ResourceLoads.WithLabelValues(kind, metrics.OK).Inc()
	f.changed()
}

func (f *Frame) fetchImage(ctx context.Context, r *net.Request) (image.Image, error) {
	key := r.URL.String()
	if images.IsDataURI(key) {
		return f.images.LoadDataURI(key)
	}
	if img, ok := f.images.Get(key); ok {
		return img, nil
	}
	resp, err := f.fetcher.Fetch(ctx, r)
	if err != nil {
		return nil, errors.Wrap(err, "loading image")
	}
	if resp.Status >= 400 {
		return nil, errors.Errorf("loading image %s: status %d", key, resp.Status)
	}
	return f.images.Load(key, resp.Body)
}
