package resolve

import (
	"image"
	"slices"

	"go.uber.org/zap"

	"wren/pkg/box"
	"wren/pkg/html"
	"wren/std/net"
)

const (
	PlaceholderSize = 20
	FrameWidth      = 300
	FrameHeight     = 150
)

// image emits the alt text (or a broken-image placeholder) followed by a
// hidden picture. When the picture arrives it replaces the alt items.
func (r *resolver) image(id html.NodeID, st state, yield emit) bool {
	var fallback []box.Visual
	collect := func(it box.Item) bool {
		fallback = append(fallback, it.Visual)
		return yield(it)
	}
	if alt, ok := r.doc.Attr(id, "alt"); ok {
		if !r.text(alt, st.child(0, 1, true), collect) {
			return false
		}
	} else {
		ph := &box.Image{Base: st.base(), Width: PlaceholderSize, Height: PlaceholderSize, Broken: true}
		if !collect(st.item(ph)) {
			return false
		}
	}

	src, ok := r.doc.Attr(id, "src")
	if !ok {
		return true
	}
	pic := &box.Image{Base: st.base()}
	pic.Hidden = true
	if !yield(box.Item{Visual: pic}) {
		return false
	}
	if r.host == nil {
		return true
	}
	u, err := net.ResolveURL(r.base, src)
	if err != nil {
		r.log.Debug("ignoring bad image src", zap.String("src", src), zap.Error(err))
		return true
	}

	req := net.NewRequest(u, r.page)
	req.Accept = net.AcceptImage
	req.Policy = r.policy.OrDefault()
	width, hasWidth := r.floatAttr(id, "width")
	height, hasHeight := r.floatAttr(id, "height")
	r.host.LoadImage(req, func(img image.Image) {
		b := img.Bounds()
		w, h := float64(b.Dx()), float64(b.Dy())
		switch {
		case hasWidth && hasHeight:
			w, h = width, height
		case hasWidth && w > 0:
			w, h = width, h*width/w
		case hasHeight && h > 0:
			w, h = w*height/h, height
		}
		pic.Picture = img
		pic.Width, pic.Height = w, h
		pic.Hidden = false
		for _, v := range fallback {
			v.Common().Hidden = true
		}
	})
	return true
}

// iframe emits a sub-frame showing srcdoc, or src once it has loaded.
func (r *resolver) iframe(id html.NodeID, st state, src string, hasSrc bool, yield emit) bool {
	sf := &box.SubFrame{Base: st.base(), Width: FrameWidth, Height: FrameHeight}
	if w, ok := r.floatAttr(id, "width"); ok {
		sf.Width = w
	}
	if h, ok := r.floatAttr(id, "height"); ok {
		sf.Height = h
	}

	if srcdoc, ok := r.doc.Attr(id, "srcdoc"); ok {
		var host Host
		if r.host != nil {
			host = r.host.Embed(sf)
		}
		title, items := Resolve(html.ParseWithLogger(srcdoc, r.log), Context{
			Origin: r.origin,
			Base:   r.base,
			Host:   host,
			Log:    r.log,
			Tags:   r.tags,
		})
		sf.Title = title
		sf.Items = slices.Collect(items)
	} else if hasSrc && r.host != nil {
		if u, err := net.ResolveURL(r.base, src); err == nil {
			r.host.LoadFrame(net.NewRequest(u, net.HomeURL), sf)
		} else {
			r.log.Debug("ignoring bad frame src", zap.String("src", src), zap.Error(err))
		}
	}
	return yield(st.item(sf))
}
