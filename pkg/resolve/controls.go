package resolve

import (
	"math"
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

const (
	// BreakHeight is the height of the line a <br> or <details> inserts.
	BreakHeight = 5

	EntryWidth    = 200
	StepperHeight = 30
	DropdownWidth = 150
)

// Patterns implied by the input type.
const (
	EmailPattern = `[a-z0-9\.]+@[a-z]+\.[a-z]+`
	URLPattern   = `^http[s]?:\/\/[A-Za-z0-9-\.]+\/(.*)$`
)

var (
	ButtonFace = css.MustColor("#e9e9ed")
	RuleColor  = css.MustColor("gray")

	ProgressColor = css.MustColor("blue")
	MeterOK       = css.MustColor("green")
	MeterWarn     = css.MustColor("yellow")
)

func (r *resolver) rule(st state, yield emit) bool {
	sep := &box.Separator{Base: st.base(), Height: 2, Rule: true, Color: RuleColor}
	sep.Margin = css.Edges{Left: 8, Top: 5, Right: 8, Bottom: 5}
	return yield(box.Item{Visual: sep, StartsLine: true, EndsLine: true})
}

func (r *resolver) form(id html.NodeID, st state, yield emit) bool {
	action, err := net.ResolveURL(r.base, r.doc.AttrOr(id, "action", ""))
	if err != nil {
		r.log.Debug("bad form action", zap.Error(err))
		action = r.base
	}
	st.form = form.New(action,
		r.doc.AttrOr(id, "enctype", ""),
		r.doc.AttrOr(id, "method", ""),
		r.host, r.origin)
	return r.children(id, st, "", "", true, yield)
}

// register adds in to the enclosing form, if any.
func (r *resolver) register(st state, in form.Input) {
	if st.form != nil {
		st.form.AddInput(in)
	}
}

func (r *resolver) input(id html.NodeID, st state, yield emit) bool {
	name := r.doc.AttrOr(id, "name", "")
	value, hasValue := r.doc.Attr(id, "value")
	disabled := r.doc.HasAttr(id, "disabled")

	switch typ := strings.ToLower(r.doc.AttrOr(id, "type", "text")); typ {
	case "hidden":
		r.register(st, form.Input{Name: name, Value: value})
		return true

	case "checkbox":
		cb := &box.Checkbox{Base: st.base(), Checked: r.doc.HasAttr(id, "checked")}
		r.register(st, form.Input{
			Name:     name,
			Control:  cb,
			Default:  cb.Checked,
			Required: r.doc.HasAttr(id, "required"),
			Value:    value,
		})
		return yield(st.item(cb))

	case "number":
		s := &box.Stepper{
			Base:   st.base(),
			Min:    -math.MaxFloat64,
			Max:    math.MaxFloat64,
			Width:  EntryWidth,
			Height: StepperHeight,
		}
		if v, ok := r.floatAttr(id, "min"); ok {
			s.Min = v
		}
		if v, ok := r.floatAttr(id, "max"); ok {
			s.Max = v
		}
		if v, ok := r.floatAttr(id, "value"); ok {
			s.Set(v)
		} else {
			s.Set(0)
		}
		r.register(st, form.Input{
			Name:     name,
			Control:  s,
			Default:  s.Value,
			Required: r.doc.HasAttr(id, "required"),
		})
		return yield(st.item(s))

	case "image":
		inner := st
		inner.style.StartsLine, inner.style.EndsLine = false, false
		inner.style.Margin = css.Edges{}
		b := &box.Button{
			Base:    box.Base{Tooltip: st.style.Tooltip, Pointer: true, Click: st.click},
			Content: gather(func(y emit) bool { return r.image(id, inner, y) }),
			Bare:    true,
		}
		if st.form != nil {
			st.form.AddButton(b, "", "")
			st.form.AddInput(form.Input{Name: name, Value: value})
		}
		return yield(st.item(b))

	case "button", "submit", "reset":
		label := value
		if !hasValue {
			label = map[string]string{"submit": "Submit", "reset": "Reset"}[typ]
		}
		b := &box.Button{Base: st.base(), Label: label, Background: ButtonFace, Disabled: disabled}
		b.Pointer = true
		if st.form != nil && !disabled {
			switch {
			case typ == "reset":
				b.Press = st.form.Reset
			case typ == "submit":
				st.form.AddButton(b, name, label)
			case r.doc.HasAttr(id, "formaction"):
				st.form.AddButton(b, name, value)
			}
		}
		return yield(st.item(b))

	default:
		e := r.entry(id, st)
		e.Password = typ == "password"
		e.Value = value
		r.register(st, form.Input{
			Name:     name,
			Control:  e,
			Default:  e.Value,
			Pattern:  r.pattern(id, typ),
			Required: r.doc.HasAttr(id, "required"),
		})
		return yield(st.item(e))
	}
}

// entry builds the text entry shared by <input> and <textarea>.
func (r *resolver) entry(id html.NodeID, st state) *box.TextEntry {
	e := &box.TextEntry{
		Base:        st.base(),
		Placeholder: r.doc.AttrOr(id, "placeholder", ""),
		Disabled:    r.doc.HasAttr(id, "disabled"),
		ReadOnly:    r.doc.HasAttr(id, "readonly"),
		Width:       EntryWidth,
	}
	if w, ok := r.floatAttr(id, "width"); ok {
		e.Width = w
	}
	if h, ok := r.floatAttr(id, "height"); ok {
		e.Height = h
	}
	if n, ok := r.intAttr(id, "maxlength"); ok && n > 0 {
		e.MaxLength = n
	}
	return e
}

func (r *resolver) pattern(id html.NodeID, typ string) *regexp.Regexp {
	var p string
	switch typ {
	case "email":
		p = EmailPattern
	case "url":
		p = URLPattern
	default:
		var ok bool
		if p, ok = r.doc.Attr(id, "pattern"); !ok {
			return nil
		}
	}
	re, err := form.CompilePattern(p)
	if err != nil {
		r.log.Debug("ignoring bad input pattern", zap.String("pattern", p), zap.Error(err))
		return nil
	}
	return re
}

func (r *resolver) textarea(id html.NodeID, st state, yield emit) bool {
	e := r.entry(id, st)
	e.Multiline = true
	e.Monospace = true
	if cols, err := strconv.ParseUint(strings.TrimSpace(r.doc.AttrOr(id, "cols", "")), 10, 32); err == nil {
		e.Width = 8.44*float64(cols) + 19
	}
	if rows, err := strconv.ParseUint(strings.TrimSpace(r.doc.AttrOr(id, "rows", "")), 10, 32); err == nil {
		e.Height = 18.67*float64(rows) + 23.3
	}
	e.Value = r.doc.TextContent(id)
	r.register(st, form.Input{
		Name:     r.doc.AttrOr(id, "name", ""),
		Control:  e,
		Default:  e.Value,
		Pattern:  r.pattern(id, "textarea"),
		Required: r.doc.HasAttr(id, "required"),
	})
	return yield(st.item(e))
}

// button resolves a <button> element; its children become the face.
func (r *resolver) button(id html.NodeID, st state, yield emit) bool {
	face := st
	face.style.Background = ButtonFace
	face.style.Margin = css.Edges{}
	disabled := r.doc.HasAttr(id, "disabled")

	b := &box.Button{
		Base:       st.base(),
		Content:    gather(func(y emit) bool { return r.children(id, face, "", "", false, y) }),
		Background: ButtonFace,
		Disabled:   disabled,
	}
	b.Pointer = true
	if st.form != nil && !disabled {
		switch strings.ToLower(r.doc.AttrOr(id, "type", "submit")) {
		case "reset":
			b.Press = st.form.Reset
		case "button":
		default:
			st.form.AddButton(b, r.doc.AttrOr(id, "name", ""), r.doc.AttrOr(id, "value", ""))
		}
	}
	return yield(st.item(b))
}

func (r *resolver) selectBox(id html.NodeID, st state, yield emit) bool {
	d := &box.Dropdown{Base: st.base(), Selected: -1, Width: DropdownWidth}
	for _, opt := range r.doc.ChildElements(id, "option") {
		d.Options = append(d.Options, r.doc.TextContent(opt))
		if d.Selected < 0 && r.doc.HasAttr(opt, "selected") {
			d.Selected = len(d.Options) - 1
		}
	}
	r.register(st, form.Input{
		Name:     r.doc.AttrOr(id, "name", ""),
		Control:  d,
		Default:  d.Selected,
		Required: r.doc.HasAttr(id, "required"),
	})
	return yield(st.item(d))
}

func (r *resolver) meter(id html.NodeID, st state, yield emit) bool {
	m := &box.Meter{Base: st.base(), Min: 0, Max: 1, Width: 20, Height: 10}
	low, high := math.Inf(-1), math.Inf(1)
	for name, dst := range map[string]*float64{
		"min": &m.Min, "max": &m.Max, "value": &m.Value,
		"low": &low, "high": &high,
		"width": &m.Width, "height": &m.Height,
	} {
		if v, ok := r.floatAttr(id, name); ok {
			*dst = v
		}
	}

	switch {
	case r.doc.Tag(id) == "progress":
		m.Bar = ProgressColor
	case m.Value < low || m.Value > high:
		m.Bar = MeterWarn
	default:
		m.Bar = MeterOK
	}
	return yield(st.item(m))
}
