// Package form collects the controls of a form element and turns them into
// a request when the form is submitted.
package form

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"wren/pkg/box"
	"wren/std/net"
)

// ErrUnsupportedControl is the panic value (wrapped) raised when an input
// is bound to a control the form cannot read.
var ErrUnsupportedControl = errors.New("unsupported form control")

// MatchAll is the pattern of inputs that accept any value.
var MatchAll = regexp.MustCompile(`(?s)^.*$`)

// CompilePattern anchors p so it must match a whole value.
func CompilePattern(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + p + `)$`)
}

// Input is one registered form field. Control is a *box.TextEntry,
// *box.Checkbox, *box.Dropdown or *box.Stepper, or nil for a field with a
// fixed Value.
type Input struct {
	Name    string // empty inputs are validated but never submitted
	Control box.Visual
	// Default is what Reset restores: a string for text entries, a bool
	// for checkboxes, an int for dropdowns and a float64 for steppers.
	Default  any
	Pattern  *regexp.Regexp // nil means MatchAll
	Required bool
	// Value is submitted for checked checkboxes and static inputs.
	Value string
}

type buttonData struct {
	name  string
	value string
}

// Form is the model behind one form element.
type Form struct {
	Action  *url.URL
	Enctype string
	Method  string

	host    box.Navigator
	origin  *net.Response
	inputs  []Input
	buttons map[*box.Button]buttonData
}

// New returns an empty form. method is normalised to one of GET, POST,
// PUT, DELETE or HEAD; anything else becomes GET. origin is the response
// of the page the form is on and may be nil.
func New(action *url.URL, enctype, method string, host box.Navigator, origin *net.Response) *Form {
	if enctype == "" {
		enctype = net.FormURLEncoded
	}
	if action == nil {
		action = &url.URL{}
	}
	return &Form{
		Action:  action,
		Enctype: strings.ToLower(enctype),
		Method:  ParseMethod(method),
		host:    host,
		origin:  origin,
		buttons: make(map[*box.Button]buttonData),
	}
}

// ParseMethod maps a method attribute to an HTTP method.
func ParseMethod(m string) string {
	switch m = strings.ToUpper(strings.TrimSpace(m)); m {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodHead:
		return m
	}
	return http.MethodGet
}

// AddInput registers a field. Fields are submitted in registration order.
func (f *Form) AddInput(in Input) {
	f.inputs = append(f.inputs, in)
}

// AddButton registers a submit button. Pressing it submits the form with
// name=value added first, when name is set.
func (f *Form) AddButton(b *box.Button, name, value string) {
	f.buttons[b] = buttonData{name: name, value: value}
	b.Press = func() {
		// navigation errors are reported by the host
		_ = f.Submit(context.Background(), b)
	}
}

// Inputs returns the registered fields.
func (f *Form) Inputs() []Input { return f.inputs }

// Submit validates the form and hands the resulting request to the host.
// A failed validation marks the offending control and sends nothing.
func (f *Form) Submit(ctx context.Context, trigger *box.Button) error {
	r, ok := f.Request(trigger)
	if !ok || f.host == nil {
		return nil
	}
	return f.host.Navigate(ctx, r)
}

// Request builds the submission request. ok is false when a field failed
// validation.
func (f *Form) Request(trigger *box.Button) (r *net.Request, ok bool) {
	var data fields
	if bd, found := f.buttons[trigger]; found && trigger != nil && bd.name != "" {
		data.set(bd.name, bd.value)
	}
	for i := range f.inputs {
		value, valid := f.inputs[i].read()
		if !valid {
			return nil, false
		}
		if f.inputs[i].Name != "" && value != nil {
			data.set(f.inputs[i].Name, *value)
		}
	}
	return f.encode(data), true
}

func (f *Form) encode(data fields) *net.Request {
	var referrer *url.URL
	policy := net.DefaultPolicy
	if f.origin != nil {
		referrer = f.origin.URL
		if referrer == nil && f.origin.Request != nil {
			referrer = f.origin.Request.URL
		}
		policy = f.origin.Policy.OrDefault()
	}

	if f.Method == http.MethodGet {
		target := *f.Action
		target.RawQuery = data.encode(queryEscape)
		target.ForceQuery = true
		r := net.NewRequest(&target, referrer)
		r.Policy = policy
		return r
	}

	r := net.NewRequest(f.Action, referrer)
	r.Method = f.Method
	r.Policy = policy
	switch f.Enctype {
	case net.FormPlain:
		r.Body = []byte(data.encode(func(s string) string { return s }))
		r.MediaType = net.FormPlain
	case net.FormMultipart:
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, kv := range data {
			// writes to a bytes.Buffer do not fail
			_ = w.WriteField(kv.name, kv.value)
		}
		_ = w.Close()
		r.Body = buf.Bytes()
		r.MediaType = w.FormDataContentType()
	default:
		r.Body = []byte(data.encode(url.QueryEscape))
		r.MediaType = net.FormURLEncoded
	}
	return r
}

// queryEscape escapes s for a URL query with spaces as %20.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Reset restores every control to its registration default.
func (f *Form) Reset() {
	for _, in := range f.inputs {
		switch c := in.Control.(type) {
		case nil:
		case *box.TextEntry:
			c.Value, _ = in.Default.(string)
		case *box.Checkbox:
			c.Checked, _ = in.Default.(bool)
		case *box.Dropdown:
			if sel, ok := in.Default.(int); ok {
				c.Selected = sel
			} else {
				c.Selected = -1
			}
		case *box.Stepper:
			c.Value, _ = in.Default.(float64)
		default:
			panic(fmt.Errorf("%w: %T", ErrUnsupportedControl, c))
		}
	}
}

// read returns the submitted value of the input, nil when it contributes
// nothing, and whether it passed validation. The control's invalid mark
// is updated.
func (in *Input) read() (value *string, valid bool) {
	switch c := in.Control.(type) {
	case nil:
		return &in.Value, true
	case *box.TextEntry:
		pattern := in.Pattern
		if pattern == nil {
			pattern = MatchAll
		}
		c.Invalid = (in.Required && c.Value == "") || !pattern.MatchString(c.Value)
		return &c.Value, !c.Invalid
	case *box.Checkbox:
		c.Invalid = in.Required && !c.Checked
		if !c.Checked {
			return nil, !c.Invalid
		}
		return &in.Value, !c.Invalid
	case *box.Dropdown:
		v, selected := c.Value()
		c.Invalid = in.Required && !selected
		return &v, !c.Invalid
	case *box.Stepper:
		v := strconv.FormatFloat(c.Value, 'f', -1, 64)
		return &v, true
	default:
		panic(fmt.Errorf("%w: %T", ErrUnsupportedControl, c))
	}
}

type field struct {
	name  string
	value string
}

// fields is an insertion-ordered map; setting an existing name replaces
// its value in place.
type fields []field

func (fs *fields) set(name, value string) {
	for i := range *fs {
		if (*fs)[i].name == name {
			(*fs)[i].value = value
			return
		}
	}
	*fs = append(*fs, field{name, value})
}

func (fs fields) encode(escape func(string) string) string {
	parts := make([]string, len(fs))
	for i, kv := range fs {
		parts[i] = escape(kv.name) + "=" + escape(kv.value)
	}
	return strings.Join(parts, "&")
}
