package net

import (
	"net/http"
	"net/url"
	"strings"
)

// RefPolicy is a referrer policy. The zero value means no policy was given.
type RefPolicy int

const (
	PolicyUnset RefPolicy = iota
	NoReferrer
	NoReferrerWhenDowngrade
	Origin
	OriginWhenCrossOrigin
	SameOrigin
	StrictOrigin
	StrictOriginWhenCrossOrigin
	UnsafeURL
)

// DefaultPolicy applies when neither the response nor the markup set one.
const DefaultPolicy = StrictOriginWhenCrossOrigin

var policyNames = map[RefPolicy]string{
	NoReferrer:                  "no-referrer",
	NoReferrerWhenDowngrade:     "no-referrer-when-downgrade",
	Origin:                      "origin",
	OriginWhenCrossOrigin:       "origin-when-cross-origin",
	SameOrigin:                  "same-origin",
	StrictOrigin:                "strict-origin",
	StrictOriginWhenCrossOrigin: "strict-origin-when-cross-origin",
	UnsafeURL:                   "unsafe-url",
}

func (p RefPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "unset"
}

// ParseRefPolicy maps a header or attribute value to a policy. Unknown
// values fall back to DefaultPolicy.
func ParseRefPolicy(s string) RefPolicy {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range policyNames {
		if name == s {
			return p
		}
	}
	return DefaultPolicy
}

// OrDefault returns p, or DefaultPolicy when p is unset.
func (p RefPolicy) OrDefault() RefPolicy {
	if p == PolicyUnset {
		return DefaultPolicy
	}
	return p
}

const (
	AcceptHTML  = "text/html, text/plain;q=0.9, */*;q=0.5"
	AcceptImage = "image/png, image/jpeg, image/*;q=0.9, image/svg;q=0, image/svg+xml;q=0"

	FormURLEncoded = "application/x-www-form-urlencoded"
	FormMultipart  = "multipart/form-data"
	FormPlain      = "text/plain"
)

// Request describes one fetch.
type Request struct {
	URL       *url.URL
	Referrer  *url.URL
	Method    string
	Body      []byte
	MediaType string // of Body
	Accept    string
	Policy    RefPolicy
}

// HomeURL is the referrer of requests that no page initiated.
var HomeURL = &url.URL{Scheme: "browser", Host: "home", Path: "/"}

// NewRequest returns a GET request for u with the default headers.
func NewRequest(u, referrer *url.URL) *Request {
	if referrer == nil {
		referrer = HomeURL
	}
	return &Request{
		URL:       u,
		Referrer:  referrer,
		Method:    http.MethodGet,
		MediaType: FormURLEncoded,
		Accept:    AcceptHTML,
		Policy:    DefaultPolicy,
	}
}

// Response is the result of a fetch after redirects were followed.
type Response struct {
	Request  *Request
	URL      *url.URL // final URL
	Status   int
	MIMEType string // lowercase type/subtype without parameters
	Charset  string // from Content-Type, may be empty
	Policy   RefPolicy
	Body     []byte
}

// MajorType returns the part of the MIME type before the slash.
func (r *Response) MajorType() string {
	major, _, _ := strings.Cut(r.MIMEType, "/")
	return major
}

// ResolveURL resolves a possibly-relative reference against base.
func ResolveURL(base *url.URL, ref string) (*url.URL, error) {
	refURL, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	if base == nil {
		return refURL, nil
	}
	return base.ResolveReference(refURL), nil
}

// IsNetworkURL reports whether u is fetched over HTTP or HTTPS.
func IsNetworkURL(u *url.URL) bool {
	return u != nil && (u.Scheme == "http" || u.Scheme == "https")
}
