package net

import (
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
)

// Internal page names under browser://error/.
const (
	PageWrongProtocol  = "Wrong-protocol"
	PageWrongURLFormat = "Wrong-url-format"
	PageNoResponse     = "No-response"
	PageUnknown        = "Unknown"
)

type internalPage struct {
	title string
	body  string
}

var internalPages = map[string]internalPage{
	"home": {"Web Browser", "Welcome to Web Browser. Insert your URL to the top bar"},
	PageWrongProtocol: {"Wrong Protocol",
		"Your protocol must be either http or https"},
	PageWrongURLFormat: {"Wrong URL format",
		"Recheck your URL for misspellings and try again"},
	PageNoResponse: {"No response received",
		"Your site currently is not responding. Check you Internet connection and try again"},
	PageUnknown: {"Unknown error", "Unknown error occured"},
}

// ErrorURL returns the browser:// address of an internal error page.
func ErrorURL(page string) *url.URL {
	return &url.URL{Scheme: "browser", Host: "error", Path: "/" + page}
}

// IsInternal reports whether u is answered without the network.
func IsInternal(u *url.URL) bool {
	return u != nil && u.Scheme == "browser"
}

// Internal answers a browser:// request with a generated page.
func Internal(r *Request) *Response {
	page := internalPages[PageUnknown]
	switch r.URL.Host {
	case "home":
		page = internalPages["home"]
	case "blank":
		page = internalPage{}
	case "error":
		if p, ok := internalPages[strings.TrimPrefix(r.URL.Path, "/")]; ok {
			page = p
		}
	}
	return &Response{
		Request:  r,
		URL:      r.URL,
		Status:   http.StatusOK,
		MIMEType: "text/html",
		Charset:  "utf-8",
		Body:     []byte(renderPage(page)),
	}
}

func renderPage(p internalPage) string {
	if p.title == "" {
		return "<html><head><title>New tab</title></head><body></body></html>"
	}
	return fmt.Sprintf("<html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>",
		html.EscapeString(p.title), html.EscapeString(p.title), html.EscapeString(p.body))
}
