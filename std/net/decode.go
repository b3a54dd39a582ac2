package net

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// AcceptEncoding lists the content codings decodeContent understands.
const AcceptEncoding = "gzip, deflate, zstd"

// decodeContent undoes a Content-Encoding. Bodies that were already
// decompressed on the way in are passed through.
func decodeContent(encoding string, body []byte) ([]byte, error) {
	var r io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return body, nil
	case "gzip", "x-gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(err, "gzip")
		}
		defer zr.Close()
		r = zr
	case "deflate":
		zr, err := zlib.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(err, "deflate")
		}
		defer zr.Close()
		r = zr
	case "zstd":
		zr, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(err, "zstd")
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s body", encoding)
	}
	return out, nil
}

// mediaType splits a Content-Type header. When the header is missing or
// unparsable the body is sniffed.
func mediaType(header string, body []byte) (mimeType, cs string) {
	if header != "" {
		if mt, params, err := mime.ParseMediaType(header); err == nil {
			return strings.ToLower(mt), params["charset"]
		}
	}
	detected := mimetype.Detect(body)
	mt, params, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return "application/octet-stream", ""
	}
	return mt, params["charset"]
}

// Text returns the body converted to UTF-8. The declared charset wins;
// otherwise BOMs and meta tags are consulted, and when those are not
// conclusive the charset is guessed from the bytes.
func (r *Response) Text() string {
	label := r.Charset
	if label == "" {
		_, name, certain := charset.DetermineEncoding(r.Body, r.MIMEType)
		label = name
		if !certain {
			if guess, err := chardet.NewTextDetector().DetectBest(r.Body); err == nil && guess.Confidence >= 50 {
				label = guess.Charset
			}
		}
	}
	reader, err := charset.NewReaderLabel(label, bytes.NewReader(r.Body))
	if err != nil {
		return string(r.Body)
	}
	out, err := io.ReadAll(reader)
	if err != nil {
		return string(r.Body)
	}
	return string(out)
}

var markupTypes = map[string]bool{
	"text/html":                     true,
	"image/svg":                     true,
	"image/svg+xml":                 true,
	"application/xhtml":             true,
	"application/xhtml+xml":         true,
	"application/vnd.wap.xhtml+xml": true,
}

// IsMarkup reports whether the response is parsed as a page.
func (r *Response) IsMarkup() bool {
	return markupTypes[r.MIMEType]
}

// Document returns markup for the response: the page itself, a wrapper
// page that shows a media resource, or the escaped text of anything else.
func (r *Response) Document() string {
	if r.IsMarkup() {
		return r.Text()
	}
	title := html.EscapeString(r.URL.Path)
	switch major := r.MajorType(); major {
	case "image", "audio", "video":
		tag := "img"
		if major != "image" {
			tag = major
		}
		return fmt.Sprintf("<html><head><title>%s</title></head><body><br><%s src=\"%s\"></body></html>",
			title, tag, html.EscapeString(r.URL.String()))
	}
	return fmt.Sprintf("<html><head><title>%s</title></head><body><pre>%s</pre></body></html>",
		title, html.EscapeString(r.Text()))
}
