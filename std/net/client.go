package net

import (
	"bytes"
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"wren/pkg/config"
	"wren/pkg/metrics"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrTooManyRedirects  = errors.New("too many redirects")
)

// Fetcher retrieves a response for a request.
type Fetcher interface {
	Fetch(ctx context.Context, r *Request) (*Response, error)
}

// Client fetches over HTTP with retries, a cookie jar and manual
// redirect handling, and answers browser:// requests itself.
type Client struct {
	Resty        *resty.Client
	Jar          http.CookieJar
	maxRedirects int
	log          *zap.Logger
	metrics      *metrics.Metrics
}

// NewClient builds a client from network configuration. m and log may be nil.
func NewClient(cfg config.NetworkConfig, m *metrics.Metrics, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, errors.Wrap(err, "creating cookie jar")
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil
	// Redirects surface to Fetch, which follows them hop by hop so cookies,
	// Referer and the final URL track every hop.
	retryClient.HTTPClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	restyClient := resty.New()
	restyClient.
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept-Encoding", AcceptEncoding).
		SetCookieJar(jar).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		})).
		SetTransport(&retryablehttp.RoundTripper{Client: retryClient})

	maxRedirects := cfg.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = 10
	}
	return &Client{
		Resty:        restyClient,
		Jar:          jar,
		maxRedirects: maxRedirects,
		log:          log,
		metrics:      m,
	}, nil
}

// Fetch sends r and follows Location headers. Non-2xx responses are
// returned as responses, not errors.
func (c *Client) Fetch(ctx context.Context, r *Request) (*Response, error) {
	if IsInternal(r.URL) {
		c.count(r.URL.Scheme, metrics.OK)
		return Internal(r), nil
	}
	if !IsNetworkURL(r.URL) {
		c.count(r.URL.Scheme, metrics.Error)
		return nil, errors.Wrapf(ErrUnsupportedScheme, "fetching %s", r.URL)
	}

	start := time.Now()
	method, body := r.Method, r.Body
	target := r.URL
	for hop := 0; ; hop++ {
		resp, err := c.send(ctx, r, method, target, body)
		if err != nil {
			c.count(target.Scheme, metrics.Error)
			return nil, errors.Wrapf(err, "fetching %s", target)
		}

		if loc := resp.Header().Get("Location"); loc != "" && isRedirect(resp.StatusCode()) {
			if hop >= c.maxRedirects {
				c.count(target.Scheme, metrics.Error)
				return nil, errors.Wrapf(ErrTooManyRedirects, "fetching %s", r.URL)
			}
			next, err := ResolveURL(target, loc)
			if err != nil {
				return nil, errors.Wrapf(err, "bad Location %q", loc)
			}
			c.log.Debug("following redirect",
				zap.Int("status", resp.StatusCode()),
				zap.String("from", target.String()),
				zap.String("to", next.String()))
			if resp.StatusCode() == http.StatusSeeOther && method != http.MethodHead {
				method, body = http.MethodGet, nil
			}
			target = next
			continue
		}

		out, err := c.response(r, target, resp)
		if err != nil {
			c.count(target.Scheme, metrics.Error)
			return nil, err
		}
		c.count(target.Scheme, metrics.OK)
		if c.metrics != nil {
			c.metrics.FetchDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
			c.metrics.ResponseSize.Observe(float64(len(out.Body)))
		}
		return out, nil
	}
}

func (c *Client) send(ctx context.Context, r *Request, method string, target *url.URL, body []byte) (*resty.Response, error) {
	req := c.Resty.R().SetContext(ctx)
	if r.Accept != "" {
		req.SetHeader("Accept", r.Accept)
	}
	if !IsInternal(r.Referrer) {
		if ref := Referer(target, r.Referrer, r.Policy); ref != "" {
			req.SetHeader("Referer", ref)
		}
	}
	if body != nil {
		req.SetHeader("Content-Type", r.MediaType)
		req.SetBody(bytes.NewReader(body))
	}
	c.log.Debug("sending request", zap.String("method", method), zap.String("url", target.String()))
	return req.Execute(method, target.String())
}

func (c *Client) response(r *Request, target *url.URL, resp *resty.Response) (*Response, error) {
	body, err := decodeContent(resp.Header().Get("Content-Encoding"), resp.Body())
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", target)
	}
	mt, cs := mediaType(resp.Header().Get("Content-Type"), body)
	out := &Response{
		Request:  r,
		URL:      target,
		Status:   resp.StatusCode(),
		MIMEType: mt,
		Charset:  cs,
		Body:     body,
	}
	if p := resp.Header().Get("Referrer-Policy"); p != "" {
		out.Policy = ParseRefPolicy(p)
	}
	return out, nil
}

func (c *Client) count(scheme, outcome string) {
	if c.metrics != nil {
		c.metrics.FetchesTotal.WithLabelValues(scheme, outcome).Inc()
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
