// Package http provides the outbound fetch client, sitemap discovery,
// and the inbound API server.
package http

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/pricecrawl/pricecrawl"
)

// Defaults for the fetch client.
const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultBodyLimit    = 20 << 20
	DefaultRotatePeriod = 25

	fetchAttempts = 2
)

// UserAgents are the browser identities the client cycles through. All
// other request headers stay constant across a rotation.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Fetcher downloads pages and documents over HTTP. It presents itself as
// a regular browser, rotates its identity periodically, and retries the
// transient failures hosting providers like to answer with.
type Fetcher struct {
	client       *http.Client
	bodyLimit    int64
	rotatePeriod int

	mu       sync.Mutex
	requests int
	uaIndex  int
}

var _ pricecrawl.Fetcher = (*Fetcher)(nil)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the overall client timeout. Per-request deadlines come
// from the caller's context and are usually shorter.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithBodyLimit caps how many decoded bytes are read from a response.
func WithBodyLimit(n int64) Option {
	return func(f *Fetcher) {
		f.bodyLimit = n
	}
}

// WithRotatePeriod sets how many requests share one browser identity
// before the client moves to the next.
func WithRotatePeriod(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.rotatePeriod = n
		}
	}
}

// NewFetcher returns a Fetcher with browser-like defaults applied.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: DefaultFetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		bodyLimit:    DefaultBodyLimit,
		rotatePeriod: DefaultRotatePeriod,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url and returns the decoded response body. Forbidden
// responses are retried once with a stripped-down header set, rate limits
// and upstream gateway errors with the full one. Any status outside 2xx
// after the final attempt becomes an EUNAVAILABLE error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*pricecrawl.Response, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		resp, err := f.do(ctx, url, f.nextHeaders())
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}

		// Some hosts reject fingerprint-heavy browser headers but serve
		// plain clients fine.
		if resp.StatusCode == http.StatusForbidden {
			minimal, minErr := f.do(ctx, url, minimalHeaders())
			if minErr != nil {
				if ctx.Err() != nil {
					return nil, minErr
				}
				lastErr = minErr
				continue
			}
			resp = minimal
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			lastErr = pricecrawl.Errorf(pricecrawl.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}

// Close releases idle connections held by the underlying client.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *Fetcher) do(ctx context.Context, url string, headers http.Header) (*pricecrawl.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pricecrawl.Errorf(pricecrawl.EINVALID, "invalid URL %q", url)
	}
	req.Header = headers

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp, f.bodyLimit)
	if err != nil {
		return nil, fmt.Errorf("read body from %s: %w", url, err)
	}
	return &pricecrawl.Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// nextHeaders returns the full browser header set, advancing the active
// user agent at the start of each rotation period.
func (f *Fetcher) nextHeaders() http.Header {
	f.mu.Lock()
	if f.requests%f.rotatePeriod == 0 {
		f.uaIndex = (f.uaIndex + 1) % len(UserAgents)
	}
	f.requests++
	ua := UserAgents[f.uaIndex]
	f.mu.Unlock()
	return browserHeaders(ua)
}

func browserHeaders(ua string) http.Header {
	h := make(http.Header)
	h.Set("User-Agent", ua)
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("DNT", "1")
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Cache-Control", "max-age=0")
	return h
}

func minimalHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", UserAgents[0])
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return h
}

// decodeBody reads at most limit bytes of the response body, reversing
// whatever content encoding the server applied.
func decodeBody(resp *http.Response, limit int64) ([]byte, error) {
	var r io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		r = fl
	case "br":
		r = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(io.LimitReader(r, limit))
}
