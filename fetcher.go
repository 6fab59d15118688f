package pricecrawl

import "context"

// Response is the raw outcome of a fetch: status, declared content type, and
// the fully read (decompressed) body.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves raw responses over HTTP.
// Implementations handle header rotation, retries, and body decoding.
type Fetcher interface {
	// Fetch performs a GET against the URL. The context carries the
	// per-request deadline; callers choose page vs PDF timeouts.
	// A non-2xx status after retries is an error.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases client resources.
	Close() error
}
