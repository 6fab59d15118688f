package crawl

import (
	"net/url"
	"strings"
	"sync"

	"github.com/pricecrawl/pricecrawl"
	"github.com/pricecrawl/pricecrawl/bloom"
)

// Frontier sizing.
const (
	// frontierExpectedURLs is the expected number of URLs for Bloom filter sizing.
	frontierExpectedURLs = 10000
	// frontierFalsePositiveRate is the acceptable false positive rate for deduplication.
	frontierFalsePositiveRate = 0.01
)

// skipExtensions are asset paths that never hold crawlable content.
var skipExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".css", ".js", ".ico", ".svg",
	".woff", ".woff2", ".ttf", ".eot",
}

// Frontier is the FIFO queue of discovered-but-unfetched crawl targets,
// scoped to a single host and bounded by the page cap. It is safe for
// concurrent use by multiple goroutines.
type Frontier struct {
	host string
	cap  int

	mu      sync.Mutex
	seen    *bloom.Filter
	queue   []string
	visited int
}

// NewFrontier returns a frontier scoped to startURL's host, with the
// start target already enqueued.
func NewFrontier(startURL string, pageCap int) (*Frontier, error) {
	target, ok := NormalizeURL(startURL)
	if !ok {
		return nil, pricecrawl.Errorf(pricecrawl.EINVALID, "invalid start URL %q", startURL)
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, pricecrawl.Errorf(pricecrawl.EINVALID, "invalid start URL %q", startURL)
	}
	f := &Frontier{
		host: u.Host,
		cap:  pageCap,
		seen: bloom.NewFilter(frontierExpectedURLs, frontierFalsePositiveRate),
	}
	f.seen.Add(target)
	f.queue = append(f.queue, target)
	return f, nil
}

// Enqueue offers a discovered URL to the frontier. It reports false for
// out-of-scope, asset, already-seen, or over-cap URLs; a rejected link is
// a filtered no-op, never an error.
func (f *Frontier) Enqueue(rawURL string) bool {
	target, ok := NormalizeURL(rawURL)
	if !ok {
		return false
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != f.host {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visited >= f.cap {
		return false
	}
	if f.seen.TestAndAdd(target) {
		return false
	}
	f.queue = append(f.queue, target)
	return true
}

// DequeueBatch removes up to max targets in discovery order, marking each
// one visited. Dequeueing stops at the page cap; targets left queued when
// the cap is reached are expected, not an error.
func (f *Frontier) DequeueBatch(max int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var batch []string
	for len(batch) < max && len(f.queue) > 0 && f.visited < f.cap {
		batch = append(batch, f.queue[0])
		f.queue = f.queue[1:]
		f.visited++
	}
	return batch
}

// RemainingCapacity reports how many more targets may still be visited.
func (f *Frontier) RemainingCapacity() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cap - f.visited
}

// Visited reports how many targets have been handed out so far.
func (f *Frontier) Visited() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited
}

// Len reports queued, unconsumed targets.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// NormalizeURL reduces a URL to its crawl-target identity: scheme, host
// and path, with the query, fragment, and a single trailing slash
// stripped. Two URLs differing only in those parts are the same target.
func NormalizeURL(rawURL string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/"), true
}
