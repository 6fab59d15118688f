package pricecrawl

import (
	"context"
	"sort"
	"time"
)

// CrawlOptions bound a crawl session.
type CrawlOptions struct {
	// MaxPages caps how many URLs are fetched (the page cap).
	MaxPages int

	// Workers is the page-phase parallelism. The PDF phase runs
	// min(4, Workers) workers.
	Workers int

	// Budget is the wall-clock allowance for the whole crawl. Zero means
	// no budget. On expiry no new batches are dispatched; in-flight
	// fetches finish on their own per-request deadlines.
	Budget time.Duration
}

// PricedPage is a crawled page that contributed prices to the result.
type PricedPage struct {
	URL    string
	Title  string
	Prices []string

	// Text is the flattened page text the prices were found in; the
	// excerpt assembler splits it into spans later.
	Text string
}

// CrawlResult accumulates everything a crawl session produced. Slices are in
// arrival order, which depends on fetch completion and is not a stable
// function of the input site.
type CrawlResult struct {
	StartURL string

	// TotalPages counts every processed fetch, including failed ones.
	TotalPages int

	// Pages holds pages with prices whose price signature was new.
	Pages []*PricedPage

	// PDFs holds stored PDF documents, content-deduplicated.
	PDFs []*PDFDocument

	// AllPrices accumulates prices from pages and PDFs in arrival order,
	// duplicates across sources included.
	AllPrices []string
}

// PricedPageCount returns how many distinct priced pages were found.
func (r *CrawlResult) PricedPageCount() int { return len(r.Pages) }

// UniquePrices returns the distinct prices across all sources, sorted.
func (r *CrawlResult) UniquePrices() []string {
	seen := make(map[string]struct{}, len(r.AllPrices))
	for _, p := range r.AllPrices {
		seen[p] = struct{}{}
	}
	unique := make([]string, 0, len(seen))
	for p := range seen {
		unique = append(unique, p)
	}
	sort.Strings(unique)
	return unique
}

// CrawlService runs a bounded crawl of a single site.
//
// A start URL that cannot be reached at all yields a zero-valued CrawlResult
// and a nil error; hard failure of the probe is an empty outcome, not an
// exception.
type CrawlService interface {
	Crawl(ctx context.Context, startURL string, opts CrawlOptions) (*CrawlResult, error)
}
