// Package crawl orchestrates bounded, parallel price crawls: a batched
// page phase drains the frontier, then a smaller PDF phase processes the
// documents those pages linked to.
package crawl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pricecrawl/pricecrawl"
	"github.com/pricecrawl/pricecrawl/pdf"
)

// Crawl phase defaults.
const (
	DefaultMaxPages    = 50
	DefaultWorkers     = 5
	DefaultPageTimeout = 8 * time.Second
	DefaultPDFTimeout  = 20 * time.Second

	// The PDF phase is narrower than the page phase: few sites link more
	// than a handful of price documents.
	maxPDFWorkers = 4
	maxPDFs       = 25
)

// errorTitle marks pages whose fetch or parse failed.
const errorTitle = "Error"

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressPage
	ProgressPriced
	ProgressFailed
	ProgressPDF
	ProgressFinished
)

// ProgressEvent reports progress during a crawl.
type ProgressEvent struct {
	Type      ProgressType
	URL       string
	Completed int
	Total     int
	Prices    int
	Error     error
}

// ProgressFunc is a callback for reporting crawl progress. Callbacks run
// on the collector goroutine, in completion order, and should not block.
type ProgressFunc func(event ProgressEvent)

// Crawler coordinates fetching, parsing, price recognition, and PDF
// mining for one site at a time.
type Crawler struct {
	Fetcher   pricecrawl.Fetcher
	Parser    pricecrawl.PageParser
	Extractor pricecrawl.TextExtractor
	Store     pricecrawl.PDFStore

	// Sitemaps, when set, pre-fills the frontier so sparse navigation
	// does not starve the crawl.
	Sitemaps pricecrawl.SitemapService

	PageTimeout time.Duration
	PDFTimeout  time.Duration
	Progress    ProgressFunc
}

var _ pricecrawl.CrawlService = (*Crawler)(nil)

// pageOutcome holds the outcome of processing a single target.
type pageOutcome struct {
	page *pricecrawl.PageResult
	err  error
}

// pdfTarget is a discovered PDF link with the page that linked it.
type pdfTarget struct {
	url        string
	sourcePage string
}

// Crawl runs a bounded crawl of the site hosting startURL. Per-page and
// per-PDF failures degrade to empty results; only an invalid start URL
// returns an error. An unreachable start URL yields a zero-valued result
// with a nil error.
func (c *Crawler) Crawl(ctx context.Context, startURL string, opts pricecrawl.CrawlOptions) (*pricecrawl.CrawlResult, error) {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}

	frontier, err := NewFrontier(startURL, opts.MaxPages)
	if err != nil {
		return nil, err
	}

	result := &pricecrawl.CrawlResult{StartURL: startURL}

	// Probe first: a start URL that cannot be reached at all means the
	// site is fundamentally unavailable, which is an empty outcome
	// rather than an error.
	probeCtx, cancel := context.WithTimeout(ctx, c.pageTimeout())
	_, err = c.Fetcher.Fetch(probeCtx, startURL)
	cancel()
	if err != nil {
		c.progress(ProgressEvent{Type: ProgressFinished})
		return result, nil
	}

	var deadline time.Time
	if opts.Budget > 0 {
		deadline = time.Now().Add(opts.Budget)
	}

	c.progress(ProgressEvent{Type: ProgressStarted, URL: startURL, Total: opts.MaxPages})

	if c.Sitemaps != nil {
		c.seedFromSitemap(ctx, startURL, frontier)
	}

	pending := c.crawlPages(ctx, frontier, opts, deadline, result)
	c.crawlPDFs(ctx, opts, deadline, pending, result)

	c.progress(ProgressEvent{Type: ProgressFinished, Completed: result.TotalPages, Total: opts.MaxPages})
	return result, nil
}

// seedFromSitemap best-effort enqueues sitemap-declared URLs. Discovery
// failures are ignored; link-following alone still works.
func (c *Crawler) seedFromSitemap(ctx context.Context, startURL string, frontier *Frontier) {
	urls, err := c.Sitemaps.DiscoverURLs(ctx, startURL, frontier.RemainingCapacity())
	if err != nil {
		return
	}
	for _, u := range urls {
		frontier.Enqueue(u)
	}
}

// crawlPages drains the frontier in batches of twice the worker count,
// collecting each batch in completion order so fast pages feed new
// discoveries back before slow ones resolve. It returns the PDF links
// the pages surfaced.
func (c *Crawler) crawlPages(ctx context.Context, frontier *Frontier, opts pricecrawl.CrawlOptions, deadline time.Time, result *pricecrawl.CrawlResult) []pdfTarget {
	pageSigs := newSignatureSet()
	var pending []pdfTarget
	batchSize := opts.Workers * 2

	for {
		if ctx.Err() != nil || budgetExpired(deadline) {
			break
		}
		batch := frontier.DequeueBatch(batchSize)
		if len(batch) == 0 {
			break
		}

		outcomeCh := make(chan pageOutcome, len(batch))
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		go func() {
			for _, target := range batch {
				g.Go(func() error {
					outcomeCh <- c.processPage(ctx, target)
					return nil
				})
			}
			_ = g.Wait()
			close(outcomeCh)
		}()

		for outcome := range outcomeCh {
			page := outcome.page
			result.TotalPages++

			switch {
			case outcome.err != nil:
				c.progress(ProgressEvent{
					Type:      ProgressFailed,
					URL:       page.URL,
					Completed: result.TotalPages,
					Total:     opts.MaxPages,
					Error:     outcome.err,
				})
			case len(page.Prices) > 0 && pageSigs.Add(signatureHash(pricecrawl.PriceSignature(page.Prices))):
				result.Pages = append(result.Pages, &pricecrawl.PricedPage{
					URL:    page.URL,
					Title:  page.Title,
					Prices: page.Prices,
					Text:   page.Text,
				})
				result.AllPrices = append(result.AllPrices, page.Prices...)
				c.progress(ProgressEvent{
					Type:      ProgressPriced,
					URL:       page.URL,
					Completed: result.TotalPages,
					Total:     opts.MaxPages,
					Prices:    len(page.Prices),
				})
			default:
				c.progress(ProgressEvent{
					Type:      ProgressPage,
					URL:       page.URL,
					Completed: result.TotalPages,
					Total:     opts.MaxPages,
				})
			}

			for _, link := range page.PDFLinks {
				pending = append(pending, pdfTarget{url: link, sourcePage: page.URL})
			}
			for _, link := range page.Links {
				frontier.Enqueue(link)
			}
		}
	}
	return pending
}

// processPage fetches and mines a single target. It always returns a
// PageResult; failures degrade to one with an error title and no
// content, so one broken page never aborts a batch.
func (c *Crawler) processPage(ctx context.Context, target string) pageOutcome {
	fctx, cancel := context.WithTimeout(ctx, c.pageTimeout())
	defer cancel()

	resp, err := c.Fetcher.Fetch(fctx, target)
	if err != nil {
		return pageOutcome{page: &pricecrawl.PageResult{URL: target, Title: errorTitle}, err: err}
	}

	content, err := c.Parser.Parse(ctx, target, resp.Body)
	if err != nil {
		return pageOutcome{page: &pricecrawl.PageResult{URL: target, Title: errorTitle}, err: err}
	}

	return pageOutcome{page: &pricecrawl.PageResult{
		URL:      target,
		Title:    content.Title,
		Text:     content.Text,
		Prices:   pricecrawl.FindPrices(content.Text),
		Links:    content.Links,
		PDFLinks: content.PDFLinks,
	}}
}

// crawlPDFs processes the first slice of discovered PDF links on a
// narrower pool once all page work has finished.
func (c *Crawler) crawlPDFs(ctx context.Context, opts pricecrawl.CrawlOptions, deadline time.Time, pending []pdfTarget, result *pricecrawl.CrawlResult) {
	if len(pending) == 0 {
		return
	}
	if len(pending) > maxPDFs {
		pending = pending[:maxPDFs]
	}

	fingerprints := newSignatureSet()
	docCh := make(chan *pricecrawl.PDFDocument, len(pending))
	var g errgroup.Group
	g.SetLimit(min(maxPDFWorkers, opts.Workers))
	go func() {
		for _, target := range pending {
			if ctx.Err() != nil || budgetExpired(deadline) {
				break
			}
			g.Go(func() error {
				docCh <- c.processPDF(ctx, target, fingerprints)
				return nil
			})
		}
		_ = g.Wait()
		close(docCh)
	}()

	for doc := range docCh {
		if doc == nil {
			continue
		}
		result.PDFs = append(result.PDFs, doc)
		result.AllPrices = append(result.AllPrices, doc.Prices...)
		c.progress(ProgressEvent{
			Type:   ProgressPDF,
			URL:    doc.URL,
			Prices: len(doc.Prices),
		})
	}
}

// processPDF downloads and mines one PDF. It returns nil for non-PDF
// content, unreadable documents, duplicate content, and storage
// failures; none of those abort the phase.
func (c *Crawler) processPDF(ctx context.Context, target pdfTarget, fingerprints *signatureSet) *pricecrawl.PDFDocument {
	fctx, cancel := context.WithTimeout(ctx, c.pdfTimeout())
	defer cancel()

	resp, err := c.Fetcher.Fetch(fctx, target.url)
	if err != nil {
		return nil
	}
	if !looksLikePDF(resp.ContentType, target.url) {
		return nil
	}

	text, err := c.Extractor.ExtractText(resp.Body)
	if err != nil || text == "" {
		return nil
	}

	isGPL := pdf.DetectGPL(text)
	lines := pdf.MineLines(text, isGPL)
	var prices []string
	for _, line := range lines {
		prices = append(prices, line.Prices...)
	}

	// Check-and-record is atomic so two workers racing on the same
	// content cannot both win.
	fingerprint := pdf.Fingerprint(text)
	if !fingerprints.Add(fingerprint) {
		return nil
	}

	filename, err := c.Store.Save(ctx, target.url, resp.Body)
	if err != nil {
		return nil
	}

	return &pricecrawl.PDFDocument{
		URL:         target.url,
		SourcePage:  target.sourcePage,
		Filename:    filename,
		Size:        len(resp.Body),
		Text:        text,
		PriceLines:  lines,
		Prices:      prices,
		IsGPL:       isGPL,
		Fingerprint: fingerprint,
	}
}

func looksLikePDF(contentType, rawURL string) bool {
	return strings.Contains(strings.ToLower(contentType), "pdf") ||
		strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
}

func (c *Crawler) progress(event ProgressEvent) {
	if c.Progress != nil {
		c.Progress(event)
	}
}

func (c *Crawler) pageTimeout() time.Duration {
	if c.PageTimeout > 0 {
		return c.PageTimeout
	}
	return DefaultPageTimeout
}

func (c *Crawler) pdfTimeout() time.Duration {
	if c.PDFTimeout > 0 {
		return c.PDFTimeout
	}
	return DefaultPDFTimeout
}

func budgetExpired(deadline time.Time) bool {
	return !deadline.IsZero() && time.Now().After(deadline)
}

// signatureHash compacts a page's price signature for the duplicate set.
func signatureHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}
