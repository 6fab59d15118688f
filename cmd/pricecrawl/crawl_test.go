package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecrawl/pricecrawl"
	main "github.com/pricecrawl/pricecrawl/cmd/pricecrawl"
	"github.com/pricecrawl/pricecrawl/crawl"
	"github.com/pricecrawl/pricecrawl/mock"
)

// pricedSite returns fetcher and parser mocks serving a one-page site whose
// text carries a single price.
func pricedSite() (*mock.Fetcher, *mock.PageParser) {
	fetcher := &mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (*pricecrawl.Response, error) {
			return &pricecrawl.Response{StatusCode: 200, ContentType: "text/html", Body: []byte("<html></html>")}, nil
		},
	}
	parser := &mock.PageParser{
		ParseFn: func(_ context.Context, _ string, _ []byte) (*pricecrawl.PageContent, error) {
			return &pricecrawl.PageContent{
				Title: "Services",
				Text:  "Direct Burial starting at $795",
			}, nil
		},
	}
	return fetcher, parser
}

// newCrawlDeps wires a real crawler over the given mocks, plus archive
// mocks that accept everything.
func newCrawlDeps(fetcher pricecrawl.Fetcher, parser pricecrawl.PageParser) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Runs: &mock.RunService{
			CreateRunFn: func(_ context.Context, run *pricecrawl.CrawlRun) error {
				run.ID = "run-1"
				return nil
			},
		},
		Excerpts: &mock.ExcerptService{
			CreateExcerptsFn: func(_ context.Context, _ string, _ []*pricecrawl.PriceExcerpt) error {
				return nil
			},
		},
		Crawler: &crawl.Crawler{Fetcher: fetcher, Parser: parser},
	}
	return deps, stdout, stderr
}

func TestCrawlCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("crawls and prints the excerpt corpus", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newCrawlDeps(pricedSite())

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Crawling https://example.com (up to 3 pages)")
		assert.Contains(t, out, "[1/3] https://example.com: 1 prices")
		assert.Contains(t, out, "Crawled 1 pages: 1 with prices, 1 unique prices")
		assert.Contains(t, out, "COMPLETE PRICE EXCERPTS FROM: https://example.com")
		assert.Contains(t, out, "Direct Burial starting at $795")
		assert.Contains(t, out, "Archived run run-1")
		assert.Empty(t, stderr.String())
	})

	t.Run("reports failed pages on stderr and keeps going", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*pricecrawl.Response, error) {
				if strings.Contains(url, "broken") {
					return nil, pricecrawl.Errorf(pricecrawl.EUNAVAILABLE, "HTTP 500 for %s", url)
				}
				return &pricecrawl.Response{StatusCode: 200, ContentType: "text/html", Body: []byte("<html></html>")}, nil
			},
		}
		parser := &mock.PageParser{
			ParseFn: func(_ context.Context, _ string, _ []byte) (*pricecrawl.PageContent, error) {
				return &pricecrawl.PageContent{
					Title: "Services",
					Text:  "Direct Burial starting at $795",
					Links: []string{"https://example.com/broken"},
				}, nil
			},
		}
		deps, stdout, stderr := newCrawlDeps(fetcher, parser)

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 5, Workers: 2, Timeout: time.Minute}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "skip https://example.com/broken")
		assert.Contains(t, stdout.String(), "Crawled 2 pages: 1 with prices, 1 unique prices")
	})

	t.Run("prints the formatted list when requested", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newCrawlDeps(pricedSite())

		var gotCorpus string
		deps.Categorizer = &mock.Categorizer{
			FormatPriceListFn: func(_ context.Context, corpus string) (string, error) {
				gotCorpus = corpus
				return "Direct Burial: $795", nil
			},
		}
		var createdRun *pricecrawl.CrawlRun
		deps.Runs = &mock.RunService{
			CreateRunFn: func(_ context.Context, run *pricecrawl.CrawlRun) error {
				run.ID = "run-1"
				createdRun = run
				return nil
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute, Format: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Formatted price list:")
		assert.Contains(t, out, "Direct Burial: $795")
		// The formatted list replaces the raw corpus on stdout.
		assert.NotContains(t, out, "COMPLETE PRICE EXCERPTS FROM:")
		assert.Contains(t, gotCorpus, "COMPLETE PRICE EXCERPTS FROM: https://example.com")
		require.NotNil(t, createdRun)
		assert.Equal(t, "Direct Burial: $795", createdRun.FormattedPrices)
	})

	t.Run("falls back to the corpus when formatting fails", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newCrawlDeps(pricedSite())
		deps.Categorizer = &mock.Categorizer{
			FormatPriceListFn: func(_ context.Context, _ string) (string, error) {
				return "", pricecrawl.Errorf(pricecrawl.EINTERNAL, "model unavailable")
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute, Format: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "warning: price list formatting failed")
		assert.Contains(t, stdout.String(), "COMPLETE PRICE EXCERPTS FROM: https://example.com")
	})

	t.Run("groups categories with Other Services last", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newCrawlDeps(pricedSite())
		deps.Categorizer = &mock.Categorizer{
			FormatPriceListFn: func(_ context.Context, _ string) (string, error) {
				return "Direct Burial: $795\nMemorial Cards: $50", nil
			},
			CategorizeFn: func(_ context.Context, _ string) (map[string][]string, error) {
				return map[string][]string{
					"Other Services":  {"Memorial Cards: $50"},
					"Burial Services": {"Direct Burial: $795"},
				}, nil
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute, Categorize: true}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Burial Services:")
		assert.Contains(t, out, "  Direct Burial: $795")
		assert.Contains(t, out, "Other Services:")
		assert.Less(t, strings.Index(out, "Burial Services:"), strings.Index(out, "Other Services:"))
	})

	t.Run("writes the corpus to a file with --output", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newCrawlDeps(pricedSite())

		path := filepath.Join(t.TempDir(), "corpus.txt")
		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute, Output: path}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Wrote 1 excerpts to "+path)
		assert.NotContains(t, stdout.String(), "COMPLETE PRICE EXCERPTS FROM:")

		written, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(written), "COMPLETE PRICE EXCERPTS FROM: https://example.com")
		assert.Contains(t, string(written), "Direct Burial starting at $795")
	})

	t.Run("downloads linked pdfs and reports the total size", func(t *testing.T) {
		t.Parallel()

		pdfBody := []byte("%PDF-1.4 fake document")
		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*pricecrawl.Response, error) {
				if strings.HasSuffix(url, ".pdf") {
					return &pricecrawl.Response{StatusCode: 200, ContentType: "application/pdf", Body: pdfBody}, nil
				}
				return &pricecrawl.Response{StatusCode: 200, ContentType: "text/html", Body: []byte("<html></html>")}, nil
			},
		}
		parser := &mock.PageParser{
			ParseFn: func(_ context.Context, _ string, _ []byte) (*pricecrawl.PageContent, error) {
				return &pricecrawl.PageContent{
					Title:    "Services",
					Text:     "Direct Burial starting at $795",
					PDFLinks: []string{"https://example.com/gpl.pdf"},
				}, nil
			},
		}
		deps, stdout, _ := newCrawlDeps(fetcher, parser)
		deps.Crawler.Extractor = &mock.TextExtractor{
			ExtractTextFn: func(_ []byte) (string, error) {
				return "General Price List\nDirect Cremation 795.00", nil
			},
		}
		var savedURL string
		deps.Crawler.Store = &mock.PDFStore{
			SaveFn: func(_ context.Context, sourceURL string, _ []byte) (string, error) {
				savedURL = sourceURL
				return "example.com_gpl.pdf", nil
			},
		}
		var createdRun *pricecrawl.CrawlRun
		deps.Runs = &mock.RunService{
			CreateRunFn: func(_ context.Context, run *pricecrawl.CrawlRun) error {
				run.ID = "run-1"
				createdRun = run
				return nil
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute, PDFDir: "downloaded_pdfs"}

		err := cmd.Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "pdf https://example.com/gpl.pdf")
		assert.Contains(t, out, "Saved 1 PDFs (22 B) to downloaded_pdfs")
		assert.Equal(t, "https://example.com/gpl.pdf", savedURL)
		require.NotNil(t, createdRun)
		assert.Equal(t, 1, createdRun.PDFsStored)
	})

	t.Run("archives the run with crawl totals", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newCrawlDeps(pricedSite())

		var createdRun *pricecrawl.CrawlRun
		deps.Runs = &mock.RunService{
			CreateRunFn: func(_ context.Context, run *pricecrawl.CrawlRun) error {
				run.ID = "run-1"
				createdRun = run
				return nil
			},
		}
		var excerptRunID string
		var excerptCount int
		deps.Excerpts = &mock.ExcerptService{
			CreateExcerptsFn: func(_ context.Context, runID string, excerpts []*pricecrawl.PriceExcerpt) error {
				excerptRunID = runID
				excerptCount = len(excerpts)
				return nil
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute}

		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, createdRun)
		assert.Equal(t, "https://example.com", createdRun.StartURL)
		assert.Equal(t, pricecrawl.RunCompleted, createdRun.Status)
		assert.Equal(t, 3, createdRun.PageCap)
		assert.Equal(t, 2, createdRun.Workers)
		assert.Equal(t, 1, createdRun.TotalPages)
		assert.Equal(t, 1, createdRun.PricedPages)
		assert.Equal(t, 1, createdRun.PricesFound)
		assert.Equal(t, 1, createdRun.ExcerptCount)
		assert.False(t, createdRun.FinishedAt.IsZero())
		assert.Equal(t, "run-1", excerptRunID)
		assert.Equal(t, 1, excerptCount)
	})

	t.Run("archive failure does not fail the crawl", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newCrawlDeps(pricedSite())
		deps.Runs = &mock.RunService{
			CreateRunFn: func(_ context.Context, _ *pricecrawl.CrawlRun) error {
				return pricecrawl.Errorf(pricecrawl.EINTERNAL, "disk full")
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "warning: could not archive run")
		assert.NotContains(t, stdout.String(), "Archived run")
	})

	t.Run("reports no pricing information for an unreachable site", func(t *testing.T) {
		t.Parallel()

		fetcher := &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*pricecrawl.Response, error) {
				return nil, pricecrawl.Errorf(pricecrawl.EUNAVAILABLE, "HTTP 503 for %s", url)
			},
		}
		_, parser := pricedSite()
		deps, stdout, _ := newCrawlDeps(fetcher, parser)

		archived := false
		deps.Runs = &mock.RunService{
			CreateRunFn: func(_ context.Context, _ *pricecrawl.CrawlRun) error {
				archived = true
				return nil
			},
		}

		cmd := &main.CrawlCmd{URL: "https://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Crawled 0 pages")
		assert.Contains(t, stdout.String(), "No pricing information found.")
		assert.False(t, archived, "empty crawls should not be archived")
	})

	t.Run("rejects an invalid start URL", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newCrawlDeps(pricedSite())

		cmd := &main.CrawlCmd{URL: "ftp://example.com", MaxPages: 3, Workers: 2, Timeout: time.Minute}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, pricecrawl.EINVALID, pricecrawl.ErrorCode(err))
		assert.Contains(t, stderr.String(), "invalid start URL")
	})
}
