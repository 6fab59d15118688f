package pricecrawl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecrawl/pricecrawl"
)

func TestAssembleExcerpts(t *testing.T) {
	t.Parallel()

	t.Run("emits line and sentence spans from page text", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			Pages: []*pricecrawl.PricedPage{{
				URL:  "https://example.com/services",
				Text: "Our Direct Burial service is only $795. Call us today for details.",
			}},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		require.Len(t, excerpts, 2)
		assert.Equal(t, "Our Direct Burial service is only $795. Call us today for details.", excerpts[0].Text)
		assert.Equal(t, "Our Direct Burial service is only $795", excerpts[1].Text)
		for _, e := range excerpts {
			assert.Equal(t, "https://example.com/services", e.Source)
			assert.Equal(t, pricecrawl.SourceWebpage, e.Kind)
			assert.Equal(t, []string{"$795"}, e.Prices)
		}
	})

	t.Run("identical line and sentence spans collapse to one excerpt", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			Pages: []*pricecrawl.PricedPage{{
				URL:  "https://example.com",
				Text: "Direct Burial starting at $795",
			}},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		require.Len(t, excerpts, 1)
		assert.Equal(t, "Direct Burial starting at $795", excerpts[0].Text)
	})

	t.Run("dot-leader tabular lines survive as single excerpts", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			Pages: []*pricecrawl.PricedPage{{
				URL:  "https://example.com/gpl",
				Text: "Basic Service Fee .......... $1,295.00",
			}},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		// The sentence pass shreds the dot leader into short fragments;
		// only the line pass emits.
		require.Len(t, excerpts, 1)
		assert.Equal(t, pricecrawl.SourceWebpage, excerpts[0].Kind)
		assert.Equal(t, "Basic Service Fee .......... $1,295.00", excerpts[0].Text)
		assert.Contains(t, excerpts[0].Prices, "$1,295.00")
	})

	t.Run("short and priceless spans are dropped", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			Pages: []*pricecrawl.PricedPage{{
				URL:  "https://example.com",
				Text: "Welcome to our family owned funeral home. $795",
			}},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		// The full line carries the price; neither sentence fragment
		// does ("$795" alone is too short).
		require.Len(t, excerpts, 1)
		assert.Equal(t, "Welcome to our family owned funeral home. $795", excerpts[0].Text)
	})

	t.Run("css fragments are dropped from the sentence pass", func(t *testing.T) {
		t.Parallel()
		// Both lines fall short of the line-pass minimum, so only the
		// sentence pass sees the text, and it rejects markup leakage.
		result := &pricecrawl.CrawlResult{
			Pages: []*pricecrawl.PricedPage{{
				URL:  "https://example.com",
				Text: "width: 100px\nonly $500 today.",
			}},
		}

		assert.Empty(t, pricecrawl.AssembleExcerpts(result))
	})

	t.Run("noisy lines still emit when they carry prices", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			Pages: []*pricecrawl.PricedPage{{
				URL:  "https://example.com",
				Text: "margin-top: 10px; cremation cost $500",
			}},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		// The line pass keeps everything priced; the sentence pass is
		// the one that filters css fragments.
		require.Len(t, excerpts, 1)
		assert.Equal(t, "margin-top: 10px; cremation cost $500", excerpts[0].Text)
		assert.Equal(t, []string{"$500"}, excerpts[0].Prices)
	})

	t.Run("pdf price lines come through verbatim", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			PDFs: []*pricecrawl.PDFDocument{{
				URL: "https://example.com/gpl.pdf",
				PriceLines: []pricecrawl.PriceLine{
					{Text: "Direct Cremation: $795", Prices: []string{"$795"}},
				},
			}},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		require.Len(t, excerpts, 1)
		assert.Equal(t, pricecrawl.SourcePDF, excerpts[0].Kind)
		assert.Equal(t, "Direct Cremation: $795", excerpts[0].Text)
		assert.Equal(t, []string{"$795"}, excerpts[0].Prices)
	})

	t.Run("raw pdf lines gain a context window", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			PDFs: []*pricecrawl.PDFDocument{{
				URL:  "https://example.com/gpl.pdf",
				Text: "General Price List\nBurial Service 2,500.00 total\nThank you for visiting",
			}},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		require.Len(t, excerpts, 1)
		assert.Equal(t, pricecrawl.SourcePDFContext, excerpts[0].Kind)
		assert.Equal(t, "General Price List | Burial Service 2,500.00 total | Thank you for visiting", excerpts[0].Text)
		assert.Equal(t, []string{"$2,500.00"}, excerpts[0].Prices)
	})

	t.Run("context window skips missing neighbors", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			PDFs: []*pricecrawl.PDFDocument{{
				URL:  "https://example.com/gpl.pdf",
				Text: "Casket $800 premium oak finish\nOptions available on request",
			}},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		require.Len(t, excerpts, 1)
		assert.Equal(t, "Casket $800 premium oak finish | Options available on request", excerpts[0].Text)
		assert.Equal(t, []string{"$800"}, excerpts[0].Prices)
	})

	t.Run("duplicate spans across sources keep the first source", func(t *testing.T) {
		t.Parallel()
		line := pricecrawl.PriceLine{Text: "Direct Cremation: $795", Prices: []string{"$795"}}
		result := &pricecrawl.CrawlResult{
			PDFs: []*pricecrawl.PDFDocument{
				{URL: "https://example.com/a.pdf", PriceLines: []pricecrawl.PriceLine{line}},
				{URL: "https://example.com/b.pdf", PriceLines: []pricecrawl.PriceLine{line}},
			},
		}

		excerpts := pricecrawl.AssembleExcerpts(result)

		require.Len(t, excerpts, 1)
		assert.Equal(t, "https://example.com/a.pdf", excerpts[0].Source)
	})

	t.Run("assembly is idempotent", func(t *testing.T) {
		t.Parallel()
		result := &pricecrawl.CrawlResult{
			Pages: []*pricecrawl.PricedPage{{
				URL:  "https://example.com",
				Text: "Direct Cremation starting at $795. Caskets from $1,200.",
			}},
			PDFs: []*pricecrawl.PDFDocument{{
				URL:  "https://example.com/gpl.pdf",
				Text: "Urn selection from 250.00\nVault pricing varies",
			}},
		}

		first := pricecrawl.AssembleExcerpts(result)
		second := pricecrawl.AssembleExcerpts(result)

		assert.Equal(t, first, second)
	})

	t.Run("empty result yields no excerpts", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, pricecrawl.AssembleExcerpts(&pricecrawl.CrawlResult{}))
	})
}
