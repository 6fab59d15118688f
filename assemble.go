package pricecrawl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Minimum span lengths, in characters of trimmed text.
const (
	minPageSpan    = 20
	minContextLine = 10
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// AssembleExcerpts flattens an accumulated crawl result into the ordered
// excerpt list the corpus is built from. Page text is scanned twice, by
// line and by sentence run. PDFs contribute their pre-mined price lines,
// then their raw text is rescanned for price-bearing lines which are
// emitted with one line of surrounding context. Spans are deduplicated
// across all sources by content hash; the first occurrence wins, so
// assembling the same result twice yields the same excerpt set.
func AssembleExcerpts(result *CrawlResult) []*PriceExcerpt {
	var out []*PriceExcerpt
	seen := make(map[string]bool)

	emit := func(source string, kind SourceKind, text string, prices []string) {
		h := excerptHash(text)
		if seen[h] {
			return
		}
		seen[h] = true
		out = append(out, &PriceExcerpt{Source: source, Kind: kind, Text: text, Prices: prices})
	}

	for _, page := range result.Pages {
		if page.Text == "" {
			continue
		}
		for _, line := range strings.Split(page.Text, "\n") {
			line = strings.TrimSpace(line)
			if len(line) < minPageSpan {
				continue
			}
			if prices := FindPrices(line); len(prices) > 0 {
				emit(page.URL, SourceWebpage, line, prices)
			}
		}
		for _, sentence := range sentenceEnd.Split(page.Text, -1) {
			sentence = strings.TrimSpace(sentence)
			if len(sentence) < minPageSpan || IsTechnicalNoise(sentence) {
				continue
			}
			if prices := FindPrices(sentence); len(prices) > 0 {
				emit(page.URL, SourceWebpage, sentence, prices)
			}
		}
	}

	for _, doc := range result.PDFs {
		for _, pl := range doc.PriceLines {
			emit(doc.URL, SourcePDF, pl.Text, pl.Prices)
		}

		// Rescan the raw text for price lines the extractors missed,
		// keeping one neighboring line on each side as context.
		lines := strings.Split(doc.Text, "\n")
		for i, raw := range lines {
			line := strings.TrimSpace(raw)
			if len(line) < minContextLine {
				continue
			}
			prices := FindPrices(line)
			if len(prices) == 0 {
				continue
			}
			var window []string
			if i > 0 {
				if prev := strings.TrimSpace(lines[i-1]); prev != "" {
					window = append(window, prev)
				}
			}
			window = append(window, line)
			if i < len(lines)-1 {
				if next := strings.TrimSpace(lines[i+1]); next != "" {
					window = append(window, next)
				}
			}
			emit(doc.URL, SourcePDFContext, strings.Join(window, " | "), prices)
		}
	}

	return out
}

func excerptHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}
