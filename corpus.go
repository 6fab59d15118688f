package pricecrawl

import (
	"fmt"
	"strings"
	"time"
)

// FormatCorpus renders excerpts as the numbered text corpus handed to the
// LLM layer: a header block, then excerpts grouped by source in first-seen
// order with continuous numbering.
func FormatCorpus(startURL string, generated time.Time, excerpts []*PriceExcerpt) string {
	var b strings.Builder

	webpages, pdfs := 0, 0
	for _, e := range excerpts {
		if e.Kind == SourceWebpage {
			webpages++
		} else {
			pdfs++
		}
	}

	fmt.Fprintf(&b, "COMPLETE PRICE EXCERPTS FROM: %s\n", startURL)
	fmt.Fprintf(&b, "Generated: %s\n", generated.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Total excerpts: %d\n", len(excerpts))
	fmt.Fprintf(&b, "Webpage excerpts: %d\n", webpages)
	fmt.Fprintf(&b, "PDF excerpts: %d\n", pdfs)
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	// Group by source, preserving first-seen order.
	var order []string
	bySource := make(map[string][]*PriceExcerpt)
	for _, e := range excerpts {
		if _, ok := bySource[e.Source]; !ok {
			order = append(order, e.Source)
		}
		bySource[e.Source] = append(bySource[e.Source], e)
	}

	num := 1
	for _, source := range order {
		group := bySource[source]
		b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
		fmt.Fprintf(&b, "SOURCE: %s\n", source)
		fmt.Fprintf(&b, "Type: %s\n", strings.ToUpper(string(group[0].Kind)))
		fmt.Fprintf(&b, "Excerpts from this source: %d\n", len(group))
		b.WriteString(strings.Repeat("=", 60) + "\n\n")

		for _, e := range group {
			fmt.Fprintf(&b, "[%d] %s\n", num, e.Text)
			fmt.Fprintf(&b, "PRICES FOUND: %s\n", strings.Join(e.Prices, ", "))
			b.WriteString(strings.Repeat("-", 40) + "\n")
			num++
		}
		b.WriteString("\n")
	}

	return b.String()
}
