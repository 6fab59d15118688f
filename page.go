package pricecrawl

import "context"

// PageResult is everything one fetched page yields. A failed fetch degrades
// to a PageResult with an "Error" title and empty fields; it still counts
// toward the page total.
type PageResult struct {
	URL      string
	Title    string
	Text     string
	Prices   []string
	Links    []string
	PDFLinks []string
}

// PageContent is the parser's view of an HTML document: title, flattened
// visible text, and the absolute link targets found in it.
type PageContent struct {
	Title    string
	Text     string
	Links    []string
	PDFLinks []string
}

// PageParser turns raw HTML into PageContent. Implementations must be
// tolerant: malformed markup yields best-effort content, never a panic.
type PageParser interface {
	Parse(ctx context.Context, baseURL string, html []byte) (*PageContent, error)
}
