package pricecrawl

import "context"

// PriceLine is one line of PDF text that carries prices, kept whole so
// service descriptions survive next to their amounts.
type PriceLine struct {
	Text   string
	Prices []string
}

// PDFDocument is a downloaded, mined PDF.
type PDFDocument struct {
	// URL is where the PDF was fetched from; SourcePage is the page that
	// linked to it.
	URL        string
	SourcePage string

	// Filename is the name the document was stored under; Size is its
	// byte length as fetched.
	Filename string
	Size     int

	Text       string
	PriceLines []PriceLine
	Prices     []string

	// IsGPL marks documents that advertise themselves as a general price
	// list; those get the specialized tabular extraction.
	IsGPL bool

	// Fingerprint identifies the document by its leading extracted text,
	// so renamed copies of the same list collapse to one.
	Fingerprint string
}

// TextExtractor pulls plain text out of PDF bytes.
// Implementations try multiple backends and must not panic on malformed
// input; unusable documents yield an error or empty text.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// PDFStore persists raw PDF bytes.
type PDFStore interface {
	// Save stores data under a name derived from the source URL and
	// returns the filename used.
	Save(ctx context.Context, sourceURL string, data []byte) (string, error)
}
