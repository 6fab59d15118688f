package pricecrawl

import (
	"context"
	"regexp"
)

// SourceKind identifies where a price excerpt was mined from.
type SourceKind string

const (
	SourceWebpage    SourceKind = "webpage"
	SourcePDF        SourceKind = "pdf"
	SourcePDFContext SourceKind = "pdf_context"
)

// PriceExcerpt is a deduplicated span of text containing at least one
// recognized price, attributed to the URL it was mined from.
type PriceExcerpt struct {
	Source string
	Kind   SourceKind
	Text   string
	Prices []string
}

// Validate returns EINVALID if the excerpt has missing fields.
func (e *PriceExcerpt) Validate() error {
	if e.Source == "" {
		return Errorf(EINVALID, "excerpt source is required")
	}
	if e.Text == "" {
		return Errorf(EINVALID, "excerpt text is required")
	}
	switch e.Kind {
	case SourceWebpage, SourcePDF, SourcePDFContext:
	default:
		return Errorf(EINVALID, "unknown excerpt kind: %q", e.Kind)
	}
	return nil
}

// ExcerptService persists the excerpts produced by a crawl run.
type ExcerptService interface {
	// CreateExcerpts stores excerpts for a run, preserving their order.
	CreateExcerpts(ctx context.Context, runID string, excerpts []*PriceExcerpt) error

	// FindExcerptsByRun returns a run's excerpts in stored order.
	// Returns ENOTFOUND if the run does not exist.
	FindExcerptsByRun(ctx context.Context, runID string) ([]*PriceExcerpt, error)
}

// technicalNoise recognizes spans that look like markup leakage rather than
// prose: inline JSON or CSS fragments, theme option keys, color and unit
// literals, and runs of binary garbage or replacement characters.
var technicalNoise = regexp.MustCompile(`(?i)` +
	`{\s*["'][\w-]+["']:\s*["']|` +
	`margin-top|padding|border-width|background-color|` +
	`slug|ver|options|elements|settings|` +
	`rgba?\(\d+,\d+,\d+|` +
	`px|em|rem|%"|` +
	`["'][\w-]+["']:\s*["'][\w-]+["']|` +
	`[^\x20-\x7E]{5,}|` +
	`����|�{3,}`)

// IsTechnicalNoise reports whether a span should be excluded from price
// excerpts. The keyword alternatives match as bare substrings, so ordinary
// prose containing "premium" or "elements" also matches; callers apply this
// only to span kinds where markup leakage outweighs that loss.
func IsTechnicalNoise(s string) bool {
	return technicalNoise.MatchString(s)
}
