package pricecrawl

import "context"

// Categorizer turns a raw price corpus into clean, organized listings using
// a language model.
type Categorizer interface {
	// FormatPriceList extracts "Item Name: $Price" lines from a corpus of
	// price excerpts. Returns EINVALID on empty input.
	FormatPriceList(ctx context.Context, corpus string) (string, error)

	// Categorize groups a formatted price list into named categories.
	// Returns EINVALID on empty input.
	Categorize(ctx context.Context, formatted string) (map[string][]string, error)
}
