package mock

import (
	"context"

	"github.com/pricecrawl/pricecrawl"
)

var _ pricecrawl.Categorizer = (*Categorizer)(nil)

// Categorizer is a mock implementation of pricecrawl.Categorizer.
type Categorizer struct {
	FormatPriceListFn func(ctx context.Context, corpus string) (string, error)
	CategorizeFn      func(ctx context.Context, formatted string) (map[string][]string, error)
}

func (c *Categorizer) FormatPriceList(ctx context.Context, corpus string) (string, error) {
	return c.FormatPriceListFn(ctx, corpus)
}

func (c *Categorizer) Categorize(ctx context.Context, formatted string) (map[string][]string, error) {
	return c.CategorizeFn(ctx, formatted)
}
