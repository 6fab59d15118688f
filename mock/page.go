package mock

import (
	"context"

	"github.com/pricecrawl/pricecrawl"
)

var _ pricecrawl.PageParser = (*PageParser)(nil)

// PageParser is a mock implementation of pricecrawl.PageParser.
type PageParser struct {
	ParseFn func(ctx context.Context, baseURL string, html []byte) (*pricecrawl.PageContent, error)
}

func (p *PageParser) Parse(ctx context.Context, baseURL string, html []byte) (*pricecrawl.PageContent, error) {
	return p.ParseFn(ctx, baseURL, html)
}
