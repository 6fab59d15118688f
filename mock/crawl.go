package mock

import (
	"context"

	"github.com/pricecrawl/pricecrawl"
)

var _ pricecrawl.CrawlService = (*CrawlService)(nil)

// CrawlService is a mock implementation of pricecrawl.CrawlService.
type CrawlService struct {
	CrawlFn func(ctx context.Context, startURL string, opts pricecrawl.CrawlOptions) (*pricecrawl.CrawlResult, error)
}

func (s *CrawlService) Crawl(ctx context.Context, startURL string, opts pricecrawl.CrawlOptions) (*pricecrawl.CrawlResult, error) {
	return s.CrawlFn(ctx, startURL, opts)
}
