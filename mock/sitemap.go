package mock

import (
	"context"

	"github.com/pricecrawl/pricecrawl"
)

var _ pricecrawl.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of pricecrawl.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, limit int) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, limit int) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, limit)
}
