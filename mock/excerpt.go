package mock

import (
	"context"

	"github.com/pricecrawl/pricecrawl"
)

var _ pricecrawl.ExcerptService = (*ExcerptService)(nil)

// ExcerptService is a mock implementation of pricecrawl.ExcerptService.
type ExcerptService struct {
	CreateExcerptsFn    func(ctx context.Context, runID string, excerpts []*pricecrawl.PriceExcerpt) error
	FindExcerptsByRunFn func(ctx context.Context, runID string) ([]*pricecrawl.PriceExcerpt, error)
}

func (s *ExcerptService) CreateExcerpts(ctx context.Context, runID string, excerpts []*pricecrawl.PriceExcerpt) error {
	return s.CreateExcerptsFn(ctx, runID, excerpts)
}

func (s *ExcerptService) FindExcerptsByRun(ctx context.Context, runID string) ([]*pricecrawl.PriceExcerpt, error) {
	return s.FindExcerptsByRunFn(ctx, runID)
}
