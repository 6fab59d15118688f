package mock

import (
	"context"

	"github.com/pricecrawl/pricecrawl"
)

var _ pricecrawl.RunService = (*RunService)(nil)

// RunService is a mock implementation of pricecrawl.RunService.
type RunService struct {
	CreateRunFn   func(ctx context.Context, run *pricecrawl.CrawlRun) error
	FindRunByIDFn func(ctx context.Context, id string) (*pricecrawl.CrawlRun, error)
	FindRunsFn    func(ctx context.Context, filter pricecrawl.CrawlRunFilter) ([]*pricecrawl.CrawlRun, int, error)
	UpdateRunFn   func(ctx context.Context, id string, upd pricecrawl.CrawlRunUpdate) (*pricecrawl.CrawlRun, error)
	DeleteRunFn   func(ctx context.Context, id string) error
}

func (s *RunService) CreateRun(ctx context.Context, run *pricecrawl.CrawlRun) error {
	return s.CreateRunFn(ctx, run)
}

func (s *RunService) FindRunByID(ctx context.Context, id string) (*pricecrawl.CrawlRun, error) {
	return s.FindRunByIDFn(ctx, id)
}

func (s *RunService) FindRuns(ctx context.Context, filter pricecrawl.CrawlRunFilter) ([]*pricecrawl.CrawlRun, int, error) {
	return s.FindRunsFn(ctx, filter)
}

func (s *RunService) UpdateRun(ctx context.Context, id string, upd pricecrawl.CrawlRunUpdate) (*pricecrawl.CrawlRun, error) {
	return s.UpdateRunFn(ctx, id, upd)
}

func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	return s.DeleteRunFn(ctx, id)
}
