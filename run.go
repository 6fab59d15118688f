package pricecrawl

import (
	"context"
	"net/url"
	"time"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// CrawlRun is the archived record of one crawl session.
type CrawlRun struct {
	ID       string
	StartURL string
	PageCap  int
	Workers  int
	Status   string

	// Totals filled in as the run completes.
	TotalPages   int
	PricedPages  int
	PricesFound  int
	PDFsStored   int
	ExcerptCount int

	// FormattedPrices is the LLM-cleaned price list, empty when the LLM
	// step was skipped or failed.
	FormattedPrices string

	CreatedAt  time.Time
	FinishedAt time.Time
}

// Validate returns EINVALID if the run cannot be persisted.
func (r *CrawlRun) Validate() error {
	if r.StartURL == "" {
		return Errorf(EINVALID, "start URL is required")
	}
	u, err := url.Parse(r.StartURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Errorf(EINVALID, "start URL must use http or https")
	}
	if r.PageCap <= 0 {
		return Errorf(EINVALID, "page cap must be positive")
	}
	if r.Workers <= 0 {
		return Errorf(EINVALID, "workers must be positive")
	}
	switch r.Status {
	case RunRunning, RunCompleted, RunFailed:
	default:
		return Errorf(EINVALID, "unknown run status: %q", r.Status)
	}
	return nil
}

// CrawlRunUpdate holds the updatable fields of a run; nil means unchanged.
type CrawlRunUpdate struct {
	Status          *string
	TotalPages      *int
	PricedPages     *int
	PricesFound     *int
	PDFsStored      *int
	ExcerptCount    *int
	FormattedPrices *string
	FinishedAt      *time.Time
}

// CrawlRunFilter selects runs. Zero values match everything.
type CrawlRunFilter struct {
	ID       *string
	StartURL *string
	Status   *string

	Limit  int
	Offset int
}

// RunService manages the crawl-run archive.
type RunService interface {
	// CreateRun persists a new run, assigning ID and CreatedAt.
	CreateRun(ctx context.Context, run *CrawlRun) error

	// FindRunByID returns a run or ENOTFOUND.
	FindRunByID(ctx context.Context, id string) (*CrawlRun, error)

	// FindRuns returns matching runs, newest first, plus the total count
	// disregarding Limit/Offset.
	FindRuns(ctx context.Context, filter CrawlRunFilter) ([]*CrawlRun, int, error)

	// UpdateRun applies upd and returns the updated run, or ENOTFOUND.
	UpdateRun(ctx context.Context, id string, upd CrawlRunUpdate) (*CrawlRun, error)

	// DeleteRun removes a run and its excerpts, or returns ENOTFOUND.
	DeleteRun(ctx context.Context, id string) error
}
