package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pricecrawl/pricecrawl"
)

// Compile-time interface verification.
var _ pricecrawl.RunService = (*RunService)(nil)

// RunService implements pricecrawl.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun persists a new crawl run, assigning its ID and creation time.
func (s *RunService) CreateRun(ctx context.Context, run *pricecrawl.CrawlRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_runs (id, start_url, page_cap, workers, status,
			total_pages, priced_pages, prices_found, pdfs_stored, excerpt_count,
			formatted_prices, created_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartURL, run.PageCap, run.Workers, run.Status,
		run.TotalPages, run.PricedPages, run.PricesFound, run.PDFsStored, run.ExcerptCount,
		run.FormattedPrices, run.CreatedAt.Format(time.RFC3339), formatNullableTime(run.FinishedAt))

	return err
}

// FindRunByID retrieves a run by ID.
func (s *RunService) FindRunByID(ctx context.Context, id string) (*pricecrawl.CrawlRun, error) {
	var run pricecrawl.CrawlRun
	var createdAt, finishedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_url, page_cap, workers, status,
			total_pages, priced_pages, prices_found, pdfs_stored, excerpt_count,
			formatted_prices, created_at, finished_at
		FROM crawl_runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.StartURL, &run.PageCap, &run.Workers, &run.Status,
		&run.TotalPages, &run.PricedPages, &run.PricesFound, &run.PDFsStored, &run.ExcerptCount,
		&run.FormattedPrices, &createdAt, &finishedAt)

	if err == sql.ErrNoRows {
		return nil, pricecrawl.Errorf(pricecrawl.ENOTFOUND, "run not found")
	}
	if err != nil {
		return nil, err
	}

	if run.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if run.FinishedAt, err = parseNullableTime(finishedAt, "finished_at"); err != nil {
		return nil, err
	}

	return &run, nil
}

// FindRuns retrieves runs matching the filter, newest first, along with the
// total number of matches disregarding pagination.
func (s *RunService) FindRuns(ctx context.Context, filter pricecrawl.CrawlRunFilter) ([]*pricecrawl.CrawlRun, int, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, start_url, page_cap, workers, status,
		total_pages, priced_pages, prices_found, pdfs_stored, excerpt_count,
		formatted_prices, created_at, finished_at,
		COUNT(*) OVER()
		FROM crawl_runs WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.StartURL != nil {
		query.WriteString(" AND start_url = ?")
		args = append(args, *filter.StartURL)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, *filter.Status)
	}

	query.WriteString(" ORDER BY created_at DESC, id")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*pricecrawl.CrawlRun
	total := 0
	for rows.Next() {
		var run pricecrawl.CrawlRun
		var createdAt, finishedAt string

		if err := rows.Scan(&run.ID, &run.StartURL, &run.PageCap, &run.Workers, &run.Status,
			&run.TotalPages, &run.PricedPages, &run.PricesFound, &run.PDFsStored, &run.ExcerptCount,
			&run.FormattedPrices, &createdAt, &finishedAt, &total); err != nil {
			return nil, 0, err
		}

		if run.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, 0, err
		}
		if run.FinishedAt, err = parseNullableTime(finishedAt, "finished_at"); err != nil {
			return nil, 0, err
		}

		runs = append(runs, &run)
	}

	return runs, total, rows.Err()
}

// UpdateRun updates an existing run.
func (s *RunService) UpdateRun(ctx context.Context, id string, upd pricecrawl.CrawlRunUpdate) (*pricecrawl.CrawlRun, error) {
	run, err := s.FindRunByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Status != nil {
		run.Status = *upd.Status
	}
	if upd.TotalPages != nil {
		run.TotalPages = *upd.TotalPages
	}
	if upd.PricedPages != nil {
		run.PricedPages = *upd.PricedPages
	}
	if upd.PricesFound != nil {
		run.PricesFound = *upd.PricesFound
	}
	if upd.PDFsStored != nil {
		run.PDFsStored = *upd.PDFsStored
	}
	if upd.ExcerptCount != nil {
		run.ExcerptCount = *upd.ExcerptCount
	}
	if upd.FormattedPrices != nil {
		run.FormattedPrices = *upd.FormattedPrices
	}
	if upd.FinishedAt != nil {
		run.FinishedAt = *upd.FinishedAt
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE crawl_runs
		SET status = ?, total_pages = ?, priced_pages = ?, prices_found = ?,
			pdfs_stored = ?, excerpt_count = ?, formatted_prices = ?, finished_at = ?
		WHERE id = ?
	`, run.Status, run.TotalPages, run.PricedPages, run.PricesFound,
		run.PDFsStored, run.ExcerptCount, run.FormattedPrices, formatNullableTime(run.FinishedAt), id)

	if err != nil {
		return nil, err
	}

	return run, nil
}

// DeleteRun permanently removes a run and, via cascade, its excerpts.
func (s *RunService) DeleteRun(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM crawl_runs WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return pricecrawl.Errorf(pricecrawl.ENOTFOUND, "run not found")
	}

	return nil
}
