package sqlite

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pricecrawl/pricecrawl"
)

// Compile-time interface verification.
var _ pricecrawl.ExcerptService = (*ExcerptService)(nil)

// ExcerptService implements pricecrawl.ExcerptService using SQLite.
type ExcerptService struct {
	db *DB
}

// NewExcerptService creates a new ExcerptService.
func NewExcerptService(db *DB) *ExcerptService {
	return &ExcerptService{db: db}
}

// CreateExcerpts stores a run's excerpts, preserving their order through the
// position column.
func (s *ExcerptService) CreateExcerpts(ctx context.Context, runID string, excerpts []*pricecrawl.PriceExcerpt) error {
	if err := s.runExists(ctx, runID); err != nil {
		return err
	}

	for i, excerpt := range excerpts {
		if err := excerpt.Validate(); err != nil {
			return err
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT INTO excerpts (id, run_id, source, kind, text, prices, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, uuid.New().String(), runID, excerpt.Source, string(excerpt.Kind),
			excerpt.Text, joinPrices(excerpt.Prices), i)
		if err != nil {
			return err
		}
	}

	return nil
}

// FindExcerptsByRun retrieves a run's excerpts in stored order.
func (s *ExcerptService) FindExcerptsByRun(ctx context.Context, runID string) ([]*pricecrawl.PriceExcerpt, error) {
	if err := s.runExists(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, kind, text, prices
		FROM excerpts
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var excerpts []*pricecrawl.PriceExcerpt
	for rows.Next() {
		var excerpt pricecrawl.PriceExcerpt
		var kind, prices string

		if err := rows.Scan(&excerpt.Source, &kind, &excerpt.Text, &prices); err != nil {
			return nil, err
		}
		excerpt.Kind = pricecrawl.SourceKind(kind)
		excerpt.Prices = splitPrices(prices)

		excerpts = append(excerpts, &excerpt)
	}

	return excerpts, rows.Err()
}

// runExists returns ENOTFOUND if the run is not in the archive.
func (s *ExcerptService) runExists(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM crawl_runs WHERE id = ?", runID).Scan(&one)
	if err == sql.ErrNoRows {
		return pricecrawl.Errorf(pricecrawl.ENOTFOUND, "run not found")
	}
	return err
}
