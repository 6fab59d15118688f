package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/pricecrawl/pricecrawl"
)

// Ensure LoggingCategorizer implements pricecrawl.Categorizer.
var _ pricecrawl.Categorizer = (*LoggingCategorizer)(nil)

// LoggingCategorizer wraps a Categorizer with per-call logging. Model calls
// are the slowest and flakiest part of a run, so both operations log their
// duration and outcome size.
type LoggingCategorizer struct {
	next   pricecrawl.Categorizer
	logger *slog.Logger
}

// NewLoggingCategorizer creates a new LoggingCategorizer.
func NewLoggingCategorizer(next pricecrawl.Categorizer, logger *slog.Logger) *LoggingCategorizer {
	return &LoggingCategorizer{next: next, logger: logger}
}

// FormatPriceList delegates to the wrapped categorizer and logs the call.
func (c *LoggingCategorizer) FormatPriceList(ctx context.Context, corpus string) (formatted string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("format price list",
			"corpus_chars", len(corpus),
			"formatted_chars", len(formatted),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.FormatPriceList(ctx, corpus)
}

// Categorize delegates to the wrapped categorizer and logs the call.
func (c *LoggingCategorizer) Categorize(ctx context.Context, formatted string) (categories map[string][]string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("categorize",
			"categories", len(categories),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Categorize(ctx, formatted)
}
