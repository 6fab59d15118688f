// Package slog provides logging decorators for pricecrawl services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/pricecrawl/pricecrawl"
)

// Ensure LoggingFetcher implements pricecrawl.Fetcher.
var _ pricecrawl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next   pricecrawl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next pricecrawl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the request.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (resp *pricecrawl.Response, err error) {
	defer func(begin time.Time) {
		size := 0
		status := 0
		if resp != nil {
			size = len(resp.Body)
			status = resp.StatusCode
		}
		f.logger.Info("fetch",
			"url", url,
			"status", status,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
