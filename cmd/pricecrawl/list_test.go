package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecrawl/pricecrawl"
	main "github.com/pricecrawl/pricecrawl/cmd/pricecrawl"
	"github.com/pricecrawl/pricecrawl/mock"
)

func TestRunsListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists runs with id, status, and url", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, _ pricecrawl.CrawlRunFilter) ([]*pricecrawl.CrawlRun, int, error) {
				return []*pricecrawl.CrawlRun{
					{
						ID:          "run-123",
						StartURL:    "https://evans-funeral.com",
						Status:      pricecrawl.RunCompleted,
						TotalPages:  12,
						PricesFound: 34,
						CreatedAt:   time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
					},
					{
						ID:        "run-456",
						StartURL:  "https://hillside-memorial.com",
						Status:    pricecrawl.RunFailed,
						CreatedAt: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
					},
				}, 2, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Runs:   runs,
		}

		cmd := &main.RunsListCmd{Limit: 20}

		err := cmd.Run(deps)

		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "run-123")
		assert.Contains(t, output, "run-456")
		assert.Contains(t, output, "completed")
		assert.Contains(t, output, "failed")
		assert.Contains(t, output, "https://evans-funeral.com")
		assert.Contains(t, output, "https://hillside-memorial.com")
		assert.Contains(t, output, "2025-06-01 12:30")
		assert.NotContains(t, output, "Showing")
	})

	t.Run("shows helpful message when no runs archived", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, _ pricecrawl.CrawlRunFilter) ([]*pricecrawl.CrawlRun, int, error) {
				return nil, 0, nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Runs:   runs,
		}

		cmd := &main.RunsListCmd{Limit: 20}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No runs archived. Use 'pricecrawl crawl' to create one.")
	})

	t.Run("passes filters through to the service", func(t *testing.T) {
		t.Parallel()

		var gotFilter pricecrawl.CrawlRunFilter
		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, filter pricecrawl.CrawlRunFilter) ([]*pricecrawl.CrawlRun, int, error) {
				gotFilter = filter
				return nil, 0, nil
			},
		}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Runs:   runs,
		}

		cmd := &main.RunsListCmd{
			URL:    "https://evans-funeral.com",
			Status: "completed",
			Limit:  5,
			Offset: 10,
		}

		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, gotFilter.StartURL)
		assert.Equal(t, "https://evans-funeral.com", *gotFilter.StartURL)
		require.NotNil(t, gotFilter.Status)
		assert.Equal(t, "completed", *gotFilter.Status)
		assert.Equal(t, 5, gotFilter.Limit)
		assert.Equal(t, 10, gotFilter.Offset)
	})

	t.Run("notes when more runs exist than shown", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, _ pricecrawl.CrawlRunFilter) ([]*pricecrawl.CrawlRun, int, error) {
				return []*pricecrawl.CrawlRun{
					{ID: "run-123", StartURL: "https://evans-funeral.com", Status: pricecrawl.RunCompleted},
				}, 3, nil
			},
		}

		stdout := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runs:   runs,
		}

		cmd := &main.RunsListCmd{Limit: 1}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Showing 1 of 3 runs.")
	})

	t.Run("returns error when FindRuns fails", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("database connection failed")

		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, _ pricecrawl.CrawlRunFilter) ([]*pricecrawl.CrawlRun, int, error) {
				return nil, 0, dbErr
			},
		}

		stderr := &bytes.Buffer{}

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Runs:   runs,
		}

		cmd := &main.RunsListCmd{Limit: 20}

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, dbErr, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}
