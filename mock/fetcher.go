package mock

import (
	"context"

	"github.com/pricecrawl/pricecrawl"
)

var _ pricecrawl.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of pricecrawl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*pricecrawl.Response, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*pricecrawl.Response, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
