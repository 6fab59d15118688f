package mock

import (
	"context"

	"github.com/pricecrawl/pricecrawl"
)

var _ pricecrawl.PDFStore = (*PDFStore)(nil)

// PDFStore is a mock implementation of pricecrawl.PDFStore.
type PDFStore struct {
	SaveFn func(ctx context.Context, sourceURL string, data []byte) (string, error)
}

func (s *PDFStore) Save(ctx context.Context, sourceURL string, data []byte) (string, error) {
	return s.SaveFn(ctx, sourceURL, data)
}
