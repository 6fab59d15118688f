package mock

import "github.com/pricecrawl/pricecrawl"

var _ pricecrawl.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of pricecrawl.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(data []byte) (string, error)
}

func (e *TextExtractor) ExtractText(data []byte) (string, error) {
	return e.ExtractTextFn(data)
}
