// Package fs provides file-based storage for downloaded price documents.
package fs

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pricecrawl/pricecrawl"
)

// unsafeChars matches filename characters outside the safe set of word
// characters, hyphens and dots.
var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

// Ensure PDFStore implements pricecrawl.PDFStore at compile time.
var _ pricecrawl.PDFStore = (*PDFStore)(nil)

// PDFStore saves downloaded PDFs under a single directory, named after
// their source URLs.
type PDFStore struct {
	dir string
}

// NewPDFStore creates a new PDFStore rooted at dir. The directory is
// created on first save.
func NewPDFStore(dir string) *PDFStore {
	return &PDFStore{dir: dir}
}

// Save writes a document to disk and returns the filename it was stored
// under.
func (s *PDFStore) Save(ctx context.Context, sourceURL string, data []byte) (string, error) {
	filename := Filename(sourceURL, time.Now())

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0644); err != nil {
		return "", err
	}

	return filename, nil
}

// Filename derives a safe local filename from a document URL.
// URLs without a usable .pdf basename get a generated doc_<unix>.pdf name.
// Example: https://example.com/files/GPL%202024.pdf → GPL_2024.pdf
func Filename(sourceURL string, now time.Time) string {
	base := ""
	if u, err := url.Parse(sourceURL); err == nil {
		base = path.Base(u.Path)
	}
	if base == "." || base == "/" {
		base = ""
	}
	if base == "" || !strings.HasSuffix(strings.ToLower(base), ".pdf") {
		base = fmt.Sprintf("doc_%d.pdf", now.Unix())
	}
	return unsafeChars.ReplaceAllString(base, "_")
}
