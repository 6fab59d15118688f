package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecrawl/pricecrawl/fs"
)

func TestPDFStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("writes the document under its URL basename", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "pdfs")
		store := fs.NewPDFStore(dir)

		data := []byte("%PDF-1.4 fake document")
		filename, err := store.Save(context.Background(), "https://example.com/files/gpl.pdf", data)
		require.NoError(t, err)
		assert.Equal(t, "gpl.pdf", filename)

		saved, err := os.ReadFile(filepath.Join(dir, "gpl.pdf"))
		require.NoError(t, err)
		assert.Equal(t, data, saved)
	})

	t.Run("creates the directory on first save", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "pdfs")
		store := fs.NewPDFStore(dir)

		_, err := store.Save(context.Background(), "https://example.com/gpl.pdf", []byte("%PDF"))
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error when the directory cannot be created", func(t *testing.T) {
		t.Parallel()

		store := fs.NewPDFStore("/dev/null/pdfs")

		_, err := store.Save(context.Background(), "https://example.com/gpl.pdf", []byte("%PDF"))
		require.Error(t, err)
	})
}

func TestFilename(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain basename", "https://example.com/files/gpl.pdf", "gpl.pdf"},
		{"query is not part of the name", "https://example.com/files/gpl.pdf?v=2", "gpl.pdf"},
		{"escaped spaces become underscores", "https://example.com/files/GPL%202024.pdf", "GPL_2024.pdf"},
		{"unsafe characters become underscores", "https://example.com/price(list).pdf", "price_list_.pdf"},
		{"uppercase extension is kept", "https://example.com/GPL.PDF", "GPL.PDF"},
		{"no path generates a name", "https://example.com", "doc_1700000000.pdf"},
		{"non-pdf basename generates a name", "https://example.com/download", "doc_1700000000.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, fs.Filename(tt.url, now))
		})
	}
}
