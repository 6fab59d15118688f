package pdf_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricecrawl/pricecrawl"
	pcpdf "github.com/pricecrawl/pricecrawl/pdf"
)

func TestDetectGPL(t *testing.T) {
	t.Parallel()

	t.Run("detects price list phrases in any case", func(t *testing.T) {
		t.Parallel()

		assert.True(t, pcpdf.DetectGPL("Smith & Sons General Price List, effective January"))
		assert.True(t, pcpdf.DetectGPL("our gpl is available on request"))
		assert.True(t, pcpdf.DetectGPL("FUNERAL PRICES AND PACKAGES"))
	})

	t.Run("plain brochures are not price lists", func(t *testing.T) {
		t.Parallel()

		assert.False(t, pcpdf.DetectGPL("About our family-owned chapel and grounds"))
	})
}

func TestExtractGPLLines(t *testing.T) {
	t.Parallel()

	t.Run("captures dot-leader lines", func(t *testing.T) {
		t.Parallel()

		lines := pcpdf.ExtractGPLLines("Basic Service Fee .......... $1,295.00\n")

		texts := lineTexts(lines)
		assert.Contains(t, texts, "Basic Service Fee: $1,295.00")
	})

	t.Run("captures column-aligned bare amounts", func(t *testing.T) {
		t.Parallel()

		lines := pcpdf.ExtractGPLLines("Direct Cremation    795\n")

		require.Len(t, lines, 1)
		assert.Equal(t, "Direct Cremation: $795", lines[0].Text)
		assert.Equal(t, []string{"$795"}, lines[0].Prices)
	})

	t.Run("captures pipe-delimited table rows", func(t *testing.T) {
		t.Parallel()

		lines := pcpdf.ExtractGPLLines("Caskets | Oak Model | $2,500.00\n")

		texts := lineTexts(lines)
		assert.Contains(t, texts, "Caskets: $2,500.00")
	})

	t.Run("captures trailing dollar amounts", func(t *testing.T) {
		t.Parallel()

		lines := pcpdf.ExtractGPLLines("Embalming $750.00\n")

		texts := lineTexts(lines)
		assert.Contains(t, texts, "Embalming: $750.00")
	})
}

func TestExtractStandardLines(t *testing.T) {
	t.Parallel()

	t.Run("keeps priced lines and collapses whitespace", func(t *testing.T) {
		t.Parallel()

		lines := pcpdf.ExtractStandardLines("Burial  Vault   $900 installed\nno prices on this line\n")

		require.Len(t, lines, 1)
		assert.Equal(t, "Burial Vault $900 installed", lines[0].Text)
		assert.Equal(t, []string{"$900"}, lines[0].Prices)
	})

	t.Run("skips short lines", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, pcpdf.ExtractStandardLines("Urn $30\n"))
	})

	t.Run("skips technical noise", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, pcpdf.ExtractStandardLines(`{"price-widget": "550" } margin-top 550`))
	})
}

func TestMineLines(t *testing.T) {
	t.Parallel()

	t.Run("general price list document yields labeled price lines", func(t *testing.T) {
		t.Parallel()

		text := "SMITH FUNERAL HOME\nGENERAL PRICE LIST\nDirect Cremation    795\n"
		require.True(t, pcpdf.DetectGPL(text))

		lines := pcpdf.MineLines(text, true)

		texts := lineTexts(lines)
		assert.Contains(t, texts, "Direct Cremation: $795")
	})

	t.Run("deduplicates identical rendered lines", func(t *testing.T) {
		t.Parallel()

		text := "Urn Selection    300\nUrn Selection    300\n"

		lines := pcpdf.MineLines(text, true)

		count := 0
		for _, l := range lines {
			if l.Text == "Urn Selection: $300" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("standard pass still runs without the GPL flag", func(t *testing.T) {
		t.Parallel()

		lines := pcpdf.MineLines("Burial Vault $900 installed\n", false)

		require.Len(t, lines, 1)
		assert.Equal(t, "Burial Vault $900 installed", lines[0].Text)
	})
}

func TestLineHash(t *testing.T) {
	t.Parallel()

	h := pcpdf.LineHash("Direct Cremation: $795")

	assert.Len(t, h, 16)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{16}$`), h)
	assert.NotEqual(t, h, pcpdf.LineHash("Direct Cremation: $796"))
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	t.Run("same leading text collapses regardless of tail", func(t *testing.T) {
		t.Parallel()

		lead := strings.Repeat("General Price List line. ", 50) // > 1000 chars
		a := pcpdf.Fingerprint(lead + "tail one")
		b := pcpdf.Fingerprint(lead + "completely different tail")

		assert.Equal(t, a, b)
	})

	t.Run("different leading text differs", func(t *testing.T) {
		t.Parallel()

		assert.NotEqual(t, pcpdf.Fingerprint("list A $100"), pcpdf.Fingerprint("list B $200"))
	})
}

func lineTexts(lines []pricecrawl.PriceLine) []string {
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	return texts
}
