// Package pdf extracts text and price lines from PDF documents.
//
// Two independent backends are tried in order: row-aware extraction, which
// preserves the tabular layout general price lists use, and plain-text
// extraction as a fallback. Both descend from rsc.io/pdf and can panic on
// malformed files, so every strategy call is isolated behind a recover.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	dslipak "github.com/dslipak/pdf"
	ledongthuc "github.com/ledongthuc/pdf"

	"github.com/pricecrawl/pricecrawl"
)

// Ensure Extractor implements pricecrawl.TextExtractor.
var _ pricecrawl.TextExtractor = (*Extractor)(nil)

// Strategy is one way of turning PDF bytes into text.
type Strategy func(data []byte) (string, error)

// minUsableChars is the threshold below which a strategy's output is treated
// as a miss and the next strategy replaces it.
const minUsableChars = 50

// Extractor implements pricecrawl.TextExtractor with an ordered strategy
// list.
type Extractor struct {
	Strategies []Strategy
}

// NewExtractor creates an Extractor with the default backends: rows first,
// plain text second.
func NewExtractor() *Extractor {
	return &Extractor{
		Strategies: []Strategy{ExtractRows, ExtractPlainText},
	}
}

// ExtractText runs the strategies in order. A result under minUsableChars
// hands over to the next strategy, which replaces it entirely. The final
// text must pass the readability gate; otherwise EINVALID is returned.
func (e *Extractor) ExtractText(data []byte) (string, error) {
	var text string
	for _, strategy := range e.Strategies {
		text = runStrategy(strategy, data)
		if len(strings.TrimSpace(text)) >= minUsableChars {
			break
		}
	}
	if strings.TrimSpace(text) == "" || !IsReadable(text) {
		return "", pricecrawl.Errorf(pricecrawl.EINVALID, "no readable text in PDF")
	}
	return text, nil
}

// runStrategy isolates backend panics; a panicking strategy yields nothing.
func runStrategy(strategy Strategy, data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()
	text, err := strategy(data)
	if err != nil {
		return ""
	}
	return text
}

// ExtractRows extracts text page by page, row by row, joining row fragments
// so table cells stay distinguishable. Encrypted documents get one
// decryption attempt with the empty password.
func ExtractRows(data []byte) (string, error) {
	r, err := ledongthuc.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), emptyPassword)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			if line := JoinRow(row.Content); line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// JoinRow merges the positioned fragments of one text row. Small gaps
// concatenate, word-sized gaps become spaces, and column-sized gaps become
// " | " separators so downstream line mining sees table structure.
func JoinRow(fragments []ledongthuc.Text) string {
	var b strings.Builder
	var prevEnd float64
	wrote := false
	for _, frag := range fragments {
		if frag.S == "" {
			continue
		}
		if wrote {
			size := frag.FontSize
			if size <= 0 {
				size = 10
			}
			switch gap := frag.X - prevEnd; {
			case gap > size*3:
				b.WriteString(" | ")
			case gap > size*0.25:
				b.WriteString(" ")
			}
		}
		b.WriteString(frag.S)
		prevEnd = frag.X + frag.W
		wrote = true
	}
	return strings.TrimSpace(b.String())
}

// ExtractPlainText extracts the undecorated text stream of the document.
func ExtractPlainText(data []byte) (string, error) {
	r, err := dslipak.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), emptyPassword)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, reader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return b.String(), nil
}

// emptyPassword makes the readers try an empty owner password once and give
// up rather than prompting.
func emptyPassword() string { return "" }

// IsReadable reports whether extracted text looks like real content rather
// than decoder garbage.
func IsReadable(text string) bool {
	if len(strings.TrimSpace(text)) < 5 {
		return false
	}
	if strings.ContainsRune(text, '\x00') {
		return false
	}
	var total, printable, replacements int
	for _, r := range text {
		total++
		if r == '�' {
			replacements++
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	if float64(replacements) > float64(total)*0.2 {
		return false
	}
	return float64(printable)/float64(total) > 0.6
}
