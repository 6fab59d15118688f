package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/pricecrawl/pricecrawl"
)

// gplTerms mark documents that advertise themselves as a general price list.
var gplTerms = []string{"GENERAL PRICE LIST", "GPL", "PRICE LIST", "FUNERAL PRICES"}

// DetectGPL reports whether the text declares itself a general price list.
func DetectGPL(text string) bool {
	upper := strings.ToUpper(text)
	for _, term := range gplTerms {
		if strings.Contains(upper, term) {
			return true
		}
	}
	return false
}

// gplLinePatterns capture the service/price layouts general price lists use:
// dot leaders, trailing dollar amounts, pipe-delimited tables, and
// space-aligned columns.
var gplLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^(.+?)\.{2,}\s*(\$?\s*[\d,]+(?:\.\d{2})?)\s*$`),
	regexp.MustCompile(`(?m)^(.+?)\s+(\$\s*[\d,]+(?:\.\d{2})?)\s*$`),
	regexp.MustCompile(`(?m)^([^|]+)\s*\|\s*.*?\|\s*(\$?\s*[\d,]+(?:\.\d{2})?)\s*$`),
	regexp.MustCompile(`(?m)^(.+?)\s{3,}(\$?\s*[\d,]+(?:\.\d{2})?)\s*$`),
}

// ExtractGPLLines pulls service/price pairs out of tabular price-list text,
// rendering each as "service: $price".
func ExtractGPLLines(text string) []pricecrawl.PriceLine {
	var lines []pricecrawl.PriceLine
	for _, re := range gplLinePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			service := strings.TrimSpace(m[1])
			price := strings.TrimSpace(m[2])
			if !strings.HasPrefix(price, "$") {
				price = "$" + price
			}
			lines = append(lines, pricecrawl.PriceLine{
				Text:   service + ": " + price,
				Prices: []string{price},
			})
		}
	}
	return lines
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExtractStandardLines keeps every line that is long enough, not technical
// noise, and carries at least one recognized price.
func ExtractStandardLines(text string) []pricecrawl.PriceLine {
	var lines []pricecrawl.PriceLine
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 10 {
			continue
		}
		prices := pricecrawl.FindPrices(line)
		if len(prices) == 0 {
			continue
		}
		clean := whitespaceRun.ReplaceAllString(line, " ")
		if pricecrawl.IsTechnicalNoise(head(clean, 100)) {
			continue
		}
		lines = append(lines, pricecrawl.PriceLine{Text: clean, Prices: prices})
	}
	return lines
}

// MineLines merges GPL-format and standard extraction. Lines deduplicate by
// content hash, first occurrence winning, so the GPL pass takes precedence.
func MineLines(text string, isGPL bool) []pricecrawl.PriceLine {
	var all []pricecrawl.PriceLine
	if isGPL {
		all = append(all, ExtractGPLLines(text)...)
	}
	all = append(all, ExtractStandardLines(text)...)

	seen := make(map[string]struct{}, len(all))
	var unique []pricecrawl.PriceLine
	for _, line := range all {
		h := LineHash(line.Text)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		unique = append(unique, line)
	}
	return unique
}

// LineHash returns the 16-hex-char hash used to deduplicate mined lines.
func LineHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// Fingerprint identifies PDF content by its leading extracted text, so the
// same document under different filenames collapses to one.
func Fingerprint(text string) string {
	runes := []rune(text)
	if len(runes) > 1000 {
		runes = runes[:1000]
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(string(runes)))
}

// head truncates at a rune boundary.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
