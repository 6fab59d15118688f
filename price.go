package pricecrawl

import (
	"regexp"
	"sort"
	"strings"
)

// pricePatterns are tried in order against the whole text; matches accumulate
// pattern-major, so earlier patterns take precedence in the result ordering.
var pricePatterns = []*regexp.Regexp{
	// Standard formats.
	regexp.MustCompile(`(?i)\$\s*\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`),
	regexp.MustCompile(`(?i)\$\s*\d+(?:\.\d{1,2})?`),
	regexp.MustCompile(`(?i)USD\s*\$?\s*\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`),
	regexp.MustCompile(`(?i)\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?\s*USD`),
	regexp.MustCompile(`(?i)Price:?\s*\$?\s*\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`),
	regexp.MustCompile(`(?i)Cost:?\s*\$?\s*\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?`),
	regexp.MustCompile(`(?i)\b\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?\s*dollars?\b`),
}

// bareAmount matches a whitespace-delimited token that is nothing but a
// grouped decimal amount, the shape bare prices take in tabular price lists.
// Over-recall (years, quantities) is accepted; downstream layers tolerate it.
var bareAmount = regexp.MustCompile(`^\d{1,3}(?:,\d{3})*(?:\.\d{2})?$`)

var nonPriceChar = regexp.MustCompile(`[^\d$.,]`)

// FindPrices extracts price expressions from text, normalized and
// deduplicated preserving first occurrence. Every returned price starts with
// "$" and contains at least one digit.
func FindPrices(text string) []string {
	if text == "" {
		return nil
	}

	var matches []string
	for _, re := range pricePatterns {
		matches = append(matches, re.FindAllString(text, -1)...)
	}

	// Bare amounts in table-like positional context: whole tokens only.
	for _, tok := range strings.Fields(text) {
		if bareAmount.MatchString(tok) {
			matches = append(matches, tok)
		}
	}

	var prices []string
	seen := make(map[string]struct{}, len(matches))
	for _, raw := range matches {
		price, ok := NormalizePrice(raw)
		if !ok {
			continue
		}
		if _, dup := seen[price]; dup {
			continue
		}
		seen[price] = struct{}{}
		prices = append(prices, price)
	}
	return prices
}

// NormalizePrice reduces a raw price match to canonical form: every character
// except digits, "$", "." and "," is stripped, and a "$" prefix is added if
// missing. Returns false if nothing recognizable as an amount remains.
func NormalizePrice(raw string) (string, bool) {
	cleaned := nonPriceChar.ReplaceAllString(strings.TrimSpace(raw), "")
	if !strings.ContainsAny(cleaned, "0123456789") {
		return "", false
	}
	if !strings.HasPrefix(cleaned, "$") {
		cleaned = "$" + cleaned
	}
	return cleaned, true
}

// PriceSignature derives the page-level duplicate signature: prices sorted
// and joined so that pages listing the same set of prices collapse to one.
func PriceSignature(prices []string) string {
	sorted := make([]string, len(prices))
	copy(sorted, prices)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
