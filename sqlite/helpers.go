package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// parseRFC3339 parses an RFC3339 formatted timestamp string.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// formatNullableTime renders a timestamp column that may be unset; the zero
// time is stored as the empty string.
func formatNullableTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// parseNullableTime is the inverse of formatNullableTime.
func parseNullableTime(value, fieldName string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return parseRFC3339(value, fieldName)
}

// appendPagination appends LIMIT and OFFSET clauses to a query builder if values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// joinPrices packs a price slice into one column. Prices never contain "|":
// normalization strips everything but digits, "$", "." and ",".
func joinPrices(prices []string) string {
	return strings.Join(prices, "|")
}

// splitPrices unpacks a prices column.
func splitPrices(packed string) []string {
	if packed == "" {
		return nil
	}
	return strings.Split(packed, "|")
}
