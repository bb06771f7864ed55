// Package currency normalizes free-form cost input into the canonical
// numeric value stored in the vendors table and the display string shown
// on a vendor card.
package currency

import (
	"strconv"
	"strings"
)

// Sanitize is the while-typing transform: it strips everything except
// digits and the first decimal point. A second decimal point is discarded
// rather than treated as an error.
func Sanitize(raw string) string {
	var b strings.Builder
	seenPoint := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse converts a raw input string into the numeric value persisted as
// total_cost. Empty input, a lone decimal point, or anything unparseable
// commits to zero, never to an error.
func Parse(raw string) float64 {
	s := Sanitize(raw)
	if s == "" || s == "." {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Format is the commit-time transform: symbol, thousands separators and
// exactly two fractional digits. Formatting an already-formatted value
// yields the same value.
func Format(raw string) string {
	return FormatValue(Parse(raw))
}

// FormatValue renders a numeric cost as the display string, e.g.
// 1234.5 -> "$1,234.50".
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	intPart := s[:len(s)-3]
	fracPart := s[len(s)-3:] // includes the dot

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteString(fracPart)
	return b.String()
}
