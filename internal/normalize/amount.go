package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reNonNumeric  = regexp.MustCompile(`[^\d,.\-]`)
	reNumberToken = regexp.MustCompile(`\d(?:[\d.,]*\d)?`)
)

// ParseAmount reads an Indonesian-formatted amount.
//
// With both ',' and '.' present, '.' groups thousands and ',' is the decimal
// mark. A lone '.' is a thousands separator. A lone ',' is the decimal mark.
// ok is false when nothing numeric could be read.
func ParseAmount(text string) (decimal.Decimal, bool) {
	s := reNonNumeric.ReplaceAllString(text, "")
	if s == "" {
		return decimal.Zero, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasDot:
		s = strings.ReplaceAll(s, ".", "")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Amount is ParseAmount with zero standing in for "not found".
func Amount(text string) decimal.Decimal {
	d, _ := ParseAmount(text)
	return d
}

// NumberTokens returns every digit run (with embedded separators) in s, in order.
func NumberTokens(s string) []string {
	return reNumberToken.FindAllString(s, -1)
}

// FormatRupiah renders d as "Rp 1.234.567,89".
func FormatRupiah(d decimal.Decimal) string {
	return "Rp " + FormatIDR(d)
}

// FormatIDR renders d with '.' thousands and ',' decimals, two places.
func FormatIDR(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := b.String() + "," + frac
	if neg {
		out = "-" + out
	}
	return out
}
