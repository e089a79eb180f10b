package amounts

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/faktur-tracker/internal/normalize"
)

var (
	reLargeAmount = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3}){2,}`)
	reTotalPPN    = regexp.MustCompile(`(?i)Total\s*PPN\s*[:\-]?\s*(\d(?:[\d.,]*\d)?)`)
	reTaxBase     = regexp.MustCompile(`(?i)dasar\s+pengenaan\s+pajak`)
	reGrossLabel  = regexp.MustCompile(`(?i)harga\s+jual|penggantian`)
)

// words marking legal citations such as "PPN ... Pasal 16D UU"
var legalWords = []string{"pasal", "uu", "keterangan"}

const minGrossTokenLen = 7

// anchorTaxBase reads the last number on the first "dasar pengenaan pajak" line that has one.
func anchorTaxBase(lines []string) (decimal.Decimal, bool) {
	for _, line := range lines {
		if !reTaxBase.MatchString(line) {
			continue
		}
		tokens := normalize.NumberTokens(line)
		if len(tokens) == 0 {
			continue
		}
		return normalize.ParseAmount(tokens[len(tokens)-1])
	}
	return decimal.Zero, false
}

// largeAmounts returns every grouped-by-3 number above floor, in text order.
func largeAmounts(text string, floor decimal.Decimal) []decimal.Decimal {
	var out []decimal.Decimal
	for _, m := range reLargeAmount.FindAllString(text, -1) {
		if v, ok := normalize.ParseAmount(m); ok && v.GreaterThan(floor) {
			out = append(out, v)
		}
	}
	return out
}

func maxOf(values []decimal.Decimal) (decimal.Decimal, bool) {
	if len(values) == 0 {
		return decimal.Zero, false
	}
	return decimal.Max(values[0], values[1:]...), true
}

func totalPPN(text string) (decimal.Decimal, bool) {
	m := reTotalPPN.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, false
	}
	return normalize.ParseAmount(m[1])
}

// ppnLine reads the first number on the first plain "ppn" line carrying one,
// skipping PPnBM lines and legal citations.
func ppnLine(lines []string) (decimal.Decimal, bool) {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "ppn") || strings.Contains(lower, "ppnbm") || containsAny(lower, legalWords) {
			continue
		}
		tokens := normalize.NumberTokens(line)
		if len(tokens) == 0 {
			continue
		}
		v, ok := normalize.ParseAmount(tokens[0])
		if !ok {
			continue
		}
		return v.RoundBank(0), true
	}
	return decimal.Zero, false
}

// sellingPrice reads the gross amount from the last "harga jual"/"penggantian" line.
func sellingPrice(lines []string) (decimal.Decimal, bool) {
	var gross decimal.Decimal
	found := false
	for _, line := range lines {
		if !reGrossLabel.MatchString(line) {
			continue
		}
		tokens := normalize.NumberTokens(line)
		if len(tokens) == 0 {
			continue
		}
		if v, ok := normalize.ParseAmount(tokens[0]); ok {
			gross, found = v, true
		}
	}
	return gross, found
}

// maxLongNumber is the largest number written with at least seven characters.
func maxLongNumber(lines []string) (decimal.Decimal, bool) {
	var values []decimal.Decimal
	for _, line := range lines {
		for _, tok := range normalize.NumberTokens(line) {
			if len(tok) < minGrossTokenLen {
				continue
			}
			if v, ok := normalize.ParseAmount(tok); ok {
				values = append(values, v)
			}
		}
	}
	return maxOf(values)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
