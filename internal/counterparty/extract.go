// Package counterparty pulls the other party's name and NPWP out of a seller or buyer block.
package counterparty

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

var (
	reNameLabel = regexp.MustCompile(`(?i)nama\s*:?`)
	reNonDigit  = regexp.MustCompile(`\D`)
)

// table headers mention the goods/services columns, never a party name
var headerWords = []string{"barang", "jasa", "pajak"}

const minNameLen = 5

// Extract scans block line by line. The first acceptable "nama" line wins for
// the name and the first "npwp" line with at least 15 digits wins for the tax ID.
func Extract(block string) entity.Counterparty {
	out := entity.Counterparty{Name: entity.NotFound, TaxID: entity.NotFound}

	for _, line := range strings.Split(block, "\n") {
		lower := strings.ToLower(line)

		if !out.NameFound && strings.Contains(lower, "nama") && !isHeader(lower) {
			if name, ok := nameFromLine(line); ok {
				out.Name = name
				out.NameFound = true
			}
		}

		if !out.TaxIDFound && strings.Contains(lower, "npwp") {
			if id, ok := FormatTaxID(line); ok {
				out.TaxID = id
				out.TaxIDFound = true
			}
		}
	}
	return out
}

// FormatTaxID strips non-digits and formats the first 15 as XX.XXX.XXX.X-XXX.XXX.
// Fewer than 15 digits is not a tax ID.
func FormatTaxID(s string) (string, bool) {
	d := reNonDigit.ReplaceAllString(s, "")
	if len(d) < 15 {
		return "", false
	}
	d = d[:15]
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "." + d[8:9] + "-" + d[9:12] + "." + d[12:15], true
}

func isHeader(lower string) bool {
	for _, w := range headerWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func nameFromLine(line string) (string, bool) {
	loc := reNameLabel.FindStringIndex(line)
	if loc == nil {
		return "", false
	}

	words := strings.Fields(line[loc[1]:])
	for len(words) > 0 && !isUpper(words[len(words)-1]) {
		words = words[:len(words)-1]
	}

	name := strings.Join(words, " ")
	if utf8.RuneCountInString(name) < minNameLen {
		return "", false
	}
	return name, true
}

// isUpper is true when s has at least one cased rune and none in lower case.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
