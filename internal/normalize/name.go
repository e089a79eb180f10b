package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// legal entity forms dropped before comparing company names
var legalSuffixes = map[string]struct{}{
	"PT":      {},
	"CV":      {},
	"TBK":     {},
	"PERSERO": {},
	"PERUM":   {},
	"UD":      {},
}

// Name canonicalizes a company name for fuzzy comparison. Never use it for display.
func Name(text string) string {
	if _, after, ok := strings.Cut(text, ":"); ok {
		text = after
	}
	text = strings.ToUpper(foldDiacritics(text))
	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, text)

	var kept []string
	for _, tok := range strings.Fields(text) {
		if _, ok := legalSuffixes[tok]; ok {
			continue
		}
		if utf8.RuneCountInString(tok) <= 2 {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
