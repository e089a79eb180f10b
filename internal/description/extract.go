// Package description cleans the goods/services block of a faktur into one line.
package description

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
)

// Separator joins the surviving lines.
const Separator = " || "

var (
	reStart      = regexp.MustCompile(`(?i)Nama\s+Barang\s+Kena\s+Pajak`)
	reEnd        = regexp.MustCompile(`(?i)Dasar\s+Pengenaan\s+Pajak`)
	reDisallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s.,:;/\-()]`)
)

// literal OCR misreads seen on item lines, applied in order
var typos = []struct{ from, to string }{
	{"DECA R", "DECANTER"},
	{"DESAND YCLON", "DESANDING CYCLONE"},
	{"PESIFIKA -SUA", "SPESIFIKASI SESUAI"},
	{"MATERI Tera", "MATERIAL"},
	{"MATER INSTALASI", "MATERIAL INSTALASI"},
	{"ikurangi", "Dikurangi"},
}

// short fragments OCR leaves behind table borders and stamps
var noise = map[string]struct{}{
	"oh": {}, "ka": {}, "bah": {}, "iai": {}, "aa": {}, "tr": {}, "id": {}, "na": {},
	"in": {}, "5": {}, "2": {}, "3": {}, "4": {}, "es": {}, "po": {}, "sz": {},
}

// Block returns the text strictly between the item header and the DPP header.
func Block(text string) (string, bool) {
	start := reStart.FindStringIndex(text)
	if start == nil {
		return "", false
	}
	rest := text[start[1]:]
	end := reEnd.FindStringIndex(rest)
	if end == nil {
		return "", false
	}
	return rest[:end[0]], true
}

// Extract returns the cleaned item lines joined by Separator, or entity.NotFound.
func Extract(text string) string {
	block, ok := Block(text)
	if !ok {
		return entity.NotFound
	}

	seen := make(map[string]struct{})
	var out []string
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}

		if cleaned := CleanLine(line); cleaned != "" {
			out = append(out, cleaned)
		}
	}

	if len(out) == 0 {
		return entity.NotFound
	}
	return strings.Join(out, Separator)
}

// CleanLine strips disallowed characters, fixes known typos and drops noise tokens.
func CleanLine(line string) string {
	line = strings.TrimSpace(reDisallowed.ReplaceAllString(line, ""))
	for _, t := range typos {
		line = strings.ReplaceAll(line, t.from, t.to)
	}

	var kept []string
	for _, tok := range strings.Fields(line) {
		if _, ok := noise[strings.ToLower(tok)]; ok {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}
