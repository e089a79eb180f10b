// Package buktisetor reads tax payment receipts: payment code, date and amount.
// Every page yields a slip; missing fields are left for manual entry.
package buktisetor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/faktur-tracker/internal/entity"
	"github.com/joseph-ayodele/faktur-tracker/internal/fuzzy"
)

var (
	reWordChar   = regexp.MustCompile(`\w`)
	reFuzzyDate  = regexp.MustCompile(`(?i)(\d{1,2})\s+([a-z]{3,})\s+(\d{4})`)
	reSlashDate  = regexp.MustCompile(`(\d{1,2})[-/ ](\d{1,2})[-/ ](\d{4})`)
	reMoney      = regexp.MustCompile(`[\d.,]*\d`)
	reCodeStrip  = regexp.MustCompile(`[\s.\-]`)
	reNonMoney   = regexp.MustCompile(`[^\d,.]`)
	minAmount    = decimal.NewFromInt(1000)
	monthCutoff  = 0.6
	minBlockSize = 3
)

// payment code patterns in priority order
var codePatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"rekening", regexp.MustCompile(`(?i)(rek|debet|debit)[\s\S]{0,25}?(\d[\d\s-]{8,}\d)`)},
	{"referensi", regexp.MustCompile(`(?i)(referensi)[\s\S]{0,15}?(\w+)`)},
	{"ntpn", regexp.MustCompile(`(?i)(ntpn)[\s\S]{0,15}?(\w{16})`)},
}

var amountKeywords = []string{"jumlah", "total", "amount", "nilai", "setor", "rp", "idr"}

// month spellings seen on bank receipts, including the old "nopember"
var months = func() []struct {
	name  string
	month time.Month
} {
	full := []string{"januari", "februari", "maret", "april", "mei", "juni",
		"juli", "agustus", "september", "oktober", "nopember", "desember"}
	var out []struct {
		name  string
		month time.Month
	}
	for i, n := range full {
		out = append(out, struct {
			name  string
			month time.Month
		}{n, time.Month(i + 1)})
	}
	out = append(out, struct {
		name  string
		month time.Month
	}{"november", time.November})
	for i, n := range full {
		out = append(out, struct {
			name  string
			month time.Month
		}{n[:3], time.Month(i + 1)})
	}
	return out
}()

// Extract reads a deposit slip from one page of OCR text.
func Extract(pageIndex int, text string) entity.DepositSlip {
	blocks := Blocks(text)
	slip := entity.DepositSlip{PageIndex: pageIndex, RawText: text}

	slip.PaymentCode, slip.PaymentCodeKind = PaymentCode(strings.Join(blocks, " "))
	if d, ok := Date(blocks); ok {
		slip.Date = &d
	}
	slip.Amount, slip.AmountFound = Amount(blocks)
	slip.NeedsManualEntry = slip.PaymentCode == "" || slip.Date == nil || !slip.AmountFound
	return slip
}

// Blocks keeps lowercased lines of at least three characters with a word character.
func Blocks(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) < minBlockSize || !reWordChar.MatchString(line) {
			continue
		}
		out = append(out, strings.ToLower(line))
	}
	return out
}

// PaymentCode returns the account number, bank reference or NTPN, whichever pattern hits first.
func PaymentCode(text string) (code, kind string) {
	for _, p := range codePatterns {
		if m := p.re.FindStringSubmatch(text); m != nil {
			return strings.ToUpper(reCodeStrip.ReplaceAllString(strings.TrimSpace(m[2]), "")), p.kind
		}
	}
	return "", ""
}

// Date returns the first block carrying a recognizable date.
func Date(blocks []string) (time.Time, bool) {
	for _, b := range blocks {
		if m := reFuzzyDate.FindStringSubmatch(b); m != nil {
			if month := MatchMonth(m[2]); month != 0 {
				if d, ok := civil(m[3], int(month), m[1]); ok {
					return d, true
				}
			}
		}
		if m := reSlashDate.FindStringSubmatch(b); m != nil {
			mo, _ := strconv.Atoi(m[2])
			if d, ok := civil(m[3], mo, m[1]); ok {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// MatchMonth picks the most similar month spelling above the cutoff, or 0.
func MatchMonth(word string) time.Month {
	word = strings.ToLower(word)
	best, bestScore := time.Month(0), monthCutoff
	for _, m := range months {
		if s := fuzzy.Similarity(word, m.name); s > bestScore {
			best, bestScore = m.month, s
		}
	}
	return best
}

// Amount is the largest money value on keyword lines, or anywhere when none qualify.
func Amount(blocks []string) (decimal.Decimal, bool) {
	var keyed []string
	for _, b := range blocks {
		for _, k := range amountKeywords {
			if strings.Contains(b, k) {
				keyed = append(keyed, b)
				break
			}
		}
	}
	if v, ok := maxMoney(keyed); ok {
		return v, true
	}
	return maxMoney(blocks)
}

func maxMoney(blocks []string) (decimal.Decimal, bool) {
	best, found := decimal.Zero, false
	for _, b := range blocks {
		for _, tok := range reMoney.FindAllString(b, -1) {
			v, ok := TransactionValue(tok)
			if ok && (!found || v.GreaterThan(best)) {
				best, found = v, true
			}
		}
	}
	return best, found
}

// TransactionValue reads a bank-printed amount. The rightmost separator is the
// decimal mark when both appear; a lone comma is decimal only with at most two
// digits after it. Values are truncated to whole rupiah and must exceed 1000.
func TransactionValue(s string) (decimal.Decimal, bool) {
	s = reNonMoney.ReplaceAllString(s, "")
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if len(s)-comma-1 <= 2 {
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	v = v.Truncate(0)
	if !v.GreaterThan(minAmount) {
		return decimal.Zero, false
	}
	return v, true
}

func civil(year string, month int, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	d, err2 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || month < 1 || month > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(month), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
