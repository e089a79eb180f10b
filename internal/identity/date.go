package identity

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reLongDate = regexp.MustCompile(`(?i)(\d{1,2})\s+(Januari|Februari|Maret|April|Mei|Juni|Juli|Agustus|September|Oktober|November|Desember)\s+(\d{4})`)
	reDMY      = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	reYMD      = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
)

var monthNames = []string{
	"januari", "februari", "maret", "april", "mei", "juni",
	"juli", "agustus", "september", "oktober", "november", "desember",
}

// MonthOrdinal maps an Indonesian month name to its number, or 0.
func MonthOrdinal(name string) time.Month {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, m := range monthNames {
		if m == name {
			return time.Month(i + 1)
		}
	}
	return 0
}

// MonthName returns the Indonesian name of m, capitalized.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	n := monthNames[m-1]
	return strings.ToUpper(n[:1]) + n[1:]
}

// DateStrategy produces a date or reports nothing found.
type DateStrategy struct {
	Name string
	Find func(text string) (time.Time, bool)
}

// DateStrategies run in order; each is tried only if the previous found nothing.
var DateStrategies = []DateStrategy{
	{Name: "long_form", Find: longFormDate},
	{Name: "day_month_year", Find: dayMonthYear},
	{Name: "year_month_day", Find: yearMonthDay},
}

// Date returns the transaction date and the strategy that found it.
func Date(text string) (time.Time, string, bool) {
	for _, s := range DateStrategies {
		if d, ok := s.Find(text); ok {
			return d, s.Name, true
		}
	}
	return time.Time{}, "", false
}

// longFormDate takes the last "D Bulan YYYY" match; the signature date sits near the end.
func longFormDate(text string) (time.Time, bool) {
	matches := reLongDate.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return time.Time{}, false
	}
	m := matches[len(matches)-1]
	return civil(m[3], strconv.Itoa(int(MonthOrdinal(m[2]))), m[1])
}

func dayMonthYear(text string) (time.Time, bool) {
	m := reDMY.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return civil(m[3], m[2], m[1])
}

func yearMonthDay(text string) (time.Time, bool) {
	m := reYMD.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return civil(m[1], m[2], m[3])
}

// civil builds a UTC date, rejecting values time.Date would normalize.
func civil(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	mo, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil || mo < 1 || mo > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return time.Time{}, false
	}
	return t, true
}
