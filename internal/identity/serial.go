// Package identity finds the faktur serial number and its transaction date.
package identity

import (
	"regexp"
	"strings"
)

var (
	reTolerantSerial = regexp.MustCompile(`(?i)0[0-9a-z]{2}[-.\s]?[0-9a-z]{3}[-.\s]?[0-9a-z]{2}[-.\s]?[0-9a-z]{8,}`)
	reStrictSerial   = regexp.MustCompile(`\d{3}[.\s]?\d{3}[-.\s]?\d{2}[.\s]?\d{8}`)
	reNonDigit       = regexp.MustCompile(`\D`)
	reSpaces         = regexp.MustCompile(`\s+`)
)

// letters OCR commonly reads in place of digits
var confusions = strings.NewReplacer(
	"O", "0", "o", "0",
	"I", "1", "i", "1", "l", "1", "t", "1",
	"S", "5", "s", "5",
	"E", "6", "e", "6",
	"B", "8",
	"g", "9",
)

const (
	minSerialDigits = 14
	maxSerialDigits = 16
)

// SerialStrategy produces a formatted serial or "".
type SerialStrategy struct {
	Name string
	Find func(text string) string
}

// SerialStrategies run in order; the first non-empty result wins.
var SerialStrategies = []SerialStrategy{
	{Name: "tolerant", Find: tolerantSerial},
	{Name: "strict", Find: strictSerial},
}

// Serial returns the formatted serial and the strategy that found it.
func Serial(text string) (serial, source string) {
	for _, s := range SerialStrategies {
		if v := s.Find(text); v != "" {
			return v, s.Name
		}
	}
	return "", ""
}

// tolerantSerial accepts letters where digits belong, skipping candidates on
// NPWP/NITKU lines, and repairs them with the confusion map.
func tolerantSerial(text string) string {
	for _, loc := range reTolerantSerial.FindAllStringIndex(text, -1) {
		if onTaxIDLine(text, loc[0]) {
			continue
		}
		digits := reNonDigit.ReplaceAllString(confusions.Replace(text[loc[0]:loc[1]]), "")
		if v, ok := formatSerial(digits); ok {
			return v
		}
	}
	return ""
}

// strictSerial matches all-digit 3-3-2-8 groups and keeps the longest match.
func strictSerial(text string) string {
	text = strings.ReplaceAll(text, ",", ".")
	best := ""
	for _, m := range reStrictSerial.FindAllString(text, -1) {
		m = reSpaces.ReplaceAllString(m, "")
		if len(m) > len(best) {
			best = m
		}
	}
	if best == "" {
		return ""
	}
	v, _ := formatSerial(reNonDigit.ReplaceAllString(best, ""))
	return v
}

// formatSerial lays out 14 to 16 digits as XXX.XXX-XX.XXXXXXXX.
func formatSerial(digits string) (string, bool) {
	if len(digits) > maxSerialDigits {
		digits = digits[:maxSerialDigits]
	}
	if len(digits) < minSerialDigits {
		return "", false
	}
	return digits[:3] + "." + digits[3:6] + "-" + digits[6:8] + "." + digits[8:], true
}

func onTaxIDLine(text string, offset int) bool {
	start := strings.LastIndex(text[:offset], "\n") + 1
	end := strings.Index(text[offset:], "\n")
	if end < 0 {
		end = len(text)
	} else {
		end += offset
	}
	line := strings.ToLower(text[start:end])
	return strings.Contains(line, "npwp") || strings.Contains(line, "nitku")
}
