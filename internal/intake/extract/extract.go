// Package extract pulls typed values out of free-text user messages.
// Absence is reported as a boolean, never as an error: malformed input is an
// expected outcome of a chat turn, not a failure.
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern = regexp.MustCompile(`\d+`)
	tcknPattern   = regexp.MustCompile(`\b\d{11}\b`)
)

var separatorReplacer = strings.NewReplacer(",", "", ".", "")

// Number finds the first number in the text. Thousands separators (both
// "4.000.000" and "4,000,000" styles) are stripped before matching, so a
// formatted amount is read as one value. Only the first match is used.
func Number(text string) (float64, bool) {
	cleaned := separatorReplacer.Replace(text)
	match := numberPattern.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// TCKN finds the first run of exactly 11 consecutive digits and returns it
// with leading zeros preserved. Longer digit runs do not match.
func TCKN(text string) (string, bool) {
	match := tcknPattern.FindString(text)
	if match == "" {
		return "", false
	}
	return match, true
}

// Text returns the trimmed input verbatim.
func Text(text string) string {
	return strings.TrimSpace(text)
}
