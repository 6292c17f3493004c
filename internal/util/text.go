package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var reSpaces = regexp.MustCompile(`\s+`)

// NormalizeCell trims a cell value, folds runs of whitespace and composes it to
// NFC so Hebrew text typed with combining marks compares equal.
func NormalizeCell(input string) string {
	s := strings.ReplaceAll(input, "\u00A0", " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeColumn is NormalizeCell for header names; lookups are case-insensitive.
func NormalizeColumn(input string) string {
	return strings.ToLower(NormalizeCell(input))
}

// IsDigits reports whether s is a non-empty run of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func StringPtr(v string) *string { return &v }

func FloatPtr(v float64) *float64 { return &v }

func IntPtr(v int) *int { return &v }
