package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	thousandsDot   = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+$`)
	thousandsComma = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+$`)
	currencyMarks  = strings.NewReplacer("₪", "", "$", "", "€", "", "ILS", "", "ils", "", "ש\"ח", "", "ש״ח", "")
)

// ParseNumber coerces a spreadsheet cell to a float. It accepts thousand
// separators, decimal commas and a trailing or leading currency mark.
func ParseNumber(input string) (float64, bool) {
	token := strings.TrimSpace(strings.ReplaceAll(input, "\u00A0", " "))
	if token == "" {
		return 0, false
	}
	token = strings.TrimSpace(currencyMarks.Replace(token))
	token = normalizeNumericToken(token)
	if token == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if thousandsDot.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if thousandsComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
