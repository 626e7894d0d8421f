package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ValidationError reports input rejected before it reaches a store.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PriceDigit is the character class of digits a price may be written in:
// ASCII, Extended Arabic-Indic (Persian) and Arabic-Indic.
const PriceDigit = `[0-9۰-۹٠-٩]`

var groupedPrice = regexp.MustCompile(`^` + PriceDigit + `{1,3}(?:,` + PriceDigit + `{3})+$`)

// NormalizeDigits rewrites Persian and Arabic-Indic digits as ASCII and
// leaves every other rune alone.
func NormalizeDigits(s string) string {
	out, _, err := transform.String(runes.Map(asciiDigit), s)
	if err != nil {
		return s
	}
	return out
}

func asciiDigit(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	}
	return r
}

// ParsePrice turns a typed price into whole currency units. Plain digits and
// comma-grouped thousands ("150,000", "۱۵۰,۰۰۰") are accepted; signs,
// decimals and anything else are rejected.
func ParsePrice(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "price", Reason: "is required"}
	}
	digits := s
	if strings.Contains(s, ",") {
		if !groupedPrice.MatchString(s) {
			return 0, &ValidationError{Field: "price", Value: s, Reason: "thousands must be grouped in threes"}
		}
		digits = strings.ReplaceAll(s, ",", "")
	}
	digits = NormalizeDigits(digits)
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, &ValidationError{Field: "price", Value: s, Reason: "must be a non-negative whole number"}
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: "price", Value: s, Reason: "is too large"}
	}
	return n, nil
}
