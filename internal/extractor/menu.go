package extractor

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/untoldecay/mentor/internal/types"
)

// MenuExtractor matches three-line groups:
//
//	Kebab
//	Grilled skewer
//	150,000 تومان
//
// The name and description lines are matched non-greedily so every group in
// a longer text is captured on its own. The price line must hold only
// thousands-grouped digits (ASCII or Persian), one space and a currency
// word. A blank line anywhere inside a group breaks that group.
type MenuExtractor struct {
	pattern    *regexp.Regexp
	currencies []string
}

// NewMenuExtractor builds the grammar for the given currency words, falling
// back to DefaultCurrencies when none are given.
func NewMenuExtractor(currencies ...string) (*MenuExtractor, error) {
	if len(currencies) == 0 {
		currencies = DefaultCurrencies
	}
	quoted := make([]string, 0, len(currencies))
	for _, c := range currencies {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("currency word must not be empty")
		}
		if strings.ContainsAny(c, "\r\n") {
			return nil, fmt.Errorf("currency word %q spans lines", c)
		}
		quoted = append(quoted, regexp.QuoteMeta(c))
	}

	d := types.PriceDigit
	expr := `(?m)^(.+?)\n(.+?)\n(` + d + `{1,3}(?:,` + d + `{3})*) (?:` + strings.Join(quoted, "|") + `)$`
	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile menu grammar: %w", err)
	}

	return &MenuExtractor{
		pattern:    pattern,
		currencies: append([]string(nil), currencies...),
	}, nil
}

// MustMenuExtractor is NewMenuExtractor for fixed, known-good currency words.
func MustMenuExtractor(currencies ...string) *MenuExtractor {
	m, err := NewMenuExtractor(currencies...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *MenuExtractor) Name() string {
	return "menu"
}

// Currencies returns the currency words the grammar accepts.
func (m *MenuExtractor) Currencies() []string {
	return append([]string(nil), m.currencies...)
}

// Extract yields one candidate per well-formed group, lazily.
func (m *MenuExtractor) Extract(text string) iter.Seq[types.Candidate] {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	return func(yield func(types.Candidate) bool) {
		offset := 0
		for offset < len(text) {
			loc := m.pattern.FindStringSubmatchIndex(text[offset:])
			if loc == nil {
				return
			}
			start, end := offset+loc[0], offset+loc[1]
			name := text[offset+loc[2] : offset+loc[3]]
			desc := text[offset+loc[4] : offset+loc[5]]
			rawPrice := text[offset+loc[6] : offset+loc[7]]
			offset = end

			price, ok := normalizePrice(rawPrice)
			if !ok {
				continue
			}
			c := types.Candidate{
				Name:        strings.TrimSpace(name),
				Description: strings.TrimSpace(desc),
				Price:       price,
				Line:        strings.Count(text[:start], "\n") + 1,
			}
			if !yield(c) {
				return
			}
		}
	}
}

// normalizePrice strips grouping separators and folds Persian digits to
// ASCII. Values beyond int64 are rejected.
func normalizePrice(raw string) (int64, bool) {
	n, err := strconv.ParseInt(types.NormalizeDigits(strings.ReplaceAll(raw, ",", "")), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
