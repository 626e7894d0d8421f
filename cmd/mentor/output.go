package main

import (
	"encoding/json"
	"fmt"

	"github.com/untoldecay/mentor/internal/export"
	"github.com/untoldecay/mentor/internal/extractor"
	"github.com/untoldecay/mentor/internal/ui"
)

// outputJSON writes v as indented JSON. Persian text stays readable.
func (a *app) outputJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

// width is the render width for tables and markdown.
func (a *app) width() int {
	w := ui.GetWidth()
	if w > 120 {
		return 120
	}
	return w
}

// currency is the word printed after prices.
func (a *app) currency() string {
	if a.cfg != nil {
		if c := a.cfg.Currencies(); len(c) > 0 {
			return c[0]
		}
	}
	return extractor.DefaultCurrencies[0]
}

func (a *app) formatPrice(p int64) string {
	return export.FormatPrice(p) + " " + a.currency()
}
