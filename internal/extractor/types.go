// Package extractor recognizes menu entries in pasted free-form text.
package extractor

import (
	"iter"

	"github.com/untoldecay/mentor/internal/types"
)

// Extractor is the interface for candidate extraction strategies.
//
// Extract must be a pure function of text: the returned sequence can be
// ranged over any number of times and yields the same candidates, in input
// order, each time. No match is an empty sequence, never an error.
type Extractor interface {
	Extract(text string) iter.Seq[types.Candidate]
	Name() string
}

// DefaultCurrencies are the currency words accepted after a price.
var DefaultCurrencies = []string{"تومان", "Toman"}
