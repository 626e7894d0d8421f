// Package mentor provides a minimal public API for programs that want to
// parse menu text or use mentor's store without going through the CLI.
//
// The store applies last-write-wins per key: a record replaces the stored
// one only when its UpdatedAt is later, at one second resolution.
package mentor

import (
	"context"
	"slices"

	"github.com/untoldecay/mentor/internal/extractor"
	"github.com/untoldecay/mentor/internal/importer"
	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/storage/memory"
	"github.com/untoldecay/mentor/internal/storage/sqlite"
	"github.com/untoldecay/mentor/internal/types"
)

// Storage is the interface for mentor storage operations
type Storage = storage.Storage

// Core types from internal/types
type (
	MenuItem        = types.MenuItem
	QAEntry         = types.QAEntry
	Candidate       = types.Candidate
	ValidationError = types.ValidationError
)

// Import types from internal/importer
type (
	Result     = importer.Result
	Rejection  = importer.Rejection
	BatchError = importer.BatchError
	Clock      = importer.Clock
)

// Outcome reports what a single upsert did.
type Outcome = storage.Outcome

const (
	OutcomeInserted  = storage.OutcomeInserted
	OutcomeReplaced  = storage.OutcomeReplaced
	OutcomeUnchanged = storage.OutcomeUnchanged
)

var (
	// ErrNotFound is returned by Storage getters for a missing key.
	ErrNotFound = storage.ErrNotFound
	// ErrEmptyInput is returned by ImportText for blank text.
	ErrEmptyInput = importer.ErrEmptyInput
)

// DefaultCurrencies are the currency words Parse accepts when given none.
var DefaultCurrencies = extractor.DefaultCurrencies

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = sqlite.MemoryPath

// Open opens (creating if needed) the SQLite database at path.
func Open(ctx context.Context, path string) (Storage, error) {
	store, err := sqlite.New(ctx, path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// OpenMemory returns an empty store that lives in the process only.
func OpenMemory() Storage {
	return memory.New()
}

// Parse extracts menu candidates from text in order of appearance. With no
// currencies DefaultCurrencies are used. Text without any well-formed group
// yields an empty slice.
func Parse(text string, currencies ...string) ([]Candidate, error) {
	ex, err := extractor.NewMenuExtractor(currencies...)
	if err != nil {
		return nil, err
	}
	out := []Candidate{}
	for c := range ex.Extract(text) {
		out = append(out, c)
	}
	return out, nil
}

// UpsertBatch stores candidates in order, each stamped with its own clock()
// reading. A nil clock is the wall clock in UTC.
func UpsertBatch(ctx context.Context, store Storage, candidates []Candidate, clock Clock) (*Result, error) {
	return importer.UpsertBatch(ctx, store, slices.Values(candidates), clock)
}

// ImportText parses text with the default currencies and stores every item
// found. Blank text returns ErrEmptyInput.
func ImportText(ctx context.Context, store Storage, text string, clock Clock) (*Result, error) {
	return importer.New(nil, store, importer.WithClock(clock)).ImportText(ctx, text)
}
