// Package storage defines the interface for menu and Q&A storage backends.
package storage

import (
	"context"
	"errors"
	"iter"

	"github.com/untoldecay/mentor/internal/types"
)

// ErrNotFound is returned by Get* methods when no record has the given key.
var ErrNotFound = errors.New("not found")

// Outcome reports what an upsert did.
type Outcome int

const (
	// OutcomeInserted means no record existed for the key.
	OutcomeInserted Outcome = iota + 1
	// OutcomeReplaced means the stored record was older and was overwritten.
	OutcomeReplaced
	// OutcomeUnchanged means the stored record was as new or newer and was kept.
	OutcomeUnchanged
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Written reports whether the upsert changed the store.
func (o Outcome) Written() bool {
	return o == OutcomeInserted || o == OutcomeReplaced
}

// MenuStore persists menu items keyed by name.
//
// # Conflict rule
//
// UpsertMenuItem compares item.UpdatedAt with the stored timestamp at one
// second resolution:
//
//   - no stored record: insert
//   - stored timestamp older: replace every field
//   - stored timestamp equal or newer: keep the stored record
//
// Each call is atomic on its own. Nothing wraps several calls in one
// transaction, so a failure part way through a batch leaves earlier writes in
// place.
type MenuStore interface {
	UpsertMenuItem(ctx context.Context, item *types.MenuItem) (Outcome, error)
	GetMenuItem(ctx context.Context, name string) (*types.MenuItem, error)
	DeleteMenuItem(ctx context.Context, name string) error
	// ListMenuItems streams every item in the backend's stable retrieval
	// order. A non-nil error is the last value yielded. Do not write to the
	// store while ranging over the sequence.
	ListMenuItems(ctx context.Context) iter.Seq2[*types.MenuItem, error]
	CountMenuItems(ctx context.Context) (int, error)
}

// QAStore persists Q&A entries keyed by question, with the same conflict
// rule as MenuStore.
type QAStore interface {
	UpsertQA(ctx context.Context, entry *types.QAEntry) (Outcome, error)
	GetQA(ctx context.Context, question string) (*types.QAEntry, error)
	DeleteQA(ctx context.Context, question string) error
	ListQA(ctx context.Context) iter.Seq2[*types.QAEntry, error]
	CountQA(ctx context.Context) (int, error)
}

// Storage is the full backend used by the importer and the CLI.
type Storage interface {
	MenuStore
	QAStore

	// Metadata (for internal state like the last import time)
	SetMetadata(ctx context.Context, key, value string) error
	GetMetadata(ctx context.Context, key string) (string, error)

	// Lifecycle
	Close() error

	// Path of the backing database, or a descriptive name for non-file backends.
	Path() string
}

// Metadata keys written by mentor itself.
const (
	MetaLastImportAt    = "last_import_at"
	MetaLastImportCount = "last_import_count"
)

// CollectMenuItems drains ListMenuItems into a slice.
func CollectMenuItems(ctx context.Context, s MenuStore) ([]*types.MenuItem, error) {
	var items []*types.MenuItem
	for item, err := range s.ListMenuItems(ctx) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// CollectQA drains ListQA into a slice.
func CollectQA(ctx context.Context, s QAStore) ([]*types.QAEntry, error) {
	var entries []*types.QAEntry
	for entry, err := range s.ListQA(ctx) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
