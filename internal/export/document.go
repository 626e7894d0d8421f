// Package export writes the stored menu and Q&A to files and reads them back
// for seeding.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/types"
)

// DocumentVersion is bumped when the structured layout changes.
const DocumentVersion = 1

// Document is everything an export carries.
type Document struct {
	Version    int              `json:"version" yaml:"version" toml:"version"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at" toml:"exported_at"`
	Menu       []types.MenuItem `json:"menu" yaml:"menu" toml:"menu"`
	QA         []types.QAEntry  `json:"qa" yaml:"qa" toml:"qa"`
}

// Load reads the whole store in retrieval order.
func Load(ctx context.Context, store storage.Storage, now time.Time) (*Document, error) {
	doc := &Document{
		Version:    DocumentVersion,
		ExportedAt: types.Truncate(now),
		Menu:       []types.MenuItem{},
		QA:         []types.QAEntry{},
	}

	for item, err := range store.ListMenuItems(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to read menu: %w", err)
		}
		doc.Menu = append(doc.Menu, *item)
	}
	for entry, err := range store.ListQA(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to read qa: %w", err)
		}
		doc.QA = append(doc.QA, *entry)
	}
	return doc, nil
}

// MenuItems returns pointers into doc.Menu for the importer.
func (d *Document) MenuItems() []*types.MenuItem {
	out := make([]*types.MenuItem, len(d.Menu))
	for i := range d.Menu {
		out[i] = &d.Menu[i]
	}
	return out
}

// QAEntries returns pointers into doc.QA for the importer.
func (d *Document) QAEntries() []*types.QAEntry {
	out := make([]*types.QAEntry, len(d.QA))
	for i := range d.QA {
		out[i] = &d.QA[i]
	}
	return out
}
