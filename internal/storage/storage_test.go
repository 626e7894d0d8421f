// Package storage tests for interface compliance and contract verification.
package storage

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/untoldecay/mentor/internal/types"
)

// Compile-time interface conformance check.
// Real conformance tests for sqlite and memory are in their respective packages.
var _ Storage = (*mockStorage)(nil)

// mockStorage is a minimal mock for interface testing.
type mockStorage struct {
	items   []*types.MenuItem
	entries []*types.QAEntry
	listErr error
}

func (m *mockStorage) UpsertMenuItem(ctx context.Context, item *types.MenuItem) (Outcome, error) {
	return OutcomeInserted, nil
}
func (m *mockStorage) GetMenuItem(ctx context.Context, name string) (*types.MenuItem, error) {
	return nil, ErrNotFound
}
func (m *mockStorage) DeleteMenuItem(ctx context.Context, name string) error { return nil }
func (m *mockStorage) ListMenuItems(ctx context.Context) iter.Seq2[*types.MenuItem, error] {
	return func(yield func(*types.MenuItem, error) bool) {
		for _, item := range m.items {
			if !yield(item, nil) {
				return
			}
		}
		if m.listErr != nil {
			yield(nil, m.listErr)
		}
	}
}
func (m *mockStorage) CountMenuItems(ctx context.Context) (int, error) { return len(m.items), nil }
func (m *mockStorage) UpsertQA(ctx context.Context, entry *types.QAEntry) (Outcome, error) {
	return OutcomeInserted, nil
}
func (m *mockStorage) GetQA(ctx context.Context, question string) (*types.QAEntry, error) {
	return nil, ErrNotFound
}
func (m *mockStorage) DeleteQA(ctx context.Context, question string) error { return nil }
func (m *mockStorage) ListQA(ctx context.Context) iter.Seq2[*types.QAEntry, error] {
	return func(yield func(*types.QAEntry, error) bool) {
		for _, entry := range m.entries {
			if !yield(entry, nil) {
				return
			}
		}
		if m.listErr != nil {
			yield(nil, m.listErr)
		}
	}
}
func (m *mockStorage) CountQA(ctx context.Context) (int, error)                  { return len(m.entries), nil }
func (m *mockStorage) SetMetadata(ctx context.Context, key, value string) error { return nil }
func (m *mockStorage) GetMetadata(ctx context.Context, key string) (string, error) {
	return "", nil
}
func (m *mockStorage) Close() error  { return nil }
func (m *mockStorage) Path() string { return "mock" }

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o       Outcome
		want    string
		written bool
	}{
		{OutcomeInserted, "inserted", true},
		{OutcomeReplaced, "replaced", true},
		{OutcomeUnchanged, "unchanged", false},
		{Outcome(0), "unknown", false},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", tt.o, got, tt.want)
		}
		if got := tt.o.Written(); got != tt.written {
			t.Errorf("Outcome(%d).Written() = %v, want %v", tt.o, got, tt.written)
		}
	}
}

func TestCollectMenuItems(t *testing.T) {
	ctx := context.Background()
	m := &mockStorage{items: []*types.MenuItem{{Name: "Kebab"}, {Name: "Doogh"}}}

	items, err := CollectMenuItems(ctx, m)
	if err != nil {
		t.Fatalf("CollectMenuItems failed: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Kebab" || items[1].Name != "Doogh" {
		t.Errorf("unexpected items: %+v", items)
	}

	m.listErr = errors.New("disk gone")
	if _, err := CollectMenuItems(ctx, m); err == nil {
		t.Error("expected list error to propagate")
	}
}

func TestCollectQA(t *testing.T) {
	ctx := context.Background()
	m := &mockStorage{entries: []*types.QAEntry{{Question: "Parking?"}}}

	entries, err := CollectQA(ctx, m)
	if err != nil {
		t.Fatalf("CollectQA failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	m.listErr = errors.New("disk gone")
	if _, err := CollectQA(ctx, m); err == nil {
		t.Error("expected list error to propagate")
	}
}
