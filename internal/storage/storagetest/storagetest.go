// Package storagetest holds the behavior every storage.Storage backend must
// share. Backends call Run from their own tests.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/types"
)

// Factory returns a fresh, empty store. The factory owns cleanup.
type Factory func(t *testing.T) storage.Storage

// T0 is the reference instant the suite builds timestamps from.
var T0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Run executes the whole contract against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("MenuRoundTrip", func(t *testing.T) { testMenuRoundTrip(t, newStore(t)) })
	t.Run("MenuNewerReplaces", func(t *testing.T) { testMenuNewerReplaces(t, newStore(t)) })
	t.Run("MenuOlderOrEqualKept", func(t *testing.T) { testMenuOlderOrEqualKept(t, newStore(t)) })
	t.Run("MenuOrderIndependent", func(t *testing.T) { testMenuOrderIndependent(t, newStore) })
	t.Run("MenuDelete", func(t *testing.T) { testMenuDelete(t, newStore(t)) })
	t.Run("MenuListStableOrder", func(t *testing.T) { testMenuListStableOrder(t, newStore(t)) })
	t.Run("MenuListStopsEarly", func(t *testing.T) { testMenuListStopsEarly(t, newStore(t)) })
	t.Run("MenuValidation", func(t *testing.T) { testMenuValidation(t, newStore(t)) })
	t.Run("QARoundTrip", func(t *testing.T) { testQARoundTrip(t, newStore(t)) })
	t.Run("QAConflictRule", func(t *testing.T) { testQAConflictRule(t, newStore(t)) })
	t.Run("QADelete", func(t *testing.T) { testQADelete(t, newStore(t)) })
	t.Run("Metadata", func(t *testing.T) { testMetadata(t, newStore(t)) })
}

func upsertMenu(t *testing.T, s storage.Storage, name string, price int64, desc string, at time.Time) storage.Outcome {
	t.Helper()
	out, err := s.UpsertMenuItem(context.Background(), &types.MenuItem{
		Name: name, Price: price, Description: desc, UpdatedAt: at,
	})
	if err != nil {
		t.Fatalf("UpsertMenuItem(%q) failed: %v", name, err)
	}
	return out
}

func getMenu(t *testing.T, s storage.Storage, name string) *types.MenuItem {
	t.Helper()
	item, err := s.GetMenuItem(context.Background(), name)
	if err != nil {
		t.Fatalf("GetMenuItem(%q) failed: %v", name, err)
	}
	return item
}

func listMenu(t *testing.T, s storage.Storage) []*types.MenuItem {
	t.Helper()
	items, err := storage.CollectMenuItems(context.Background(), s)
	if err != nil {
		t.Fatalf("ListMenuItems failed: %v", err)
	}
	return items
}

func assertItem(t *testing.T, got *types.MenuItem, name string, price int64, desc string, at time.Time) {
	t.Helper()
	if got.Name != name || got.Price != price || got.Description != desc {
		t.Errorf("item = {%q %d %q}, want {%q %d %q}", got.Name, got.Price, got.Description, name, price, desc)
	}
	if !got.UpdatedAt.Equal(at) {
		t.Errorf("item %q UpdatedAt = %v, want %v", name, got.UpdatedAt, at)
	}
}

func testMenuRoundTrip(t *testing.T, s storage.Storage) {
	if out := upsertMenu(t, s, "Kebab", 150000, "Grilled", T0); out != storage.OutcomeInserted {
		t.Fatalf("first upsert outcome = %v, want inserted", out)
	}

	items := listMenu(t, s)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	assertItem(t, items[0], "Kebab", 150000, "Grilled", T0)

	n, err := s.CountMenuItems(context.Background())
	if err != nil {
		t.Fatalf("CountMenuItems failed: %v", err)
	}
	if n != 1 {
		t.Errorf("CountMenuItems = %d, want 1", n)
	}
}

func testMenuNewerReplaces(t *testing.T, s storage.Storage) {
	upsertMenu(t, s, "Kebab", 150000, "Grilled", T0)

	if out := upsertMenu(t, s, "Kebab", 175000, "", T0.Add(time.Second)); out != storage.OutcomeReplaced {
		t.Fatalf("newer upsert outcome = %v, want replaced", out)
	}
	assertItem(t, getMenu(t, s, "Kebab"), "Kebab", 175000, "", T0.Add(time.Second))

	if got := len(listMenu(t, s)); got != 1 {
		t.Errorf("expected exactly one record for the key, got %d", got)
	}
}

func testMenuOlderOrEqualKept(t *testing.T, s storage.Storage) {
	upsertMenu(t, s, "Kebab", 150000, "Grilled", T0)

	if out := upsertMenu(t, s, "Kebab", 1, "equal", T0); out != storage.OutcomeUnchanged {
		t.Errorf("equal-timestamp upsert outcome = %v, want unchanged", out)
	}
	if out := upsertMenu(t, s, "Kebab", 2, "older", T0.Add(-time.Hour)); out != storage.OutcomeUnchanged {
		t.Errorf("older upsert outcome = %v, want unchanged", out)
	}
	// A newer instant inside the same second is indistinguishable once stored.
	if out := upsertMenu(t, s, "Kebab", 3, "same second", T0.Add(900*time.Millisecond)); out != storage.OutcomeUnchanged {
		t.Errorf("same-second upsert outcome = %v, want unchanged", out)
	}
	assertItem(t, getMenu(t, s, "Kebab"), "Kebab", 150000, "Grilled", T0)
}

func testMenuOrderIndependent(t *testing.T, newStore Factory) {
	t1, t2 := T0, T0.Add(time.Minute)

	forward := newStore(t)
	upsertMenu(t, forward, "Kebab", 100, "t1", t1)
	upsertMenu(t, forward, "Kebab", 200, "t2", t2)

	reverse := newStore(t)
	upsertMenu(t, reverse, "Kebab", 200, "t2", t2)
	upsertMenu(t, reverse, "Kebab", 100, "t1", t1)

	assertItem(t, getMenu(t, forward, "Kebab"), "Kebab", 200, "t2", t2)
	assertItem(t, getMenu(t, reverse, "Kebab"), "Kebab", 200, "t2", t2)
}

func testMenuDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	upsertMenu(t, s, "Kebab", 150000, "Grilled", T0)
	upsertMenu(t, s, "Doogh", 25000, "Yogurt drink", T0)

	if err := s.DeleteMenuItem(ctx, "Kebab"); err != nil {
		t.Fatalf("DeleteMenuItem failed: %v", err)
	}
	for _, item := range listMenu(t, s) {
		if item.Name == "Kebab" {
			t.Fatal("Kebab still listed after delete")
		}
	}
	if err := s.DeleteMenuItem(ctx, "Kebab"); err != nil {
		t.Errorf("second DeleteMenuItem should be a no-op, got %v", err)
	}
	if _, err := s.GetMenuItem(ctx, "Kebab"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetMenuItem after delete error = %v, want ErrNotFound", err)
	}

	// A deleted key starts over: any timestamp inserts again.
	if out := upsertMenu(t, s, "Kebab", 1, "back", T0.Add(-time.Hour)); out != storage.OutcomeInserted {
		t.Errorf("re-insert outcome = %v, want inserted", out)
	}
}

func testMenuListStableOrder(t *testing.T, s storage.Storage) {
	names := []string{"Kebab", "Doogh", "Ash", "Tahdig"}
	for _, n := range names {
		upsertMenu(t, s, n, 1, "", T0)
	}
	// Replacing an item must not move it.
	upsertMenu(t, s, "Doogh", 2, "", T0.Add(time.Second))

	first := listMenu(t, s)
	second := listMenu(t, s)
	if len(first) != len(names) {
		t.Fatalf("expected %d items, got %d", len(names), len(first))
	}
	for i := range first {
		if first[i].Name != names[i] {
			t.Errorf("position %d = %q, want %q", i, first[i].Name, names[i])
		}
		if first[i].Name != second[i].Name {
			t.Errorf("retrieval order changed between calls at %d", i)
		}
	}
}

func testMenuListStopsEarly(t *testing.T, s storage.Storage) {
	for _, n := range []string{"A", "B", "C"} {
		upsertMenu(t, s, n, 1, "", T0)
	}
	seen := 0
	for item, err := range s.ListMenuItems(context.Background()) {
		if err != nil {
			t.Fatalf("ListMenuItems failed: %v", err)
		}
		if item == nil {
			t.Fatal("nil item without error")
		}
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("saw %d items, want 2", seen)
	}
	// The store stays usable after an abandoned iteration.
	upsertMenu(t, s, "D", 1, "", T0)
}

func testMenuValidation(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	bad := []*types.MenuItem{
		{Name: "", Price: 1, UpdatedAt: T0},
		{Name: "Kebab", Price: -1, UpdatedAt: T0},
		{Name: "Kebab", Price: 1},
	}
	for _, item := range bad {
		_, err := s.UpsertMenuItem(ctx, item)
		var verr *types.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("UpsertMenuItem(%+v) error = %v, want ValidationError", item, err)
		}
	}
	if got := len(listMenu(t, s)); got != 0 {
		t.Errorf("invalid writes reached the store: %d items", got)
	}
}

func upsertQA(t *testing.T, s storage.Storage, q, a string, at time.Time) storage.Outcome {
	t.Helper()
	out, err := s.UpsertQA(context.Background(), &types.QAEntry{Question: q, Answer: a, UpdatedAt: at})
	if err != nil {
		t.Fatalf("UpsertQA(%q) failed: %v", q, err)
	}
	return out
}

func testQARoundTrip(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	upsertQA(t, s, "Do you deliver?", "Within 5 km.", T0)

	entries, err := storage.CollectQA(ctx, s)
	if err != nil {
		t.Fatalf("ListQA failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Question != "Do you deliver?" || e.Answer != "Within 5 km." || !e.UpdatedAt.Equal(T0) {
		t.Errorf("unexpected entry: %+v", e)
	}
	n, err := s.CountQA(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountQA = %d, %v; want 1, nil", n, err)
	}
}

func testQAConflictRule(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	q := "Opening hours?"
	if out := upsertQA(t, s, q, "12-23", T0); out != storage.OutcomeInserted {
		t.Errorf("outcome = %v, want inserted", out)
	}
	if out := upsertQA(t, s, q, "stale", T0); out != storage.OutcomeUnchanged {
		t.Errorf("outcome = %v, want unchanged", out)
	}
	if out := upsertQA(t, s, q, "11-23", T0.Add(time.Second)); out != storage.OutcomeReplaced {
		t.Errorf("outcome = %v, want replaced", out)
	}
	e, err := s.GetQA(ctx, q)
	if err != nil {
		t.Fatalf("GetQA failed: %v", err)
	}
	if e.Answer != "11-23" {
		t.Errorf("answer = %q, want 11-23", e.Answer)
	}

	_, err = s.UpsertQA(ctx, &types.QAEntry{Question: q, UpdatedAt: T0.Add(time.Hour)})
	var verr *types.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("empty answer error = %v, want ValidationError", err)
	}
}

func testQADelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	upsertQA(t, s, "Parking?", "Street only.", T0)

	if err := s.DeleteQA(ctx, "Parking?"); err != nil {
		t.Fatalf("DeleteQA failed: %v", err)
	}
	if err := s.DeleteQA(ctx, "Parking?"); err != nil {
		t.Errorf("second DeleteQA should be a no-op, got %v", err)
	}
	if _, err := s.GetQA(ctx, "Parking?"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetQA after delete error = %v, want ErrNotFound", err)
	}
}

func testMetadata(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	v, err := s.GetMetadata(ctx, "missing")
	if err != nil {
		t.Fatalf("GetMetadata(missing) failed: %v", err)
	}
	if v != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", v)
	}
	if err := s.SetMetadata(ctx, storage.MetaLastImportCount, "3"); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	if err := s.SetMetadata(ctx, storage.MetaLastImportCount, "4"); err != nil {
		t.Fatalf("SetMetadata overwrite failed: %v", err)
	}
	v, err = s.GetMetadata(ctx, storage.MetaLastImportCount)
	if err != nil || v != "4" {
		t.Errorf("GetMetadata = %q, %v; want 4, nil", v, err)
	}
}
