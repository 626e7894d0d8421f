package memory

import (
	"context"
	"testing"
	"time"

	"github.com/untoldecay/mentor/internal/storage"
	"github.com/untoldecay/mentor/internal/storage/storagetest"
	"github.com/untoldecay/mentor/internal/types"
)

func TestContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		s := New()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestReturnedItemsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.UpsertMenuItem(ctx, &types.MenuItem{Name: "Kebab", Price: 1, UpdatedAt: storagetest.T0}); err != nil {
		t.Fatalf("UpsertMenuItem failed: %v", err)
	}
	got, err := s.GetMenuItem(ctx, "Kebab")
	if err != nil {
		t.Fatalf("GetMenuItem failed: %v", err)
	}
	got.Price = 999

	again, _ := s.GetMenuItem(ctx, "Kebab")
	if again.Price != 1 {
		t.Errorf("caller mutation leaked into store: price = %d", again.Price)
	}
}

func TestStoredTimestampIsTruncated(t *testing.T) {
	ctx := context.Background()
	s := New()

	at := storagetest.T0.Add(750 * time.Millisecond)
	if _, err := s.UpsertMenuItem(ctx, &types.MenuItem{Name: "Kebab", Price: 1, UpdatedAt: at}); err != nil {
		t.Fatalf("UpsertMenuItem failed: %v", err)
	}
	got, _ := s.GetMenuItem(ctx, "Kebab")
	if !got.UpdatedAt.Equal(storagetest.T0) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, storagetest.T0)
	}
}

func TestDeleteKeepsIndexConsistent(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, n := range []string{"A", "B", "C", "D"} {
		if _, err := s.UpsertMenuItem(ctx, &types.MenuItem{Name: n, Price: 1, UpdatedAt: storagetest.T0}); err != nil {
			t.Fatalf("UpsertMenuItem(%s) failed: %v", n, err)
		}
	}
	if err := s.DeleteMenuItem(ctx, "B"); err != nil {
		t.Fatalf("DeleteMenuItem failed: %v", err)
	}
	// C and D moved down a slot; updates must still land on the right rows.
	if out, err := s.UpsertMenuItem(ctx, &types.MenuItem{Name: "D", Price: 4, UpdatedAt: storagetest.T0.Add(time.Second)}); err != nil || out != storage.OutcomeReplaced {
		t.Fatalf("UpsertMenuItem(D) = %v, %v; want replaced", out, err)
	}

	items, err := storage.CollectMenuItems(ctx, s)
	if err != nil {
		t.Fatalf("ListMenuItems failed: %v", err)
	}
	want := []struct {
		name  string
		price int64
	}{{"A", 1}, {"C", 1}, {"D", 4}}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Name != w.name || items[i].Price != w.price {
			t.Errorf("items[%d] = %s/%d, want %s/%d", i, items[i].Name, items[i].Price, w.name, w.price)
		}
	}
}

func TestClosedStoreFails(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Close()

	if _, err := s.UpsertMenuItem(ctx, &types.MenuItem{Name: "Kebab", Price: 1, UpdatedAt: storagetest.T0}); err == nil {
		t.Error("expected error after Close")
	}
	if _, err := storage.CollectMenuItems(ctx, s); err == nil {
		t.Error("expected list error after Close")
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()
	if _, err := s.UpsertQA(ctx, &types.QAEntry{Question: "q", Answer: "a", UpdatedAt: storagetest.T0}); err == nil {
		t.Error("expected error for cancelled context")
	}
}
