package mentor_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/untoldecay/mentor"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store, err := mentor.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if n, err := store.CountMenuItems(ctx); err != nil || n != 0 {
		t.Errorf("CountMenuItems = %d, %v", n, err)
	}
}

func TestParse(t *testing.T) {
	got, err := mentor.Parse("Kebab\nGrilled lamb\n150,000 تومان")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Kebab" || got[0].Price != 150000 {
		t.Fatalf("Parse = %+v", got)
	}

	got, err = mentor.Parse("Kebab\nGrilled lamb\n150000 تومان")
	if err != nil || len(got) != 0 {
		t.Errorf("ungrouped price: %+v, %v", got, err)
	}

	if _, err := mentor.Parse("x", ""); err == nil {
		t.Error("expected error for an empty currency word")
	}
}

func TestImportTextAndBatch(t *testing.T) {
	ctx := context.Background()
	for name, open := range map[string]func(t *testing.T) mentor.Storage{
		"memory": func(*testing.T) mentor.Storage { return mentor.OpenMemory() },
		"sqlite": func(t *testing.T) mentor.Storage {
			s, err := mentor.Open(ctx, mentor.MemoryPath)
			if err != nil {
				t.Fatal(err)
			}
			return s
		},
	} {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			defer store.Close()

			at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
			clock := func() time.Time { return at }

			res, err := mentor.ImportText(ctx, store, "Kebab\nGrilled lamb\n150,000 تومان\n", clock)
			if err != nil || res.Inserted != 1 {
				t.Fatalf("ImportText = %+v, %v", res, err)
			}
			if _, err := mentor.ImportText(ctx, store, " ", clock); !errors.Is(err, mentor.ErrEmptyInput) {
				t.Errorf("blank text err = %v", err)
			}

			older := func() time.Time { return at.Add(-time.Hour) }
			res, err = mentor.UpsertBatch(ctx, store, []mentor.Candidate{{Name: "Kebab", Price: 1}}, older)
			if err != nil || res.Unchanged != 1 {
				t.Fatalf("older batch = %+v, %v", res, err)
			}
			item, err := store.GetMenuItem(ctx, "Kebab")
			if err != nil || item.Price != 150000 {
				t.Errorf("GetMenuItem = %+v, %v", item, err)
			}
			if _, err := store.GetMenuItem(ctx, "Ash"); !errors.Is(err, mentor.ErrNotFound) {
				t.Errorf("missing item err = %v", err)
			}
		})
	}
}
