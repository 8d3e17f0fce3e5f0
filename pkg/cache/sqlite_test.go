package cache

import (
	"context"
	"errors"
	"testing"

	"docuchat/pkg/types"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	fp := testFingerprint("sql-doc-1")

	entry := NewEntry(fp, types.MethodOCR, []types.PageText{
		{Number: 1, Text: "page one"},
		{Number: 2, Failed: true},
	})
	if err := store.Store(ctx, fp, entry); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := store.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Method != types.MethodOCR || got.PageCount != 2 || !got.Pages[1].Failed {
		t.Fatalf("Lookup() = %+v, want stored entry", got)
	}
}

func TestSQLiteStoreMiss(t *testing.T) {
	store := newTestSQLiteStore(t)
	if _, err := store.Lookup(context.Background(), testFingerprint("absent")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreFirstWriteWins(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	fp := testFingerprint("sql-doc-2")

	first := NewEntry(fp, types.MethodDirect, []types.PageText{{Number: 1, Text: "original"}})
	second := NewEntry(fp, types.MethodDirect, []types.PageText{{Number: 1, Text: "replacement"}})

	if err := store.Store(ctx, fp, first); err != nil {
		t.Fatalf("first Store() error = %v", err)
	}
	if err := store.Store(ctx, fp, second); err != nil {
		t.Fatalf("second Store() error = %v", err)
	}

	got, err := store.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Pages[0].Text != "original" {
		t.Fatalf("INSERT OR IGNORE replaced a valid row, got %q", got.Pages[0].Text)
	}
}

func TestSQLiteStoreCorruptRowDeletedOnLookup(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	fp := testFingerprint("sql-doc-3")

	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO cache_entries (fingerprint, payload, method, page_count, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		fp, []byte("{broken"), "ocr", 1, "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("failed to plant corrupt row: %v", err)
	}

	if _, err := store.Lookup(ctx, fp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrNotFound for corrupt row", err)
	}

	// The corrupt row is gone, so a fresh store must succeed and be visible.
	entry := NewEntry(fp, types.MethodOCR, []types.PageText{{Number: 1, Text: "recovered"}})
	if err := store.Store(ctx, fp, entry); err != nil {
		t.Fatalf("Store() after corrupt lookup error = %v", err)
	}
	got, err := store.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Pages[0].Text != "recovered" {
		t.Fatal("re-extracted entry not stored after corrupt row deletion")
	}
}
