package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteCache(t *testing.T, ttl int) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(SQLiteConfig{Path: ":memory:", TTL: ttl})
	if err != nil {
		t.Fatalf("NewSQLiteCache failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := newTestSQLiteCache(t, 0)

	if err := c.Set(ctx, "h:eng:rus", "Привет"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if val, ok := c.Get(ctx, "h:eng:rus"); !ok || val != "Привет" {
		t.Errorf("Get() = %q, %v", val, ok)
	}
	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("expected miss")
	}

	// Upsert replaces the value.
	if err := c.Set(ctx, "h:eng:rus", "Здравствуй"); err != nil {
		t.Fatal(err)
	}
	if val, _ := c.Get(ctx, "h:eng:rus"); val != "Здравствуй" {
		t.Errorf("Get() after overwrite = %q", val)
	}
	if n, err := c.Len(ctx); err != nil || n != 1 {
		t.Errorf("Len() = %d, %v; want 1", n, err)
	}
}

func TestSQLiteCache_TTLAndPrune(t *testing.T) {
	ctx := context.Background()
	c := newTestSQLiteCache(t, 60)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "old", "x")
	now = now.Add(45 * time.Second)
	_ = c.Set(ctx, "new", "y")
	now = now.Add(30 * time.Second)

	if _, ok := c.Get(ctx, "old"); ok {
		t.Error("old entry should be expired")
	}
	if val, ok := c.Get(ctx, "new"); !ok || val != "y" {
		t.Errorf("new entry = %q, %v", val, ok)
	}

	entries, err := c.Entries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries["new"] != "y" {
		t.Errorf("Entries() = %v", entries)
	}

	removed, err := c.Prune(ctx)
	if err != nil || removed != 1 {
		t.Errorf("Prune() = %d, %v; want 1", removed, err)
	}
	if n, _ := c.Len(ctx); n != 1 {
		t.Errorf("Len() after prune = %d, want 1", n)
	}
}

func TestSQLiteCache_PruneWithoutTTL(t *testing.T) {
	c := newTestSQLiteCache(t, 0)
	_ = c.Set(context.Background(), "k", "v")

	if removed, err := c.Prune(context.Background()); err != nil || removed != 0 {
		t.Errorf("Prune() = %d, %v; want 0", removed, err)
	}
}

func TestSQLiteCache_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "memory.db")

	c, err := NewSQLiteCache(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "k", "v")
	c.Close()

	reopened, err := NewSQLiteCache(SQLiteConfig{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if val, ok := reopened.Get(ctx, "k"); !ok || val != "v" {
		t.Errorf("value should persist across opens, got %q, %v", val, ok)
	}
}
