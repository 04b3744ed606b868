package cache

import (
	"context"
	"path/filepath"
	"testing"

	"laxyguide/pkg/db"
)

func TestSQLiteCache_RoundTrip(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("db init failed: %v", err)
	}
	defer d.Close()

	c := NewSQLiteCache(d)
	ctx := context.Background()

	if _, hit := c.GetCache(ctx, "missing"); hit {
		t.Error("expected miss for unknown key")
	}

	if err := c.SetCache(ctx, "tour/T1/index.json", []byte(`{"title":"Old Town"}`)); err != nil {
		t.Fatalf("SetCache failed: %v", err)
	}
	val, hit := c.GetCache(ctx, "tour/T1/index.json")
	if !hit {
		t.Fatal("expected hit")
	}
	if string(val) != `{"title":"Old Town"}` {
		t.Errorf("unexpected value: %s", val)
	}

	// overwrite
	if err := c.SetCache(ctx, "tour/T1/index.json", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	val, _ = c.GetCache(ctx, "tour/T1/index.json")
	if string(val) != "v2" {
		t.Errorf("expected overwrite, got %s", val)
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, hit := m.GetCache(ctx, "k"); hit {
		t.Error("expected miss")
	}
	if err := m.SetCache(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	val, hit := m.GetCache(ctx, "k")
	if !hit || string(val) != "v" {
		t.Errorf("expected hit with v, got %q/%v", val, hit)
	}
}
