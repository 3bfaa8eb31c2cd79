package cache

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Sternrassler/wb-catalog-client/pkg/catalog"
)

func testDetail(id, name string) catalog.ProductDetail {
	return catalog.ProductDetail{
		ProductSummary: catalog.ProductSummary{
			ID:        id,
			Name:      name,
			Brand:     "Acme",
			Price:     5000,
			SalePrice: 4000,
		},
		Category:  "Пиджаки",
		Sizes:     []string{"S", "M"},
		Available: true,
	}
}

func TestFileStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))

	if err := store.Put(ctx, "42", testDetail("42", "Пиджак")); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	entry, err := store.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if entry.Product.Name != "Пиджак" {
		t.Errorf("Name = %q, want Пиджак", entry.Product.Name)
	}
	if time.Since(entry.UpdatedAt) > time.Minute {
		t.Errorf("UpdatedAt = %v, want recent", entry.UpdatedAt)
	}
}

func TestFileStore_UnknownIDIsMiss(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get error = %v, want ErrCacheMiss", err)
	}
}

func TestFileStore_StaleEntryReadsAsMissButStays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	stale := map[string]*Entry{
		"42": {Product: testDetail("42", "Пиджак"), UpdatedAt: time.Now().Add(-25 * time.Hour)},
	}
	data, err := json.Marshal(stale)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)

	if _, err := store.Get(context.Background(), "42"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get error = %v, want ErrCacheMiss for stale entry", err)
	}
	// Staleness forces a refetch, not a purge.
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want stale entry kept", store.Len())
	}
}

func TestFileStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFileStore(path)
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after corrupt load", store.Len())
	}

	// The store must remain writable.
	if err := store.Put(context.Background(), "1", testDetail("1", "Ok")); err != nil {
		t.Errorf("Put after corrupt load: %v", err)
	}
}

func TestFileStore_OverwriteOnPut(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "cache.json"))

	if err := store.Put(ctx, "42", testDetail("42", "Старое имя")); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "42", testDetail("42", "Новое имя")); err != nil {
		t.Fatal(err)
	}

	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (overwrite, not duplicate)", store.Len())
	}
	entry, err := store.Get(ctx, "42")
	if err != nil {
		t.Fatal(err)
	}
	if entry.Product.Name != "Новое имя" {
		t.Errorf("Name = %q, want overwritten value", entry.Product.Name)
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")

	first := NewFileStore(path)
	if err := first.Put(ctx, "42", testDetail("42", "Пиджак")); err != nil {
		t.Fatal(err)
	}

	second := NewFileStore(path)
	entry, err := second.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get after reload: %v", err)
	}
	if entry.Product.ID != "42" {
		t.Errorf("ID = %q, want 42", entry.Product.ID)
	}
}

func TestEntry_Fresh(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"new", 0, true},
		{"almost stale", FreshFor - time.Second, true},
		{"exactly at the window", FreshFor, false},
		{"old", 48 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{UpdatedAt: now.Add(-tt.age)}
			if got := e.Fresh(now); got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
		})
	}
}
