package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// setupTestRedis creates a test Redis client, skipping when no local
// redis is available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestRedisStore_PutGet(t *testing.T) {
	ctx := context.Background()
	store := NewRedisStore(setupTestRedis(t))

	if err := store.Put(ctx, "42", testDetail("42", "Пиджак")); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	entry, err := store.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if entry.Product.Name != "Пиджак" {
		t.Errorf("Name = %q", entry.Product.Name)
	}
}

func TestRedisStore_UnknownIDIsMiss(t *testing.T) {
	store := NewRedisStore(setupTestRedis(t))

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get error = %v, want ErrCacheMiss", err)
	}
}

func TestRedisStore_StaleEntryReadsAsMiss(t *testing.T) {
	ctx := context.Background()
	client := setupTestRedis(t)
	store := NewRedisStore(client)

	stale := Entry{Product: testDetail("42", "Пиджак"), UpdatedAt: time.Now().Add(-25 * time.Hour)}
	data, err := json.Marshal(&stale)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Set(ctx, "catalog:product:42", data, 0).Err(); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(ctx, "42"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get error = %v, want ErrCacheMiss for stale entry", err)
	}

	// Stale entries stay until overwritten.
	if exists, _ := client.Exists(ctx, "catalog:product:42").Result(); exists != 1 {
		t.Error("stale entry was deleted, want kept")
	}
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	client := setupTestRedis(t)
	store := NewRedisStore(client)

	if err := client.Set(ctx, "catalog:product:42", "{not json", 0).Err(); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(ctx, "42"); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Get error = %v, want ErrInvalidEntry", err)
	}
}

func TestNewRedisStore_NilClientPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewRedisStore(nil) did not panic")
		}
	}()
	NewRedisStore(nil)
}
