//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container and returns a client.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to ping Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(context.Background())
	}
	return client, cleanup
}

func TestRedisStore_Lifecycle_Integration(t *testing.T) {
	client, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRedisStore(client)

	// Miss before any write.
	if _, err := store.Get(ctx, "42"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get error = %v, want ErrCacheMiss", err)
	}

	// Write-through and fresh read.
	if err := store.Put(ctx, "42", testDetail("42", "Пиджак")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	entry, err := store.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !entry.Fresh(time.Now()) {
		t.Error("entry not fresh immediately after Put")
	}

	// Overwrite keeps a single entry per id.
	if err := store.Put(ctx, "42", testDetail("42", "Новое имя")); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	entry, err = store.Get(ctx, "42")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if entry.Product.Name != "Новое имя" {
		t.Errorf("Name = %q, want overwritten value", entry.Product.Name)
	}
}
