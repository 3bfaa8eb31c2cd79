package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Sternrassler/wb-catalog-client/pkg/catalog"
)

// FreshFor is the staleness window for cached product details. Entries
// older than this are treated as misses on read but stay in the store
// until the next Put overwrites them.
const FreshFor = 24 * time.Hour

var (
	// ErrCacheMiss indicates the id is unknown or its entry has gone stale.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the stored entry could not be decoded.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Entry is one cached product detail record.
type Entry struct {
	Product   catalog.ProductDetail `json:"product"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Fresh reports whether the entry is still within the staleness window.
func (e *Entry) Fresh(now time.Time) bool {
	return now.Sub(e.UpdatedAt) < FreshFor
}

// Store persists product detail entries keyed by product id.
//
// Get returns ErrCacheMiss both for unknown ids and for stale entries;
// staleness never deletes an entry, it only forces the caller to refetch
// and overwrite. Put stamps the current time and overwrites any existing
// entry for the id.
type Store interface {
	Get(ctx context.Context, id string) (*Entry, error)
	Put(ctx context.Context, id string, detail catalog.ProductDetail) error
}
