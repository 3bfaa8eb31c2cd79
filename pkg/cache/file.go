package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/wb-catalog-client/pkg/catalog"
	"github.com/Sternrassler/wb-catalog-client/pkg/logging"
)

// FileStore keeps the whole entry map in memory and rewrites a single JSON
// file in full on every Put. Simplicity over write amplification: the
// expected catalog size is small. Not safe for concurrent multi-process
// writers; the last full-map write wins.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu      sync.Mutex
	entries map[string]*Entry
}

// NewFileStore loads the persisted map from path. A missing or unreadable
// file is not an error: the store starts empty and logs the cause.
func NewFileStore(path string) *FileStore {
	s := &FileStore{
		path:    path,
		logger:  logging.NewLogger("file-cache"),
		entries: make(map[string]*Entry),
	}
	s.load()
	return s
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Cache file unreadable, starting empty")
		}
		return
	}

	var entries map[string]*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Cache file corrupted, starting empty")
		return
	}
	s.entries = entries
	s.logger.Debug().Int("entries", len(entries)).Str("path", s.path).Msg("Cache loaded")
}

// Get returns the entry for id if it exists and is fresh.
func (s *FileStore) Get(ctx context.Context, id string) (*Entry, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	s.mu.Unlock()

	if !ok {
		CacheMisses.WithLabelValues("file").Inc()
		return nil, ErrCacheMiss
	}
	if !entry.Fresh(time.Now()) {
		// Kept on disk; the next Put overwrites it.
		CacheStale.WithLabelValues("file").Inc()
		return nil, ErrCacheMiss
	}
	CacheHits.WithLabelValues("file").Inc()
	return entry, nil
}

// Put overwrites the entry for id, stamps the current time and persists
// the entire map synchronously.
func (s *FileStore) Put(ctx context.Context, id string, detail catalog.ProductDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = &Entry{Product: detail, UpdatedAt: time.Now()}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		CacheErrors.WithLabelValues("file", "put").Inc()
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		CacheErrors.WithLabelValues("file", "put").Inc()
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// Len returns the number of entries currently held, fresh or stale.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
