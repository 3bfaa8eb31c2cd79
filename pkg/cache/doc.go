// Package cache persists product detail records keyed by product id.
//
// Two backends implement the same Store contract:
//
//   - FileStore: one JSON file, rewritten in full on every Put. The sole
//     source of truth across process restarts; a corrupt file initializes
//     to an empty store without failing the caller.
//   - RedisStore: for deployments that already run redis.
//
// Both apply the same lifecycle: an entry is fresh for 24 hours after its
// last write; a stale entry reads as a miss but is never purged, only
// overwritten by the next successful fetch. Two racing fetches for the same
// id can both miss and both write; the later write wins, which is benign
// because the cached value is decorative, not authoritative.
//
// # Basic Usage
//
//	store := cache.NewFileStore("product_cache.json")
//
//	entry, err := store.Get(ctx, "123456")
//	if err == cache.ErrCacheMiss {
//		// fetch from the upstream, then:
//		_ = store.Put(ctx, "123456", detail)
//	}
package cache
