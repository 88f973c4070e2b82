// Package cache defines the store contract the hydrating layer is built on and
// the default ways of obtaining one.
//
// # Overview
//
//   - Store: a bounded, time-expiring key-value store safe for concurrent use
//   - KeySerializer: maps arbitrary cache keys onto store keys
//   - Config, NewStore, NewRedisStore: build the in-process or Redis backed stores
//
// A Store never interprets its values. Callers that put entity graphs in a
// store are expected to reduce them to plain data first; see the hydration
// and hydratingcache packages.
//
// # Basic Usage
//
//	store, err := cache.NewStore(cache.HydratingConfig())
//	if err != nil {
//		return err
//	}
//
//	name, err := cache.GetOrFetch(ctx, store, "user::42", func(ctx context.Context) (string, error) {
//		return lookupName(ctx, 42)
//	})
//
// # Keys
//
// The default serializer keeps string keys unchanged and tags every other
// value with its type, so 7 and "7" are different keys. Function values are
// serialized by pointer and are only stable within one process.
//
// # Remote Stores
//
// NewRedisStore needs a Codec. Values that are not plain data do not survive
// a round trip through Redis, which is why entity caches store cache entries
// rather than live objects.
package cache
