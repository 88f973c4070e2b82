package hydratingcache

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/goliatone/go-entity-cache/cache"
	"github.com/goliatone/go-entity-cache/hydration"
	"go.uber.org/zap"
)

// ErrNilLoader is returned by GetOrLoad when no loader is given.
var ErrNilLoader = errors.New("hydratingcache: nil loader")

// ErrLiveEntityInValue is returned when a value that is neither an entity nor
// a sequence of entities still holds one, for example []any{entity, "x"} or a
// map of entities. Such values would keep the live instance in the store.
var ErrLiveEntityInValue = errors.New("hydratingcache: value holds an entity outside an entity sequence")

// Loader produces the value of a missing key.
type Loader func(ctx context.Context) (any, error)

// Cache decorates one named store. Entities and entity sequences are
// extracted to cache entries before they reach the store and hydrated into
// fresh instances on the way out. Other values pass through unchanged unless
// they hold an entity somewhere inside, which is refused.
type Cache struct {
	name     string
	store    cache.Store
	hydrator *hydration.Hydrator
	keys     cache.KeySerializer
	tags     *tagIndex
	logger   *zap.Logger
}

// New wraps store as a hydrating cache named name.
func New(name string, store cache.Store, hydrator *hydration.Hydrator, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, cache.ErrNilStore
	}
	if hydrator == nil {
		return nil, ErrNilHydrator
	}
	return newCache(name, store, hydrator, buildOptions(opts)), nil
}

func newCache(name string, store cache.Store, hydrator *hydration.Hydrator, o options) *Cache {
	return &Cache{
		name:     name,
		store:    store,
		hydrator: hydrator,
		keys:     o.keySerializer,
		tags:     newTagIndex(defaultTagIndexFloor),
		logger:   o.logger.With(zap.String("cache", name)),
	}
}

// Name returns the cache name.
func (c *Cache) Name() string {
	return c.name
}

// Store returns the underlying store. Values read from it are cache entries,
// not entities.
func (c *Cache) Store() cache.Store {
	return c.store
}

// Stats returns the store counters when the store keeps them.
func (c *Cache) Stats() (cache.Stats, bool) {
	return cache.StatsOf(c.store)
}

// Get returns the value stored under key. Cache entries come back as freshly
// hydrated entities, entry lists as []hydration.Entity.
func (c *Cache) Get(ctx context.Context, key any) (any, bool, error) {
	raw, ok, err := c.store.Get(ctx, c.keys.SerializeKey(key))
	if err != nil || !ok {
		return nil, false, err
	}

	value, err := c.fromStore(raw)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// GetOrLoad returns the value under key, calling loader on a miss. The loaded
// value is extracted inside the store's own load path, so the store never
// sees a live entity.
func (c *Cache) GetOrLoad(ctx context.Context, key any, loader Loader) (any, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}

	storeKey := c.keys.SerializeKey(key)
	raw, err := c.store.GetOrFetch(ctx, storeKey, func(ctx context.Context) (any, error) {
		c.logger.Debug("loading value", zap.String("key", storeKey))
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return c.toStore(value)
	})
	if err != nil {
		return nil, err
	}

	c.trackTags(ctx, storeKey)
	return c.fromStore(raw)
}

// Put stores value under key.
func (c *Cache) Put(ctx context.Context, key any, value any) error {
	stored, err := c.toStore(value)
	if err != nil {
		return err
	}

	storeKey := c.keys.SerializeKey(key)
	if err := c.store.Set(ctx, storeKey, stored); err != nil {
		return err
	}
	c.trackTags(ctx, storeKey)
	return nil
}

// Evict removes key.
func (c *Cache) Evict(ctx context.Context, key any) error {
	storeKey := c.keys.SerializeKey(key)
	if err := c.store.Delete(ctx, storeKey); err != nil {
		return err
	}
	c.tags.forget(storeKey)
	return nil
}

// EvictIfPresent removes key and reports whether it was present.
func (c *Cache) EvictIfPresent(ctx context.Context, key any) (bool, error) {
	storeKey := c.keys.SerializeKey(key)
	_, ok, err := c.store.Get(ctx, storeKey)
	if err != nil || !ok {
		return false, err
	}
	if err := c.store.Delete(ctx, storeKey); err != nil {
		return false, err
	}
	c.tags.forget(storeKey)
	return true, nil
}

// EvictPrefix removes every string key starting with prefix.
func (c *Cache) EvictPrefix(ctx context.Context, prefix string) error {
	if err := c.store.DeleteByPrefix(ctx, prefix); err != nil {
		return err
	}
	c.tags.forgetPrefix(prefix)
	return nil
}

// EvictTags removes every key written with one of tags in its context.
// See WithCacheTags.
func (c *Cache) EvictTags(ctx context.Context, tags ...string) error {
	keys := c.tags.take(tags)
	if len(keys) == 0 {
		return nil
	}
	return c.store.InvalidateKeys(ctx, keys)
}

// Clear removes every entry.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.tags.reset()
	return nil
}

// Invalidate removes every entry and reports whether there was anything to remove.
func (c *Cache) Invalidate(ctx context.Context) (bool, error) {
	keys, err := c.store.Keys(ctx)
	if err != nil {
		return false, err
	}
	if err := c.Clear(ctx); err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}

func (c *Cache) trackTags(ctx context.Context, storeKey string) {
	if c.tags.track(storeKey, cacheTagsFromContext(ctx)) {
		c.pruneTags(ctx)
	}
}

// pruneTags drops index entries for keys the store no longer holds.
func (c *Cache) pruneTags(ctx context.Context) {
	tracked := c.tags.snapshot()
	live, err := c.store.Keys(ctx)
	if err != nil {
		c.logger.Warn("tag index prune skipped", zap.Error(err))
		c.tags.finishPrune(nil)
		return
	}
	stale := missingKeys(tracked, live)
	c.tags.finishPrune(stale)
	c.logger.Debug("tag index pruned", zap.Int("dropped", len(stale)), zap.Int("tracked", c.tags.len()))
}

// toStore reduces value to what the store may hold.
func (c *Cache) toStore(value any) (any, error) {
	if isNil(value) {
		return nil, nil
	}

	switch v := value.(type) {
	case hydration.Entity:
		entry, err := c.hydrator.Extract(v)
		if err != nil {
			return nil, err
		}
		return entry, nil
	case []hydration.Entity:
		return c.extractList(v)
	}

	if entities, ok := entitySequence(value); ok {
		return c.extractList(entities)
	}
	if containsEntity(reflect.ValueOf(value)) {
		return nil, fmt.Errorf("%w: %T", ErrLiveEntityInValue, value)
	}
	return value, nil
}

func (c *Cache) extractList(entities []hydration.Entity) (any, error) {
	entries, err := c.hydrator.ExtractList(entities)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// fromStore rebuilds what toStore produced.
func (c *Cache) fromStore(raw any) (any, error) {
	switch v := raw.(type) {
	case hydration.CacheEntry:
		return c.hydrator.Hydrate(v)
	case *hydration.CacheEntry:
		if v == nil {
			return nil, nil
		}
		return c.hydrator.Hydrate(*v)
	case []hydration.CacheEntry:
		return c.hydrator.HydrateList(v)
	}
	return raw, nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
