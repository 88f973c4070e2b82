package cache

import (
	"github.com/goliatone/go-entity-cache/internal/cacheinfra"
)

// Config holds the in-process store options: entry bound, shards, TTL after
// write, eviction share and the optional sturdyc features.
type Config = cacheinfra.Config

// EarlyRefreshConfig mirrors the sturdyc early refresh options.
type EarlyRefreshConfig = cacheinfra.EarlyRefreshConfig

// RedisConfig configures a remote store. Codec decides how values are encoded;
// hydration.EnvelopeCodec keeps cache entries intact.
type RedisConfig = cacheinfra.RedisConfig

// Stats is a point in time view of a store's counters.
type Stats = cacheinfra.Stats

// DefaultConfig returns a general purpose configuration.
func DefaultConfig() Config {
	return cacheinfra.DefaultConfig()
}

// HydratingConfig returns the fixed policy entity caches use:
// at most 1000 entries, each expiring 10 minutes after write.
func HydratingConfig() Config {
	return cacheinfra.HydratingConfig()
}

// NewStore builds the default in-process store for cfg.
func NewStore(cfg Config) (Store, error) {
	store, err := cacheinfra.NewSturdycStore(cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewRedisStore builds a Redis backed store.
func NewRedisStore(cfg RedisConfig) (Store, error) {
	store, err := cacheinfra.NewRedisStore(cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// StatsOf returns the counters of stores created by this package.
func StatsOf(store Store) (Stats, bool) {
	s, ok := store.(interface{ Stats() Stats })
	if !ok {
		return Stats{}, false
	}
	return s.Stats(), true
}
