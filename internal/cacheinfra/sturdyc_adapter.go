package cacheinfra

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
)

// FetchFn loads a value on a cache miss. It matches sturdyc.FetchFn[any].
type FetchFn = func(ctx context.Context) (any, error)

// Stats is a point in time view of a store's counters.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// SturdycStore is a bounded, time-expiring in-process store backed by sturdyc.
// Values are kept as given; nothing is encoded.
type SturdycStore struct {
	client *sturdyc.Client[any]
	hits   *xsync.Counter
	misses *xsync.Counter
}

// NewSturdycStore validates cfg and builds a sturdyc client from it.
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycStore{
		client: client,
		hits:   xsync.NewCounter(),
		misses: xsync.NewCounter(),
	}, nil
}

// Get returns the stored value for key.
func (s *SturdycStore) Get(_ context.Context, key string) (any, bool, error) {
	v, ok := s.client.Get(key)
	if ok {
		s.hits.Inc()
	} else {
		s.misses.Inc()
	}
	return v, ok, nil
}

// GetOrFetch returns the stored value for key or calls fetchFn and stores its
// result. Concurrent misses on the same key are deduplicated by sturdyc; when
// fetchFn fails nothing is stored.
func (s *SturdycStore) GetOrFetch(ctx context.Context, key string, fetchFn FetchFn) (any, error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	var fetched atomic.Bool
	v, err := s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		fetched.Store(true)
		return fetchFn(ctx)
	})

	if fetched.Load() {
		s.misses.Inc()
	} else if err == nil {
		s.hits.Inc()
	}
	return v, err
}

// Set stores value under key, evicting older entries when the store is full.
func (s *SturdycStore) Set(_ context.Context, key string, value any) error {
	s.client.Set(key, value)
	return nil
}

// Delete removes a single entry.
func (s *SturdycStore) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// DeleteByPrefix removes every entry whose key starts with prefix.
func (s *SturdycStore) DeleteByPrefix(_ context.Context, prefix string) error {
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// InvalidateKeys removes the given entries.
func (s *SturdycStore) InvalidateKeys(_ context.Context, keys []string) error {
	for _, key := range keys {
		s.client.Delete(key)
	}
	return nil
}

// Keys returns the keys currently held, in no particular order.
func (s *SturdycStore) Keys(_ context.Context) ([]string, error) {
	return s.client.ScanKeys(), nil
}

// Clear removes every entry.
func (s *SturdycStore) Clear(_ context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}

// Size returns the number of entries held.
func (s *SturdycStore) Size() int {
	return s.client.Size()
}

// Stats returns the store's hit and miss counters.
func (s *SturdycStore) Stats() Stats {
	return Stats{
		Hits:   s.hits.Value(),
		Misses: s.misses.Value(),
		Size:   s.client.Size(),
	}
}
