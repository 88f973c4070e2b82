package cacheinfra

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	goredis "github.com/redis/go-redis/v9"
)

// ErrNilClient is returned when a RedisStore is built without a client.
var ErrNilClient = errors.New("redis store: nil client")

const (
	defaultRedisPrefix = "entitycache"
	scanBatch          = 256
)

// Codec turns stored values into bytes and back. Redis only keeps bytes, so
// the codec decides which value shapes survive the trip.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(b []byte) (any, error)
}

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Client goredis.UniversalClient
	// Prefix namespaces every key. Defaults to "entitycache".
	Prefix string
	// TTL is applied to every write. Must be greater than 0.
	TTL   time.Duration
	Codec Codec
}

// RedisStore is a remote, time-expiring store. The size bound is Redis' own
// maxmemory policy. Key scans use SCAN on a single node, so DeleteByPrefix,
// Keys and Clear only see one shard of a cluster client.
type RedisStore struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	codec  Codec
	hits   *xsync.Counter
	misses *xsync.Counter
}

// NewRedisStore validates cfg and returns a store using cfg.Client.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	if cfg.Codec == nil {
		return nil, &ConfigError{Field: "Codec", Message: "cannot be nil"}
	}
	if cfg.TTL <= 0 {
		return nil, &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{
		rdb:    cfg.Client,
		prefix: prefix + ":",
		ttl:    cfg.TTL,
		codec:  cfg.Codec,
		hits:   xsync.NewCounter(),
		misses: xsync.NewCounter(),
	}, nil
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

// Get returns the decoded value for key.
func (s *RedisStore) Get(ctx context.Context, key string) (any, bool, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		s.misses.Inc()
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	v, err := s.codec.Decode(b)
	if err != nil {
		return nil, false, err
	}
	s.hits.Inc()
	return v, true, nil
}

// GetOrFetch reads key and on a miss stores the result of fetchFn. Unlike the
// sturdyc store there is no in-flight deduplication across callers.
func (s *RedisStore) GetOrFetch(ctx context.Context, key string, fetchFn FetchFn) (any, error) {
	if fetchFn == nil {
		return nil, &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}
	if v, ok, err := s.Get(ctx, key); err != nil || ok {
		return v, err
	}
	v, err := fetchFn(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Set(ctx, key, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Set encodes value and writes it with the store TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	b, err := s.codec.Encode(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(key), b, s.ttl).Err()
}

// Delete removes a single key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

// DeleteByPrefix removes every key that starts with prefix.
func (s *RedisStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	keys, err := s.scan(ctx, s.key(escapeGlob(prefix))+"*")
	if err != nil {
		return err
	}
	return s.del(ctx, keys)
}

// InvalidateKeys removes the given keys.
func (s *RedisStore) InvalidateKeys(ctx context.Context, keys []string) error {
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.del(ctx, full)
}

// Keys returns the unprefixed keys under this store's namespace.
func (s *RedisStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.scan(ctx, s.key("*"))
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, s.prefix)
	}
	return keys, nil
}

// Clear removes every key under this store's namespace.
func (s *RedisStore) Clear(ctx context.Context) error {
	keys, err := s.scan(ctx, s.key("*"))
	if err != nil {
		return err
	}
	return s.del(ctx, keys)
}

// Stats returns the store's hit and miss counters. Size is not tracked.
func (s *RedisStore) Stats() Stats {
	return Stats{Hits: s.hits.Value(), Misses: s.misses.Value()}
}

func (s *RedisStore) scan(ctx context.Context, match string) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return nil, err
		}
		out = append(out, keys...)
		cursor = next
		if cursor == 0 {
			return out, nil
		}
	}
}

func (s *RedisStore) del(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += scanBatch {
		end := min(start+scanBatch, len(keys))
		if err := s.rdb.Del(ctx, keys[start:end]...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// escapeGlob quotes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
