package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-entity-cache/internal/cacheinfra"
)

var (
	// ErrInvalidResultType is returned when a cached value does not have the requested type.
	ErrInvalidResultType = errors.New("cache: invalid result type")

	// ErrNilStore is returned when a nil Store is handed to a component that wraps one.
	ErrNilStore = errors.New("cache: nil store")
)

// KeySerializer turns an arbitrary cache key into the string form stores are indexed by.
// Equal keys must serialize to equal strings.
type KeySerializer interface {
	SerializeKey(key any) string
}

// FetchFn is the function signature used to load a value on a cache miss.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Store is the bounded, time-expiring key-value contract the hydrating layer wraps.
// Implementations must be safe for concurrent use. A Store does not interpret
// the values it keeps.
type Store interface {
	// Get returns (value, true, nil) on a hit and (nil, false, nil) on a miss.
	Get(ctx context.Context, key string) (any, bool, error)

	// GetOrFetch returns the stored value or stores and returns the result of fetchFn.
	// A failing fetchFn stores nothing.
	GetOrFetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (any, error)) (any, error)

	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	InvalidateKeys(ctx context.Context, keys []string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// Codec encodes stored values for stores that can only keep bytes.
type Codec = cacheinfra.Codec

// GetOrFetch is a type-safe wrapper around Store.GetOrFetch.
func GetOrFetch[T any](ctx context.Context, store Store, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T

	result, err := store.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetchFn(ctx)
	})
	if err != nil {
		return zero, err
	}

	// an interface typed T fetched as nil comes back as a nil any
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrInvalidResultType, result, zero)
	}
	return typed, nil
}
