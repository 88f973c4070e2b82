package hydratingcache

import (
	"context"
	"fmt"
	"reflect"

	"github.com/goliatone/go-entity-cache/cache"
	"github.com/goliatone/go-entity-cache/hydration"
)

// GetAs is a type-safe wrapper around Cache.Get. Hydrated entity lists are
// converted element by element, so []*Conversation can be requested directly.
func GetAs[T any](ctx context.Context, c *Cache, key any) (T, bool, error) {
	var zero T

	value, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}

	typed, err := convert[T](value)
	if err != nil {
		return zero, false, err
	}
	return typed, true, nil
}

// GetOrLoadAs is a type-safe wrapper around Cache.GetOrLoad.
func GetOrLoadAs[T any](ctx context.Context, c *Cache, key any, loader func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if loader == nil {
		return zero, ErrNilLoader
	}

	value, err := c.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		return zero, err
	}
	return convert[T](value)
}

func convert[T any](value any) (T, error) {
	var zero T
	if value == nil {
		return zero, nil
	}
	if typed, ok := value.(T); ok {
		return typed, nil
	}

	target := reflect.TypeOf((*T)(nil)).Elem()
	entities, ok := value.([]hydration.Entity)
	if !ok || target.Kind() != reflect.Slice {
		return zero, fmt.Errorf("%w: got %T, want %s", cache.ErrInvalidResultType, value, target)
	}

	out := reflect.MakeSlice(target, len(entities), len(entities))
	for i, e := range entities {
		ev := reflect.ValueOf(e)
		if !ev.IsValid() || !ev.Type().AssignableTo(target.Elem()) {
			return zero, fmt.Errorf("%w: element %d is %T, want %s", cache.ErrInvalidResultType, i, e, target.Elem())
		}
		out.Index(i).Set(ev)
	}
	return out.Interface().(T), nil
}
