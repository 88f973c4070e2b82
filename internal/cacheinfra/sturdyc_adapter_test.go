package cacheinfra

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SturdycStore {
	t.Helper()
	store, err := NewSturdycStore(Config{
		Capacity:           100,
		NumShards:          2,
		TTL:                time.Minute,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestNewSturdycStore_InvalidConfig(t *testing.T) {
	store, err := NewSturdycStore(Config{Capacity: 0, NumShards: 1, TTL: time.Minute, EvictionPercentage: 10})
	if err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if store != nil {
		t.Error("expected nil store when config is invalid")
	}
	if err.Error() != "config error in field Capacity: must be greater than 0" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestSturdycStore_SetGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Fatal("expected miss for unknown key")
	}

	if err := store.Set(ctx, "k", 42); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if v != 42 {
		t.Errorf("expected 42, got %v", v)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("expected miss after delete")
	}

	stats := store.Stats()
	if stats.Hits != 1 || stats.Misses != 2 {
		t.Errorf("expected 1 hit and 2 misses, got %+v", stats)
	}
}

func TestSturdycStore_GetOrFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("miss calls fetch and stores", func(t *testing.T) {
		calls := 0
		fetch := func(ctx context.Context) (any, error) {
			calls++
			return "value", nil
		}

		for i := 0; i < 3; i++ {
			v, err := store.GetOrFetch(ctx, "fetch-key", fetch)
			if err != nil {
				t.Fatalf("GetOrFetch failed: %v", err)
			}
			if v != "value" {
				t.Errorf("expected value, got %v", v)
			}
		}
		if calls != 1 {
			t.Errorf("expected fetch to be called once, got %d", calls)
		}
	})

	t.Run("fetch error is returned and not stored", func(t *testing.T) {
		boom := errors.New("fetch failed")
		v, err := store.GetOrFetch(ctx, "error-key", func(ctx context.Context) (any, error) {
			return nil, boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("expected fetch error, got %v", err)
		}
		if v != nil {
			t.Errorf("expected nil result, got %v", v)
		}
		if _, ok, _ := store.Get(ctx, "error-key"); ok {
			t.Error("expected failed fetch not to be stored")
		}
	})

	t.Run("nil fetch function", func(t *testing.T) {
		_, err := store.GetOrFetch(ctx, "nil-key", nil)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError, got %T", err)
		}
		if cfgErr.Field != "fetchFn" || cfgErr.Message != "cannot be nil" {
			t.Errorf("unexpected config error: %+v", cfgErr)
		}
	})
}

func TestSturdycStore_ConcurrentGetOrFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrFetch(ctx, "shared", func(ctx context.Context) (any, error) {
				return "shared-value", nil
			})
			if err != nil || v != "shared-value" {
				t.Errorf("unexpected result %v, %v", v, err)
			}
		}()
	}
	wg.Wait()

	if store.Size() != 1 {
		t.Errorf("expected a single entry, got %d", store.Size())
	}
}

func TestSturdycStore_BulkRemoval(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"conversation::1", "conversation::2", "project::1", "diagram::9"} {
		_ = store.Set(ctx, k, k)
	}

	if err := store.DeleteByPrefix(ctx, "conversation::"); err != nil {
		t.Fatalf("DeleteByPrefix failed: %v", err)
	}
	keys, _ := store.Keys(ctx)
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "diagram::9" || keys[1] != "project::1" {
		t.Errorf("unexpected keys after prefix delete: %v", keys)
	}

	if err := store.InvalidateKeys(ctx, []string{"project::1"}); err != nil {
		t.Fatalf("InvalidateKeys failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "project::1"); ok {
		t.Error("expected project::1 to be invalidated")
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if store.Size() != 0 {
		t.Errorf("expected empty store after Clear, got %d entries", store.Size())
	}
}

func TestSturdycStore_TTLExpiry(t *testing.T) {
	store, err := NewSturdycStore(Config{
		Capacity:           10,
		NumShards:          1,
		TTL:                50 * time.Millisecond,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()

	_ = store.Set(ctx, "short", "lived")
	time.Sleep(100 * time.Millisecond)

	if _, ok, _ := store.Get(ctx, "short"); ok {
		t.Error("expected entry to expire after TTL")
	}
}
