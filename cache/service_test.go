package cache

import (
	"context"
	"errors"
	"testing"
)

// mockStore returns a canned GetOrFetch result.
type mockStore struct {
	result any
	err    error
}

func (m *mockStore) Get(ctx context.Context, key string) (any, bool, error) {
	return m.result, m.result != nil, m.err
}

func (m *mockStore) GetOrFetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	return m.result, m.err
}

func (m *mockStore) Set(ctx context.Context, key string, value any) error { return nil }

func (m *mockStore) Delete(ctx context.Context, key string) error { return nil }

func (m *mockStore) DeleteByPrefix(ctx context.Context, prefix string) error { return nil }

func (m *mockStore) InvalidateKeys(ctx context.Context, keys []string) error { return nil }

func (m *mockStore) Keys(ctx context.Context) ([]string, error) { return nil, nil }

func (m *mockStore) Clear(ctx context.Context) error { return nil }

func TestGetOrFetch_NilInterfaceResult(t *testing.T) {
	mock := &mockStore{}

	type SomeInterface interface {
		DoSomething() string
	}

	result, err := GetOrFetch[SomeInterface](context.Background(), mock, "test-key", func(ctx context.Context) (SomeInterface, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got: %v", result)
	}
}

func TestGetOrFetch_NilPointerResult(t *testing.T) {
	type User struct{ Name string }

	var nilUser *User
	mock := &mockStore{result: nilUser}

	result, err := GetOrFetch[*User](context.Background(), mock, "test-key", func(ctx context.Context) (*User, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil pointer, got: %v", result)
	}
}

func TestGetOrFetch_TypeAssertionFailure(t *testing.T) {
	mock := &mockStore{result: "not an int"}

	result, err := GetOrFetch[int](context.Background(), mock, "test-key", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if !errors.Is(err, ErrInvalidResultType) {
		t.Fatalf("expected ErrInvalidResultType, got: %v", err)
	}
	if result != 0 {
		t.Fatalf("expected zero value, got: %d", result)
	}
}

func TestGetOrFetch_PropagatesStoreError(t *testing.T) {
	boom := errors.New("boom")
	mock := &mockStore{err: boom}

	_, err := GetOrFetch[int](context.Background(), mock, "test-key", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got: %v", err)
	}
}

func TestGetOrFetch_WithStore(t *testing.T) {
	store, err := NewStore(HydratingConfig())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	calls := 0
	fetch := func(ctx context.Context) (string, error) {
		calls++
		return "value", nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrFetch[string](context.Background(), store, "k", fetch)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if got != "value" {
			t.Fatalf("expected value, got %q", got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}

	stats, ok := StatsOf(store)
	if !ok {
		t.Fatal("expected stats for default store")
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestConfigFacade(t *testing.T) {
	cfg := HydratingConfig()
	if cfg.Capacity != 1000 {
		t.Errorf("expected capacity 1000, got %d", cfg.Capacity)
	}
	if cfg.EarlyRefresh != nil {
		t.Error("expected no early refresh for hydrating caches")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	def := DefaultConfig()
	if def.EarlyRefresh == nil || !def.MissingRecordStorage {
		t.Error("expected default config to keep optional features")
	}

	def.Capacity = 0
	if _, err := NewStore(def); err == nil {
		t.Error("expected NewStore to reject invalid config")
	}
}

func TestNewRedisStore_RequiresClient(t *testing.T) {
	if _, err := NewRedisStore(RedisConfig{}); err == nil {
		t.Fatal("expected error for missing client")
	}
}
