package hydratingcache

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-entity-cache/cache"
	goredis "github.com/redis/go-redis/v9"
)

func TestManager_GetCacheMemoizes(t *testing.T) {
	m := NewManager(newTestHydrator(t))

	first, err := m.GetCache("projects")
	if err != nil {
		t.Fatalf("GetCache: %v", err)
	}
	second, err := m.GetCache("projects")
	if err != nil {
		t.Fatalf("GetCache: %v", err)
	}
	if first != second {
		t.Fatal("expected the same cache for the same name")
	}
	if first.Name() != "projects" {
		t.Errorf("unexpected name %q", first.Name())
	}

	other, _ := m.GetCache("diagrams")
	if other == first || other.Store() == first.Store() {
		t.Error("different names must not share a store")
	}
}

func TestManager_GetCacheConcurrent(t *testing.T) {
	var created atomic.Int32
	factory := func(name string) (cache.Store, error) {
		created.Add(1)
		return cache.NewStore(cache.HydratingConfig())
	}
	m := NewManager(newTestHydrator(t), WithStoreFactory(factory))

	const workers = 32
	caches := make([]*Cache, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := m.GetCache("shared")
			if err != nil {
				t.Errorf("GetCache: %v", err)
				return
			}
			caches[i] = c
		}(i)
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("expected one store, created %d", created.Load())
	}
	for _, c := range caches {
		if c != caches[0] {
			t.Fatal("all callers must get the same cache")
		}
	}
}

func TestManager_FactoryErrors(t *testing.T) {
	boom := errors.New("no capacity")
	m := NewManager(newTestHydrator(t), WithStoreFactory(func(string) (cache.Store, error) {
		return nil, boom
	}))

	if _, err := m.GetCache("x"); !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}
	if names := m.GetCacheNames(); len(names) != 0 {
		t.Errorf("failed caches must not be kept, got %v", names)
	}

	nilStore := NewManager(newTestHydrator(t), WithStoreFactory(func(string) (cache.Store, error) {
		return nil, nil
	}))
	if _, err := nilStore.GetCache("x"); !errors.Is(err, cache.ErrNilStore) {
		t.Fatalf("expected ErrNilStore, got %v", err)
	}

	if _, err := m.GetCache(""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := NewManager(nil).GetCache("x"); !errors.Is(err, ErrNilHydrator) {
		t.Fatalf("expected ErrNilHydrator, got %v", err)
	}
}

func TestManager_Register(t *testing.T) {
	m := NewManager(newTestHydrator(t))

	cfg := cache.HydratingConfig()
	cfg.Capacity = 10
	cfg.TTL = time.Minute
	store, err := cache.NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	registered, err := m.Register("hot", store)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	got, _ := m.GetCache("hot")
	if got != registered || got.Store() != store {
		t.Error("GetCache must return the registered cache")
	}

	if _, err := m.Register("hot", store); !errors.Is(err, ErrCacheExists) {
		t.Errorf("expected ErrCacheExists, got %v", err)
	}
	if _, err := m.Register("cold", nil); !errors.Is(err, cache.ErrNilStore) {
		t.Errorf("expected ErrNilStore, got %v", err)
	}
}

func TestManager_GetCacheNames(t *testing.T) {
	m := NewManager(newTestHydrator(t))
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if _, err := m.GetCache(name); err != nil {
			t.Fatalf("GetCache: %v", err)
		}
	}

	want := []string{"alpha", "mid", "zeta"}
	if got := m.GetCacheNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("GetCacheNames() = %v, want %v", got, want)
	}
}

func TestManager_KeySerializer(t *testing.T) {
	m := NewManager(newTestHydrator(t), WithKeySerializer(prefixSerializer("tenant-a:")))
	c, _ := m.GetCache("items")

	ctx := context.Background()
	if err := c.Put(ctx, "1", newItem(1, "x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, ok, _ := c.Store().Get(ctx, "tenant-a:1"); !ok {
		t.Fatal("expected custom key serializer to shape store keys")
	}
}

type prefixSerializer string

func (p prefixSerializer) SerializeKey(key any) string {
	return string(p) + cache.NewDefaultKeySerializer().SerializeKey(key)
}

func TestRedisStoreFactory_Namespace(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	factory := RedisStoreFactory(client, time.Minute)
	if _, err := factory("ProjectDiagrams"); err != nil {
		t.Fatalf("factory: %v", err)
	}
	if _, err := factory("ProjectDiagrams"); err != nil {
		t.Fatalf("the same name may be created again, got %v", err)
	}
	if _, err := factory("***"); err == nil {
		t.Fatal("expected error for a name without usable characters")
	}
}

// setRecorder captures the keys of SET commands without talking to a server.
type setRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *setRecorder) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (r *setRecorder) ProcessHook(goredis.ProcessHook) goredis.ProcessHook {
	return func(_ context.Context, cmd goredis.Cmder) error {
		if cmd.Name() == "set" {
			r.mu.Lock()
			r.keys = append(r.keys, fmt.Sprint(cmd.Args()[1]))
			r.mu.Unlock()
		}
		return nil
	}
}

func (r *setRecorder) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

func TestRedisStoreFactory_SimilarNamesDoNotShareKeys(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()
	recorder := &setRecorder{}
	client.AddHook(recorder)

	m := NewManager(newTestHydrator(t), WithStoreFactory(RedisStoreFactory(client, time.Minute)))
	ctx := context.Background()
	for _, name := range []string{"ProjectDiagrams", "project-diagrams"} {
		c, err := m.GetCache(name)
		if err != nil {
			t.Fatalf("GetCache(%q): %v", name, err)
		}
		if err := c.Put(ctx, "k", "v"); err != nil {
			t.Fatalf("Put on %q: %v", name, err)
		}
	}

	if len(recorder.keys) != 2 {
		t.Fatalf("expected two SET commands, got %v", recorder.keys)
	}
	if recorder.keys[0] == recorder.keys[1] {
		t.Fatalf("caches %v wrote the same key %q", m.GetCacheNames(), recorder.keys[0])
	}
	for _, key := range recorder.keys {
		if !strings.HasPrefix(key, "entitycache:project_diagrams_") || !strings.HasSuffix(key, ":k") {
			t.Errorf("unexpected store key %q", key)
		}
	}
}

func TestNamespace(t *testing.T) {
	a, b := Namespace("ProjectDiagrams"), Namespace("project-diagrams")
	if a == b {
		t.Fatalf("expected distinct namespaces, both are %q", a)
	}
	if !regexp.MustCompile(`^project_diagrams_[0-9a-f]{8}$`).MatchString(a) {
		t.Errorf("unexpected namespace %q", a)
	}
	if Namespace("ProjectDiagrams") != a {
		t.Error("namespace must be stable")
	}
	if Namespace("***") != "" {
		t.Error("expected empty namespace for a name without usable characters")
	}
}

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"projects":         "projects",
		"ProjectDiagrams":  "project_diagrams",
		"project-diagrams": "project_diagrams",
		"v2Cache":          "v2_cache",
		"  spaced  out ":   "spaced_out",
		"HTTPServer":       "httpserver",
		"ünïcode":          "n_code",
		"***":              "",
	}
	for in, want := range tests {
		if got := toSnake(in); got != want {
			t.Errorf("toSnake(%q) = %q, want %q", in, got, want)
		}
	}
}
