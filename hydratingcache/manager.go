package hydratingcache

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-entity-cache/cache"
	"github.com/goliatone/go-entity-cache/hydration"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

var (
	// ErrCacheExists is returned by Register when the name is already in use.
	ErrCacheExists = errors.New("hydratingcache: cache already exists")

	// ErrEmptyName is returned for caches without a name.
	ErrEmptyName = errors.New("hydratingcache: empty cache name")

	// ErrNilHydrator is returned when a cache is built without a hydrator.
	ErrNilHydrator = errors.New("hydratingcache: nil hydrator")
)

// Manager hands out hydrating caches by name. Each name maps to one cache for
// the lifetime of the manager; stores are created on first request.
type Manager struct {
	hydrator *hydration.Hydrator
	opts     options
	caches   *xsync.MapOf[string, *Cache]
	mu       sync.Mutex
}

// NewManager returns a manager whose caches share hydrator. Without
// WithStoreFactory every cache gets an in-process store holding at most
// 1000 entries for 10 minutes after write.
func NewManager(hydrator *hydration.Hydrator, opts ...Option) *Manager {
	return &Manager{
		hydrator: hydrator,
		opts:     buildOptions(opts),
		caches:   xsync.NewMapOf[string, *Cache](),
	}
}

// Hydrator returns the hydrator shared by the manager's caches.
func (m *Manager) Hydrator() *hydration.Hydrator {
	return m.hydrator
}

// GetCache returns the cache called name, creating it on first use.
func (m *Manager) GetCache(name string) (*Cache, error) {
	if c, ok := m.caches.Load(name); ok {
		return c, nil
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if m.hydrator == nil {
		return nil, ErrNilHydrator
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.caches.Load(name); ok {
		return c, nil
	}

	store, err := m.opts.storeFactory(name)
	if err != nil {
		return nil, fmt.Errorf("hydratingcache: create store for %q: %w", name, err)
	}
	if store == nil {
		return nil, fmt.Errorf("hydratingcache: create store for %q: %w", name, cache.ErrNilStore)
	}

	c := newCache(name, store, m.hydrator, m.opts)
	m.caches.Store(name, c)
	m.opts.logger.Debug("created hydrating cache", zap.String("cache", name))
	return c, nil
}

// Register adds a cache over a caller supplied store, for caches that need
// bounds other than the factory's.
func (m *Manager) Register(name string, store cache.Store) (*Cache, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if store == nil {
		return nil, cache.ErrNilStore
	}
	if m.hydrator == nil {
		return nil, ErrNilHydrator
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.caches.Load(name); ok {
		return nil, fmt.Errorf("%w: %q", ErrCacheExists, name)
	}

	c := newCache(name, store, m.hydrator, m.opts)
	m.caches.Store(name, c)
	m.opts.logger.Debug("registered hydrating cache", zap.String("cache", name))
	return c, nil
}

// GetCacheNames returns the names of the caches created so far, sorted.
func (m *Manager) GetCacheNames() []string {
	names := make([]string, 0, m.caches.Size())
	m.caches.Range(func(name string, _ *Cache) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
