package di

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-entity-cache/association"
	"github.com/goliatone/go-entity-cache/cache"
	"github.com/goliatone/go-entity-cache/hydratingcache"
	"github.com/goliatone/go-entity-cache/hydration"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrWarmed is returned when registrations are added after Warm.
var ErrWarmed = errors.New("di: container already warmed")

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger handed to the hydrator and the manager.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFactory sets the association factory. It can also be set later with
// SetFactory, as long as it happens before the first hydration.
func WithFactory(factory association.Factory) Option {
	return func(c *Container) {
		c.SetFactory(factory)
	}
}

// WithKeySerializer replaces the default key serializer.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(c *Container) {
		if serializer != nil {
			c.keySerializer = serializer
		}
	}
}

// WithRedis makes every managed cache a Redis store on client, with entries
// expiring ttl after write.
func WithRedis(client goredis.UniversalClient, ttl time.Duration) Option {
	return func(c *Container) {
		c.redis = client
		c.redisTTL = ttl
	}
}

// Container wires the association registry, the hydrator and the cache
// manager. The registry is open until Warm seals it.
type Container struct {
	registry      *association.Registry
	factory       atomic.Pointer[association.Factory]
	hydrator      *hydration.Hydrator
	manager       *hydratingcache.Manager
	keySerializer cache.KeySerializer
	config        cache.Config
	logger        *zap.Logger
	redis         goredis.UniversalClient
	redisTTL      time.Duration
}

// NewContainer validates config and builds a container whose managed caches
// use it for their stores.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		registry:      association.NewRegistry(),
		keySerializer: cache.NewDefaultKeySerializer(),
		config:        config,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	storeFactory := hydratingcache.DefaultStoreFactory(config)
	if c.redis != nil {
		if c.redisTTL <= 0 {
			c.redisTTL = config.TTL
		}
		storeFactory = hydratingcache.RedisStoreFactory(c.redis, c.redisTTL)
	}

	c.hydrator = hydration.NewHydrator(c.registry, c.currentFactory, hydration.WithLogger(c.logger))
	c.manager = hydratingcache.NewManager(c.hydrator,
		hydratingcache.WithStoreFactory(storeFactory),
		hydratingcache.WithKeySerializer(c.keySerializer),
		hydratingcache.WithLogger(c.logger),
	)
	return c, nil
}

// NewContainerWithDefaults builds a container with the entity cache policy.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.HydratingConfig(), opts...)
}

// Register adds registrations to the container's registry.
func (c *Container) Register(regs ...association.Registration) error {
	if c.registry.Sealed() {
		return ErrWarmed
	}
	for _, reg := range regs {
		if err := c.registry.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

// Warm seals the registry and resolves the metadata of every registered type,
// so constructor mistakes surface at startup instead of on the first read.
func (c *Container) Warm() error {
	c.registry.Seal()
	if err := c.hydrator.Metadata().Warm(); err != nil {
		return err
	}
	c.logger.Info("entity cache warmed", zap.Strings("entity_types", c.registry.EntityTypes()))
	return nil
}

// SetFactory replaces the association factory used by later hydrations.
func (c *Container) SetFactory(factory association.Factory) {
	if factory == nil {
		c.factory.Store(nil)
		return
	}
	c.factory.Store(&factory)
}

func (c *Container) currentFactory() association.Factory {
	f := c.factory.Load()
	if f == nil {
		return nil
	}
	return *f
}

// Cache returns the managed cache named name, creating it on first use.
func (c *Container) Cache(name string) (*hydratingcache.Cache, error) {
	return c.manager.GetCache(name)
}

func (c *Container) Registry() *association.Registry    { return c.registry }
func (c *Container) Hydrator() *hydration.Hydrator      { return c.hydrator }
func (c *Container) Manager() *hydratingcache.Manager   { return c.manager }
func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }
func (c *Container) Config() cache.Config               { return c.config }
