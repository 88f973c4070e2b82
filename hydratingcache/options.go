package hydratingcache

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-entity-cache/cache"
	"github.com/goliatone/go-entity-cache/hydration"
	"github.com/puzpuzpuz/xsync/v3"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "entitycache:"

// ErrNamespaceTaken is returned when two cache names map to one store namespace.
var ErrNamespaceTaken = errors.New("hydratingcache: store namespace already in use")

// StoreFactory creates the store backing the cache called name.
type StoreFactory func(name string) (cache.Store, error)

// Option configures a Manager or a standalone Cache.
type Option func(*options)

type options struct {
	storeFactory  StoreFactory
	keySerializer cache.KeySerializer
	logger        *zap.Logger
}

func buildOptions(opts []Option) options {
	o := options{
		storeFactory:  DefaultStoreFactory(cache.HydratingConfig()),
		keySerializer: cache.NewDefaultKeySerializer(),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithStoreFactory sets how stores are created for new caches.
func WithStoreFactory(factory StoreFactory) Option {
	return func(o *options) {
		if factory != nil {
			o.storeFactory = factory
		}
	}
}

// WithKeySerializer sets how cache keys are turned into store keys.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(o *options) {
		if serializer != nil {
			o.keySerializer = serializer
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// DefaultStoreFactory creates an in-process store per cache from cfg.
func DefaultStoreFactory(cfg cache.Config) StoreFactory {
	return func(string) (cache.Store, error) {
		return cache.NewStore(cfg)
	}
}

// RedisStoreFactory creates Redis backed stores sharing client. Each cache
// gets its own key namespace, see Namespace. A namespace already handed to
// another name is refused.
func RedisStoreFactory(client goredis.UniversalClient, ttl time.Duration) StoreFactory {
	claimed := xsync.NewMapOf[string, string]()
	return func(name string) (cache.Store, error) {
		namespace := Namespace(name)
		if namespace == "" {
			return nil, fmt.Errorf("hydratingcache: cache name %q yields an empty namespace", name)
		}
		if owner, loaded := claimed.LoadOrStore(namespace, name); loaded && owner != name {
			return nil, fmt.Errorf("%w: %q and %q", ErrNamespaceTaken, owner, name)
		}
		return cache.NewRedisStore(cache.RedisConfig{
			Client: client,
			Prefix: redisKeyPrefix + namespace,
			TTL:    ttl,
			Codec:  hydration.EnvelopeCodec{},
		})
	}
}
