package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"
)

const (
	// HydratingCapacity is the fixed entry bound for caches created by the hydrating manager.
	HydratingCapacity = 1000
	// HydratingTTL is the fixed time-to-live after write for caches created by the hydrating manager.
	HydratingTTL = 10 * time.Minute
)

// Config holds the configuration for the sturdyc backed store.
type Config struct {
	// Capacity is the maximum number of entries the store keeps. Must be greater than 0.
	Capacity int

	// NumShards is the number of sturdyc shards. Must be greater than 0.
	NumShards int

	// TTL is applied to every entry after write. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage is the share of entries dropped when Capacity is hit (1-100).
	EvictionPercentage int

	// EarlyRefresh enables sturdyc background refreshes. Nil disables them.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage lets sturdyc remember keys whose fetch returned sturdyc.ErrNotFound.
	MissingRecordStorage bool

	// EvictionInterval overrides how often expired entries are swept. Zero keeps the default.
	EvictionInterval time.Duration
}

// EarlyRefreshConfig mirrors sturdyc.WithEarlyRefreshes.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns the general purpose store configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
		EarlyRefresh: &EarlyRefreshConfig{
			MinAsyncRefreshTime: 10 * time.Second,
			MaxAsyncRefreshTime: 20 * time.Second,
			SyncRefreshTime:     30 * time.Second,
			RetryBaseDelay:      100 * time.Millisecond,
		},
		MissingRecordStorage: true,
	}
}

// HydratingConfig returns the fixed policy used for entity caches: a hard
// entry bound and a TTL after write, nothing refreshed in the background.
// Background refreshes would call loaders outside the caller's goroutine,
// which the hydrating layer does not support.
func HydratingConfig() Config {
	return Config{
		Capacity:           HydratingCapacity,
		NumShards:          16,
		TTL:                HydratingTTL,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the optional parts of Config into sturdyc options.
// Capacity, NumShards, TTL and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	case c.NumShards <= 0:
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	case c.TTL <= 0:
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	case c.EvictionPercentage < 1 || c.EvictionPercentage > 100:
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	case c.EvictionInterval < 0:
		return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
	}

	if r := c.EarlyRefresh; r != nil {
		for _, d := range []struct {
			field string
			value time.Duration
		}{
			{"EarlyRefresh.MinAsyncRefreshTime", r.MinAsyncRefreshTime},
			{"EarlyRefresh.MaxAsyncRefreshTime", r.MaxAsyncRefreshTime},
			{"EarlyRefresh.SyncRefreshTime", r.SyncRefreshTime},
			{"EarlyRefresh.RetryBaseDelay", r.RetryBaseDelay},
		} {
			if d.value < 0 {
				return &ConfigError{Field: d.field, Message: "must be non-negative"}
			}
		}
		if r.MaxAsyncRefreshTime < r.MinAsyncRefreshTime {
			return &ConfigError{Field: "EarlyRefresh.MaxAsyncRefreshTime", Message: "must not be lower than MinAsyncRefreshTime"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
