package cacheinfra

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 10000 {
		t.Errorf("expected Capacity to be 10000, got %d", cfg.Capacity)
	}
	if cfg.NumShards != 256 {
		t.Errorf("expected NumShards to be 256, got %d", cfg.NumShards)
	}
	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected TTL to be 5 minutes, got %v", cfg.TTL)
	}
	if cfg.EarlyRefresh == nil {
		t.Fatal("expected EarlyRefresh to be configured")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestHydratingConfig(t *testing.T) {
	cfg := HydratingConfig()

	if cfg.Capacity != HydratingCapacity {
		t.Errorf("expected Capacity %d, got %d", HydratingCapacity, cfg.Capacity)
	}
	if cfg.TTL != HydratingTTL {
		t.Errorf("expected TTL %v, got %v", HydratingTTL, cfg.TTL)
	}
	if cfg.EarlyRefresh != nil {
		t.Error("expected early refresh to be disabled for hydrating caches")
	}
	if cfg.MissingRecordStorage {
		t.Error("expected missing record storage to be disabled for hydrating caches")
	}
	if len(cfg.ToSturdycOptions()) != 0 {
		t.Errorf("expected no sturdyc options, got %d", len(cfg.ToSturdycOptions()))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected hydrating config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{Capacity: 100, NumShards: 4, TTL: time.Minute, EvictionPercentage: 10}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantField: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, wantField: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, wantField: "TTL"},
		{name: "eviction too low", mutate: func(c *Config) { c.EvictionPercentage = 0 }, wantField: "EvictionPercentage"},
		{name: "eviction too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, wantField: "EvictionPercentage"},
		{name: "negative eviction interval", mutate: func(c *Config) { c.EvictionInterval = -time.Second }, wantField: "EvictionInterval"},
		{
			name: "negative early refresh",
			mutate: func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{MinAsyncRefreshTime: -time.Second, MaxAsyncRefreshTime: time.Second}
			},
			wantField: "EarlyRefresh.MinAsyncRefreshTime",
		},
		{
			name: "inverted early refresh window",
			mutate: func(c *Config) {
				c.EarlyRefresh = &EarlyRefreshConfig{MinAsyncRefreshTime: 20 * time.Second, MaxAsyncRefreshTime: 10 * time.Second}
			},
			wantField: "EarlyRefresh.MaxAsyncRefreshTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no validation error, got %v", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, cfgErr.Field)
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	if got := len(DefaultConfig().ToSturdycOptions()); got != 2 {
		t.Errorf("expected 2 options for default config, got %d", got)
	}

	cfg := HydratingConfig()
	cfg.MissingRecordStorage = true
	cfg.EvictionInterval = time.Second
	if got := len(cfg.ToSturdycOptions()); got != 2 {
		t.Errorf("expected 2 options, got %d", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "TestField", Message: "test message"}

	expected := "config error in field TestField: test message"
	if err.Error() != expected {
		t.Errorf("expected error message %q, got %q", expected, err.Error())
	}
}
