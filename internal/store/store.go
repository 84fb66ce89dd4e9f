// Package store provides the durable per-user configuration store.
package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/nowplaying/notification-platform/internal/model"
)

// Errors returned by the driver factory.
var (
	ErrInvalidDriver = errors.New("invalid store driver")
	ErrInvalidConfig = errors.New("invalid store configuration")
)

// Store is the single source of truth for user configuration records.
//
// Reads never fail for a syntactically valid identifier: a user without a
// record gets materialized defaults, and a pure read never persists anything.
// Mutations for one user are serialized and commit durably before returning.
type Store interface {
	// Get returns the stored record, or the default record if none exists.
	Get(ctx context.Context, userID string) (model.UserConfig, error)

	// Upsert merges the patch into the existing record (creating it with
	// defaults first), persists it and returns the result.
	Upsert(ctx context.Context, userID string, patch model.ConfigPatch) (model.UserConfig, error)

	// Reset overwrites the record with the canonical defaults. The record
	// remains; reset never deletes.
	Reset(ctx context.Context, userID string) (model.UserConfig, error)

	// Close releases any resources held by the store.
	Close() error
}

// Driver identifies a store backend.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
)

// Option is a functional option for configuring a store.
type Option func(*storeConfig)

type storeConfig struct {
	path        string
	redisClient *redis.Client
}

// WithPath sets the JSON document path for the file driver.
func WithPath(path string) Option {
	return func(c *storeConfig) {
		c.path = path
	}
}

// WithRedisClient sets the Redis client for the redis driver.
func WithRedisClient(client *redis.Client) Option {
	return func(c *storeConfig) {
		c.redisClient = client
	}
}

// New creates a Store backed by the given driver.
func New(driver Driver, opts ...Option) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverFile:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return newFileStore(cfg.path)

	case DriverMemory:
		return newMemoryStore(), nil

	case DriverRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidConfig
		}
		return newRedisStore(cfg.redisClient), nil

	default:
		return nil, ErrInvalidDriver
	}
}
