package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/nowplaying/notification-platform/internal/model"
)

const (
	configKeyPrefix = "npconfig:"

	// Retries for the optimistic read-merge-write cycle on contended keys.
	redisMaxRetries = 3
)

// redisStore implements Store on Redis, one JSON value per user key. Records
// never expire; reset rewrites, it does not delete.
type redisStore struct {
	client *redis.Client
}

func newRedisStore(client *redis.Client) *redisStore {
	return &redisStore{client: client}
}

func (s *redisStore) key(userID string) string {
	return configKeyPrefix + userID
}

// Get implements Store.
func (s *redisStore) Get(ctx context.Context, userID string) (model.UserConfig, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return model.DefaultConfig(userID), nil
	}
	if err != nil {
		return model.UserConfig{}, fmt.Errorf("%w: %v", model.ErrStorageIO, err)
	}

	var cfg model.UserConfig
	if err := json.Unmarshal([]byte(val), &cfg); err != nil {
		return model.UserConfig{}, fmt.Errorf("%w: %v", model.ErrStorageIO, err)
	}
	cfg.UserID = userID
	return cfg, nil
}

// Upsert implements Store. The read-merge-write cycle runs under WATCH so two
// concurrent merges for one user never interleave.
func (s *redisStore) Upsert(ctx context.Context, userID string, patch model.ConfigPatch) (model.UserConfig, error) {
	key := s.key(userID)

	var result model.UserConfig
	txf := func(tx *redis.Tx) error {
		cfg := model.DefaultConfig(userID)
		val, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			if err := json.Unmarshal([]byte(val), &cfg); err != nil {
				return err
			}
			cfg.UserID = userID
		}

		patch.Apply(&cfg)

		data, err := json.Marshal(cfg)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		result = cfg
		return nil
	}

	for i := 0; i < redisMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return model.UserConfig{}, fmt.Errorf("%w: %v", model.ErrStorageIO, err)
	}

	return model.UserConfig{}, fmt.Errorf("%w: too many write conflicts for user %s", model.ErrStorageIO, userID)
}

// Reset implements Store.
func (s *redisStore) Reset(ctx context.Context, userID string) (model.UserConfig, error) {
	cfg := model.DefaultConfig(userID)

	data, err := json.Marshal(cfg)
	if err != nil {
		return model.UserConfig{}, fmt.Errorf("%w: %v", model.ErrStorageIO, err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, 0).Err(); err != nil {
		return model.UserConfig{}, fmt.Errorf("%w: %v", model.ErrStorageIO, err)
	}

	return cfg, nil
}

// Close implements Store.
func (s *redisStore) Close() error {
	return s.client.Close()
}
