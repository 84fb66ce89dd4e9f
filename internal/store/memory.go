package store

import (
	"context"
	"sync"

	"github.com/nowplaying/notification-platform/internal/model"
)

// memoryStore implements Store with a plain map. For tests and ephemeral runs.
type memoryStore struct {
	mu      sync.RWMutex
	configs map[string]model.UserConfig
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		configs: make(map[string]model.UserConfig),
	}
}

// Get implements Store.
func (s *memoryStore) Get(ctx context.Context, userID string) (model.UserConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg, ok := s.configs[userID]; ok {
		cfg.UserID = userID
		return cfg, nil
	}
	return model.DefaultConfig(userID), nil
}

// Upsert implements Store.
func (s *memoryStore) Upsert(ctx context.Context, userID string, patch model.ConfigPatch) (model.UserConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[userID]
	if !ok {
		cfg = model.DefaultConfig(userID)
	}
	cfg.UserID = userID
	patch.Apply(&cfg)
	s.configs[userID] = cfg

	return cfg, nil
}

// Reset implements Store.
func (s *memoryStore) Reset(ctx context.Context, userID string) (model.UserConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := model.DefaultConfig(userID)
	s.configs[userID] = cfg
	return cfg, nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs = nil
	return nil
}
