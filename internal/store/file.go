package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nowplaying/notification-platform/internal/model"
)

// fileStore keeps all records in one JSON document keyed by user id, the
// whole state loaded at open. Every mutation rewrites a temp file in the same
// directory and renames it over the target, so a crash mid-write leaves the
// previous document intact.
type fileStore struct {
	mu      sync.RWMutex
	path    string
	configs map[string]model.UserConfig
}

func newFileStore(path string) (*fileStore, error) {
	s := &fileStore{
		path:    path,
		configs: make(map[string]model.UserConfig),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config store: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.configs); err != nil {
		return nil, fmt.Errorf("failed to parse config store %s: %w", path, err)
	}

	return s, nil
}

// Get implements Store. A missing record materializes defaults without
// writing anything.
func (s *fileStore) Get(ctx context.Context, userID string) (model.UserConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cfg, ok := s.configs[userID]; ok {
		cfg.UserID = userID
		return cfg, nil
	}
	return model.DefaultConfig(userID), nil
}

// Upsert implements Store.
func (s *fileStore) Upsert(ctx context.Context, userID string, patch model.ConfigPatch) (model.UserConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[userID]
	if !ok {
		cfg = model.DefaultConfig(userID)
	}
	cfg.UserID = userID
	patch.Apply(&cfg)

	prev, hadPrev := s.configs[userID]
	s.configs[userID] = cfg
	if err := s.flushLocked(); err != nil {
		// Keep the in-memory view consistent with what is on disk.
		if hadPrev {
			s.configs[userID] = prev
		} else {
			delete(s.configs, userID)
		}
		return model.UserConfig{}, fmt.Errorf("%w: %v", model.ErrStorageIO, err)
	}

	return cfg, nil
}

// Reset implements Store.
func (s *fileStore) Reset(ctx context.Context, userID string) (model.UserConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := model.DefaultConfig(userID)

	prev, hadPrev := s.configs[userID]
	s.configs[userID] = cfg
	if err := s.flushLocked(); err != nil {
		if hadPrev {
			s.configs[userID] = prev
		} else {
			delete(s.configs, userID)
		}
		return model.UserConfig{}, fmt.Errorf("%w: %v", model.ErrStorageIO, err)
	}

	return cfg, nil
}

// Close implements Store.
func (s *fileStore) Close() error {
	return nil
}

// flushLocked rewrites the whole document atomically. Callers must hold the
// write lock.
func (s *fileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.configs, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".configs-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}
