// Package cache provides the named key-value stores backing memoized admin data.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"admin-rbac/config"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

// Forever stores an item without expiry.
const Forever time.Duration = 0

// Store is a key-value cache backend.
type Store interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value for ttl; Forever keeps it until deleted.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Remember returns the cached value of key, or runs builder and stores its result.
// Concurrent misses each run builder; the last Put wins.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, builder func() (T, error)) (T, error) {
	var value T

	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return value, fmt.Errorf("cache get %s: %w", key, err)
	}
	if ok {
		if err := json.Unmarshal(raw, &value); err != nil {
			return value, fmt.Errorf("cache decode %s: %w", key, err)
		}
		return value, nil
	}

	value, err = builder()
	if err != nil {
		return value, err
	}
	raw, err = json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.Put(ctx, key, raw, ttl); err != nil {
		return value, fmt.Errorf("cache put %s: %w", key, err)
	}
	return value, nil
}

// Manager hands out stores by name: "file", "array" or "redis".
type Manager struct {
	cfg config.CacheConfig
	fs  afero.Fs

	mu     sync.Mutex
	stores map[string]Store
}

func NewManager(cfg config.CacheConfig, fs afero.Fs) *Manager {
	return &Manager{cfg: cfg, fs: fs, stores: make(map[string]Store)}
}

// Register installs s under name, replacing any store created before.
func (m *Manager) Register(name string, s Store) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores[name] = s
}

func (m *Manager) Store(name string) (Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[name]; ok {
		return s, nil
	}

	var s Store
	switch name {
	case "file":
		s = NewFileStore(m.fs, m.cfg.Path)
	case "array":
		s = NewArrayStore()
	case "redis":
		s = NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     m.cfg.Redis.Addr,
			Password: m.cfg.Redis.Password,
			DB:       m.cfg.Redis.DB,
		}))
	default:
		return nil, fmt.Errorf("cache store [%s] is not defined", name)
	}
	m.stores[name] = s
	return s, nil
}
