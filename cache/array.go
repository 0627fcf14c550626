package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ArrayStore keeps entries in process memory.
type ArrayStore struct {
	items *ttlcache.Cache[string, []byte]
}

func NewArrayStore() *ArrayStore {
	return &ArrayStore{items: ttlcache.New[string, []byte]()}
}

func (s *ArrayStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := s.items.Get(key)
	if item == nil {
		return nil, false, nil
	}
	return item.Value(), true, nil
}

func (s *ArrayStore) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= Forever {
		ttl = ttlcache.NoTTL
	}
	s.items.Set(key, value, ttl)
	return nil
}

func (s *ArrayStore) Delete(_ context.Context, key string) error {
	s.items.Delete(key)
	return nil
}
