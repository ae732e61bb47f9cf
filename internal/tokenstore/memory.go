package tokenstore

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const memoryCleanupInterval = 5 * time.Minute

// MemoryStore keeps tokens in process memory. Used when no Redis is
// configured and in tests.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, memoryCleanupInterval)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	v, found := s.cache.Get(key)
	if !found {
		return "", ErrNotFound
	}
	token, ok := v.(string)
	if !ok {
		s.cache.Delete(key)
		return "", ErrNotFound
	}
	return token, nil
}

// Set stores value; a zero ttl means no expiry
func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.cache.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *MemoryStore) Backend() string { return "memory" }
