package cache

import (
	"context"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStorage is process-local session storage backed by ttlcache. Entries
// never expire; the cache is used for its concurrency-safe map semantics.
// Contents do not survive the process, so it suits tests and one-shot runs.
type MemoryStorage struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		cache: ttlcache.New(
			ttlcache.WithTTL[string, []byte](ttlcache.NoTTL),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

// Get implements session.Storage.
func (s *MemoryStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := s.cache.Get(key)
	if item == nil {
		return nil, false, nil
	}
	return append([]byte(nil), item.Value()...), true, nil
}

// Set implements session.Storage.
func (s *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, append([]byte(nil), value...), ttlcache.NoTTL)
	return nil
}

// Delete implements session.Storage.
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStorage) Len() int {
	return s.cache.Len()
}
