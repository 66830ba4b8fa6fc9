// Package settings caches per-guild policy rows in front of the database.
package settings

import (
	"context"
	"time"

	"frostmod/internal/storage"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const cacheCapacity = 1024

// Backend is the persistence surface the cache sits on.
type Backend interface {
	GetGuildSettings(ctx context.Context, guildID string) (storage.GuildSettings, bool, error)
	UpsertGuildSettings(ctx context.Context, settings storage.GuildSettings) error
}

// Store serves guild settings with a TTL cache. Misses are not cached: an
// unconfigured guild re-queries on every call. Upsert writes through without
// touching the cache, so a Get within the TTL may return pre-update data;
// staleness is bounded by the TTL.
type Store struct {
	backend Backend
	cache   *expirable.LRU[string, storage.GuildSettings]
}

func New(backend Backend, ttl time.Duration) *Store {
	return &Store{
		backend: backend,
		cache:   expirable.NewLRU[string, storage.GuildSettings](cacheCapacity, nil, ttl),
	}
}

func (s *Store) Get(ctx context.Context, guildID string) (storage.GuildSettings, bool, error) {
	if cached, ok := s.cache.Get(guildID); ok {
		return cached, true, nil
	}

	result, found, err := s.backend.GetGuildSettings(ctx, guildID)
	if err != nil {
		return storage.GuildSettings{}, false, err
	}
	if !found {
		return storage.GuildSettings{}, false, nil
	}
	s.cache.Add(guildID, result)
	return result, true, nil
}

func (s *Store) Upsert(ctx context.Context, settings storage.GuildSettings) error {
	return s.backend.UpsertGuildSettings(ctx, settings)
}

// Invalidate drops the cache entry so the next Get re-reads the database.
// Used by configuration commands that want their own change visible.
func (s *Store) Invalidate(guildID string) {
	s.cache.Remove(guildID)
}
