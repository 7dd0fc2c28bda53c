package cache

import (
	"encoding/json"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"github.com/quillhq/quill/internal/domain"
)

// statsTTL keeps profile stats at most five minutes stale.
const statsTTL = 300

// Cache is a memcached-backed side cache for profile stats. A nil *Cache is
// valid and disables caching, and memcached errors are treated as misses.
type Cache struct {
	mc *memcache.Client
}

func New(addr string) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{mc: memcache.New(addr)}
}

func (c *Cache) GetStats(profileID uuid.UUID) (*domain.ProfileStats, bool) {
	if c == nil {
		return nil, false
	}
	item, err := c.mc.Get(statsKey(profileID))
	if err != nil {
		return nil, false
	}
	var stats domain.ProfileStats
	if err := json.Unmarshal(item.Value, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *Cache) SetStats(stats *domain.ProfileStats) {
	if c == nil {
		return
	}
	value, err := json.Marshal(stats)
	if err != nil {
		return
	}
	c.mc.Set(&memcache.Item{
		Key:        statsKey(stats.ProfileID),
		Value:      value,
		Expiration: statsTTL,
	})
}

func (c *Cache) InvalidateStats(profileID uuid.UUID) {
	if c == nil {
		return
	}
	c.mc.Delete(statsKey(profileID))
}

func statsKey(profileID uuid.UUID) string {
	return fmt.Sprintf("profile:stats:%s", profileID)
}
