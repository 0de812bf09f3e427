package client

import (
	"time"

	"github.com/coocood/freecache"
)

// Cache stores API responses keyed by endpoint path
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Invalidate(keys ...string)
}

// FreeCache is a Cache backed by an in-memory freecache instance
type FreeCache struct {
	cache *freecache.Cache
	ttl   time.Duration
}

const defaultCacheSize = 10 * 1024 * 1024 // 10 MB

func NewFreeCache(ttl time.Duration) *FreeCache {
	return &FreeCache{
		cache: freecache.NewCache(defaultCacheSize),
		ttl:   ttl,
	}
}

func (c *FreeCache) Get(key string) ([]byte, bool) {
	value, err := c.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *FreeCache) Set(key string, value []byte) {
	// a failed set only means the next get will go to the server
	_ = c.cache.Set([]byte(key), value, int(c.ttl.Seconds()))
}

func (c *FreeCache) Invalidate(keys ...string) {
	for _, key := range keys {
		c.cache.Del([]byte(key))
	}
}
