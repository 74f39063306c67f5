package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"marketpaline/internal/adapters/observability"
)

type entry struct {
	b       []byte
	expires time.Time
}

// Cache is the in-process stand-in for the Redis cache. Values are stored
// as JSON so readers never share memory with writers.
type Cache struct {
	mu  sync.Mutex
	m   map[string]entry
	now func() time.Time
}

func NewCache() *Cache { return &Cache{m: map[string]entry{}, now: time.Now} }

func (c *Cache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	e, ok := c.m[key]
	if ok && !e.expires.IsZero() && c.now().After(e.expires) {
		delete(c.m, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(e.b, dst)
}

func (c *Cache) Set(_ context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e := entry{b: b}
	if ttlSec > 0 {
		e.expires = c.now().Add(time.Duration(ttlSec) * time.Second)
	}
	c.mu.Lock()
	c.m[key] = e
	c.mu.Unlock()
	observability.ObserveCache("memory", "set")
	return nil
}

func (c *Cache) Del(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	observability.ObserveCache("memory", "del")
	return nil
}
