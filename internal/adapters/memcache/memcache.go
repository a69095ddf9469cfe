// Package memcache provides an in-process interfaces.CacheProvider backed by
// sturdyc, the sharded cache go-repository-cache builds on.
package memcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-media-credit/pkg/interfaces"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("memcache: miss")

const (
	defaultCapacity = 10000
	defaultShards   = 10
	evictionPercent = 10
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache stores values with a per-entry TTL.
type Cache struct {
	mu     sync.RWMutex
	client *sturdyc.Client[entry]
	ttl    time.Duration
	now    func() time.Time
}

// Option configures the cache.
type Option func(*Cache)

// WithNow overrides the clock used for expiry checks.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a cache whose entries live at most ttl.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &Cache{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.client = c.newClient()
	return c
}

func (c *Cache) newClient() *sturdyc.Client[entry] {
	return sturdyc.New[entry](defaultCapacity, defaultShards, c.ttl, evictionPercent)
}

func (c *Cache) Get(_ context.Context, key string) (any, error) {
	c.mu.RLock()
	item, ok := c.client.Get(key)
	c.mu.RUnlock()
	if !ok {
		return nil, ErrMiss
	}
	if !item.expiresAt.IsZero() && !c.now().Before(item.expiresAt) {
		return nil, ErrMiss
	}
	return item.value, nil
}

// Set stores value. A ttl of zero or above the cache ttl uses the cache ttl.
func (c *Cache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}
	c.mu.RLock()
	c.client.Set(key, entry{value: value, expiresAt: c.now().Add(ttl)})
	c.mu.RUnlock()
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.RLock()
	c.client.Delete(key)
	c.mu.RUnlock()
	return nil
}

func (c *Cache) Clear(context.Context) error {
	c.mu.Lock()
	c.client = c.newClient()
	c.mu.Unlock()
	return nil
}

var _ interfaces.CacheProvider = (*Cache)(nil)
