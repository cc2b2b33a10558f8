// Package tracewriters hands out a per-item diagnostic io.Writer, backed
// by a TTL cache so idle writers are closed off the worker's hot path: the
// cache's own background goroutine does the TTL eviction and closing. A
// writer is opened lazily by Writer on the caller's goroutine the first
// time an id is seen (or after it was evicted); later calls are a cache
// lookup. Built on the same ttlcache.Cache + OnEviction idiom used to
// expire whole worker pools by key, repurposed here for per-item writers.
package tracewriters

import (
	"context"
	"io"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Cache hands out one io.WriteCloser per item id, constructed lazily via
// newFile and evicted (and closed) after ttl of inactivity.
type Cache struct {
	c       *ttlcache.Cache[uint64, io.WriteCloser]
	newFile func(id uint64) (io.WriteCloser, error)
}

// New builds a Cache and starts its background eviction loop.
func New(ttl time.Duration, newFile func(id uint64) (io.WriteCloser, error)) *Cache {
	c := ttlcache.New(ttlcache.WithTTL[uint64, io.WriteCloser](ttl))
	c.OnEviction(func(_ context.Context, _ ttlcache.EvictionReason, item *ttlcache.Item[uint64, io.WriteCloser]) {
		_ = item.Value().Close()
	})
	go c.Start()
	return &Cache{c: c, newFile: newFile}
}

// Writer returns the writer for id, building one via newFile on first use
// and otherwise refreshing its TTL.
func (c *Cache) Writer(id uint64) (io.WriteCloser, error) {
	if item := c.c.Get(id); item != nil {
		return item.Value(), nil
	}
	w, err := c.newFile(id)
	if err != nil {
		return nil, err
	}
	c.c.Set(id, w, ttlcache.DefaultTTL)
	return w, nil
}

// Close stops the cache's background loop and closes every cached writer.
func (c *Cache) Close() {
	c.c.DeleteAll()
	c.c.Stop()
}
