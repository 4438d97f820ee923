// Package temp keeps recently built rank indexes in memory.
package temp

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/kodekulture/gissa-server/game/rank"
	"github.com/kodekulture/gissa-server/repository"
)

// DefaultCapacity is used when New is given a non positive capacity.
const DefaultCapacity = 32

// Cache is a bounded in-memory IndexCache. When full, the oldest key is evicted.
// Misses fall through to next, and hits from next are kept in memory.
type Cache struct {
	mu       sync.Mutex // protects entries and order
	entries  map[string][]rank.Entry
	order    []string
	capacity int
	next     repository.IndexCache
}

var _ repository.IndexCache = (*Cache)(nil)

// New creates a cache holding at most capacity indexes. next may be nil.
func New(capacity int, next repository.IndexCache) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		entries:  make(map[string][]rank.Entry),
		capacity: capacity,
		next:     next,
	}
}

func (c *Cache) Get(ctx context.Context, key string) ([]rank.Entry, bool, error) {
	c.mu.Lock()
	entries, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return entries, true, nil
	}
	if c.next == nil {
		return nil, false, nil
	}

	entries, ok, err := c.next.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	c.store(key, entries)
	return entries, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, entries []rank.Entry) error {
	c.store(key, entries)
	if c.next == nil {
		return nil
	}
	return c.next.Put(ctx, key, entries)
}

// Len returns the number of indexes held in memory.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) store(key string, entries []rank.Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.order = append(c.order, key)
	}
	c.entries[key] = entries
	for len(c.order) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		log.Debug().Str("key", oldest).Msg("evicted rank index from memory")
	}
}
