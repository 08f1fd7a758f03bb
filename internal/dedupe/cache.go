// Package dedupe remembers recently indexed article documents so the worker
// skips feed items the collector publishes again on its next poll.
package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key  string
	seen time.Time
}

// Cache is a bounded set of document ids with a TTL. When full, the least
// recently marked id is evicted first.
type Cache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache holding at most capacity ids for ttl each.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// IsSeen reports whether key was marked within the TTL. It does not mark it.
func (c *Cache) IsSeen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	if c.now().Sub(el.Value.(entry).seen) > c.ttl {
		c.remove(el)
		return false
	}
	return true
}

// MarkSeen records key. Marking an existing key refreshes it.
func (c *Cache) MarkSeen(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.items[key]; ok {
		el.Value = entry{key: key, seen: now}
		c.order.MoveToBack(el)
	} else {
		c.items[key] = c.order.PushBack(entry{key: key, seen: now})
	}
	c.compact(now)
}

// Len returns the number of ids currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)
	for el := c.order.Front(); el != nil; el = c.order.Front() {
		if len(c.items) <= c.capacity && !el.Value.(entry).seen.Before(cutoff) {
			return
		}
		c.remove(el)
	}
}

func (c *Cache) remove(el *list.Element) {
	delete(c.items, el.Value.(entry).key)
	c.order.Remove(el)
}
