// Package dedup implements the bounded FIFO cache that makes flooding
// loop-safe.
//
// Every node records each message it accepts. A message found in the cache
// has already been delivered and re-flooded once, so it is dropped silently;
// this is what stops a broadcast from circulating forever. The cache holds a
// fixed number of entries and evicts strictly oldest-first, so memory stays
// bounded no matter how long the node runs.
package dedup

import "floodcast/internal/message"

// DefaultCapacity bounds the cache when no explicit size is configured.
const DefaultCapacity = 16

// Cache is a fixed-capacity, insertion-ordered record of recently accepted
// messages. Lookups never reorder entries, so eviction is strict FIFO.
//
// Cache is not safe for concurrent use; it is owned exclusively by the
// node's event loop.
type Cache struct {
	capacity int
	entries  []message.Message
}

// New creates an empty Cache. A capacity below 1 falls back to
// DefaultCapacity.
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{capacity: capacity}
}

// Push appends m. A message already present is left where it is, so a
// repeated push neither grows the cache nor evicts. When a genuinely new
// entry exceeds capacity the oldest entry is removed and returned with ok
// set.
func (c *Cache) Push(m message.Message) (evicted message.Message, ok bool) {
	if c.Contains(m) {
		return message.Message{}, false
	}
	c.entries = append(c.entries, m)
	if len(c.entries) > c.capacity {
		evicted = c.entries[0]
		c.entries = c.entries[1:]
		return evicted, true
	}
	return message.Message{}, false
}

// Contains reports whether m was pushed and has not yet been evicted.
// Messages compare by full value, text and id together.
func (c *Cache) Contains(m message.Message) bool {
	for _, e := range c.entries {
		if e == m {
			return true
		}
	}
	return false
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}
