package telemetry

import (
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/topic"
)

// ConfigLookup resolves a topic to its write configuration.
// *topic.Registry satisfies it.
type ConfigLookup interface {
	Lookup(name string) (topic.Config, bool)
}

// Cache holds the latest reading per configured topic.
//
// Entries are published as whole *Entry values that are never modified
// afterwards, so readers see either the old or the new reading and never a
// mix. There is no eviction: an entry lives until the process exits.
type Cache struct {
	lookup ConfigLookup

	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewCache creates an empty cache resolving topics through lookup.
func NewCache(lookup ConfigLookup) *Cache {
	return &Cache{
		lookup:  lookup,
		entries: make(map[string]*Entry),
	}
}

// Upsert replaces the entry for name with value observed at ts.
// Returns false, leaving the cache unchanged, if name is not configured.
func (c *Cache) Upsert(name string, value float64, ts time.Time) bool {
	cfg, ok := c.lookup.Lookup(name)
	if !ok {
		return false
	}

	entry := &Entry{
		Topic:     name,
		Value:     value,
		Config:    cfg,
		Timestamp: ts,
	}

	c.mu.Lock()
	c.entries[name] = entry
	c.mu.Unlock()

	return true
}

// Configured reports whether name has a configuration.
func (c *Cache) Configured(name string) bool {
	_, ok := c.lookup.Lookup(name)
	return ok
}

// Get returns a copy of the entry for name.
func (c *Cache) Get(name string) (Entry, bool) {
	c.mu.RLock()
	entry, ok := c.entries[name]
	c.mu.RUnlock()

	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Snapshot returns a copy of every entry, sorted by topic.
// The lock is released before returning so callers may take their time.
func (c *Cache) Snapshot() []Entry {
	c.mu.RLock()
	out := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		out = append(out, *entry)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Topic < out[j].Topic
	})
	return out
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
