// Package reqcache memoizes aggregation results and deduplicates concurrent
// requests for the same key: a second request arriving while an identical one
// is in flight attaches to the first computation instead of recomputing.
// Entries are invalidated per project when a mutation completes; the cache is
// purely in-memory and never survives a restart.
package reqcache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key identifies one aggregation computation. Filter and Window are the
// canonical serializations from filter.Filter.Key and metrics.Window.Key.
type Key struct {
	ProjectID string
	Metric    string
	Filter    string
	Window    string
}

// String returns the flight key for deduplication.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s?%s@%s", k.ProjectID, k.Metric, k.Filter, k.Window)
}

type entry struct {
	value any
	gen   uint64
}

// Cache is safe for concurrent use by multiple logical requests.
type Cache struct {
	group singleflight.Group

	mu      sync.Mutex
	entries map[Key]entry
	gens    map[string]uint64 // projectID -> invalidation generation
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[Key]entry),
		gens:    make(map[string]uint64),
	}
}

// Get returns the cached value for key, or runs compute to produce it.
// At most one computation per key is in flight at a time; concurrent callers
// share the first caller's result. Errors are returned to every attached
// caller and never cached.
func (c *Cache) Get(ctx context.Context, key Key, compute func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	gen := c.gens[key.ProjectID]
	if e, ok := c.entries[key]; ok && e.gen == gen {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	// The generation is part of the flight key so requests issued after an
	// invalidation never attach to a computation started before it.
	flightKey := fmt.Sprintf("%s#%d", key.String(), gen)
	v, err, _ := c.group.Do(flightKey, func() (any, error) {
		v, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[key.ProjectID] == gen {
			c.entries[key] = entry{value: v, gen: gen}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Invalidate drops every cached entry for the project. The next Get for any
// of its keys recomputes.
func (c *Cache) Invalidate(projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[projectID]++
	for k := range c.entries {
		if k.ProjectID == projectID {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of live entries, for diagnostics and tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
