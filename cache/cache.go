package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/poiesic/boox/result"
)

// Stats is a point-in-time view of cache usage.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// ResultCache is safe for concurrent use.
type ResultCache struct {
	mu         sync.RWMutex
	entries    map[string][]*result.SearchResult
	generation uint64
	logger     *slog.Logger
	hits       atomic.Int64
	misses     atomic.Int64
}

// New creates an empty cache. A nil logger means slog.Default().
func New(logger *slog.Logger) *ResultCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultCache{
		entries: make(map[string][]*result.SearchResult),
		logger:  logger.With("component", "result-cache"),
	}
}

// Get returns the cached ranking for a normalized query.
// The returned slice is a copy; the results it points to are shared.
func (c *ResultCache) Get(query string) ([]*result.SearchResult, bool) {
	c.mu.RLock()
	results, ok := c.entries[query]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "results", len(results))
	return append([]*result.SearchResult(nil), results...), true
}

// Put stores the full ranking for a normalized query, replacing any previous entry.
func (c *ResultCache) Put(query string, results []*result.SearchResult) {
	stored := append(make([]*result.SearchResult, 0, len(results)), results...)

	c.mu.Lock()
	c.entries[query] = stored
	c.mu.Unlock()
}

// Generation identifies the current cache epoch. Every Reset starts a new one.
func (c *ResultCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// PutIfCurrent stores results only if no Reset happened since generation was
// read. It reports whether the entry was stored.
func (c *ResultCache) PutIfCurrent(query string, results []*result.SearchResult, generation uint64) bool {
	stored := append(make([]*result.SearchResult, 0, len(results)), results...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	c.entries[query] = stored
	return true
}

// Reset drops every entry. Hit and miss counters are kept.
func (c *ResultCache) Reset() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string][]*result.SearchResult)
	c.generation++
	c.mu.Unlock()

	if n > 0 {
		c.logger.Debug("cache reset", "entries_dropped", n)
	}
}

// Len returns the number of cached queries.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports entry count and lifetime hits and misses.
func (c *ResultCache) Stats() Stats {
	return Stats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
