package indexing

import (
	"sync"

	"github.com/armon/go-radix"
	"github.com/google/uuid"
)

// PrefixCacheStats tracks cache effectiveness.
type PrefixCacheStats struct {
	Hits    int64
	Misses  int64
	Resets  int64
	Entries int
}

// PrefixCache remembers match sets by folded query for one row generation.
// A row containing a query also contains every prefix of it, so the set of
// the longest cached prefix bounds the rows a longer query must test.
type PrefixCache struct {
	mu         sync.Mutex
	generation uuid.UUID
	tree       *radix.Tree
	maxEntries int
	stats      PrefixCacheStats
}

// NewPrefixCache returns a cache holding at most maxEntries queries.
// A non-positive limit defaults to 256.
func NewPrefixCache(maxEntries int) *PrefixCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &PrefixCache{tree: radix.New(), maxEntries: maxEntries}
}

// resetLocked drops everything. Called with mu held.
func (c *PrefixCache) resetLocked(gen uuid.UUID) {
	c.tree = radix.New()
	c.generation = gen
	c.stats.Resets++
}

// Lookup returns the set cached for the longest prefix of folded, along with
// that prefix. Sets from another generation are never returned.
func (c *PrefixCache) Lookup(gen uuid.UUID, folded string) (*RowSet, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.resetLocked(gen)
	}
	key, value, ok := c.tree.LongestPrefix(folded)
	if !ok || key == "" {
		c.stats.Misses++
		return nil, "", false
	}
	c.stats.Hits++
	return value.(*RowSet), key, true
}

// Store records the match set for folded. The whole tree is dropped when
// it would exceed the entry limit.
func (c *PrefixCache) Store(gen uuid.UUID, folded string, set *RowSet) {
	if folded == "" || set == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.resetLocked(gen)
	}
	if _, exists := c.tree.Get(folded); !exists && c.tree.Len() >= c.maxEntries {
		c.resetLocked(gen)
	}
	c.tree.Insert(folded, set)
}

// Stats returns a copy of the counters.
func (c *PrefixCache) Stats() PrefixCacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = c.tree.Len()
	return s
}
