package schema

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fpta-go/fpta/internal/fptype"
	"github.com/fpta-go/fpta/internal/kvengine"
)

// cacheKey pairs a table's identity with the csn its record was loaded at,
// so a schema change naturally misses rather than requiring an explicit
// invalidation pass.
type cacheKey struct {
	shove fptype.Shove
	csn   uint64
}

// Cache memoizes Deserialize results across repeated Load calls for the
// same table at the same csn, avoiding redundant catalog reads/decodes
// within a long-lived process. Backed by
// github.com/hashicorp/golang-lru/v2, plain LRU: unlike
// internal/handlecache's dbi handles, schema records have no "hot" access
// skew worth ARC's extra bookkeeping.
type Cache struct {
	entries *lru.Cache[cacheKey, *Table]
}

// NewCache builds a schema cache holding up to capacity table records.
func NewCache(capacity int) (*Cache, error) {
	if capacity <= 0 {
		capacity = 64
	}
	c, err := lru.New[cacheKey, *Table](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: c}, nil
}

// LoadCached is Load with memoization: entries are looked up by the
// table's current csn, which the caller has learned from HandleCache or
// from a prior RefreshName.
func (c *Cache) LoadCached(txn kvengine.Txn, tableShove fptype.Shove, knownCSN uint64) (*Table, error) {
	key := cacheKey{shove: tableShove, csn: knownCSN}
	if t, ok := c.entries.Get(key); ok {
		return t, nil
	}
	t, err := Load(txn, tableShove)
	if err != nil {
		return nil, err
	}
	c.entries.Add(cacheKey{shove: tableShove, csn: t.CSN}, t)
	return t, nil
}
