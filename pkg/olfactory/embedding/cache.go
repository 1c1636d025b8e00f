package embedding

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of word pairs Cached remembers.
const DefaultCacheSize = 65536

type pairKey struct{ a, b string }

type cachedResult struct {
	sim float64
	ok  bool
}

// Cached memoises an Oracle. Training asks for the same (keyword, note) and
// (keyword, category) pairs across many records.
type Cached struct {
	inner Oracle
	cache *lru.Cache[pairKey, cachedResult]
}

// NewCached wraps inner with an LRU cache of the given size
// (DefaultCacheSize when size <= 0).
func NewCached(inner Oracle, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[pairKey, cachedResult](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: c}, nil
}

// Similarity implements Oracle. Pairs are cached unordered since similarity
// is symmetric.
func (c *Cached) Similarity(a, b string) (float64, bool) {
	key := pairKey{a, b}
	if a > b {
		key = pairKey{b, a}
	}
	if r, ok := c.cache.Get(key); ok {
		return r.sim, r.ok
	}
	sim, ok := c.inner.Similarity(a, b)
	c.cache.Add(key, cachedResult{sim: sim, ok: ok})
	return sim, ok
}

// Len returns the number of cached pairs.
func (c *Cached) Len() int { return c.cache.Len() }
