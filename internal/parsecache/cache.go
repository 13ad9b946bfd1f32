// Package parsecache memoises parser results keyed by grammar identity,
// position and the surrounding match context (terminators, max index).
// The same grammar at the same position can legitimately produce
// different results under different terminators or a different max
// index, so all of those must be part of the key.
package parsecache

import (
	"hash/fnv"
	"sync"
)

// Key identifies one memoised parse attempt. RawAtPosition guards against
// cache poisoning across distinct token streams sharing a Parser (it never
// happens in normal use -- one Parser, one token slice -- but costs
// nothing to include and catches a reused-cache-across-parses bug early).
type Key struct {
	Position        int
	GrammarHash     uint64
	RawAtPosition   string
	MaxIdx          int
	TerminatorsHash uint64
}

// HashTerminators combines a set of terminator grammar hashes into one
// order-independent value, since two Sequences built with terminators
// listed in a different order are, semantically, the same terminator set.
func HashTerminators(hashes []uint64) uint64 {
	var acc uint64
	for _, h := range hashes {
		// XOR is commutative/associative, giving an order-independent
		// combination; multiplying by a large odd constant first avoids
		// the classic "same multiset, different XOR" collision for small
		// sets of near-identical hashes.
		acc ^= h * 2654435761
	}
	return acc
}

// hashRaw is used only when building a Key from raw text too long to want
// to store verbatim as part of the map key's equality check; Key.RawAtPosition
// intentionally stores the literal string (small -- a handful of bytes)
// rather than a hash, to keep collisions impossible without adding a
// verification layer. hashRaw exists for callers that want a compact
// identifier for logging.
func hashRaw(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// HashRaw exposes hashRaw for diagnostic/logging callers.
func HashRaw(s string) uint64 { return hashRaw(s) }

// Value is one memoised parse outcome: the resulting node (as an opaque
// any to avoid an import cycle with the ast/parser packages), the token
// index the match ended at, and the transparent-token positions consumed
// inside the match, so a cache hit can re-mark them in the caller's
// collected-transparent-positions set without double-collecting.
type Value struct {
	Result                any
	EndPos                int
	Err                    error
	TransparentPositions  []int
}

// Stats tracks cache effectiveness for a parse run.
type Stats struct {
	Hits   int
	Misses int
}

// HitRate returns Hits / (Hits + Misses), or 0 when the cache has never
// been queried.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is a simple memoisation table, one per Parser run. It is safe for
// concurrent use since a future multi-goroutine driver (e.g. speculative
// parsing of alternative OneOf branches) could share it, even though the
// current driver is single-threaded per parse.
type Cache struct {
	mu    sync.Mutex
	table map[Key]Value
	stats Stats
}

// New builds an empty parse cache.
func New() *Cache {
	return &Cache{table: map[Key]Value{}}
}

// Get looks up key, recording a hit or miss in the running stats.
func (c *Cache) Get(key Key) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.table[key]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return v, ok
}

// Put stores key -> value, overwriting any previous entry.
func (c *Cache) Put(key Key, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table[key] = value
}

// Stats returns a snapshot of the cache's hit/miss counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Clear empties the cache and resets its stats, e.g. between independent
// parses of unrelated token streams.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = map[Key]Value{}
	c.stats = Stats{}
}

// Len reports the number of memoised entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.table)
}
