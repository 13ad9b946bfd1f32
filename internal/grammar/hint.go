package grammar

import "sync"

// SimpleHint is a first-token admissibility summary: the set of raw values
// (uppercased) and/or token types that could possibly start a match of
// some grammar. A nil hint means "too complex to summarise, attempt a full
// match." An empty-but-non-nil hint (both sets empty) means "admits any
// first token unconditionally" -- e.g. Anything, or an Empty/Optional
// grammar that can match zero tokens.
type SimpleHint struct {
	RawValues  map[string]bool
	TokenTypes map[string]bool
}

// CanMatchToken reports whether a token with the given uppercased raw text
// and class types could possibly be the start of a match, per the hint's
// admissibility rule: raw membership, or type-set intersection, or both
// sets being empty (admit unconditionally).
func (h *SimpleHint) CanMatchToken(rawUpper string, classTypes []string) bool {
	if h == nil {
		return true
	}
	if len(h.RawValues) == 0 && len(h.TokenTypes) == 0 {
		return true
	}
	if h.RawValues[rawUpper] {
		return true
	}
	for _, t := range classTypes {
		if h.TokenTypes[t] {
			return true
		}
	}
	return false
}

// HintCache memoises SimpleHint computation per grammar identity. Shared
// across a parse run (typically one per Parser), since a dialect's
// grammars are static once built.
type HintCache struct {
	mu      sync.Mutex
	hints   map[Grammar]*SimpleHint
	visited map[Grammar]bool
}

// NewHintCache builds an empty hint cache.
func NewHintCache() *HintCache {
	return &HintCache{hints: map[Grammar]*SimpleHint{}, visited: map[Grammar]bool{}}
}

// Hint returns g's memoised SimpleHint, computing it on first access.
// Hinter is the subset of Grammar implementations that know how to
// summarise themselves; combinators whose hint depends on children call
// back into Hint recursively, with cycle-guarding against a Ref loop.
func (c *HintCache) Hint(g Grammar) *SimpleHint {
	c.mu.Lock()
	if h, ok := c.hints[g]; ok {
		c.mu.Unlock()
		return h
	}
	if c.visited[g] {
		// Recursive grammar (e.g. a Ref cycle) -- can't summarise without
		// risking infinite recursion, so treat as complex.
		c.mu.Unlock()
		return nil
	}
	c.visited[g] = true
	c.mu.Unlock()

	hinter, ok := g.(hinter)
	var h *SimpleHint
	if ok {
		h = hinter.simpleHint(c)
	}

	c.mu.Lock()
	c.hints[g] = h
	delete(c.visited, g)
	c.mu.Unlock()
	return h
}

// hinter is implemented by every grammar kind that can compute its own
// SimpleHint, given a cache to recurse through for children.
type hinter interface {
	simpleHint(c *HintCache) *SimpleHint
}

func unionHints(hints ...*SimpleHint) *SimpleHint {
	raw := map[string]bool{}
	types := map[string]bool{}
	for _, h := range hints {
		if h == nil {
			return nil
		}
		for k := range h.RawValues {
			raw[k] = true
		}
		for k := range h.TokenTypes {
			types[k] = true
		}
	}
	return &SimpleHint{RawValues: raw, TokenTypes: types}
}
