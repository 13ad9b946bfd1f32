package parser

import (
	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/token"
)

// unparsableRegion wraps [start, stop) in an Unparsable node holding the
// raw tokens, so GREEDY-mode combinators can absorb content they could not
// structure without losing any bytes. Trailing transparent and end_of_file
// tokens are left outside the wrapped region -- they belong to the
// enclosing scope, not to the unparsed content. Returns an empty match if
// nothing parseable remains in the region.
func (p *Parser) unparsableRegion(expected string, start, stop int) MatchResult {
	if stop > len(p.tokens) {
		stop = len(p.tokens)
	}
	for stop > start {
		t := p.tokens[stop-1]
		if t.IsTransparent() || t.TokenType == token.EndOfFile || t.IsMeta() {
			stop--
			continue
		}
		break
	}
	if stop <= start {
		return EmptyMatch(start)
	}

	children := make([]*ast.Node, 0, stop-start)
	var transparent []int
	for i := start; i < stop; i++ {
		children = append(children, ast.NewTokenNode(p.tokens[i], i))
		if p.tokens[i].IsTransparent() {
			p.collectTransparent(i)
			transparent = append(transparent, i)
		}
	}
	slice := TokenSlice{Start: start, Stop: stop}
	node := ast.NewUnparsableNode(expected, children)
	return MatchResult{
		Matched:              true,
		Slice:                slice,
		ChildMatches:         []ChildMatch{{Slice: slice, Node: node}},
		TransparentPositions: transparent,
	}
}

// containsUnparsable reports whether any node already materialised inside
// r is (or contains) an Unparsable -- the "cleanliness" key that
// dominates alternation ranking.
func containsUnparsable(r MatchResult) bool {
	for _, cm := range r.ChildMatches {
		if cm.Node == nil {
			continue
		}
		found := false
		cm.Node.RecursiveCrawl(func(*ast.Node) { found = true }, ast.KindUnparsable)
		if found {
			return true
		}
	}
	return false
}
