package parser

import (
	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/grammar"
	"github.com/sunholo/sqlcore/internal/parsecache"
)

// refCtx carries a Ref frame's cache key across its single child dispatch,
// computed once so the driver never hashes terminators twice for the same
// call.
type refCtx struct {
	key       parsecache.Key
	cacheable bool
}

// stepRef resolves Name against the dialect (via the resolver the
// registry installed on the Ref at construction time) and matches the
// target grammar, consulting and populating the parse cache at this call
// boundary -- Refs are where the cache pays off, since a named rule
// reached from two different parents at the same position is exactly the
// redundant work memoisation exists to avoid. A non-empty match is
// wrapped in a named ast node when the dialect declares a segment type
// for the rule; otherwise the child's result passes through untouched.
func (p *Parser) stepRef(f *frame) step {
	g := f.g.(*grammar.Ref)

	if res, err, got := f.takeChildResult(); got {
		ctx := f.ctx.(*refCtx)
		if err != nil {
			return finish(NoMatch(), err)
		}
		if !res.Matched {
			if g.Optional {
				res = EmptyMatch(f.pos)
			}
			if ctx.cacheable {
				p.cache.Put(ctx.key, parsecache.Value{Result: res, EndPos: f.pos})
			}
			return finish(res, nil)
		}

		// Strip trailing transparent tokens from the reported end: the
		// surrounding combinator's gap-handling, not this rule's, decides
		// who owns whitespace after the match.
		for res.Slice.Stop > res.Slice.Start && p.tokens[res.Slice.Stop-1].IsTransparent() {
			res.Slice.Stop--
		}

		wrapped := res
		if segType, ok := p.dialect.GetSegmentType(g.Name); ok && segType != "" && !res.IsEmpty() {
			node := ast.NewRefNode(g.Name, segType, ast.NewSequenceNode(res.Apply(p.tokens)))
			wrapped = MatchResult{
				Matched:              true,
				Slice:                res.Slice,
				ChildMatches:         []ChildMatch{{Slice: res.Slice, Node: node}},
				TransparentPositions: res.TransparentPositions,
			}
		}
		if ctx.cacheable {
			p.cache.Put(ctx.key, parsecache.Value{
				Result:               wrapped,
				EndPos:               wrapped.Slice.Stop,
				TransparentPositions: wrapped.TransparentPositions,
			})
		}
		return finish(wrapped, nil)
	}

	if g.Exclude != nil {
		excludeRes, _ := p.run(g.Exclude, f.pos, f.maxIdx, nil)
		if excludeRes.Matched && !excludeRes.IsEmpty() {
			if g.Optional {
				return finish(EmptyMatch(f.pos), nil)
			}
			return finish(NoMatch(), nil)
		}
	}

	target := g.Resolve()
	if target == nil {
		if g.Optional {
			return finish(EmptyMatch(f.pos), nil)
		}
		return finish(NoMatch(), errUnresolvedRef(g.Name, f.pos))
	}

	terms := combineTerminators(f.terms, g.Terminators, g.ResetTerminators)

	var rawAt string
	if f.pos < len(p.tokens) {
		rawAt = p.tokens[f.pos].Raw
	}
	key := parsecache.Key{
		Position:        f.pos,
		GrammarHash:     g.Hash(),
		RawAtPosition:   rawAt,
		MaxIdx:          f.maxIdx,
		TerminatorsHash: parsecache.HashTerminators(hashAll(terms)),
	}
	if v, ok := p.cache.Get(key); ok {
		for _, idx := range v.TransparentPositions {
			p.collectTransparent(idx)
		}
		if mr, ok := v.Result.(MatchResult); ok {
			return finish(mr, v.Err)
		}
	}

	f.ctx = &refCtx{key: key, cacheable: true}
	f.state = stWaiting
	return pushChild(newFrame(target, f.pos, f.maxIdx, terms))
}

func hashAll(gs []grammar.Grammar) []uint64 {
	out := make([]uint64, len(gs))
	for i, g := range gs {
		out[i] = g.Hash()
	}
	return out
}
