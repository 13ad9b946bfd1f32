package parser

import "github.com/sunholo/sqlcore/internal/grammar"

// oneOfCtx tracks which candidate is being tried and the best match
// found so far. Children are pruned by simple hint before any of
// them gets a frame, so a candidate that can't possibly start at pos never
// costs a child dispatch.
type oneOfCtx struct {
	candidates []grammar.Grammar
	terms      []grammar.Grammar
	effMax     int
	idx        int
	checkpoint int
	best       MatchResult
	haveBest   bool
}

// cleanliness grades a match for alternation ranking: a match whose
// materialised children contain no Unparsable is "clean" (1), one that
// does is "unclean" (0).
func cleanliness(r MatchResult) int {
	if containsUnparsable(r) {
		return 0
	}
	return 1
}

// betterMatch ranks two successful matches by (clean > unclean, then
// longer > shorter): cleanliness dominates, so a shorter fully-clean
// alternative always beats a longer one that had to swallow content into
// an Unparsable; length only decides between equally-clean matches.
// Declaration order wins when both keys are equal.
func betterMatch(res, best MatchResult) bool {
	if cleanliness(res) != cleanliness(best) {
		return cleanliness(res) > cleanliness(best)
	}
	return res.Slice.Len() > best.Slice.Len()
}

// stepOneOf tries every pruned candidate at the same position and keeps
// the best per betterMatch (cleanest, then longest -- not the first).
// Exclude, if present, is checked first; a successful Exclude match fails
// the whole OneOf without trying any candidate. Once some candidate has
// matched, a terminator firing at that match's end stops the search early
// -- no later candidate could extend past a terminator anyway.
func (p *Parser) stepOneOf(f *frame) step {
	g := f.g.(*grammar.OneOf)

	ctx, ok := f.ctx.(*oneOfCtx)
	if !ok {
		if g.Exclude != nil {
			excludeRes, _ := p.run(g.Exclude, f.pos, f.maxIdx, nil)
			if excludeRes.Matched && !excludeRes.IsEmpty() {
				if g.Optional {
					return finish(EmptyMatch(f.pos), nil)
				}
				return finish(NoMatch(), nil)
			}
		}
		ctx = &oneOfCtx{
			candidates: p.pruneChildren(g.Children, f.pos),
			terms:      combineTerminators(f.terms, g.Terminators, false),
			effMax:     f.maxIdx,
			checkpoint: p.checkpoint(),
		}
		if g.ParseMode == grammar.Greedy {
			ctx.effMax = p.trimToTerminator(f.pos, f.maxIdx, ctx.terms)
		}
		f.ctx = ctx
	}

	if res, err, got := f.takeChildResult(); got {
		f.state = stInitial
		p.rollback(ctx.checkpoint)
		if err != nil {
			return finish(NoMatch(), err)
		}
		if res.Matched && !res.IsEmpty() {
			if !ctx.haveBest || betterMatch(res, ctx.best) {
				ctx.best = res
				ctx.haveBest = true
			}
			if p.terminatorFires(ctx.terms, ctx.best.Slice.Stop, ctx.effMax) {
				return p.finishOneOf(ctx)
			}
		}
		ctx.idx++
	}

	if ctx.idx < len(ctx.candidates) {
		child := newFrame(ctx.candidates[ctx.idx], f.pos, f.maxIdx, ctx.terms)
		f.state = stWaiting
		return pushChild(child)
	}

	if ctx.haveBest {
		return p.finishOneOf(ctx)
	}
	if g.Optional {
		return finish(EmptyMatch(f.pos), nil)
	}
	if g.ParseMode == grammar.Greedy {
		tail := p.unparsableRegion("one of: "+g.String(), f.pos, ctx.effMax)
		if !tail.IsEmpty() {
			return finish(tail, nil)
		}
	}
	return finish(NoMatch(), nil)
}

func (p *Parser) finishOneOf(ctx *oneOfCtx) step {
	// Re-run the winning candidate's transparent collection, since the
	// per-attempt rollback undid it along with every losing attempt's.
	for _, idx := range ctx.best.TransparentPositions {
		p.collectTransparent(idx)
	}
	return finish(ctx.best, nil)
}
