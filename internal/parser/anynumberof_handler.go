package parser

import "github.com/sunholo/sqlcore/internal/grammar"

// anyNumCtx unifies AnyNumberOf and AnySetOf's bookkeeping: both repeat a
// set of children in any order up to some bound, AnySetOf simply fixing
// MaxTimesPerElement at 1. elemCounts tracks how many times each child (by
// index into children) has matched so far, enforcing MaxTimesPerElement.
type anyNumCtx struct {
	children    []grammar.Grammar
	minTimes    int
	maxTimes    int
	maxPerElem  int
	terminators []grammar.Grammar
	allowGaps   bool

	elemCounts []int
	count      int
	pos        int
	lastEnd    int
	maxIdx     int
	checkpoint int

	tryCandidates []int
	tryIdx        int
	curElem       int

	parts       []MatchResult
	transparent []int
}

func newAnyNumCtx(f *frame) *anyNumCtx {
	ctx := &anyNumCtx{pos: f.pos, lastEnd: f.pos, maxIdx: f.maxIdx}
	switch g := f.g.(type) {
	case *grammar.AnyNumberOf:
		ctx.children = g.Children
		ctx.minTimes = g.MinTimes
		ctx.maxTimes = g.MaxTimes
		ctx.maxPerElem = g.MaxTimesPerElement
		ctx.terminators = g.Terminators
		ctx.allowGaps = g.AllowGaps
	case *grammar.AnySetOf:
		ctx.children = g.Children
		ctx.minTimes = g.MinTimes
		ctx.maxTimes = 0
		ctx.maxPerElem = 1
		ctx.terminators = g.Terminators
		ctx.allowGaps = g.AllowGaps
	}
	ctx.elemCounts = make([]int, len(ctx.children))
	return ctx
}

func isOptional(g *frame) bool {
	switch gg := g.g.(type) {
	case *grammar.AnyNumberOf:
		return gg.Optional
	case *grammar.AnySetOf:
		return gg.Optional
	}
	return false
}

// buildRound computes which children are still eligible (under their
// MaxTimesPerElement cap) and, of those, which could possibly match the
// token at ctx.pos per the simple-hint cache -- the same pruning OneOf
// applies, just recomputed every repetition since pos moves each time.
func (p *Parser) buildRound(ctx *anyNumCtx) []int {
	eligible := make([]grammar.Grammar, 0, len(ctx.children))
	eligibleIdx := make([]int, 0, len(ctx.children))
	for i, c := range ctx.children {
		if ctx.maxPerElem > 0 && ctx.elemCounts[i] >= ctx.maxPerElem {
			continue
		}
		eligible = append(eligible, c)
		eligibleIdx = append(eligibleIdx, i)
	}
	pruned := p.pruneChildren(eligible, ctx.pos)
	out := make([]int, 0, len(pruned))
	prunedSet := map[grammar.Grammar]bool{}
	for _, pr := range pruned {
		prunedSet[pr] = true
	}
	for i, c := range eligible {
		if prunedSet[c] {
			out = append(out, eligibleIdx[i])
		}
	}
	return out
}

// stepAnyNumberOf matches Children repeatedly in any order
// until no eligible child matches at the current position, a terminator
// fires, or MaxTimes is reached. Each repetition re-prunes by simple hint
// since the position (and therefore the admissible first token) changes
// every time.
func (p *Parser) stepAnyNumberOf(f *frame) step {
	ctx, ok := f.ctx.(*anyNumCtx)
	if !ok {
		ctx = newAnyNumCtx(f)
		ctx.checkpoint = p.checkpoint()
		f.ctx = ctx
	}

	if res, err, got := f.takeChildResult(); got {
		f.state = stInitial
		if err != nil {
			p.rollback(ctx.checkpoint)
			return finish(NoMatch(), err)
		}
		if res.Matched && !res.IsEmpty() {
			ctx.parts = append(ctx.parts, res)
			ctx.pos = res.Slice.Stop
			ctx.lastEnd = ctx.pos
			ctx.elemCounts[ctx.curElem]++
			ctx.count++
			ctx.tryCandidates = nil
		} else {
			ctx.tryIdx++
		}
	}

	for {
		if ctx.maxTimes > 0 && ctx.count >= ctx.maxTimes {
			return p.finishAnyNumberOf(f, ctx)
		}
		terms := combineTerminators(f.terms, ctx.terminators, false)
		if p.terminatorFires(terms, ctx.pos, ctx.maxIdx) {
			return p.finishAnyNumberOf(f, ctx)
		}

		if ctx.tryCandidates == nil {
			if ctx.allowGaps {
				var gapRes MatchResult
				ctx.pos = p.skipGaps(ctx.pos, ctx.maxIdx, &gapRes)
				ctx.transparent = append(ctx.transparent, gapRes.TransparentPositions...)
			}
			ctx.tryCandidates = p.buildRound(ctx)
			ctx.tryIdx = 0
		}

		if ctx.tryIdx >= len(ctx.tryCandidates) {
			return p.finishAnyNumberOf(f, ctx)
		}

		ctx.curElem = ctx.tryCandidates[ctx.tryIdx]
		terms = combineTerminators(f.terms, ctx.terminators, false)
		child := newFrame(ctx.children[ctx.curElem], ctx.pos, ctx.maxIdx, terms)
		f.state = stWaiting
		return pushChild(child)
	}
}

func (p *Parser) finishAnyNumberOf(f *frame, ctx *anyNumCtx) step {
	if ctx.count < ctx.minTimes {
		p.rollback(ctx.checkpoint)
		if isOptional(f) && ctx.minTimes == 0 {
			return finish(EmptyMatch(f.pos), nil)
		}
		return finish(NoMatch(), nil)
	}
	// The span ends after the last successful match: gaps skipped while
	// probing a round that then matched nothing belong to the caller.
	merged := mergeMatches(f.pos, ctx.lastEnd, ctx.parts)
	merged.TransparentPositions = append(merged.TransparentPositions, ctx.transparent...)
	return finish(merged, nil)
}
