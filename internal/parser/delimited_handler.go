package parser

import (
	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/grammar"
)

// delimitedCtx alternates between two phases: matching an element (by
// trying every pruned element candidate, ranked as OneOf ranks) and
// matching the delimiter. A matched delimiter is held "pending" rather
// than committed, because whether it belongs in the list depends on what
// follows: a further element commits it, end-of-list commits it only
// under AllowTrailing.
type delimitedCtx struct {
	phaseDelimiter bool

	candidates []grammar.Grammar
	tryIdx     int
	best       MatchResult
	haveBest   bool

	pos        int
	maxIdx     int
	checkpoint int

	elemTerms []grammar.Grammar

	parts       []MatchResult
	transparent []int

	delims  int
	lastEnd int

	pending           *MatchResult
	pendingEnd        int
	pendingCheckpoint int

	phaseCheckpoint int
	candCheckpoint  int
	phaseGap        []int
}

// stepDelimited matches a delimiter-separated list. The delimiter is
// removed from the inherited terminators for the scope of this list (the
// commas inside `IN (a, b, c)` must not end an outer comma-list), and the
// working max index is trimmed to the nearest remaining terminator at
// bracket depth zero before any element is attempted.
func (p *Parser) stepDelimited(f *frame) step {
	g := f.g.(*grammar.Delimited)

	ctx, ok := f.ctx.(*delimitedCtx)
	if !ok {
		inherited := removeGrammar(f.terms, g.Delimiter)
		base := combineTerminators(inherited, g.Terminators, false)
		ctx = &delimitedCtx{
			pos:        f.pos,
			maxIdx:     p.trimToTerminator(f.pos, f.maxIdx, base),
			checkpoint: p.checkpoint(),
			elemTerms:  append(append([]grammar.Grammar{}, base...), g.Delimiter),
			lastEnd:    f.pos,
		}
		f.ctx = ctx
	}

	if res, err, got := f.takeChildResult(); got {
		f.state = stInitial
		if err != nil {
			p.rollback(ctx.checkpoint)
			return finish(NoMatch(), err)
		}
		if ctx.phaseDelimiter {
			return p.delimiterResult(f, g, ctx, res)
		}
		return p.elementResult(f, g, ctx, res)
	}

	return p.advanceDelimited(f, g, ctx)
}

// advanceDelimited starts the next phase attempt: it skips gaps (held
// tentatively until the phase commits), then pushes either the next
// element candidate or the delimiter.
func (p *Parser) advanceDelimited(f *frame, g *grammar.Delimited, ctx *delimitedCtx) step {
	if ctx.candidates == nil {
		ctx.phaseCheckpoint = p.checkpoint()
		ctx.phaseGap = nil
		if g.AllowGaps {
			var gapRes MatchResult
			ctx.pos = p.skipGaps(ctx.pos, ctx.maxIdx, &gapRes)
			ctx.phaseGap = gapRes.TransparentPositions
		}
		if ctx.pos >= ctx.maxIdx {
			return p.finishDelimited(f, g, ctx)
		}
		if ctx.phaseDelimiter {
			ctx.candidates = []grammar.Grammar{g.Delimiter}
		} else {
			ctx.candidates = p.pruneChildren(g.Elements, ctx.pos)
		}
		ctx.tryIdx = 0
		ctx.best = MatchResult{}
		ctx.haveBest = false
	}

	if ctx.tryIdx >= len(ctx.candidates) {
		if ctx.phaseDelimiter {
			// Delimiter candidates exhausted without a match: list is done.
			p.rollback(ctx.phaseCheckpoint)
			ctx.pos = ctx.lastEnd
			return p.finishDelimited(f, g, ctx)
		}
		return p.elementPhaseFailed(f, g, ctx)
	}

	ctx.candCheckpoint = p.checkpoint()
	child := newFrame(ctx.candidates[ctx.tryIdx], ctx.pos, ctx.maxIdx, ctx.elemTerms)
	f.state = stWaiting
	return pushChild(child)
}

// elementResult folds one element candidate's outcome into the phase: a
// better match per betterMatch (cleanest, then longest) replaces the best
// so far; when every candidate has been tried the winner (if any) is
// committed along with any pending delimiter.
func (p *Parser) elementResult(f *frame, g *grammar.Delimited, ctx *delimitedCtx, res MatchResult) step {
	p.rollback(ctx.candCheckpoint)
	if res.Matched && !res.IsEmpty() {
		if !ctx.haveBest || betterMatch(res, ctx.best) {
			ctx.best = res
			ctx.haveBest = true
		}
	}
	ctx.tryIdx++

	if ctx.tryIdx < len(ctx.candidates) {
		return p.advanceDelimited(f, g, ctx)
	}
	if !ctx.haveBest {
		return p.elementPhaseFailed(f, g, ctx)
	}

	if ctx.pending != nil {
		ctx.parts = append(ctx.parts, *ctx.pending)
		ctx.pending = nil
		ctx.delims++
	}
	// Re-mark the winning candidate's transparent collections, undone by
	// the per-candidate rollback above.
	for _, idx := range ctx.best.TransparentPositions {
		p.collectTransparent(idx)
	}
	ctx.transparent = append(ctx.transparent, ctx.phaseGap...)
	ctx.parts = append(ctx.parts, ctx.best)
	ctx.pos = ctx.best.Slice.Stop
	ctx.lastEnd = ctx.pos

	ctx.phaseDelimiter = true
	ctx.candidates = nil
	return p.advanceDelimited(f, g, ctx)
}

// elementPhaseFailed handles "no element matched here": with a pending
// delimiter that becomes either a kept trailing delimiter (AllowTrailing)
// or a rolled-back non-member; without one the list simply ends.
func (p *Parser) elementPhaseFailed(f *frame, g *grammar.Delimited, ctx *delimitedCtx) step {
	p.rollback(ctx.phaseCheckpoint)
	if ctx.pending != nil {
		if g.AllowTrailing {
			ctx.parts = append(ctx.parts, *ctx.pending)
			ctx.delims++
			ctx.lastEnd = ctx.pendingEnd
			ctx.pending = nil
		} else {
			p.rollback(ctx.pendingCheckpoint)
			ctx.pending = nil
		}
	}
	ctx.pos = ctx.lastEnd
	return p.finishDelimited(f, g, ctx)
}

// delimiterResult records a matched delimiter as pending and returns to
// the element phase; a failed delimiter match ends the list at the last
// element.
func (p *Parser) delimiterResult(f *frame, g *grammar.Delimited, ctx *delimitedCtx, res MatchResult) step {
	if !res.Matched || res.IsEmpty() {
		p.rollback(ctx.phaseCheckpoint)
		ctx.pos = ctx.lastEnd
		return p.finishDelimited(f, g, ctx)
	}

	ctx.pendingCheckpoint = ctx.phaseCheckpoint
	pend := res
	ctx.pending = &pend
	ctx.pendingEnd = res.Slice.Stop
	ctx.transparent = append(ctx.transparent, ctx.phaseGap...)
	ctx.pos = res.Slice.Stop

	ctx.phaseDelimiter = false
	ctx.candidates = nil
	return p.advanceDelimited(f, g, ctx)
}

// finishDelimited closes the list: too few delimiters is a failure, an
// empty list is an Empty match (the enclosing combinator decides whether
// that is fatal), and anything else is wrapped in a DelimitedList node.
func (p *Parser) finishDelimited(f *frame, g *grammar.Delimited, ctx *delimitedCtx) step {
	if len(ctx.parts) == 0 {
		p.rollback(ctx.checkpoint)
		return finish(EmptyMatch(f.pos), nil)
	}
	if ctx.delims < g.MinDelimiters {
		p.rollback(ctx.checkpoint)
		return finish(NoMatch(), nil)
	}

	merged := mergeMatches(f.pos, ctx.lastEnd, ctx.parts)
	merged.TransparentPositions = append(merged.TransparentPositions, ctx.transparent...)

	node := ast.NewDelimitedListNode(merged.Apply(p.tokens))
	return finish(MatchResult{
		Matched:              true,
		Slice:                merged.Slice,
		ChildMatches:         []ChildMatch{{Slice: merged.Slice, Node: node}},
		TransparentPositions: merged.TransparentPositions,
	}, nil)
}

// removeGrammar filters g (by structural hash) out of a terminator set --
// how a Delimited shields its own delimiter from an inherited terminator
// list.
func removeGrammar(terms []grammar.Grammar, g grammar.Grammar) []grammar.Grammar {
	if g == nil {
		return terms
	}
	target := g.Hash()
	out := make([]grammar.Grammar, 0, len(terms))
	for _, t := range terms {
		if t.Hash() == target {
			continue
		}
		out = append(out, t)
	}
	return out
}
