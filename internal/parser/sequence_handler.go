package parser

import (
	"github.com/sunholo/sqlcore/internal/grammar"
)

// sequenceCtx is a Sequence frame's per-combinator bookkeeping: which
// element is next, the cursor advancing across gaps and matched
// elements, and the checkpoint this frame's transparent-token
// collections roll back to on failure.
type sequenceCtx struct {
	elemIdx     int
	pos         int
	maxIdx      int
	checkpoint  int
	started     bool
	parts       []MatchResult
	transparent []int
}

// stepSequence matches Elements in declaration order.
// Gaps between elements are skipped and collected
// when AllowGaps is set; an optional element matching Empty is simply
// skipped, a required one matching Empty or failing fails the whole
// sequence and rolls back any transparent tokens tentatively collected.
// After the first element matches, the remaining max index is re-trimmed
// to the nearest terminator at bracket depth zero that is not itself the
// start of a later element. In Greedy mode, any
// remainder between the last matched element and max_idx is wrapped in an
// Unparsable node instead of being left for the caller.
func (p *Parser) stepSequence(f *frame) step {
	g := f.g.(*grammar.Sequence)

	ctx, ok := f.ctx.(*sequenceCtx)
	if !ok {
		ctx = &sequenceCtx{pos: f.pos, maxIdx: f.maxIdx, checkpoint: p.checkpoint()}
		f.ctx = ctx
	}

	if res, err, got := f.takeChildResult(); got {
		f.state = stInitial
		if err != nil {
			p.rollback(ctx.checkpoint)
			return finish(NoMatch(), err)
		}
		elem := g.Elements[ctx.elemIdx]
		switch {
		case !res.Matched, res.IsEmpty():
			if !elem.Optional {
				if g.ParseMode == grammar.Greedy && ctx.started {
					return p.finishSequenceGreedy(f, g, ctx)
				}
				p.rollback(ctx.checkpoint)
				return finish(NoMatch(), nil)
			}
		default:
			ctx.parts = append(ctx.parts, res)
			ctx.pos = res.Slice.Stop
			if !ctx.started {
				ctx.started = true
				terms := combineTerminators(f.terms, g.Terminators, g.ResetTerminators)
				if len(terms) > 0 {
					later := laterElements(g.Elements, ctx.elemIdx+1)
					ctx.maxIdx = p.trimToTerminatorWithElements(ctx.pos, f.maxIdx, terms, later)
				}
			}
		}
		ctx.elemIdx++
	}

	if ctx.elemIdx >= len(g.Elements) {
		if g.ParseMode == grammar.Greedy {
			return p.finishSequenceGreedy(f, g, ctx)
		}
		merged := mergeMatches(f.pos, ctx.pos, ctx.parts)
		merged.TransparentPositions = append(merged.TransparentPositions, ctx.transparent...)
		return finish(merged, nil)
	}

	if g.AllowGaps {
		var gapRes MatchResult
		ctx.pos = p.skipGaps(ctx.pos, ctx.maxIdx, &gapRes)
		ctx.transparent = append(ctx.transparent, gapRes.TransparentPositions...)
	}

	elem := g.Elements[ctx.elemIdx]
	terms := combineTerminators(f.terms, g.Terminators, g.ResetTerminators)
	child := newFrame(elem.Grammar, ctx.pos, ctx.maxIdx, terms)
	f.state = stWaiting
	return pushChild(child)
}

// finishSequenceGreedy closes out a Greedy-mode sequence: whatever sits
// between the cursor and the (already terminator-trimmed) max index is
// wrapped as Unparsable rather than failing or being handed back.
func (p *Parser) finishSequenceGreedy(f *frame, g *grammar.Sequence, ctx *sequenceCtx) step {
	var gapRes MatchResult
	ctx.pos = p.skipGaps(ctx.pos, ctx.maxIdx, &gapRes)
	ctx.transparent = append(ctx.transparent, gapRes.TransparentPositions...)

	tail := p.unparsableRegion("one of: "+g.String(), ctx.pos, ctx.maxIdx)
	if !tail.IsEmpty() {
		ctx.parts = append(ctx.parts, tail)
		ctx.pos = tail.Slice.Stop
	}
	merged := mergeMatches(f.pos, ctx.pos, ctx.parts)
	merged.TransparentPositions = append(merged.TransparentPositions, ctx.transparent...)
	return finish(merged, nil)
}

func laterElements(elems []grammar.OptionalElement, from int) []grammar.Grammar {
	if from > len(elems) {
		from = len(elems)
	}
	var out []grammar.Grammar
	for _, e := range elems[from:] {
		out = append(out, e.Grammar)
	}
	return out
}
