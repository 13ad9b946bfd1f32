package parser

import (
	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/grammar"
)

// bracketedCtx walks the MatchingOpen -> MatchingContent -> MatchingClose
// state machine. Once the opening bracket matches, the lexer's
// pre-computed MatchingBracketIdx pins the closing position, and the
// content elements parse with that as their hard max index -- which is
// what stops an interior grammar from consuming past the close even when
// further brackets nest inside.
type bracketedCtx struct {
	phase int // 0 open, 1 content, 2 close

	pairIdx  int
	pair     grammar.BracketPair
	openIdx  int
	closeIdx int

	elemIdx     int
	pos         int
	checkpoint  int
	parts       []MatchResult
	transparent []int
}

const (
	brOpen = iota
	brContent
	brClose
)

func (p *Parser) stepBracketed(f *frame) step {
	g := f.g.(*grammar.Bracketed)

	ctx, ok := f.ctx.(*bracketedCtx)
	if !ok {
		ctx = &bracketedCtx{pos: f.pos, checkpoint: p.checkpoint()}
		f.ctx = ctx
	}

	if res, err, got := f.takeChildResult(); got {
		f.state = stInitial
		if err != nil {
			p.rollback(ctx.checkpoint)
			return finish(NoMatch(), err)
		}
		switch ctx.phase {
		case brOpen:
			return p.bracketOpenResult(f, g, ctx, res)
		case brContent:
			return p.bracketContentResult(f, g, ctx, res)
		default:
			return p.bracketCloseResult(f, ctx, res)
		}
	}

	if ctx.pairIdx >= len(g.Pairs) {
		return finish(NoMatch(), nil)
	}
	ctx.pair = g.Pairs[ctx.pairIdx]
	f.state = stWaiting
	return pushChild(newFrame(ctx.pair.Open, f.pos, f.maxIdx, nil))
}

// bracketOpenResult pins the close position from the open token's
// pre-computed pair index, or moves on to the next bracket pair (then
// fails outright) when the open grammar doesn't match here. A paired
// index pointing outside the token slice is a structural violation of the
// pre-computation contract and surfaces as a ParseError rather than a
// routine non-match.
func (p *Parser) bracketOpenResult(f *frame, g *grammar.Bracketed, ctx *bracketedCtx, res MatchResult) step {
	if !res.Matched || res.IsEmpty() {
		ctx.pairIdx++
		if ctx.pairIdx >= len(g.Pairs) {
			return finish(NoMatch(), nil)
		}
		ctx.pair = g.Pairs[ctx.pairIdx]
		f.state = stWaiting
		return pushChild(newFrame(ctx.pair.Open, f.pos, f.maxIdx, nil))
	}

	ctx.openIdx = res.Slice.Start
	mb := p.tokens[ctx.openIdx].MatchingBracketIdx
	if mb == nil {
		// Unbalanced input: the lexer found no partner for this bracket.
		p.rollback(ctx.checkpoint)
		return finish(NoMatch(), nil)
	}
	if *mb <= ctx.openIdx || *mb >= len(p.tokens) {
		return finish(NoMatch(), errBadBracketPrecompute(ctx.openIdx))
	}
	if *mb >= f.maxIdx {
		// The pair closes beyond this frame's allowed region.
		p.rollback(ctx.checkpoint)
		return finish(NoMatch(), nil)
	}
	ctx.closeIdx = *mb
	ctx.parts = append(ctx.parts, res)
	ctx.pos = res.Slice.Stop

	ctx.phase = brContent
	return p.bracketNextElement(f, g, ctx)
}

// bracketNextElement pushes the next content element (the content is an
// implicit sequence parsed strictly inside the bracket pair, with a fresh
// terminator scope -- the close position is the only boundary that
// matters), or moves to the close phase once elements are exhausted.
func (p *Parser) bracketNextElement(f *frame, g *grammar.Bracketed, ctx *bracketedCtx) step {
	if g.AllowGaps {
		var gapRes MatchResult
		ctx.pos = p.skipGaps(ctx.pos, ctx.closeIdx, &gapRes)
		ctx.transparent = append(ctx.transparent, gapRes.TransparentPositions...)
	}

	if ctx.elemIdx >= len(g.Elements) {
		if ctx.pos != ctx.closeIdx {
			if g.ParseMode == grammar.Greedy {
				tail := p.unparsableRegion("nothing more before closing bracket", ctx.pos, ctx.closeIdx)
				if !tail.IsEmpty() {
					ctx.parts = append(ctx.parts, tail)
				}
				ctx.pos = ctx.closeIdx
			} else {
				// Content didn't reach the recorded close: fail so an outer
				// alternative can retry with a different content grammar.
				p.rollback(ctx.checkpoint)
				return finish(NoMatch(), nil)
			}
		}
		ctx.phase = brClose
		f.state = stWaiting
		return pushChild(newFrame(ctx.pair.Close, ctx.closeIdx, ctx.closeIdx+1, nil))
	}

	elem := g.Elements[ctx.elemIdx]
	f.state = stWaiting
	return pushChild(newFrame(elem.Grammar, ctx.pos, ctx.closeIdx, nil))
}

func (p *Parser) bracketContentResult(f *frame, g *grammar.Bracketed, ctx *bracketedCtx, res MatchResult) step {
	elem := g.Elements[ctx.elemIdx]
	switch {
	case !res.Matched, res.IsEmpty():
		if !elem.Optional {
			if g.ParseMode == grammar.Greedy {
				tail := p.unparsableRegion("content matching "+elem.Grammar.String(), ctx.pos, ctx.closeIdx)
				if !tail.IsEmpty() {
					ctx.parts = append(ctx.parts, tail)
				}
				ctx.pos = ctx.closeIdx
				ctx.elemIdx = len(g.Elements)
				return p.bracketNextElement(f, g, ctx)
			}
			p.rollback(ctx.checkpoint)
			return finish(NoMatch(), nil)
		}
	default:
		ctx.parts = append(ctx.parts, res)
		ctx.pos = res.Slice.Stop
	}
	ctx.elemIdx++
	return p.bracketNextElement(f, g, ctx)
}

func (p *Parser) bracketCloseResult(f *frame, ctx *bracketedCtx, res MatchResult) step {
	if !res.Matched || res.IsEmpty() {
		// The pre-computed pair says a closer sits here; the pair grammar
		// disagreeing means this Bracketed wanted a different bracket kind.
		p.rollback(ctx.checkpoint)
		return finish(NoMatch(), nil)
	}
	ctx.parts = append(ctx.parts, res)

	merged := mergeMatches(f.pos, ctx.closeIdx+1, ctx.parts)
	merged.TransparentPositions = append(merged.TransparentPositions, ctx.transparent...)

	node := ast.NewBracketedNode(merged.Apply(p.tokens), ctx.pair.BracketPersists)
	return finish(MatchResult{
		Matched:              true,
		Slice:                merged.Slice,
		ChildMatches:         []ChildMatch{{Slice: merged.Slice, Node: node}},
		TransparentPositions: merged.TransparentPositions,
	}, nil)
}
