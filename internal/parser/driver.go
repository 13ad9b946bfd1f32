package parser

import "github.com/sunholo/sqlcore/internal/grammar"

// frameState is a frame's position in the Initial -> WaitingForChild ->
// Combining -> Complete lifecycle. Combining is
// folded into WaitingForChild here: a handler that receives a child
// result either pushes another child (stays WaitingForChild) or finishes
// (reports done), so a separate state would never be distinguishable from
// the outside.
type frameState int

const (
	stInitial frameState = iota
	stWaiting
)

// frame is one entry on the parser's explicit stack: the state of one
// in-progress combinator call, replacing what would otherwise be a native
// Go call frame. ctx holds the combinator-specific bookkeeping (element
// index, delimiter count, best match so far, ...); its concrete type
// is chosen by the handler for f.g's Kind and never inspected outside
// that handler.
type frame struct {
	g      grammar.Grammar
	pos    int
	maxIdx int
	terms  []grammar.Grammar
	state  frameState
	ctx    any

	// childRes/childErr carry the just-completed child's outcome into the
	// parent handler on the next dispatch; set by the driver immediately
	// before re-visiting a WaitingForChild frame.
	childRes MatchResult
	childErr error
}

func newFrame(g grammar.Grammar, pos, maxIdx int, terms []grammar.Grammar) *frame {
	return &frame{g: g, pos: pos, maxIdx: maxIdx, terms: terms, state: stInitial}
}

// step is what a combinator handler returns: either push (a child frame
// to process before resuming this one) or, if done is true, the final
// (res, err) this frame resolves to.
type step struct {
	push *frame
	res  MatchResult
	err  error
	done bool
}

func pushChild(f *frame) step { return step{push: f} }
func finish(res MatchResult, err error) step { return step{res: res, err: err, done: true} }

// run is the iterative driver's entry point: it pushes one frame for root
// and loops until the stack empties, dispatching the top frame to its
// grammar-kind handler on every iteration. There are no native recursive
// calls in this loop regardless of how deep the grammar tree nests --
// depth is bounded only by the frame slice's capacity, not the Go call
// stack -- which is the whole reason this driver exists instead of a
// naive recursive-descent walk.
func (p *Parser) run(g grammar.Grammar, pos, maxIdx int, terms []grammar.Grammar) (MatchResult, error) {
	stack := []*frame{newFrame(g, pos, maxIdx, terms)}

	for {
		top := stack[len(stack)-1]
		s := p.dispatch(top)

		if s.done {
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return s.res, s.err
			}
			parent := stack[len(stack)-1]
			parent.childRes = s.res
			parent.childErr = s.err
			parent.state = stWaiting
			continue
		}

		stack = append(stack, s.push)
	}
}

// dispatch routes a frame to its grammar-kind handler. Meta grammars and
// every primitive matcher resolve in a single step; the combinators each
// own a multi-step handler function in their own file, mirroring the
// layout of internal/grammar.
func (p *Parser) dispatch(f *frame) step {
	switch f.g.Kind() {
	case grammar.KindEmpty, grammar.KindNothing, grammar.KindMissing, grammar.KindAnything,
		grammar.KindMeta, grammar.KindToken, grammar.KindStringParser, grammar.KindMultiStringParser,
		grammar.KindTypedParser, grammar.KindRegexParser:
		return finish(p.matchLeaf(f), nil)
	case grammar.KindRef:
		return p.stepRef(f)
	case grammar.KindSequence:
		return p.stepSequence(f)
	case grammar.KindOneOf:
		return p.stepOneOf(f)
	case grammar.KindAnyNumberOf, grammar.KindAnySetOf:
		return p.stepAnyNumberOf(f)
	case grammar.KindDelimited:
		return p.stepDelimited(f)
	case grammar.KindBracketed:
		return p.stepBracketed(f)
	default:
		return finish(NoMatch(), nil)
	}
}
