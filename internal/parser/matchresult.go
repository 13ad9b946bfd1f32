package parser

import (
	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/token"
)

// TokenSlice is a half-open range of token indices, the parser's analogue
// of source.Slice for byte ranges.
type TokenSlice struct {
	Start, Stop int
}

func (s TokenSlice) Len() int      { return s.Stop - s.Start }
func (s TokenSlice) IsEmpty() bool { return s.Stop <= s.Start }

// MetaInsert anchors a zero-width Indent/Dedent marker at a token index
// within a MatchResult's span.
type MetaInsert struct {
	Idx  int
	Kind string
}

// ChildMatch anchors an already-materialised child node at the span it
// covers. Sequence/Delimited/Bracketed handlers build these as they match
// each element; MatchResult.Apply later walks the full span and fills any
// uncovered token with a bare leaf node.
type ChildMatch struct {
	Slice TokenSlice
	Node  *ast.Node
}

// MatchResult is the deferred representation every grammar handler
// produces: a span of tokens plus whatever has already been decided about
// its internal structure (child matches, meta inserts), without yet
// paying the cost of walking every bare token in the span. Apply performs
// that walk once, producing the final flat child-node list a combinator
// wraps (or doesn't) into its own ast.Node.
type MatchResult struct {
	Matched      bool
	Slice        TokenSlice
	ChildMatches []ChildMatch
	InsertMeta   []MetaInsert

	// TransparentPositions lists every whitespace/newline/comment token
	// index consumed as part of this match, whether or not it is also
	// covered by a ChildMatch -- used by the checkpoint/rollback mechanism
	// and stashed in the parse cache so a cache hit can re-mark them
	// without double-collecting.
	TransparentPositions []int
}

// EmptyMatch is the canonical zero-width successful match: matched, empty
// slice, nothing inserted.
func EmptyMatch(at int) MatchResult {
	return MatchResult{Matched: true, Slice: TokenSlice{Start: at, Stop: at}}
}

// NoMatch is the canonical failed match.
func NoMatch() MatchResult { return MatchResult{Matched: false} }

// IsEmpty reports whether this is a successful match that consumed no
// tokens and inserted nothing.
func (m MatchResult) IsEmpty() bool {
	return m.Matched && m.Slice.IsEmpty() && len(m.ChildMatches) == 0 && len(m.InsertMeta) == 0
}

// Apply materialises this match's span into a flat list of ast.Node
// children: at each token index within [Slice.Start, Slice.Stop), it
// emits (in priority order) a meta insert, the covering ChildMatch's node
// (recursively a no-op since ChildMatch nodes are already materialised),
// or -- if nothing claims that index -- a bare leaf node for the token
// itself. ChildMatches whose slice exactly repeats an already-emitted
// sibling are skipped, so a child matched twice by overlapping handlers
// (e.g. a Ref re-matching what its caller already consumed) never
// duplicates output.
func (m MatchResult) Apply(tokens []token.Token) []*ast.Node {
	metaAt := map[int][]string{}
	for _, mi := range m.InsertMeta {
		metaAt[mi.Idx] = append(metaAt[mi.Idx], mi.Kind)
	}

	childAt := map[int]ChildMatch{}
	seenSlices := map[TokenSlice]bool{}
	for _, cm := range m.ChildMatches {
		if seenSlices[cm.Slice] {
			continue
		}
		seenSlices[cm.Slice] = true
		childAt[cm.Slice.Start] = cm
	}

	var out []*ast.Node
	i := m.Slice.Start
	for i < m.Slice.Stop {
		for _, k := range metaAt[i] {
			out = append(out, ast.NewMetaNode(k, i))
		}
		if cm, ok := childAt[i]; ok && cm.Slice.Stop <= m.Slice.Stop {
			out = append(out, cm.Node)
			delete(childAt, i)
			if cm.Slice.Len() > 0 {
				i = cm.Slice.Stop
			}
			// A zero-length child (e.g. a wrapped meta-only match) emits
			// without consuming; the loop re-visits i for the token itself.
			continue
		}
		if i < len(tokens) {
			out = append(out, ast.NewTokenNode(tokens[i], i))
		}
		i++
	}
	// Trailing meta inserts anchored exactly at the end of the span (e.g.
	// a Dedent closing out a block) still need to surface even though the
	// walk above never visits Slice.Stop itself.
	for _, k := range metaAt[m.Slice.Stop] {
		out = append(out, ast.NewMetaNode(k, m.Slice.Stop))
	}
	return out
}
