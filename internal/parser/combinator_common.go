package parser

import "github.com/sunholo/sqlcore/internal/grammar"

// takeChildResult reports whether f is being re-dispatched after one of
// its pushed children just completed, returning that child's outcome.
// Every multi-step combinator handler starts with this check before
// deciding what to do next.
func (f *frame) takeChildResult() (MatchResult, error, bool) {
	if f.state != stWaiting {
		return MatchResult{}, nil, false
	}
	return f.childRes, f.childErr, true
}

// mergeMatches flattens a set of already-successful child MatchResults
// into one, spanning [start, stop) and concatenating their child matches,
// meta inserts and transparent-position logs. Used by Sequence/OneOf/
// AnyNumberOf/AnySetOf, none of which allocate their own ast.Node --
// only Ref/Bracketed/Delimited do that, at the point they wrap their
// matched content with a name.
func mergeMatches(start, stop int, parts []MatchResult) MatchResult {
	out := MatchResult{Matched: true, Slice: TokenSlice{Start: start, Stop: stop}}
	for _, r := range parts {
		out.ChildMatches = append(out.ChildMatches, r.ChildMatches...)
		out.InsertMeta = append(out.InsertMeta, r.InsertMeta...)
		out.TransparentPositions = append(out.TransparentPositions, r.TransparentPositions...)
	}
	return out
}

// combineTerminators merges a combinator's own declared terminators with
// whatever its parent already had in scope. resetTerminators true means
// "start a fresh terminator scope here" -- the parent's terminators no
// longer apply once this grammar's own (possibly empty) set takes over.
func combineTerminators(inherited, own []grammar.Grammar, reset bool) []grammar.Grammar {
	if reset {
		return own
	}
	if len(own) == 0 {
		return inherited
	}
	combined := make([]grammar.Grammar, 0, len(inherited)+len(own))
	combined = append(combined, inherited...)
	combined = append(combined, own...)
	return combined
}
