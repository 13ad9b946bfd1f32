package lexer

import (
	"regexp"
	"strings"

	"github.com/sunholo/sqlcore/internal/token"
)

// MatcherKind distinguishes the three primitive ways a Matcher recognises
// text at the current lex position.
type MatcherKind int

const (
	// KindLiteral matches a single fixed string exactly.
	KindLiteral MatcherKind = iota
	// KindClass matches a maximal run of runes accepted by a predicate
	// (used for word/number/whitespace-style matchers).
	KindClass
	// KindRegex matches via a compiled, anchored regular expression.
	KindRegex
	// KindFunc matches via an arbitrary scan function, for shapes no regex
	// expresses cleanly (e.g. nested block comments).
	KindFunc
)

// Matcher is one entry in a dialect's lexer matcher table: a name, the
// token type it produces, and the recognition rule itself. Dialects order
// their matcher tables so that the first matcher whose quick-reject passes
// and whose match succeeds wins -- mirroring a priority-ordered lexer
// generator without needing one.
type Matcher struct {
	Name      string
	TokenType token.Type
	Kind      MatcherKind

	// Literal is used when Kind == KindLiteral.
	Literal string

	// Regex is used when Kind == KindRegex. It must be anchored with ^ so
	// FindStringIndex only ever reports a match starting at position 0 of
	// the remaining input.
	Regex *regexp.Regexp

	// ClassPredicate is used when Kind == KindClass: tryMatch scans
	// forward while it holds, starting from the current byte.
	ClassPredicate func(b byte) bool

	// MatchFunc is used when Kind == KindFunc: it returns the length of the
	// match starting at byte i of s, or 0 for no match.
	MatchFunc func(s string, i int) int

	// FirstBytes, if non-nil, is a quick-reject set: the matcher is only
	// attempted if the next byte is a member. An empty/nil set means the
	// matcher is always attempted.
	FirstBytes map[byte]bool

	// Subdivider splits a successful match's raw text on interior
	// boundaries (e.g. block comments split into one token per line so
	// indentation inside a comment remains its own token). Nil for
	// matchers that never subdivide.
	Subdivider *Matcher
	// TrimPostSubdivide trims each subdivided piece's leading text (e.g.
	// leading whitespace) into a separate, preceding token.
	TrimPostSubdivide *regexp.Regexp

	// InstanceTypes are extra class tags attached to every token this
	// matcher produces, beyond TokenType itself.
	InstanceTypes []string

	Normaliser *token.Normaliser
}

// quickReject reports whether the matcher should not even be attempted at
// the given next byte.
func (m Matcher) quickReject(next byte) bool {
	if len(m.FirstBytes) == 0 {
		return false
	}
	return !m.FirstBytes[next]
}

// tryMatch attempts to recognise a token starting at byte offset i in s.
// Returns the matched raw text and true on success.
func (m Matcher) tryMatch(s string, i int) (string, bool) {
	if i >= len(s) {
		return "", false
	}
	if m.quickReject(s[i]) {
		return "", false
	}
	switch m.Kind {
	case KindLiteral:
		if strings.HasPrefix(s[i:], m.Literal) {
			return m.Literal, true
		}
		return "", false
	case KindRegex:
		loc := m.Regex.FindStringIndex(s[i:])
		if loc == nil || loc[0] != 0 || loc[1] == 0 {
			return "", false
		}
		return s[i : i+loc[1]], true
	case KindClass:
		j := i
		for j < len(s) && m.ClassPredicate(s[j]) {
			j++
		}
		if j == i {
			return "", false
		}
		return s[i:j], true
	case KindFunc:
		n := m.MatchFunc(s, i)
		if n <= 0 {
			return "", false
		}
		return s[i : i+n], true
	default:
		return "", false
	}
}

// LiteralMatcher builds a matcher for a single fixed-string token, e.g. a
// piece of punctuation.
func LiteralMatcher(name string, tt token.Type, lit string) Matcher {
	m := Matcher{Name: name, TokenType: tt, Kind: KindLiteral, Literal: lit}
	if lit != "" {
		m.FirstBytes = map[byte]bool{lit[0]: true}
	}
	return m
}

// ClassMatcher builds a matcher that scans forward while pred holds.
func ClassMatcher(name string, tt token.Type, pred func(b byte) bool) Matcher {
	return Matcher{Name: name, TokenType: tt, Kind: KindClass, ClassPredicate: pred}
}

// RegexMatcher builds a matcher from an already-anchored regular
// expression.
func RegexMatcher(name string, tt token.Type, re *regexp.Regexp) Matcher {
	return Matcher{Name: name, TokenType: tt, Kind: KindRegex, Regex: re}
}

// FuncMatcher builds a matcher from an arbitrary scan function returning
// the match length at a position (0 for no match).
func FuncMatcher(name string, tt token.Type, fn func(s string, i int) int) Matcher {
	return Matcher{Name: name, TokenType: tt, Kind: KindFunc, MatchFunc: fn}
}
