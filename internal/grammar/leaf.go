package grammar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sunholo/sqlcore/internal/token"
)

// EmptyG matches zero tokens unconditionally and always succeeds.
type EmptyG struct{}

func NewEmpty() *EmptyG { return &EmptyG{} }

func (g *EmptyG) Kind() Kind   { return KindEmpty }
func (g *EmptyG) String() string { return "Empty" }
func (g *EmptyG) Hash() uint64 {
	return memoizedHash(g, func() uint64 { return newHashBuilder(KindEmpty).sum() })
}
func (g *EmptyG) simpleHint(*HintCache) *SimpleHint {
	return &SimpleHint{RawValues: map[string]bool{}, TokenTypes: map[string]bool{}}
}

// NothingG never matches, unconditionally.
type NothingG struct{}

func NewNothing() *NothingG { return &NothingG{} }

func (g *NothingG) Kind() Kind   { return KindNothing }
func (g *NothingG) String() string { return "Nothing" }
func (g *NothingG) Hash() uint64 {
	return memoizedHash(g, func() uint64 { return newHashBuilder(KindNothing).sum() })
}
func (g *NothingG) simpleHint(*HintCache) *SimpleHint {
	return &SimpleHint{RawValues: map[string]bool{"\x00nothing\x00": true}}
}

// MissingG marks a grammar slot that was never filled in (e.g. a Ref whose
// name the dialect never registered). It behaves like NothingG for
// matching purposes but is distinguished for diagnostics.
type MissingG struct{ Name string }

func NewMissing(name string) *MissingG { return &MissingG{Name: name} }

func (g *MissingG) Kind() Kind      { return KindMissing }
func (g *MissingG) String() string { return fmt.Sprintf("Missing(%s)", g.Name) }
func (g *MissingG) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindMissing)
		b.writeString(g.Name)
		return b.sum()
	})
}
func (g *MissingG) simpleHint(*HintCache) *SimpleHint {
	return &SimpleHint{RawValues: map[string]bool{"\x00missing\x00": true}}
}

// AnythingG consumes arbitrary tokens until a terminator is reached or
// input is exhausted. It always admits any first token.
type AnythingG struct{}

func NewAnything() *AnythingG { return &AnythingG{} }

func (g *AnythingG) Kind() Kind      { return KindAnything }
func (g *AnythingG) String() string { return "Anything" }
func (g *AnythingG) Hash() uint64 {
	return memoizedHash(g, func() uint64 { return newHashBuilder(KindAnything).sum() })
}
func (g *AnythingG) simpleHint(*HintCache) *SimpleHint {
	return &SimpleHint{RawValues: map[string]bool{}, TokenTypes: map[string]bool{}}
}

// MetaKind distinguishes the zero-width meta markers a grammar can insert.
type MetaKind int

const (
	MetaIndent MetaKind = iota
	MetaDedent
)

func (k MetaKind) String() string {
	if k == MetaIndent {
		return "Indent"
	}
	return "Dedent"
}

// MetaG inserts a zero-width Indent/Dedent marker without consuming any
// token.
type MetaG struct{ MKind MetaKind }

func NewMeta(k MetaKind) *MetaG { return &MetaG{MKind: k} }

func (g *MetaG) Kind() Kind      { return KindMeta }
func (g *MetaG) String() string { return fmt.Sprintf("Meta(%s)", g.MKind) }
func (g *MetaG) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindMeta)
		b.writeUint64(uint64(g.MKind))
		return b.sum()
	})
}
func (g *MetaG) simpleHint(*HintCache) *SimpleHint {
	return &SimpleHint{RawValues: map[string]bool{}, TokenTypes: map[string]bool{}}
}

// TokenG matches a single token purely by its TokenType.
type TokenG struct {
	TokenType   token.Type
	SegmentType string
}

func NewToken(tt token.Type) *TokenG { return &TokenG{TokenType: tt} }

func (g *TokenG) Kind() Kind      { return KindToken }
func (g *TokenG) String() string { return fmt.Sprintf("Token(%s)", g.TokenType) }
func (g *TokenG) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindToken)
		b.writeString(string(g.TokenType))
		return b.sum()
	})
}
func (g *TokenG) simpleHint(*HintCache) *SimpleHint {
	return &SimpleHint{RawValues: map[string]bool{}, TokenTypes: map[string]bool{string(g.TokenType): true}}
}

// StringParser matches a single token whose uppercased raw text equals
// Template exactly.
type StringParser struct {
	Template    string
	TokenType   token.Type
	SegmentType string
}

func NewStringParser(template string, tt token.Type) *StringParser {
	return &StringParser{Template: strings.ToUpper(template), TokenType: tt}
}

func (g *StringParser) Kind() Kind      { return KindStringParser }
func (g *StringParser) String() string { return fmt.Sprintf("StringParser(%q)", g.Template) }
func (g *StringParser) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindStringParser)
		b.writeString(g.Template)
		b.writeString(string(g.TokenType))
		return b.sum()
	})
}
func (g *StringParser) simpleHint(*HintCache) *SimpleHint {
	return &SimpleHint{RawValues: map[string]bool{g.Template: true}, TokenTypes: map[string]bool{}}
}

// MultiStringParser matches a single token whose uppercased raw text
// equals any of Templates.
type MultiStringParser struct {
	Templates   []string
	TokenType   token.Type
	SegmentType string
}

func NewMultiStringParser(templates []string, tt token.Type) *MultiStringParser {
	up := make([]string, len(templates))
	for i, t := range templates {
		up[i] = strings.ToUpper(t)
	}
	return &MultiStringParser{Templates: up, TokenType: tt}
}

func (g *MultiStringParser) Kind() Kind { return KindMultiStringParser }
func (g *MultiStringParser) String() string {
	return fmt.Sprintf("MultiStringParser(%v)", g.Templates)
}
func (g *MultiStringParser) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindMultiStringParser)
		b.writeUint64(uint64(len(g.Templates)))
		for _, t := range g.Templates {
			b.writeString(t)
		}
		b.writeString(string(g.TokenType))
		return b.sum()
	})
}
func (g *MultiStringParser) simpleHint(*HintCache) *SimpleHint {
	raw := map[string]bool{}
	for _, t := range g.Templates {
		raw[t] = true
	}
	return &SimpleHint{RawValues: raw, TokenTypes: map[string]bool{}}
}

// TypedParser matches a single token by class-type membership (its
// TokenType or any of its InstanceTypes).
type TypedParser struct {
	ClassType   string
	SegmentType string
}

func NewTypedParser(classType string) *TypedParser { return &TypedParser{ClassType: classType} }

func (g *TypedParser) Kind() Kind      { return KindTypedParser }
func (g *TypedParser) String() string { return fmt.Sprintf("TypedParser(%s)", g.ClassType) }
func (g *TypedParser) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindTypedParser)
		b.writeString(g.ClassType)
		return b.sum()
	})
}
func (g *TypedParser) simpleHint(*HintCache) *SimpleHint {
	return &SimpleHint{RawValues: map[string]bool{}, TokenTypes: map[string]bool{g.ClassType: true}}
}

// RegexParser matches a single token whose raw text satisfies Pattern.
// RegexHints, if non-empty, lists the concrete token types the regex is
// known to be restricted to (the dialect author's declaration, since a
// compiled regexp alone can't always yield a useful first-token summary);
// an empty RegexHints forbids pruning.
type RegexParser struct {
	Pattern     *regexp.Regexp
	TokenType   token.Type
	RegexHints  []string
	SegmentType string
}

func NewRegexParser(pattern *regexp.Regexp, tt token.Type, hints ...string) *RegexParser {
	return &RegexParser{Pattern: pattern, TokenType: tt, RegexHints: hints}
}

func (g *RegexParser) Kind() Kind      { return KindRegexParser }
func (g *RegexParser) String() string { return fmt.Sprintf("RegexParser(%s)", g.Pattern.String()) }
func (g *RegexParser) Hash() uint64 {
	return memoizedHash(g, func() uint64 {
		b := newHashBuilder(KindRegexParser)
		b.writeString(g.Pattern.String())
		b.writeString(string(g.TokenType))
		return b.sum()
	})
}
func (g *RegexParser) simpleHint(*HintCache) *SimpleHint {
	if len(g.RegexHints) == 0 {
		return nil
	}
	types := map[string]bool{}
	for _, h := range g.RegexHints {
		types[h] = true
	}
	return &SimpleHint{RawValues: map[string]bool{}, TokenTypes: types}
}
