package parser

import (
	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/grammar"
	"github.com/sunholo/sqlcore/internal/token"
)

// matchLeaf resolves every grammar kind that never needs a child frame:
// the identity/failure markers, Anything, Meta, and the four primitive
// token matchers. Each either succeeds by claiming zero or one token, or
// fails outright -- there is no bookkeeping to carry across steps, so
// these never appear as a frame's ctx.
func (p *Parser) matchLeaf(f *frame) MatchResult {
	switch g := f.g.(type) {
	case *grammar.EmptyG:
		return EmptyMatch(f.pos)
	case *grammar.NothingG, *grammar.MissingG:
		return NoMatch()
	case *grammar.AnythingG:
		return p.matchAnything(f)
	case *grammar.MetaG:
		kind := "Indent"
		if g.MKind == grammar.MetaDedent {
			kind = "Dedent"
		}
		return MatchResult{
			Matched:    true,
			Slice:      TokenSlice{Start: f.pos, Stop: f.pos},
			InsertMeta: []MetaInsert{{Idx: f.pos, Kind: kind}},
		}
	case *grammar.TokenG:
		if f.pos < f.maxIdx && f.pos < len(p.tokens) && p.tokens[f.pos].TokenType == g.TokenType {
			return MatchResult{Matched: true, Slice: TokenSlice{Start: f.pos, Stop: f.pos + 1}}
		}
		return NoMatch()
	case *grammar.StringParser:
		if f.pos < f.maxIdx && f.pos < len(p.tokens) && p.tokens[f.pos].RawUpper() == g.Template {
			return p.singleToken(f.pos, g.TokenType)
		}
		return NoMatch()
	case *grammar.MultiStringParser:
		if f.pos < f.maxIdx && f.pos < len(p.tokens) {
			raw := p.tokens[f.pos].RawUpper()
			for _, tmpl := range g.Templates {
				if raw == tmpl {
					return p.singleToken(f.pos, g.TokenType)
				}
			}
		}
		return NoMatch()
	case *grammar.TypedParser:
		if f.pos < f.maxIdx && f.pos < len(p.tokens) && p.tokens[f.pos].HasClassType(g.ClassType) {
			return MatchResult{Matched: true, Slice: TokenSlice{Start: f.pos, Stop: f.pos + 1}}
		}
		return NoMatch()
	case *grammar.RegexParser:
		if f.pos < f.maxIdx && f.pos < len(p.tokens) && g.Pattern.MatchString(p.tokens[f.pos].Raw) {
			return p.singleToken(f.pos, g.TokenType)
		}
		return NoMatch()
	default:
		return NoMatch()
	}
}

// singleToken claims exactly the token at pos. When the matching grammar
// declares a token type different from what the lexer assigned (a word
// recognised as a keyword, say), the result carries a re-typed leaf node
// so the materialised tree reports the grammar's classification.
func (p *Parser) singleToken(pos int, tt token.Type) MatchResult {
	slice := TokenSlice{Start: pos, Stop: pos + 1}
	tok := p.tokens[pos]
	if tt == "" || tt == tok.TokenType {
		return MatchResult{Matched: true, Slice: slice}
	}
	node := ast.NewRetypedTokenNode(tok.Raw, tt, pos)
	return MatchResult{Matched: true, Slice: slice, ChildMatches: []ChildMatch{{Slice: slice, Node: node}}}
}

// matchAnything consumes every token from f.pos up to the first
// terminator (checked at depth zero only, so a bracketed terminator
// lookalike doesn't cut the match short) or f.maxIdx, whichever comes
// first. Zero consumption is a valid (empty) match, not a failure --
// Anything always "succeeds", it just may claim nothing.
func (p *Parser) matchAnything(f *frame) MatchResult {
	stop := p.trimToTerminator(f.pos, f.maxIdx, f.terms)
	return MatchResult{Matched: true, Slice: TokenSlice{Start: f.pos, Stop: stop}}
}
