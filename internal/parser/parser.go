// Package parser implements the iterative parser driver: an explicit
// frame stack that replaces recursion when walking a dialect's grammar
// tree against a token slice, plus the MatchResult deferred-AST model
// (matchresult.go) handlers build up as they run. Terminator propagation,
// bracket-aware max-index trimming, best-match alternation and the
// transparent-token checkpoint discipline all live here.
package parser

import (
	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/grammar"
	"github.com/sunholo/sqlcore/internal/parsecache"
	"github.com/sunholo/sqlcore/internal/token"
)

// Dialect is the minimal surface the parser consumes. internal/dialect
// provides the concrete implementation; the parser only ever sees this
// interface so a caller can substitute its own dialect without the parser
// importing it.
type Dialect interface {
	GetGrammar(name string) (grammar.Grammar, bool)
	GetSegmentType(name string) (string, bool)
	RootRuleName() string
}

// IndentConfig configures how the driver's Meta(Indent/Dedent) insertion
// behaves; it is forwarded to handlers unchanged. The core matching
// algorithm doesn't care about indent width -- that's a formatter
// concern downstream -- so the only field the driver itself reads is
// TemplateBlocksIndent's twin already applied at lex time; this struct
// exists so a caller configuring lexer.New and parser.New shares one
// source of truth instead of two independent bools drifting apart.
type IndentConfig struct {
	TemplateBlocksIndent bool
}

// PruningStats counts how often the simple-hint cache filtered children
// before a combinator attempted to match them, and how many survived --
// surfaced for the CLI's stats output and for tests asserting pruning
// actually happens.
type PruningStats struct {
	Calls int
	Kept  int
}

// Parser drives one parse of a fixed token slice against a dialect's
// grammar. It is strictly single-threaded and owns all of its mutable
// state: the parse cache, the hint cache, the transparent-token
// checkpoint set, and pruning counters.
type Parser struct {
	tokens  []token.Token
	dialect Dialect
	indent  IndentConfig

	hints *grammar.HintCache
	cache *parsecache.Cache

	collected      map[int]bool
	collectedOrder []int

	pruning PruningStats
}

// New builds a Parser over tokens (as produced by lexer.Lex, bracket pairs
// already pre-computed) against dialect.
func New(tokens []token.Token, dialect Dialect, indent IndentConfig) *Parser {
	return &Parser{
		tokens:    tokens,
		dialect:   dialect,
		indent:    indent,
		hints:     grammar.NewHintCache(),
		cache:     parsecache.New(),
		collected: map[int]bool{},
	}
}

// CacheStats returns the parse cache's hit/miss counters for this Parser
// instance.
func (p *Parser) CacheStats() parsecache.Stats { return p.cache.Stats() }

// PruningStats returns how many times the simple-hint cache was consulted
// to prune a combinator's children, and how many children survived.
func (p *Parser) PruningStats() PruningStats { return p.pruning }

// CallRuleAsRoot parses the dialect's root rule (FileSegment, or whatever
// RootRuleName names) over the full token slice and materialises the
// result into a Node tree.
func (p *Parser) CallRuleAsRoot() (*ast.Node, error) {
	mr, err := p.CallRuleAsRootMatchResult()
	if err != nil {
		return nil, err
	}
	children := mr.Apply(p.tokens)
	// Anything the root didn't claim (trailing whitespace, the end_of_file
	// token) still belongs in the tree so leaf concatenation reproduces the
	// source byte-for-byte.
	for i := mr.Slice.Stop; i < len(p.tokens); i++ {
		children = append(children, ast.NewTokenNode(p.tokens[i], i))
	}
	rootName := p.dialect.RootRuleName()
	if segType, ok := p.dialect.GetSegmentType(rootName); ok && segType != "" {
		return ast.NewRefNode(rootName, segType, ast.NewSequenceNode(children)), nil
	}
	return ast.NewSequenceNode(children), nil
}

// CallRuleAsRootMatchResult is CallRuleAsRoot without the final
// materialisation step, for callers that want to inspect or further
// combine MatchResults before paying that cost.
func (p *Parser) CallRuleAsRootMatchResult() (MatchResult, error) {
	rootName := p.dialect.RootRuleName()
	root, ok := p.dialect.GetGrammar(rootName)
	if !ok {
		return NoMatch(), errUnresolvedRef(rootName, 0)
	}
	mr, err := p.run(root, 0, len(p.tokens), nil)
	if err != nil {
		return NoMatch(), err
	}
	if mr.Slice.IsEmpty() && len(p.tokens) > 1 {
		return NoMatch(), errRootEmpty(0)
	}
	return mr, nil
}

// checkpoint returns the current length of the collected-transparent
// order log; rollback(cp) undoes every collection since that point. This
// gives each Sequence/Delimited frame transactional semantics over the
// otherwise-global collected set.
func (p *Parser) checkpoint() int { return len(p.collectedOrder) }

func (p *Parser) rollback(cp int) {
	for _, idx := range p.collectedOrder[cp:] {
		delete(p.collected, idx)
	}
	p.collectedOrder = p.collectedOrder[:cp]
}

func (p *Parser) collectTransparent(idx int) {
	if p.collected[idx] {
		return
	}
	p.collected[idx] = true
	p.collectedOrder = append(p.collectedOrder, idx)
}

// skipGaps advances pos past any whitespace/newline/comment tokens,
// collecting each one's index via collectTransparent and recording it in
// out.TransparentPositions so a parse-cache hit can replay the collection
// without re-walking tokens.
func (p *Parser) skipGaps(pos, maxIdx int, out *MatchResult) int {
	for pos < maxIdx && pos < len(p.tokens) && p.tokens[pos].IsTransparent() {
		p.collectTransparent(pos)
		out.TransparentPositions = append(out.TransparentPositions, pos)
		pos++
	}
	return pos
}

// terminatorFiresAt reports whether any of terms admits the token at idx
// as a possible first token, per the simple-hint cache's admissibility
// rule. This is the O(1) pruning check applied to terminator
// detection as well as OneOf/AnyNumberOf child pruning: a nil hint (too
// complex to summarise) is treated by SimpleHint.CanMatchToken as
// "admits unconditionally", so a terminator whose grammar can't be
// hinted always fires rather than silently never terminating.
func (p *Parser) terminatorFiresAt(terms []grammar.Grammar, idx int) bool {
	if idx >= len(p.tokens) {
		return true
	}
	tok := p.tokens[idx]
	rawUp := tok.RawUpper()
	for _, t := range terms {
		if p.hints.Hint(t).CanMatchToken(rawUp, tok.ClassTypes) {
			return true
		}
	}
	return false
}

func (p *Parser) terminatorFires(terms []grammar.Grammar, pos, maxIdx int) bool {
	if len(terms) == 0 {
		return false
	}
	if pos >= maxIdx {
		return true
	}
	return p.terminatorFiresAt(terms, pos)
}

// isOpenBracket/isCloseBracket classify bracket token types for
// trimToTerminator's depth tracking.
func isOpenBracket(tt token.Type) bool {
	switch tt {
	case token.StartBracket, token.StartSquareBracket, token.StartCurlyBracket:
		return true
	default:
		return false
	}
}

func isCloseBracket(tt token.Type) bool {
	switch tt {
	case token.EndBracket, token.EndSquareBracket, token.EndCurlyBracket:
		return true
	default:
		return false
	}
}

// trimToTerminator scans forward from pos for the first terminator that
// fires at bracket depth zero, returning its index, or maxIdx if none is
// found before then. This is what keeps an inner bracket's commas (e.g.
// `IN (a, b, c)`) from being mistaken for an outer Delimited's terminator,
// and what keeps a started sequence's re-trim from swallowing the FROM in
// `SELECT ... FROM ...` as part of the select target list.
func (p *Parser) trimToTerminator(pos, maxIdx int, terms []grammar.Grammar) int {
	if len(terms) == 0 {
		return maxIdx
	}
	depth := 0
	for i := pos; i < maxIdx && i < len(p.tokens); i++ {
		tok := p.tokens[i]
		if depth == 0 && p.terminatorFiresAt(terms, i) {
			return i
		}
		if isOpenBracket(tok.TokenType) {
			depth++
		} else if isCloseBracket(tok.TokenType) {
			if depth > 0 {
				depth--
			}
		}
	}
	return maxIdx
}

// trimToTerminatorWithElements is trimToTerminator with one refinement for
// Sequence's GREEDY_ONCE_STARTED re-trim: a terminator that is also the
// possible start of a later-in-sequence element does not fire, so e.g. the
// FROM in `SELECT ... FROM` is matched by the sequence's own FromClause
// element rather than mis-treated as a terminator cutting the sequence
// short.
func (p *Parser) trimToTerminatorWithElements(pos, maxIdx int, terms, laterElements []grammar.Grammar) int {
	if len(terms) == 0 {
		return maxIdx
	}
	depth := 0
	for i := pos; i < maxIdx && i < len(p.tokens); i++ {
		tok := p.tokens[i]
		if depth == 0 && p.terminatorFiresAt(terms, i) && !p.elementAdmitsToken(laterElements, i) {
			return i
		}
		if isOpenBracket(tok.TokenType) {
			depth++
		} else if isCloseBracket(tok.TokenType) {
			if depth > 0 {
				depth--
			}
		}
	}
	return maxIdx
}

// elementAdmitsToken reports whether some element's hint names the token
// at idx specifically. A nil or admit-anything hint deliberately does NOT
// count here -- only a concrete raw/type membership may suppress a
// terminator, otherwise an optional catch-all element would disable
// terminator trimming entirely.
func (p *Parser) elementAdmitsToken(elements []grammar.Grammar, idx int) bool {
	if idx >= len(p.tokens) {
		return false
	}
	tok := p.tokens[idx]
	rawUp := tok.RawUpper()
	for _, e := range elements {
		h := p.hints.Hint(e)
		if h == nil {
			continue
		}
		if h.RawValues[rawUp] {
			return true
		}
		for _, ct := range tok.ClassTypes {
			if h.TokenTypes[ct] {
				return true
			}
		}
	}
	return false
}

// pruneChildren filters candidates to those whose simple hint admits the
// token at pos, recording a pruning-stats sample. A candidate with a nil
// hint is always kept (can't summarise => must attempt).
func (p *Parser) pruneChildren(candidates []grammar.Grammar, pos int) []grammar.Grammar {
	p.pruning.Calls++
	if pos >= len(p.tokens) {
		p.pruning.Kept += len(candidates)
		return candidates
	}
	tok := p.tokens[pos]
	rawUp := tok.RawUpper()
	kept := make([]grammar.Grammar, 0, len(candidates))
	for _, c := range candidates {
		if p.hints.Hint(c).CanMatchToken(rawUp, tok.ClassTypes) {
			kept = append(kept, c)
		}
	}
	p.pruning.Kept += len(kept)
	return kept
}
