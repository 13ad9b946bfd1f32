package lexer

import (
	"fmt"
	"strings"

	"github.com/sunholo/sqlcore/internal/perror"
	"github.com/sunholo/sqlcore/internal/source"
	"github.com/sunholo/sqlcore/internal/token"
)

// Violation reports one run of text the lexer could not recognise with any
// matcher, including the last resort. Lexing never fails outright: each
// violation corresponds to exactly one unlexable token, and the caller
// decides whether to abort or proceed with a degraded token stream.
type Violation struct {
	Code    string
	Message string
	Line    int
	Col     int
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s at %d:%d", v.Code, v.Message, v.Line, v.Col)
}

// ToReport converts the violation to a structured perror report for
// machine-readable output.
func (v Violation) ToReport() *perror.Report {
	return perror.NewLex(v.Code, v.Message, v.Line, v.Col)
}

// Lexer holds one dialect's ordered matcher table plus its last-resort
// matcher (a greedy run of otherwise-unrecognised bytes, so that lexing
// never diverges on unknown input).
type Lexer struct {
	Matchers   []Matcher
	LastResort Matcher
}

// New builds a Lexer from an ordered matcher table and a last-resort
// matcher. Matchers are tried in declaration order; the first one whose
// quick-reject passes and whose match succeeds wins.
func New(matchers []Matcher, lastResort Matcher) *Lexer {
	return &Lexer{Matchers: matchers, LastResort: lastResort}
}

type lexedPiece struct {
	raw       string
	tokenType token.Type
	instances []string
	norm      *token.Normaliser
}

// Lex tokenises a templated file end to end, appending a terminal
// end_of_file token, then runs the post-lex bracket pre-computation pass
// so every bracket token's MatchingBracketIdx is available in O(1) during
// parsing. templateBlocksIndent controls whether block_start/block_mid/
// block_end slices (see source.SliceKind) bracket themselves with
// Indent/Dedent meta tokens; it has no effect on a file built from a
// single literal slice (the only kind this module ever constructs itself,
// since no templating engine ships here -- callers that run their own
// templater upstream supply a pre-sliced TemplatedFile instead).
func (lx *Lexer) Lex(file *source.TemplatedFile, templateBlocksIndent bool) ([]token.Token, []Violation) {
	text := file.Templated
	elements := lx.scanElements(text)

	toks, violations := lx.mapElements(elements, file, templateBlocksIndent)

	pos := len(text)
	eofMarker := source.NewPositionMarker(source.Slice{Start: pos, Stop: pos}, file)
	toks = append(toks, token.New("", token.EndOfFile, eofMarker))

	computeBracketPairs(toks)

	return toks, violations
}

// scanElements runs the matcher-table scan over text, producing a flat
// list of lexed elements positioned in templated-file coordinates. This
// phase never fails: unmatched runs fall through to the last-resort
// matcher.
func (lx *Lexer) scanElements(text string) []element {
	var elements []element
	pos := 0
	for pos < len(text) {
		pieces, consumed, matched := lx.matchAt(text, pos)
		if !matched {
			raw := lx.lastResortRaw(text, pos)
			pieces = []lexedPiece{{raw: raw, tokenType: token.Unlexable}}
			consumed = len(raw)
		}
		for _, p := range pieces {
			elements = append(elements, element{
				raw:            p.raw,
				tokenType:      p.tokenType,
				instances:      p.instances,
				norm:           p.norm,
				templatedStart: pos,
				templatedStop:  pos + len(p.raw),
			})
			pos += len(p.raw)
		}
		if consumed == 0 {
			// Defensive: never spin on a zero-width match.
			pos++
		}
	}
	return elements
}

// matchAt tries every matcher in order at byte offset pos, subdividing the
// winning match if its matcher declares a subdivider.
func (lx *Lexer) matchAt(text string, pos int) ([]lexedPiece, int, bool) {
	for _, m := range lx.Matchers {
		raw, ok := m.tryMatch(text, pos)
		if !ok || raw == "" {
			continue
		}
		return lx.subdivide(raw, m), len(raw), true
	}
	return nil, 0, false
}

// lastResortRaw greedily consumes bytes the matcher table could not
// recognise, stopping as soon as some real matcher would take over again
// (or at end of input) so the unlexable run stays minimal.
func (lx *Lexer) lastResortRaw(text string, pos int) string {
	j := pos + 1
	for j < len(text) {
		if _, ok := lx.matchAtNoSubdivide(text, j); ok {
			break
		}
		j++
	}
	if j == pos {
		j = pos + 1
	}
	if j > len(text) {
		j = len(text)
	}
	return text[pos:j]
}

func (lx *Lexer) matchAtNoSubdivide(text string, pos int) (string, bool) {
	for _, m := range lx.Matchers {
		if raw, ok := m.tryMatch(text, pos); ok && raw != "" {
			return raw, true
		}
	}
	return "", false
}

// subdivide splits a matched run on its matcher's subdivider (e.g. a block
// comment split into one token per line), trimming each continuation
// piece's leading run of TrimPostSubdivide into its own whitespace token so
// indentation inside a comment remains independently addressable.
func (lx *Lexer) subdivide(raw string, m Matcher) []lexedPiece {
	if m.Subdivider == nil {
		return []lexedPiece{{raw: raw, tokenType: m.TokenType, instances: m.InstanceTypes, norm: m.Normaliser}}
	}
	delim := m.Subdivider.Literal
	if delim == "" {
		return []lexedPiece{{raw: raw, tokenType: m.TokenType, instances: m.InstanceTypes, norm: m.Normaliser}}
	}

	var pieces []lexedPiece
	rest := raw
	first := true
	for {
		idx := strings.Index(rest, delim)
		var piece string
		if idx < 0 {
			piece = rest
		} else {
			piece = rest[:idx+len(delim)]
		}
		if !first && m.TrimPostSubdivide != nil {
			if loc := m.TrimPostSubdivide.FindStringIndex(piece); loc != nil && loc[0] == 0 {
				lead := piece[:loc[1]]
				pieces = append(pieces, lexedPiece{raw: lead, tokenType: token.Whitespace})
				piece = piece[loc[1]:]
			}
		}
		if piece != "" {
			pieces = append(pieces, lexedPiece{raw: piece, tokenType: m.TokenType, instances: m.InstanceTypes, norm: m.Normaliser})
		}
		first = false
		if idx < 0 {
			break
		}
		rest = rest[idx+len(delim):]
		if rest == "" {
			break
		}
	}
	return pieces
}

// bracketPairs maps each opening bracket type to its closing counterpart.
var bracketPairs = map[token.Type]token.Type{
	token.StartBracket:       token.EndBracket,
	token.StartSquareBracket: token.EndSquareBracket,
	token.StartCurlyBracket:  token.EndCurlyBracket,
}

// computeBracketPairs does a single stack-based pass over the token slice,
// assigning MatchingBracketIdx bidirectionally for every correctly nested
// bracket pair. Unbalanced or mismatched brackets are left unpaired; the
// parser's Bracketed handler treats a missing pair as a parse failure
// rather than this pass raising an error.
func computeBracketPairs(toks []token.Token) {
	type entry struct {
		idx int
		typ token.Type
	}
	var stack []entry
	for i := range toks {
		t := toks[i].TokenType
		if _, isOpen := bracketPairs[t]; isOpen {
			stack = append(stack, entry{idx: i, typ: t})
			continue
		}
		switch t {
		case token.EndBracket, token.EndSquareBracket, token.EndCurlyBracket:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if bracketPairs[top.typ] != t {
				continue
			}
			stack = stack[:len(stack)-1]
			openIdx, closeIdx := top.idx, i
			toks[openIdx].MatchingBracketIdx = &closeIdx
			toks[closeIdx].MatchingBracketIdx = &openIdx
		}
	}
}
