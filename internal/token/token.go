// Package token defines the lexical token taxonomy shared by every dialect:
// the TokenType enum, the Token value itself, and the small set of derived
// flags (is_code / is_whitespace / is_comment / is_meta) the parser relies
// on to decide which tokens participate in grammar matching.
package token

import "github.com/sunholo/sqlcore/internal/source"

// Type is the semantic category of a token. The set is bit-exact with the
// taxonomy every dialect is built against -- adding or renaming a value
// here is a breaking change for every matcher table.
type Type string

const (
	Whitespace          Type = "whitespace"
	Newline             Type = "newline"
	InlineComment       Type = "inline_comment"
	BlockComment        Type = "block_comment"
	Comment             Type = "comment"
	SingleQuote         Type = "single_quote"
	DoubleQuote         Type = "double_quote"
	BackQuote           Type = "back_quote"
	DollarQuote         Type = "dollar_quote"
	NumericLiteral      Type = "numeric_literal"
	Word                Type = "word"
	Keyword             Type = "keyword"
	Literal             Type = "literal"
	Symbol              Type = "symbol"
	StartBracket        Type = "start_bracket"
	EndBracket          Type = "end_bracket"
	StartSquareBracket  Type = "start_square_bracket"
	EndSquareBracket    Type = "end_square_bracket"
	StartCurlyBracket   Type = "start_curly_bracket"
	EndCurlyBracket     Type = "end_curly_bracket"
	Comma               Type = "comma"
	Dot                 Type = "dot"
	Semicolon           Type = "semicolon"
	Colon               Type = "colon"
	Equals              Type = "equals"
	GreaterThan         Type = "greater_than"
	LessThan            Type = "less_than"
	Not                 Type = "not"
	Plus                Type = "plus"
	Minus               Type = "minus"
	Divide              Type = "divide"
	Percent             Type = "percent"
	Star                Type = "star"
	Question            Type = "question"
	Ampersand           Type = "ampersand"
	VerticalBar         Type = "vertical_bar"
	Caret               Type = "caret"
	EndOfFile           Type = "end_of_file"
	Unlexable           Type = "unlexable"
	CastingOperator     Type = "casting_operator"
	RightArrow          Type = "right_arrow"
	LikeOperator        Type = "like_operator"
	GlobOperator        Type = "glob_operator"
	TemplatePlaceholder Type = "template_placeholder"
	TemplateLoop        Type = "template_loop"
	Indent              Type = "indent"
	Dedent              Type = "dedent"
)

// transparentTypes are never code: whitespace, newlines and comments. They
// are collected by Sequence gap-handling rather than matched as grammar
// leaves.
var transparentTypes = map[Type]bool{
	Whitespace:    true,
	Newline:       true,
	InlineComment: true,
	BlockComment:  true,
	Comment:       true,
}

// metaTypes never correspond to lexed source bytes; they are synthesised
// by the lexer (template bookkeeping) or the parser (Indent/Dedent).
var metaTypes = map[Type]bool{
	EndOfFile:           true,
	TemplatePlaceholder: true,
	TemplateLoop:        true,
	Indent:              true,
	Dedent:              true,
}

// Normaliser describes how a token's raw text should be rendered for
// quote-insensitive comparison: which quote characters to trim and which
// escape sequences to undo.
type Normaliser struct {
	// TrimQuoteChars strips leading/trailing characters (e.g. `'`) before
	// unescaping, producing the quoted_value used for literal comparison.
	TrimQuoteChars string
	// EscapePairs lists (escaped, literal) string replacements applied
	// after trimming, in order.
	EscapePairs [][2]string
}

// QuotedValue applies the Normaliser to raw, or returns raw unchanged if n
// is nil.
func (n *Normaliser) QuotedValue(raw string) string {
	if n == nil {
		return raw
	}
	v := raw
	if n.TrimQuoteChars != "" {
		v = trimChars(v, n.TrimQuoteChars)
	}
	for _, pair := range n.EscapePairs {
		v = replaceAll(v, pair[0], pair[1])
	}
	return v
}

func trimChars(s, cutset string) string {
	start, end := 0, len(s)
	for start < end && containsByte(cutset, s[start]) {
		start++
	}
	for end > start && containsByte(cutset, s[end-1]) {
		end--
	}
	return s[start:end]
}

func containsByte(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return true
		}
	}
	return false
}

func replaceAll(s, old, new string) string {
	if old == "" {
		return s
	}
	var out []byte
	for i := 0; i < len(s); {
		if i+len(old) <= len(s) && s[i:i+len(old)] == old {
			out = append(out, new...)
			i += len(old)
			continue
		}
		out = append(out, s[i])
		i++
	}
	return string(out)
}

// Token is a single lexical unit: a raw byte run tagged with its semantic
// type and position. Tokens are created once by the lexer (or by post-lex
// bracket pre-computation, which installs MatchingBracketIdx) and are never
// otherwise mutated.
type Token struct {
	Raw           string
	TokenType     Type
	InstanceTypes []string
	ClassTypes    []string
	PosMarker     source.PositionMarker

	// MatchingBracketIdx is the index, within the full token slice this
	// token belongs to, of the bracket that pairs with this one. Nil until
	// the lexer's post-pass computes it, and only ever set on bracket
	// tokens.
	MatchingBracketIdx *int

	Normaliser *Normaliser
}

// New builds a Token, deriving its ClassTypes from TokenType plus any
// extra instance types supplied.
func New(raw string, tt Type, pos source.PositionMarker, instanceTypes ...string) Token {
	return Token{
		Raw:           raw,
		TokenType:     tt,
		InstanceTypes: instanceTypes,
		ClassTypes:    append([]string{string(tt)}, instanceTypes...),
		PosMarker:     pos,
	}
}

// IsCode reports whether this token participates in grammar matching, i.e.
// is neither whitespace/newline/comment nor a meta token.
func (t Token) IsCode() bool {
	return !t.IsWhitespace() && !t.IsComment() && !t.IsMeta() && t.TokenType != Newline
}

// IsWhitespace reports whether this is a pure-whitespace token.
func (t Token) IsWhitespace() bool { return t.TokenType == Whitespace }

// IsNewline reports whether this is a newline token.
func (t Token) IsNewline() bool { return t.TokenType == Newline }

// IsComment reports whether this token is one of the comment variants.
func (t Token) IsComment() bool {
	switch t.TokenType {
	case InlineComment, BlockComment, Comment:
		return true
	default:
		return false
	}
}

// IsTransparent reports whether this token is whitespace, newline or
// comment -- collected by Sequence gap-handling rather than matched.
func (t Token) IsTransparent() bool {
	return transparentTypes[t.TokenType] || t.TokenType == Newline
}

// IsMeta reports whether this token is a synthetic marker rather than
// lexed source text.
func (t Token) IsMeta() bool { return metaTypes[t.TokenType] }

// RawUpper returns the uppercased raw text, the comparison key
// StringParser/MultiStringParser match against.
func (t Token) RawUpper() string {
	return upper(t.Raw)
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// HasClassType reports whether name is in this token's class-type set --
// the membership test TypedParser relies on.
func (t Token) HasClassType(name string) bool {
	for _, c := range t.ClassTypes {
		if c == name {
			return true
		}
	}
	return false
}

// QuotedValue returns the normalised literal value of this token's raw
// text (quote-trimmed, unescaped), for literal comparison purposes.
func (t Token) QuotedValue() string {
	return t.Normaliser.QuotedValue(t.Raw)
}
