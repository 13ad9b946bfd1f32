package ansi

import (
	"regexp"
	"strings"

	"github.com/sunholo/sqlcore/internal/lexer"
	"github.com/sunholo/sqlcore/internal/token"
)

func isSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// matchBlockComment scans a /* ... */ comment, honouring nesting: every
// interior /* requires its own */ before the comment ends. Returns 0 for
// an unterminated comment, which then lexes as unlexable -- a loud
// failure beats silently swallowing the rest of the file.
func matchBlockComment(s string, i int) int {
	if !strings.HasPrefix(s[i:], "/*") {
		return 0
	}
	depth := 0
	j := i
	for j < len(s) {
		switch {
		case strings.HasPrefix(s[j:], "/*"):
			depth++
			j += 2
		case strings.HasPrefix(s[j:], "*/"):
			depth--
			j += 2
			if depth == 0 {
				return j - i
			}
		default:
			j++
		}
	}
	return 0
}

// matchDollarQuote scans PostgreSQL-style $tag$ ... $tag$ strings; RE2
// has no backreferences, so the tag pairing needs a hand scan.
func matchDollarQuote(s string, i int) int {
	if s[i] != '$' {
		return 0
	}
	end := strings.IndexByte(s[i+1:], '$')
	if end < 0 {
		return 0
	}
	tag := s[i : i+end+2] // "$tag$"
	for _, b := range []byte(tag[1 : len(tag)-1]) {
		if !isWordByte(b) {
			return 0
		}
	}
	body := strings.Index(s[i+len(tag):], tag)
	if body < 0 {
		return 0
	}
	return len(tag) + body + len(tag)
}

func firstBytes(bs ...byte) map[byte]bool {
	m := map[byte]bool{}
	for _, b := range bs {
		m[b] = true
	}
	return m
}

// matchers is the ordered ANSI matcher table. Order is load-bearing:
// inline comments before minus, block comments before divide, multi-char
// operators before their single-char prefixes, numerics before words.
func matchers() []lexer.Matcher {
	blockComment := lexer.FuncMatcher("block_comment", token.BlockComment, matchBlockComment)
	blockComment.FirstBytes = firstBytes('/')
	blockComment.Subdivider = &lexer.Matcher{Literal: "\n"}
	blockComment.TrimPostSubdivide = regexp.MustCompile(`^[ \t]+`)

	inlineComment := lexer.RegexMatcher("inline_comment", token.InlineComment, regexp.MustCompile(`^--[^\n]*`))
	inlineComment.FirstBytes = firstBytes('-')

	singleQuote := lexer.RegexMatcher("single_quote", token.SingleQuote, regexp.MustCompile(`^'([^']|'')*'`))
	singleQuote.FirstBytes = firstBytes('\'')
	singleQuote.Normaliser = &token.Normaliser{TrimQuoteChars: "'", EscapePairs: [][2]string{{"''", "'"}}}

	doubleQuote := lexer.RegexMatcher("double_quote", token.DoubleQuote, regexp.MustCompile(`^"([^"]|"")*"`))
	doubleQuote.FirstBytes = firstBytes('"')
	doubleQuote.Normaliser = &token.Normaliser{TrimQuoteChars: `"`, EscapePairs: [][2]string{{`""`, `"`}}}

	backQuote := lexer.RegexMatcher("back_quote", token.BackQuote, regexp.MustCompile("^`[^`]*`"))
	backQuote.FirstBytes = firstBytes('`')

	dollarQuote := lexer.FuncMatcher("dollar_quote", token.DollarQuote, matchDollarQuote)
	dollarQuote.FirstBytes = firstBytes('$')

	numeric := lexer.RegexMatcher("numeric_literal", token.NumericLiteral,
		regexp.MustCompile(`^([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?`))

	return []lexer.Matcher{
		lexer.RegexMatcher("newline", token.Newline, regexp.MustCompile(`^\r?\n`)),
		lexer.ClassMatcher("whitespace", token.Whitespace, isSpaceByte),
		inlineComment,
		blockComment,
		singleQuote,
		doubleQuote,
		backQuote,
		dollarQuote,
		numeric,
		lexer.ClassMatcher("word", token.Word, isWordByte),
		lexer.LiteralMatcher("casting_operator", token.CastingOperator, "::"),
		lexer.LiteralMatcher("right_arrow", token.RightArrow, "->"),
		lexer.LiteralMatcher("like_operator", token.LikeOperator, "~~"),
		lexer.LiteralMatcher("start_bracket", token.StartBracket, "("),
		lexer.LiteralMatcher("end_bracket", token.EndBracket, ")"),
		lexer.LiteralMatcher("start_square_bracket", token.StartSquareBracket, "["),
		lexer.LiteralMatcher("end_square_bracket", token.EndSquareBracket, "]"),
		lexer.LiteralMatcher("start_curly_bracket", token.StartCurlyBracket, "{"),
		lexer.LiteralMatcher("end_curly_bracket", token.EndCurlyBracket, "}"),
		lexer.LiteralMatcher("comma", token.Comma, ","),
		lexer.LiteralMatcher("dot", token.Dot, "."),
		lexer.LiteralMatcher("semicolon", token.Semicolon, ";"),
		lexer.LiteralMatcher("colon", token.Colon, ":"),
		lexer.LiteralMatcher("equals", token.Equals, "="),
		lexer.LiteralMatcher("greater_than", token.GreaterThan, ">"),
		lexer.LiteralMatcher("less_than", token.LessThan, "<"),
		lexer.LiteralMatcher("not", token.Not, "!"),
		lexer.LiteralMatcher("plus", token.Plus, "+"),
		lexer.LiteralMatcher("minus", token.Minus, "-"),
		lexer.LiteralMatcher("divide", token.Divide, "/"),
		lexer.LiteralMatcher("percent", token.Percent, "%"),
		lexer.LiteralMatcher("star", token.Star, "*"),
		lexer.LiteralMatcher("question", token.Question, "?"),
		lexer.LiteralMatcher("ampersand", token.Ampersand, "&"),
		lexer.LiteralMatcher("vertical_bar", token.VerticalBar, "|"),
		lexer.LiteralMatcher("caret", token.Caret, "^"),
	}
}
