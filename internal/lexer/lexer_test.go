package lexer

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/sqlcore/internal/source"
	"github.com/sunholo/sqlcore/internal/token"
)

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t'
}

func testMatchers() []Matcher {
	return []Matcher{
		RegexMatcher("newline", token.Newline, regexp.MustCompile(`^\r?\n`)),
		ClassMatcher("whitespace", token.Whitespace, isSpaceByte),
		RegexMatcher("block_comment", token.BlockComment, regexp.MustCompile(`^/\*([^*]|\*[^/])*\*/`)),
		RegexMatcher("inline_comment", token.InlineComment, regexp.MustCompile(`^--[^\n]*`)),
		RegexMatcher("numeric_literal", token.NumericLiteral, regexp.MustCompile(`^[0-9]+(\.[0-9]+)?`)),
		ClassMatcher("word", token.Word, isWordByte),
		LiteralMatcher("start_bracket", token.StartBracket, "("),
		LiteralMatcher("end_bracket", token.EndBracket, ")"),
		LiteralMatcher("start_square_bracket", token.StartSquareBracket, "["),
		LiteralMatcher("end_square_bracket", token.EndSquareBracket, "]"),
		LiteralMatcher("comma", token.Comma, ","),
		LiteralMatcher("dot", token.Dot, "."),
		LiteralMatcher("star", token.Star, "*"),
		LiteralMatcher("equals", token.Equals, "="),
	}
}

func testLexer() *Lexer {
	return New(testMatchers(), LiteralMatcher("unlexable", token.Unlexable, ""))
}

func lexString(t *testing.T, raw string) ([]token.Token, []Violation) {
	t.Helper()
	file := source.NewTemplatedFile(raw)
	return testLexer().Lex(file, false)
}

func TestLexBasicTokens(t *testing.T) {
	toks, violations := lexString(t, "SELECT a, b FROM t")
	require.Empty(t, violations)
	require.NotEmpty(t, toks)
	require.Equal(t, token.EndOfFile, toks[len(toks)-1].TokenType)

	var rawSeq []string
	for _, tk := range toks {
		rawSeq = append(rawSeq, tk.Raw)
	}
	require.Equal(t, []string{"SELECT", " ", "a", ",", " ", "b", " ", "FROM", " ", "t", ""}, rawSeq)
}

func TestLexUnlexableProducesViolation(t *testing.T) {
	toks, violations := lexString(t, "a $ b")
	require.Len(t, violations, 1)
	require.Equal(t, "LEX001", violations[0].Code)

	foundUnlexable := false
	for _, tk := range toks {
		if tk.TokenType == token.Unlexable {
			foundUnlexable = true
			require.Equal(t, "$", tk.Raw)
		}
	}
	require.True(t, foundUnlexable)
}

func TestLexBracketPairing(t *testing.T) {
	toks, violations := lexString(t, "f(a, [1, 2])")
	require.Empty(t, violations)

	var open, close_, openSq, closeSq int = -1, -1, -1, -1
	for i, tk := range toks {
		switch {
		case tk.TokenType == token.StartBracket && open == -1:
			open = i
		case tk.TokenType == token.EndBracket:
			close_ = i
		case tk.TokenType == token.StartSquareBracket:
			openSq = i
		case tk.TokenType == token.EndSquareBracket:
			closeSq = i
		}
	}
	require.NotEqual(t, -1, open)
	require.NotEqual(t, -1, close_)
	require.NotNil(t, toks[open].MatchingBracketIdx)
	require.Equal(t, close_, *toks[open].MatchingBracketIdx)
	require.Equal(t, open, *toks[close_].MatchingBracketIdx)

	require.NotNil(t, toks[openSq].MatchingBracketIdx)
	require.Equal(t, closeSq, *toks[openSq].MatchingBracketIdx)
}

func TestLexBlockCommentSubdivision(t *testing.T) {
	m := testMatchers()
	m[2].Subdivider = &Matcher{Literal: "\n"}
	m[2].TrimPostSubdivide = regexp.MustCompile(`^[ \t]+`)
	lx := New(m, LiteralMatcher("unlexable", token.Unlexable, ""))

	file := source.NewTemplatedFile("/* line one\n   line two */")
	toks, violations := lx.Lex(file, false)
	require.Empty(t, violations)

	var comments []string
	for _, tk := range toks {
		if tk.TokenType == token.BlockComment {
			comments = append(comments, tk.Raw)
		}
	}
	require.Equal(t, []string{"/* line one\n", "line two */"}, comments)
}

func TestLexIsTerminal(t *testing.T) {
	toks, _ := lexString(t, "")
	require.Len(t, toks, 1)
	require.Equal(t, token.EndOfFile, toks[0].TokenType)
}
