package dialect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/sqlcore/internal/grammar"
	"github.com/sunholo/sqlcore/internal/lexer"
	"github.com/sunholo/sqlcore/internal/token"
)

func isSpace(b byte) bool { return b == ' ' || b == '\t' }
func isWord(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func tinyDialect() *Dialect {
	d := New("tiny")
	d.AddKeywords("go", "stop")
	d.SetMatchers([]lexer.Matcher{
		lexer.ClassMatcher("whitespace", token.Whitespace, isSpace),
		lexer.ClassMatcher("word", token.Word, isWord),
	}, lexer.LiteralMatcher("unlexable", token.Unlexable, ""))

	d.Register("WordSegment", grammar.NewTypedParser(string(token.Word)))
	d.SegmentType("WordSegment", "word_segment")
	d.Register("FileSegment", func() grammar.Grammar {
		g := grammar.NewSequence(
			grammar.Opt(grammar.NewAnyNumberOf(grammar.NewRef("WordSegment"))),
		)
		g.ParseMode = grammar.Greedy
		return g
	}())
	return d
}

func TestKeywordLookupIsCaseInsensitive(t *testing.T) {
	d := tinyDialect()
	require.True(t, d.IsKeyword("GO"))
	require.True(t, d.IsKeyword("go"))
	require.False(t, d.IsKeyword("went"))
	require.Equal(t, []string{"GO", "STOP"}, d.Keywords())
}

func TestKeywordLookupFoldsBeyondASCII(t *testing.T) {
	d := New("accented")
	d.AddKeywords("sélect")
	require.True(t, d.IsKeyword("SÉLECT"))
	require.True(t, d.IsKeyword("sélect"))
}

func TestRegisterInstallsRefResolvers(t *testing.T) {
	d := tinyDialect()
	g, ok := d.GetGrammar("FileSegment")
	require.True(t, ok)

	var refs []*grammar.Ref
	grammar.Walk(g, func(child grammar.Grammar) {
		if r, ok := child.(*grammar.Ref); ok {
			refs = append(refs, r)
		}
	})
	require.Len(t, refs, 1)
	require.NotNil(t, refs[0].Resolve())
}

func TestSegmentTypeLookup(t *testing.T) {
	d := tinyDialect()
	st, ok := d.GetSegmentType("WordSegment")
	require.True(t, ok)
	require.Equal(t, "word_segment", st)

	_, ok = d.GetSegmentType("NoSuchSegment")
	require.False(t, ok)
}

func TestDialectParseEndToEnd(t *testing.T) {
	d := tinyDialect()
	tree, violations, err := d.Parse("one two")
	require.NoError(t, err)
	require.Empty(t, violations)
	require.Equal(t, "one two", tree.Raws())
}

func TestDialectLexNormalizesInput(t *testing.T) {
	d := tinyDialect()
	// Leading BOM is stripped at the boundary, so the first token is the
	// word itself.
	toks, violations := d.Lex("\xEF\xBB\xBFword", false)
	require.Empty(t, violations)
	require.Equal(t, "word", toks[0].Raw)
}

func TestGlobalRegistry(t *testing.T) {
	d := tinyDialect()
	RegisterDialect(d)

	got, ok := Get("tiny")
	require.True(t, ok)
	require.Same(t, d, got)
	require.Contains(t, Names(), "tiny")
}
