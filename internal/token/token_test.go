package token

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/sqlcore/internal/source"
)

func tok(raw string, tt Type, instances ...string) Token {
	return New(raw, tt, source.PositionMarker{}, instances...)
}

func TestClassification(t *testing.T) {
	cases := []struct {
		tok                           Token
		code, transparent, meta, cmnt bool
	}{
		{tok("SELECT", Word), true, false, false, false},
		{tok("1", NumericLiteral), true, false, false, false},
		{tok(" ", Whitespace), false, true, false, false},
		{tok("\n", Newline), false, true, false, false},
		{tok("-- x", InlineComment), false, true, false, true},
		{tok("/* x */", BlockComment), false, true, false, true},
		{tok("", EndOfFile), false, false, true, false},
		{tok("", Indent), false, false, true, false},
		{tok("", TemplatePlaceholder), false, false, true, false},
	}
	for _, c := range cases {
		require.Equal(t, c.code, c.tok.IsCode(), "%s IsCode", c.tok.TokenType)
		require.Equal(t, c.transparent, c.tok.IsTransparent(), "%s IsTransparent", c.tok.TokenType)
		require.Equal(t, c.meta, c.tok.IsMeta(), "%s IsMeta", c.tok.TokenType)
		require.Equal(t, c.cmnt, c.tok.IsComment(), "%s IsComment", c.tok.TokenType)
	}
}

func TestRawUpper(t *testing.T) {
	require.Equal(t, "SELECT", tok("select", Word).RawUpper())
	require.Equal(t, "SELECT", tok("SeLeCt", Word).RawUpper())
	// Non-ASCII bytes pass through untouched.
	require.Equal(t, "CAFÉ", tok("cafÉ", Word).RawUpper())
}

func TestClassTypesIncludeInstanceTypes(t *testing.T) {
	k := tok("JOIN", Word, "keyword", "reserved")
	require.True(t, k.HasClassType("word"))
	require.True(t, k.HasClassType("keyword"))
	require.True(t, k.HasClassType("reserved"))
	require.False(t, k.HasClassType("literal"))
}

func TestNormaliserQuotedValue(t *testing.T) {
	n := &Normaliser{TrimQuoteChars: "'", EscapePairs: [][2]string{{"''", "'"}}}
	require.Equal(t, "it's", n.QuotedValue("'it''s'"))
	require.Equal(t, "plain", n.QuotedValue("'plain'"))

	var nilNorm *Normaliser
	require.Equal(t, "'raw'", nilNorm.QuotedValue("'raw'"))

	tk := tok("'a''b'", SingleQuote)
	tk.Normaliser = n
	require.Equal(t, "a'b", tk.QuotedValue())
}
