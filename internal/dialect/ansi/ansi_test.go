package ansi

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/lexer"
	"github.com/sunholo/sqlcore/internal/source"
	"github.com/sunholo/sqlcore/internal/token"
	"github.com/sunholo/sqlcore/testutil"
)

func mustParse(t *testing.T, sql string) *ast.Node {
	t.Helper()
	tree, violations, err := Dialect().Parse(sql)
	require.NoError(t, err)
	require.Empty(t, violations)
	return tree
}

func refsOfType(tree *ast.Node, segType string) []*ast.Node {
	var out []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) {
		if n.SegmentType == segType {
			out = append(out, n)
		}
	}, ast.KindRef)
	return out
}

func leavesInOrder(tree *ast.Node) []*ast.Node {
	var out []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) {
		if len(n.Children) == 0 {
			switch n.NKind {
			case ast.KindToken, ast.KindWhitespace, ast.KindNewline, ast.KindComment, ast.KindEndOfFile:
				out = append(out, n)
			}
		}
	})
	return out
}

func reconstruct(tree *ast.Node) string {
	var b strings.Builder
	for _, leaf := range leavesInOrder(tree) {
		b.WriteString(leaf.Raw)
	}
	return b.String()
}

// S1: the smallest complete statement.
func TestParseSelectOne(t *testing.T) {
	toks, violations := Dialect().Lex("SELECT 1", false)
	require.Empty(t, violations)
	require.GreaterOrEqual(t, len(toks), 3)

	tree := mustParse(t, "SELECT 1")

	stmts := refsOfType(tree, "select_statement")
	require.Len(t, stmts, 1)

	var keywordRaws []string
	stmts[0].RecursiveCrawl(func(n *ast.Node) {
		if n.TokenType == token.Keyword {
			keywordRaws = append(keywordRaws, n.Raw)
		}
	}, ast.KindToken)
	require.Contains(t, keywordRaws, "SELECT")

	var numerics []string
	stmts[0].RecursiveCrawl(func(n *ast.Node) {
		if n.TokenType == token.NumericLiteral {
			numerics = append(numerics, n.Raw)
		}
	}, ast.KindToken)
	require.Equal(t, []string{"1"}, numerics)
}

// S2: the select target list is a delimited list of three code children.
func TestParseSelectTargetList(t *testing.T) {
	tree := mustParse(t, "SELECT a, b, c FROM t")

	lists := refsOfType(tree, "select_target_list")
	require.Len(t, lists, 1)

	targets := refsOfType(lists[0], "select_target")
	require.Len(t, targets, 3)

	var commas, whitespace int
	lists[0].RecursiveCrawl(func(n *ast.Node) {
		switch n.NKind {
		case ast.KindToken:
			if n.TokenType == token.Comma {
				commas++
			}
		case ast.KindWhitespace:
			whitespace++
		}
	})
	require.Equal(t, 2, commas)
	require.Greater(t, whitespace, 0)
}

// S3: nested function arguments must not leak their commas to the outer
// list, and the outer FROM must not be consumed as an alias.
func TestParseNestedFunctionArguments(t *testing.T) {
	sql := "SELECT DATEADD(DAY, ABS(5), '2024-01-01') FROM t"
	tree := mustParse(t, sql)

	require.Empty(t, unparsableNodes(tree), "no unparsable regions expected")

	// Exactly one select target: the whole DATEADD(...) call.
	targets := refsOfType(tree, "select_target")
	require.Len(t, targets, 1)

	fns := refsOfType(tree, "function")
	require.Len(t, fns, 2) // DATEADD and ABS

	froms := refsOfType(tree, "from_clause")
	require.Len(t, froms, 1)
	require.Contains(t, froms[0].Raws(), "FROM")
	require.Contains(t, froms[0].Raws(), "t")

	require.Equal(t, sql, reconstruct(tree))
}

// S4: with nested block comments (the ansi table's behaviour) the whole
// run is one comment token; a non-nesting matcher stops at the first */.
func TestNestedBlockCommentLexing(t *testing.T) {
	sql := "/* nested /* inner */ outer */ SELECT 1"

	toks, violations := Dialect().Lex(sql, false)
	require.Empty(t, violations)

	var comments []string
	for _, tk := range toks {
		if tk.TokenType == token.BlockComment {
			comments = append(comments, tk.Raw)
		}
	}
	require.Equal(t, []string{"/* nested /* inner */ outer */"}, comments)
}

func TestNonNestedBlockCommentLexing(t *testing.T) {
	sql := "/* nested /* inner */ outer */"

	flat := matchers()
	for i := range flat {
		if flat[i].Name == "block_comment" {
			flat[i] = lexer.RegexMatcher("block_comment", token.BlockComment,
				regexp.MustCompile(`^/\*([^*]|\*+[^*/])*\*+/`))
		}
	}
	lx := lexer.New(flat, lexer.LiteralMatcher("unlexable", token.Unlexable, ""))
	toks, _ := lx.Lex(source.NewTemplatedFile(sql), false)

	var first string
	for _, tk := range toks {
		if tk.TokenType == token.BlockComment {
			first = tk.Raw
			break
		}
	}
	require.Equal(t, "/* nested /* inner */", first)
}

// S5: an inline comment between newlines survives in the tree, and the
// code-only reduction reads in statement order.
func TestInlineCommentBetweenNewlines(t *testing.T) {
	tree := mustParse(t, "SELECT 1\n-- hi\nFROM t")

	leaves := leavesInOrder(tree)
	commentIdx := -1
	for i, leaf := range leaves {
		if leaf.NKind == ast.KindComment {
			commentIdx = i
		}
	}
	require.Greater(t, commentIdx, 0)
	require.Less(t, commentIdx, len(leaves)-1)
	require.Equal(t, ast.KindNewline, leaves[commentIdx-1].NKind)
	require.Equal(t, ast.KindNewline, leaves[commentIdx+1].NKind)

	var codeRaws []string
	collectCodeLeaves(tree.ToTuple(true, false, false), &codeRaws)
	require.Equal(t, []string{"SELECT", "1", "FROM", "t"}, codeRaws)
}

func collectCodeLeaves(t ast.Tuple, out *[]string) {
	if t.IsLeaf {
		*out = append(*out, t.Raw)
		return
	}
	for _, c := range t.Children {
		collectCodeLeaves(c, out)
	}
}

// S6: malformed input in the greedy file grammar becomes an Unparsable
// region with every byte preserved.
func TestMalformedSelectBecomesUnparsable(t *testing.T) {
	sql := "SELECT FROM"
	tree, violations, err := Dialect().Parse(sql)
	require.NoError(t, err)
	require.Empty(t, violations)

	unparsable := unparsableNodes(tree)
	require.NotEmpty(t, unparsable)
	require.Contains(t, unparsable[0].Raws(), "SELECT")
	require.Contains(t, unparsable[0].Raws(), "FROM")

	require.Equal(t, sql, reconstruct(tree))
}

func unparsableNodes(tree *ast.Node) []*ast.Node {
	var out []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { out = append(out, n) }, ast.KindUnparsable)
	return out
}

// Property 1: lex fidelity -- token raws concatenate back to the source.
func TestLexFidelity(t *testing.T) {
	inputs := []string{
		"SELECT 1",
		"SELECT a, b, c FROM t WHERE x = 1 ORDER BY a DESC LIMIT 10",
		"INSERT INTO t (a, b) VALUES (1, 'two'), (3, 'four')",
		"SELECT 'it''s', \"col\", `q` FROM t; -- done\n",
		"/* c */ SELECT $$tag free$$",
		"SELECT broken @@ tokens",
	}
	for _, sql := range inputs {
		toks, _ := Dialect().Lex(sql, false)
		var b strings.Builder
		for _, tk := range toks {
			b.WriteString(tk.Raw)
		}
		require.Equal(t, sql, b.String(), "lex fidelity broken for %q", sql)
	}
}

// Property 2: literal tokens' source slices address their own raw text.
func TestPositionBijection(t *testing.T) {
	sql := "SELECT a FROM t WHERE x = 1"
	toks, _ := Dialect().Lex(sql, false)
	for _, tk := range toks {
		if !tk.PosMarker.IsLiteral() {
			continue
		}
		require.Equal(t, tk.Raw, tk.PosMarker.SourceRaw(), "token %q source slice mismatch", tk.Raw)
	}
}

// Property 3: bracket pairing is symmetric with agreeing kinds.
func TestBracketSymmetry(t *testing.T) {
	sql := "SELECT f(a, g(b, c)), (x) FROM t"
	toks, _ := Dialect().Lex(sql, false)
	for i, tk := range toks {
		if tk.MatchingBracketIdx == nil {
			continue
		}
		j := *tk.MatchingBracketIdx
		require.NotNil(t, toks[j].MatchingBracketIdx)
		require.Equal(t, i, *toks[j].MatchingBracketIdx)
	}
}

// Property 5: reconstruction -- tree leaves concatenate to the source.
func TestReconstruction(t *testing.T) {
	inputs := []string{
		"SELECT 1",
		"SELECT a, b FROM t",
		"SELECT DISTINCT a FROM t WHERE a > 1 AND b < 2 GROUP BY a ORDER BY a ASC LIMIT 5",
		"INSERT INTO t (a, b) VALUES (1, 2)",
		"SELECT 1; SELECT 2;",
		"SELECT (a + b) * c FROM t",
		"SELECT a FROM t WHERE x IN (1, 2, 3)",
		"SELECT a AS alias FROM t x",
		"SELECT count(*) FROM t",
		"SELECT a FROM t WHERE b IS NOT NULL",
	}
	for _, sql := range inputs {
		tree := mustParse(t, sql)
		require.Equal(t, sql, reconstruct(tree), "reconstruction broken for %q", sql)
	}
}

// Property 4: every transparent token index appears at most once.
func TestNoDoubleCollection(t *testing.T) {
	sql := "SELECT a, b FROM t WHERE x = 1 -- trailing\n"
	tree := mustParse(t, sql)

	seen := map[int]int{}
	tree.RecursiveCrawl(func(n *ast.Node) {
		switch n.NKind {
		case ast.KindWhitespace, ast.KindNewline, ast.KindComment:
			seen[n.Idx]++
		}
	})
	for idx, count := range seen {
		require.Equal(t, 1, count, "transparent token %d appears %d times", idx, count)
	}
}

// Property 6: repeated parses produce structurally identical trees, and
// the serialised record is byte-stable.
func TestCacheConsistency(t *testing.T) {
	sql := "SELECT DATEADD(DAY, ABS(5), '2024-01-01') AS d, b FROM t WHERE x = 1"
	a := mustParse(t, sql)
	b := mustParse(t, sql)

	testutil.RequireTreeEqual(t, a.ToTuple(false, true, true), b.ToTuple(false, true, true))

	recA, err := a.AsRecord(false, false, false)
	require.NoError(t, err)
	recB, err := b.AsRecord(false, false, false)
	require.NoError(t, err)
	testutil.RequireRecordStable(t, recA, recB)
}

// Property 8: a delimited list's terminator only fires outside brackets.
func TestTerminatorHonesty(t *testing.T) {
	tree := mustParse(t, "SELECT f(a, b), c FROM t")

	lists := refsOfType(tree, "select_target_list")
	require.Len(t, lists, 1)
	targets := refsOfType(lists[0], "select_target")
	require.Len(t, targets, 2)

	// The list stops before FROM: its raw text contains the bracketed
	// commas but not the FROM keyword.
	require.NotContains(t, lists[0].Raws(), "FROM")
	require.Contains(t, targets[0].Raws(), "f(a, b)")
}

func TestSemicolonSeparatedStatements(t *testing.T) {
	tree := mustParse(t, "SELECT 1; SELECT 2")
	stmts := refsOfType(tree, "select_statement")
	require.Len(t, stmts, 2)
}

func TestInsertStatement(t *testing.T) {
	tree := mustParse(t, "INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y')")
	stmts := refsOfType(tree, "insert_statement")
	require.Len(t, stmts, 1)
	rows := refsOfType(tree, "values_row")
	require.Len(t, rows, 2)
}

func TestKeywordsAreNotAliases(t *testing.T) {
	// `FROM` must not parse as an alias for `a`.
	tree := mustParse(t, "SELECT a FROM t")
	require.Empty(t, refsOfType(tree, "alias_expression"))

	tree = mustParse(t, "SELECT a AS b FROM t")
	aliases := refsOfType(tree, "alias_expression")
	require.Len(t, aliases, 1)
	require.Contains(t, aliases[0].Raws(), "b")
}

func TestLexViolationSurfacesWithPosition(t *testing.T) {
	toks, violations := Dialect().Lex("SELECT @@@ FROM t", false)
	require.Len(t, violations, 1)
	require.Equal(t, "LEX001", violations[0].Code)
	require.Equal(t, 1, violations[0].Line)
	require.Greater(t, violations[0].Col, 1)

	var unlexable int
	for _, tk := range toks {
		if tk.TokenType == token.Unlexable {
			unlexable++
		}
	}
	require.Equal(t, 1, unlexable)
}

func TestQuotedValueNormalisation(t *testing.T) {
	toks, _ := Dialect().Lex("SELECT 'it''s'", false)
	var quoted *token.Token
	for i := range toks {
		if toks[i].TokenType == token.SingleQuote {
			quoted = &toks[i]
		}
	}
	require.NotNil(t, quoted)
	require.Equal(t, "it's", quoted.QuotedValue())
}
