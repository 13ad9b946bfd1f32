package parser

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/grammar"
	"github.com/sunholo/sqlcore/internal/lexer"
	"github.com/sunholo/sqlcore/internal/source"
	"github.com/sunholo/sqlcore/internal/token"
)

// testDialect is the minimal registry the parser tests drive grammar
// fragments through, without depending on the full ansi dialect.
type testDialect struct {
	rules map[string]grammar.Grammar
	segs  map[string]string
	root  string
}

func newTestDialect() *testDialect {
	return &testDialect{rules: map[string]grammar.Grammar{}, segs: map[string]string{}, root: "Root"}
}

func (d *testDialect) register(name string, g grammar.Grammar) {
	d.rules[name] = g
	grammar.Walk(g, func(child grammar.Grammar) {
		if ref, ok := child.(*grammar.Ref); ok {
			ref.SetResolver(func(n string) grammar.Grammar { return d.rules[n] })
		}
	})
}

func (d *testDialect) GetGrammar(name string) (grammar.Grammar, bool) {
	g, ok := d.rules[name]
	return g, ok
}

func (d *testDialect) GetSegmentType(name string) (string, bool) {
	st, ok := d.segs[name]
	return st, ok
}

func (d *testDialect) RootRuleName() string { return d.root }

func isTestWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isTestSpaceByte(b byte) bool { return b == ' ' || b == '\t' }

func lexTokens(t *testing.T, raw string) []token.Token {
	t.Helper()
	lx := lexer.New([]lexer.Matcher{
		lexer.RegexMatcher("newline", token.Newline, regexp.MustCompile(`^\r?\n`)),
		lexer.ClassMatcher("whitespace", token.Whitespace, isTestSpaceByte),
		lexer.RegexMatcher("numeric_literal", token.NumericLiteral, regexp.MustCompile(`^[0-9]+`)),
		lexer.ClassMatcher("word", token.Word, isTestWordByte),
		lexer.LiteralMatcher("start_bracket", token.StartBracket, "("),
		lexer.LiteralMatcher("end_bracket", token.EndBracket, ")"),
		lexer.LiteralMatcher("comma", token.Comma, ","),
		lexer.LiteralMatcher("semicolon", token.Semicolon, ";"),
	}, lexer.LiteralMatcher("unlexable", token.Unlexable, ""))
	toks, violations := lx.Lex(source.NewTemplatedFile(raw), false)
	require.Empty(t, violations)
	return toks
}

func kwp(s string) grammar.Grammar { return grammar.NewStringParser(s, token.Keyword) }

func parseWith(t *testing.T, d *testDialect, raw string) (*ast.Node, error) {
	t.Helper()
	p := New(lexTokens(t, raw), d, IndentConfig{})
	return p.CallRuleAsRoot()
}

func leafRaws(n *ast.Node) []string {
	var out []string
	n.RecursiveCrawl(func(c *ast.Node) {
		if len(c.Children) == 0 && c.NKind != ast.KindMeta && c.NKind != ast.KindEmpty {
			out = append(out, c.Raw)
		}
	})
	return out
}

func TestSequenceMatchesInOrderCollectingGaps(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewSequence(
		grammar.Elem(kwp("select")),
		grammar.Elem(kwp("one")),
	))

	tree, err := parseWith(t, d, "select one")
	require.NoError(t, err)

	raws := leafRaws(tree)
	require.Equal(t, []string{"select", " ", "one", ""}, raws)
}

func TestSequenceRequiredElementFailureRollsBack(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewSequence(
		grammar.Elem(kwp("select")),
		grammar.Elem(kwp("missing")),
	))

	_, err := parseWith(t, d, "select one")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "PAR002", pe.Code)
}

func TestSequenceOptionalElementSkipped(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewSequence(
		grammar.Elem(kwp("a")),
		grammar.Opt(kwp("never")),
		grammar.Elem(kwp("b")),
	))

	tree, err := parseWith(t, d, "a b")
	require.NoError(t, err)
	require.Equal(t, "a b", tree.Raws())
}

func TestOneOfPrefersLongestMatch(t *testing.T) {
	d := newTestDialect()
	// Both alternatives start with "a"; the two-token one must win even
	// though it is declared second.
	d.register("Root", grammar.NewOneOf(
		kwp("a"),
		grammar.NewSequence(grammar.Elem(kwp("a")), grammar.Elem(kwp("b"))),
	))

	tree, err := parseWith(t, d, "a b")
	require.NoError(t, err)
	require.Equal(t, "a b", tree.Raws())
}

func TestOneOfPrefersCleanOverLonger(t *testing.T) {
	d := newTestDialect()
	// The greedy alternative swallows the whole input into an Unparsable
	// and is declared first; the clean single-token alternative must still
	// win, because cleanliness dominates length.
	greedy := grammar.NewSequence(grammar.Opt(kwp("never")))
	greedy.ParseMode = grammar.Greedy
	d.register("Root", grammar.NewOneOf(
		greedy,
		kwp("a"),
	))

	toks := lexTokens(t, "a b c")
	p := New(toks, d, IndentConfig{})
	mr, err := p.CallRuleAsRootMatchResult()
	require.NoError(t, err)
	require.Equal(t, 1, mr.Slice.Len())

	tree, err := New(lexTokens(t, "a b c"), d, IndentConfig{}).CallRuleAsRoot()
	require.NoError(t, err)
	var unparsable []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { unparsable = append(unparsable, n) }, ast.KindUnparsable)
	require.Empty(t, unparsable)
}

func TestOneOfExcludeForcesFailure(t *testing.T) {
	d := newTestDialect()
	oo := grammar.NewOneOf(grammar.NewTypedParser(string(token.Word)))
	oo.Exclude = kwp("stop")
	d.register("Root", grammar.NewSequence(
		grammar.Elem(kwp("go")),
		grammar.Opt(oo),
	))

	tree, err := parseWith(t, d, "go stop")
	require.NoError(t, err)
	// "stop" must not be matched by the excluded OneOf; it lands in the
	// trailing unclaimed region instead.
	var wordNodes []string
	tree.RecursiveCrawl(func(n *ast.Node) {
		if n.NKind == ast.KindToken && n.TokenType == token.Keyword {
			wordNodes = append(wordNodes, n.Raw)
		}
	})
	require.Equal(t, []string{"go"}, wordNodes)
}

func TestAnyNumberOfRepeatsUntilNoMatch(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewAnyNumberOf(grammar.NewTypedParser(string(token.Word))))

	tree, err := parseWith(t, d, "a b c")
	require.NoError(t, err)
	require.Equal(t, "a b c", tree.Raws())
}

func TestAnyNumberOfMaxTimes(t *testing.T) {
	d := newTestDialect()
	rep := grammar.NewAnyNumberOf(grammar.NewTypedParser(string(token.Word)))
	rep.MaxTimes = 2
	d.register("Root", rep)

	toks := lexTokens(t, "a b c")
	p := New(toks, d, IndentConfig{})
	mr, err := p.CallRuleAsRootMatchResult()
	require.NoError(t, err)
	// Two words plus the gap between them; "c" stays unclaimed.
	require.Equal(t, 3, mr.Slice.Len())
}

func TestAnyNumberOfMinTimesFailure(t *testing.T) {
	d := newTestDialect()
	rep := grammar.NewAnyNumberOf(kwp("x"))
	rep.MinTimes = 2
	d.register("Root", rep)

	_, err := parseWith(t, d, "x")
	require.Error(t, err)
}

func TestAnySetOfMatchesEachChildAtMostOnce(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewAnySetOf(kwp("a"), kwp("b")))

	toks := lexTokens(t, "a b a")
	p := New(toks, d, IndentConfig{})
	mr, err := p.CallRuleAsRootMatchResult()
	require.NoError(t, err)
	// "a" may not match a second time: the match stops after "a b".
	require.Equal(t, 3, mr.Slice.Len())
}

func TestDelimitedBasicList(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewDelimited(
		grammar.NewToken(token.Comma),
		grammar.NewTypedParser(string(token.Word)),
	))

	tree, err := parseWith(t, d, "a, b, c")
	require.NoError(t, err)

	var lists []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { lists = append(lists, n) }, ast.KindDelimitedList)
	require.Len(t, lists, 1)
	require.Equal(t, "a, b, c", lists[0].Raws())
}

func TestDelimitedTrailingDelimiterRejectedByDefault(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewDelimited(
		grammar.NewToken(token.Comma),
		grammar.NewTypedParser(string(token.Word)),
	))

	toks := lexTokens(t, "a, b,")
	p := New(toks, d, IndentConfig{})
	mr, err := p.CallRuleAsRootMatchResult()
	require.NoError(t, err)
	// The final comma is not part of the list.
	require.Equal(t, "a, b", rawsOf(toks, mr))
}

func TestDelimitedTrailingDelimiterKeptWhenAllowed(t *testing.T) {
	d := newTestDialect()
	g := grammar.NewDelimited(
		grammar.NewToken(token.Comma),
		grammar.NewTypedParser(string(token.Word)),
	)
	g.AllowTrailing = true
	d.register("Root", g)

	toks := lexTokens(t, "a, b,")
	p := New(toks, d, IndentConfig{})
	mr, err := p.CallRuleAsRootMatchResult()
	require.NoError(t, err)
	require.Equal(t, "a, b,", rawsOf(toks, mr))
}

func TestDelimitedMinDelimiters(t *testing.T) {
	d := newTestDialect()
	g := grammar.NewDelimited(
		grammar.NewToken(token.Comma),
		grammar.NewTypedParser(string(token.Word)),
	)
	g.MinDelimiters = 1
	d.register("Root", g)

	_, err := parseWith(t, d, "a")
	require.Error(t, err)
}

func TestDelimitedShieldsItsDelimiterFromInheritedTerminators(t *testing.T) {
	d := newTestDialect()
	// The enclosing OneOf hands down comma as a terminator; the list must
	// strip its own delimiter from that inherited set or it would stop at
	// the first comma with a single element.
	inner := grammar.NewDelimited(
		grammar.NewToken(token.Comma),
		grammar.NewTypedParser(string(token.Word)),
	)
	oo := grammar.NewOneOf(inner)
	oo.Terminators = []grammar.Grammar{grammar.NewToken(token.Comma)}
	d.register("Root", oo)

	tree, err := parseWith(t, d, "a, b")
	require.NoError(t, err)

	var lists []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { lists = append(lists, n) }, ast.KindDelimitedList)
	require.Len(t, lists, 1)
	require.Equal(t, "a, b", lists[0].Raws())
}

func TestBracketedBoundsContentToMatchingBracket(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewBracketed(
		grammar.BracketPair{
			Open:            grammar.NewToken(token.StartBracket),
			Close:           grammar.NewToken(token.EndBracket),
			BracketPersists: true,
		},
		grammar.Elem(grammar.NewDelimited(
			grammar.NewToken(token.Comma),
			grammar.NewTypedParser(string(token.Word)),
		)),
	))

	tree, err := parseWith(t, d, "(a, b)")
	require.NoError(t, err)

	var brackets []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { brackets = append(brackets, n) }, ast.KindBracketed)
	require.Len(t, brackets, 1)
	require.Equal(t, "(a, b)", brackets[0].Raws())
	require.True(t, brackets[0].BracketPersists)
}

func TestBracketedStrictFailsWhenContentStopsShort(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewBracketed(
		grammar.BracketPair{
			Open:  grammar.NewToken(token.StartBracket),
			Close: grammar.NewToken(token.EndBracket),
		},
		grammar.Elem(kwp("a")),
	))

	// Content is "a b" but the grammar only matches "a": strict mode must
	// fail the whole bracket rather than skipping "b".
	_, err := parseWith(t, d, "(a b)")
	require.Error(t, err)
}

func TestBracketedGreedyWrapsLeftoverContent(t *testing.T) {
	d := newTestDialect()
	g := grammar.NewBracketed(
		grammar.BracketPair{
			Open:  grammar.NewToken(token.StartBracket),
			Close: grammar.NewToken(token.EndBracket),
		},
		grammar.Elem(kwp("a")),
	)
	g.ParseMode = grammar.Greedy
	d.register("Root", g)

	tree, err := parseWith(t, d, "(a b)")
	require.NoError(t, err)

	var unparsable []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { unparsable = append(unparsable, n) }, ast.KindUnparsable)
	require.Len(t, unparsable, 1)
	require.Equal(t, "b", unparsable[0].Raws())
}

func TestGreedySequenceWrapsTailAsUnparsable(t *testing.T) {
	d := newTestDialect()
	g := grammar.NewSequence(grammar.Opt(kwp("never")))
	g.ParseMode = grammar.Greedy
	d.register("Root", g)

	tree, err := parseWith(t, d, "what is this")
	require.NoError(t, err)

	var unparsable []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { unparsable = append(unparsable, n) }, ast.KindUnparsable)
	require.Len(t, unparsable, 1)
	require.Equal(t, "what is this", unparsable[0].Raws())
	// Reconstruction still holds.
	require.Equal(t, "what is this", tree.Raws())
}

func TestRefWrapsWithSegmentType(t *testing.T) {
	d := newTestDialect()
	d.register("WordSegment", grammar.NewTypedParser(string(token.Word)))
	d.segs["WordSegment"] = "word_segment"
	d.register("Root", grammar.NewSequence(grammar.Elem(grammar.NewRef("WordSegment"))))

	tree, err := parseWith(t, d, "hello")
	require.NoError(t, err)

	var refs []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { refs = append(refs, n) }, ast.KindRef)
	require.Len(t, refs, 1)
	require.Equal(t, "word_segment", refs[0].SegmentType)
}

func TestRefWithoutSegmentTypePassesThrough(t *testing.T) {
	d := newTestDialect()
	d.register("WordSegment", grammar.NewTypedParser(string(token.Word)))
	d.register("Root", grammar.NewSequence(grammar.Elem(grammar.NewRef("WordSegment"))))

	tree, err := parseWith(t, d, "hello")
	require.NoError(t, err)

	var refs []*ast.Node
	tree.RecursiveCrawl(func(n *ast.Node) { refs = append(refs, n) }, ast.KindRef)
	require.Empty(t, refs)
}

func TestUnresolvedRefIsParseError(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewSequence(grammar.Elem(grammar.NewRef("NoSuchSegment"))))

	_, err := parseWith(t, d, "hello")
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "PAR001", pe.Code)
}

func TestRefResultsAreCached(t *testing.T) {
	d := newTestDialect()
	d.register("WordSegment", grammar.NewTypedParser(string(token.Word)))
	d.segs["WordSegment"] = "word_segment"
	// Both alternatives parse the same Ref at position 0; the second
	// attempt must come from the cache.
	d.register("Root", grammar.NewOneOf(
		grammar.NewSequence(grammar.Elem(grammar.NewRef("WordSegment")), grammar.Elem(kwp("x"))),
		grammar.NewSequence(grammar.Elem(grammar.NewRef("WordSegment")), grammar.Elem(kwp("y"))),
	))

	toks := lexTokens(t, "hello y")
	p := New(toks, d, IndentConfig{})
	_, err := p.CallRuleAsRoot()
	require.NoError(t, err)
	require.Greater(t, p.CacheStats().Hits, 0)
}

func TestParseTwiceYieldsIdenticalTrees(t *testing.T) {
	d := newTestDialect()
	d.register("WordSegment", grammar.NewTypedParser(string(token.Word)))
	d.segs["WordSegment"] = "word_segment"
	d.register("Root", grammar.NewAnyNumberOf(grammar.NewRef("WordSegment")))

	raw := "one two three"
	a, err := parseWith(t, d, raw)
	require.NoError(t, err)
	b, err := parseWith(t, d, raw)
	require.NoError(t, err)

	require.Equal(t, a.ToTuple(false, true, true), b.ToTuple(false, true, true))
}

func TestTransparentTokensAppearExactlyOnce(t *testing.T) {
	d := newTestDialect()
	d.register("InnerSegment", grammar.NewSequence(grammar.Elem(kwp("a")), grammar.Elem(kwp("b"))))
	d.segs["InnerSegment"] = "inner"
	d.register("Root", grammar.NewSequence(
		grammar.Elem(grammar.NewRef("InnerSegment")),
		grammar.Elem(kwp("c")),
	))

	tree, err := parseWith(t, d, "a b c")
	require.NoError(t, err)

	seen := map[int]int{}
	tree.RecursiveCrawl(func(n *ast.Node) { seen[n.Idx]++ }, ast.KindWhitespace)
	for idx, count := range seen {
		require.Equal(t, 1, count, "whitespace token %d collected more than once", idx)
	}
	require.Equal(t, "a b c", tree.Raws())
}

func TestMetaGrammarInsertsIndent(t *testing.T) {
	d := newTestDialect()
	d.register("Root", grammar.NewSequence(
		grammar.Elem(grammar.NewMeta(grammar.MetaIndent)),
		grammar.Elem(kwp("a")),
		grammar.Elem(grammar.NewMeta(grammar.MetaDedent)),
	))

	tree, err := parseWith(t, d, "a")
	require.NoError(t, err)

	var metas []string
	tree.RecursiveCrawl(func(n *ast.Node) { metas = append(metas, n.MetaKind) }, ast.KindMeta)
	require.Equal(t, []string{"Indent", "Dedent"}, metas)
}

func TestAnythingConsumesUpToTerminator(t *testing.T) {
	d := newTestDialect()
	seq := grammar.NewSequence(
		grammar.Elem(kwp("go")),
		grammar.Elem(grammar.NewAnything()),
	)
	seq.Terminators = []grammar.Grammar{grammar.NewToken(token.Semicolon)}
	d.register("Root", seq)

	toks := lexTokens(t, "go a b ; c")
	p := New(toks, d, IndentConfig{})
	mr, err := p.CallRuleAsRootMatchResult()
	require.NoError(t, err)
	require.Equal(t, "go a b ", rawsOf(toks, mr))
}

func rawsOf(toks []token.Token, mr MatchResult) string {
	var out string
	for i := mr.Slice.Start; i < mr.Slice.Stop && i < len(toks); i++ {
		out += toks[i].Raw
	}
	return out
}
