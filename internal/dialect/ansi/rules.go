package ansi

import (
	"regexp"

	"github.com/sunholo/sqlcore/internal/dialect"
	"github.com/sunholo/sqlcore/internal/grammar"
	"github.com/sunholo/sqlcore/internal/token"
)

// Grammar-building shorthands. Each call builds a fresh grammar value;
// structural hashing makes equal values cache-compatible, so sharing
// instances is an optimisation, not a requirement.
func kw(s string) grammar.Grammar { return grammar.NewStringParser(s, token.Keyword) }

func sym(tt token.Type) grammar.Grammar { return grammar.NewToken(tt) }

func ref(name string) *grammar.Ref { return grammar.NewRef(name) }

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func reservedMulti() grammar.Grammar {
	return grammar.NewMultiStringParser(reservedKeywords, token.Keyword)
}

// excludedIdent is a NakedIdentifierSegment reference that refuses
// reserved keywords -- what keeps `FROM` in `SELECT a FROM t` from being
// swallowed as an alias for `a`.
func excludedIdent() *grammar.Ref {
	r := ref("NakedIdentifierSegment")
	r.Exclude = reservedMulti()
	return r
}

func parens() grammar.BracketPair {
	return grammar.BracketPair{
		Open:            sym(token.StartBracket),
		Close:           sym(token.EndBracket),
		BracketPersists: true,
	}
}

// clauseTerminators are the keywords/symbols that end any one clause of a
// SELECT statement at bracket depth zero.
func clauseTerminators(kws ...string) []grammar.Grammar {
	out := make([]grammar.Grammar, 0, len(kws)+1)
	for _, k := range kws {
		out = append(out, kw(k))
	}
	out = append(out, sym(token.Semicolon))
	return out
}

func registerRules(d *dialect.Dialect) {
	// --- identifiers and references ----------------------------------------

	naked := grammar.NewRegexParser(identPattern, "", string(token.Word))
	d.Register("NakedIdentifierSegment", naked)

	d.Register("QuotedIdentifierSegment", grammar.NewTypedParser(string(token.DoubleQuote)))

	d.Register("IdentifierSegment", grammar.NewOneOf(
		excludedIdent(),
		ref("QuotedIdentifierSegment"),
	))
	d.SegmentType("IdentifierSegment", "identifier")

	colRef := grammar.NewDelimited(sym(token.Dot), ref("IdentifierSegment"))
	colRef.AllowGaps = false
	d.Register("ColumnReferenceSegment", colRef)
	d.SegmentType("ColumnReferenceSegment", "column_reference")

	objRef := grammar.NewDelimited(sym(token.Dot), ref("IdentifierSegment"))
	objRef.AllowGaps = false
	d.Register("ObjectReferenceSegment", objRef)
	d.SegmentType("ObjectReferenceSegment", "table_reference")

	// --- literals -----------------------------------------------------------

	d.Register("LiteralSegment", grammar.NewOneOf(
		grammar.NewTypedParser(string(token.NumericLiteral)),
		grammar.NewTypedParser(string(token.SingleQuote)),
		grammar.NewTypedParser(string(token.DollarQuote)),
		kw("NULL"),
		kw("TRUE"),
		kw("FALSE"),
	))
	d.SegmentType("LiteralSegment", "literal")

	// --- expressions --------------------------------------------------------

	// Multi-symbol comparison operators are token sequences with gaps
	// disallowed: `<` `>` only reads as `<>` when adjacent.
	tight := func(parts ...grammar.Grammar) grammar.Grammar {
		elems := make([]grammar.OptionalElement, len(parts))
		for i, p := range parts {
			elems[i] = grammar.Elem(p)
		}
		s := grammar.NewSequence(elems...)
		s.AllowGaps = false
		return s
	}

	d.Register("BinaryOperatorSegment", grammar.NewOneOf(
		tight(sym(token.LessThan), sym(token.GreaterThan)),
		tight(sym(token.Not), sym(token.Equals)),
		tight(sym(token.LessThan), sym(token.Equals)),
		tight(sym(token.GreaterThan), sym(token.Equals)),
		tight(sym(token.VerticalBar), sym(token.VerticalBar)),
		sym(token.Equals),
		sym(token.LessThan),
		sym(token.GreaterThan),
		sym(token.Plus),
		sym(token.Minus),
		sym(token.Star),
		sym(token.Divide),
		sym(token.Percent),
		sym(token.Ampersand),
		sym(token.VerticalBar),
		sym(token.Caret),
		sym(token.LikeOperator),
		kw("AND"),
		kw("OR"),
		kw("LIKE"),
		kw("IN"),
		grammar.NewSequence(grammar.Elem(kw("NOT")), grammar.Elem(kw("IN"))),
		grammar.NewSequence(grammar.Elem(kw("NOT")), grammar.Elem(kw("LIKE"))),
	))
	d.SegmentType("BinaryOperatorSegment", "binary_operator")

	// IS [NOT] NULL is a postfix predicate: nothing follows it, so it
	// cannot ride along as a binary operator expecting a right-hand term.
	d.Register("NullPredicateSegment", grammar.NewSequence(
		grammar.Elem(kw("IS")),
		grammar.Opt(kw("NOT")),
		grammar.Elem(kw("NULL")),
	))
	d.SegmentType("NullPredicateSegment", "null_predicate")

	d.Register("ExpressionListSegment", func() grammar.Grammar {
		g := grammar.NewDelimited(sym(token.Comma), ref("ExpressionSegment"))
		g.MinDelimiters = 1
		return g
	}())

	d.Register("BracketedExpressionSegment", grammar.NewBracketed(parens(),
		grammar.Elem(grammar.NewOneOf(
			ref("ExpressionListSegment"),
			ref("ExpressionSegment"),
		)),
	))

	d.Register("FunctionNameSegment", func() grammar.Grammar {
		r := ref("NakedIdentifierSegment")
		r.Exclude = reservedMulti()
		return r
	}())
	d.SegmentType("FunctionNameSegment", "function_name")

	d.Register("FunctionContentsSegment", grammar.NewBracketed(parens(),
		grammar.Opt(grammar.NewOneOf(
			sym(token.Star),
			ref("ExpressionListSegment"),
			ref("ExpressionSegment"),
		)),
	))

	d.Register("FunctionSegment", grammar.NewSequence(
		grammar.Elem(ref("FunctionNameSegment")),
		grammar.Elem(ref("FunctionContentsSegment")),
	))
	d.SegmentType("FunctionSegment", "function")

	d.Register("TermSegment", grammar.NewOneOf(
		ref("FunctionSegment"),
		ref("LiteralSegment"),
		ref("ColumnReferenceSegment"),
		ref("BracketedExpressionSegment"),
		grammar.NewSequence(
			grammar.Elem(grammar.NewOneOf(kw("NOT"), sym(token.Minus), sym(token.Plus))),
			grammar.Elem(ref("TermSegment")),
		),
	))

	d.Register("ExpressionSegment", grammar.NewSequence(
		grammar.Elem(ref("TermSegment")),
		grammar.Opt(grammar.NewAnyNumberOf(grammar.NewSequence(
			grammar.Elem(ref("BinaryOperatorSegment")),
			grammar.Elem(ref("TermSegment")),
		))),
		grammar.Opt(ref("NullPredicateSegment")),
	))
	d.SegmentType("ExpressionSegment", "expression")

	// --- select -------------------------------------------------------------

	d.Register("AliasExpressionSegment", grammar.NewSequence(
		grammar.Opt(kw("AS")),
		grammar.Elem(grammar.NewOneOf(excludedIdent(), ref("QuotedIdentifierSegment"))),
	))
	d.SegmentType("AliasExpressionSegment", "alias_expression")

	d.Register("SelectTargetSegment", grammar.NewOneOf(
		sym(token.Star),
		grammar.NewSequence(
			grammar.Elem(ref("ExpressionSegment")),
			grammar.Opt(ref("AliasExpressionSegment")),
		),
	))
	d.SegmentType("SelectTargetSegment", "select_target")

	d.Register("SelectTargetListSegment",
		grammar.NewDelimited(sym(token.Comma), ref("SelectTargetSegment")))
	d.SegmentType("SelectTargetListSegment", "select_target_list")

	selectClause := grammar.NewSequence(
		grammar.Elem(kw("SELECT")),
		grammar.Opt(grammar.NewOneOf(kw("DISTINCT"), kw("ALL"))),
		grammar.Elem(ref("SelectTargetListSegment")),
	)
	selectClause.Terminators = clauseTerminators("FROM", "WHERE", "GROUP", "ORDER", "LIMIT")
	d.Register("SelectClauseSegment", selectClause)
	d.SegmentType("SelectClauseSegment", "select_clause")

	d.Register("TableExpressionSegment", grammar.NewSequence(
		grammar.Elem(ref("ObjectReferenceSegment")),
		grammar.Opt(ref("AliasExpressionSegment")),
	))
	d.SegmentType("TableExpressionSegment", "table_expression")

	fromClause := grammar.NewSequence(
		grammar.Elem(kw("FROM")),
		grammar.Elem(grammar.NewDelimited(sym(token.Comma), ref("TableExpressionSegment"))),
	)
	fromClause.Terminators = clauseTerminators("WHERE", "GROUP", "ORDER", "LIMIT")
	d.Register("FromClauseSegment", fromClause)
	d.SegmentType("FromClauseSegment", "from_clause")

	whereClause := grammar.NewSequence(
		grammar.Elem(kw("WHERE")),
		grammar.Elem(ref("ExpressionSegment")),
	)
	whereClause.Terminators = clauseTerminators("GROUP", "ORDER", "LIMIT")
	d.Register("WhereClauseSegment", whereClause)
	d.SegmentType("WhereClauseSegment", "where_clause")

	groupByClause := grammar.NewSequence(
		grammar.Elem(kw("GROUP")),
		grammar.Elem(kw("BY")),
		grammar.Elem(grammar.NewDelimited(sym(token.Comma), ref("ColumnReferenceSegment"))),
	)
	groupByClause.Terminators = clauseTerminators("ORDER", "LIMIT", "HAVING")
	d.Register("GroupByClauseSegment", groupByClause)
	d.SegmentType("GroupByClauseSegment", "groupby_clause")

	orderByClause := grammar.NewSequence(
		grammar.Elem(kw("ORDER")),
		grammar.Elem(kw("BY")),
		grammar.Elem(grammar.NewDelimited(sym(token.Comma), grammar.NewSequence(
			grammar.Elem(ref("ExpressionSegment")),
			grammar.Opt(grammar.NewOneOf(kw("ASC"), kw("DESC"))),
		))),
	)
	orderByClause.Terminators = clauseTerminators("LIMIT")
	d.Register("OrderByClauseSegment", orderByClause)
	d.SegmentType("OrderByClauseSegment", "orderby_clause")

	d.Register("LimitClauseSegment", grammar.NewSequence(
		grammar.Elem(kw("LIMIT")),
		grammar.Elem(grammar.NewTypedParser(string(token.NumericLiteral))),
		grammar.Opt(grammar.NewSequence(
			grammar.Elem(kw("OFFSET")),
			grammar.Elem(grammar.NewTypedParser(string(token.NumericLiteral))),
		)),
	))
	d.SegmentType("LimitClauseSegment", "limit_clause")

	d.Register("SelectStatementSegment", grammar.NewSequence(
		grammar.Elem(ref("SelectClauseSegment")),
		grammar.Opt(ref("FromClauseSegment")),
		grammar.Opt(ref("WhereClauseSegment")),
		grammar.Opt(ref("GroupByClauseSegment")),
		grammar.Opt(ref("OrderByClauseSegment")),
		grammar.Opt(ref("LimitClauseSegment")),
	))
	d.SegmentType("SelectStatementSegment", "select_statement")

	// --- insert -------------------------------------------------------------

	d.Register("ValuesRowSegment", grammar.NewBracketed(parens(),
		grammar.Elem(grammar.NewDelimited(sym(token.Comma), ref("ExpressionSegment"))),
	))
	d.SegmentType("ValuesRowSegment", "values_row")

	d.Register("InsertStatementSegment", grammar.NewSequence(
		grammar.Elem(kw("INSERT")),
		grammar.Elem(kw("INTO")),
		grammar.Elem(ref("ObjectReferenceSegment")),
		grammar.Opt(grammar.NewBracketed(parens(),
			grammar.Elem(grammar.NewDelimited(sym(token.Comma), ref("IdentifierSegment"))),
		)),
		grammar.Elem(kw("VALUES")),
		grammar.Elem(grammar.NewDelimited(sym(token.Comma), ref("ValuesRowSegment"))),
	))
	d.SegmentType("InsertStatementSegment", "insert_statement")

	// --- file ---------------------------------------------------------------

	d.Register("StatementSegment", grammar.NewOneOf(
		ref("SelectStatementSegment"),
		ref("InsertStatementSegment"),
	))
	d.SegmentType("StatementSegment", "statement")

	file := grammar.NewSequence(
		grammar.Opt(grammar.NewAnyNumberOf(
			ref("StatementSegment"),
			sym(token.Semicolon),
		)),
	)
	file.ParseMode = grammar.Greedy
	d.Register("FileSegment", file)
	d.SegmentType("FileSegment", "file")
	d.SetRoot("FileSegment")
}
