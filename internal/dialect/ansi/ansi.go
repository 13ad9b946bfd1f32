// Package ansi is the reference dialect: a compact ANSI-flavoured matcher
// table and grammar registry sufficient to exercise the whole engine end
// to end (SELECT/INSERT statements, expressions, function calls, bracketed
// sub-expressions, comments). It is a configuration instance of the
// dialect registry, not part of the core -- production dialects are
// expected to live outside this module and be far larger.
package ansi

import (
	"sync"

	"github.com/sunholo/sqlcore/internal/dialect"
	"github.com/sunholo/sqlcore/internal/lexer"
	"github.com/sunholo/sqlcore/internal/token"
)

var (
	once sync.Once
	ansi *dialect.Dialect
)

// Dialect returns the shared ANSI dialect instance, building it on first
// use. The instance is immutable after construction and safe to share
// across parsers.
func Dialect() *dialect.Dialect {
	once.Do(build)
	return ansi
}

func init() {
	dialect.RegisterDialect(Dialect())
}

// reservedKeywords may not be used as naked identifiers (aliases, column
// names). Unreserved keywords (function names like COUNT) are just words.
var reservedKeywords = []string{
	"ALL", "AND", "AS", "ASC", "BETWEEN", "BY", "CASE", "CAST", "CROSS",
	"DELETE", "DESC", "DISTINCT", "ELSE", "END", "EXISTS", "FALSE", "FROM",
	"FULL", "GROUP", "HAVING", "IN", "INNER", "INSERT", "INTO", "IS",
	"JOIN", "LEFT", "LIKE", "LIMIT", "NOT", "NULL", "OFFSET", "ON", "OR",
	"ORDER", "OUTER", "RIGHT", "SELECT", "SET", "THEN", "TRUE", "UNION",
	"UPDATE", "USING", "VALUES", "WHEN", "WHERE",
}

func build() {
	d := dialect.New("ansi")
	d.AddKeywords(reservedKeywords...)
	d.SetMatchers(matchers(), lexer.LiteralMatcher("unlexable", token.Unlexable, ""))
	registerRules(d)
	ansi = d
}
