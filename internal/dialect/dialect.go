// Package dialect holds the registry a parser consumes: a named set of
// lexer matchers, a keyword list, and a rule-name -> grammar mapping with
// optional segment types. A dialect is built once at start-up and is
// immutable (and therefore freely shareable) from then on; the grammar
// values it registers are what the parser's identity-keyed hint and hash
// caches rely on staying put.
package dialect

import (
	"sort"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sunholo/sqlcore/internal/ast"
	"github.com/sunholo/sqlcore/internal/grammar"
	"github.com/sunholo/sqlcore/internal/lexer"
	"github.com/sunholo/sqlcore/internal/parser"
	"github.com/sunholo/sqlcore/internal/source"
	"github.com/sunholo/sqlcore/internal/token"
)

// Dialect implements parser.Dialect and carries everything else a caller
// needs to run the full pipeline for one SQL flavour.
type Dialect struct {
	name string

	keywords map[string]bool

	matchers   []lexer.Matcher
	lastResort lexer.Matcher

	rules        map[string]grammar.Grammar
	segmentTypes map[string]string
	rootRule     string
}

// New creates an empty dialect. Callers populate it with SetMatchers,
// AddKeywords and Register before first use; none of the mutators are
// safe to call once parsing has started.
func New(name string) *Dialect {
	return &Dialect{
		name:         name,
		keywords:     map[string]bool{},
		rules:        map[string]grammar.Grammar{},
		segmentTypes: map[string]string{},
		rootRule:     "FileSegment",
	}
}

// Name returns the dialect's registry name.
func (d *Dialect) Name() string { return d.name }

// SetMatchers installs the ordered lexer matcher table and the
// last-resort matcher producing unlexable tokens.
func (d *Dialect) SetMatchers(matchers []lexer.Matcher, lastResort lexer.Matcher) {
	d.matchers = matchers
	d.lastResort = lastResort
}

// foldKeyword is the canonical comparison form for keyword lookup:
// Unicode uppercasing rather than the ASCII-only fold the hot token path
// uses, since dialect keyword tables are consulted at build time and may
// carry non-ASCII identifiers. A Caser is stateful, so one is built per
// call rather than shared.
func foldKeyword(w string) string {
	return cases.Upper(language.Und).String(w)
}

// AddKeywords records words as reserved keywords (stored case-folded).
func (d *Dialect) AddKeywords(words ...string) {
	for _, w := range words {
		d.keywords[foldKeyword(w)] = true
	}
}

// IsKeyword reports whether word (case-insensitively) is reserved.
func (d *Dialect) IsKeyword(word string) bool {
	return d.keywords[foldKeyword(word)]
}

// Keywords returns the sorted keyword list.
func (d *Dialect) Keywords() []string {
	out := make([]string, 0, len(d.keywords))
	for k := range d.keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Register binds a rule name to its grammar, walking the grammar to
// install this dialect's resolver on every Ref found inside it so that
// by-name indirection works at match time.
func (d *Dialect) Register(name string, g grammar.Grammar) {
	d.rules[name] = g
	grammar.Walk(g, func(child grammar.Grammar) {
		if ref, ok := child.(*grammar.Ref); ok {
			ref.SetResolver(d.resolve)
		}
	})
}

// SegmentType declares the segment type the parser tags matches of a
// rule with; rules without one pass their match through unwrapped.
func (d *Dialect) SegmentType(rule, segType string) {
	d.segmentTypes[rule] = segType
}

// SetRoot overrides the root rule name (default "FileSegment").
func (d *Dialect) SetRoot(name string) { d.rootRule = name }

func (d *Dialect) resolve(name string) grammar.Grammar {
	return d.rules[name]
}

// GetGrammar implements parser.Dialect.
func (d *Dialect) GetGrammar(name string) (grammar.Grammar, bool) {
	g, ok := d.rules[name]
	return g, ok
}

// GetSegmentType implements parser.Dialect.
func (d *Dialect) GetSegmentType(name string) (string, bool) {
	st, ok := d.segmentTypes[name]
	return st, ok
}

// RootRuleName implements parser.Dialect.
func (d *Dialect) RootRuleName() string { return d.rootRule }

// Lexer builds this dialect's lexer from its matcher table.
func (d *Dialect) Lexer() *lexer.Lexer {
	return lexer.New(d.matchers, d.lastResort)
}

// Lex normalizes and tokenises raw SQL text with this dialect's matcher
// table.
func (d *Dialect) Lex(sql string, templateBlocksIndent bool) ([]token.Token, []lexer.Violation) {
	normalized := string(lexer.Normalize([]byte(sql)))
	file := source.NewTemplatedFile(normalized)
	return d.Lexer().Lex(file, templateBlocksIndent)
}

// Parse is the whole-pipeline convenience: lex sql, parse the dialect's
// root rule, materialise the tree. Lex violations are returned alongside
// the tree rather than aborting the parse -- the caller decides how much
// degradation to tolerate.
func (d *Dialect) Parse(sql string) (*ast.Node, []lexer.Violation, error) {
	toks, violations := d.Lex(sql, false)
	p := parser.New(toks, d, parser.IndentConfig{})
	node, err := p.CallRuleAsRoot()
	if err != nil {
		return nil, violations, err
	}
	return node, violations, nil
}

// registry is the process-global named-dialect table the CLI resolves
// --dialect flags against.
var (
	registryMu sync.RWMutex
	registry   = map[string]*Dialect{}
)

// RegisterDialect adds d to the global registry under its own name.
func RegisterDialect(d *Dialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
}

// Get returns a registered dialect by name.
func Get(name string) (*Dialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	return d, ok
}

// Names lists all registered dialect names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
