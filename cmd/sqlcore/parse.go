package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sunholo/sqlcore/internal/dialect"
	"github.com/sunholo/sqlcore/internal/parser"
)

var (
	parseCodeOnly    bool
	parseShowRaw     bool
	parseIncludeMeta bool
	parseStats       bool
	parseJSON        bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [sql...]",
	Short: "Parse SQL and print the syntax tree as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		sql, err := readInput(args)
		if err != nil {
			return err
		}
		d, err := resolveDialect()
		if err != nil {
			return err
		}
		return runParse(d, sql)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseCodeOnly, "code-only", false, "drop whitespace/comments from the output")
	parseCmd.Flags().BoolVar(&parseShowRaw, "show-raw", false, "label unnamed segments with their rule name")
	parseCmd.Flags().BoolVar(&parseIncludeMeta, "include-meta", false, "keep Indent/Dedent markers in the output")
	parseCmd.Flags().BoolVar(&parseStats, "stats", false, "print cache and pruning statistics after the parse")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "emit errors as structured JSON")
}

func runParse(d *dialect.Dialect, sql string) error {
	toks, violations := d.Lex(sql, false)
	if err := reportViolations(violations, parseJSON); err != nil {
		return err
	}

	p := parser.New(toks, d, parser.IndentConfig{})
	tree, err := p.CallRuleAsRoot()
	if err != nil {
		if parseJSON {
			var pe *parser.ParseError
			if errors.As(err, &pe) {
				out, jerr := pe.ToReport().ToJSON(true)
				if jerr == nil {
					fmt.Fprintln(os.Stderr, out)
				}
			}
		}
		return err
	}

	record, err := tree.AsRecord(parseCodeOnly, parseShowRaw, parseIncludeMeta)
	if err != nil {
		return err
	}
	fmt.Print(record)

	if parseStats {
		printStats(p)
	}
	return nil
}

func printStats(p *parser.Parser) {
	cache := p.CacheStats()
	pruning := p.PruningStats()
	fmt.Fprintln(os.Stderr, dim("---"))
	fmt.Fprintf(os.Stderr, "cache:   %d hits / %d misses (%.1f%% hit rate)\n",
		cache.Hits, cache.Misses, cache.HitRate()*100)
	fmt.Fprintf(os.Stderr, "pruning: %d calls, %d candidates kept\n",
		pruning.Calls, pruning.Kept)
}
