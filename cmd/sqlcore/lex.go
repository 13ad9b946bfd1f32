package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sunholo/sqlcore/internal/lexer"
	"github.com/sunholo/sqlcore/internal/token"
)

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

var lexJSON bool

var lexCmd = &cobra.Command{
	Use:   "lex [sql...]",
	Short: "Tokenise SQL and print the token stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		sql, err := readInput(args)
		if err != nil {
			return err
		}
		d, err := resolveDialect()
		if err != nil {
			return err
		}

		toks, violations := d.Lex(sql, false)
		printTokens(toks)
		return reportViolations(violations, lexJSON)
	},
}

func init() {
	lexCmd.Flags().BoolVar(&lexJSON, "json", false, "emit violations as structured JSON")
}

func printTokens(toks []token.Token) {
	for i, tk := range toks {
		loc := fmt.Sprintf("%d:%d", tk.PosMarker.LineNo(), tk.PosMarker.LinePos())
		label := string(tk.TokenType)
		switch {
		case tk.IsMeta():
			label = yellow(label)
		case tk.IsTransparent():
			label = dim(label)
		default:
			label = cyan(label)
		}
		fmt.Printf("%4d  %-8s %-22s %q\n", i, dim(loc), label, tk.Raw)
	}
}

func reportViolations(violations []lexer.Violation, asJSON bool) error {
	if len(violations) == 0 {
		return nil
	}
	for _, v := range violations {
		if asJSON {
			out, err := v.ToReport().ToJSON(true)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, out)
			continue
		}
		fmt.Fprintln(os.Stderr, red(v.Error()))
	}
	return fmt.Errorf("%d lex violation(s)", len(violations))
}
