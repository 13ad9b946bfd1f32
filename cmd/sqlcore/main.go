// Command sqlcore is a thin demonstration harness over the lexer/parser
// core: it contains no parsing logic of its own, only the plumbing to run
// the pipeline on files or stdin and render the results.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sunholo/sqlcore/internal/dialect"
	_ "github.com/sunholo/sqlcore/internal/dialect/ansi"
)

// Version info, injected at build time via ldflags.
var (
	version   = "dev"
	buildTime = "unknown"
)

var dialectName string

var rootCmd = &cobra.Command{
	Use:           "sqlcore",
	Short:         "SQL lexer and parser toolkit",
	Long:          "sqlcore tokenises and parses SQL into a position-preserving syntax tree.",
	Version:       fmt.Sprintf("%s (built %s)", version, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dialectName, "dialect", "ansi", "SQL dialect to lex/parse with")
	rootCmd.AddCommand(lexCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(replCmd)
}

func resolveDialect() (*dialect.Dialect, error) {
	d, ok := dialect.Get(dialectName)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (available: %s)",
			dialectName, strings.Join(dialect.Names(), ", "))
	}
	return d, nil
}

// readInput returns the SQL to process: the joined arguments, or stdin
// when no arguments are given (so `echo 'SELECT 1' | sqlcore parse`
// works).
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
