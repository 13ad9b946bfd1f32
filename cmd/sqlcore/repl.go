package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/sunholo/sqlcore/internal/dialect"
	"github.com/sunholo/sqlcore/internal/parser"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively lex and parse SQL statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDialect()
		if err != nil {
			return err
		}
		runREPL(d)
		return nil
	},
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sqlcore_history")
}

func runREPL(d *dialect.Dialect) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if path := historyPath(); path != "" {
		if f, err := os.Open(path); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(path); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}()
	}

	fmt.Printf("sqlcore %s -- dialect %s\n", version, green(d.Name()))
	fmt.Println(dim("Type SQL to parse it, :lex <sql> to tokenise, :help for commands."))

	var lastParser *parser.Parser
	for {
		input, err := line.Prompt("sqlcore> ")
		if err != nil {
			// liner.ErrPromptAborted (ctrl-c) or io.EOF (ctrl-d)
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case input == ":quit" || input == ":q" || input == ":exit":
			return
		case input == ":help" || input == ":h":
			printREPLHelp()
		case input == ":stats":
			if lastParser == nil {
				fmt.Println(yellow("no parse yet"))
				continue
			}
			printStats(lastParser)
		case strings.HasPrefix(input, ":lex "):
			toks, violations := d.Lex(strings.TrimPrefix(input, ":lex "), false)
			printTokens(toks)
			for _, v := range violations {
				fmt.Println(red(v.Error()))
			}
		case strings.HasPrefix(input, ":"):
			fmt.Println(red("unknown command: " + input))
		default:
			lastParser = replParse(d, input)
		}
	}
}

func replParse(d *dialect.Dialect, sql string) *parser.Parser {
	toks, violations := d.Lex(sql, false)
	for _, v := range violations {
		fmt.Println(red(v.Error()))
	}

	p := parser.New(toks, d, parser.IndentConfig{})
	tree, err := p.CallRuleAsRoot()
	if err != nil {
		fmt.Println(red(err.Error()))
		return p
	}
	record, err := tree.AsRecord(false, false, false)
	if err != nil {
		fmt.Println(red(err.Error()))
		return p
	}
	fmt.Print(record)
	return p
}

func printREPLHelp() {
	fmt.Println("Commands:")
	fmt.Println("  <sql>        parse a statement and print its tree")
	fmt.Println("  :lex <sql>   print the token stream for a statement")
	fmt.Println("  :stats       cache/pruning statistics for the last parse")
	fmt.Println("  :quit        exit")
}
