// Command vecta is the CLI driver for the vecta language (spec.md §6 "CLI",
// SPEC_FULL.md §11.3): `vecta run <file>` parses, analyzes, and interprets a
// program; `vecta repl` starts an interactive session.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"vecta/internal/analyzer"
	"vecta/internal/ast"
	"vecta/internal/interp"
	"vecta/internal/lexer"
	"vecta/internal/parser"
	"vecta/internal/repl"
)

func main() { os.Exit(vectaMain()) }

// vectaMain is the testable entry point (see main_test.go's testscript.RunMain).
func vectaMain() int {
	if len(os.Args) < 2 {
		usage()
		return 1
	}

	switch os.Args[1] {
	case "run":
		return runCmd(os.Args[2:])
	case "repl":
		repl.Start()
		return 0
	default:
		usage()
		return 1
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vecta run [-stats] [-ast] <file>")
	fmt.Fprintln(os.Stderr, "       vecta repl")
}

func runCmd(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	stats := fs.Bool("stats", false, "print timing and size statistics")
	printAST := fs.Bool("ast", false, "print the parsed AST before running")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	rest := fs.Args()
	if len(rest) != 1 {
		usage()
		return 1
	}
	path := rest[0]

	start := time.Now()
	src, err := os.ReadFile(path)
	if err != nil {
		log.Printf("vecta: %v", err)
		return 1
	}

	toks := lexer.New(string(src)).ScanTokens()
	p := parser.NewWithSource(toks, string(src), path)
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		for _, e := range p.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return 1
	}
	parseDone := time.Now()

	if *printAST {
		printStmts(stmts)
	}

	result := analyzer.Analyze(stmts)
	analyzeDone := time.Now()
	if result.Diagnostics.HasErrors() {
		fmt.Fprintln(os.Stderr, result.Diagnostics.String())
		return 1
	}

	ip := interp.New(result.Reactor, result.RootScope)
	_, fault := ip.Run(stmts)
	runDone := time.Now()
	if fault != nil {
		fmt.Fprintln(os.Stderr, fault.Error())
		return 1
	}

	if *stats {
		log.Printf(
			"source %s | parse %s | analyze %s | run %s | total %s",
			humanize.Bytes(uint64(len(src))),
			parseDone.Sub(start),
			analyzeDone.Sub(parseDone),
			runDone.Sub(analyzeDone),
			runDone.Sub(start),
		)
	}
	return 0
}

func printStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		fmt.Printf("%+v\n", s)
	}
}
