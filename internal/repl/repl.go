// Package repl implements vecta's interactive line-at-a-time REPL
// (spec.md §11.3), layering analyzer.Session/interp.Session so that a name
// declared on one line resolves and keeps its value on the next.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"vecta/internal/analyzer"
	"vecta/internal/interp"
	"vecta/internal/lexer"
	"vecta/internal/parser"
	"vecta/internal/value"
)

// Start runs the REPL against stdin/stdout until EOF or an "exit" line.
func Start() {
	run(os.Stdin, os.Stdout)
}

func run(in io.Reader, out io.Writer) {
	as := analyzer.NewSession()
	is := interp.NewSession(as.Reactor(), as.RootScope())

	prompt := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	if prompt {
		fmt.Fprintln(out, "vecta REPL | type 'exit' to quit")
	}

	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(out, ">>> ")
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}
		evalLine(line, as, is, out)
	}
}

func evalLine(line string, as *analyzer.Session, is *interp.Session, out io.Writer) {
	toks := lexer.New(line).ScanTokens()
	p := parser.NewWithSource(toks, line, "<repl>")
	stmts := p.Parse()
	for _, err := range p.Errors {
		fmt.Fprintln(out, err)
	}
	if len(p.Errors) > 0 {
		return
	}

	diags := as.Feed(stmts)
	for _, d := range diags {
		fmt.Fprintln(out, d.Error())
	}
	if len(diags) > 0 {
		return
	}

	result, fault := is.Feed(stmts)
	if fault != nil {
		fmt.Fprintln(out, fault.Error())
		return
	}
	if result != value.Null {
		fmt.Fprintln(out, result.String())
	}
}
