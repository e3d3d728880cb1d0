// Package analyzer implements vecta's semantic analyzer (spec.md C4, §4.2):
// it walks the AST, builds scopes, and writes each node's
// type/value/scope/decl/returns attributes directly onto the reactor during
// an ordered hoisting walk, reporting errors as it goes.
package analyzer

import (
	"vecta/internal/ast"
	"vecta/internal/builtin"
	"vecta/internal/reactor"
	"vecta/internal/scope"
	"vecta/internal/stdlib"
	"vecta/internal/types"
	"vecta/internal/verrors"
)

// Analyzer is a StmtVisitor/ExprVisitor whose current scope is swapped
// around recursive descent (spec.md §5: analysis is single-threaded and
// strictly sequential, so a single mutable "current scope" field is safe).
type Analyzer struct {
	rt    *reactor.Reactor
	diags *verrors.Diagnostics
	sc    *scope.Scope

	// funcGenerics tracks, per enclosing *ast.FunDecl, the generic type
	// variables introduced by its parameter list (spec.md §4.2 "Generic
	// type inference").
	funcGenerics map[*ast.FunDecl]map[string]*types.Type
	curFunc      *ast.FunDecl
}

// Result is what Analyze hands back to a driver (spec.md §6 step 4-5).
type Result struct {
	Reactor     *reactor.Reactor
	RootScope   *scope.Scope
	Diagnostics *verrors.Diagnostics
}

// Analyze runs the whole pipeline over a parsed program: build the reactor,
// install the root scope, walk the program setting attributes, then settle
// the reactor to fixpoint (spec.md §6 steps 2-4); the walk itself registers
// no deferred rules, so Settle has nothing to fire here.
func Analyze(program []ast.Stmt) *Result {
	diags := &verrors.Diagnostics{}
	rt := reactor.New(diags)
	root := builtin.Install(scope.New(nil, nil), rt)
	stdlib.Install(root, rt)

	a := &Analyzer{
		rt:           rt,
		diags:        diags,
		sc:           root,
		funcGenerics: make(map[*ast.FunDecl]map[string]*types.Type),
	}
	a.pushScope("program", func(*scope.Scope) {
		a.analyzeStmts(program)
	})
	rt.Settle()

	return &Result{Reactor: rt, RootScope: root, Diagnostics: diags}
}

func (a *Analyzer) loc(s ast.Span) verrors.Location {
	return verrors.Location{Line: s.Line, Column: s.Column}
}

func (a *Analyzer) errf(s ast.Span, kind verrors.Kind, format string, args ...interface{}) {
	a.diags.Reportf(kind, a.loc(s), format, args...)
}

// pushScope enters a new child scope owned by owner, runs fn with it
// current, then restores the previous scope.
func (a *Analyzer) pushScope(owner interface{}, fn func(child *scope.Scope)) *scope.Scope {
	parent := a.sc
	child := scope.New(owner, parent)
	a.sc = child
	fn(child)
	a.sc = parent
	return child
}

func (a *Analyzer) typeOf(node interface{}) *types.Type {
	v, ok := a.rt.Get(node, "type")
	if !ok {
		return nil
	}
	t, _ := v.(*types.Type)
	return t
}

// Session is an incremental analyzer for a REPL (spec.md §11.3): each Feed
// call hoists and types its statements into the SAME reactor/scope a prior
// Feed call used, so a name declared on one line resolves on the next.
type Session struct {
	a           *Analyzer
	rt          *reactor.Reactor
	root        *scope.Scope
	lastDiagIdx int
}

func NewSession() *Session {
	diags := &verrors.Diagnostics{}
	rt := reactor.New(diags)
	root := builtin.Install(scope.New(nil, nil), rt)
	stdlib.Install(root, rt)
	a := &Analyzer{
		rt:           rt,
		diags:        diags,
		sc:           scope.New("repl", root),
		funcGenerics: make(map[*ast.FunDecl]map[string]*types.Type),
	}
	return &Session{a: a, rt: rt, root: root}
}

// Feed types a new batch of top-level statements and returns only the
// diagnostics newly reported by this call.
func (s *Session) Feed(stmts []ast.Stmt) []*verrors.Diagnostic {
	s.a.analyzeStmts(stmts)
	s.rt.Settle()
	all := s.a.diags.All()
	fresh := all[s.lastDiagIdx:]
	s.lastDiagIdx = len(all)
	return fresh
}

func (s *Session) Reactor() *reactor.Reactor   { return s.rt }
func (s *Session) RootScope() *scope.Scope     { return s.root }
func (s *Session) ProgramScope() *scope.Scope  { return s.a.sc }
