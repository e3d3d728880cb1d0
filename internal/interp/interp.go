// Package interp implements vecta's tree-walking interpreter (spec.md C6):
// it evaluates an already-analyzed AST (scope/type/decl attributes already
// on the reactor from internal/analyzer), performing arithmetic, broadcast,
// vectorized dispatch, pattern matching and control flow.
package interp

import (
	"vecta/internal/ast"
	"vecta/internal/reactor"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/value"
	"vecta/internal/verrors"
)

// Interp holds the reactor built by analysis and the persistent root scope;
// everything else (the current runtime scope) is threaded explicitly
// through eval/exec calls rather than held as mutable interpreter state,
// since a vectorized call dispatches the same function body many times
// in the course of evaluating a single expression.
type Interp struct {
	rt   *reactor.Reactor
	root *scope.Scope
}

func New(rt *reactor.Reactor, root *scope.Scope) *Interp {
	return &Interp{rt: rt, root: root}
}

// returnSignal is the dedicated unwinding mechanism for `return`, kept
// distinct from verrors.Fault (spec.md §5, §7): caught only at a function
// call boundary or at the top of Run, never confused with a run-time fault.
type returnSignal struct {
	value value.Value
}

// Run executes a whole program's top-level statements as an implicit
// function body (spec.md §4.3 "Top-level evaluation returns the value of
// the implicit top-level Return, or null"). Run recovers verrors.Fault so
// the driver can report it instead of crashing; analysis-phase errors are
// the caller's responsibility to check before calling Run.
func (ip *Interp) Run(program []ast.Stmt) (result value.Value, fault *verrors.Fault) {
	result = value.Null
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*verrors.Fault); ok {
				fault = f
				return
			}
			if rs, ok := r.(returnSignal); ok {
				result = rs.value
				return
			}
			panic(r)
		}
	}()
	sc := scope.New("program", ip.root)
	ip.execStmts(program, sc)
	return result, nil
}

func (ip *Interp) typeOf(node interface{}) *types.Type {
	v, ok := ip.rt.Get(node, "type")
	if !ok {
		return nil
	}
	t, _ := v.(*types.Type)
	return t
}

func (ip *Interp) declOf(node interface{}) *scope.Decl {
	v, ok := ip.rt.Get(node, "decl")
	if !ok {
		return nil
	}
	d, _ := v.(*scope.Decl)
	return d
}

func (ip *Interp) fault(loc ast.Span, format string, args ...interface{}) {
	verrors.Raise(verrors.Location{Line: loc.Line, Column: loc.Column}, format, args...)
}

// execStmts runs a statement list in sc, hoisting struct/function
// declarations' runtime bindings first (mirroring the analyzer's hoisting
// so forward references work at runtime too), then executing in order.
func (ip *Interp) execStmts(stmts []ast.Stmt, sc *scope.Scope) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.StructDecl:
			d := ip.declFor(n, sc)
			sc.Bind(d, &value.Constructor{Decl: n})
		case *ast.FunDecl:
			d := ip.declFor(n, sc)
			sc.Bind(d, &value.Function{Decl: n})
		}
	}
	for _, s := range stmts {
		ip.execStmt(s, sc)
	}
}

// declFor returns the *scope.Decl the analyzer installed for a hoisted
// struct/function name (set on the reactor as (node, "decl") at the same
// point the analyzer declared it — see analyzer/decls.go's analyzeStmts).
// Reusing that exact Decl, rather than re-resolving by name, is what lets a
// Ref's own (ref, "decl") attribute (set when the analyzer resolved the
// reference) find the same binding a runtime scope.Get/Set call uses.
func (ip *Interp) declFor(node interface{}, sc *scope.Scope) *scope.Decl {
	d := ip.declOf(node)
	if d != nil {
		return d
	}
	// the analyzer never saw this node (should not happen in practice);
	// fall back to a synthetic Decl bound fresh in this runtime scope.
	var name string
	kind := scope.DeclFun
	switch n := node.(type) {
	case *ast.StructDecl:
		name, kind = n.Name, scope.DeclStruct
	case *ast.FunDecl:
		name = n.Name
	}
	d = &scope.Decl{Kind: kind, Name: name, Node: node}
	sc.Declare(d)
	return d
}

func (ip *Interp) execStmt(s ast.Stmt, sc *scope.Scope) {
	switch n := s.(type) {
	case *ast.StructDecl, *ast.FunDecl:
		// handled during hoisting
	case *ast.VarDecl:
		ip.execVarDecl(n, sc)
	case *ast.Block:
		child := scope.New(n, sc)
		ip.execStmts(n.Stmts, child)
	case *ast.If:
		cond := ip.eval(n.Cond, sc)
		if bool(cond.(value.Bool)) {
			ip.execStmt(n.Then, sc)
		} else if n.Else != nil {
			ip.execStmt(n.Else, sc)
		}
	case *ast.While:
		for bool(ip.eval(n.Cond, sc).(value.Bool)) {
			ip.execStmt(n.Body, sc)
		}
	case *ast.Return:
		var v value.Value = value.Null
		if n.Value != nil {
			v = ip.eval(n.Value, sc)
		}
		panic(returnSignal{value: v})
	case *ast.ExprStmt:
		ip.eval(n.Expr, sc)
	case *ast.CaseStmt:
		ip.execCase(n, sc)
	case *ast.SymbolicDecl:
		// nothing to execute; _ is bound when the case scope is created
	default:
		ip.fault(s.Pos(), "unsupported statement node %T", s)
	}
}

// Session is an incremental interpreter for a REPL: each Feed call executes
// a new batch of statements in the SAME persistent scope a prior Feed call
// used, so a variable bound on one line is visible on the next (pairs with
// analyzer.Session, which gives each batch the matching persistent scope on
// the typing side).
type Session struct {
	ip *Interp
	sc *scope.Scope
}

func NewSession(rt *reactor.Reactor, root *scope.Scope) *Session {
	return &Session{ip: New(rt, root), sc: scope.New("repl", root)}
}

func (s *Session) Feed(stmts []ast.Stmt) (result value.Value, fault *verrors.Fault) {
	result = value.Null
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*verrors.Fault); ok {
				fault = f
				return
			}
			if rs, ok := r.(returnSignal); ok {
				result = rs.value
				return
			}
			panic(r)
		}
	}()
	s.ip.execStmts(stmts, s.sc)
	return result, nil
}

func (ip *Interp) execVarDecl(n *ast.VarDecl, sc *scope.Scope) {
	v := ip.eval(n.Init, sc)
	declType := ip.typeOf(n)
	v = promote(v, declType)
	d := ip.declOf(n)
	if d == nil {
		d = &scope.Decl{Kind: scope.DeclVar, Name: n.Name, Node: n}
	}
	sc.Declare(d)
	sc.Bind(d, v)
}
