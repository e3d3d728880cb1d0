package analyzer

import (
	"vecta/internal/ast"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/verrors"
)

// analyzeStmts is the shared entry point for any statement list sharing one
// scope (a program, a function body, a block, a case body). Names are
// hoisted in four passes so forward references resolve (spec.md §4.1 "a
// reference to a name can only be wired up after its declaration is
// known", §9's "two explicit passes" alternative): struct names (with stub
// types), then function NAMES, then struct FIELDS (filling in the stubs, so
// mutually-referencing structs resolve in either order), then full function
// SIGNATURES (so a call to a sibling function declared later in the same
// block already has a type once any body is analyzed) — only then does the
// final pass walk bodies and other statements in source order.
func (a *Analyzer) analyzeStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		if sd, ok := s.(*ast.StructDecl); ok {
			stub := types.Struct(sd.Name, nil)
			d := &scope.Decl{Kind: scope.DeclStruct, Name: sd.Name, Node: sd}
			a.sc.Declare(d)
			a.rt.Set(sd, "decl", d)
			a.rt.Set(sd, "declared", stub)
			a.rt.Set(sd, "type", types.TypeVal)
		}
	}
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunDecl); ok {
			d := &scope.Decl{Kind: scope.DeclFun, Name: fd.Name, Node: fd}
			a.sc.Declare(d)
			a.rt.Set(fd, "decl", d)
		}
	}
	for _, s := range stmts {
		if sd, ok := s.(*ast.StructDecl); ok {
			a.fillStructFields(sd)
		}
	}
	for _, s := range stmts {
		if fd, ok := s.(*ast.FunDecl); ok {
			a.analyzeFunSignature(fd)
		}
	}
	for _, s := range stmts {
		a.analyzeStmt(s)
	}
}

func (a *Analyzer) fillStructFields(sd *ast.StructDecl) {
	declared := a.declaredType(mustResolveHere(a, sd.Name))
	if declared == nil {
		return
	}
	fields := make([]types.Field, len(sd.Fields))
	for i, f := range sd.Fields {
		ft := a.resolveTypeExpr(f.TypeExpr, true)
		fields[i] = types.Field{Name: f.Name, Type: ft}
		a.rt.Set(f, "type", ft)
	}
	declared.Fields = fields
}

// mustResolveHere looks a just-hoisted name up in the current scope; it is
// always found because analyzeStmts declares every struct name in its first
// pass, before the pass that calls fillStructFields.
func mustResolveHere(a *Analyzer, name string) *scope.Decl {
	d, _ := a.sc.Resolve(name)
	return d
}

func (a *Analyzer) analyzeStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.StructDecl:
		// fully handled during hoisting
	case *ast.FunDecl:
		a.analyzeFunDecl(n)
	case *ast.VarDecl:
		a.analyzeVarDecl(n)
	case *ast.Block:
		a.pushScope(n, func(*scope.Scope) {
			a.rt.Set(n, "scope", a.sc)
			a.analyzeStmts(n.Stmts)
			a.rt.Set(n, "returns", blockReturns(a, n))
		})
	case *ast.If:
		a.analyzeIf(n)
	case *ast.While:
		a.analyzeWhile(n)
	case *ast.Return:
		a.analyzeReturn(n)
	case *ast.ExprStmt:
		a.analyzeExpr(n.Expr)
	case *ast.CaseStmt:
		a.analyzeCase(n)
	case *ast.SymbolicDecl:
		// synthesized internally only; never analyzed as a statement
	default:
		a.errf(s.Pos(), verrors.StructuralError, "unsupported statement node %T", s)
	}
}

func blockReturns(a *Analyzer, b *ast.Block) bool {
	for _, s := range b.Stmts {
		if a.stmtReturns(s) {
			return true
		}
	}
	return false
}

// stmtReturns implements spec.md §4.2's return-coverage judgement: a Block
// returns if any statement returns; an If returns if both branches return;
// a Return always returns.
func (a *Analyzer) stmtReturns(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.Return:
		return true
	case *ast.Block:
		v, _ := a.rt.Get(n, "returns")
		b, _ := v.(bool)
		return b
	case *ast.If:
		v, _ := a.rt.Get(n, "returns")
		b, _ := v.(bool)
		return b
	default:
		return false
	}
}

// analyzeFunSignature resolves a function's parameter/return types and
// creates the scope its body will later run in, but does not descend into
// the body itself (see analyzeStmts). The scope is cached on the reactor
// under (fd, "scope") so the later body pass reuses the same *scope.Scope
// rather than re-declaring parameters.
func (a *Analyzer) analyzeFunSignature(fd *ast.FunDecl) {
	prevFunc := a.curFunc
	a.curFunc = fd
	a.pushScope(fd, func(paramScope *scope.Scope) {
		a.rt.Set(fd, "scope", paramScope)
		paramTypes := make([]*types.Type, len(fd.Params))
		for i, p := range fd.Params {
			pt := a.resolveTypeExpr(p.TypeExpr, true)
			paramTypes[i] = pt
			d := &scope.Decl{Kind: scope.DeclParam, Name: p.Name, Node: p}
			paramScope.Declare(d)
			a.rt.Set(p, "decl", d)
			a.rt.Set(p, "type", pt)
		}
		// Snapshot the generics the parameter list introduced before resolving
		// the return type: resolveTypeExpr runs with mintGenerics=false below,
		// so an unrecognized name in the return type position is never
		// auto-minted into a.funcGenerics[fd], and the membership check below
		// stays meaningful instead of always finding what it just inserted.
		declaredGenerics := a.funcGenerics[fd]
		var retType *types.Type
		if fd.ReturnType != nil {
			retType = a.resolveTypeExpr(fd.ReturnType, false)
		} else {
			retType = types.Void
		}
		if retType != nil && retType.Kind == types.KindGeneric {
			if _, ok := declaredGenerics[retType.Name]; !ok {
				a.errf(fd.Pos(), verrors.TypeError, "generic return type %q must be declared in parameters", retType.Name)
			}
		}
		funType := types.Fun(retType, paramTypes)
		a.rt.Set(fd, "type", funType)
		a.rt.Set(fd, "declared", funType)
	})
	a.curFunc = prevFunc
}

// analyzeFunDecl walks a function's body once its signature is already on
// the reactor (set by analyzeFunSignature during hoisting).
func (a *Analyzer) analyzeFunDecl(fd *ast.FunDecl) {
	prevFunc := a.curFunc
	a.curFunc = fd
	v, _ := a.rt.Get(fd, "scope")
	paramScope := v.(*scope.Scope)
	prevScope := a.sc
	a.sc = paramScope

	var retType *types.Type
	if t, ok := a.rt.Get(fd, "type"); ok {
		retType = t.(*types.Type).Return
	}

	a.rt.Set(fd.Body, "scope", a.sc)
	a.analyzeStmts(fd.Body.Stmts)
	bodyReturns := blockReturns(a, fd.Body)
	a.rt.Set(fd.Body, "returns", bodyReturns)
	if retType != nil && retType.Kind != types.KindVoid && !bodyReturns {
		a.errf(fd.Pos(), verrors.StructuralError, "missing return in non-void function %q", fd.Name)
	}

	a.sc = prevScope
	a.curFunc = prevFunc
}

func (a *Analyzer) analyzeVarDecl(vd *ast.VarDecl) {
	var declType *types.Type
	if vd.TypeExpr != nil {
		declType = a.resolveTypeExpr(vd.TypeExpr, true)
	}
	initType := a.analyzeExprWithExpected(vd.Init, declType)
	if declType == nil {
		declType = initType
	} else if initType != nil && !types.IsAssignableTo(initType, declType) {
		a.errf(vd.Pos(), verrors.TypeError, "cannot assign %s to variable %q of type %s", initType, vd.Name, declType)
	}
	d := &scope.Decl{Kind: scope.DeclVar, Name: vd.Name, Node: vd}
	a.sc.Declare(d)
	a.rt.Set(vd, "decl", d)
	a.rt.Set(vd, "type", declType)
}

func (a *Analyzer) analyzeIf(n *ast.If) {
	ct := a.analyzeExpr(n.Cond)
	if ct != nil && ct.Kind != types.KindBool {
		a.errf(n.Cond.Pos(), verrors.TypeError, "if condition must be Bool, got %s", ct)
	}
	a.analyzeStmt(n.Then)
	thenReturns := a.stmtReturns(n.Then)
	elseReturns := false
	if n.Else != nil {
		a.analyzeStmt(n.Else)
		elseReturns = a.stmtReturns(n.Else)
	}
	a.rt.Set(n, "returns", thenReturns && elseReturns)
}

func (a *Analyzer) analyzeWhile(n *ast.While) {
	ct := a.analyzeExpr(n.Cond)
	if ct != nil && ct.Kind != types.KindBool {
		a.errf(n.Cond.Pos(), verrors.TypeError, "while condition must be Bool, got %s", ct)
	}
	a.analyzeStmt(n.Body)
}

func (a *Analyzer) analyzeReturn(n *ast.Return) {
	if n.Value != nil {
		a.analyzeExpr(n.Value)
	}
	a.rt.Set(n, "returns", true)
}
