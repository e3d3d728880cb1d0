package analyzer

import (
	"fmt"

	"vecta/internal/ast"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/verrors"
)

// resolveTypeExpr resolves a type-denoting expression node to a concrete
// *types.Type, implementing spec.md §4.2's "Generic type inference": an
// unresolvable simple name inside a function declaration becomes a fresh
// Generic installed in that function's scope so later references to the
// same name reuse it. mintGenerics gates that auto-minting: callers
// resolving a parameter type pass true, callers resolving a return type
// pass false, since a generic return type must already have been introduced
// by the parameter list (spec.md §4.2).
func (a *Analyzer) resolveTypeExpr(e ast.Expr, mintGenerics bool) *types.Type {
	switch n := e.(type) {
	case *ast.Ref:
		return a.resolveTypeRef(n, mintGenerics)
	case *ast.ArrayTypeExpr:
		elem := a.resolveTypeExpr(n.Elem, mintGenerics)
		result := types.Array(elem)
		a.rt.Set(n, "type", types.TypeVal)
		a.rt.Set(n, "value", result)
		return result
	case *ast.MatTypeExpr:
		elem := a.resolveTypeExpr(n.Elem, mintGenerics)
		if elem != nil && elem.IsArrayLike() {
			a.errf(n.Pos(), verrors.TypeError, "Mat component type must not itself be array-like")
		}
		result := types.Mat(elem)
		a.rt.Set(n, "type", types.TypeVal)
		a.rt.Set(n, "value", result)
		return result
	default:
		a.errf(e.Pos(), verrors.TypeError, "invalid type expression")
		return nil
	}
}

func (a *Analyzer) resolveTypeRef(n *ast.Ref, mintGenerics bool) *types.Type {
	d, declScope := a.sc.Resolve(n.Name)
	a.rt.Set(n, "scope", a.sc)
	if d != nil {
		a.rt.Set(n, "decl", d)
		declared := a.declaredType(d)
		if declared == nil {
			a.errf(n.Pos(), verrors.TypeError, "%q does not name a type", n.Name)
			return nil
		}
		a.rt.Set(n, "type", types.TypeVal)
		a.rt.Set(n, "value", declared)
		_ = declScope
		return declared
	}
	if a.curFunc != nil && mintGenerics {
		g := types.NewGeneric(n.Name)
		gd := &scope.Decl{Kind: scope.DeclType, Name: n.Name, Node: fmt.Sprintf("generic:%p:%s", a.curFunc, n.Name)}
		a.sc.Declare(gd)
		a.rt.Set(gd.Node, "declared", g)
		a.rt.Set(n, "decl", gd)
		a.rt.Set(n, "type", types.TypeVal)
		a.rt.Set(n, "value", g)
		if a.funcGenerics[a.curFunc] == nil {
			a.funcGenerics[a.curFunc] = make(map[string]*types.Type)
		}
		a.funcGenerics[a.curFunc][n.Name] = g
		return g
	}
	a.errf(n.Pos(), verrors.NameError, "could not resolve %s", n.Name)
	return nil
}

// declaredType extracts the Type a DeclType/DeclStruct declaration denotes.
func (a *Analyzer) declaredType(d *scope.Decl) *types.Type {
	v, ok := a.rt.Get(d.Node, "declared")
	if !ok {
		return nil
	}
	t, _ := v.(*types.Type)
	return t
}
