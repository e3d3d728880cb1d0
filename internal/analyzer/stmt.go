package analyzer

import (
	"vecta/internal/ast"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/verrors"
)

// analyzeCase implements spec.md §4.4: the subject must not itself be the
// wildcard; a fresh scope is pushed with `_` bound to Symbolic before the
// subject and every pattern/body is analyzed, so patterns and bodies can
// both refer to it.
func (a *Analyzer) analyzeCase(n *ast.CaseStmt) {
	if ref, ok := n.Subject.(*ast.Ref); ok && ref.IsWildcard() {
		a.errf(n.Pos(), verrors.TypeError, "case subject must not be the wildcard _")
	}
	a.pushScope(n, func(child *scope.Scope) {
		a.rt.Set(n, "scope", child)
		wildcard := &ast.SymbolicDecl{Span: n.Span}
		wd := &scope.Decl{Kind: scope.DeclVar, Name: "_", Node: wildcard}
		child.Declare(wd)
		a.rt.Set(wildcard, "type", types.Symbolic)

		subjectType := a.analyzeExpr(n.Subject)

		for _, body := range n.Bodies {
			patType := a.analyzeExprWithExpected(body.Pattern, subjectType)
			if subjectType != nil && patType != nil && !patType.Equals(subjectType) {
				a.errf(body.Pattern.Pos(), verrors.TypeError, "case pattern type %s does not match subject type %s", patType, subjectType)
			}
			a.analyzeStmt(body.Body)
		}
		if n.Default != nil {
			a.analyzeStmt(n.Default)
		}
	})
}
