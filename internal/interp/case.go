package interp

import (
	"vecta/internal/ast"
	"vecta/internal/scope"
	"vecta/internal/value"
)

// execCase implements spec.md §4.4's pattern matcher: push a scope binding
// `_` to the Symbolic singleton, evaluate the subject, try each pattern in
// source order, and fall through to the (possibly absent) default block.
func (ip *Interp) execCase(n *ast.CaseStmt, sc *scope.Scope) {
	v, _ := ip.rt.Get(n, "scope")
	analysisScope, _ := v.(*scope.Scope)

	runtimeScope := scope.New(n, sc)
	if analysisScope != nil {
		if wd, ok := analysisScope.ResolveLocal("_"); ok {
			runtimeScope.Bind(wd, value.Symbolic)
		}
	}

	subject := ip.eval(n.Subject, runtimeScope)
	for _, body := range n.Bodies {
		pattern := ip.eval(body.Pattern, runtimeScope)
		if matchValue(pattern, subject) {
			ip.execStmt(body.Body, runtimeScope)
			return
		}
	}
	if n.Default != nil {
		ip.execStmt(n.Default, runtimeScope)
	}
}

// matchValue implements spec.md §4.4's "Matching algorithm": equal
// primitives match; arrays match position-by-position with `_` consuming
// zero or more consecutive subject elements; strings match the same way
// over characters, with `\f` as the wildcard sentinel (spec.md §9
// "Wildcard encoded as \f in strings").
func matchValue(pattern, subject value.Value) bool {
	if _, ok := pattern.(value.SymbolicType); ok {
		return true
	}
	switch p := pattern.(type) {
	case value.Array:
		s, ok := subject.(value.Array)
		if !ok {
			return false
		}
		return matchArraySeq(*p.Elems, *s.Elems)
	case value.String:
		s, ok := subject.(value.String)
		if !ok {
			return false
		}
		return matchRuneSeq([]rune(string(p)), []rune(string(s)), '\f')
	default:
		return scalarOrRefEqual(pattern, subject)
	}
}

func isWildcardElem(v value.Value) bool {
	_, ok := v.(value.SymbolicType)
	return ok
}

// matchArraySeq is the recursive consume algorithm spec.md §4.4 describes:
// non-wildcard heads must match and advance both sequences; a wildcard
// pattern head either matches zero elements (advance only the pattern) or
// consumes one subject element and retries (advance only the subject).
func matchArraySeq(pat, sub []value.Value) bool {
	var rec func(pi, si int) bool
	rec = func(pi, si int) bool {
		if pi == len(pat) {
			return si == len(sub)
		}
		if isWildcardElem(pat[pi]) {
			if rec(pi+1, si) {
				return true
			}
			if si < len(sub) && rec(pi, si+1) {
				return true
			}
			return false
		}
		if si >= len(sub) {
			return false
		}
		if !matchValue(pat[pi], sub[si]) {
			return false
		}
		return rec(pi+1, si+1)
	}
	return rec(0, 0)
}

func matchRuneSeq(pat, sub []rune, wildcard rune) bool {
	var rec func(pi, si int) bool
	rec = func(pi, si int) bool {
		if pi == len(pat) {
			return si == len(sub)
		}
		if pat[pi] == wildcard {
			if rec(pi+1, si) {
				return true
			}
			if si < len(sub) && rec(pi, si+1) {
				return true
			}
			return false
		}
		if si >= len(sub) || pat[pi] != sub[si] {
			return false
		}
		return rec(pi+1, si+1)
	}
	return rec(0, 0)
}
