package interp

import (
	"vecta/internal/ast"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/value"
)

// evalCall implements spec.md §4.2's Call judgement at runtime and §4.3's
// "Vectorized function call" / "Generic binding" bullets.
func (ip *Interp) evalCall(n *ast.Call, sc *scope.Scope) value.Value {
	calleeVal := ip.eval(n.Callee, sc)
	argVals := make([]value.Value, len(n.Args))
	argTypes := make([]*types.Type, len(n.Args))
	for i, arg := range n.Args {
		argVals[i] = ip.eval(arg, sc)
		argTypes[i] = ip.typeOf(arg)
	}
	return ip.invoke(calleeVal, argVals, argTypes, n.Span)
}

func (ip *Interp) invoke(calleeVal value.Value, argVals []value.Value, argTypes []*types.Type, span ast.Span) value.Value {
	switch callee := calleeVal.(type) {
	case *value.Builtin:
		return callee.Fn(argVals)
	case *value.Function:
		return ip.invokeFunction(callee, argVals, argTypes, span)
	default:
		ip.fault(span, "cannot call non-function value %v", calleeVal)
		return value.Null
	}
}

func (ip *Interp) invokeFunction(fn *value.Function, argVals []value.Value, argTypes []*types.Type, span ast.Span) value.Value {
	fd := fn.Decl
	funType := ip.typeOf(fd)
	var params []*types.Type
	if funType != nil {
		params = funType.Params
	}

	// Generic binding (spec.md §4.3): reset every generic parameter, then
	// bind from this call's argument types, detecting conflicts on repeat
	// occurrences of the same generic name.
	bound := map[string]*types.Type{}
	for _, pt := range params {
		if pt != nil && pt.Kind == types.KindGeneric {
			pt.Reset()
		}
	}
	for i, pt := range params {
		if pt == nil || pt.Kind != types.KindGeneric || i >= len(argTypes) {
			continue
		}
		at := argTypes[i]
		if prior, ok := bound[pt.Name]; ok && at != nil && !prior.Equals(at) {
			ip.fault(span, "Generic type conflict for %q", pt.Name)
		} else if at != nil {
			bound[pt.Name] = at
			pt.Bind(at)
		}
	}

	vecIdx := make([]bool, len(params))
	vectorized := false
	for i, pt := range params {
		if i >= len(argTypes) || pt == nil {
			continue
		}
		at := argTypes[i]
		if at != nil && at.IsArrayLike() && pt.Kind != types.KindGeneric && !pt.IsArrayLike() {
			vecIdx[i] = true
			vectorized = true
		}
	}

	if !vectorized {
		return ip.callOnce(fd, argVals, span)
	}
	return ip.callVectorized(fd, argVals, vecIdx, span)
}

func (ip *Interp) callVectorized(fd *ast.FunDecl, argVals []value.Value, vecIdx []bool, span ast.Span) value.Value {
	rows, cols := -1, -1
	for i, v := range argVals {
		if i < len(vecIdx) && vecIdx[i] {
			m := toMatrix(v)
			r, c := m.Shape()
			if rows == -1 {
				rows, cols = r, c
			} else if r != rows || c != cols {
				ip.fault(span, "shape mismatch in vectorized call: %dx%d vs %dx%d", r, c, rows, cols)
			}
		}
	}
	resultRows := make([]value.Array, rows)
	for i := 0; i < rows; i++ {
		cellVals := make([]value.Value, cols)
		for j := 0; j < cols; j++ {
			cellArgs := make([]value.Value, len(argVals))
			for k, av := range argVals {
				if k < len(vecIdx) && vecIdx[k] {
					m := toMatrix(av)
					cellArgs[k] = m.Row(i).At(j)
				} else {
					cellArgs[k] = av
				}
			}
			cellVals[j] = ip.callOnce(fd, cellArgs, span)
		}
		resultRows[i] = value.NewArray(cellVals)
	}
	return value.NewMatrix(resultRows)
}

func (ip *Interp) callOnce(fd *ast.FunDecl, argVals []value.Value, span ast.Span) (result value.Value) {
	sc := scope.New(fd, ip.root)
	for i, p := range fd.Params {
		d := ip.declOf(p)
		if d == nil {
			d = &scope.Decl{Kind: scope.DeclParam, Name: p.Name, Node: p}
		}
		var v value.Value = value.Null
		if i < len(argVals) {
			v = argVals[i]
		}
		v = promote(v, ip.typeOf(p))
		sc.Declare(d)
		sc.Bind(d, v)
	}
	result = value.Null
	func() {
		defer func() {
			if r := recover(); r != nil {
				if rs, ok := r.(returnSignal); ok {
					result = rs.value
					return
				}
				panic(r)
			}
		}()
		ip.execStmts(fd.Body.Stmts, sc)
	}()
	return result
}
