package interp

import (
	"vecta/internal/ast"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/value"
)

// toMatrix normalizes array-like values to two-dimensional form (spec.md
// §4.3 "Both operands are normalized to two-dimensional form: a
// one-dimensional array is lifted to a single-row matrix").
func toMatrix(v value.Value) value.Matrix {
	switch x := v.(type) {
	case value.Matrix:
		return x
	case value.Array:
		return value.NewMatrix([]value.Array{x})
	default:
		return value.NewMatrix(nil)
	}
}

// broadcast expands a scalar to a matrix of the given shape (spec.md §4.3
// "Scalar-with-array-like (broadcasting)").
func broadcast(scalar value.Value, rows, cols int) value.Matrix {
	out := make([]value.Array, rows)
	for i := range out {
		row := make([]value.Value, cols)
		for j := range row {
			row[j] = scalar
		}
		out[i] = value.NewArray(row)
	}
	return value.NewMatrix(out)
}

func asFloat(v value.Value) float64 {
	switch x := v.(type) {
	case value.Int:
		return float64(x)
	case value.Float:
		return float64(x)
	default:
		return 0
	}
}

func isFloatVal(v value.Value) bool {
	_, ok := v.(value.Float)
	return ok
}

func numericEqual(a, b value.Value) bool {
	if isFloatVal(a) || isFloatVal(b) {
		return asFloat(a) == asFloat(b)
	}
	ai, aok := a.(value.Int)
	bi, bok := b.(value.Int)
	return aok && bok && ai == bi
}

func numericLess(a, b value.Value) bool { return asFloat(a) < asFloat(b) }

// scalarArith applies one arithmetic op to two scalar numeric values,
// promoting to Float if either side is Float (spec.md §4.3 "if either
// side's declared component is Float, operate in doubles, else longs").
func scalarArith(op string, a, b value.Value) value.Value {
	if isFloatVal(a) || isFloatVal(b) {
		x, y := asFloat(a), asFloat(b)
		switch op {
		case "+":
			return value.Float(x + y)
		case "-":
			return value.Float(x - y)
		case "*":
			return value.Float(x * y)
		case "/":
			return value.Float(x / y)
		case "%":
			ix, iy := int64(x), int64(y)
			if iy == 0 {
				return value.Float(0)
			}
			return value.Float(float64(ix % iy))
		}
	}
	x, _ := a.(value.Int)
	y, _ := b.(value.Int)
	switch op {
	case "+":
		return value.Int(x + y)
	case "-":
		return value.Int(x - y)
	case "*":
		return value.Int(x * y)
	case "/":
		if y == 0 {
			return value.Int(0)
		}
		return value.Int(x / y)
	case "%":
		if y == 0 {
			return value.Int(0)
		}
		return value.Int(x % y)
	}
	return value.Null
}

func (ip *Interp) evalBinary(n *ast.Binary, sc *scope.Scope) value.Value {
	if n.Op == "&&" {
		l := ip.eval(n.Left, sc)
		if !bool(l.(value.Bool)) {
			return value.Bool(false)
		}
		return ip.eval(n.Right, sc)
	}
	if n.Op == "||" {
		l := ip.eval(n.Left, sc)
		if bool(l.(value.Bool)) {
			return value.Bool(true)
		}
		return ip.eval(n.Right, sc)
	}

	left := ip.eval(n.Left, sc)
	right := ip.eval(n.Right, sc)
	leftType := ip.typeOf(n.Left).Resolve()
	rightType := ip.typeOf(n.Right).Resolve()

	switch n.Op {
	case "+", "-", "*", "/", "%", "@":
		return ip.evalArithmetic(n, left, right, leftType, rightType)
	case "<", "<=", ">", ">=":
		x, y := asFloat(left), asFloat(right)
		switch n.Op {
		case "<":
			return value.Bool(x < y)
		case "<=":
			return value.Bool(x <= y)
		case ">":
			return value.Bool(x > y)
		default:
			return value.Bool(x >= y)
		}
	case "==", "!=":
		eq := scalarOrRefEqual(left, right)
		if n.Op == "!=" {
			return value.Bool(!eq)
		}
		return value.Bool(eq)
	default:
		return ip.evalArrayLikeOp(n, left, right)
	}
}

func scalarOrRefEqual(a, b value.Value) bool {
	switch a.(type) {
	case value.Int, value.Float:
		return numericEqual(a, b)
	case value.String:
		bs, ok := b.(value.String)
		return ok && a.(value.String) == bs
	case value.Bool:
		bb, ok := b.(value.Bool)
		return ok && a.(value.Bool) == bb
	case value.NullType:
		_, ok := b.(value.NullType)
		return ok
	default:
		return a == b
	}
}

// evalArithmetic implements spec.md §4.2/§4.3's arithmetic rules, including
// string concatenation, scalar promotion, and array-like element-wise
// dispatch with broadcasting and dot product.
func (ip *Interp) evalArithmetic(n *ast.Binary, left, right value.Value, leftType, rightType *types.Type) value.Value {
	if n.Op == "+" {
		if ls, ok := left.(value.String); ok {
			return value.String(string(ls) + stringOf(right))
		}
		if rs, ok := right.(value.String); ok {
			return value.String(stringOf(left) + string(rs))
		}
	}
	leftArrayLike := leftType != nil && leftType.IsArrayLike()
	rightArrayLike := rightType != nil && rightType.IsArrayLike()
	if !leftArrayLike && !rightArrayLike {
		return scalarArith(n.Op, left, right)
	}

	var lm, rm value.Matrix
	switch {
	case leftArrayLike && rightArrayLike:
		lm, rm = toMatrix(left), toMatrix(right)
	case leftArrayLike:
		lm = toMatrix(left)
		lr, lc := lm.Shape()
		rm = broadcast(right, lr, lc)
	default:
		rm = toMatrix(right)
		rr, rc := rm.Shape()
		lm = broadcast(left, rr, rc)
	}

	var result value.Matrix
	if n.Op == "@" {
		result = matMul(ip, n, lm, rm)
	} else {
		lr, lc := lm.Shape()
		rr, rc := rm.Shape()
		if lr != rr || lc != rc {
			ip.fault(n.Pos(), "shape mismatch in array-like arithmetic: %dx%d vs %dx%d", lr, lc, rr, rc)
		}
		rows := make([]value.Array, lr)
		for i := 0; i < lr; i++ {
			row := make([]value.Value, lc)
			for j := 0; j < lc; j++ {
				row[j] = scalarArith(n.Op, lm.Row(i).At(j), rm.Row(i).At(j))
			}
			rows[i] = value.NewArray(row)
		}
		result = value.NewMatrix(rows)
	}

	resultType := ip.typeOf(n)
	if resultType != nil && resultType.Kind == types.KindArray {
		rows, _ := result.Shape()
		if rows > 0 {
			return result.Row(0)
		}
		return value.NewArray(nil)
	}
	return result
}

func matMul(ip *Interp, n *ast.Binary, a, b value.Matrix) value.Matrix {
	ar, ac := a.Shape()
	br, bc := b.Shape()
	if ac != br {
		ip.fault(n.Pos(), "dot product inner dimension mismatch: %dx%d @ %dx%d", ar, ac, br, bc)
	}
	rows := make([]value.Array, ar)
	for i := 0; i < ar; i++ {
		row := make([]value.Value, bc)
		for j := 0; j < bc; j++ {
			var sum value.Value = value.Int(0)
			anyFloat := false
			for k := 0; k < ac; k++ {
				if isFloatVal(a.Row(i).At(k)) || isFloatVal(b.Row(k).At(j)) {
					anyFloat = true
				}
			}
			if anyFloat {
				sum = value.Float(0)
			}
			for k := 0; k < ac; k++ {
				sum = scalarArith("+", sum, scalarArith("*", a.Row(i).At(k), b.Row(k).At(j)))
			}
			row[j] = sum
		}
		rows[i] = value.NewArray(row)
	}
	return value.NewMatrix(rows)
}

func stringOf(v value.Value) string { return v.String() }

// evalArrayLikeOp implements the ten array-like relational/equality
// operators (spec.md §3.2 table, §4.3 "All-predicates ... One-predicates").
func (ip *Interp) evalArrayLikeOp(n *ast.Binary, left, right value.Value) value.Value {
	lm, rm := toMatrix(left), toMatrix(right)
	lr, lc := lm.Shape()
	rr, rc := rm.Shape()
	if lr != rr || lc != rc {
		ip.fault(n.Pos(), "shape mismatch in array-like comparison: %dx%d vs %dx%d", lr, lc, rr, rc)
	}
	all := true
	one := false
	for i := 0; i < lr; i++ {
		for j := 0; j < lc; j++ {
			lv, rv := lm.Row(i).At(j), rm.Row(i).At(j)
			sat := elementSatisfies(n.Op, lv, rv)
			if sat {
				one = true
			} else {
				all = false
			}
		}
	}
	switch n.Op {
	case "=?", "!=?", "<?", "<=?", ">?", ">=?":
		return value.Bool(one)
	case "<=>", "!<=>", "<<", "<<=", ">>", ">>=":
		return value.Bool(all)
	default:
		return value.Bool(false)
	}
}

func numericOrStringEqual(a, b value.Value) bool {
	if as, ok := a.(value.String); ok {
		bs, ok2 := b.(value.String)
		return ok2 && as == bs
	}
	return numericEqual(a, b)
}

func elementSatisfies(op string, a, b value.Value) bool {
	switch op {
	case "=?", "<=>":
		return numericOrStringEqual(a, b)
	case "!=?", "!<=>":
		return !numericOrStringEqual(a, b)
	case "<?", "<<":
		return numericLess(a, b)
	case "<=?", "<<=":
		return numericLess(a, b) || numericOrStringEqual(a, b)
	case ">?", ">>":
		return numericLess(b, a)
	case ">=?", ">>=":
		return numericLess(b, a) || numericOrStringEqual(a, b)
	default:
		return false
	}
}
