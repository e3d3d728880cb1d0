package interp

import (
	"vecta/internal/ast"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/value"
)

func (ip *Interp) eval(e ast.Expr, sc *scope.Scope) value.Value {
	switch n := e.(type) {
	case *ast.IntLit:
		return value.Int(n.Value)
	case *ast.FloatLit:
		return value.Float(n.Value)
	case *ast.StringLit:
		return value.String(n.Value)
	case *ast.BoolLit:
		return value.Bool(n.Value)
	case *ast.NullLit:
		return value.Null
	case *ast.Ref:
		return ip.evalRef(n, sc)
	case *ast.ArrayLit:
		elems := make([]value.Value, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = ip.eval(el, sc)
		}
		return promote(value.NewArray(elems), ip.typeOf(n))
	case *ast.MatrixLit:
		rows := make([]value.Array, len(n.Rows))
		for i, row := range n.Rows {
			rowVal := ip.eval(row, sc)
			rows[i] = rowVal.(value.Array)
		}
		return promote(value.NewMatrix(rows), ip.typeOf(n))
	case *ast.MatrixGen:
		return ip.evalMatrixGen(n, sc)
	case *ast.Paren:
		return ip.eval(n.Inner, sc)
	case *ast.FieldAccess:
		return ip.evalFieldAccess(n, sc)
	case *ast.IndexAccess:
		return ip.evalIndexAccess(n, sc)
	case *ast.SliceAccess:
		return ip.evalSliceAccess(n, sc)
	case *ast.Unary:
		v := ip.eval(n.Operand, sc)
		return value.Bool(!bool(v.(value.Bool)))
	case *ast.Binary:
		return ip.evalBinary(n, sc)
	case *ast.ConstructorApp:
		return ip.evalConstructorApp(n, sc)
	case *ast.Call:
		return ip.evalCall(n, sc)
	case *ast.Assign:
		return ip.evalAssign(n, sc)
	default:
		ip.fault(e.Pos(), "unsupported expression node %T", e)
		return value.Null
	}
}

func (ip *Interp) evalRef(n *ast.Ref, sc *scope.Scope) value.Value {
	d := ip.declOf(n)
	if d == nil {
		ip.fault(n.Pos(), "could not resolve %s at run time", n.Name)
	}
	v, ok := sc.Get(d)
	if !ok {
		return value.Null
	}
	return v.(value.Value)
}

func (ip *Interp) evalMatrixGen(n *ast.MatrixGen, sc *scope.Scope) value.Value {
	rows, cols := 1, 0
	shapeVals := make([]int, len(n.Shape))
	for i, s := range n.Shape {
		shapeVals[i] = int(ip.eval(s, sc).(value.Int))
	}
	if len(shapeVals) == 1 {
		cols = shapeVals[0]
	} else {
		rows, cols = shapeVals[0], shapeVals[1]
	}
	if rows <= 0 || cols <= 0 {
		ip.fault(n.Pos(), "matrix generator shape must be positive, got %dx%d", rows, cols)
	}
	filler := ip.eval(n.Filler, sc)
	out := make([]value.Array, rows)
	for i := range out {
		row := make([]value.Value, cols)
		for j := range row {
			row[j] = filler
		}
		out[i] = value.NewArray(row)
	}
	return value.NewMatrix(out)
}

func (ip *Interp) evalFieldAccess(n *ast.FieldAccess, sc *scope.Scope) value.Value {
	obj := ip.eval(n.Object, sc)
	switch o := obj.(type) {
	case value.Array:
		if n.Name == "length" {
			return value.Int(o.Len())
		}
	case value.Matrix:
		if n.Name == "shape" {
			r, c := o.Shape()
			return value.NewArray([]value.Value{value.Int(r), value.Int(c)})
		}
	case *value.Struct:
		if v, ok := o.Fields[n.Name]; ok {
			return v
		}
	case value.NullType:
		ip.fault(n.Pos(), "null dereference accessing field %q", n.Name)
	}
	ip.fault(n.Pos(), "invalid field access %q on %v", n.Name, obj)
	return value.Null
}

func (ip *Interp) evalIndexAccess(n *ast.IndexAccess, sc *scope.Scope) value.Value {
	obj := ip.eval(n.Object, sc)
	idx := int(ip.eval(n.Index, sc).(value.Int))
	switch o := obj.(type) {
	case value.Array:
		if idx < 0 || idx >= o.Len() {
			ip.fault(n.Pos(), "index %d out of bounds (length %d)", idx, o.Len())
		}
		return o.At(idx)
	case value.Matrix:
		rows, _ := o.Shape()
		if idx < 0 || idx >= rows {
			ip.fault(n.Pos(), "index %d out of bounds (%d rows)", idx, rows)
		}
		return o.Row(idx)
	case value.NullType:
		ip.fault(n.Pos(), "null dereference indexing")
		return value.Null
	default:
		ip.fault(n.Pos(), "cannot index %v", obj)
		return value.Null
	}
}

// resolveSliceBounds maps an end index of -1 (the parser's default for an
// omitted end, spec.md §6) to "to length"; the start index is returned as is
// (an omitted start is already the literal 0 from the parser).
func resolveSliceBounds(start, end, length int) (int, int) {
	if end == -1 {
		end = length
	}
	return start, end
}

func (ip *Interp) evalSliceAccess(n *ast.SliceAccess, sc *scope.Scope) value.Value {
	obj := ip.eval(n.Array, sc)
	start := int(ip.eval(n.StartIndex, sc).(value.Int))
	end := int(ip.eval(n.EndIndex, sc).(value.Int))
	switch o := obj.(type) {
	case value.Array:
		s, e := resolveSliceBounds(start, end, o.Len())
		if s < 0 || e > o.Len() || s > e {
			ip.fault(n.Pos(), "invalid slice [%d:%d] of length %d", s, e, o.Len())
		}
		out := make([]value.Value, e-s)
		for i := s; i < e; i++ {
			out[i-s] = o.At(i)
		}
		return value.NewArray(out)
	case value.Matrix:
		rows, _ := o.Shape()
		s, e := resolveSliceBounds(start, end, rows)
		if s < 0 || e > rows || s > e {
			ip.fault(n.Pos(), "invalid slice [%d:%d] of %d rows", s, e, rows)
		}
		out := make([]value.Array, e-s)
		for i := s; i < e; i++ {
			out[i-s] = o.Row(i)
		}
		return value.NewMatrix(out)
	case value.NullType:
		ip.fault(n.Pos(), "null dereference slicing")
		return value.Null
	default:
		ip.fault(n.Pos(), "cannot slice %v", obj)
		return value.Null
	}
}

func (ip *Interp) evalConstructorApp(n *ast.ConstructorApp, sc *scope.Scope) value.Value {
	structType := ip.typeOf(n)
	argVals := make([]value.Value, len(n.Args))
	for i, arg := range n.Args {
		argVals[i] = ip.eval(arg, sc)
	}
	order := make([]string, len(n.Args))
	fields := make(map[string]value.Value, len(n.Args))
	name := n.Name
	if structType != nil {
		name = structType.StructName
		for i, f := range structType.Fields {
			if i >= len(argVals) {
				break
			}
			order[i] = f.Name
			fields[f.Name] = promote(argVals[i], f.Type)
		}
	} else {
		for i := range argVals {
			order[i] = types.Unknown
			fields[types.Unknown] = argVals[i]
		}
	}
	return value.NewStruct(name, order, fields)
}

func (ip *Interp) evalAssign(n *ast.Assign, sc *scope.Scope) value.Value {
	v := ip.eval(n.Value, sc)
	v = promote(v, ip.typeOf(n.Target))

	switch target := n.Target.(type) {
	case *ast.Ref:
		d := ip.declOf(target)
		sc.Set(d, v)
	case *ast.FieldAccess:
		obj := ip.eval(target.Object, sc)
		st, ok := obj.(*value.Struct)
		if !ok {
			ip.fault(target.Pos(), "cannot assign field %q on non-struct", target.Name)
			return v
		}
		st.Fields[target.Name] = v
	case *ast.IndexAccess:
		obj := ip.eval(target.Object, sc)
		idx := int(ip.eval(target.Index, sc).(value.Int))
		arr, ok := obj.(value.Array)
		if !ok {
			ip.fault(target.Pos(), "cannot index-assign into non-array")
			return v
		}
		if idx < 0 || idx >= arr.Len() {
			ip.fault(target.Pos(), "index %d out of bounds (length %d)", idx, arr.Len())
		}
		arr.Set(idx, v)
	case *ast.SliceAccess:
		ip.assignSlice(target, v, sc)
	default:
		ip.fault(n.Pos(), "invalid assignment target")
	}
	return v
}

// assignSlice implements spec.md §4.3's "Assignment to array slice":
// start<=end required; the replacement's length must equal end-start; the
// target array's own length is unchanged.
func (ip *Interp) assignSlice(target *ast.SliceAccess, v value.Value, sc *scope.Scope) {
	obj := ip.eval(target.Array, sc)
	arr, ok := obj.(value.Array)
	if !ok {
		ip.fault(target.Pos(), "cannot slice-assign into non-array")
		return
	}
	start := int(ip.eval(target.StartIndex, sc).(value.Int))
	end := int(ip.eval(target.EndIndex, sc).(value.Int))
	start, end = resolveSliceBounds(start, end, arr.Len())
	if start < 0 || end > arr.Len() || start > end {
		ip.fault(target.Pos(), "invalid slice assignment [%d:%d] of length %d", start, end, arr.Len())
	}
	rhs, ok := v.(value.Array)
	if !ok {
		ip.fault(target.Pos(), "slice assignment requires an array RHS")
		return
	}
	if rhs.Len() != end-start {
		ip.fault(target.Pos(), "slice assignment length mismatch: range is %d, RHS has %d", end-start, rhs.Len())
	}
	for i := start; i < end; i++ {
		arr.Set(i, rhs.At(i-start))
	}
}

// promote implements spec.md §4.3's "Numeric conversion on assignment":
// Int elements are converted to Float when the declared component type is
// Float, recursively for one- and two-dimensional arrays.
func promote(v value.Value, declType *types.Type) value.Value {
	if declType == nil {
		return v
	}
	declType = declType.Resolve()
	switch declType.Kind {
	case types.KindFloat:
		if i, ok := v.(value.Int); ok {
			return value.Float(float64(i))
		}
		return v
	case types.KindArray:
		arr, ok := v.(value.Array)
		if !ok {
			return v
		}
		out := make([]value.Value, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			out[i] = promote(arr.At(i), declType.Elem)
		}
		return value.NewArray(out)
	case types.KindMat:
		m, ok := v.(value.Matrix)
		if !ok {
			return v
		}
		rows, _ := m.Shape()
		out := make([]value.Array, rows)
		for i := 0; i < rows; i++ {
			row := m.Row(i)
			newRow := make([]value.Value, row.Len())
			for j := 0; j < row.Len(); j++ {
				newRow[j] = promote(row.At(j), declType.Elem)
			}
			out[i] = value.NewArray(newRow)
		}
		return value.NewMatrix(out)
	default:
		return v
	}
}
