package analyzer

import (
	"vecta/internal/ast"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/verrors"
)

// analyzeExpr types an expression with no contextual expectation (spec.md
// §4.2's typing judgements). The result is also written to the reactor as
// the node's "type" attribute so the interpreter can read it back without
// re-deriving it.
func (a *Analyzer) analyzeExpr(e ast.Expr) *types.Type {
	return a.analyzeExprWithExpected(e, nil)
}

// analyzeExprWithExpected additionally threads an expected type into the
// contexts that supply one (spec.md §4.2's "Empty array inference"): a
// variable declaration's initializer, a non-generic call argument (by
// parameter type), a constructor argument (by field type), an assignment's
// value (by target type), and a case pattern (by the subject's type). A case
// subject is typed with no expectation.
func (a *Analyzer) analyzeExprWithExpected(e ast.Expr, expected *types.Type) *types.Type {
	if e == nil {
		return nil
	}
	var t *types.Type
	switch n := e.(type) {
	case *ast.IntLit:
		t = types.Int
	case *ast.FloatLit:
		t = types.Float
	case *ast.StringLit:
		t = types.String
	case *ast.BoolLit:
		t = types.Bool
	case *ast.NullLit:
		t = types.Null
	case *ast.Ref:
		t = a.analyzeRef(n)
	case *ast.ArrayLit:
		t = a.analyzeArrayLit(n, expected)
	case *ast.MatrixLit:
		t = a.analyzeMatrixLit(n)
	case *ast.MatrixGen:
		t = a.analyzeMatrixGen(n)
	case *ast.Paren:
		t = a.analyzeExpr(n.Inner)
	case *ast.FieldAccess:
		t = a.analyzeFieldAccess(n)
	case *ast.IndexAccess:
		t = a.analyzeIndexAccess(n)
	case *ast.SliceAccess:
		t = a.analyzeSliceAccess(n)
	case *ast.Unary:
		t = a.analyzeUnary(n)
	case *ast.Binary:
		t = a.analyzeBinary(n)
	case *ast.ConstructorApp:
		t = a.analyzeConstructorApp(n)
	case *ast.Call:
		t = a.analyzeCall(n, expected)
	case *ast.Assign:
		t = a.analyzeAssign(n)
	case *ast.ArrayTypeExpr, *ast.MatTypeExpr:
		t = a.resolveTypeExpr(n, true)
	default:
		a.errf(e.Pos(), verrors.StructuralError, "unsupported expression node %T", e)
		return nil
	}
	if t != nil {
		a.rt.Set(e, "type", t)
	}
	return t
}

func (a *Analyzer) analyzeRef(n *ast.Ref) *types.Type {
	d, _ := a.sc.Resolve(n.Name)
	a.rt.Set(n, "scope", a.sc)
	if d == nil {
		a.errf(n.Pos(), verrors.NameError, "could not resolve %s", n.Name)
		return nil
	}
	a.rt.Set(n, "decl", d)
	switch d.Kind {
	case scope.DeclVar, scope.DeclParam:
		v, ok := a.rt.Get(d.Node, "type")
		if !ok {
			a.errf(n.Pos(), verrors.NameError, "variable %q used before declaration", n.Name)
			return nil
		}
		t, _ := v.(*types.Type)
		return t
	case scope.DeclFun:
		v, ok := a.rt.Get(d.Node, "type")
		if !ok {
			a.errf(n.Pos(), verrors.NameError, "function %q used before its signature is known", n.Name)
			return nil
		}
		t, _ := v.(*types.Type)
		return t
	case scope.DeclStruct, scope.DeclType:
		a.errf(n.Pos(), verrors.TypeError, "%q names a type, not a value", n.Name)
		return nil
	default:
		a.errf(n.Pos(), verrors.NameError, "could not resolve %s", n.Name)
		return nil
	}
}

func (a *Analyzer) analyzeArrayLit(n *ast.ArrayLit, expected *types.Type) *types.Type {
	if len(n.Elements) == 0 {
		if expected != nil && expected.IsArrayLike() {
			return types.Array(expected.Elem)
		}
		a.errf(n.Pos(), verrors.TypeError, "cannot infer type of empty array literal")
		return nil
	}
	var elemExpected *types.Type
	if expected != nil && expected.IsArrayLike() {
		elemExpected = expected.Elem
	}
	var common *types.Type
	for i, el := range n.Elements {
		t := a.analyzeExprWithExpected(el, elemExpected)
		if t == nil {
			continue
		}
		if i == 0 {
			common = t
			continue
		}
		merged := types.CommonSupertype(common, t)
		if merged == nil {
			a.errf(el.Pos(), verrors.TypeError, "array literal element type %s incompatible with %s", t, common)
			continue
		}
		common = merged
	}
	return types.Array(common)
}

func (a *Analyzer) analyzeMatrixLit(n *ast.MatrixLit) *types.Type {
	if len(n.Rows) == 0 {
		a.errf(n.Pos(), verrors.TypeError, "cannot infer type of empty matrix literal")
		return nil
	}
	width := -1
	var common *types.Type
	for _, row := range n.Rows {
		rowType := a.analyzeExpr(row)
		if len(row.Elements) != width {
			if width == -1 {
				width = len(row.Elements)
			} else {
				a.errf(row.Pos(), verrors.TypeError, "matrix row length mismatch: expected %d, got %d", width, len(row.Elements))
			}
		}
		if rowType == nil {
			continue
		}
		elemType := rowType.Elem
		if common == nil {
			common = elemType
			continue
		}
		merged := types.CommonSupertype(common, elemType)
		if merged == nil {
			a.errf(row.Pos(), verrors.TypeError, "matrix row component type %s incompatible with %s", elemType, common)
			continue
		}
		common = merged
	}
	return types.Mat(common)
}

func (a *Analyzer) analyzeMatrixGen(n *ast.MatrixGen) *types.Type {
	if len(n.Shape) > 2 {
		a.errf(n.Pos(), verrors.StructuralError, "matrix generator accepts at most 2 shape dimensions, got %d", len(n.Shape))
	}
	for _, s := range n.Shape {
		st := a.analyzeExpr(s)
		if st != nil && st.Kind != types.KindInt {
			a.errf(s.Pos(), verrors.TypeError, "matrix generator shape dimension must be Int, got %s", st)
		}
	}
	fillerType := a.analyzeExpr(n.Filler)
	if fillerType != nil && fillerType.IsArrayLike() {
		a.errf(n.Filler.Pos(), verrors.TypeError, "matrix generator filler must not itself be array-like, got %s", fillerType)
	}
	return types.Mat(fillerType)
}

func (a *Analyzer) analyzeFieldAccess(n *ast.FieldAccess) *types.Type {
	objType := a.analyzeExpr(n.Object)
	if objType == nil {
		return nil
	}
	objType = objType.Resolve()
	switch objType.Kind {
	case types.KindArray:
		if n.Name == "length" {
			return types.Int
		}
		a.errf(n.Pos(), verrors.StructuralError, "Array has no field %q (only .length)", n.Name)
		return nil
	case types.KindMat:
		if n.Name == "shape" {
			return types.Array(types.Int)
		}
		a.errf(n.Pos(), verrors.StructuralError, "Mat has no field %q (only .shape)", n.Name)
		return nil
	case types.KindStruct:
		for _, f := range objType.Fields {
			if f.Name == n.Name {
				return f.Type
			}
		}
		a.errf(n.Pos(), verrors.StructuralError, "struct %s has no field %q", objType.StructName, n.Name)
		return nil
	default:
		a.errf(n.Pos(), verrors.StructuralError, "field access on non-struct, non-array-like type %s", objType)
		return nil
	}
}

func (a *Analyzer) analyzeIndexAccess(n *ast.IndexAccess) *types.Type {
	objType := a.analyzeExpr(n.Object)
	idxType := a.analyzeExpr(n.Index)
	if idxType != nil && idxType.Kind != types.KindInt {
		a.errf(n.Index.Pos(), verrors.TypeError, "index must be Int, got %s", idxType)
	}
	if objType == nil {
		return nil
	}
	objType = objType.Resolve()
	switch objType.Kind {
	case types.KindArray:
		return objType.Elem
	case types.KindMat:
		return types.Array(objType.Elem)
	default:
		a.errf(n.Object.Pos(), verrors.StructuralError, "cannot index non-array-like type %s", objType)
		return nil
	}
}

func (a *Analyzer) analyzeSliceAccess(n *ast.SliceAccess) *types.Type {
	objType := a.analyzeExpr(n.Array)
	startType := a.analyzeExpr(n.StartIndex)
	endType := a.analyzeExpr(n.EndIndex)
	if startType != nil && startType.Kind != types.KindInt {
		a.errf(n.StartIndex.Pos(), verrors.TypeError, "slice start must be Int, got %s", startType)
	}
	if endType != nil && endType.Kind != types.KindInt {
		a.errf(n.EndIndex.Pos(), verrors.TypeError, "slice end must be Int, got %s", endType)
	}
	if objType == nil {
		return nil
	}
	if !objType.IsArrayLike() {
		a.errf(n.Array.Pos(), verrors.StructuralError, "cannot slice non-array-like type %s", objType)
		return nil
	}
	return objType
}

func (a *Analyzer) analyzeUnary(n *ast.Unary) *types.Type {
	operandType := a.analyzeExpr(n.Operand)
	if n.Op != "!" {
		a.errf(n.Pos(), verrors.StructuralError, "unsupported unary operator %q", n.Op)
		return nil
	}
	if operandType != nil && operandType.Kind != types.KindBool {
		a.errf(n.Operand.Pos(), verrors.TypeError, "NOT operand must be Bool, got %s", operandType)
	}
	return types.Bool
}

var arrayLikeOps = map[string]bool{
	"=?": true, "!=?": true, "<=>": true, "!<=>": true,
	"<?": true, "<=?": true, ">?": true, ">=?": true,
	"<<": true, "<<=": true, ">>": true, ">>=": true,
}

var arrayLikeEqOps = map[string]bool{"=?": true, "!=?": true, "<=>": true, "!<=>": true}

// maybeNumeric reports whether t is numeric now, or could still become
// numeric once its generic binding is resolved at call time (spec.md
// §4.3/§5: a generic parameter's resolution slot is only filled per call, so
// it is always unresolved during static analysis). Static analysis must
// defer to the runtime check rather than reject an unresolved generic
// operand as a type error.
func maybeNumeric(t *types.Type) bool {
	if t != nil && t.Kind == types.KindGeneric {
		return true
	}
	return t.IsNumeric()
}

func (a *Analyzer) analyzeBinary(n *ast.Binary) *types.Type {
	left := a.analyzeExpr(n.Left)
	right := a.analyzeExpr(n.Right)
	if left == nil || right == nil {
		return nil
	}
	left, right = left.Resolve(), right.Resolve()

	switch n.Op {
	case "+", "-", "*", "/", "%", "@":
		return a.analyzeArithmetic(n, left, right)
	case "<", "<=", ">", ">=":
		if !maybeNumeric(left) || !maybeNumeric(right) {
			a.errf(n.Pos(), verrors.TypeError, "comparison operands must be numeric, got %s and %s", left, right)
		}
		return types.Bool
	case "==", "!=":
		if left.IsArrayLike() || right.IsArrayLike() {
			a.errf(n.Pos(), verrors.TypeError, "== / != do not apply to array-like operands; use %s", "=? / !=?")
		} else if !comparable(left, right) {
			a.errf(n.Pos(), verrors.TypeError, "%s and %s are not comparable", left, right)
		}
		return types.Bool
	case "&&", "||":
		if left.Kind != types.KindBool || right.Kind != types.KindBool {
			a.errf(n.Pos(), verrors.TypeError, "%s operands must be Bool, got %s and %s", n.Op, left, right)
		}
		return types.Bool
	default:
		if arrayLikeOps[n.Op] {
			return a.analyzeArrayLikeOp(n, left, right)
		}
		a.errf(n.Pos(), verrors.StructuralError, "unsupported binary operator %q", n.Op)
		return nil
	}
}

func comparable(a, b *types.Type) bool {
	if maybeNumeric(a) && maybeNumeric(b) {
		return true
	}
	if a.IsReference() && b.IsReference() {
		return true
	}
	return a.Equals(b)
}

func (a *Analyzer) analyzeArrayLikeOp(n *ast.Binary, left, right *types.Type) *types.Type {
	if !left.IsArrayLike() || !right.IsArrayLike() {
		a.errf(n.Pos(), verrors.TypeError, "%s requires array-like operands, got %s and %s", n.Op, left, right)
		return types.Bool
	}
	leftElem, rightElem := left.Elem.Resolve(), right.Elem.Resolve()
	ok := maybeNumeric(leftElem) && maybeNumeric(rightElem)
	if !ok && arrayLikeEqOps[n.Op] && leftElem != nil && rightElem != nil && leftElem.Kind == types.KindString && rightElem.Kind == types.KindString {
		ok = true
	}
	if !ok {
		a.errf(n.Pos(), verrors.TypeError, "%s requires numeric (or, for equality operators, string) components, got %s and %s", n.Op, left, right)
	}
	return types.Bool
}

// analyzeArithmetic implements spec.md §4.2's arithmetic judgement: string
// concatenation wins when either operand is String and op is "+"; scalar
// numeric promotion otherwise; array-like results lift the component type
// and let Mat dominate Array except Array op Array = Array.
func (a *Analyzer) analyzeArithmetic(n *ast.Binary, left, right *types.Type) *types.Type {
	if n.Op == "+" && (left.Kind == types.KindString || right.Kind == types.KindString) {
		return types.String
	}
	if !left.IsArrayLike() && !right.IsArrayLike() {
		if !maybeNumeric(left) || !maybeNumeric(right) {
			a.errf(n.Pos(), verrors.TypeError, "%s requires numeric operands, got %s and %s", n.Op, left, right)
			return nil
		}
		if left.Kind == types.KindFloat || right.Kind == types.KindFloat {
			return types.Float
		}
		return types.Int
	}
	// at least one side is array-like.
	var leftComp, rightComp *types.Type
	switch {
	case left.IsArrayLike() && right.IsArrayLike():
		leftComp, rightComp = left.Elem, right.Elem
	case left.IsArrayLike():
		leftComp, rightComp = left.Elem, right
	default:
		leftComp, rightComp = left, right.Elem
	}
	if leftComp != nil && !maybeNumeric(leftComp) {
		a.errf(n.Pos(), verrors.TypeError, "array-like arithmetic requires numeric components, got %s", leftComp)
	}
	if rightComp != nil && !maybeNumeric(rightComp) {
		a.errf(n.Pos(), verrors.TypeError, "array-like arithmetic requires numeric components, got %s", rightComp)
	}
	liftedComp := types.Int
	if (leftComp != nil && leftComp.Kind == types.KindFloat) || (rightComp != nil && rightComp.Kind == types.KindFloat) {
		liftedComp = types.Float
	}
	if left.Kind == types.KindArray && right.Kind == types.KindArray {
		return types.Array(liftedComp)
	}
	return types.Mat(liftedComp)
}

func (a *Analyzer) analyzeConstructorApp(n *ast.ConstructorApp) *types.Type {
	d, _ := a.sc.Resolve(n.Name)
	if d == nil || d.Kind != scope.DeclStruct {
		a.errf(n.Pos(), verrors.NameError, "%q does not name a struct", n.Name)
		for _, arg := range n.Args {
			a.analyzeExpr(arg)
		}
		return nil
	}
	structType := a.declaredType(d)
	a.rt.Set(n, "decl", d)
	if structType == nil {
		return nil
	}
	if len(n.Args) != len(structType.Fields) {
		a.errf(n.Pos(), verrors.TypeError, "%s constructor expects %d arguments, got %d", n.Name, len(structType.Fields), len(n.Args))
	}
	for i, arg := range n.Args {
		var expected *types.Type
		if i < len(structType.Fields) {
			expected = structType.Fields[i].Type
		}
		argType := a.analyzeExprWithExpected(arg, expected)
		if expected != nil && argType != nil && !types.IsAssignableTo(argType, expected) {
			a.errf(arg.Pos(), verrors.TypeError, "argument %d to %s: cannot assign %s to %s", i, n.Name, argType, expected)
		}
	}
	return structType
}

func (a *Analyzer) analyzeCall(n *ast.Call, expected *types.Type) *types.Type {
	calleeType := a.analyzeExpr(n.Callee)
	if calleeType == nil {
		for _, arg := range n.Args {
			a.analyzeExpr(arg)
		}
		return nil
	}
	calleeType = calleeType.Resolve()
	if calleeType.Kind != types.KindFun {
		a.errf(n.Callee.Pos(), verrors.TypeError, "cannot call non-function type %s", calleeType)
		for _, arg := range n.Args {
			a.analyzeExpr(arg)
		}
		return nil
	}
	if len(n.Args) != len(calleeType.Params) {
		a.errf(n.Pos(), verrors.TypeError, "arity mismatch: expected %d arguments, got %d", len(calleeType.Params), len(n.Args))
	}
	vectorized := false
	bindings := map[string]*types.Type{}
	argCount := len(n.Args)
	if len(calleeType.Params) < argCount {
		argCount = len(calleeType.Params)
	}
	for i := 0; i < argCount; i++ {
		param := calleeType.Params[i]
		a.rt.Set(n.Args[i], "index", i)
		var paramExpected *types.Type
		if param != nil && param.Kind != types.KindGeneric {
			paramExpected = param
		}
		argType := a.analyzeExprWithExpected(n.Args[i], paramExpected)
		if argType == nil || param == nil {
			continue
		}
		if param.Kind == types.KindGeneric {
			if prior, ok := bindings[param.Name]; ok && !prior.Equals(argType) {
				a.errf(n.Args[i].Pos(), verrors.TypeError, "generic type conflict for %q: %s vs %s", param.Name, prior, argType)
			} else {
				bindings[param.Name] = argType
			}
			continue
		}
		if types.IsAssignableTo(argType, param) {
			continue
		}
		if argType.IsArrayLike() && types.IsAssignableTo(argType.Elem, param) {
			vectorized = true
			continue
		}
		a.errf(n.Args[i].Pos(), verrors.TypeError, "argument %d: cannot assign %s to parameter of type %s", i, argType, param)
	}
	// analyze any extra args beyond the parameter list so every argument
	// still gets a type attribute despite the arity mismatch.
	for i := argCount; i < len(n.Args); i++ {
		a.analyzeExpr(n.Args[i])
	}
	ret := calleeType.Return
	if g, ok := bindings[safeGenericName(ret)]; ok {
		ret = g
	}
	if vectorized {
		// spec.md §4.2 "Call": a vectorized call's return type is always
		// lifted to Mat(R), regardless of which array-like shape the
		// vectorized arguments carried.
		return types.Mat(ret)
	}
	_ = expected
	return ret
}

func safeGenericName(t *types.Type) string {
	if t == nil || t.Kind != types.KindGeneric {
		return ""
	}
	return t.Name
}

func (a *Analyzer) analyzeAssign(n *ast.Assign) *types.Type {
	switch n.Target.(type) {
	case *ast.Ref, *ast.FieldAccess, *ast.IndexAccess, *ast.SliceAccess:
	default:
		a.errf(n.Target.Pos(), verrors.StructuralError, "invalid assignment target")
	}
	targetType := a.analyzeExpr(n.Target)
	valueType := a.analyzeExprWithExpected(n.Value, targetType)
	if targetType != nil && valueType != nil && !types.IsAssignableTo(valueType, targetType) {
		a.errf(n.Pos(), verrors.TypeError, "cannot assign %s to %s", valueType, targetType)
	}
	return targetType
}
