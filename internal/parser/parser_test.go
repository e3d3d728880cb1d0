package parser

import (
	"fmt"
	"testing"

	"vecta/internal/ast"
	"vecta/internal/lexer"
)

// parseString mirrors the teacher's parser_test.go helper: scan then parse,
// recovering any parse panic into the returned error slice.
func parseString(input string) (stmts []ast.Stmt, errs []error) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, fmt.Errorf("panic: %v", r))
		}
	}()
	sc := lexer.New(input)
	toks := sc.ScanTokens()
	p := New(toks)
	stmts = p.Parse()
	errs = append(errs, p.Errors...)
	return
}

func assertParseSuccess(t *testing.T, input, description string) []ast.Stmt {
	t.Helper()
	stmts, errs := parseString(input)
	if len(errs) > 0 {
		t.Errorf("%s: parse errors: %v", description, errs)
	}
	return stmts
}

func TestParseVarDecl(t *testing.T) {
	stmts := assertParseSuccess(t, `var x: Int = 1`, "simple var decl")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	vd, ok := stmts[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", stmts[0])
	}
	if vd.Name != "x" {
		t.Errorf("expected name x, got %s", vd.Name)
	}
}

func TestParseMatrixLiteral(t *testing.T) {
	stmts := assertParseSuccess(t, `return [[1,2],[3,4]]`, "matrix literal")
	ret := stmts[0].(*ast.Return)
	if _, ok := ret.Value.(*ast.MatrixLit); !ok {
		t.Fatalf("expected *ast.MatrixLit, got %T", ret.Value)
	}
}

func TestParseArrayLiteralStaysArray(t *testing.T) {
	stmts := assertParseSuccess(t, `return [1,2,3]`, "array literal")
	ret := stmts[0].(*ast.Return)
	if _, ok := ret.Value.(*ast.ArrayLit); !ok {
		t.Fatalf("expected *ast.ArrayLit, got %T", ret.Value)
	}
}

func TestParseMatrixGenerator(t *testing.T) {
	stmts := assertParseSuccess(t, `return [1](2,2)`, "matrix generator")
	ret := stmts[0].(*ast.Return)
	gen, ok := ret.Value.(*ast.MatrixGen)
	if !ok {
		t.Fatalf("expected *ast.MatrixGen, got %T", ret.Value)
	}
	if len(gen.Shape) != 2 {
		t.Errorf("expected 2 shape expressions, got %d", len(gen.Shape))
	}
}

func TestParseSliceDefaults(t *testing.T) {
	stmts := assertParseSuccess(t, `a[1:3] = [9,9]`, "slice assignment")
	es := stmts[0].(*ast.ExprStmt)
	assign := es.Expr.(*ast.Assign)
	sl := assign.Target.(*ast.SliceAccess)
	start := sl.StartIndex.(*ast.IntLit)
	if start.Value != 1 {
		t.Errorf("expected start 1, got %d", start.Value)
	}
}

func TestParseSliceOpenEnd(t *testing.T) {
	stmts := assertParseSuccess(t, `return a[0:]`, "open-ended slice")
	ret := stmts[0].(*ast.Return)
	sl := ret.Value.(*ast.SliceAccess)
	end := sl.EndIndex.(*ast.IntLit)
	if end.Value != -1 {
		t.Errorf("expected default end -1, got %d", end.Value)
	}
}

func TestParseCaseStatement(t *testing.T) {
	stmts := assertParseSuccess(t, `case [1,2,3,4,5] { [1,2,_,5]: { return 1 }, default: { return 2 } }`, "case statement")
	cs, ok := stmts[0].(*ast.CaseStmt)
	if !ok {
		t.Fatalf("expected *ast.CaseStmt, got %T", stmts[0])
	}
	if len(cs.Bodies) != 1 || cs.Default == nil {
		t.Errorf("expected 1 body and a default, got %d bodies, default=%v", len(cs.Bodies), cs.Default)
	}
}

func TestParseGenericFunction(t *testing.T) {
	stmts := assertParseSuccess(t, `fun f(x: T): T { return x }`, "generic function")
	fd, ok := stmts[0].(*ast.FunDecl)
	if !ok {
		t.Fatalf("expected *ast.FunDecl, got %T", stmts[0])
	}
	if fd.Params[0].TypeExpr.(*ast.Ref).Name != "T" {
		t.Errorf("expected param type T")
	}
}

func TestParseArrayLikeOperators(t *testing.T) {
	stmts := assertParseSuccess(t, `return [1](2,2) >? [[2,2],[0,0]]`, "array-like operator")
	ret := stmts[0].(*ast.Return)
	bin, ok := ret.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("expected *ast.Binary, got %T", ret.Value)
	}
	if bin.Op != ">?" {
		t.Errorf("expected operator >?, got %s", bin.Op)
	}
}

func TestParseMatType(t *testing.T) {
	stmts := assertParseSuccess(t, `var m: Mat#Float = [[1,2],[3,4]]`, "mat type annotation")
	vd := stmts[0].(*ast.VarDecl)
	if _, ok := vd.TypeExpr.(*ast.MatTypeExpr); !ok {
		t.Fatalf("expected *ast.MatTypeExpr, got %T", vd.TypeExpr)
	}
}
