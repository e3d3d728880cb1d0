package analyzer

import (
	"testing"

	"github.com/kr/pretty"

	"vecta/internal/ast"
	"vecta/internal/lexer"
	"vecta/internal/parser"
	"vecta/internal/types"
	"vecta/internal/verrors"
)

func analyzeSource(t *testing.T, src string) *Result {
	t.Helper()
	toks := lexer.New(src).ScanTokens()
	p := parser.NewWithSource(toks, src, "<test>")
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	return Analyze(stmts)
}

func assertNoErrors(t *testing.T, r *Result) {
	t.Helper()
	if r.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", r.Diagnostics.String())
	}
}

func assertHasError(t *testing.T, r *Result, kind verrors.Kind) {
	t.Helper()
	for _, d := range r.Diagnostics.All() {
		if d.Kind == kind {
			return
		}
	}
	t.Fatalf("expected a diagnostic of kind %s, got: %s", kind, r.Diagnostics.String())
}

func TestValidProgramHasNoDiagnostics(t *testing.T) {
	r := analyzeSource(t, `
		var x: Int = 1
		var y: Float = x
		print(x + y)
	`)
	assertNoErrors(t, r)
}

func TestAssigningStringToIntIsTypeError(t *testing.T) {
	r := analyzeSource(t, `var x: Int = "oops"`)
	assertHasError(t, r, verrors.TypeError)
}

func TestUndeclaredNameIsNameError(t *testing.T) {
	r := analyzeSource(t, `print(undefinedThing)`)
	assertHasError(t, r, verrors.NameError)
}

func TestForwardFunctionReferenceResolves(t *testing.T) {
	// a() calls b() before b is declared: the analyzer's hoisting pass must
	// have already installed b's signature by the time a's body is checked.
	r := analyzeSource(t, `
		fun a(): Int { return b() }
		fun b(): Int { return 1 }
	`)
	assertNoErrors(t, r)
}

func TestForwardStructReferenceResolves(t *testing.T) {
	r := analyzeSource(t, `
		fun makePoint(): Point { return $Point(1, 2) }
		struct Point { x: Int, y: Int }
	`)
	assertNoErrors(t, r)
}

func TestFloatAssignedToIntFieldIsTypeError(t *testing.T) {
	r := analyzeSource(t, `
		struct Point { x: Int }
		var p: Point = $Point(1.5)
	`)
	assertHasError(t, r, verrors.TypeError)
}

func TestGenericFunctionAcceptsMultipleConcreteTypes(t *testing.T) {
	r := analyzeSource(t, `
		fun identity(x: T): T { return x }
		var a: Int = identity(1)
		var b: String = identity("s")
	`)
	assertNoErrors(t, r)
}

func TestCaseSubjectCannotBeWildcard(t *testing.T) {
	r := analyzeSource(t, `
		case _ {
			1: { print(1) },
			default: { print(2) }
		}
	`)
	assertHasError(t, r, verrors.TypeError)
}

func TestCasePatternTypeMustMatchSubject(t *testing.T) {
	r := analyzeSource(t, `
		case 1 {
			"a": { print(1) },
			default: { print(2) }
		}
	`)
	assertHasError(t, r, verrors.TypeError)
}

func TestFunctionMustReturnOnAllPaths(t *testing.T) {
	r := analyzeSource(t, `
		fun f(x: Int): Int {
			if x > 0 {
				return 1
			}
		}
	`)
	assertHasError(t, r, verrors.StructuralError)
}

func TestFunctionReturningOnBothBranchesIsFine(t *testing.T) {
	r := analyzeSource(t, `
		fun f(x: Int): Int {
			if x > 0 {
				return 1
			} else {
				return 0
			}
		}
	`)
	assertNoErrors(t, r)
}

func TestArrayOfArrayLiteralIsAssignableToMat(t *testing.T) {
	r := analyzeSource(t, `var m: Mat#Int = [[1,2],[3,4]]`)
	assertNoErrors(t, r)
}

// A vectorized call's return type is a nested Type tree (Mat wrapping the
// declared return element); a structural diff pinpoints which level is
// wrong far faster than a %v dump of the whole tree.
func TestVectorizedCallReturnTypeTree(t *testing.T) {
	src := `
		fun inc(x: Int): Int { return x + 1 }
		var out: Mat#Int = inc([1, 2])
	`
	toks := lexer.New(src).ScanTokens()
	p := parser.NewWithSource(toks, src, "<test>")
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	r := Analyze(stmts)
	assertNoErrors(t, r)

	varDecl := stmts[1].(*ast.VarDecl)
	callExpr := varDecl.Init

	got, ok := r.Reactor.Get(callExpr, "type")
	if !ok {
		t.Fatalf("expected the call expression to carry a type attribute")
	}
	want := types.Mat(types.Int)
	if diff := pretty.Diff(got.(*types.Type), want); len(diff) > 0 {
		t.Errorf("call return type mismatch:\n%s", pretty.Sprint(diff))
	}
}
