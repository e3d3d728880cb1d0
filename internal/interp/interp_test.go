package interp

import (
	"testing"

	"github.com/kr/pretty"

	"vecta/internal/analyzer"
	"vecta/internal/lexer"
	"vecta/internal/parser"
	"vecta/internal/value"
)

// assertValue compares a nested Value tree against an expected one,
// rendering a structural diff on mismatch — matrices and structs are deep
// enough that a %v dump hides which leaf actually differs.
func assertValue(t *testing.T, got, want value.Value) {
	t.Helper()
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Errorf("value mismatch:\n%s", pretty.Sprint(diff))
	}
}

// runSource mirrors the CLI driver's own pipeline (cmd/vecta/main.go): parse,
// analyze, then interpret, failing the test on any diagnostic or fault.
func runSource(t *testing.T, src string) value.Value {
	t.Helper()
	toks := lexer.New(src).ScanTokens()
	p := parser.NewWithSource(toks, src, "<test>")
	stmts := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	result := analyzer.Analyze(stmts)
	if result.Diagnostics.HasErrors() {
		t.Fatalf("analysis errors: %s", result.Diagnostics.String())
	}
	ip := New(result.Reactor, result.RootScope)
	v, fault := ip.Run(stmts)
	if fault != nil {
		t.Fatalf("runtime fault: %s", fault.Error())
	}
	return v
}

func TestMatrixAddition(t *testing.T) {
	v := runSource(t, `
		var a: Mat#Int = [[1,2],[3,4]]
		var b: Mat#Int = [[1,2],[3,4]]
		return a + b
	`)
	want := value.NewMatrix([]value.Array{
		value.NewArray([]value.Value{value.Int(2), value.Int(4)}),
		value.NewArray([]value.Value{value.Int(6), value.Int(8)}),
	})
	assertValue(t, v, want)
}

func TestIntPromotionToFloat(t *testing.T) {
	v := runSource(t, `
		var m: Mat#Float = [[1,2],[3,4]]
		return m
	`)
	m, ok := v.(value.Matrix)
	if !ok {
		t.Fatalf("expected a Matrix, got %T", v)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if _, isFloat := m.Row(i).At(j).(value.Float); !isFloat {
				t.Errorf("expected Float at (%d,%d), got %T", i, j, m.Row(i).At(j))
			}
		}
	}
}

func TestDotProduct(t *testing.T) {
	v := runSource(t, `
		var a: Mat#Int = [[1,2],[3,4]]
		var b: Mat#Int = [[5,6],[7,8]]
		return a @ b
	`)
	if got := v.String(); got != "[[19,22],[43,50]]" {
		t.Errorf("expected [[19,22],[43,50]], got %s", got)
	}
}

func TestCaseWildcard(t *testing.T) {
	v := runSource(t, `
		case [1,2,3,4,5] {
			[1,2,_,5]: { return 1 },
			default: { return 2 }
		}
	`)
	if got := v.String(); got != "1" {
		t.Errorf("expected 1, got %s", got)
	}
}

func TestGenericVectorization(t *testing.T) {
	v := runSource(t, `
		fun f(x: T): T { return x + 1 }
		return f([1,2])
	`)
	if got := v.String(); got != "[[2,3]]" {
		t.Errorf("expected [[2,3]], got %s", got)
	}
}

func TestSliceAssignment(t *testing.T) {
	v := runSource(t, `
		var a: Int[] = [1,2,3,4]
		a[1:3] = [9,9]
		return a
	`)
	if got := v.String(); got != "[1,9,9,4]" {
		t.Errorf("expected [1,9,9,4], got %s", got)
	}
}

func TestBroadcasting(t *testing.T) {
	v := runSource(t, `
		return [1](2,2) >? [[2,2],[0,0]]
	`)
	if got := v.String(); got != "true" {
		t.Errorf("expected true, got %s", got)
	}
}

func TestStructConstruction(t *testing.T) {
	v := runSource(t, `
		struct Point { x: Int, y: Int }
		var p: Point = $Point(1, 2)
		return p.x + p.y
	`)
	assertValue(t, v, value.Int(3))
}

func TestForwardFunctionReference(t *testing.T) {
	v := runSource(t, `
		fun a(): Int { return b() }
		fun b(): Int { return 42 }
		return a()
	`)
	if got := v.String(); got != "42" {
		t.Errorf("expected 42, got %s", got)
	}
}

func TestStringPatternMatch(t *testing.T) {
	v := runSource(t, `
		case "hello" {
			"h\flo": { return 1 },
			default: { return 2 }
		}
	`)
	if got := v.String(); got != "1" {
		t.Errorf("expected 1, got %s", got)
	}
}
