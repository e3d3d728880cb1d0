// Package types implements vecta's type universe (spec.md C1, §3.1).
package types

import "fmt"

// Kind distinguishes the closed set of type variants spec.md §3.1 names.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
	KindString
	KindVoid
	KindNull
	KindTypeType // the type of a type-denoting expression ("Type")
	KindArray
	KindMat
	KindStruct
	KindFun
	KindGeneric
	KindSymbolic
)

// Generic.UNKNOWN sentinel: could not resolve during unification.
const Unknown = "<unknown>"

// Type is the single representation for every member of the type universe.
// Component/array/mat/struct/fun cases use the relevant fields; zero value
// fields on unrelated cases are ignored.
type Type struct {
	Kind Kind

	// Array / Mat
	Elem *Type

	// Struct
	StructName string
	Fields     []Field // ordered, spec.md §3.1 "ordered list of typed fields"

	// Fun
	Return *Type
	Params []*Type

	// Generic
	Name       string
	resolution *Type // mutable slot set on first use during a call (spec.md §3.1)
}

type Field struct {
	Name string
	Type *Type
}

func Primitive(k Kind) *Type { return &Type{Kind: k} }

var (
	Int     = Primitive(KindInt)
	Float   = Primitive(KindFloat)
	Bool    = Primitive(KindBool)
	String  = Primitive(KindString)
	Void    = Primitive(KindVoid)
	Null    = Primitive(KindNull)
	TypeVal = Primitive(KindTypeType)
	Symbolic = Primitive(KindSymbolic)
)

func Array(elem *Type) *Type { return &Type{Kind: KindArray, Elem: elem} }
func Mat(elem *Type) *Type   { return &Type{Kind: KindMat, Elem: elem} }

func Struct(name string, fields []Field) *Type {
	return &Type{Kind: KindStruct, StructName: name, Fields: fields}
}

func Fun(ret *Type, params []*Type) *Type {
	return &Type{Kind: KindFun, Return: ret, Params: params}
}

// NewGeneric creates a fresh, unresolved type variable.
func NewGeneric(name string) *Type { return &Type{Kind: KindGeneric, Name: name} }

// Resolve returns the generic's bound concrete type, or itself if not a
// generic / not yet bound.
func (t *Type) Resolve() *Type {
	if t == nil {
		return t
	}
	if t.Kind == KindGeneric && t.resolution != nil {
		return t.resolution.Resolve()
	}
	return t
}

// Bind sets a generic's resolution slot. Reset() clears it; the interpreter
// calls Reset on every generic parameter at the start of every call (spec.md
// §4.3 "Generic binding", §5 "must be reset at the start of every call").
func (t *Type) Bind(concrete *Type) { t.resolution = concrete }
func (t *Type) Reset()              { t.resolution = nil }
func (t *Type) IsResolved() bool    { return t.resolution != nil }

func (t *Type) IsArrayLike() bool {
	return t != nil && (t.Kind == KindArray || t.Kind == KindMat)
}

func (t *Type) IsNumeric() bool {
	t = t.Resolve()
	return t != nil && (t.Kind == KindInt || t.Kind == KindFloat)
}

func (t *Type) IsReference() bool {
	t = t.Resolve()
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindArray, KindMat, KindStruct, KindFun:
		return true
	}
	return false
}

// Equals implements spec.md §3.1's equality rules, including the
// Array(Array(T)) ≡ Mat(T) lemma and Symbolic's universal reflexivity.
func (t *Type) Equals(u *Type) bool {
	t, u = t.Resolve(), u.Resolve()
	if t == nil || u == nil {
		return t == u
	}
	if t.Kind == KindSymbolic || u.Kind == KindSymbolic {
		return true
	}
	if t.Kind == KindGeneric || u.Kind == KindGeneric {
		return t.Kind == KindGeneric && u.Kind == KindGeneric && t.Name == u.Name
	}
	// Array(Array(T)) ≡ Mat(T) (spec.md §3.1, design note "Array/Mat interop")
	if t.Kind == KindArray && u.Kind == KindMat {
		return arrayEqualsMat(t, u)
	}
	if t.Kind == KindMat && u.Kind == KindArray {
		return arrayEqualsMat(u, t)
	}
	if t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case KindArray, KindMat:
		return t.Elem.Equals(u.Elem)
	case KindStruct:
		return t.StructName == u.StructName
	case KindFun:
		if !t.Return.Equals(u.Return) || len(t.Params) != len(u.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equals(u.Params[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// arrayEqualsMat holds when arr = Array(Array(U)) i.e. a 2-D array of mat's
// leaf component (spec.md §3.1).
func arrayEqualsMat(arr, mat *Type) bool {
	inner := arr.Elem.Resolve()
	if inner == nil || inner.Kind != KindArray {
		return false
	}
	return inner.Elem.Equals(mat.Elem)
}

// IsAssignableTo implements spec.md §3.1's subtyping: Int ≤ Float; Null ≤ any
// reference type; Array(A) ≤ Array(B) iff A ≤ B (likewise Mat); otherwise
// equality.
func IsAssignableTo(from, to *Type) bool {
	from, to = from.Resolve(), to.Resolve()
	if from == nil || to == nil {
		return from == to
	}
	if from.Kind == KindSymbolic || to.Kind == KindSymbolic {
		return true
	}
	if from.Equals(to) {
		return true
	}
	if from.Kind == KindInt && to.Kind == KindFloat {
		return true
	}
	if from.Kind == KindNull && to.IsReference() {
		return true
	}
	if from.Kind == KindArray && to.Kind == KindArray {
		return IsAssignableTo(from.Elem, to.Elem)
	}
	if from.Kind == KindMat && to.Kind == KindMat {
		return IsAssignableTo(from.Elem, to.Elem)
	}
	return false
}

// CommonSupertype returns the narrowest type both a and b are assignable to,
// or nil if none exists among the rules vecta implements. Satisfies testable
// property 2: IsAssignableTo(a,b) => CommonSupertype(a,b) == b.
func CommonSupertype(a, b *Type) *Type {
	a, b = a.Resolve(), b.Resolve()
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if IsAssignableTo(a, b) {
		return b
	}
	if IsAssignableTo(b, a) {
		return a
	}
	if a.IsArrayLike() && b.IsArrayLike() {
		elem := CommonSupertype(a.Elem, b.Elem)
		if elem == nil {
			return nil
		}
		if a.Kind == KindMat || b.Kind == KindMat {
			return Mat(elem)
		}
		return Array(elem)
	}
	return nil
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindVoid:
		return "Void"
	case KindNull:
		return "Null"
	case KindTypeType:
		return "Type"
	case KindSymbolic:
		return "_"
	case KindArray:
		return fmt.Sprintf("%s[]", t.Elem)
	case KindMat:
		return fmt.Sprintf("Mat#%s", t.Elem)
	case KindStruct:
		return t.StructName
	case KindFun:
		return fmt.Sprintf("Fun(%s)->%s", t.Params, t.Return)
	case KindGeneric:
		if t.resolution != nil {
			return fmt.Sprintf("%s=%s", t.Name, t.resolution)
		}
		return t.Name
	default:
		return "<?>"
	}
}
