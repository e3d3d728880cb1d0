package scope

import (
	"testing"

	"vecta/internal/types"
)

func TestDeclareAndResolveLocal(t *testing.T) {
	s := New("root", nil)
	d := &Decl{Kind: DeclVar, Name: "x", Type: types.Int}
	s.Declare(d)

	got, ok := s.ResolveLocal("x")
	if !ok || got != d {
		t.Fatalf("expected to resolve the same *Decl locally")
	}
	if _, ok := s.ResolveLocal("y"); ok {
		t.Errorf("expected y to be unresolved")
	}
}

func TestResolveWalksParentChain(t *testing.T) {
	outer := New("outer", nil)
	d := &Decl{Kind: DeclVar, Name: "x", Type: types.Int}
	outer.Declare(d)

	inner := New("inner", outer)
	got, owner := inner.Resolve("x")
	if got != d {
		t.Fatalf("expected inner scope to resolve x from its parent")
	}
	if owner != outer {
		t.Errorf("expected the owning scope returned to be outer")
	}
}

func TestInnerDeclareShadowsOuter(t *testing.T) {
	outer := New("outer", nil)
	outerX := &Decl{Kind: DeclVar, Name: "x", Type: types.Int}
	outer.Declare(outerX)

	inner := New("inner", outer)
	innerX := &Decl{Kind: DeclVar, Name: "x", Type: types.String}
	inner.Declare(innerX)

	got, _ := inner.Resolve("x")
	if got != innerX {
		t.Errorf("expected the inner declaration to shadow the outer one")
	}
	// the outer scope's own view is unaffected
	got, _ = outer.Resolve("x")
	if got != outerX {
		t.Errorf("expected the outer scope to still resolve to its own decl")
	}
}

// storage is keyed by *Decl pointer identity, not by name: re-declaring a
// Decl with the same name produces a distinct key, so binding one must not
// be visible under the other (this is the invariant a prior name-based
// re-resolution bug in the interpreter violated).
func TestStorageIsKeyedByDeclIdentityNotName(t *testing.T) {
	root := New("root", nil)
	a := &Decl{Kind: DeclFun, Name: "f"}
	b := &Decl{Kind: DeclFun, Name: "f"}

	root.Bind(a, 1)
	if v, ok := root.Get(b); ok {
		t.Errorf("expected a distinct *Decl with the same name to be unbound, got %v", v)
	}
	v, ok := root.Get(a)
	if !ok || v != 1 {
		t.Errorf("expected Get(a) to return the bound value")
	}
}

func TestSetMutatesOwningScopeInPlace(t *testing.T) {
	outer := New("outer", nil)
	d := &Decl{Kind: DeclVar, Name: "x"}
	outer.Bind(d, 1)

	inner := New("inner", outer)
	inner.Set(d, 2)

	v, ok := outer.Get(d)
	if !ok || v != 2 {
		t.Errorf("expected Set from an inner scope to mutate the outer scope's binding, got %v", v)
	}
	if _, ok := inner.ResolveLocal("x"); ok {
		t.Errorf("Set must not create a names entry in the inner scope")
	}
}

func TestSetBindsLocallyWhenNeverBound(t *testing.T) {
	s := New("root", nil)
	d := &Decl{Kind: DeclVar, Name: "x"}
	s.Set(d, 42)

	v, ok := s.Get(d)
	if !ok || v != 42 {
		t.Errorf("expected Set on an unbound decl to bind it locally")
	}
}
