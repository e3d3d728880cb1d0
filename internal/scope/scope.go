// Package scope implements vecta's nested lexical scopes (spec.md C2, §3.4).
package scope

import "vecta/internal/types"

// DeclKind distinguishes what a Decl names.
type DeclKind int

const (
	DeclVar DeclKind = iota
	DeclParam
	DeclFun
	DeclStruct
	DeclType // synthetic primitive/generic type declarations
	DeclField
)

// Decl is a resolved declaration: the thing a Ref's `decl` attribute points
// to (spec.md §4.2 "References get decl and scope").
type Decl struct {
	Kind DeclKind
	Name string
	Type *types.Type
	Node interface{} // the owning AST node (*ast.VarDecl, *ast.FunDecl, ...)
}

// Scope is (owner node, parent, name -> declaration) per spec.md §3.4.
type Scope struct {
	Owner   interface{}
	Parent  *Scope
	names   map[string]*Decl
	storage map[*Decl]interface{} // ScopeStorage: per-scope runtime bindings
}

func New(owner interface{}, parent *Scope) *Scope {
	return &Scope{
		Owner:   owner,
		Parent:  parent,
		names:   make(map[string]*Decl),
		storage: make(map[*Decl]interface{}),
	}
}

// Declare installs a new declaration in this scope, shadowing any outer one.
func (s *Scope) Declare(d *Decl) { s.names[d.Name] = d }

// Resolve looks up a name, walking outward through parent scopes.
func (s *Scope) Resolve(name string) (*Decl, *Scope) {
	for sc := s; sc != nil; sc = sc.Parent {
		if d, ok := sc.names[name]; ok {
			return d, sc
		}
	}
	return nil, nil
}

// ResolveLocal looks up a name in this scope only (no walking to parent).
func (s *Scope) ResolveLocal(name string) (*Decl, bool) {
	d, ok := s.names[name]
	return d, ok
}

// Get/Set implement ScopeStorage: the per-scope runtime value slot for a
// declaration (spec.md §3.4 "A Scope maps a declaration to a value slot
// during execution"). Assignment walks outward to find which enclosing
// scope actually owns the slot, mutating in place rather than shadowing.
func (s *Scope) Get(d *Decl) (interface{}, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		if v, ok := sc.storage[d]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *Scope) Bind(d *Decl, value interface{}) { s.storage[d] = value }

// Set mutates the binding in whichever scope owns it, falling back to
// binding it locally if it was never bound (first assignment).
func (s *Scope) Set(d *Decl, value interface{}) {
	for sc := s; sc != nil; sc = sc.Parent {
		if _, ok := sc.storage[d]; ok {
			sc.storage[d] = value
			return
		}
	}
	s.storage[d] = value
}
