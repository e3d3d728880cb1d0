// Package builtin installs vecta's root scope (spec.md §3.4): the synthetic
// declarations every program starts with — the primitive types, the boolean
// and null literals' backing declarations, and the `print` function.
package builtin

import (
	"fmt"

	"vecta/internal/reactor"
	"vecta/internal/scope"
	"vecta/internal/types"
	"vecta/internal/value"
)

// declType installs a primitive type name (e.g. "Int") as a DeclType whose
// own (node, "type") attribute is Type — spec.md §3.1 lists Type itself as
// a primitive, and a type name's declaration has type Type.
func declType(sc *scope.Scope, rt *reactor.Reactor, name string, t *types.Type) *scope.Decl {
	d := &scope.Decl{Kind: scope.DeclType, Name: name, Node: name}
	sc.Declare(d)
	rt.Set(d.Node, "type", types.TypeVal)
	rt.Set(d.Node, "declared", t)
	return d
}

// Install populates sc with spec.md §3.4's synthetic root declarations and
// binds their run-time values, returning sc for chaining.
func Install(sc *scope.Scope, rt *reactor.Reactor) *scope.Scope {
	declType(sc, rt, "Int", types.Int)
	declType(sc, rt, "Float", types.Float)
	declType(sc, rt, "Bool", types.Bool)
	declType(sc, rt, "String", types.String)
	declType(sc, rt, "Void", types.Void)
	declType(sc, rt, "Type", types.TypeVal)

	trueDecl := &scope.Decl{Kind: scope.DeclVar, Name: "true", Node: "true"}
	sc.Declare(trueDecl)
	rt.Set(trueDecl.Node, "type", types.Bool)
	sc.Bind(trueDecl, value.Bool(true))

	falseDecl := &scope.Decl{Kind: scope.DeclVar, Name: "false", Node: "false"}
	sc.Declare(falseDecl)
	rt.Set(falseDecl.Node, "type", types.Bool)
	sc.Bind(falseDecl, value.Bool(false))

	nullDecl := &scope.Decl{Kind: scope.DeclVar, Name: "null", Node: "null"}
	sc.Declare(nullDecl)
	rt.Set(nullDecl.Node, "type", types.Null)
	sc.Bind(nullDecl, value.Null)

	// print(x: T): String — the only synthetic function (spec.md §3.4, §4.3).
	// Its parameter is a fresh generic so it accepts any single argument; it
	// returns the string it wrote.
	printGeneric := types.NewGeneric("T")
	printDecl := &scope.Decl{Kind: scope.DeclFun, Name: "print", Node: "print"}
	sc.Declare(printDecl)
	rt.Set(printDecl.Node, "type", types.Fun(types.String, []*types.Type{printGeneric}))
	sc.Bind(printDecl, &value.Builtin{Name: "print", Fn: func(args []value.Value) value.Value {
		s := args[0].String()
		fmt.Println(s)
		return value.String(s)
	}})

	return sc
}
