package reactor

import (
	"testing"

	"vecta/internal/verrors"
)

func newReactor() *Reactor {
	return New(&verrors.Diagnostics{})
}

func TestSetAndGet(t *testing.T) {
	r := newReactor()
	node := "node-a"
	r.Set(node, "type", 1)

	v, ok := r.Get(node, "type")
	if !ok || v != 1 {
		t.Fatalf("expected Get to return the value just Set")
	}
	if !r.Has(node, "type") {
		t.Errorf("expected Has to report true")
	}
	if r.Has(node, "other") {
		t.Errorf("expected Has to report false for an unset attribute")
	}
}

// Attributes are write-once: a second Set on the same key is ignored rather
// than overwriting (spec.md §4.1 "monotone").
func TestSetIsWriteOnce(t *testing.T) {
	r := newReactor()
	node := "node-a"
	r.Set(node, "type", 1)
	r.Set(node, "type", 2)

	v, _ := r.Get(node, "type")
	if v != 1 {
		t.Errorf("expected the first Set to win, got %v", v)
	}
}

func TestKeysAreScopedByNodeAndName(t *testing.T) {
	r := newReactor()
	nodeA, nodeB := "a", "b"
	r.Set(nodeA, "type", "int")
	r.Set(nodeB, "type", "string")
	r.Set(nodeA, "decl", "declA")

	ta, _ := r.Get(nodeA, "type")
	tb, _ := r.Get(nodeB, "type")
	if ta != "int" || tb != "string" {
		t.Errorf("expected distinct nodes to have independent attribute slots")
	}
	if _, ok := r.Get(nodeB, "decl"); ok {
		t.Errorf("expected node B to have no decl attribute")
	}
}

// A rule with all its inputs already present fires immediately on
// registration, without needing Settle.
func TestRuleFiresImmediatelyWhenInputsPresent(t *testing.T) {
	r := newReactor()
	node := "n"
	r.Set(node, "a", 2)
	r.Set(node, "b", 3)

	r.Rule([]Key{{node, "a"}, {node, "b"}}, func(r *Reactor) {
		a, _ := r.Get(node, "a")
		b, _ := r.Get(node, "b")
		r.Set(node, "sum", a.(int)+b.(int))
	})

	sum, ok := r.Get(node, "sum")
	if !ok || sum != 5 {
		t.Fatalf("expected the rule to fire immediately, got sum=%v ok=%v", sum, ok)
	}
}

// A rule registered before its inputs exist waits until Settle, which may
// require multiple passes since a rule's own output can be another rule's
// input (spec.md §4.1 "dynamic dependencies").
func TestSettleResolvesChainedDependencies(t *testing.T) {
	r := newReactor()
	node := "n"

	r.Rule([]Key{{node, "b"}}, func(r *Reactor) {
		b, _ := r.Get(node, "b")
		r.Set(node, "c", b.(int)+1)
	})
	r.Rule([]Key{{node, "a"}}, func(r *Reactor) {
		a, _ := r.Get(node, "a")
		r.Set(node, "b", a.(int)+1)
	})

	r.Set(node, "a", 1)
	r.Settle()

	c, ok := r.Get(node, "c")
	if !ok || c != 3 {
		t.Fatalf("expected the rule chain to settle to c=3, got c=%v ok=%v", c, ok)
	}
}

// A rule whose inputs never all become present is simply dropped once no
// further progress is possible; it must not panic or loop forever.
func TestSettleDropsUnreachableRules(t *testing.T) {
	r := newReactor()
	node := "n"
	fired := false
	r.Rule([]Key{{node, "never"}}, func(r *Reactor) {
		fired = true
	})

	r.Settle()

	if fired {
		t.Errorf("expected a rule with a never-present input to never fire")
	}
}

// A rule's Run may register further rules mid-Settle; Settle must keep
// passing until no rule makes progress, not stop after one scan.
func TestSettleRunsRulesRegisteredDuringSettle(t *testing.T) {
	r := newReactor()
	node := "n"
	r.Set(node, "seed", 1)

	r.Rule([]Key{{node, "seed"}}, func(r *Reactor) {
		r.Rule([]Key{{node, "seed"}}, func(r *Reactor) {
			seed, _ := r.Get(node, "seed")
			r.Set(node, "derived", seed.(int)*10)
		})
	})

	r.Settle()

	derived, ok := r.Get(node, "derived")
	if !ok || derived != 10 {
		t.Fatalf("expected a rule registered during Settle to also fire, got %v ok=%v", derived, ok)
	}
}
