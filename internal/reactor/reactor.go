// Package reactor implements vecta's attribute reactor (spec.md C3, §4.1): a
// generic dependency-driven solver over attributes keyed by (node, name).
// Rules fire once every input attribute they depend on has been set; rules
// may register further rules, which is how a reference's type rule can wait
// until its declaration is resolved, which may itself need scope resolution
// first (spec.md §4.1 "dynamic dependencies").
package reactor

import "vecta/internal/verrors"

// Key identifies one attribute slot.
type Key struct {
	Node interface{}
	Name string
}

// Rule computes one or more output attributes from a fixed set of input
// keys. It must be a pure function of its inputs (spec.md §5 "Ordering").
type Rule struct {
	Inputs []Key
	Run    func(r *Reactor)
	fired  bool
}

// Reactor is the write-once attribute store plus its pending rule set.
type Reactor struct {
	attrs       map[Key]interface{}
	pending     []*Rule
	diagnostics *verrors.Diagnostics
}

func New(diags *verrors.Diagnostics) *Reactor {
	return &Reactor{
		attrs:       make(map[Key]interface{}),
		diagnostics: diags,
	}
}

func (r *Reactor) Diagnostics() *verrors.Diagnostics { return r.diagnostics }

// Set writes an attribute. Attributes are write-once (spec.md §4.1
// "monotone"); a second Set on the same key is a programmer error in a rule
// and is ignored rather than panicking, since rules may be re-examined
// defensively.
func (r *Reactor) Set(node interface{}, name string, value interface{}) {
	k := Key{node, name}
	if _, exists := r.attrs[k]; exists {
		return
	}
	r.attrs[k] = value
}

func (r *Reactor) Get(node interface{}, name string) (interface{}, bool) {
	v, ok := r.attrs[Key{node, name}]
	return v, ok
}

func (r *Reactor) Has(node interface{}, name string) bool {
	_, ok := r.attrs[Key{node, name}]
	return ok
}

// Rule registers a new rule; it is attempted immediately and, if its inputs
// are not yet all present, requeued for the next Settle pass.
func (r *Reactor) Rule(inputs []Key, run func(r *Reactor)) {
	rule := &Rule{Inputs: inputs, Run: run}
	if r.allPresent(inputs) {
		rule.fired = true
		run(r)
		return
	}
	r.pending = append(r.pending, rule)
}

// Settle runs rules to fixpoint: repeatedly scan the pending list for rules
// whose inputs are all present, run them (which may append further rules —
// spec.md §4.1 "dynamic dependencies"), and stop when a full pass fires
// nothing new. Any rule still unfired when no progress is possible is
// simply dropped — its node never got an attribute, and §8 invariant 1
// requires the node to carry a diagnostic in that case, which the analyzer
// rule bodies are responsible for emitting themselves before bailing.
func (r *Reactor) Settle() {
	for {
		progress := false
		current := r.pending
		r.pending = nil
		var stillPending []*Rule
		for _, rule := range current {
			if rule.fired {
				continue
			}
			if r.allPresent(rule.Inputs) {
				rule.fired = true
				rule.Run(r)
				progress = true
			} else {
				stillPending = append(stillPending, rule)
			}
		}
		// keep rules registered by this pass's Run calls alongside the
		// ones still waiting on inputs
		r.pending = append(stillPending, r.pending...)
		if !progress {
			return
		}
	}
}

func (r *Reactor) allPresent(keys []Key) bool {
	for _, k := range keys {
		if _, ok := r.attrs[k]; !ok {
			return false
		}
	}
	return true
}
