// Package verrors implements vecta's error channel (spec.md C7 / §7 / §10.1):
// an accumulating diagnostics collector for the analysis phase and a single
// unwinding fault for the interpretation phase, kept deliberately distinct
// from the unwinding signal that implements `return` (see interp.returnSignal).
package verrors

import (
	"fmt"
	"strings"
)

// Kind is the phase/category stamped on every diagnostic (spec.md §7).
type Kind string

const (
	NameError       Kind = "NameError"
	TypeError       Kind = "TypeError"
	StructuralError Kind = "StructuralError"
	RuntimeFault    Kind = "RuntimeFault"
)

// Location is a source position for display.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.Line == 0 {
		return ""
	}
	if l.File != "" {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// Diagnostic is one reported semantic error or runtime fault.
type Diagnostic struct {
	Kind     Kind
	Message  string
	Location Location
	Source   string
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", d.Kind, d.Message))
	if loc := d.Location.String(); loc != "" {
		sb.WriteString(fmt.Sprintf(" (at %s)", loc))
	}
	if d.Source != "" {
		sb.WriteString(fmt.Sprintf("\n  %s", d.Source))
		if d.Location.Column > 0 {
			sb.WriteString(fmt.Sprintf("\n  %s^", strings.Repeat(" ", d.Location.Column-1)))
		}
	}
	return sb.String()
}

func New(kind Kind, loc Location, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// Diagnostics is the analysis-phase error channel (spec.md §7: "Semantic
// errors accumulate — the reactor continues to fire other rules"). Never
// short-circuits; execution is simply gated on len(Diagnostics.All()) == 0.
type Diagnostics struct {
	items []*Diagnostic
}

func (d *Diagnostics) Report(diag *Diagnostic) { d.items = append(d.items, diag) }

func (d *Diagnostics) Reportf(kind Kind, loc Location, format string, args ...interface{}) {
	d.Report(New(kind, loc, format, args...))
}

func (d *Diagnostics) All() []*Diagnostic { return d.items }

func (d *Diagnostics) HasErrors() bool { return len(d.items) > 0 }

func (d *Diagnostics) String() string {
	lines := make([]string, len(d.items))
	for i, it := range d.items {
		lines[i] = it.Error()
	}
	return strings.Join(lines, "\n")
}

// Fault is a run-time error (spec.md §7 "Run-time faults"). The interpreter
// raises one via panic(&Fault{...}) and recovers it at the top of Run, never
// letting it escape as a bare Go panic or be confused with returnSignal.
type Fault struct {
	Diagnostic
}

func (f *Fault) Error() string { return f.Diagnostic.Error() }

func NewFault(loc Location, format string, args ...interface{}) *Fault {
	return &Fault{Diagnostic: *New(RuntimeFault, loc, format, args...)}
}

// Raise panics with a Fault — the interpreter's single run-time unwinding
// mechanism (spec.md §5 "a separate one for surfacing run-time faults").
func Raise(loc Location, format string, args ...interface{}) {
	panic(NewFault(loc, format, args...))
}
