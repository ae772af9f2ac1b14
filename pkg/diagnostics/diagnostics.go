// Package diagnostics formats the positional error reports shared by the
// parser and the evaluator.
package diagnostics

import (
	"fmt"

	"github.com/pkg/errors"
)

// Position is a 1-indexed (line, column) pair attached to every token and
// every AST node.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// Diagnostic is a single non-fatal parse error. The parser collects these
// into a list instead of aborting; the caller decides whether to proceed
// with an AST that still contains Illegal* nodes at the failure points.
type Diagnostic struct {
	Kind    string // the statement/expression kind being parsed, e.g. "variable declaration"
	At      Position
	Cause   string
	CauseAt Position
}

// While builds the "While parsing <kind> (line L, column C): <cause> at
// (line L', column C')" message shape required for parse diagnostics.
func While(kind string, at Position, cause string, causeAt Position) Diagnostic {
	return Diagnostic{Kind: kind, At: at, Cause: cause, CauseAt: causeAt}
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("While parsing %s (%s): %s at (%s)", d.Kind, d.At, d.Cause, d.CauseAt)
}

// Format renders a single diagnostic the way the CLI prints it to stderr.
func Format(d Diagnostic) string {
	return d.String()
}

// FormatAll renders a list of diagnostics, one per line.
func FormatAll(ds []Diagnostic) string {
	out := ""
	for i, d := range ds {
		if i > 0 {
			out += "\n"
		}
		out += d.String()
	}
	return out
}

// Propagated wraps an inner error with a positional label, producing the
// chain-style trace described for runtime error propagation: each dispatch
// site that re-raises an error prefixes it with "At <label>:". The wrapped
// error's ultimate cause is recoverable with errors.Cause (it implements
// the Cause() error interface pkg/errors expects).
func Propagated(label string, inner error) error {
	return &propagated{label: label, inner: inner}
}

type propagated struct {
	label string
	inner error
}

func (p *propagated) Error() string {
	return fmt.Sprintf("At %s:\n%s", p.label, p.inner.Error())
}

func (p *propagated) Cause() error { return p.inner }
func (p *propagated) Unwrap() error { return p.inner }

// Cause unwraps a propagation chain down to its root error.
func Cause(err error) error {
	return errors.Cause(err)
}

// Label formats the "<node name> at (line L, column C)" label used by
// every statement and expression dispatch site when it re-raises an error.
func Label(nodeName string, at Position) string {
	return fmt.Sprintf("%s at (%s)", nodeName, at)
}
