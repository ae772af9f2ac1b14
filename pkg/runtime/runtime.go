// Package runtime provides the top-level Toylang runtime orchestrator,
// wiring the parser, the evaluator and its prelude, and the formatter
// behind one entry point for cmd/toylang.
package runtime

import (
	"github.com/thomasrohde/toylang/pkg/diagnostics"
	"github.com/thomasrohde/toylang/pkg/evaluator"
	"github.com/thomasrohde/toylang/pkg/formatter"
	"github.com/thomasrohde/toylang/pkg/parser"
	"github.com/thomasrohde/toylang/pkg/prelude"
)

// Result holds the outcome of running a program: whatever the root
// scope's exports object ended up holding.
type Result struct {
	Exports *evaluator.Object
}

// Runtime wires together Toylang's pipeline for repeated use across a
// REPL session or a single `run` invocation.
type Runtime struct {
	installPrelude func(*evaluator.Scope)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithPrelude overrides the prelude installer, e.g. in tests that want
// a scope with only a handful of builtins bound.
func WithPrelude(fn func(*evaluator.Scope)) Option {
	return func(rt *Runtime) { rt.installPrelude = fn }
}

// New creates a Runtime with the standard prelude installed by default.
func New(opts ...Option) *Runtime {
	rt := &Runtime{installPrelude: prelude.Install}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses and executes a program, returning its exports on success.
func (rt *Runtime) Run(source, filename string) (*Result, error) {
	program, diags := parser.Parse(source)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	ev := evaluator.New(filename, rt.installPrelude)
	if err := ev.Execute(program); err != nil {
		return nil, err
	}
	exported, err := ev.RootScope().Get("exports")
	if err != nil {
		return &Result{}, nil
	}
	obj, _ := exported.(*evaluator.Object)
	return &Result{Exports: obj}, nil
}

// Check parses a program without executing it, returning any parse
// diagnostics.
func (rt *Runtime) Check(source string) []diagnostics.Diagnostic {
	_, diags := parser.Parse(source)
	return diags
}

// Format parses and pretty-prints a program.
func (rt *Runtime) Format(source string) (string, error) {
	program, diags := parser.Parse(source)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

// DiagnosticError wraps one or more parse diagnostics as a single error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	return diagnostics.FormatAll(e.Diagnostics)
}
