package diagnostics

import (
	"errors"
	"strings"
	"testing"
)

func TestDiagnosticStringShape(t *testing.T) {
	d := While("variable declaration", Position{Line: 1, Column: 1}, "expected an identifier", Position{Line: 1, Column: 5})
	got := d.String()
	want := `While parsing variable declaration (line 1, column 1): expected an identifier at (line 1, column 5)`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPropagatedFormat(t *testing.T) {
	inner := errors.New("boom")
	wrapped := Propagated("binary expression at (line 3, column 4)", inner)
	want := "At binary expression at (line 3, column 4):\nboom"
	if wrapped.Error() != want {
		t.Errorf("got %q, want %q", wrapped.Error(), want)
	}
}

func TestPropagatedNests(t *testing.T) {
	inner := errors.New("root cause")
	once := Propagated("inner label", inner)
	twice := Propagated("outer label", once)
	if !strings.Contains(twice.Error(), "At outer label:") || !strings.Contains(twice.Error(), "At inner label:") {
		t.Errorf("got %q", twice.Error())
	}
	if !strings.HasSuffix(twice.Error(), "root cause") {
		t.Errorf("expected the chain to end in the root cause, got %q", twice.Error())
	}
}

func TestCauseUnwrapsToRoot(t *testing.T) {
	inner := errors.New("root cause")
	wrapped := Propagated("a", Propagated("b", inner))
	if Cause(wrapped).Error() != inner.Error() {
		t.Errorf("got %q, want %q", Cause(wrapped), inner)
	}
}

func TestFormatAllJoinsWithNewlines(t *testing.T) {
	ds := []Diagnostic{
		While("a", Position{1, 1}, "x", Position{1, 2}),
		While("b", Position{2, 1}, "y", Position{2, 2}),
	}
	out := FormatAll(ds)
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected exactly one newline joining two diagnostics, got %q", out)
	}
}
