package formatter

import (
	"strings"
	"testing"

	"github.com/thomasrohde/toylang/pkg/parser"
)

func formatSource(t *testing.T, source string) string {
	t.Helper()
	prog, diags := parser.Parse(source)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", source, diags)
	}
	return Format(prog)
}

func TestFormatAddsNoParensWhenPrecedenceAlreadyMatches(t *testing.T) {
	got := formatSource(t, `let x = 1 + 2 * 3;`)
	if strings.Contains(got, "(") {
		t.Errorf("expected no parens, got %q", got)
	}
}

func TestFormatPreservesLeftAssociativeSubtraction(t *testing.T) {
	got := formatSource(t, `let x = 1 - 2 - 3;`)
	if strings.Contains(got, "(") {
		t.Errorf("expected no parens for left-associative chain, got %q", got)
	}
}

func TestFormatParenthesizesRightOperandOfLowerPrecedence(t *testing.T) {
	got := formatSource(t, `let x = 1 * (2 + 3);`)
	if !strings.Contains(got, "(2 + 3)") {
		t.Errorf("expected the lower-precedence right operand to stay parenthesized, got %q", got)
	}
}

func TestFormatPowerRightAssociativityNeedsNoParensOnTheRight(t *testing.T) {
	got := formatSource(t, `let x = 2 ^ (3 ^ 2);`)
	if strings.Contains(got, "(") {
		t.Errorf("expected ^ right-associativity to need no parens here, got %q", got)
	}
}

func TestFormatPowerLeftOperandOfEqualPrecedenceGetsParens(t *testing.T) {
	got := formatSource(t, `let x = (2 ^ 3) ^ 2;`)
	if !strings.Contains(got, "(2 ^ 3)") {
		t.Errorf("expected the left operand of ^ at equal precedence to stay parenthesized, got %q", got)
	}
}

func TestFormatStringLiteralEscapesControlCharacters(t *testing.T) {
	got := formatSource(t, `let x = "a\nb\tc\"d";`)
	if !strings.Contains(got, `\n`) || !strings.Contains(got, `\t`) || !strings.Contains(got, `\"`) {
		t.Errorf("got %q", got)
	}
}

func TestFormatBlockIndentsNestedStatements(t *testing.T) {
	got := formatSource(t, `
		fun f() {
			let x = 1;
		}
	`)
	if !strings.Contains(got, "    let x = 1;") {
		t.Errorf("expected an indented body line, got %q", got)
	}
}

func TestHasCommentsIgnoresHashInsideString(t *testing.T) {
	if HasComments(`let x = "a # b";`) {
		t.Error("expected a '#' inside a string literal not to count as a comment")
	}
}

func TestHasCommentsDetectsLineComment(t *testing.T) {
	if !HasComments("let x = 1; # trailing comment") {
		t.Error("expected a trailing comment to be detected")
	}
}

func TestRoundTripReparsesToEquivalentShape(t *testing.T) {
	source := `let x = 1 + 2 * 3;`
	formatted := formatSource(t, source)
	reprog, diags := parser.Parse(formatted)
	if len(diags) != 0 {
		t.Fatalf("formatted output failed to reparse: %v", diags)
	}
	if len(reprog.Statements) != 1 {
		t.Fatalf("got %d statements", len(reprog.Statements))
	}
}
