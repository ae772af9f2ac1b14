package parser

import (
	"testing"

	"github.com/thomasrohde/toylang/pkg/ast"
)

func TestParseVariableDeclaration(t *testing.T) {
	prog, diags := Parse(`let x = 1 + 2;`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*ast.VariableDeclaration)
	if !ok {
		t.Fatalf("got %T", prog.Statements[0])
	}
	if decl.Name != "x" {
		t.Errorf("got name %q", decl.Name)
	}
	bin, ok := decl.Init.(*ast.BinaryOp)
	if !ok || bin.Op != "+" {
		t.Errorf("got init %#v", decl.Init)
	}
}

func TestParseDeclarationNoInit(t *testing.T) {
	prog, diags := Parse(`let x;`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	if decl.Init != nil {
		t.Errorf("expected nil init, got %#v", decl.Init)
	}
}

func TestPowerIsRightAssociative(t *testing.T) {
	prog, _ := Parse(`let x = 2 ^ 3 ^ 2;`)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	top := decl.Init.(*ast.BinaryOp)
	if top.Op != "^" {
		t.Fatalf("got op %q", top.Op)
	}
	if _, ok := top.Right.(*ast.BinaryOp); !ok {
		t.Errorf("expected right-associative nesting, got %#v", top.Right)
	}
	if _, ok := top.Left.(*ast.NumberLiteral); !ok {
		t.Errorf("expected bare number on the left, got %#v", top.Left)
	}
}

func TestAdditiveIsLeftAssociative(t *testing.T) {
	prog, _ := Parse(`let x = 1 - 2 - 3;`)
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	top := decl.Init.(*ast.BinaryOp)
	if _, ok := top.Left.(*ast.BinaryOp); !ok {
		t.Errorf("expected left-associative nesting, got %#v", top.Left)
	}
}

func TestCallAndIndexChain(t *testing.T) {
	prog, diags := Parse(`let x = f(1, 2)[0];`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	idx, ok := decl.Init.(*ast.IndexAccess)
	if !ok {
		t.Fatalf("got %#v", decl.Init)
	}
	call, ok := idx.Target.(*ast.Call)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("got %#v", idx.Target)
	}
}

func TestForLoopWithStep(t *testing.T) {
	prog, diags := Parse(`for (i from 0 to 10 step 2) { echo i; }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	loop := prog.Statements[0].(*ast.ForLoop)
	if loop.Var != "i" || loop.Step == nil {
		t.Errorf("got %#v", loop)
	}
}

func TestFunctionWithDefaultParam(t *testing.T) {
	prog, diags := Parse(`fun add(a, b = 1) { return a + b; }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := prog.Statements[0].(*ast.FunctionDeclaration)
	if len(fn.Params) != 2 {
		t.Fatalf("got %d params", len(fn.Params))
	}
	if _, ok := fn.Params[0].(*ast.Variable); !ok {
		t.Errorf("param 0: got %#v", fn.Params[0])
	}
	def, ok := fn.Params[1].(*ast.BinaryOp)
	if !ok || def.Op != "=" {
		t.Errorf("param 1: got %#v", fn.Params[1])
	}
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	prog, diags := Parse(`if (a) if (b) echo 1; else echo 2;`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	outer := prog.Statements[0].(*ast.IfElse)
	inner, ok := outer.Then.(*ast.IfElse)
	if !ok {
		t.Fatalf("got %#v", outer.Then)
	}
	if inner.Else == nil {
		t.Error("expected else to bind to the inner if")
	}
	if outer.Else != nil {
		t.Error("outer if should have no else")
	}
}

func TestMissingSemicolonRecoversWithDiagnostic(t *testing.T) {
	prog, diags := Parse(`let x = 1
let y = 2;`)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for the missing semicolon")
	}
	if len(prog.Statements) == 0 {
		t.Fatal("expected the parser to still produce a program")
	}
}

func TestObjectLiteral(t *testing.T) {
	prog, diags := Parse(`let o = {"a": 1, "b": 2};`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	decl := prog.Statements[0].(*ast.VariableDeclaration)
	obj, ok := decl.Init.(*ast.ObjectLiteral)
	if !ok || len(obj.Entries) != 2 {
		t.Fatalf("got %#v", decl.Init)
	}
}

func TestCompoundAssignmentOperators(t *testing.T) {
	for _, op := range []string{"+=", "-=", "*=", "/=", "^="} {
		prog, diags := Parse(`x ` + op + ` 1;`)
		if len(diags) != 0 {
			t.Fatalf("op %s: unexpected diagnostics: %v", op, diags)
		}
		expr := prog.Statements[0].(*ast.BareExpression).Expr.(*ast.BinaryOp)
		if expr.Op != op {
			t.Errorf("got op %q, want %q", expr.Op, op)
		}
	}
}
