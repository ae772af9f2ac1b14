// Package formatter pretty-prints a parsed Program back to Toylang
// source, inserting parentheses only where precedence would otherwise
// change the parse.
package formatter

import (
	"strings"

	"github.com/thomasrohde/toylang/pkg/ast"
	"github.com/thomasrohde/toylang/pkg/evaluator"
)

const indent = "    "

var precedence = map[string]int{
	"or": 1, "and": 2,
	"==": 3, "!=": 3,
	">": 4, "<": 4, ">=": 4, "<=": 4,
	"+": 5, "-": 5,
	"*": 6, "/": 6, "div": 6, "mod": 6,
	"^": 7,
}

var assignOps = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "^=": true}

// Format renders an entire program, one top-level statement per line
// (blocks indent their own bodies).
func Format(program *ast.Program) string {
	lines := make([]string, 0, len(program.Statements))
	for _, s := range program.Statements {
		lines = append(lines, formatStmt(s, 0))
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatStmt(s ast.Statement, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.ImportLibrary:
		if stmt.Alias == "" {
			return prefix + "import " + stmt.Name + ";"
		}
		return prefix + "import " + stmt.Name + " as " + stmt.Alias + ";"
	case *ast.VariableDeclaration:
		if stmt.Init == nil {
			return prefix + "let " + stmt.Name + ";"
		}
		return prefix + "let " + stmt.Name + " = " + formatExpr(stmt.Init, 0) + ";"
	case *ast.FunctionDeclaration:
		params := formatParams(stmt.Params)
		return prefix + "fun " + stmt.Name + "(" + params + ") " + formatBlockBody(stmt.Body, depth)
	case *ast.ForLoop:
		head := "for (" + stmt.Var + " from " + formatExpr(stmt.Start, 0) + " to " + formatExpr(stmt.End, 0)
		if stmt.Step != nil {
			head += " step " + formatExpr(stmt.Step, 0)
		}
		head += ")"
		return prefix + head + " " + formatBody(stmt.Body, depth)
	case *ast.WhileLoop:
		return prefix + "while (" + formatExpr(stmt.Cond, 0) + ") " + formatBody(stmt.Body, depth)
	case *ast.IfElse:
		out := prefix + "if (" + formatExpr(stmt.Cond, 0) + ") " + formatBody(stmt.Then, depth)
		if stmt.Else != nil {
			out += " else " + formatBody(stmt.Else, depth)
		}
		return out
	case *ast.Continue:
		return prefix + "continue;"
	case *ast.Break:
		return prefix + "break;"
	case *ast.Return:
		if stmt.Expr == nil {
			return prefix + "return;"
		}
		return prefix + "return " + formatExpr(stmt.Expr, 0) + ";"
	case *ast.BareExpression:
		return prefix + formatExpr(stmt.Expr, 0) + ";"
	case *ast.Block:
		return formatBlockBody(stmt, depth)
	case *ast.Echo:
		return prefix + "echo " + formatExpr(stmt.Expr, 0) + ";"
	case *ast.IllegalStatement:
		return prefix + "/* illegal statement */"
	default:
		return prefix + "/* unknown statement */"
	}
}

// formatBody renders a statement used as a loop/if body: a block keeps
// its own indented lines, anything else is indented as a single line.
func formatBody(s ast.Statement, depth int) string {
	if b, ok := s.(*ast.Block); ok {
		return formatBlockBody(b, depth)
	}
	return "\n" + formatStmt(s, depth+1)
}

func formatBlockBody(s ast.Statement, depth int) string {
	block, ok := s.(*ast.Block)
	if !ok {
		return "{\n" + formatStmt(s, depth+1) + "\n" + strings.Repeat(indent, depth) + "}"
	}
	prefix := strings.Repeat(indent, depth)
	if len(block.Stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(block.Stmts))
	for i, st := range block.Stmts {
		lines[i] = formatStmt(st, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + prefix + "}"
}

func formatParams(params []ast.Expression) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatExpr(p, 0)
	}
	return strings.Join(parts, ", ")
}

func needsParens(child ast.Expression, parentOp string, isRight bool) bool {
	bin, ok := child.(*ast.BinaryOp)
	if !ok {
		return false
	}
	if assignOps[bin.Op] {
		return true
	}
	childPrec, ok := precedence[bin.Op]
	if !ok {
		return false
	}
	parentPrec := precedence[parentOp]
	if childPrec < parentPrec {
		return true
	}
	if childPrec == parentPrec && isRight && parentOp != "^" {
		return true
	}
	if childPrec == parentPrec && !isRight && parentOp == "^" {
		return true
	}
	return false
}

func formatExpr(e ast.Expression, _ int) string {
	switch expr := e.(type) {
	case *ast.BinaryOp:
		left := formatExpr(expr.Left, 0)
		if needsParens(expr.Left, expr.Op, false) {
			left = "(" + left + ")"
		}
		right := formatExpr(expr.Right, 0)
		if needsParens(expr.Right, expr.Op, true) {
			right = "(" + right + ")"
		}
		return left + " " + expr.Op + " " + right
	case *ast.PrefixOp:
		sep := ""
		if expr.Op == "not" {
			sep = " "
		}
		inner := formatExpr(expr.Expr, 0)
		if _, ok := expr.Expr.(*ast.BinaryOp); ok {
			inner = "(" + inner + ")"
		}
		return expr.Op + sep + inner
	case *ast.Call:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = formatExpr(a, 0)
		}
		return formatExpr(expr.Target, 0) + "(" + strings.Join(args, ", ") + ")"
	case *ast.IndexAccess:
		return formatExpr(expr.Target, 0) + "[" + formatExpr(expr.Index, 0) + "]"
	case *ast.NumberLiteral:
		return evaluator.FormatNumber(expr.Value)
	case *ast.BooleanLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.StringLiteral:
		return quoteString(expr.Value)
	case *ast.NilLiteral:
		return "nil"
	case *ast.ArrayLiteral:
		items := make([]string, len(expr.Items))
		for i, it := range expr.Items {
			items[i] = formatExpr(it, 0)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case *ast.ObjectLiteral:
		entries := make([]string, len(expr.Entries))
		for i, ent := range expr.Entries {
			entries[i] = formatExpr(ent.Key, 0) + ": " + formatExpr(ent.Value, 0)
		}
		return "{" + strings.Join(entries, ", ") + "}"
	case *ast.Variable:
		return expr.Name
	case *ast.Lambda:
		return "lambda(" + formatParams(expr.Params) + ") " + formatBlockBody(expr.Body, 0)
	case *ast.IllegalExpression:
		return "/* illegal expression */"
	default:
		return "/* unknown expression */"
	}
}

// quoteString re-escapes a decoded string literal the way the lexer's
// own escapes read: \n, \t, \", \\.
func quoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

// HasComments reports whether source contains a '#' line comment outside
// of a string literal — used by the CLI to decide whether to warn that
// formatting will drop comments.
func HasComments(source string) bool {
	inString := false
	var quote rune
	for i := 0; i < len(source); i++ {
		c := rune(source[i])
		if inString {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				inString = false
			}
			continue
		}
		if c == '"' || c == '\'' {
			inString = true
			quote = c
			continue
		}
		if c == '#' {
			return true
		}
	}
	return false
}
