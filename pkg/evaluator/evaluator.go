package evaluator

import (
	"math"
	"os"
	"strings"

	"github.com/thomasrohde/toylang/pkg/ast"
	"github.com/thomasrohde/toylang/pkg/diagnostics"
	"github.com/thomasrohde/toylang/pkg/parser"
)

// Flow is the evaluator's flow register: whether the next statement runs
// normally or a break/continue/return is in flight.
type Flow int

const (
	FlowSequential Flow = iota
	FlowBreak
	FlowContinue
	FlowReturn
)

func flowName(f Flow) string {
	switch f {
	case FlowBreak:
		return "break"
	case FlowContinue:
		return "continue"
	case FlowReturn:
		return "return"
	default:
		return "flow operator"
	}
}

// Evaluator walks a Program against a lexical scope chain. It is
// single-threaded and holds no suspension primitive.
type Evaluator struct {
	scope          *Scope
	root           *Scope
	flow           Flow
	returnValue    Value
	filename       string
	imports        []*ast.Program
	installPrelude func(*Scope)
}

// New constructs an evaluator with a fresh root scope, populated by
// installPrelude before any user code runs. Imported modules get their
// own evaluator built the same way, so the callback is retained.
func New(filename string, installPrelude func(*Scope)) *Evaluator {
	root := NewRoot()
	installPrelude(root)
	return &Evaluator{scope: root, root: root, filename: filename, installPrelude: installPrelude}
}

// RootScope exposes the evaluator's root frame, e.g. so a caller can read
// back an exports-style binding after Execute returns.
func (e *Evaluator) RootScope() *Scope { return e.root }

// Execute runs every top-level statement in order. The flow register must
// be Sequential after each one; anything else is MisplacedFlowOperator.
// The first error encountered (statement or misplaced-flow) is returned
// as the program's single fatal error.
func (e *Evaluator) Execute(program *ast.Program) error {
	for _, stmt := range program.Statements {
		if err := e.execStmt(stmt); err != nil {
			return err
		}
		if e.flow != FlowSequential {
			name := flowName(e.flow)
			e.flow = FlowSequential
			return ErrMisplacedFlowOperator(name)
		}
	}
	return nil
}

// execStmt dispatches one statement and wraps any error with this node's
// propagation label, producing the chain-style trace on failure.
func (e *Evaluator) execStmt(stmt ast.Statement) error {
	err := e.dispatchStmt(stmt)
	if err != nil {
		return diagnostics.Propagated(diagnostics.Label(stmt.Label(), stmt.Pos()), err)
	}
	return nil
}

func (e *Evaluator) dispatchStmt(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.ImportLibrary:
		return e.execImport(s)
	case *ast.VariableDeclaration:
		return e.execVariableDeclaration(s)
	case *ast.FunctionDeclaration:
		return e.execFunctionDeclaration(s)
	case *ast.ForLoop:
		return e.execForLoop(s)
	case *ast.WhileLoop:
		return e.execWhileLoop(s)
	case *ast.IfElse:
		return e.execIfElse(s)
	case *ast.Continue:
		e.flow = FlowContinue
		return nil
	case *ast.Break:
		e.flow = FlowBreak
		return nil
	case *ast.Return:
		return e.execReturn(s)
	case *ast.BareExpression:
		_, err := e.evalExpr(s.Expr)
		return err
	case *ast.Block:
		return e.execBlock(s)
	case *ast.Echo:
		return e.execEcho(s)
	case *ast.IllegalStatement:
		return ErrErrorNode()
	default:
		return ErrInternal("unknown statement node")
	}
}

func (e *Evaluator) execImport(s *ast.ImportLibrary) error {
	path := s.Name + ".toy"
	data, err := os.ReadFile(path)
	if err != nil {
		return ErrFileImportFailed(path)
	}
	program, diags := parser.Parse(string(data))
	if len(diags) > 0 {
		msgs := make([]string, len(diags))
		for i, d := range diags {
			msgs[i] = d.String()
		}
		return ErrImportParserException(path, msgs)
	}
	child := New(path, e.installPrelude)
	if err := child.Execute(program); err != nil {
		return ErrImportEvalException(path, err)
	}
	exported, err := child.root.Get("exports")
	if err != nil {
		return err
	}
	alias := s.Alias
	if alias == "" {
		alias = s.Name
	}
	if err := e.scope.Init(alias, exported); err != nil {
		return err
	}
	e.imports = append(e.imports, program)
	e.imports = append(e.imports, child.imports...)
	return nil
}

func (e *Evaluator) execVariableDeclaration(s *ast.VariableDeclaration) error {
	if s.Init == nil {
		return e.scope.InitDefault(s.Name)
	}
	v, err := e.evalExpr(s.Init)
	if err != nil {
		return err
	}
	return e.scope.Init(s.Name, CopyForAssignment(v))
}

func (e *Evaluator) execFunctionDeclaration(s *ast.FunctionDeclaration) error {
	fn := &Function{Params: s.Params, Body: s.Body, Closure: e.scope, Filename: e.filename}
	return e.scope.Init(s.Name, fn)
}

func asNumber(v Value) (Number, bool) {
	n, ok := v.(Number)
	return n, ok
}

func (e *Evaluator) execForLoop(s *ast.ForLoop) error {
	startV, err := e.evalExpr(s.Start)
	if err != nil {
		return err
	}
	startN, ok := asNumber(startV)
	if !ok {
		return ErrWrongType("number", startV.TypeName())
	}
	endV, err := e.evalExpr(s.End)
	if err != nil {
		return err
	}
	endN, ok := asNumber(endV)
	if !ok {
		return ErrWrongType("number", endV.TypeName())
	}
	stepN := Number(1)
	if s.Step != nil {
		stepV, err := e.evalExpr(s.Step)
		if err != nil {
			return err
		}
		stepN, ok = asNumber(stepV)
		if !ok {
			return ErrWrongType("number", stepV.TypeName())
		}
	}
	if stepN == 0 {
		return ErrZeroStep()
	}
	if startN < endN && stepN < 0 {
		return ErrNegativeStep()
	}
	if startN > endN && stepN > 0 {
		return ErrPositiveStep()
	}

	child := e.scope.NewChild()
	prev := e.scope
	e.scope = child
	defer func() { e.scope = prev }()
	if err := child.Init(s.Var, startN); err != nil {
		return err
	}

	counter := startN
	for {
		if (stepN > 0 && counter >= endN) || (stepN < 0 && counter <= endN) {
			return nil
		}
		if err := e.execStmt(s.Body); err != nil {
			return err
		}
		switch e.flow {
		case FlowBreak:
			e.flow = FlowSequential
			return nil
		case FlowReturn:
			return nil
		case FlowContinue:
			e.flow = FlowSequential
		}
		counter += stepN
		if err := child.Set(s.Var, counter); err != nil {
			return err
		}
	}
}

func (e *Evaluator) execWhileLoop(s *ast.WhileLoop) error {
	for {
		condV, err := e.evalExpr(s.Cond)
		if err != nil {
			return err
		}
		condB, ok := condV.(Boolean)
		if !ok {
			return ErrWrongType("boolean", condV.TypeName())
		}
		if !bool(condB) {
			return nil
		}
		if err := e.execStmt(s.Body); err != nil {
			return err
		}
		switch e.flow {
		case FlowBreak:
			e.flow = FlowSequential
			return nil
		case FlowReturn:
			return nil
		case FlowContinue:
			e.flow = FlowSequential
		}
	}
}

func (e *Evaluator) execIfElse(s *ast.IfElse) error {
	condV, err := e.evalExpr(s.Cond)
	if err != nil {
		return err
	}
	condB, ok := condV.(Boolean)
	if !ok {
		return ErrWrongType("boolean", condV.TypeName())
	}
	if bool(condB) {
		return e.execStmt(s.Then)
	}
	if s.Else != nil {
		return e.execStmt(s.Else)
	}
	return nil
}

func (e *Evaluator) execReturn(s *ast.Return) error {
	if s.Expr == nil {
		e.returnValue = Nil{}
	} else {
		v, err := e.evalExpr(s.Expr)
		if err != nil {
			return err
		}
		e.returnValue = CopyForAssignment(v)
	}
	e.flow = FlowReturn
	return nil
}

func (e *Evaluator) execBlock(s *ast.Block) error {
	child := e.scope.NewChild()
	prev := e.scope
	e.scope = child
	defer func() { e.scope = prev }()
	for _, stmt := range s.Stmts {
		if err := e.execStmt(stmt); err != nil {
			return err
		}
		if e.flow != FlowSequential {
			return nil
		}
	}
	return nil
}

func (e *Evaluator) execEcho(s *ast.Echo) error {
	v, err := e.evalExpr(s.Expr)
	if err != nil {
		return err
	}
	_, werr := os.Stdout.WriteString(ToString(v) + "\n")
	return werr
}

// ---- expressions ------------------------------------------------------------

func (e *Evaluator) evalExpr(expr ast.Expression) (Value, error) {
	v, err := e.dispatchExpr(expr)
	if err != nil {
		return nil, diagnostics.Propagated(diagnostics.Label(expr.Label(), expr.Pos()), err)
	}
	return v, nil
}

func (e *Evaluator) dispatchExpr(expr ast.Expression) (Value, error) {
	switch x := expr.(type) {
	case *ast.BinaryOp:
		return e.evalBinaryOp(x)
	case *ast.PrefixOp:
		return e.evalPrefixOp(x)
	case *ast.Call:
		return e.evalCall(x)
	case *ast.IndexAccess:
		return e.evalIndexAccess(x)
	case *ast.NumberLiteral:
		return Number(x.Value), nil
	case *ast.BooleanLiteral:
		return Boolean(x.Value), nil
	case *ast.StringLiteral:
		return String(x.Value), nil
	case *ast.NilLiteral:
		return Nil{}, nil
	case *ast.ArrayLiteral:
		return e.evalArrayLiteral(x)
	case *ast.ObjectLiteral:
		return e.evalObjectLiteral(x)
	case *ast.Variable:
		return e.scope.Get(x.Name)
	case *ast.Lambda:
		return &Function{Params: x.Params, Body: x.Body, Closure: e.scope, Filename: e.filename}, nil
	case *ast.IllegalExpression:
		return nil, ErrErrorNode()
	default:
		return nil, ErrInternal("unknown expression node")
	}
}

func (e *Evaluator) evalArrayLiteral(x *ast.ArrayLiteral) (Value, error) {
	items := make([]Value, 0, len(x.Items))
	for _, it := range x.Items {
		v, err := e.evalExpr(it)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return &Array{Items: items}, nil
}

func (e *Evaluator) evalObjectLiteral(x *ast.ObjectLiteral) (Value, error) {
	obj := NewObject()
	for _, entry := range x.Entries {
		keyV, err := e.evalExpr(entry.Key)
		if err != nil {
			return nil, err
		}
		valV, err := e.evalExpr(entry.Value)
		if err != nil {
			return nil, err
		}
		obj.Set(ToString(keyV), valV)
	}
	return obj, nil
}

func (e *Evaluator) evalBinaryOp(x *ast.BinaryOp) (Value, error) {
	switch x.Op {
	case "=":
		return e.evalAssign(x)
	case "+=", "-=", "*=", "/=", "^=":
		return e.evalCompoundAssign(x)
	case "or":
		return e.evalBooleanOp(x, true)
	case "and":
		return e.evalBooleanOp(x, false)
	case "==", "!=":
		l, err := e.evalExpr(x.Left)
		if err != nil {
			return nil, err
		}
		r, err := e.evalExpr(x.Right)
		if err != nil {
			return nil, err
		}
		eq := Equals(l, r)
		if x.Op == "!=" {
			eq = !eq
		}
		return Boolean(eq), nil
	case ">", "<", ">=", "<=":
		l, err := e.evalExpr(x.Left)
		if err != nil {
			return nil, err
		}
		r, err := e.evalExpr(x.Right)
		if err != nil {
			return nil, err
		}
		return evalOrdering(x.Op, l, r)
	case "+", "-", "*", "/", "div", "mod", "^":
		l, err := e.evalExpr(x.Left)
		if err != nil {
			return nil, err
		}
		r, err := e.evalExpr(x.Right)
		if err != nil {
			return nil, err
		}
		return evalArith(x.Op, l, r)
	default:
		return nil, ErrUnsupportedOperator(x.Op)
	}
}

func evalOrdering(op string, l, r Value) (Value, error) {
	switch op {
	case ">":
		ok, err := Greater(l, r)
		return Boolean(ok), err
	case "<":
		ok, err := Less(l, r)
		return Boolean(ok), err
	case ">=":
		ok, err := Less(l, r)
		if err != nil {
			return nil, err
		}
		return Boolean(!ok), nil
	case "<=":
		ok, err := Greater(l, r)
		if err != nil {
			return nil, err
		}
		return Boolean(!ok), nil
	default:
		return nil, ErrUnsupportedOperator(op)
	}
}

func (e *Evaluator) evalBooleanOp(x *ast.BinaryOp, isOr bool) (Value, error) {
	l, err := e.evalExpr(x.Left)
	if err != nil {
		return nil, err
	}
	r, err := e.evalExpr(x.Right)
	if err != nil {
		return nil, err
	}
	lb, lok := l.(Boolean)
	rb, rok := r.(Boolean)
	if !lok || !rok {
		return nil, ErrUnsupportedBinaryOp(l.TypeName(), r.TypeName())
	}
	if isOr {
		return Boolean(bool(lb) || bool(rb)), nil
	}
	return Boolean(bool(lb) && bool(rb)), nil
}

// evalArith implements §4.5's arithmetic table for the non-assignment
// binary operators. Any combination it doesn't recognize falls through
// to UnsupportedBinaryOp.
func evalArith(op string, l, r Value) (Value, error) {
	switch lt := l.(type) {
	case Number:
		rt, ok := r.(Number)
		if !ok {
			return nil, ErrUnsupportedBinaryOp(l.TypeName(), r.TypeName())
		}
		switch op {
		case "+":
			return lt + rt, nil
		case "-":
			return lt - rt, nil
		case "*":
			return lt * rt, nil
		case "/":
			return lt / rt, nil
		case "mod":
			return Number(math.Mod(float64(lt), float64(rt))), nil
		case "div":
			return Number(math.Trunc(float64(lt) / float64(rt))), nil
		case "^":
			return Number(math.Pow(float64(lt), float64(rt))), nil
		}
	case String:
		switch op {
		case "+":
			return lt + String(ToString(r)), nil
		case "*":
			rt, ok := r.(Number)
			if !ok {
				return nil, ErrUnsupportedBinaryOp(l.TypeName(), r.TypeName())
			}
			return String(strings.Repeat(string(lt), repeatCount(rt))), nil
		}
	case *Array:
		switch op {
		case "+":
			items := append(append([]Value{}, lt.Items...), r)
			return &Array{Items: items}, nil
		case "-":
			var items []Value
			for _, it := range lt.Items {
				if !Equals(it, r) {
					items = append(items, it)
				}
			}
			return &Array{Items: items}, nil
		case "*":
			rt, ok := r.(Number)
			if !ok {
				return nil, ErrUnsupportedBinaryOp(l.TypeName(), r.TypeName())
			}
			n := repeatCount(rt)
			items := make([]Value, 0, n*len(lt.Items))
			for i := 0; i < n; i++ {
				items = append(items, lt.Items...)
			}
			return &Array{Items: items}, nil
		}
	}
	return nil, ErrUnsupportedBinaryOp(l.TypeName(), r.TypeName())
}

func repeatCount(n Number) int {
	f := math.Floor(float64(n))
	if f < 0 {
		return 0
	}
	return int(f)
}

// mutateArrayInPlace implements the compound-assignment forms on the
// *same* Array handle, which is what makes mutation through one alias
// visible through every other alias of that array.
func mutateArrayInPlace(arr *Array, op string, rv Value) error {
	switch op {
	case "+":
		arr.Items = append(arr.Items, rv)
		return nil
	case "-":
		filtered := arr.Items[:0:0]
		for _, it := range arr.Items {
			if !Equals(it, rv) {
				filtered = append(filtered, it)
			}
		}
		arr.Items = filtered
		return nil
	case "*":
		rt, ok := rv.(Number)
		if !ok {
			return ErrUnsupportedBinaryOp(arr.TypeName(), rv.TypeName())
		}
		n := repeatCount(rt)
		base := append([]Value{}, arr.Items...)
		items := make([]Value, 0, n*len(base))
		for i := 0; i < n; i++ {
			items = append(items, base...)
		}
		arr.Items = items
		return nil
	default:
		return ErrUnsupportedBinaryOp(arr.TypeName(), rv.TypeName())
	}
}

func (e *Evaluator) evalPrefixOp(x *ast.PrefixOp) (Value, error) {
	v, err := e.evalExpr(x.Expr)
	if err != nil {
		return nil, err
	}
	switch x.Op {
	case "not":
		b, ok := v.(Boolean)
		if !ok {
			return nil, ErrUnsupportedPrefixOp(v.TypeName())
		}
		return Boolean(!bool(b)), nil
	case "-":
		n, ok := v.(Number)
		if !ok {
			return nil, ErrUnsupportedPrefixOp(v.TypeName())
		}
		return -n, nil
	default:
		return nil, ErrUnsupportedOperator(x.Op)
	}
}

func arrayIndex(idxV Value, size int) (int, error) {
	num, ok := idxV.(Number)
	if !ok {
		return 0, ErrWrongType("number", idxV.TypeName())
	}
	f := float64(num)
	if math.Abs(f-math.Round(f)) > 1e-9 {
		return 0, ErrNonIntegerIndex()
	}
	i := int(math.Round(f))
	if i < 0 {
		return 0, ErrNegativeArrayIndex()
	}
	if i >= size {
		return 0, ErrIndexOutOfBounds(i)
	}
	return i, nil
}

func (e *Evaluator) evalIndexAccess(x *ast.IndexAccess) (Value, error) {
	targetV, err := e.evalExpr(x.Target)
	if err != nil {
		return nil, err
	}
	switch target := targetV.(type) {
	case *Array:
		idxV, err := e.evalExpr(x.Index)
		if err != nil {
			return nil, err
		}
		idx, err := arrayIndex(idxV, len(target.Items))
		if err != nil {
			return nil, err
		}
		return target.Items[idx], nil
	case *Object:
		idxV, err := e.evalExpr(x.Index)
		if err != nil {
			return nil, err
		}
		v, _ := target.Get(ToString(idxV))
		return v, nil
	default:
		return nil, ErrWrongIndexAccessTarget(targetV.TypeName())
	}
}

// resolvePlace resolves the mutable location named by a Variable or
// IndexAccess expression, returning its current value and a setter.
func (e *Evaluator) resolvePlace(expr ast.Expression) (Value, func(Value) error, error) {
	switch t := expr.(type) {
	case *ast.Variable:
		cur, err := e.scope.Get(t.Name)
		if err != nil {
			return nil, nil, err
		}
		name := t.Name
		return cur, func(v Value) error { return e.scope.Set(name, v) }, nil
	case *ast.IndexAccess:
		targetV, err := e.evalExpr(t.Target)
		if err != nil {
			return nil, nil, err
		}
		switch target := targetV.(type) {
		case *Array:
			idxV, err := e.evalExpr(t.Index)
			if err != nil {
				return nil, nil, err
			}
			idx, err := arrayIndex(idxV, len(target.Items))
			if err != nil {
				return nil, nil, err
			}
			return target.Items[idx], func(v Value) error { target.Items[idx] = v; return nil }, nil
		case *Object:
			keyV, err := e.evalExpr(t.Index)
			if err != nil {
				return nil, nil, err
			}
			key := ToString(keyV)
			cur, _ := target.Get(key)
			return cur, func(v Value) error { target.Set(key, v); return nil }, nil
		default:
			return nil, nil, ErrWrongIndexAccessTarget(targetV.TypeName())
		}
	default:
		return nil, nil, ErrExpectedIdentifier()
	}
}

func (e *Evaluator) evalAssign(x *ast.BinaryOp) (Value, error) {
	rv, err := e.evalExpr(x.Right)
	if err != nil {
		return nil, err
	}
	rv = CopyForAssignment(rv)
	_, set, err := e.resolvePlace(x.Left)
	if err != nil {
		return nil, err
	}
	if err := set(rv); err != nil {
		return nil, err
	}
	return rv, nil
}

func (e *Evaluator) evalCompoundAssign(x *ast.BinaryOp) (Value, error) {
	rv, err := e.evalExpr(x.Right)
	if err != nil {
		return nil, err
	}
	rv = CopyForAssignment(rv)
	cur, set, err := e.resolvePlace(x.Left)
	if err != nil {
		return nil, err
	}
	baseOp := strings.TrimSuffix(x.Op, "=")
	var result Value
	if arr, ok := cur.(*Array); ok {
		if err := mutateArrayInPlace(arr, baseOp, rv); err != nil {
			return nil, err
		}
		result = arr
	} else {
		result, err = evalArith(baseOp, cur, rv)
		if err != nil {
			return nil, err
		}
	}
	if err := set(result); err != nil {
		return nil, err
	}
	return result, nil
}

// ---- calls ------------------------------------------------------------------

func (e *Evaluator) evalCall(x *ast.Call) (Value, error) {
	args := make([]Value, 0, len(x.Args))
	for _, a := range x.Args {
		v, err := e.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, CopyForAssignment(v))
	}
	target, err := e.evalExpr(x.Target)
	if err != nil {
		return nil, err
	}
	switch fn := target.(type) {
	case *Builtin:
		return fn.Fn(args)
	case *Function:
		result, err := e.callFunction(fn, args)
		if err != nil {
			return nil, diagnostics.Propagated("calling a function from file "+fn.Filename, err)
		}
		return result, nil
	default:
		return nil, ErrWrongCallTarget(target.TypeName())
	}
}

type paramInfo struct {
	name        string
	defaultExpr ast.Expression
}

// callFunction implements the function-call protocol: push a frame on
// the callee's captured scope, bind defaults, bind positional arguments,
// execute the body, and restore the caller's scope.
func (e *Evaluator) callFunction(fn *Function, args []Value) (Value, error) {
	prev := e.scope
	call := fn.Closure.NewChild()
	e.scope = call
	defer func() { e.scope = prev }()

	var params []paramInfo
	seen := map[string]bool{}
	for _, p := range fn.Params {
		switch pt := p.(type) {
		case *ast.Variable:
			if seen[pt.Name] {
				return nil, ErrDuplicateParameter(pt.Name)
			}
			seen[pt.Name] = true
			params = append(params, paramInfo{name: pt.Name})
		case *ast.BinaryOp:
			if pt.Op != "=" {
				return nil, ErrFunctionParameterWrongFormat()
			}
			v, ok := pt.Left.(*ast.Variable)
			if !ok {
				return nil, ErrFunctionParameterWrongFormat()
			}
			if seen[v.Name] {
				return nil, ErrDuplicateParameter(v.Name)
			}
			seen[v.Name] = true
			params = append(params, paramInfo{name: v.Name, defaultExpr: pt.Right})
		default:
			return nil, ErrFunctionParameterWrongFormat()
		}
	}

	withoutDefault := map[string]bool{}
	var withoutOrder []string
	for _, pi := range params {
		if pi.defaultExpr == nil {
			withoutDefault[pi.name] = true
			withoutOrder = append(withoutOrder, pi.name)
			continue
		}
		dv, err := e.evalExpr(pi.defaultExpr)
		if err != nil {
			return nil, err
		}
		if err := call.Init(pi.name, CopyForAssignment(dv)); err != nil {
			return nil, err
		}
	}

	if len(args) > len(params) {
		return nil, ErrParamsAndArgsDontMatch(len(params), len(args))
	}

	for i, av := range args {
		name := params[i].name
		if withoutDefault[name] {
			if err := call.Init(name, av); err != nil {
				return nil, err
			}
			delete(withoutDefault, name)
		} else {
			if err := call.Set(name, av); err != nil {
				return nil, err
			}
		}
	}

	if len(withoutDefault) > 0 {
		var remaining []string
		for _, n := range withoutOrder {
			if withoutDefault[n] {
				remaining = append(remaining, n)
			}
		}
		return nil, ErrUnsetParameters(remaining)
	}

	if err := e.execStmt(fn.Body); err != nil {
		return nil, err
	}

	switch e.flow {
	case FlowBreak:
		e.flow = FlowSequential
		return nil, ErrMisplacedFlowOperator("break")
	case FlowContinue:
		e.flow = FlowSequential
		return nil, ErrMisplacedFlowOperator("continue")
	}

	var result Value = Nil{}
	if e.flow == FlowReturn {
		result = e.returnValue
		e.returnValue = nil
	}
	e.flow = FlowSequential
	return result, nil
}
