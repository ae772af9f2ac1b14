// Package prelude installs Toylang's builtin constants and functions into
// a fresh root scope. It depends on pkg/evaluator for the value model but
// is never imported back by it — evaluator.New takes an installer
// callback so an import's child evaluator gets the same prelude without
// the two packages importing each other.
package prelude

import (
	"bufio"
	"math"
	"math/rand"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/thomasrohde/toylang/pkg/evaluator"
)

var stdin = bufio.NewReader(os.Stdin)

// Install binds every prelude entry into root. Evaluator.New calls this
// on every fresh root scope, including the ones built for imported files.
func Install(root *evaluator.Scope) {
	root.Init("PI", evaluator.Number(3.14159265))
	root.Init("EXP", evaluator.Number(2.718))
	root.Init("exports", evaluator.NewObject())

	for name, fn := range builtins {
		root.Init(name, &evaluator.Builtin{Name: name, Fn: fn})
	}
}

type builtinFn = func(args []evaluator.Value) (evaluator.Value, error)

var builtins = map[string]builtinFn{
	"print":     biPrint,
	"println":   biPrintln,
	"input":     biInput,
	"size":      biSize,
	"chars":     biChars,
	"abs":       biAbs,
	"round":     biRound,
	"trunc":     biTrunc,
	"all":       biAll,
	"any":       biAny,
	"array":     biArray,
	"bool":      biBool,
	"number":    biNumber,
	"str":       biStr,
	"typeof":    biTypeof,
	"max":       biMax,
	"min":       biMin,
	"sum":       biSum,
	"slice":     biSlice,
	"reversed":  biReversed,
	"range":     biRange,
	"read":      biRead,
	"write":     biWrite,
	"keys":      biKeys,
	"values":    biValues,
	"wait":      biWait,
	"cls":       biCls,
	"rand":      biRand,
	"randint":   biRandint,
}

func argsSize(args []evaluator.Value, n int) error {
	if len(args) != n {
		return evaluator.ErrParamsAndArgsDontMatch(n, len(args))
	}
	return nil
}

func wantNumber(v evaluator.Value) (evaluator.Number, error) {
	n, ok := v.(evaluator.Number)
	if !ok {
		return 0, evaluator.ErrWrongType("number", v.TypeName())
	}
	return n, nil
}

func wantString(v evaluator.Value) (evaluator.String, error) {
	s, ok := v.(evaluator.String)
	if !ok {
		return "", evaluator.ErrWrongType("string", v.TypeName())
	}
	return s, nil
}

func wantArray(v evaluator.Value) (*evaluator.Array, error) {
	a, ok := v.(*evaluator.Array)
	if !ok {
		return nil, evaluator.ErrWrongType("array", v.TypeName())
	}
	return a, nil
}

func wantObject(v evaluator.Value) (*evaluator.Object, error) {
	o, ok := v.(*evaluator.Object)
	if !ok {
		return nil, evaluator.ErrWrongType("object", v.TypeName())
	}
	return o, nil
}

func writeAll(args []evaluator.Value) {
	for _, a := range args {
		os.Stdout.WriteString(evaluator.ToString(a))
	}
}

func biPrint(args []evaluator.Value) (evaluator.Value, error) {
	writeAll(args)
	return evaluator.Nil{}, nil
}

func biPrintln(args []evaluator.Value) (evaluator.Value, error) {
	writeAll(args)
	os.Stdout.WriteString("\n")
	return evaluator.Nil{}, nil
}

func biInput(args []evaluator.Value) (evaluator.Value, error) {
	writeAll(args)
	line, _ := stdin.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	return evaluator.String(line), nil
}

func biSize(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	a, err := wantArray(args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.Number(len(a.Items)), nil
}

func biChars(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	s, err := wantString(args[0])
	if err != nil {
		return nil, err
	}
	runes := []rune(string(s))
	items := make([]evaluator.Value, len(runes))
	for i, r := range runes {
		items[i] = evaluator.String(string(r))
	}
	return &evaluator.Array{Items: items}, nil
}

func biAbs(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	n, err := wantNumber(args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.Number(math.Abs(float64(n))), nil
}

func biRound(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	n, err := wantNumber(args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.Number(math.Round(float64(n))), nil
}

func biTrunc(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	n, err := wantNumber(args[0])
	if err != nil {
		return nil, err
	}
	return evaluator.Number(math.Trunc(float64(n))), nil
}

func biAll(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	a, err := wantArray(args[0])
	if err != nil {
		return nil, err
	}
	for _, each := range a.Items {
		b, ok := each.(evaluator.Boolean)
		if !ok {
			return nil, evaluator.ErrWrongType("boolean", each.TypeName())
		}
		if !bool(b) {
			return evaluator.Boolean(false), nil
		}
	}
	return evaluator.Boolean(true), nil
}

func biAny(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	a, err := wantArray(args[0])
	if err != nil {
		return nil, err
	}
	for _, each := range a.Items {
		b, ok := each.(evaluator.Boolean)
		if !ok {
			return nil, evaluator.ErrWrongType("boolean", each.TypeName())
		}
		if bool(b) {
			return evaluator.Boolean(true), nil
		}
	}
	return evaluator.Boolean(false), nil
}

func biArray(args []evaluator.Value) (evaluator.Value, error) {
	items := append([]evaluator.Value{}, args...)
	return &evaluator.Array{Items: items}, nil
}

func biBool(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case evaluator.Nil:
		return evaluator.Boolean(false), nil
	case evaluator.Boolean:
		return v, nil
	case evaluator.Number:
		return evaluator.Boolean(v == 1), nil
	case evaluator.String:
		return evaluator.Boolean(len(v) != 0), nil
	case *evaluator.Array:
		return evaluator.Boolean(len(v.Items) != 0), nil
	default:
		return evaluator.Boolean(true), nil
	}
}

func biNumber(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case evaluator.Boolean:
		if v {
			return evaluator.Number(1), nil
		}
		return evaluator.Number(0), nil
	case evaluator.Number:
		return v, nil
	case evaluator.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return evaluator.Nil{}, nil
		}
		return evaluator.Number(f), nil
	default:
		return evaluator.Nil{}, nil
	}
}

func biStr(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	return evaluator.String(evaluator.ToString(args[0])), nil
}

func biTypeof(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	return evaluator.String(args[0].TypeName()), nil
}

func biMax(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	a, err := wantArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(a.Items) == 0 {
		return evaluator.Nil{}, nil
	}
	best := a.Items[0]
	for _, each := range a.Items {
		greater, err := evaluator.Greater(each, best)
		if err != nil {
			return nil, err
		}
		if greater {
			best = each
		}
	}
	return best, nil
}

func biMin(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	a, err := wantArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(a.Items) == 0 {
		return evaluator.Nil{}, nil
	}
	best := a.Items[0]
	for _, each := range a.Items {
		less, err := evaluator.Less(each, best)
		if err != nil {
			return nil, err
		}
		if less {
			best = each
		}
	}
	return best, nil
}

func biSum(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	a, err := wantArray(args[0])
	if err != nil {
		return nil, err
	}
	if len(a.Items) == 0 {
		return evaluator.Nil{}, nil
	}
	total, ok := a.Items[0].(evaluator.Number)
	if !ok {
		return nil, evaluator.ErrWrongType("number", a.Items[0].TypeName())
	}
	for _, each := range a.Items[1:] {
		n, ok := each.(evaluator.Number)
		if !ok {
			return nil, evaluator.ErrWrongType("number", each.TypeName())
		}
		total += n
	}
	return total, nil
}

// biSlice is half-open and clamped to the array's size, matching the
// original's clamping loop; a negative start returns Nil rather than
// raising, which is the one case the original leaves unchecked.
func biSlice(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 3); err != nil {
		return nil, err
	}
	a, err := wantArray(args[0])
	if err != nil {
		return nil, err
	}
	startN, err := wantNumber(args[1])
	if err != nil {
		return nil, err
	}
	if startN < 0 {
		return evaluator.Nil{}, nil
	}
	endN, err := wantNumber(args[2])
	if err != nil {
		return nil, err
	}
	start := int(startN)
	end := int(endN)
	if end > len(a.Items) {
		end = len(a.Items)
	}
	var items []evaluator.Value
	for i := start; i < end; i++ {
		items = append(items, a.Items[i])
	}
	return &evaluator.Array{Items: items}, nil
}

func biReversed(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	a, err := wantArray(args[0])
	if err != nil {
		return nil, err
	}
	items := make([]evaluator.Value, len(a.Items))
	for i, v := range a.Items {
		items[len(a.Items)-i-1] = v
	}
	return &evaluator.Array{Items: items}, nil
}

func biRange(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 3); err != nil {
		return nil, err
	}
	start, err := wantNumber(args[0])
	if err != nil {
		return nil, err
	}
	end, err := wantNumber(args[1])
	if err != nil {
		return nil, err
	}
	step, err := wantNumber(args[2])
	if err != nil {
		return nil, err
	}
	if (start < end && step <= 0) || (start > end && step >= 0) || step == 0 {
		return evaluator.Nil{}, nil
	}
	var items []evaluator.Value
	for i := start; (step > 0 && i < end) || (step < 0 && i > end); i += step {
		items = append(items, i)
	}
	return &evaluator.Array{Items: items}, nil
}

func biRead(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	name, err := wantString(args[0])
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(string(name))
	if err != nil {
		return evaluator.Nil{}, nil
	}
	return evaluator.String(string(data)), nil
}

func biWrite(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 2); err != nil {
		return nil, err
	}
	name, err := wantString(args[0])
	if err != nil {
		return nil, err
	}
	content := evaluator.ToString(args[1])
	if err := os.WriteFile(string(name), []byte(content), 0o644); err != nil {
		return evaluator.Boolean(false), nil
	}
	return evaluator.Boolean(true), nil
}

func biKeys(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	o, err := wantObject(args[0])
	if err != nil {
		return nil, err
	}
	items := make([]evaluator.Value, len(o.Pairs))
	for i, kv := range o.Pairs {
		items[i] = evaluator.String(kv.Key)
	}
	return &evaluator.Array{Items: items}, nil
}

func biValues(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	o, err := wantObject(args[0])
	if err != nil {
		return nil, err
	}
	items := make([]evaluator.Value, len(o.Pairs))
	for i, kv := range o.Pairs {
		items[i] = kv.Value
	}
	return &evaluator.Array{Items: items}, nil
}

func biWait(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 1); err != nil {
		return nil, err
	}
	ms, err := wantNumber(args[0])
	if err != nil {
		return nil, err
	}
	time.Sleep(time.Duration(float64(ms)) * time.Millisecond)
	return evaluator.Nil{}, nil
}

// biCls clears the terminal the same way a CLI would: invoke the
// platform's own clear command rather than hand-rolling escape codes.
func biCls(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 0); err != nil {
		return nil, err
	}
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	} else {
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	cmd.Run()
	return evaluator.Nil{}, nil
}

func biRand(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 2); err != nil {
		return nil, err
	}
	lo, err := wantNumber(args[0])
	if err != nil {
		return nil, err
	}
	hi, err := wantNumber(args[1])
	if err != nil {
		return nil, err
	}
	return evaluator.Number(float64(lo) + rand.Float64()*float64(hi-lo)), nil
}

func biRandint(args []evaluator.Value) (evaluator.Value, error) {
	if err := argsSize(args, 2); err != nil {
		return nil, err
	}
	lo, err := wantNumber(args[0])
	if err != nil {
		return nil, err
	}
	hi, err := wantNumber(args[1])
	if err != nil {
		return nil, err
	}
	span := int64(hi) - int64(lo)
	if span <= 0 {
		return evaluator.Number(lo), nil
	}
	return evaluator.Number(int64(lo) + rand.Int63n(span+1)), nil
}
