// Package evaluator walks a parsed Program, carrying the value model,
// the lexical scope chain, and the flow-register control-flow mechanism
// described for Toylang's tree-walking execution.
package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/thomasrohde/toylang/pkg/ast"
)

// Value is the sealed tagged union of every runtime value. Nil, Boolean,
// Number, and String are value kinds: Go already copies them on ordinary
// assignment, which is exactly the semantics §4.5 requires. Array, Object,
// Function, and Builtin are reference kinds, represented as pointers so
// that every binding that shares one shares the same underlying storage.
type Value interface {
	valueNode()
	TypeName() string
}

type Nil struct{}

type Boolean bool

type Number float64

type String string

// Array is a shared mutable ordered sequence.
type Array struct {
	Items []Value
}

// KeyValue is one entry of an Object, kept in insertion order so that
// keys(o)/values(o) are deterministic, mirroring how ordered-map-shaped
// records are built elsewhere in this pipeline.
type KeyValue struct {
	Key   string
	Value Value
}

// Object is a shared mutable string-keyed mapping. Equality is by
// identity, never structural (see DESIGN.md's Open Question resolution).
type Object struct {
	Pairs []KeyValue
	index map[string]int
}

// NewObject constructs an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Get returns the value bound to key, or (Nil{}, false) if absent.
func (o *Object) Get(key string) (Value, bool) {
	if i, ok := o.index[key]; ok {
		return o.Pairs[i].Value, true
	}
	return Nil{}, false
}

// Set inserts or overwrites key. Later duplicate inserts overwrite
// earlier ones while keeping the original insertion position.
func (o *Object) Set(key string, value Value) {
	if i, ok := o.index[key]; ok {
		o.Pairs[i].Value = value
		return
	}
	o.index[key] = len(o.Pairs)
	o.Pairs = append(o.Pairs, KeyValue{Key: key, Value: value})
}

// Function is a closure: its params and body are referenced, not copied,
// so the module that defines it must outlive every call through it.
type Function struct {
	Params   []ast.Expression
	Body     ast.Statement
	Closure  *Scope
	Filename string
}

// Builtin is a native function accepting the evaluated argument vector.
type Builtin struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (Nil) valueNode()      {}
func (Boolean) valueNode()  {}
func (Number) valueNode()   {}
func (String) valueNode()   {}
func (*Array) valueNode()   {}
func (*Object) valueNode()  {}
func (*Function) valueNode() {}
func (*Builtin) valueNode() {}

func (Nil) TypeName() string      { return "nil" }
func (Boolean) TypeName() string  { return "boolean" }
func (Number) TypeName() string   { return "number" }
func (String) TypeName() string   { return "string" }
func (*Array) TypeName() string   { return "array" }
func (*Object) TypeName() string  { return "object" }
func (*Function) TypeName() string { return "function" }
func (*Builtin) TypeName() string { return "builtin" }

// CopyForAssignment is the rule enforced at every bind, rebind, and
// argument pass. For the value kinds it is the identity function because
// Go already copies them on assignment; for the reference kinds it
// returns the same shared handle, which is the whole point.
func CopyForAssignment(v Value) Value {
	return v
}

// ToString renders a value the way print/println/echo/string-concat do.
func ToString(v Value) string {
	switch t := v.(type) {
	case Nil:
		return "nil"
	case Boolean:
		if bool(t) {
			return "true"
		}
		return "false"
	case Number:
		return FormatNumber(float64(t))
	case String:
		return string(t)
	case *Array:
		parts := make([]string, len(t.Items))
		for i, item := range t.Items {
			parts[i] = ToString(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Object:
		parts := make([]string, len(t.Pairs))
		for i, kv := range t.Pairs {
			parts[i] = kv.Key + ": " + ToString(kv.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Function:
		names := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			names = append(names, paramName(p))
		}
		return "function (" + strings.Join(names, ", ") + ")"
	case *Builtin:
		return "builtin " + t.Name
	default:
		return "?"
	}
}

func paramName(e ast.Expression) string {
	switch p := e.(type) {
	case *ast.Variable:
		return p.Name
	case *ast.BinaryOp:
		if v, ok := p.Left.(*ast.Variable); ok {
			return v.Name
		}
	}
	return "?"
}

// FormatNumber renders a float the way Toylang's numeric literals and
// to_string() conversions do: integral values print without a decimal
// point, everything else prints its shortest round-tripping form.
func FormatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equals implements §4.5's equality table: Nil==Nil always; Boolean,
// Number, String by value; Array element-wise with matching length;
// Object/Function/Builtin by identity; mismatched dynamic types are
// never equal except Nil-against-Nil.
func Equals(a, b Value) bool {
	switch x := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x == y
	case Number:
		y, ok := b.(Number)
		return ok && x == y
	case String:
		y, ok := b.(String)
		return ok && x == y
	case *Array:
		y, ok := b.(*Array)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equals(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	case *Function:
		y, ok := b.(*Function)
		return ok && x == y
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x == y
	default:
		return false
	}
}

// Less/Greater implement §4.5's ordering table: Number×Number numeric,
// String×String lexicographic, everything else unsupported.
func Less(a, b Value) (bool, error) {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false, ErrUnsupportedBinaryOp(a.TypeName(), b.TypeName())
		}
		return x < y, nil
	case String:
		y, ok := b.(String)
		if !ok {
			return false, ErrUnsupportedBinaryOp(a.TypeName(), b.TypeName())
		}
		return x < y, nil
	default:
		return false, ErrUnsupportedBinaryOp(a.TypeName(), b.TypeName())
	}
}

func Greater(a, b Value) (bool, error) {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false, ErrUnsupportedBinaryOp(a.TypeName(), b.TypeName())
		}
		return x > y, nil
	case String:
		y, ok := b.(String)
		if !ok {
			return false, ErrUnsupportedBinaryOp(a.TypeName(), b.TypeName())
		}
		return x > y, nil
	default:
		return false, ErrUnsupportedBinaryOp(a.TypeName(), b.TypeName())
	}
}
