// Package value defines ember's runtime value representation: the
// tagged Value union, the heap object kinds it can hold, and the
// Chunk that holds compiled bytecode. It has no dependency on the
// compiler or VM packages so that both can import it without a cycle.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Kind discriminates the tagged union Value.
type Kind int

// The complete set of runtime value kinds, per SPEC_FULL.md §3.
const (
	KindNumber Kind = iota
	KindBool
	KindNull
	KindString
	KindFunction
	KindNative
	KindClosure
	KindUpvalue
	KindClass
	KindInstance
	KindBoundMethod
	KindArray
	KindFile
	KindRawHandle
)

// Value is ember's single runtime value representation: a tagged sum
// over the primitive and heap-object kinds. Numbers, bools and Null
// are stored inline; everything else is a pointer to a heap object.
// Equality is structural for primitives and identity (pointer
// equality through Obj) for heap objects, matching SPEC_FULL.md §3.
type Value struct {
	kind   Kind
	number float64
	boolean bool
	str    string
	obj    interface{}
}

// Number constructs a numeric Value.
func Number(n float64) Value { return Value{kind: KindNumber, number: n} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Null is the sole null Value.
var Null = Value{kind: KindNull}

// Str constructs a string Value.
func Str(s string) Value { return Value{kind: KindString, str: s} }

// Obj wraps a heap object (one of *Function, *NativeFunction, *Closure,
// *Upvalue, *Class, *Instance, *BoundMethod, *Array, *File, RawHandle)
// in a Value.
func Obj(kind Kind, o interface{}) Value { return Value{kind: kind, obj: o} }

// Kind reports the Value's discriminant.
func (v Value) Kind() Kind { return v.kind }

// AsNumber returns the numeric payload; only valid when Kind() == KindNumber.
func (v Value) AsNumber() float64 { return v.number }

// AsBool returns the boolean payload; only valid when Kind() == KindBool.
func (v Value) AsBool() bool { return v.boolean }

// AsString returns the string payload; only valid when Kind() == KindString.
func (v Value) AsString() string { return v.str }

// AsObj returns the heap-object payload for any non-primitive kind.
func (v Value) AsObj() interface{} { return v.obj }

// IsFalsy implements the falsiness rule of SPEC_FULL.md §3: Null and
// Bool(false) are falsy, everything else (including 0, "", an empty
// array) is truthy.
func (v Value) IsFalsy() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return !v.boolean
	default:
		return false
	}
}

// Equal implements Value equality: structural for primitives, identity
// for heap objects.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNumber:
		return a.number == b.number
	case KindBool:
		return a.boolean == b.boolean
	case KindNull:
		return true
	case KindString:
		return a.str == b.str
	default:
		return a.obj == b.obj
	}
}

// TypeName returns a short, user-facing name for a Value's kind, used
// in runtime error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	case KindNative:
		return "native function"
	case KindClosure:
		return "function"
	case KindUpvalue:
		return "upvalue"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindBoundMethod:
		return "bound method"
	case KindArray:
		return "array"
	case KindFile:
		return "file"
	default:
		return "value"
	}
}

// FormatNumber renders a float64 using shortest round-trip formatting
// and then trims a trailing ".0"-style tail, per DESIGN.md's
// resolution of the Add-coercion Open Question in spec.md §9: format
// with Go's shortest round-trip algorithm, then strip trailing zeros
// and an unmatched trailing '.'.
func FormatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// Humanize renders a number the way the string() native formats it for
// human consumption (grouped thousands, at most four decimals with
// trailing zeros trimmed), backed by go-humanize rather than a
// hand-rolled digit grouping loop.
func Humanize(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return humanize.Comma(int64(n))
	}
	s := humanize.FormatFloat("#,###.####", n)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// String renders a Value for the `print` statement and for string
// coercion inside Add.
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return FormatNumber(v.number)
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindArray:
		arr := v.obj.(*Array)
		parts := make([]string, len(arr.Elements))
		for i, e := range arr.Elements {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindFunction:
		fn := v.obj.(*Function)
		if fn.Name == "" {
			return "<script>"
		}
		return fmt.Sprintf("<func %s>", fn.Name)
	case KindClosure:
		return v.obj.(*Closure).Function.String()
	case KindNative:
		return fmt.Sprintf("<native %s>", v.obj.(*NativeFunction).Name)
	case KindClass:
		return fmt.Sprintf("<class %s>", v.obj.(*Class).Name)
	case KindInstance:
		inst := v.obj.(*Instance)
		return fmt.Sprintf("<%s instance>", inst.Class.Name)
	case KindBoundMethod:
		bm := v.obj.(*BoundMethod)
		return bm.Method.Function.String()
	case KindFile:
		return fmt.Sprintf("<file %s>", v.obj.(*File).Path)
	default:
		return "<value>"
	}
}
