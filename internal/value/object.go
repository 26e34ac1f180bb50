package value

import (
	"bufio"
	"os"
)

// Function owns a Chunk, an arity, an upvalue count, and a display
// name (empty for the top-level script). Built by the compiler and
// immutable once end_compiler runs; all calls at runtime go through a
// Closure wrapping a Function, never the Function directly.
type Function struct {
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
}

func (f *Function) String() string {
	if f.Name == "" {
		return "<script>"
	}
	return "<func " + f.Name + ">"
}

// NativeFn is the calling convention for host-provided functions: given
// the arguments as a slice (its length is the argument count), return a
// result Value or an error. Errors are rendered as a diagnostic by the caller and
// the call evaluates to Null, per SPEC_FULL.md §6.
type NativeFn func(args []Value) (Value, error)

// NativeFunction adapts a host Go function to ember's calling
// convention so it can be stored in a Value and invoked via OpCall
// like any other callable.
type NativeFunction struct {
	Name string
	Fn   NativeFn
}

// Upvalue has a dual nature: while the captured local is still live on
// the VM stack, it points into that stack slot (Open() is true); once
// closed, Location aliases Closed and the stack pointer is abandoned.
// This transition is one-way. Open upvalues are threaded on the VM's
// intrusive list via Next, ordered by descending stack address.
type Upvalue struct {
	Location *Value // &stack[i] while open, or &Closed once closed
	Closed   Value
	Next     *Upvalue

	// StackIndex is the stack slot this upvalue captured, kept only so
	// the VM can maintain its open-upvalue list in descending-address
	// order without resorting to unsafe.Pointer arithmetic: since the
	// VM's value stack is a fixed array that is never reallocated,
	// slot index is an order-preserving proxy for stack address.
	StackIndex int
}

// Open reports whether this upvalue still points into the live stack.
func (u *Upvalue) Open() bool { return u.Location != &u.Closed }

// Closure is a Function paired with the upvalues it captured at
// creation time, sized to Function.UpvalueCount.
type Closure struct {
	Function *Function
	Upvalues []*Upvalue
}

// Class has a name and a method table (name -> Closure). On
// inheritance the subclass's table starts as a full copy of the
// superclass's table and is then overlaid with its own methods; no
// runtime link to the superclass survives INHERIT, per spec.md §3.
type Class struct {
	Name    string
	Methods map[string]*Closure
}

// NewClass creates an empty class ready to receive methods.
func NewClass(name string) *Class {
	return &Class{Name: name, Methods: make(map[string]*Closure)}
}

// Instance references its Class and holds dynamically added fields.
// Field lookup precedes method lookup (spec.md §4.5 GetProperty).
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// NewInstance allocates an instance of class c with no fields set.
func NewInstance(c *Class) *Instance {
	return &Instance{Class: c, Fields: make(map[string]Value)}
}

// BoundMethod pairs an Instance receiver with the Closure resolved
// against it, produced by property access that finds a method.
type BoundMethod struct {
	Receiver Value
	Method   *Closure
}

// Array is a dynamic, 0-indexed, contiguous sequence of Values.
type Array struct {
	Elements []Value
}

// File wraps an open OS file handle as a heap Value, used only by the
// stdio native library's open/readLine/write/close functions.
type File struct {
	Path   string
	Handle *os.File
	Reader *bufio.Reader
}

// RawHandle is an opaque constant Value used only by native I/O code
// that needs to stash a non-Value payload (e.g. a raw *os.File) inside
// the constant pool or globals without going through the Value union's
// other kinds.
type RawHandle struct {
	Payload interface{}
}
