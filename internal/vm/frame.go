package vm

import "github.com/emberlang/ember/internal/value"

// CallFrame is one activation record on the VM's call stack: the
// Closure being executed, its instruction pointer into that Closure's
// Chunk, and the value-stack offset at which its locals begin (slot 0
// is always `this` for methods, the function itself otherwise).
type CallFrame struct {
	Closure *value.Closure
	IP      int
	Base    int
}
