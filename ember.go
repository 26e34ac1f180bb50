// Package ember wires the compiler and VM together behind the driver
// contract spec.md §6 describes: compile source to a Function, run it
// on a fresh VM, and report which of the three outcomes occurred.
package ember

import (
	"io"
	"os"

	"github.com/emberlang/ember/internal/compiler"
	"github.com/emberlang/ember/internal/diag"
	"github.com/emberlang/ember/internal/stdlib"
	"github.com/emberlang/ember/internal/vm"
)

// Result is the three-way outcome of Interpret, per spec.md §7.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

// Interpret compiles and runs src against a fresh VM, writing `print`
// output to stdout and diagnostics to stderr. Use InterpretIn for a
// long-lived VM (the REPL) and control over the streams.
func Interpret(src string) Result {
	return InterpretIn(NewVM(), src, os.Stdout, os.Stderr)
}

// InterpretIn compiles and runs src against an existing VM instance,
// so a REPL session can keep its globals and native-library state
// across inputs. Compile errors never touch the VM; a runtime error
// leaves the VM's globals intact but resets its stack, call frames,
// and open-upvalue list (vm.VM.Run does this internally before
// returning), matching spec.md §7's "a REPL session continues after
// any error by resetting stack and frame state".
func InterpretIn(v *vm.VM, src string, stdout, stderr io.Writer) Result {
	v.SetOutput(stdout, stderr)
	fn, ok := compiler.CompileTo(src, stderr)
	if !ok {
		return ResultCompileError
	}
	if err := v.Run(fn); err != nil {
		diag.RuntimeError(stderr, err)
		return ResultRuntimeError
	}
	return ResultOK
}

// NewVM returns a VM with every always-on builtin and importable
// native library registered, ready for Interpret/InterpretIn.
func NewVM() *vm.VM {
	v := vm.New()
	stdlib.Install(v)
	return v
}
