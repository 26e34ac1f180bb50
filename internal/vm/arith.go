package vm

import "github.com/emberlang/ember/internal/value"

// add implements OpAdd's polymorphic behavior: number+number adds,
// string+string concatenates, and a string left operand with a number
// right operand coerces the number to its printed form and
// concatenates (e.g. `"count: " + 5`), per spec.md's resolution of the
// Add-coercion Open Question. The reverse order (number + string,
// e.g. `1 + "a"`) is deliberately NOT coercible — spec.md §8 names
// `print 1 + "a";` itself as an expected runtime-error scenario, which
// only holds if the coercion is one-directional.
func (vm *VM) add() error {
	b := vm.peek(0)
	a := vm.peek(1)

	switch {
	case a.Kind() == value.KindNumber && b.Kind() == value.KindNumber:
		vm.pop()
		vm.pop()
		vm.push(value.Number(a.AsNumber() + b.AsNumber()))
		return nil
	case a.Kind() == value.KindString && b.Kind() == value.KindString:
		vm.pop()
		vm.pop()
		vm.push(value.Str(a.AsString() + b.AsString()))
		return nil
	case a.Kind() == value.KindString && b.Kind() == value.KindNumber:
		vm.pop()
		vm.pop()
		vm.push(value.Str(a.AsString() + value.FormatNumber(b.AsNumber())))
		return nil
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) numericBinary(op func(a, b float64) float64) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.Kind() != value.KindNumber || b.Kind() != value.KindNumber {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(op(a.AsNumber(), b.AsNumber())))
	return nil
}

func (vm *VM) comparison(op func(a, b float64) bool) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.Kind() != value.KindNumber || b.Kind() != value.KindNumber {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Bool(op(a.AsNumber(), b.AsNumber())))
	return nil
}

// bitwise coerces both operands to int64 by truncation and applies op,
// used by OpBwAnd/OpBwOr/OpBwXor.
func (vm *VM) bitwise(op func(a, b int64) int64) error {
	b := vm.peek(0)
	a := vm.peek(1)
	if a.Kind() != value.KindNumber || b.Kind() != value.KindNumber {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(value.Number(float64(op(int64(a.AsNumber()), int64(b.AsNumber())))))
	return nil
}
