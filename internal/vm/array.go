package vm

import (
	"math"

	"github.com/emberlang/ember/internal/value"
)

func (vm *VM) arrBuild(count int) {
	elements := make([]value.Value, count)
	for i := count - 1; i >= 0; i-- {
		elements[i] = vm.pop()
	}
	vm.push(value.Obj(value.KindArray, &value.Array{Elements: elements}))
}

// arrIndex implements `array[index]`. A non-integer, negative, or
// too-large index is a single "out of bounds" error rather than
// distinguishing "not an integer" from "out of range", matching
// spec.md §3's description of array indexing as simply bounds-checked.
func (vm *VM) arrIndex() error {
	idxVal := vm.pop()
	arrVal := vm.pop()
	if arrVal.Kind() != value.KindArray {
		return vm.runtimeError("Can only index arrays.")
	}
	if idxVal.Kind() != value.KindNumber {
		return vm.runtimeError("Array index must be a number.")
	}
	arr := arrVal.AsObj().(*value.Array)
	n := idxVal.AsNumber()
	if n != math.Trunc(n) || n < 0 || n >= float64(len(arr.Elements)) {
		return vm.runtimeError("Array index out of bounds.")
	}
	idx := int(n)
	vm.push(arr.Elements[idx])
	return nil
}

func (vm *VM) arrStore() error {
	val := vm.pop()
	idxVal := vm.pop()
	arrVal := vm.pop()
	if arrVal.Kind() != value.KindArray {
		return vm.runtimeError("Can only index arrays.")
	}
	if idxVal.Kind() != value.KindNumber {
		return vm.runtimeError("Array index must be a number.")
	}
	arr := arrVal.AsObj().(*value.Array)
	n := idxVal.AsNumber()
	if n != math.Trunc(n) || n < 0 || n >= float64(len(arr.Elements)) {
		return vm.runtimeError("Array index out of bounds.")
	}
	idx := int(n)
	arr.Elements[idx] = val
	vm.push(val)
	return nil
}
