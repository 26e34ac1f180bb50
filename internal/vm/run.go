package vm

import (
	"fmt"

	"github.com/emberlang/ember/internal/value"
)

// Run executes fn (the top-level script function) to completion,
// printing via the VM's configured stdout. It returns a *RuntimeError
// if the script raised one; any other error is a defect in the VM
// itself rather than the running program.
//
// On any error, Run resets vm.sp, vm.frames, and vm.openUpvalues back
// to empty before returning, per spec.md §7: a caller that reuses this
// VM for a subsequent script (e.g. a REPL) sees a clean slate rather
// than whatever partial call state was live when the fault hit.
func (vm *VM) Run(fn *value.Function) error {
	closure := &value.Closure{Function: fn, Upvalues: make([]*value.Upvalue, fn.UpvalueCount)}
	vm.push(value.Obj(value.KindClosure, closure))
	if err := vm.callClosure(closure, 0); err != nil {
		vm.reset()
		return err
	}
	if err := vm.dispatch(); err != nil {
		vm.reset()
		return err
	}
	return nil
}

// reset clears all call/stack state, leaving globals untouched so a
// VM can be safely reused to interpret another script after a fault.
func (vm *VM) reset() {
	vm.sp = 0
	vm.frames = vm.frames[:0]
	vm.openUpvalues = nil
}

func (vm *VM) dispatch() error {
	for {
		f := vm.frame()
		instruction := value.OpCode(vm.readByte())

		switch instruction {
		case value.OpConstant:
			vm.push(vm.readConstant())

		case value.OpNull:
			vm.push(value.Null)
		case value.OpTrue:
			vm.push(value.Bool(true))
		case value.OpFalse:
			vm.push(value.Bool(false))
		case value.OpPop:
			vm.pop()

		case value.OpGetLocal:
			slot := int(vm.readByte())
			vm.push(vm.stack[f.Base+slot])
		case value.OpSetLocal:
			slot := int(vm.readByte())
			vm.stack[f.Base+slot] = vm.peek(0)

		case value.OpGetGlobal:
			name := vm.readString()
			v, ok := vm.globals[name]
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name)
			}
			vm.push(v)
		case value.OpDefineGlobal:
			name := vm.readString()
			vm.globals[name] = vm.peek(0)
			vm.pop()
		case value.OpSetGlobal:
			name := vm.readString()
			if _, ok := vm.globals[name]; !ok {
				return vm.runtimeError("Undefined variable '%s'.", name)
			}
			vm.globals[name] = vm.peek(0)

		case value.OpGetUpvalue:
			slot := int(vm.readByte())
			vm.push(*f.Closure.Upvalues[slot].Location)
		case value.OpSetUpvalue:
			slot := int(vm.readByte())
			*f.Closure.Upvalues[slot].Location = vm.peek(0)

		case value.OpGetProperty:
			if vm.peek(0).Kind() != value.KindInstance {
				return vm.runtimeError("Only instances have properties.")
			}
			instance := vm.peek(0).AsObj().(*value.Instance)
			name := vm.readString()
			if field, ok := instance.Fields[name]; ok {
				vm.pop()
				vm.push(field)
				break
			}
			if err := vm.bindMethod(instance.Class, name); err != nil {
				return err
			}
		case value.OpSetProperty:
			if vm.peek(1).Kind() != value.KindInstance {
				return vm.runtimeError("Only instances have properties.")
			}
			instance := vm.peek(1).AsObj().(*value.Instance)
			name := vm.readString()
			val := vm.pop()
			instance.Fields[name] = val
			vm.pop()
			vm.push(val)
		case value.OpGetSuper:
			name := vm.readString()
			superclass := vm.pop().AsObj().(*value.Class)
			method, ok := superclass.Methods[name]
			if !ok {
				return vm.runtimeError("Undefined property '%s'.", name)
			}
			receiver := vm.pop()
			bm := &value.BoundMethod{Receiver: receiver, Method: method}
			vm.push(value.Obj(value.KindBoundMethod, bm))

		case value.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))
		case value.OpGreater:
			if err := vm.comparison(func(a, b float64) bool { return a > b }); err != nil {
				return err
			}
		case value.OpLess:
			if err := vm.comparison(func(a, b float64) bool { return a < b }); err != nil {
				return err
			}
		case value.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case value.OpSubtract:
			if err := vm.numericBinary(func(a, b float64) float64 { return a - b }); err != nil {
				return err
			}
		case value.OpMultiply:
			if err := vm.numericBinary(func(a, b float64) float64 { return a * b }); err != nil {
				return err
			}
		case value.OpDivide:
			if err := vm.numericBinary(func(a, b float64) float64 { return a / b }); err != nil {
				return err
			}
		case value.OpNot:
			vm.push(value.Bool(vm.pop().IsFalsy()))
		case value.OpNegate:
			v := vm.peek(0)
			if v.Kind() != value.KindNumber {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(value.Number(-v.AsNumber()))
		case value.OpBwAnd:
			if err := vm.bitwise(func(a, b int64) int64 { return a & b }); err != nil {
				return err
			}
		case value.OpBwOr:
			if err := vm.bitwise(func(a, b int64) int64 { return a | b }); err != nil {
				return err
			}
		case value.OpBwXor:
			if err := vm.bitwise(func(a, b int64) int64 { return a ^ b }); err != nil {
				return err
			}
		case value.OpBwNot:
			v := vm.peek(0)
			if v.Kind() != value.KindNumber {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.pop()
			vm.push(value.Number(float64(^int64(v.AsNumber()))))

		case value.OpJump:
			offset := vm.readShort()
			vm.frame().IP += int(offset)
		case value.OpJumpIfFalse:
			offset := vm.readShort()
			if vm.peek(0).IsFalsy() {
				vm.frame().IP += int(offset)
			}
		case value.OpLoop:
			offset := vm.readShort()
			vm.frame().IP -= int(offset)

		case value.OpCall:
			argc := int(vm.readByte())
			if err := vm.callValue(vm.peek(argc), argc); err != nil {
				return err
			}
		case value.OpInvoke:
			name := vm.readString()
			argc := int(vm.readByte())
			if err := vm.invoke(name, argc); err != nil {
				return err
			}
		case value.OpSuperInvoke:
			name := vm.readString()
			argc := int(vm.readByte())
			superclass := vm.pop().AsObj().(*value.Class)
			if err := vm.invokeFromClass(superclass, name, argc); err != nil {
				return err
			}
		case value.OpClosure:
			fnVal := vm.readConstant()
			function := fnVal.AsObj().(*value.Function)
			closure := &value.Closure{Function: function, Upvalues: make([]*value.Upvalue, function.UpvalueCount)}
			for i := 0; i < function.UpvalueCount; i++ {
				isLocal := vm.readByte()
				index := int(vm.readByte())
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(vm.frame().Base + index)
				} else {
					closure.Upvalues[i] = vm.frame().Closure.Upvalues[index]
				}
			}
			vm.push(value.Obj(value.KindClosure, closure))
		case value.OpCloseUpvalue:
			vm.closeUpvalues(vm.sp - 1)
			vm.pop()
		case value.OpReturn:
			result := vm.pop()
			returning := vm.frame()
			vm.closeUpvalues(returning.Base)
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop()
				return nil
			}
			vm.sp = returning.Base
			vm.push(result)

		case value.OpClass:
			name := vm.readString()
			vm.push(value.Obj(value.KindClass, value.NewClass(name)))
		case value.OpInherit:
			superVal := vm.peek(1)
			if superVal.Kind() != value.KindClass {
				return vm.runtimeError("Superclass must be a class.")
			}
			superclass := superVal.AsObj().(*value.Class)
			subclass := vm.peek(0).AsObj().(*value.Class)
			for name, method := range superclass.Methods {
				subclass.Methods[name] = method
			}
			vm.pop()
		case value.OpMethod:
			name := vm.readString()
			closure := vm.pop().AsObj().(*value.Closure)
			class := vm.peek(0).AsObj().(*value.Class)
			class.Methods[name] = closure

		case value.OpArrBuild:
			count := int(vm.readByte())
			vm.arrBuild(count)
		case value.OpArrIndex:
			if err := vm.arrIndex(); err != nil {
				return err
			}
		case value.OpArrStore:
			if err := vm.arrStore(); err != nil {
				return err
			}

		case value.OpPrint:
			v := vm.pop()
			fmt.Fprintln(vm.stdout, v.String())

		default:
			return vm.runtimeError("Unknown opcode %d.", byte(instruction))
		}
	}
}
