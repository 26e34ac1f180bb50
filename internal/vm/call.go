package vm

import (
	"fmt"

	"github.com/emberlang/ember/internal/value"
)

// callValue dispatches OpCall's callee, which may be a Closure, a
// Class (constructor call), a BoundMethod, or a NativeFunction. argc
// values sit on the stack above the callee itself, at
// stack[sp-argc:sp]; the callee is at stack[sp-argc-1].
func (vm *VM) callValue(callee value.Value, argc int) error {
	switch callee.Kind() {
	case value.KindClosure:
		return vm.callClosure(callee.AsObj().(*value.Closure), argc)

	case value.KindClass:
		class := callee.AsObj().(*value.Class)
		instance := value.NewInstance(class)
		vm.stack[vm.sp-argc-1] = value.Obj(value.KindInstance, instance)
		if init, ok := class.Methods[initString]; ok {
			return vm.callClosure(init, argc)
		}
		if argc != 0 {
			return vm.runtimeError("Expected 0 arguments but got %d.", argc)
		}
		return nil

	case value.KindBoundMethod:
		bm := callee.AsObj().(*value.BoundMethod)
		vm.stack[vm.sp-argc-1] = bm.Receiver
		return vm.callClosure(bm.Method, argc)

	case value.KindNative:
		native := callee.AsObj().(*value.NativeFunction)
		args := make([]value.Value, argc)
		copy(args, vm.stack[vm.sp-argc:vm.sp])
		result, err := native.Fn(args)
		if err != nil {
			fmt.Fprintln(vm.stderr, err.Error())
			result = value.Null
		}
		vm.sp -= argc + 1
		vm.push(result)
		return nil

	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

// callClosure pushes a new CallFrame for closure, validating arity and
// call depth first.
func (vm *VM) callClosure(closure *value.Closure, argc int) error {
	if argc != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argc)
	}
	if len(vm.frames) >= FramesMax {
		return vm.runtimeError("Stack overflow.")
	}
	vm.frames = append(vm.frames, CallFrame{
		Closure: closure,
		IP:      0,
		Base:    vm.sp - argc - 1,
	})
	return nil
}

// bindMethod resolves name against receiver's class, binding it to a
// BoundMethod and replacing the receiver on top of the stack with it.
// Used by OpGetProperty when the field table misses.
func (vm *VM) bindMethod(class *value.Class, name string) error {
	method, ok := class.Methods[name]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name)
	}
	receiver := vm.peek(0)
	bm := &value.BoundMethod{Receiver: receiver, Method: method}
	vm.pop()
	vm.push(value.Obj(value.KindBoundMethod, bm))
	return nil
}

// invoke fuses property lookup with call for OpInvoke: it first checks
// the instance's own field table (a field holding a callable shadows
// any method of the same name), then falls back to the class's method
// table, avoiding the BoundMethod allocation a plain GetProperty+Call
// would require.
func (vm *VM) invoke(name string, argc int) error {
	receiver := vm.peek(argc)
	if receiver.Kind() != value.KindInstance {
		return vm.runtimeError("Only instances have methods.")
	}
	instance := receiver.AsObj().(*value.Instance)

	if field, ok := instance.Fields[name]; ok {
		vm.stack[vm.sp-argc-1] = field
		return vm.callValue(field, argc)
	}

	method, ok := instance.Class.Methods[name]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name)
	}
	return vm.callClosure(method, argc)
}

// invokeFromClass looks up name directly on class (bypassing instance
// fields), used by OpSuperInvoke where the receiver's own class has
// already been skipped in favor of its superclass.
func (vm *VM) invokeFromClass(class *value.Class, name string, argc int) error {
	method, ok := class.Methods[name]
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name)
	}
	return vm.callClosure(method, argc)
}
