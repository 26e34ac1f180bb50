package value

// OpCode is a single bytecode instruction's operation, always encoded
// as one byte in a Chunk's code stream; see SPEC_FULL.md §4.5 for the
// full operand layout of each opcode.
type OpCode byte

const (
	OpConstant OpCode = iota
	OpNull
	OpTrue
	OpFalse
	OpPop

	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpGetProperty
	OpSetProperty
	OpGetSuper

	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpBwAnd
	OpBwOr
	OpBwXor
	OpBwNot

	OpJump
	OpJumpIfFalse
	OpLoop

	OpCall
	OpInvoke
	OpSuperInvoke
	OpClosure
	OpCloseUpvalue
	OpReturn

	OpClass
	OpInherit
	OpMethod

	OpArrBuild
	OpArrIndex
	OpArrStore

	OpPrint
)

var opNames = [...]string{
	OpConstant: "OP_CONSTANT", OpNull: "OP_NULL", OpTrue: "OP_TRUE",
	OpFalse: "OP_FALSE", OpPop: "OP_POP",
	OpGetLocal: "OP_GET_LOCAL", OpSetLocal: "OP_SET_LOCAL",
	OpGetGlobal: "OP_GET_GLOBAL", OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal: "OP_SET_GLOBAL", OpGetUpvalue: "OP_GET_UPVALUE",
	OpSetUpvalue: "OP_SET_UPVALUE", OpGetProperty: "OP_GET_PROPERTY",
	OpSetProperty: "OP_SET_PROPERTY", OpGetSuper: "OP_GET_SUPER",
	OpEqual: "OP_EQUAL", OpGreater: "OP_GREATER", OpLess: "OP_LESS",
	OpAdd: "OP_ADD", OpSubtract: "OP_SUBTRACT", OpMultiply: "OP_MULTIPLY",
	OpDivide: "OP_DIVIDE", OpNot: "OP_NOT", OpNegate: "OP_NEGATE",
	OpBwAnd: "OP_BW_AND", OpBwOr: "OP_BW_OR", OpBwXor: "OP_BW_XOR",
	OpBwNot: "OP_BW_NOT",
	OpJump: "OP_JUMP", OpJumpIfFalse: "OP_JUMP_IF_FALSE", OpLoop: "OP_LOOP",
	OpCall: "OP_CALL", OpInvoke: "OP_INVOKE", OpSuperInvoke: "OP_SUPER_INVOKE",
	OpClosure: "OP_CLOSURE", OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn: "OP_RETURN",
	OpClass:  "OP_CLASS", OpInherit: "OP_INHERIT", OpMethod: "OP_METHOD",
	OpArrBuild: "OP_ARR_BUILD", OpArrIndex: "OP_ARR_INDEX", OpArrStore: "OP_ARR_STORE",
	OpPrint: "OP_PRINT",
}

func (op OpCode) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "OP_UNKNOWN"
}
