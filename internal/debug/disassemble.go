// Package debug renders a Chunk's instruction stream as human-readable
// text, the one external contract spec.md §1 leaves unspecified
// ("disassembly/tracing output") but SPEC_FULL.md §2 requires a working
// implementation of. The format follows the teacher's disassembler in
// pkg/vm/debugger.go: a marker column, offset, opcode name, and a
// decoded operand.
package debug

import (
	"fmt"
	"io"

	"github.com/emberlang/ember/internal/value"
)

// Chunk disassembles every instruction in c to w, labeled name.
func Chunk(w io.Writer, c *value.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < c.Count(); {
		offset = Instruction(w, c, offset)
	}
}

// Instruction disassembles the single instruction at offset and
// returns the offset of the next one.
func Instruction(w io.Writer, c *value.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.GetLine(offset) == c.GetLine(offset-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.GetLine(offset))
	}

	op := value.OpCode(c.GetCode(offset))
	switch op {
	case value.OpConstant:
		return constantInstruction(w, op, c, offset)
	case value.OpGetLocal, value.OpSetLocal, value.OpGetUpvalue, value.OpSetUpvalue,
		value.OpCall, value.OpArrBuild:
		return byteInstruction(w, op, c, offset)
	case value.OpGetGlobal, value.OpDefineGlobal, value.OpSetGlobal,
		value.OpGetProperty, value.OpSetProperty, value.OpGetSuper,
		value.OpClass, value.OpMethod:
		return constantInstruction(w, op, c, offset)
	case value.OpInvoke, value.OpSuperInvoke:
		return invokeInstruction(w, op, c, offset)
	case value.OpJump, value.OpJumpIfFalse:
		return jumpInstruction(w, op, c, offset, 1)
	case value.OpLoop:
		return jumpInstruction(w, op, c, offset, -1)
	case value.OpClosure:
		return closureInstruction(w, c, offset)
	default:
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}
}

func byteInstruction(w io.Writer, op value.OpCode, c *value.Chunk, offset int) int {
	slot := c.GetCode(offset + 1)
	fmt.Fprintf(w, "%-18s %4d\n", op, slot)
	return offset + 2
}

func constantInstruction(w io.Writer, op value.OpCode, c *value.Chunk, offset int) int {
	idx := c.GetCode(offset + 1)
	fmt.Fprintf(w, "%-18s %4d '%s'\n", op, idx, c.GetConstant(int(idx)).String())
	return offset + 2
}

func invokeInstruction(w io.Writer, op value.OpCode, c *value.Chunk, offset int) int {
	idx := c.GetCode(offset + 1)
	argc := c.GetCode(offset + 2)
	fmt.Fprintf(w, "%-18s (%d args) %4d '%s'\n", op, argc, idx, c.GetConstant(int(idx)).String())
	return offset + 3
}

func jumpInstruction(w io.Writer, op value.OpCode, c *value.Chunk, offset, sign int) int {
	jump := int(c.GetCode(offset+1))<<8 | int(c.GetCode(offset+2))
	target := offset + 3 + sign*jump
	fmt.Fprintf(w, "%-18s %4d -> %d\n", op, offset, target)
	return offset + 3
}

func closureInstruction(w io.Writer, c *value.Chunk, offset int) int {
	offset++
	idx := c.GetCode(offset)
	offset++
	fn := c.GetConstant(int(idx)).AsObj().(*value.Function)
	fmt.Fprintf(w, "%-18s %4d '%s'\n", value.OpClosure, idx, fn.String())

	for i := 0; i < fn.UpvalueCount; i++ {
		isLocal := c.GetCode(offset)
		offset++
		index := c.GetCode(offset)
		offset++
		kind := "upvalue"
		if isLocal != 0 {
			kind = "local"
		}
		fmt.Fprintf(w, "%04d      |                     %s %d\n", offset-2, kind, index)
	}
	return offset
}
