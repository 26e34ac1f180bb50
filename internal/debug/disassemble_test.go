package debug

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/compiler"
	"github.com/emberlang/ember/internal/value"
)

// walkOpcodes independently decodes a chunk's opcode sequence using
// only each instruction's fixed/variable operand width, without going
// through the disassembler, so it can serve as an oracle for the
// round-trip check below.
func walkOpcodes(t *testing.T, c *value.Chunk) []value.OpCode {
	t.Helper()
	var ops []value.OpCode
	offset := 0
	for offset < c.Count() {
		op := value.OpCode(c.GetCode(offset))
		ops = append(ops, op)
		switch op {
		case value.OpConstant, value.OpGetLocal, value.OpSetLocal, value.OpGetUpvalue, value.OpSetUpvalue,
			value.OpCall, value.OpArrBuild, value.OpGetGlobal, value.OpDefineGlobal, value.OpSetGlobal,
			value.OpGetProperty, value.OpSetProperty, value.OpGetSuper, value.OpClass, value.OpMethod:
			offset += 2
		case value.OpInvoke, value.OpSuperInvoke:
			offset += 3
		case value.OpJump, value.OpJumpIfFalse, value.OpLoop:
			offset += 3
		case value.OpClosure:
			idx := c.GetCode(offset + 1)
			fn := c.GetConstant(int(idx)).AsObj().(*value.Function)
			offset += 2 + fn.UpvalueCount*2
		default:
			offset++
		}
	}
	return ops
}

// TestDisassembleRoundTripsOpcodeSequence exercises spec.md §8's
// disassembler round-trip law: walking the disassembler's own offset
// progression reproduces the same opcode sequence an independent
// operand-width decode produces.
func TestDisassembleRoundTripsOpcodeSequence(t *testing.T) {
	fn, ok := compiler.Compile(`
class Greeter {
  init(name) { this.name = name; }
  greet() { return "hi " + this.name; }
}
var g = Greeter("world");
print g.greet();
func make() {
  var x = 0;
  func incr() { x = x + 1; return x; }
  return incr;
}
var c = make();
print c();
`)
	require.True(t, ok)

	want := walkOpcodes(t, fn.Chunk)

	var got []value.OpCode
	offset := 0
	for offset < fn.Chunk.Count() {
		op := value.OpCode(fn.Chunk.GetCode(offset))
		got = append(got, op)
		var buf bytes.Buffer
		offset = Instruction(&buf, fn.Chunk, offset)
	}

	assert.Equal(t, want, got)
}

func TestChunkDisassemblyIncludesHeaderAndOpcodeNames(t *testing.T) {
	fn, ok := compiler.Compile(`print 1 + 2;`)
	require.True(t, ok)

	var buf bytes.Buffer
	Chunk(&buf, fn.Chunk, "test chunk")
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "== test chunk ==\n"))
	assert.Contains(t, out, value.OpAdd.String())
	assert.Contains(t, out, value.OpPrint.String())
}

func TestClosureInstructionDecodesUpvalueMetadataLines(t *testing.T) {
	fn, ok := compiler.Compile(`
func make() {
  var x = 0;
  func incr() { return x; }
  return incr;
}
`)
	require.True(t, ok)

	// incr's OpClosure and its capture metadata live in make's chunk.
	var makeFn *value.Function
	for _, c := range fn.Chunk.Constants {
		if f, ok := c.AsObj().(*value.Function); ok && f.Name == "make" {
			makeFn = f
		}
	}
	require.NotNil(t, makeFn)

	var buf bytes.Buffer
	Chunk(&buf, makeFn.Chunk, "make")
	out := buf.String()

	assert.Contains(t, out, "OP_CLOSURE")
	assert.Contains(t, out, "local")
}
