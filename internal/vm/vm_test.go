package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/compiler"
)

func interpret(t *testing.T, src string) (string, error) {
	t.Helper()
	fn, ok := compiler.Compile(src)
	require.True(t, ok, "expected %q to compile", src)
	v := New()
	var stdout bytes.Buffer
	v.SetOutput(&stdout, &stdout)
	err := v.Run(fn)
	return stdout.String(), err
}

func TestRunPrintsArithmeticResult(t *testing.T) {
	out, err := interpret(t, `print (1 + 2) * 3;`)
	require.NoError(t, err)
	assert.Equal(t, "9\n", out)
}

func TestRunClosureSharesUpvalueAcrossCalls(t *testing.T) {
	out, err := interpret(t, `
func make() {
  var x = 0;
  func incr() { x = x + 1; return x; }
  return incr;
}
var c = make();
print c();
print c();
print c();
`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestRunTwoClosuresFromSameCallGetIndependentUpvalueCells(t *testing.T) {
	out, err := interpret(t, `
func make() {
  var x = 0;
  func incr() { x = x + 1; return x; }
  return incr;
}
var a = make();
var b = make();
print a();
print a();
print b();
`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n1\n", out)
}

func TestRunCallNonCallableProducesRuntimeError(t *testing.T) {
	out, err := interpret(t, `var f = 1; f();`)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "Can only call functions and classes.", rerr.Message)
	assert.Empty(t, out)
}

func TestRunStackOverflowOnUnboundedRecursion(t *testing.T) {
	_, err := interpret(t, `
func recurse() { return recurse(); }
recurse();
`)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "Stack overflow.", rerr.Message)
}

func TestRuntimeErrorTraceIsInnermostFrameFirst(t *testing.T) {
	_, err := interpret(t, `
func inner() { return 1 + "a"; }
func outer() { return inner(); }
outer();
`)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	// Trace is stored outermost first; Error() renders it innermost first.
	require.Len(t, rerr.Trace, 3)
	assert.Equal(t, "inner", rerr.Trace[2].Name)
	assert.Equal(t, "outer", rerr.Trace[1].Name)
	assert.Equal(t, "", rerr.Trace[0].Name)

	rendered := rerr.Error()
	innerAt := strings.Index(rendered, "in inner")
	outerAt := strings.Index(rendered, "in outer")
	scriptAt := strings.Index(rendered, "in script")
	require.True(t, innerAt >= 0 && outerAt >= 0 && scriptAt >= 0, rendered)
	assert.Less(t, innerAt, outerAt)
	assert.Less(t, outerAt, scriptAt)
}

func TestRunBoundMethodAndInheritance(t *testing.T) {
	out, err := interpret(t, `
class Animal {
  init(name) { this.name = name; }
  speak() { return this.name + " makes a sound"; }
}
class Dog < Animal {
  speak() { return super.speak() + " (bark)"; }
}
var d = Dog("Rex");
print d.speak();
`)
	require.NoError(t, err)
	assert.Equal(t, "Rex makes a sound (bark)\n", out)
}

func TestRunArrayBuildIndexAndStore(t *testing.T) {
	out, err := interpret(t, `
var a = [1, 2, 3];
a[0] = a[0] + (a[2]);
print a[0];
`)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)
}

func TestRunArrayIndexOutOfBoundsIsRuntimeError(t *testing.T) {
	_, err := interpret(t, `var a = [1]; print a[1];`)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "Array index out of bounds.", rerr.Message)
}

func TestCaptureUpvalueReusesSameCellForSameSlot(t *testing.T) {
	v := New()
	u1 := v.captureUpvalue(3)
	u2 := v.captureUpvalue(3)
	assert.Same(t, u1, u2)
}

// TestRunResetsStackAndFramesAfterRuntimeErrorForReuse exercises
// spec.md §7's reused-VM contract: a REPL-style session keeps one VM
// across inputs, so a runtime error on one script must not leave
// stale stack/frame state behind for the next Run call to trip over.
func TestRunResetsStackAndFramesAfterRuntimeErrorForReuse(t *testing.T) {
	v := New()
	var out bytes.Buffer
	v.SetOutput(&out, &out)

	faulting, ok := compiler.Compile(`var f = 1; f();`)
	require.True(t, ok)
	err := v.Run(faulting)
	require.Error(t, err)
	assert.Equal(t, 0, v.sp)
	assert.Empty(t, v.frames)
	assert.Nil(t, v.openUpvalues)

	out.Reset()
	following, ok := compiler.Compile(`print 2 + 2;`)
	require.True(t, ok)
	err = v.Run(following)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out.String())
	assert.Equal(t, 0, v.sp)
	assert.Empty(t, v.frames)
}

func TestCloseUpvaluesClosesOnlyAtOrAboveFloor(t *testing.T) {
	v := New()
	low := v.captureUpvalue(2)
	high := v.captureUpvalue(5)
	v.closeUpvalues(4)
	assert.Nil(t, high.Next)
	assert.Same(t, low, v.openUpvalues)
	assert.NotSame(t, &v.stack[5], high.Location)
}
