package ember

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, string, Result) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	result := InterpretIn(NewVM(), src, &stdout, &stderr)
	return stdout.String(), stderr.String(), result
}

// TestEndToEndScenarios exercises each literal source -> literal stdout
// scenario named in spec.md §8.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"arithmeticPrecedence", `print 1 + 2 * 3;`, "7\n"},
		{"stringConcat", `var a = "foo"; var b = "bar"; print a + b;`, "foobar\n"},
		{"closureCounter", `func make() { var x = 0; func incr() { x = x + 1; return x; } return incr; } var c = make(); print c(); print c(); print c();`, "1\n2\n3\n"},
		{"inheritedMethod", `class A { greet() { print "hi"; } } class B < A {} B().greet();`, "hi\n"},
		{"initAndBoundMethod", `class Counter { init(n) { this.n = n; } tick() { this.n = this.n + 1; return this.n; } } var k = Counter(10); print k.tick(); print k.tick();`, "11\n12\n"},
		{"arrayIndexAndStore", `var a = [10, 20, 30]; print a[1]; a[1] = 99; print a[1];`, "20\n99\n"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stdout, stderr, result := run(t, c.src)
			require.Equal(t, ResultOK, result, "stderr: %s", stderr)
			assert.Equal(t, c.want, stdout)
		})
	}
}

func TestCompileErrorScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"ownInitializer", `{ var x = x; }`, "Can't read local variable in its own initializer."},
		{"selfInheritance", `class A < A {}`, "A class cannot inherit from itself."},
		{"topLevelReturn", `return 1;`, "Cannot return from top-level code."},
		{"superOutsideClass", `super.x;`, "'super' cannot be used outside of a class."},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, stderr, result := run(t, c.src)
			assert.Equal(t, ResultCompileError, result)
			assert.Contains(t, stderr, c.want)
		})
	}
}

func TestRuntimeErrorScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"addStringAndNonCoercible", `print 1 + "a";`, ""},
		{"callNonCallable", `var f = 1; f();`, "Can only call functions and classes."},
		{"arrayOutOfBounds", `var a = [1, 2]; print a[5];`, "Array index out of bounds."},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, stderr, result := run(t, c.src)
			assert.Equal(t, ResultRuntimeError, result)
			if c.want != "" {
				assert.Contains(t, stderr, c.want)
			}
		})
	}
}

// TestAddCoercesStringLeftNumberRight exercises the resolved Open
// Question: a string left operand with a number right operand
// concatenates, formatting the number with shortest round-trip +
// trailing-zero trim; the reverse order does not coerce (see
// TestRuntimeErrorScenarios/addStringAndNonCoercible).
func TestAddCoercesStringLeftNumberRight(t *testing.T) {
	stdout, stderr, result := run(t, `print "n=" + 3.5; print "count: " + 10;`)
	require.Equal(t, ResultOK, result, "stderr: %s", stderr)
	assert.Equal(t, "n=3.5\ncount: 10\n", stdout)
}

// TestEmptyProgramIsIdempotent: interpret("") produces no output and
// no error, per spec.md §8's idempotence law.
func TestEmptyProgramIsIdempotent(t *testing.T) {
	stdout, stderr, result := run(t, "")
	assert.Equal(t, ResultOK, result)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

// TestPureExpressionEquivalence: `var x = E; print x;` and `print E;`
// produce identical output for a pure E, per spec.md §8.
func TestPureExpressionEquivalence(t *testing.T) {
	a, _, resA := run(t, `var x = 2 + 3 * 4; print x;`)
	b, _, resB := run(t, `print 2 + 3 * 4;`)
	require.Equal(t, ResultOK, resA)
	require.Equal(t, ResultOK, resB)
	assert.Equal(t, a, b)
}

// TestSubclassInheritsMethodIdentically: D().m() and C().m() agree
// modulo the receiver's class name, per spec.md §8.
func TestSubclassInheritsMethodIdentically(t *testing.T) {
	stdout, _, result := run(t, `
class C { whoAmI() { return "shared"; } }
class D < C {}
print C().whoAmI();
print D().whoAmI();
`)
	require.Equal(t, ResultOK, result)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, lines[0], lines[1])
}

func TestBwNotDoesNotFallThroughToNegate(t *testing.T) {
	stdout, _, result := run(t, `print ~0;`)
	require.Equal(t, ResultOK, result)
	assert.Equal(t, "-1\n", stdout)
}

func TestLogicalOperatorsShortCircuit(t *testing.T) {
	stdout, _, result := run(t, `
func boom() { print "should not run"; return true; }
print false and boom();
print true or boom();
`)
	require.Equal(t, ResultOK, result)
	assert.Equal(t, "false\ntrue\n", stdout)
}

func TestAlternateLogicalSpellings(t *testing.T) {
	stdout, _, result := run(t, `print true && false; print false || true;`)
	require.Equal(t, ResultOK, result)
	assert.Equal(t, "false\ntrue\n", stdout)
}
