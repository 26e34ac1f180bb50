package compiler

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/value"
)

func TestCompileValidScriptSucceeds(t *testing.T) {
	fn, ok := Compile(`print 1 + 2;`)
	require.True(t, ok)
	require.NotNil(t, fn)
	assert.Equal(t, "", fn.Name)
	assert.Equal(t, 0, fn.Arity)
}

func TestCompileErrorReturnsNoFunction(t *testing.T) {
	var stderr bytes.Buffer
	fn, ok := CompileTo(`1 +;`, &stderr)
	assert.False(t, ok)
	assert.Nil(t, fn)
	assert.Contains(t, stderr.String(), "[line 1] Error")
}

func TestOwnInitializerIsCompileError(t *testing.T) {
	var stderr bytes.Buffer
	_, ok := CompileTo(`{ var x = x; }`, &stderr)
	assert.False(t, ok)
	assert.Contains(t, stderr.String(), ErrOwnInitializer.Error())
}

func TestDuplicateLocalIsCompileError(t *testing.T) {
	var stderr bytes.Buffer
	_, ok := CompileTo(`{ var x = 1; var x = 2; }`, &stderr)
	assert.False(t, ok)
	assert.Contains(t, stderr.String(), ErrDuplicateLocal.Error())
}

func TestTooManyParametersIsCompileError(t *testing.T) {
	params := ""
	for i := 0; i < 256; i++ {
		if i > 0 {
			params += ", "
		}
		params += "p" + strconv.Itoa(i)
	}
	var stderr bytes.Buffer
	_, ok := CompileTo(`func f(`+params+`) {}`, &stderr)
	assert.False(t, ok)
	assert.Contains(t, stderr.String(), "Can't have more than 255 parameters.")
}

func TestClosureCapturesUpvalueMetadata(t *testing.T) {
	fn, ok := Compile(`func make() { var x = 0; func incr() { x = x + 1; return x; } return incr; }`)
	require.True(t, ok)
	require.NotNil(t, fn)

	// incr's OpClosure is emitted into make's chunk, not the script's.
	var makeFn *value.Function
	for _, c := range fn.Chunk.Constants {
		if f, ok := c.AsObj().(*value.Function); ok && f.Name == "make" {
			makeFn = f
		}
	}
	require.NotNil(t, makeFn)

	foundClosure := false
	for i := 0; i < makeFn.Chunk.Count(); {
		op := value.OpCode(makeFn.Chunk.GetCode(i))
		if op == value.OpClosure {
			foundClosure = true
			idx := makeFn.Chunk.GetCode(i + 1)
			inner := makeFn.Chunk.GetConstant(int(idx)).AsObj().(*value.Function)
			assert.Equal(t, 1, inner.UpvalueCount)
			break
		}
		i++
	}
	assert.True(t, foundClosure, "expected OpClosure to be emitted for incr")
}
