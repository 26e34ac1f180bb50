package diag

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileErrorAtToken(t *testing.T) {
	var buf bytes.Buffer
	CompileError(&buf, 3, "x", false, "Already a variable with this name in this scope.")
	assert.Equal(t, "[line 3] Error at 'x': Already a variable with this name in this scope.\n", buf.String())
}

func TestCompileErrorAtEnd(t *testing.T) {
	var buf bytes.Buffer
	CompileError(&buf, 5, "", true, "Expect expression.")
	assert.Equal(t, "[line 5] Error at end: Expect expression.\n", buf.String())
}

func TestCompileErrorWithNoLexemeAndNotAtEnd(t *testing.T) {
	var buf bytes.Buffer
	CompileError(&buf, 1, "", false, "Unterminated string.")
	assert.Equal(t, "[line 1] Error: Unterminated string.\n", buf.String())
}

func TestRuntimeErrorWritesMessageAndNewline(t *testing.T) {
	var buf bytes.Buffer
	RuntimeError(&buf, errors.New("Stack overflow.\n[line 2] in script"))
	assert.Equal(t, "Stack overflow.\n[line 2] in script\n", buf.String())
}
