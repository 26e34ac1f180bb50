package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFalsiness(t *testing.T) {
	assert.True(t, Null.IsFalsy())
	assert.True(t, Bool(false).IsFalsy())
	assert.False(t, Bool(true).IsFalsy())
	assert.False(t, Number(0).IsFalsy())
	assert.False(t, Str("").IsFalsy())
}

func TestEqualityIsStructuralForPrimitivesIdentityForObjects(t *testing.T) {
	assert.True(t, Equal(Number(1), Number(1)))
	assert.False(t, Equal(Number(1), Number(2)))
	assert.True(t, Equal(Str("a"), Str("a")))
	assert.True(t, Equal(Null, Null))

	inst := NewInstance(NewClass("C"))
	a := Obj(KindInstance, inst)
	b := Obj(KindInstance, inst)
	c := Obj(KindInstance, NewInstance(NewClass("C")))
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestFormatNumberTrimsTrailingZerosAndDot(t *testing.T) {
	assert.Equal(t, "7", FormatNumber(7))
	assert.Equal(t, "3.5", FormatNumber(3.5))
	assert.Equal(t, "0.1", FormatNumber(0.1))
	assert.Equal(t, "-1", FormatNumber(-1))
}

func TestHumanizeGroupsThousandsUnlikeFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", Humanize(1234567))
	assert.Equal(t, "1234567", FormatNumber(1234567))
	assert.Equal(t, "3.5", Humanize(3.5))
}

func TestChunkIsAppendOnlyWithParallelLineTable(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpTrue, 1)
	c.WriteOp(OpPop, 2)
	require.Equal(t, len(c.Code), len(c.Lines))
	assert.Equal(t, 1, c.GetLine(0))
	assert.Equal(t, 2, c.GetLine(1))
}

func TestChunkConstantPoolCapIs256(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 256; i++ {
		_, err := c.AddConstant(Number(float64(i)))
		require.NoError(t, err)
	}
	_, err := c.AddConstant(Number(256))
	assert.ErrorIs(t, err, ErrTooManyConstants)
}

func TestOpCodeStringRoundTripsThroughNames(t *testing.T) {
	assert.Equal(t, "OP_ADD", OpAdd.String())
	assert.Equal(t, "OP_CLOSURE", OpClosure.String())
}
