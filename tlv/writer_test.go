package tlv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/buf"
)

func TestWriterEncodesScenario1Struct(t *testing.T) {
	b := make([]byte, 64)
	wb := buf.NewWriteBuf(b)
	require.NoError(t, wb.Reserve(0))

	w := NewWriter(wb)
	require.NoError(t, w.StartStruct(AnonymousTag()))
	require.NoError(t, w.PutUint(ContextTag(0), 2))
	require.NoError(t, w.PutUint(ContextTag(2), 0x0002104e))
	require.NoError(t, w.PutBytes(ContextTag(3), []byte("smar")))
	require.NoError(t, w.EndContainer())

	assert.Equal(t, scenario1, wb.Bytes())
}

func TestWriterChoosesNarrowestIntWidth(t *testing.T) {
	cases := []struct {
		v    uint64
		typ  Type
		size int
	}{
		{0, TypeUnsignedInt1, 1},
		{255, TypeUnsignedInt1, 1},
		{256, TypeUnsignedInt2, 2},
		{65535, TypeUnsignedInt2, 2},
		{65536, TypeUnsignedInt4, 4},
		{1 << 32, TypeUnsignedInt8, 8},
	}
	for _, c := range cases {
		b := make([]byte, 32)
		wb := buf.NewWriteBuf(b)
		require.NoError(t, wb.Reserve(0))
		w := NewWriter(wb)
		require.NoError(t, w.PutUint(ContextTag(0), c.v))

		out := wb.Bytes()
		ctrl := out[0]
		assert.Equal(t, byte(c.typ), ctrl&typeMask)
		assert.Equal(t, 2+c.size, len(out))
	}
}

func TestWriterEndContainerWithoutStartFails(t *testing.T) {
	b := make([]byte, 8)
	wb := buf.NewWriteBuf(b)
	require.NoError(t, wb.Reserve(0))
	w := NewWriter(wb)
	assert.ErrorIs(t, w.EndContainer(), ErrInvalidTag)
}

func TestWriterNoSpace(t *testing.T) {
	b := make([]byte, 1)
	wb := buf.NewWriteBuf(b)
	require.NoError(t, wb.Reserve(0))
	w := NewWriter(wb)
	assert.ErrorIs(t, w.PutUint(ContextTag(0), 12345), ErrNoSpace)
}

func TestWriterRoundTripThroughReader(t *testing.T) {
	b := make([]byte, 64)
	wb := buf.NewWriteBuf(b)
	require.NoError(t, wb.Reserve(0))
	w := NewWriter(wb)

	require.NoError(t, w.StartStruct(AnonymousTag()))
	require.NoError(t, w.PutBool(ContextTag(0), true))
	require.NoError(t, w.PutString(ContextTag(1), "matter"))
	require.NoError(t, w.PutFloat32(ContextTag(2), 1.5))
	require.NoError(t, w.EndContainer())

	r := NewReader(wb.Bytes())
	top, ok := r.Next()
	require.True(t, ok)
	inner, err := r.EnterContainer(top)
	require.NoError(t, err)

	e0, ok := inner.Next()
	require.True(t, ok)
	assert.True(t, e0.Bool())

	e1, ok := inner.Next()
	require.True(t, ok)
	assert.Equal(t, "matter", e1.String())

	e2, ok := inner.Next()
	require.True(t, ok)
	assert.Equal(t, float64(1.5), e2.Float64)

	_, ok = inner.Next()
	assert.False(t, ok)
}
