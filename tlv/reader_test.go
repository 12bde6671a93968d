package tlv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario 1: a struct with context-tag 0 = uint8(2), context-tag 2 =
// uint32(135246), context-tag 3 = byte string "smar".
var scenario1 = []byte{
	0x15,                   // struct, anonymous tag
	0x24, 0x00, 0x02,       // context-tag 0, uint8, value 2
	0x26, 0x02, 0x4e, 0x10, 0x02, 0x00, // context-tag 2, uint32, value 0x0002104e
	0x30, 0x03, 0x04, 0x73, 0x6d, 0x61, 0x72, // context-tag 3, byte string len 4, "smar"
	0x18, // end of container
}

func TestReaderDecodesScenario1Struct(t *testing.T) {
	r := NewReader(scenario1)

	top, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, TypeStruct, top.Type)
	assert.True(t, top.IsContainer())

	inner, err := r.EnterContainer(top)
	require.NoError(t, err)

	e0, ok := inner.Next()
	require.True(t, ok)
	assert.True(t, e0.Tag.IsContext(0))
	assert.Equal(t, TypeUnsignedInt1, e0.Type)
	assert.Equal(t, uint64(2), e0.Uint)

	e2, ok := inner.Next()
	require.True(t, ok)
	assert.True(t, e2.Tag.IsContext(2))
	assert.Equal(t, TypeUnsignedInt4, e2.Type)
	assert.Equal(t, uint64(0x0002104e), e2.Uint)

	e3, ok := inner.Next()
	require.True(t, ok)
	assert.True(t, e3.Tag.IsContext(3))
	assert.Equal(t, TypeByteString1, e3.Type)
	assert.Equal(t, "smar", e3.String())

	_, ok = inner.Next()
	assert.False(t, ok)

	require.NoError(t, r.ExitContainer(inner))
	_, ok = r.Next()
	assert.False(t, ok)
}

func TestReaderFindTagSkipsOtherFields(t *testing.T) {
	r := NewReader(scenario1)
	top, _ := r.Next()
	inner, err := r.EnterContainer(top)
	require.NoError(t, err)

	e, ok := inner.FindTag(3)
	require.True(t, ok)
	assert.Equal(t, "smar", e.String())
}

// Scenario 2: a struct opening followed by a truncated byte-string length
// prefix that claims 0x0b (11) bytes but only 4 remain. The reader must
// yield the struct element and then stop cleanly, never panicking.
var scenario2 = []byte{
	0x15,             // struct, anonymous tag
	0x30, 0x00, 0x0b, // context-tag 0, byte string, claimed length 11
	0x73, 0x6d, 0x61, 0x72, // only 4 bytes actually present
}

func TestReaderRejectsTruncatedString(t *testing.T) {
	r := NewReader(scenario2)

	top, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, TypeStruct, top.Type)

	inner, err := r.EnterContainer(top)
	require.NoError(t, err)

	_, ok = inner.Next()
	assert.False(t, ok, "truncated length-prefixed string must not be decoded")
}

func TestReaderEmptyInputYieldsNothing(t *testing.T) {
	r := NewReader(nil)
	_, ok := r.Next()
	assert.False(t, ok)
}

func TestReaderNestedContainerSkippedWhenNotEntered(t *testing.T) {
	// outer struct { 0: inner struct { 0: u8(9) }, 1: u8(7) }
	data := []byte{
		0x15,             // outer struct
		0x35, 0x00,       // context-tag 0, struct
		0x24, 0x00, 0x09, //   context-tag 0, uint8(9)
		0x18,             //   end inner struct
		0x24, 0x01, 0x07, // context-tag 1, uint8(7)
		0x18, // end outer struct
	}
	r := NewReader(data)
	top, ok := r.Next()
	require.True(t, ok)
	inner, err := r.EnterContainer(top)
	require.NoError(t, err)

	first, ok := inner.Next()
	require.True(t, ok)
	assert.True(t, first.IsContainer())

	// Not entering the nested container: the next Next() call must skip
	// its contents as an opaque element rather than requiring EnterContainer.
	second, ok := inner.Next()
	require.True(t, ok)
	assert.True(t, second.Tag.IsContext(1))
	assert.Equal(t, uint64(7), second.Uint)
}
