package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/buf"
)

func TestPlainHeaderRoundTrip(t *testing.T) {
	h := PlainHeader{
		Encrypted:      true,
		SessionID:      42,
		MessageCounter: 7,
		SourcePresent:  true,
		SourceNodeID:   0x1122334455667788,
		DestType:       DestNodeID,
		DestNodeID:     0x99aabbccddeeff00,
	}

	b := make([]byte, 64)
	wb := buf.NewWriteBuf(b)
	require.NoError(t, wb.Reserve(0))
	require.NoError(t, h.Encode(wb))
	assert.Equal(t, h.Size(), len(wb.Bytes()))

	pb := buf.NewParseBuf(wb.Bytes())
	got, err := Decode(pb)
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, 0, pb.Remaining())
}

func TestPlainHeaderGroupDestination(t *testing.T) {
	h := PlainHeader{
		SessionID:      1,
		MessageCounter: 1,
		DestType:       DestGroupID,
		DestGroupID:    0xbeef,
	}
	b := make([]byte, 32)
	wb := buf.NewWriteBuf(b)
	require.NoError(t, wb.Reserve(0))
	require.NoError(t, h.Encode(wb))

	got, err := Decode(buf.NewParseBuf(wb.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, DestGroupID, got.DestType)
	assert.Equal(t, uint16(0xbeef), got.DestGroupID)
}

func TestPlainHeaderTooShort(t *testing.T) {
	_, err := Decode(buf.NewParseBuf([]byte{0, 1, 2}))
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestPlainHeaderInvalidVersion(t *testing.T) {
	data := []byte{0x0F, 0, 0, 0, 0, 0, 0, 0}
	_, err := Decode(buf.NewParseBuf(data))
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestNonceDerivation(t *testing.T) {
	h := PlainHeader{Encrypted: true, MessageCounter: 0x01020304}
	n := Nonce(h, 0x0a0b0c0d0e0f1011)
	assert.Equal(t, byte(secFlagEncrypted), n[0])
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, n[1:5])
	assert.Equal(t, []byte{0x11, 0x10, 0x0f, 0x0e, 0x0d, 0x0c, 0x0b, 0x0a}, n[5:13])
}
