package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/buf"
)

func TestProtoHeaderRoundTrip(t *testing.T) {
	h := ProtoHeader{
		Initiator:        true,
		Reliable:         true,
		Opcode:           8,
		ExchangeID:       99,
		ProtocolID:       0x01,
		AckPresent:       true,
		AckCounter:       123,
		VendorPresent:    true,
		VendorID:         0xfff1,
		SecuredExtension: []byte{0xde, 0xad},
	}
	b := make([]byte, 64)
	wb := buf.NewWriteBuf(b)
	require.NoError(t, wb.Reserve(0))
	require.NoError(t, h.Encode(wb))
	assert.Equal(t, h.Size(), len(wb.Bytes()))

	got, err := DecodeProto(buf.NewParseBuf(wb.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestProtoHeaderMinimal(t *testing.T) {
	h := ProtoHeader{Opcode: 2, ExchangeID: 1, ProtocolID: 1}
	b := make([]byte, 16)
	wb := buf.NewWriteBuf(b)
	require.NoError(t, wb.Reserve(0))
	require.NoError(t, h.Encode(wb))
	assert.Equal(t, MinProtoHeaderSize, len(wb.Bytes()))

	got, err := DecodeProto(buf.NewParseBuf(wb.Bytes()))
	require.NoError(t, err)
	assert.False(t, got.AckPresent)
	assert.False(t, got.VendorPresent)
	assert.Nil(t, got.SecuredExtension)
}

func TestProtoHeaderTooShort(t *testing.T) {
	_, err := DecodeProto(buf.NewParseBuf([]byte{1, 2}))
	assert.ErrorIs(t, err, ErrTooShort)
}
