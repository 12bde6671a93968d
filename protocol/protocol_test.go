package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/message"
)

type stubHandler struct {
	id uint16
}

func (s stubHandler) ProtoID() uint16 { return s.id }
func (s stubHandler) Handle(rx *Rx, tx *Tx) (ResponseRequired, error) {
	tx.Opcode = 0xAA
	tx.Payload = []byte("ok")
	return Yes, nil
}

func TestRegistryDispatchesToRegisteredProtocol(t *testing.T) {
	reg := NewRegistry()
	reg.Register(stubHandler{id: InteractionModel})

	rx := &Rx{Header: message.ProtoHeader{ProtocolID: InteractionModel}}
	tx := &Tx{}
	required, err := reg.Dispatch(rx, tx)
	require.NoError(t, err)
	assert.Equal(t, Yes, required)
	assert.Equal(t, []byte("ok"), tx.Payload)
}

func TestRegistryUnknownProtocolErrors(t *testing.T) {
	reg := NewRegistry()
	rx := &Rx{Header: message.ProtoHeader{ProtocolID: 0x99}}
	_, err := reg.Dispatch(rx, &Tx{})
	assert.ErrorIs(t, err, ErrUnknownProtocol)
}
