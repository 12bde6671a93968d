package im_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/im"
	"github.com/ossmatter/matterd/message"
	"github.com/ossmatter/matterd/protocol"
	"github.com/ossmatter/matterd/tlv"
)

func TestEngineDispatchesReadRequestToReportData(t *testing.T) {
	node, ep := newNodeWithOnOff(t)
	e := &im.Engine{Node: node, Privilege: datamodel.PrivilegeAdminister}

	require.Equal(t, protocol.InteractionModel, e.ProtoID())

	body := encodeReadRequest(t, im.AttributePath{
		HasEndpoint: true, Endpoint: ep,
	})
	rx := &protocol.Rx{
		Header:  message.ProtoHeader{Opcode: uint8(im.OpcodeReadRequest)},
		Payload: body,
	}
	var tx protocol.Tx
	required, err := e.Handle(rx, &tx)
	require.NoError(t, err)
	require.Equal(t, protocol.Yes, required)
	require.Equal(t, uint8(im.OpcodeReportData), tx.Opcode)
	require.True(t, tx.Reliable)
}

func TestEngineUnknownOpcodeYieldsNoResponse(t *testing.T) {
	node, _ := newNodeWithOnOff(t)
	e := &im.Engine{Node: node, Privilege: datamodel.PrivilegeAdminister}

	rx := &protocol.Rx{Header: message.ProtoHeader{Opcode: 0xEE}, Payload: nil}
	var tx protocol.Tx
	required, err := e.Handle(rx, &tx)
	require.ErrorIs(t, err, im.ErrUnknownIMOpcode)
	require.Equal(t, protocol.No, required)
	require.Empty(t, tx.Opcode)
	require.Empty(t, tx.Payload)
}

func TestEngineSubscribeRequestRepliesWithFailureStatus(t *testing.T) {
	node, _ := newNodeWithOnOff(t)
	e := &im.Engine{Node: node, Privilege: datamodel.PrivilegeAdminister}

	rx := &protocol.Rx{Header: message.ProtoHeader{Opcode: uint8(im.OpcodeSubscribeRequest)}, Payload: nil}
	var tx protocol.Tx
	required, err := e.Handle(rx, &tx)
	require.NoError(t, err)
	require.Equal(t, protocol.Yes, required)
	require.Equal(t, uint8(im.OpcodeStatusResponse), tx.Opcode)

	r := tlv.NewReader(tx.Payload)
	elem, ok := r.Next()
	require.True(t, ok)
	sib, err := r.EnterContainer(elem)
	require.NoError(t, err)
	defer r.ExitContainer(sib)
	f, ok := sib.Next()
	require.True(t, ok)
	require.Equal(t, uint64(im.StatusFailure), f.Uint)
}
