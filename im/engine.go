package im

import (
	"github.com/ossmatter/matterd/buf"
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/protocol"
	"github.com/ossmatter/matterd/tlv"
)

// maxResponseSize bounds a single IM response body. Matter caps messages
// to the transport MTU; this is generous headroom for the descriptor/OnOff
// surface this node exposes.
const maxResponseSize = 1200

// Engine is the Interaction Model protocol handler (spec.md §4.7). It
// dispatches each incoming message by opcode to the matching Read/Write/
// Invoke envelope handler and replies on the same exchange: either the
// opcode's own response, or a StatusResponse carrying the mapped error
// status. Any other opcode (one outside the defined IM opcode space, or
// Reserved or a response opcode) gets neither —
// per spec.md §8 scenario 6 it is logged and otherwise ignored, the same
// treatment protocol.Registry gives an unregistered protocol id.
type Engine struct {
	Node *datamodel.Node

	// Privilege is the access privilege granted to every request this
	// engine handles. Fabric/ACL resolution (spec.md §9's deferred
	// _fabric_mgr wiring) would replace this with a per-session lookup;
	// until that lands every caller is treated uniformly.
	Privilege datamodel.AccessPrivilege
}

func (e *Engine) ProtoID() uint16 { return protocol.InteractionModel }

func (e *Engine) Handle(rx *protocol.Rx, tx *protocol.Tx) (protocol.ResponseRequired, error) {
	wb := buf.NewWriteBuf(make([]byte, maxResponseSize))
	if err := wb.Reserve(0); err != nil {
		return protocol.No, err
	}
	w := tlv.NewWriter(wb)

	var respOpcode uint8
	var err error

	switch Opcode(rx.Header.Opcode) {
	case OpcodeReadRequest:
		respOpcode = uint8(OpcodeReportData)
		err = HandleReadRequest(e.Node, e.Privilege, rx.Payload, w)
	case OpcodeWriteRequest:
		respOpcode = uint8(OpcodeWriteResponse)
		err = HandleWriteRequest(e.Node, e.Privilege, rx.Payload, w)
	case OpcodeInvokeRequest:
		respOpcode = uint8(OpcodeInvokeResponse)
		err = HandleInvokeRequest(e.Node, e.Privilege, rx.Payload, w)
	case OpcodeSubscribeRequest, OpcodeTimedRequest:
		// Decoded enough to reach here; this node does not implement
		// subscriptions or timed interactions, so it always fails them.
		err = ErrNotImplemented
	default:
		// Not a request opcode this engine handles: no StatusResponse,
		// no exchange close, just a dropped message (spec.md §8 scenario 6).
		return protocol.No, ErrUnknownIMOpcode
	}

	if err != nil {
		return e.statusResponse(tx, StatusFor(err))
	}

	tx.Opcode = respOpcode
	tx.Payload = wb.Bytes()
	tx.Reliable = true
	return protocol.Yes, nil
}

func (e *Engine) statusResponse(tx *protocol.Tx, status Status) (protocol.ResponseRequired, error) {
	wb := buf.NewWriteBuf(make([]byte, 32))
	if err := wb.Reserve(0); err != nil {
		return protocol.No, err
	}
	w := tlv.NewWriter(wb)
	if err := WriteStatusIB(w, tlv.AnonymousTag(), status); err != nil {
		return protocol.No, err
	}
	tx.Opcode = uint8(OpcodeStatusResponse)
	tx.Payload = wb.Bytes()
	tx.Reliable = true
	return protocol.Yes, nil
}

var _ protocol.Handler = (*Engine)(nil)
