// Package protocol implements the protocol-id demux that sits between the
// transport loop and the Secure Channel / Interaction Model handlers
// (spec.md §4.6).
package protocol

import (
	"errors"

	"github.com/ossmatter/matterd/exchange"
	"github.com/ossmatter/matterd/message"
	"github.com/ossmatter/matterd/session"
)

// Protocol ids registered by this spec.
const (
	SecureChannel    uint16 = 0x00
	InteractionModel uint16 = 0x01
)

// ErrUnknownProtocol is returned when no handler is registered for the
// incoming message's protocol id.
var ErrUnknownProtocol = errors.New("protocol: unknown protocol id")

// ResponseRequired tells the transport loop whether Handle wrote a
// response to Tx that must be sent.
type ResponseRequired bool

const (
	No  ResponseRequired = false
	Yes ResponseRequired = true
)

// Rx carries one decrypted, demultiplexed message to a protocol handler.
type Rx struct {
	Session  *session.Session
	Exchange *exchange.Exchange
	Header   message.ProtoHeader
	Payload  []byte
}

// Tx is the handler's output: the opcode and payload of a response message
// on the same exchange. Reliability (whether this response is sent as an
// MRP-reliable message) is decided by the handler via Reliable.
type Tx struct {
	Opcode    uint8
	Payload   []byte
	Reliable  bool
}

// Handler is one registered protocol (spec.md §4.6).
type Handler interface {
	ProtoID() uint16
	Handle(rx *Rx, tx *Tx) (ResponseRequired, error)
}

// Registry maps protocol id to handler.
type Registry struct {
	handlers map[uint16]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[uint16]Handler)}
}

// Register adds h, keyed by h.ProtoID().
func (r *Registry) Register(h Handler) {
	r.handlers[h.ProtoID()] = h
}

// Dispatch routes rx to the handler registered for rx.Header.ProtocolID.
func (r *Registry) Dispatch(rx *Rx, tx *Tx) (ResponseRequired, error) {
	h, ok := r.handlers[rx.Header.ProtocolID]
	if !ok {
		return No, ErrUnknownProtocol
	}
	return h.Handle(rx, tx)
}
