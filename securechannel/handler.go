package securechannel

import (
	"github.com/ossmatter/matterd/exchange"
	"github.com/ossmatter/matterd/protocol"
	"github.com/ossmatter/matterd/session"
)

// Secure Channel protocol opcodes this node acts on (spec.md §4.9). This
// node never initiates CASE, so it only ever receives Sigma1/Sigma3 and
// sends Sigma2; MRPStandaloneAck and StatusReport are handled by the
// transport loop's own MRP bookkeeping and statusReport below.
const (
	OpcodeSigma1       uint8 = 0x30
	OpcodeSigma2       uint8 = 0x31
	OpcodeSigma3       uint8 = 0x32
	OpcodeStatusReport uint8 = 0x40
)

// Handler is the Secure Channel protocol handler (spec.md §4.6, §4.9). It
// parks one CaseSession per in-flight handshake, keyed by the exchange it
// arrived on, and installs the resulting encrypted session into Sessions
// once Sigma3 completes.
type Handler struct {
	Crypto      Crypto
	Fabrics     FabricMatcher
	LocalNodeID uint64
	Sessions    *session.Manager

	pending map[*exchange.Exchange]*CaseSession
}

func (h *Handler) ProtoID() uint16 { return protocol.SecureChannel }

func (h *Handler) Handle(rx *protocol.Rx, tx *protocol.Tx) (protocol.ResponseRequired, error) {
	if h.pending == nil {
		h.pending = make(map[*exchange.Exchange]*CaseSession)
	}

	switch rx.Header.Opcode {
	case OpcodeSigma1:
		return h.handleSigma1(rx, tx)
	case OpcodeSigma3:
		return h.handleSigma3(rx, tx)
	default:
		return h.statusReport(tx, statusUnsupported)
	}
}

func (h *Handler) handleSigma1(rx *protocol.Rx, tx *protocol.Tx) (protocol.ResponseRequired, error) {
	cs := NewCaseSession(h.Crypto, h.Fabrics, h.LocalNodeID)
	sigma2, err := cs.HandleSigma1(rx.Payload, h.Sessions.ReserveNewSessID())
	if err != nil {
		return h.statusReport(tx, statusForCaseError(err))
	}
	h.pending[rx.Exchange] = cs

	tx.Opcode = OpcodeSigma2
	tx.Payload = sigma2
	tx.Reliable = true
	return protocol.Yes, nil
}

func (h *Handler) handleSigma3(rx *protocol.Rx, tx *protocol.Tx) (protocol.ResponseRequired, error) {
	cs, ok := h.pending[rx.Exchange]
	if !ok {
		return h.statusReport(tx, statusUnsupported)
	}
	delete(h.pending, rx.Exchange)

	clone, err := cs.HandleSigma3(rx.Payload)
	if err != nil {
		return h.statusReport(tx, statusForCaseError(err))
	}

	if _, err := h.Sessions.CloneInto(rx.Session, clone); err != nil {
		return h.statusReport(tx, statusUnsupported)
	}
	rx.Session.Close()
	rx.Exchange.Close()
	return protocol.No, nil
}

// statusReport writes a minimal StatusReport body: just enough for a
// controller to learn the handshake failed. General/protocol status code
// negotiation is out of scope (SPEC_FULL.md Non-goals).
func (h *Handler) statusReport(tx *protocol.Tx, code uint16) (protocol.ResponseRequired, error) {
	tx.Opcode = OpcodeStatusReport
	tx.Payload = []byte{byte(code), byte(code >> 8)}
	tx.Reliable = true
	return protocol.Yes, nil
}

const (
	statusUnsupported       uint16 = 1
	statusNoSharedTrustRoot uint16 = 2
	statusInvalidParam      uint16 = 3
)

func statusForCaseError(err error) uint16 {
	switch err {
	case ErrNoSharedTrustRoots:
		return statusNoSharedTrustRoot
	case ErrSignatureInvalid, ErrInvalidMessage, ErrWrongState:
		return statusInvalidParam
	default:
		return statusUnsupported
	}
}

var _ protocol.Handler = (*Handler)(nil)
