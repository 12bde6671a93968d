package exchange

import "time"

// Exchange is one entry of the exchange table, keyed by
// (SessionLocalID, ExchangeID, PeerInitiator) (spec.md §4.5).
type Exchange struct {
	SessionLocalID uint16
	ExchangeID     uint16
	// PeerInitiator is true when the peer opened this exchange; an
	// unknown exchange id on receive allocates one with PeerInitiator=true
	// (this node is the Responder).
	PeerInitiator bool

	closed bool

	// pendingAck is set when an inbound reliable message needs a standalone
	// ACK flushed after this receive+handle cycle, unless a reliable
	// response on the same exchange piggybacks it first.
	pendingAck bool
	ackCounter uint32

	rt *retransmit
}

// Closed reports whether this exchange has been closed by its protocol
// handler.
func (e *Exchange) Closed() bool { return e.closed }

// Close marks the exchange closed; it becomes eligible for purge once no
// MRP state remains (spec.md §4.5).
func (e *Exchange) Close() { e.closed = true }

// PurgeEligible reports whether the exchange can be removed from the table.
func (e *Exchange) PurgeEligible() bool {
	return e.closed && !e.pendingAck && e.rt == nil
}

// OnReceiveAck cancels the pending retransmit matching ackCounter, if any
// (spec.md §4.5 MRP on receive).
func (e *Exchange) OnReceiveAck(ackCounter uint32) {
	if e.rt != nil && e.rt.counter == ackCounter {
		e.rt = nil
	}
}

// OnReceiveReliable records that msgCounter needs a standalone ACK, unless
// a reliable response on this exchange piggybacks it first (spec.md §4.5).
func (e *Exchange) OnReceiveReliable(msgCounter uint32) {
	e.pendingAck = true
	e.ackCounter = msgCounter
}

// PendingAck reports a counter awaiting a standalone ACK and whether one
// is outstanding.
func (e *Exchange) PendingAck() (uint32, bool) {
	return e.ackCounter, e.pendingAck
}

// ClearPendingAck clears the standalone-ACK obligation, either because it
// was piggybacked onto a response or because the standalone ACK was sent.
func (e *Exchange) ClearPendingAck() {
	e.pendingAck = false
}

// PrepareSend computes the ack-msg-counter to attach to an outgoing
// message (the most recent unacknowledged inbound counter, if any) and,
// when reliable is true, arms a retransmit for msgCounter (spec.md §4.5
// MRP on send). It clears any pending standalone-ACK obligation, since a
// reliable response piggybacks the ACK.
func (e *Exchange) PrepareSend(reliable bool, msgCounter uint32, payload []byte, cfg RetransmitConfig, now time.Time) (ackCounter uint32, hasAck bool) {
	ackCounter, hasAck = e.ackCounter, e.pendingAck
	if hasAck {
		e.ClearPendingAck()
	}
	if reliable {
		e.rt = newRetransmit(msgCounter, payload, cfg, now)
	}
	return ackCounter, hasAck
}

// DueRetransmit returns the payload to resend if the armed retransmit's
// deadline has passed, advancing its backoff. ok is false when nothing is
// due. When the retry budget is exhausted the exchange is closed and
// ErrTimeout is returned.
func (e *Exchange) DueRetransmit(cfg RetransmitConfig, now time.Time) (payload []byte, ok bool, err error) {
	if e.rt == nil || !e.rt.due(now) {
		return nil, false, nil
	}
	if !e.rt.advance(cfg, now) {
		e.rt = nil
		e.closed = true
		return nil, false, ErrTimeout
	}
	return e.rt.payload, true, nil
}
