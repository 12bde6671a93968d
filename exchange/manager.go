package exchange

import "time"

// Manager is the fixed-capacity exchange table (spec.md §4.5), mutated
// only by the transport loop (spec.md §5).
type Manager struct {
	exchanges []*Exchange
	cfg       RetransmitConfig
}

// NewManager allocates a table with room for capacity exchanges.
func NewManager(capacity int, cfg RetransmitConfig) *Manager {
	return &Manager{exchanges: make([]*Exchange, capacity), cfg: cfg}
}

// Config returns the manager's retransmit configuration.
func (m *Manager) Config() RetransmitConfig { return m.cfg }

// Lookup finds an exchange by its full key.
func (m *Manager) Lookup(sessionLocalID, exchangeID uint16, peerInitiator bool) (*Exchange, bool) {
	for _, e := range m.exchanges {
		if e != nil && e.SessionLocalID == sessionLocalID && e.ExchangeID == exchangeID && e.PeerInitiator == peerInitiator {
			return e, true
		}
	}
	return nil, false
}

// GetOrCreateResponder looks up an exchange on receive; an unknown
// exchange id allocates a new Responder-role exchange (spec.md §4.5).
func (m *Manager) GetOrCreateResponder(sessionLocalID, exchangeID uint16) (*Exchange, error) {
	if e, ok := m.Lookup(sessionLocalID, exchangeID, true); ok {
		return e, nil
	}
	slot := m.freeSlot()
	if slot < 0 {
		return nil, ErrNoSpace
	}
	e := &Exchange{SessionLocalID: sessionLocalID, ExchangeID: exchangeID, PeerInitiator: true}
	m.exchanges[slot] = e
	return e, nil
}

// CreateInitiator allocates an exchange this node opens as initiator (used
// when this node sends the first message of a new exchange, e.g. CASE).
func (m *Manager) CreateInitiator(sessionLocalID, exchangeID uint16) (*Exchange, error) {
	slot := m.freeSlot()
	if slot < 0 {
		return nil, ErrNoSpace
	}
	e := &Exchange{SessionLocalID: sessionLocalID, ExchangeID: exchangeID, PeerInitiator: false}
	m.exchanges[slot] = e
	return e, nil
}

// PendingAcks returns every exchange with a standalone ACK still owed; the
// transport loop flushes these after each receive+handle cycle (spec.md
// §4.5).
func (m *Manager) PendingAcks() []*Exchange {
	var out []*Exchange
	for _, e := range m.exchanges {
		if e != nil {
			if _, pending := e.PendingAck(); pending {
				out = append(out, e)
			}
		}
	}
	return out
}

// DueRetransmit pairs an exchange with the payload its armed retransmit
// needs resent.
type DueRetransmit struct {
	Exchange *Exchange
	Payload  []byte
}

// PollRetransmits checks every exchange's armed retransmit against now,
// returning those due for resend. An exchange whose retry budget is
// exhausted is closed by Exchange.DueRetransmit itself and omitted here
// (spec.md §5 cancellation: give-up closes the exchange).
func (m *Manager) PollRetransmits(now time.Time) []DueRetransmit {
	var out []DueRetransmit
	for _, e := range m.exchanges {
		if e == nil {
			continue
		}
		payload, ok, _ := e.DueRetransmit(m.cfg, now)
		if ok {
			out = append(out, DueRetransmit{Exchange: e, Payload: payload})
		}
	}
	return out
}

// Purge removes exchanges that are closed with no outstanding MRP state
// (spec.md §4.5).
func (m *Manager) Purge() {
	for i, e := range m.exchanges {
		if e != nil && e.PurgeEligible() {
			m.exchanges[i] = nil
		}
	}
}

// Len returns the number of occupied slots.
func (m *Manager) Len() int {
	n := 0
	for _, e := range m.exchanges {
		if e != nil {
			n++
		}
	}
	return n
}

func (m *Manager) freeSlot() int {
	for i, e := range m.exchanges {
		if e == nil {
			return i
		}
	}
	return -1
}
