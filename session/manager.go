package session

import "net"

// Manager is the fixed-capacity session table (spec.md §4.4). It is
// mutated only by the transport loop and holds no internal lock, matching
// the single-threaded core-state model (spec.md §5).
type Manager struct {
	slots  []*Session
	nextID uint16
}

// NewManager allocates a table with room for capacity sessions.
func NewManager(capacity int) *Manager {
	return &Manager{slots: make([]*Session, capacity), nextID: 1}
}

// Add allocates a plain-text session for peer with local_sess_id=0,
// reserved for pre-CASE traffic (spec.md §4.4).
func (m *Manager) Add(peer net.Addr) (*Session, error) {
	slot := m.freeSlot()
	if slot < 0 {
		return nil, ErrNoSpace
	}
	s := &Session{LocalSessID: 0, PeerAddr: peer, msgCounter: 1}
	m.slots[slot] = s
	return s, nil
}

// GetOrAdd matches on (sessID, peer, encrypted); when sessID is 0 and the
// incoming message is unencrypted and no match exists, a new session is
// allocated (spec.md §4.4).
func (m *Manager) GetOrAdd(sessID uint16, peer net.Addr, encrypted bool) (*Session, error) {
	if s := m.find(sessID, peer, encrypted); s != nil {
		return s, nil
	}
	if sessID == 0 && !encrypted {
		return m.Add(peer)
	}
	return nil, ErrNoSession
}

// GetWithID looks up a session by its local id alone, ignoring peer
// address — used when resuming an identity already anchored by CASE.
func (m *Manager) GetWithID(sessID uint16) (*Session, error) {
	for _, s := range m.slots {
		if s != nil && s.LocalSessID == sessID {
			return s, nil
		}
	}
	return nil, ErrNoSession
}

// ReserveNewSessID returns the next session id, wrapping past uint16 max
// and skipping both 0 and any id currently occupying a slot.
func (m *Manager) ReserveNewSessID() uint16 {
	for {
		id := m.nextID
		if m.nextID == 0xFFFF {
			m.nextID = 1
		} else {
			m.nextID++
		}
		if id == 0 || m.idInUse(id) {
			continue
		}
		return id
	}
}

// CloneInto creates a new, encrypted session adopting fresh keys and ids
// from a completed CASE handshake. The source session src is left
// untouched; callers close it once the clone is in place. The new
// session's message counter resets to 1 (spec.md §4.4).
func (m *Manager) CloneInto(src *Session, data CloneData) (*Session, error) {
	slot := m.freeSlot()
	if slot < 0 {
		return nil, ErrNoSpace
	}
	s := &Session{
		LocalSessID:  data.LocalSessID,
		PeerAddr:     src.PeerAddr,
		encrypted:    true,
		sendCipher:   data.SendCipher,
		recvCipher:   data.RecvCipher,
		sourceNodeID: data.SourceNodeID,
		peerNodeID:   data.PeerNodeID,
		msgCounter:   1,
	}
	m.slots[slot] = s
	return s, nil
}

// Remove drops s from the table.
func (m *Manager) Remove(s *Session) {
	for i, slot := range m.slots {
		if slot == s {
			m.slots[i] = nil
			return
		}
	}
}

// Purge removes every closed session with no remaining references the
// caller still needs; the transport loop calls this once per iteration.
func (m *Manager) Purge() {
	for i, slot := range m.slots {
		if slot != nil && slot.closed {
			m.slots[i] = nil
		}
	}
}

// All returns every occupied slot, for callers that need to reconcile
// their own session-keyed state (e.g. the transport loop's replay
// window) against what is still live.
func (m *Manager) All() []*Session {
	out := make([]*Session, 0, len(m.slots))
	for _, s := range m.slots {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of occupied slots.
func (m *Manager) Len() int {
	n := 0
	for _, s := range m.slots {
		if s != nil {
			n++
		}
	}
	return n
}

func (m *Manager) find(sessID uint16, peer net.Addr, encrypted bool) *Session {
	for _, s := range m.slots {
		if s == nil {
			continue
		}
		if s.LocalSessID == sessID && s.encrypted == encrypted && sameAddr(s.PeerAddr, peer) {
			return s
		}
	}
	return nil
}

func (m *Manager) idInUse(id uint16) bool {
	for _, s := range m.slots {
		if s != nil && s.LocalSessID == id {
			return true
		}
	}
	return false
}

func (m *Manager) freeSlot() int {
	for i, s := range m.slots {
		if s == nil {
			return i
		}
	}
	return -1
}

func sameAddr(a, b net.Addr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.String() == b.String()
}
