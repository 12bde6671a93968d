package session

import "net"

// CloneData carries the material a completed CASE handshake hands off to
// the session manager to upgrade a pre-secure session into an encrypted
// one (spec.md §4.4, §4.9).
type CloneData struct {
	LocalSessID  uint16
	PeerNodeID   uint64
	SourceNodeID uint64
	SendCipher   Cipher
	RecvCipher   Cipher
}

// Session is one entry of the session table (spec.md §4.4). It is mutated
// only by the transport loop; there is no internal locking (spec.md §5).
type Session struct {
	LocalSessID uint16
	PeerAddr    net.Addr

	encrypted  bool
	sendCipher Cipher
	recvCipher Cipher

	sourceNodeID uint64
	peerNodeID   uint64

	// msgCounter is the next outgoing message counter; it starts at 1 and
	// is strictly increasing for the life of the session (spec.md §5 ii).
	msgCounter uint32

	closed bool
}

// IsEncrypted reports whether the session carries AEAD keys.
func (s *Session) IsEncrypted() bool { return s.encrypted }

// SourceNodeID returns the local node id to use when deriving this
// session's outgoing nonces.
func (s *Session) SourceNodeID() uint64 { return s.sourceNodeID }

// PeerNodeID returns the peer's node id, if known.
func (s *Session) PeerNodeID() uint64 { return s.peerNodeID }

// Closed reports whether the session has been torn down; a closed session
// is a candidate for removal once its exchange table is empty.
func (s *Session) Closed() bool { return s.closed }

// Close marks the session for removal.
func (s *Session) Close() { s.closed = true }

// NextCounter returns the next outgoing message counter and advances it.
func (s *Session) NextCounter() uint32 {
	c := s.msgCounter
	s.msgCounter++
	return c
}

// Encrypt seals plaintext under this session's send cipher, appending the
// result to dst. A session with no encryption keys passes the payload
// through unmodified (spec.md §4.4).
func (s *Session) Encrypt(dst, nonce, plaintext, aad []byte) ([]byte, error) {
	if !s.encrypted || s.sendCipher == nil {
		return append(dst, plaintext...), nil
	}
	return s.sendCipher.Seal(dst, nonce, plaintext, aad), nil
}

// Decrypt opens ciphertext under this session's receive cipher, appending
// the result to dst. A session with no encryption keys passes the payload
// through unmodified.
func (s *Session) Decrypt(dst, nonce, ciphertext, aad []byte) ([]byte, error) {
	if !s.encrypted || s.recvCipher == nil {
		return append(dst, ciphertext...), nil
	}
	out, err := s.recvCipher.Open(dst, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrInvalid
	}
	return out, nil
}
