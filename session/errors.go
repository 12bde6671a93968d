package session

import "errors"

var (
	// ErrNoSession is returned when no session matches the requested id/peer.
	ErrNoSession = errors.New("session: no matching session")
	// ErrNoSpace is returned when the session table is at capacity.
	ErrNoSpace = errors.New("session: table full")
	// ErrInvalid is returned for a malformed request (e.g. a ciphertext
	// that fails authentication).
	ErrInvalid = errors.New("session: invalid")
)
