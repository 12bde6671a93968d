package securechannel

import "errors"

var (
	// ErrInvalidMessage is returned when a Sigma message is malformed or
	// missing a mandatory field.
	ErrInvalidMessage = errors.New("securechannel: invalid message")
	// ErrWrongState is returned when a Sigma message arrives out of order
	// for the session's current handshake state.
	ErrWrongState = errors.New("securechannel: message received out of sequence")
	// ErrNoSharedTrustRoots is returned when the destination id in Sigma1
	// does not resolve to a local fabric.
	ErrNoSharedTrustRoots = errors.New("securechannel: no shared trust roots")
	// ErrSignatureInvalid is returned when a Sigma2/Sigma3 signature fails
	// verification.
	ErrSignatureInvalid = errors.New("securechannel: signature verification failed")
)
