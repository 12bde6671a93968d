package message

import "errors"

var (
	// ErrTooShort is returned when a header decode runs out of bytes.
	ErrTooShort = errors.New("message: header too short")
	// ErrInvalidVersion is returned for an unsupported message version.
	ErrInvalidVersion = errors.New("message: invalid version")
	// ErrInvalidFlags is returned when a flags byte encodes a combination
	// this node does not support (both destination-size bits set, which
	// names no destination type).
	ErrInvalidFlags = errors.New("message: invalid flags")
)
