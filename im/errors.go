package im

import "errors"

var (
	// ErrInvalidAction is returned when an envelope within a known,
	// supported opcode cannot be decoded.
	ErrInvalidAction = errors.New("im: invalid action")
	// ErrTimeout is returned when a timed interaction window lapses.
	ErrTimeout = errors.New("im: timed interaction expired")
	// ErrBusy is returned when the node cannot accept a request right now.
	ErrBusy = errors.New("im: busy")
	// ErrNotImplemented is returned by opcodes this node decodes but does
	// not act on (Subscribe, Timed). StatusFor maps it to StatusFailure.
	ErrNotImplemented = errors.New("im: not implemented")
	// ErrUnknownIMOpcode is returned for any incoming opcode other than
	// Read, Write, Invoke, Subscribe or Timed requests: opcodes outside the
	// defined Interaction Model space, and also Reserved and the response
	// opcodes (StatusResponse, SubscribeResponse, ReportData, WriteResponse,
	// InvokeResponse). spec.md §8 scenario 6: this yields no response
	// message at all, distinct from a decodable-but-unsupported opcode
	// like Subscribe/Timed, which does reply with a Failure status.
	ErrUnknownIMOpcode = errors.New("im: unknown opcode")
)
