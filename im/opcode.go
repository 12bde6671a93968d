// Package im implements the Interaction Model: opcode dispatch, envelope
// decoding, wildcard path expansion, and status mapping (spec.md §4.7).
package im

// Opcode is the Interaction Model protocol opcode (spec.md §4.7).
type Opcode uint8

const (
	OpcodeReserved          Opcode = 0
	OpcodeStatusResponse    Opcode = 1
	OpcodeReadRequest       Opcode = 2
	OpcodeSubscribeRequest  Opcode = 3
	OpcodeSubscribeResponse Opcode = 4
	OpcodeReportData        Opcode = 5
	OpcodeWriteRequest      Opcode = 6
	OpcodeWriteResponse     Opcode = 7
	OpcodeInvokeRequest     Opcode = 8
	OpcodeInvokeResponse    Opcode = 9
	OpcodeTimedRequest      Opcode = 10
)
