// Package message implements Matter's unencrypted Plain Header and the
// Proto Header carried inside the encrypted payload (spec §4.3).
package message

import (
	"github.com/ossmatter/matterd/buf"
)

const (
	messageVersion  = 0
	flagVersionShift = 4
	flagSourcePresent = 1 << 2
	flagDestNodeID    = 1 << 0
	flagDestGroupID   = 1 << 1
	flagDestMask      = flagDestNodeID | flagDestGroupID

	secFlagEncrypted = 1 << 0

	nodeIDSize  = 8
	groupIDSize = 2

	// MinPlainHeaderSize is flags(1) + session id(2) + security flags(1) + counter(4).
	MinPlainHeaderSize = 8
)

// DestType identifies which optional destination field, if any, follows
// the source node id in a Plain Header.
type DestType uint8

const (
	DestNone DestType = iota
	DestNodeID
	DestGroupID
)

func (d DestType) size() int {
	switch d {
	case DestNodeID:
		return nodeIDSize
	case DestGroupID:
		return groupIDSize
	default:
		return 0
	}
}

// PlainHeader is the unencrypted prefix of every Matter message; its bytes
// also serve as the AAD for AEAD (spec §4.3).
type PlainHeader struct {
	Encrypted      bool
	SessionID      uint16
	AckRequired    bool
	MessageCounter uint32

	SourcePresent bool
	SourceNodeID  uint64

	DestType       DestType
	DestNodeID     uint64
	DestGroupID    uint16
}

// Size returns the encoded length in bytes.
func (h *PlainHeader) Size() int {
	n := MinPlainHeaderSize
	if h.SourcePresent {
		n += nodeIDSize
	}
	n += h.DestType.size()
	return n
}

// Encode appends the header to w, e.g. as the AAD prefix of an outgoing
// datagram.
func (h *PlainHeader) Encode(w *buf.WriteBuf) error {
	flags := byte(messageVersion << flagVersionShift)
	if h.SourcePresent {
		flags |= flagSourcePresent
	}
	switch h.DestType {
	case DestNodeID:
		flags |= flagDestNodeID
	case DestGroupID:
		flags |= flagDestGroupID
	}
	if err := w.AppendByte(flags); err != nil {
		return err
	}
	if err := w.Append(le16(h.SessionID)); err != nil {
		return err
	}
	secFlags := byte(0)
	if h.Encrypted {
		secFlags |= secFlagEncrypted
	}
	if err := w.AppendByte(secFlags); err != nil {
		return err
	}
	if err := w.Append(le32(h.MessageCounter)); err != nil {
		return err
	}
	if h.SourcePresent {
		if err := w.Append(le64(h.SourceNodeID)); err != nil {
			return err
		}
	}
	switch h.DestType {
	case DestNodeID:
		if err := w.Append(le64(h.DestNodeID)); err != nil {
			return err
		}
	case DestGroupID:
		if err := w.Append(le16(h.DestGroupID)); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a Plain Header from p.
func Decode(p *buf.ParseBuf) (PlainHeader, error) {
	var h PlainHeader
	if p.Remaining() < MinPlainHeaderSize {
		return h, ErrTooShort
	}
	flags, err := p.U8()
	if err != nil {
		return h, ErrTooShort
	}
	if flags>>flagVersionShift != messageVersion {
		return h, ErrInvalidVersion
	}
	h.SourcePresent = flags&flagSourcePresent != 0
	switch flags & flagDestMask {
	case flagDestNodeID:
		h.DestType = DestNodeID
	case flagDestGroupID:
		h.DestType = DestGroupID
	case 0:
		h.DestType = DestNone
	default:
		return h, ErrInvalidFlags
	}

	sessID, err := p.U16()
	if err != nil {
		return h, ErrTooShort
	}
	h.SessionID = sessID

	secFlags, err := p.U8()
	if err != nil {
		return h, ErrTooShort
	}
	h.Encrypted = secFlags&secFlagEncrypted != 0
	h.AckRequired = false // carried on the Proto Header, not here

	ctr, err := p.U32()
	if err != nil {
		return h, ErrTooShort
	}
	h.MessageCounter = ctr

	if h.SourcePresent {
		v, err := p.U64()
		if err != nil {
			return h, ErrTooShort
		}
		h.SourceNodeID = v
	}
	switch h.DestType {
	case DestNodeID:
		v, err := p.U64()
		if err != nil {
			return h, ErrTooShort
		}
		h.DestNodeID = v
	case DestGroupID:
		v, err := p.U16()
		if err != nil {
			return h, ErrTooShort
		}
		h.DestGroupID = v
	}
	return h, nil
}

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
func le32(v uint32) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)} }
func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
