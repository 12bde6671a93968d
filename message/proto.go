package message

import "github.com/ossmatter/matterd/buf"

const (
	exFlagInitiator        = 1 << 0
	exFlagAckPresent       = 1 << 1
	exFlagReliable         = 1 << 2
	exFlagSecuredExtension = 1 << 3
	exFlagVendorPresent    = 1 << 4

	// MinProtoHeaderSize is exchange flags(1) + opcode(1) + exchange id(2) + protocol id(2).
	MinProtoHeaderSize = 6
)

// ProtoHeader prefixes the decrypted payload of every Matter message
// (spec §4.3). ProtocolID selects the demux target (§4.6); Opcode is
// interpreted within that protocol's own opcode space.
type ProtoHeader struct {
	Initiator  bool
	Reliable   bool
	Opcode     uint8
	ExchangeID uint16
	ProtocolID uint16

	VendorPresent bool
	VendorID      uint16

	AckPresent    bool
	AckCounter    uint32

	SecuredExtension []byte
}

// Size returns the encoded length in bytes.
func (h *ProtoHeader) Size() int {
	n := MinProtoHeaderSize
	if h.VendorPresent {
		n += 2
	}
	if h.AckPresent {
		n += 4
	}
	if h.SecuredExtension != nil {
		n += 2 + len(h.SecuredExtension)
	}
	return n
}

// Encode appends the header to w.
func (h *ProtoHeader) Encode(w *buf.WriteBuf) error {
	flags := byte(0)
	if h.Initiator {
		flags |= exFlagInitiator
	}
	if h.AckPresent {
		flags |= exFlagAckPresent
	}
	if h.Reliable {
		flags |= exFlagReliable
	}
	if h.SecuredExtension != nil {
		flags |= exFlagSecuredExtension
	}
	if h.VendorPresent {
		flags |= exFlagVendorPresent
	}
	if err := w.AppendByte(flags); err != nil {
		return err
	}
	if err := w.AppendByte(h.Opcode); err != nil {
		return err
	}
	if err := w.Append(le16(h.ExchangeID)); err != nil {
		return err
	}
	if err := w.Append(le16(h.ProtocolID)); err != nil {
		return err
	}
	if h.VendorPresent {
		if err := w.Append(le16(h.VendorID)); err != nil {
			return err
		}
	}
	if h.AckPresent {
		if err := w.Append(le32(h.AckCounter)); err != nil {
			return err
		}
	}
	if h.SecuredExtension != nil {
		if err := w.Append(le16(uint16(len(h.SecuredExtension)))); err != nil {
			return err
		}
		if err := w.Append(h.SecuredExtension); err != nil {
			return err
		}
	}
	return nil
}

// DecodeProto reads a Proto Header from p.
func DecodeProto(p *buf.ParseBuf) (ProtoHeader, error) {
	var h ProtoHeader
	if p.Remaining() < MinProtoHeaderSize {
		return h, ErrTooShort
	}
	flags, err := p.U8()
	if err != nil {
		return h, ErrTooShort
	}
	h.Initiator = flags&exFlagInitiator != 0
	h.AckPresent = flags&exFlagAckPresent != 0
	h.Reliable = flags&exFlagReliable != 0
	hasExt := flags&exFlagSecuredExtension != 0
	h.VendorPresent = flags&exFlagVendorPresent != 0

	opcode, err := p.U8()
	if err != nil {
		return h, ErrTooShort
	}
	h.Opcode = opcode

	exID, err := p.U16()
	if err != nil {
		return h, ErrTooShort
	}
	h.ExchangeID = exID

	protoID, err := p.U16()
	if err != nil {
		return h, ErrTooShort
	}
	h.ProtocolID = protoID

	if h.VendorPresent {
		v, err := p.U16()
		if err != nil {
			return h, ErrTooShort
		}
		h.VendorID = v
	}
	if h.AckPresent {
		v, err := p.U32()
		if err != nil {
			return h, ErrTooShort
		}
		h.AckCounter = v
	}
	if hasExt {
		n, err := p.U16()
		if err != nil {
			return h, ErrTooShort
		}
		b, err := p.Take(int(n))
		if err != nil {
			return h, ErrTooShort
		}
		h.SecuredExtension = b
	}
	return h, nil
}
