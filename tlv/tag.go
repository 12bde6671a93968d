package tlv

import "github.com/ossmatter/matterd/buf"

// Tag identifies an element within its enclosing container (spec §4.1/§6).
// Only the fields relevant to Form are meaningful; the constructors below
// are the supported way to build one.
type Tag struct {
	Form       TagForm
	VendorID   uint16
	ProfileNum uint16
	Number     uint32
}

// AnonymousTag returns the tag used for untagged array/list elements.
func AnonymousTag() Tag { return Tag{Form: FormAnonymous} }

// ContextTag returns a 1-byte context tag, the form used throughout the
// Interaction Model envelopes in this spec.
func ContextTag(n uint8) Tag { return Tag{Form: FormContext, Number: uint32(n)} }

// CommonProfileTag16 returns a 2-byte common-profile tag.
func CommonProfileTag16(n uint16) Tag {
	return Tag{Form: FormCommonProfile16, Number: uint32(n)}
}

// CommonProfileTag32 returns a 4-byte common-profile tag.
func CommonProfileTag32(n uint32) Tag {
	return Tag{Form: FormCommonProfile32, Number: n}
}

// ImplicitProfileTag16 returns a 2-byte implicit-profile tag.
func ImplicitProfileTag16(n uint16) Tag {
	return Tag{Form: FormImplicitProfile16, Number: uint32(n)}
}

// ImplicitProfileTag32 returns a 4-byte implicit-profile tag.
func ImplicitProfileTag32(n uint32) Tag {
	return Tag{Form: FormImplicitProfile32, Number: n}
}

// FullyQualifiedTag48 returns a 6-byte fully qualified tag (16-bit number).
func FullyQualifiedTag48(vendor, profile uint16, n uint16) Tag {
	return Tag{Form: FormFullyQualified48, VendorID: vendor, ProfileNum: profile, Number: uint32(n)}
}

// FullyQualifiedTag64 returns an 8-byte fully qualified tag (32-bit number).
func FullyQualifiedTag64(vendor, profile uint16, n uint32) Tag {
	return Tag{Form: FormFullyQualified64, VendorID: vendor, ProfileNum: profile, Number: n}
}

// IsContext reports whether t is a 1-byte context tag with the given number.
func (t Tag) IsContext(n uint8) bool {
	return t.Form == FormContext && t.Number == uint32(n)
}

func encodeTag(w *buf.WriteBuf, t Tag) error {
	switch t.Form {
	case FormAnonymous:
		return nil
	case FormContext:
		return w.AppendByte(byte(t.Number))
	case FormCommonProfile16, FormImplicitProfile16:
		return w.Append(le16(uint16(t.Number)))
	case FormCommonProfile32, FormImplicitProfile32:
		return w.Append(le32(t.Number))
	case FormFullyQualified48:
		b := append(le16(t.VendorID), le16(t.ProfileNum)...)
		b = append(b, le16(uint16(t.Number))...)
		return w.Append(b)
	case FormFullyQualified64:
		b := append(le16(t.VendorID), le16(t.ProfileNum)...)
		b = append(b, le32(t.Number)...)
		return w.Append(b)
	default:
		return ErrInvalidTag
	}
}

func decodeTag(p *buf.ParseBuf, f TagForm) (Tag, error) {
	switch f {
	case FormAnonymous:
		return Tag{Form: FormAnonymous}, nil
	case FormContext:
		b, err := p.U8()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Form: FormContext, Number: uint32(b)}, nil
	case FormCommonProfile16, FormImplicitProfile16:
		n, err := p.U16()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Form: f, Number: uint32(n)}, nil
	case FormCommonProfile32, FormImplicitProfile32:
		n, err := p.U32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Form: f, Number: n}, nil
	case FormFullyQualified48:
		vendor, err := p.U16()
		if err != nil {
			return Tag{}, err
		}
		profile, err := p.U16()
		if err != nil {
			return Tag{}, err
		}
		n, err := p.U16()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Form: f, VendorID: vendor, ProfileNum: profile, Number: uint32(n)}, nil
	case FormFullyQualified64:
		vendor, err := p.U16()
		if err != nil {
			return Tag{}, err
		}
		profile, err := p.U16()
		if err != nil {
			return Tag{}, err
		}
		n, err := p.U32()
		if err != nil {
			return Tag{}, err
		}
		return Tag{Form: f, VendorID: vendor, ProfileNum: profile, Number: n}, nil
	default:
		return Tag{}, ErrInvalidData
	}
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
