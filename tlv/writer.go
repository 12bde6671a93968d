package tlv

import (
	"math"

	"github.com/ossmatter/matterd/buf"
)

// Writer builds TLV-encoded data into a buf.WriteBuf. It always picks the
// narrowest integer width that losslessly fits the value, and the
// narrowest length-prefix width for strings and byte strings (spec §4.1).
type Writer struct {
	w     *buf.WriteBuf
	depth int
}

// NewWriter wraps w for TLV encoding.
func NewWriter(w *buf.WriteBuf) *Writer {
	return &Writer{w: w}
}

func (wr *Writer) putControl(form TagForm, typ Type, tag Tag) error {
	ctrl := byte(form)<<5 | byte(typ)
	if err := wr.w.AppendByte(ctrl); err != nil {
		return ErrNoSpace
	}
	if err := encodeTag(wr.w, tag); err != nil {
		return ErrNoSpace
	}
	return nil
}

// StartStruct opens a structure container under tag.
func (wr *Writer) StartStruct(tag Tag) error { return wr.startContainer(tag, TypeStruct) }

// StartArray opens an array container under tag.
func (wr *Writer) StartArray(tag Tag) error { return wr.startContainer(tag, TypeArray) }

// StartList opens a list container under tag.
func (wr *Writer) StartList(tag Tag) error { return wr.startContainer(tag, TypeList) }

func (wr *Writer) startContainer(tag Tag, typ Type) error {
	if err := wr.putControl(tag.Form, typ, tag); err != nil {
		return err
	}
	wr.depth++
	return nil
}

// EndContainer closes the most recently opened container.
func (wr *Writer) EndContainer() error {
	if wr.depth == 0 {
		return ErrInvalidTag
	}
	if err := wr.w.AppendByte(byte(TypeEndOfCtr)); err != nil {
		return ErrNoSpace
	}
	wr.depth--
	return nil
}

// PutBool writes a boolean value under tag.
func (wr *Writer) PutBool(tag Tag, v bool) error {
	typ := TypeBoolFalse
	if v {
		typ = TypeBoolTrue
	}
	return wr.putControl(tag.Form, typ, tag)
}

// PutNull writes an explicit null value under tag.
func (wr *Writer) PutNull(tag Tag) error {
	return wr.putControl(tag.Form, TypeNull, tag)
}

// PutInt writes a signed integer, choosing the narrowest width that fits v.
func (wr *Writer) PutInt(tag Tag, v int64) error {
	typ, width := narrowestSigned(v)
	if err := wr.putControl(tag.Form, typ, tag); err != nil {
		return err
	}
	return wr.appendUintWidth(uint64(v), width)
}

// PutUint writes an unsigned integer, choosing the narrowest width that fits v.
func (wr *Writer) PutUint(tag Tag, v uint64) error {
	typ, width := narrowestUnsigned(v)
	if err := wr.putControl(tag.Form, typ, tag); err != nil {
		return err
	}
	return wr.appendUintWidth(v, width)
}

// PutFloat32 writes a 32-bit IEEE-754 float under tag.
func (wr *Writer) PutFloat32(tag Tag, v float32) error {
	if err := wr.putControl(tag.Form, TypeFloat32, tag); err != nil {
		return err
	}
	if err := wr.w.Append(le32(math.Float32bits(v))); err != nil {
		return ErrNoSpace
	}
	return nil
}

// PutFloat64 writes a 64-bit IEEE-754 float under tag.
func (wr *Writer) PutFloat64(tag Tag, v float64) error {
	if err := wr.putControl(tag.Form, TypeFloat64, tag); err != nil {
		return err
	}
	if err := wr.w.Append(le64(math.Float64bits(v))); err != nil {
		return ErrNoSpace
	}
	return nil
}

// PutBytes writes an opaque byte string under tag.
func (wr *Writer) PutBytes(tag Tag, v []byte) error {
	return wr.putLengthPrefixed(tag, v, true)
}

// PutString writes a UTF-8 string under tag.
func (wr *Writer) PutString(tag Tag, v string) error {
	return wr.putLengthPrefixed(tag, []byte(v), false)
}

func (wr *Writer) putLengthPrefixed(tag Tag, v []byte, isBytes bool) error {
	typ, width := narrowestLength(len(v), isBytes)
	if err := wr.putControl(tag.Form, typ, tag); err != nil {
		return err
	}
	if err := wr.appendUintWidth(uint64(len(v)), width); err != nil {
		return err
	}
	if err := wr.w.Append(v); err != nil {
		return ErrNoSpace
	}
	return nil
}

// PutRaw splices in bytes that already hold one fully-encoded, anonymous-
// tagged TLV element (e.g. captured from a scratch Writer). The caller is
// responsible for ensuring b is well-formed; PutRaw does not re-parse it.
func (wr *Writer) PutRaw(b []byte) error {
	if err := wr.w.Append(b); err != nil {
		return ErrNoSpace
	}
	return nil
}

func (wr *Writer) appendUintWidth(v uint64, width int) error {
	var b []byte
	switch width {
	case 1:
		b = []byte{byte(v)}
	case 2:
		b = le16(uint16(v))
	case 4:
		b = le32(uint32(v))
	default:
		b = le64(v)
	}
	if err := wr.w.Append(b); err != nil {
		return ErrNoSpace
	}
	return nil
}

func narrowestSigned(v int64) (Type, int) {
	switch {
	case v >= -128 && v <= 127:
		return TypeSignedInt1, 1
	case v >= -32768 && v <= 32767:
		return TypeSignedInt2, 2
	case v >= -2147483648 && v <= 2147483647:
		return TypeSignedInt4, 4
	default:
		return TypeSignedInt8, 8
	}
}

func narrowestUnsigned(v uint64) (Type, int) {
	switch {
	case v <= 0xFF:
		return TypeUnsignedInt1, 1
	case v <= 0xFFFF:
		return TypeUnsignedInt2, 2
	case v <= 0xFFFFFFFF:
		return TypeUnsignedInt4, 4
	default:
		return TypeUnsignedInt8, 8
	}
}

func narrowestLength(n int, isBytes bool) (Type, int) {
	base := TypeUTF8String1
	if isBytes {
		base = TypeByteString1
	}
	switch {
	case n <= 0xFF:
		return base, 1
	case n <= 0xFFFF:
		return base + 1, 2
	case uint64(n) <= 0xFFFFFFFF:
		return base + 2, 4
	default:
		return base + 3, 8
	}
}
