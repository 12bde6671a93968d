package tlv

// Element is one decoded (tag, value) pair produced by the Reader. It
// borrows its byte-valued fields (Bytes) directly from the buffer handed to
// NewReader; the borrow must not outlive that buffer (spec §3, TLVElement).
type Element struct {
	Tag  Tag
	Type Type

	Int     int64  // valid when Type is a signed integer
	Uint    uint64 // valid when Type is an unsigned integer or bool (0/1)
	Float64 float64
	Bytes   []byte // valid for UTF8String/ByteString; borrowed, do not retain
}

// IsContainer reports whether Type is Struct, Array, or List.
func (e Element) IsContainer() bool { return isContainerType(e.Type) }

// Bool returns the element's boolean value; it is only meaningful when
// Type is TypeBoolFalse or TypeBoolTrue.
func (e Element) Bool() bool { return e.Type == TypeBoolTrue }

// String returns the element's UTF-8 string value. This copies Bytes into
// a Go string.
func (e Element) String() string { return string(e.Bytes) }
