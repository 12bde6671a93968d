package tlv

// Type is the 5-bit element type encoded in the low bits of the control
// octet (spec §4.1). Values match the Matter TLV wire encoding exactly.
type Type uint8

const (
	TypeSignedInt1   Type = 0x00
	TypeSignedInt2   Type = 0x01
	TypeSignedInt4   Type = 0x02
	TypeSignedInt8   Type = 0x03
	TypeUnsignedInt1 Type = 0x04
	TypeUnsignedInt2 Type = 0x05
	TypeUnsignedInt4 Type = 0x06
	TypeUnsignedInt8 Type = 0x07
	TypeBoolFalse    Type = 0x08
	TypeBoolTrue     Type = 0x09
	TypeFloat32      Type = 0x0A
	TypeFloat64      Type = 0x0B
	TypeUTF8String1  Type = 0x0C
	TypeUTF8String2  Type = 0x0D
	TypeUTF8String4  Type = 0x0E
	TypeUTF8String8  Type = 0x0F
	TypeByteString1  Type = 0x10
	TypeByteString2  Type = 0x11
	TypeByteString4  Type = 0x12
	TypeByteString8  Type = 0x13
	TypeNull         Type = 0x14
	TypeStruct       Type = 0x15
	TypeArray        Type = 0x16
	TypeList         Type = 0x17
	TypeEndOfCtr     Type = 0x18

	typeMask = 0x1F
)

func isContainerType(t Type) bool {
	return t == TypeStruct || t == TypeArray || t == TypeList
}

func isSignedInt(t Type) bool {
	return t >= TypeSignedInt1 && t <= TypeSignedInt8
}

func isUnsignedInt(t Type) bool {
	return t >= TypeUnsignedInt1 && t <= TypeUnsignedInt8
}

func isUTF8String(t Type) bool {
	return t >= TypeUTF8String1 && t <= TypeUTF8String8
}

func isByteString(t Type) bool {
	return t >= TypeByteString1 && t <= TypeByteString8
}

// widthOf returns the byte width encoded by an integer or length-prefix type.
func widthOf(t Type) int {
	switch t % 4 {
	case 0:
		return 1
	case 1:
		return 2
	case 2:
		return 4
	default:
		return 8
	}
}

// TagForm identifies how a tag is encoded on the wire (spec §4.1).
type TagForm uint8

const (
	FormAnonymous TagForm = iota
	FormContext
	FormCommonProfile16
	FormCommonProfile32
	FormImplicitProfile16
	FormImplicitProfile32
	FormFullyQualified48
	FormFullyQualified64
)

// tagByteLen returns the number of tag bytes following the control octet.
func tagByteLen(f TagForm) int {
	switch f {
	case FormAnonymous:
		return 0
	case FormContext:
		return 1
	case FormCommonProfile16, FormImplicitProfile16:
		return 2
	case FormCommonProfile32, FormImplicitProfile32:
		return 4
	case FormFullyQualified48:
		return 6
	case FormFullyQualified64:
		return 8
	default:
		return -1
	}
}
