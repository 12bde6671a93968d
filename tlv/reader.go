package tlv

import (
	"math"

	"github.com/ossmatter/matterd/buf"
)

// Reader is a streaming, zero-copy TLV iterator (spec §4.1). A Reader walks
// one container level at a time: top-level elements via NewReader, nested
// struct/array/list contents via EnterContainer. Truncated tags, unknown
// types, or length overruns end iteration with no element returned rather
// than panicking — the reader is fail-closed by construction.
type Reader struct {
	p         *buf.ParseBuf
	pending   bool // last Next() returned a container not yet entered
	exhausted bool
}

// NewReader creates a top-level reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{p: buf.NewParseBuf(data)}
}

// Next decodes and returns the next element at the current nesting level.
// ok is false once the container (or buffer) is exhausted; it stays false
// on every subsequent call.
func (r *Reader) Next() (Element, bool) {
	if r.exhausted {
		return Element{}, false
	}
	if r.pending {
		if err := r.skipPendingContainer(); err != nil {
			r.exhausted = true
			return Element{}, false
		}
		r.pending = false
	}
	if r.p.Remaining() == 0 {
		r.exhausted = true
		return Element{}, false
	}
	ctrl, err := r.p.U8()
	if err != nil {
		r.exhausted = true
		return Element{}, false
	}
	typ := Type(ctrl & typeMask)
	form := TagForm(ctrl >> 5)

	if typ == TypeEndOfCtr {
		// Natural close of a container we're inside, or a stray end tag at
		// the top level (malformed) -- either way, iteration ends here.
		r.exhausted = true
		return Element{}, false
	}

	tag, err := decodeTag(r.p, form)
	if err != nil {
		r.exhausted = true
		return Element{}, false
	}

	elem := Element{Tag: tag, Type: typ}
	if isContainerType(typ) {
		r.pending = true
		return elem, true
	}
	if err := decodeValue(r.p, typ, &elem); err != nil {
		r.exhausted = true
		return Element{}, false
	}
	return elem, true
}

// EnterContainer descends into the struct/array/list element most recently
// returned by Next. The caller must eventually pass the returned reader to
// ExitContainer (directly or by draining it with Next until ok is false)
// before resuming reads on r.
func (r *Reader) EnterContainer(e Element) (*Reader, error) {
	if !e.IsContainer() {
		return nil, ErrTLVTypeMismatch
	}
	if !r.pending {
		return nil, ErrInvalidData
	}
	r.pending = false
	return &Reader{p: r.p}, nil
}

// ExitContainer drains any remaining elements of a child reader obtained
// from EnterContainer, leaving the parent's cursor correctly positioned
// just past the child's end-of-container marker.
func (r *Reader) ExitContainer(child *Reader) error {
	for {
		e, ok := child.Next()
		if !ok {
			break
		}
		if e.IsContainer() {
			if err := child.skipPendingContainer(); err != nil {
				return err
			}
			child.pending = false
		}
	}
	return nil
}

// skipPendingContainer discards the entire contents (recursively) of the
// container most recently returned by Next, without exposing it as a
// sub-reader. Used both when the caller never calls EnterContainer and
// internally by ExitContainer for further-nested, un-entered containers.
func (r *Reader) skipPendingContainer() error {
	child := &Reader{p: r.p}
	return r.ExitContainer(child)
}

// FindTag performs a linear search for a context-tagged child at the
// current level, consuming elements until it is found or the level is
// exhausted (spec §4.1 find_tag).
func (r *Reader) FindTag(ctx uint8) (Element, bool) {
	for {
		e, ok := r.Next()
		if !ok {
			return Element{}, false
		}
		if e.Tag.IsContext(ctx) {
			return e, true
		}
		if e.IsContainer() {
			if err := r.skipPendingContainer(); err != nil {
				return Element{}, false
			}
			r.pending = false
		}
	}
}

func decodeValue(p *buf.ParseBuf, typ Type, elem *Element) error {
	switch {
	case isSignedInt(typ):
		raw, err := readUintWidth(p, widthOf(typ))
		if err != nil {
			return err
		}
		elem.Int = signExtend(raw, widthOf(typ))
		return nil
	case isUnsignedInt(typ):
		raw, err := readUintWidth(p, widthOf(typ))
		if err != nil {
			return err
		}
		elem.Uint = raw
		return nil
	case typ == TypeBoolFalse:
		elem.Uint = 0
		return nil
	case typ == TypeBoolTrue:
		elem.Uint = 1
		return nil
	case typ == TypeFloat32:
		raw, err := p.U32()
		if err != nil {
			return err
		}
		elem.Float64 = float64(math.Float32frombits(raw))
		return nil
	case typ == TypeFloat64:
		raw, err := p.U64()
		if err != nil {
			return err
		}
		elem.Float64 = math.Float64frombits(raw)
		return nil
	case isUTF8String(typ) || isByteString(typ):
		n, err := readUintWidth(p, widthOf(typ))
		if err != nil {
			return err
		}
		b, err := p.Take(int(n))
		if err != nil {
			return err
		}
		elem.Bytes = b
		return nil
	case typ == TypeNull:
		return nil
	default:
		return ErrInvalidData
	}
}

func readUintWidth(p *buf.ParseBuf, width int) (uint64, error) {
	switch width {
	case 1:
		v, err := p.U8()
		return uint64(v), err
	case 2:
		v, err := p.U16()
		return uint64(v), err
	case 4:
		v, err := p.U32()
		return uint64(v), err
	default:
		return p.U64()
	}
}

func signExtend(raw uint64, width int) int64 {
	switch width {
	case 1:
		return int64(int8(raw))
	case 2:
		return int64(int16(raw))
	case 4:
		return int64(int32(raw))
	default:
		return int64(raw)
	}
}
