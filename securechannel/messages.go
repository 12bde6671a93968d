package securechannel

import (
	"github.com/ossmatter/matterd/buf"
	"github.com/ossmatter/matterd/tlv"
)

// Context tags for CASE messages (spec.md §4.9), matching the tag numbers
// used across the Matter CASE exchange.
const (
	tagSigma1InitiatorRandom    = 1
	tagSigma1InitiatorSessionID = 2
	tagSigma1DestinationID      = 3
	tagSigma1InitiatorEphPubKey = 4

	tagSigma2ResponderRandom    = 1
	tagSigma2ResponderSessionID = 2
	tagSigma2ResponderEphPubKey = 3
	tagSigma2Encrypted2         = 4

	tagSigma3Encrypted3 = 1

	tagTBEResponderNOC  = 1
	tagTBEInitiatorNOC  = 1
	tagTBESignature     = 3

	tagTBSResponderNOC       = 1
	tagTBSResponderEphPubKey = 3
	tagTBSInitiatorEphPubKey = 4
	tagTBSInitiatorNOC       = 1
)

// RandomSize is the length of the Sigma1/Sigma2 random nonce.
const RandomSize = 32

// Sigma1 is the first CASE message, sent by the initiator (spec.md §4.9).
type Sigma1 struct {
	InitiatorRandom    [RandomSize]byte
	InitiatorSessionID uint16
	DestinationID      []byte
	InitiatorEphPubKey []byte
}

// Encode serializes s to TLV.
func (s *Sigma1) Encode(w *tlv.Writer) error {
	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(tagSigma1InitiatorRandom), s.InitiatorRandom[:]); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(tagSigma1InitiatorSessionID), uint64(s.InitiatorSessionID)); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(tagSigma1DestinationID), s.DestinationID); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(tagSigma1InitiatorEphPubKey), s.InitiatorEphPubKey); err != nil {
		return err
	}
	return w.EndContainer()
}

// DecodeSigma1 parses a Sigma1 from TLV bytes.
func DecodeSigma1(data []byte) (Sigma1, error) {
	var s Sigma1
	r := tlv.NewReader(data)
	top, ok := r.Next()
	if !ok || top.Type != tlv.TypeStruct {
		return s, ErrInvalidMessage
	}
	body, err := r.EnterContainer(top)
	if err != nil {
		return s, ErrInvalidMessage
	}
	defer r.ExitContainer(body)

	var haveRandom, haveSessID, haveDest, haveEph bool
	for {
		f, ok := body.Next()
		if !ok {
			break
		}
		switch {
		case f.Tag.IsContext(tagSigma1InitiatorRandom):
			if len(f.Bytes) != RandomSize {
				return s, ErrInvalidMessage
			}
			copy(s.InitiatorRandom[:], f.Bytes)
			haveRandom = true
		case f.Tag.IsContext(tagSigma1InitiatorSessionID):
			s.InitiatorSessionID = uint16(f.Uint)
			haveSessID = true
		case f.Tag.IsContext(tagSigma1DestinationID):
			s.DestinationID = append([]byte(nil), f.Bytes...)
			haveDest = true
		case f.Tag.IsContext(tagSigma1InitiatorEphPubKey):
			s.InitiatorEphPubKey = append([]byte(nil), f.Bytes...)
			haveEph = true
		}
	}
	if !haveRandom || !haveSessID || !haveDest || !haveEph {
		return s, ErrInvalidMessage
	}
	return s, nil
}

// Sigma2 is the second CASE message, sent by the responder.
type Sigma2 struct {
	ResponderRandom    [RandomSize]byte
	ResponderSessionID uint16
	ResponderEphPubKey []byte
	Encrypted2         []byte // TBEData2, AEAD-sealed under S2K
}

func (s *Sigma2) Encode(w *tlv.Writer) error {
	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(tagSigma2ResponderRandom), s.ResponderRandom[:]); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(tagSigma2ResponderSessionID), uint64(s.ResponderSessionID)); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(tagSigma2ResponderEphPubKey), s.ResponderEphPubKey); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(tagSigma2Encrypted2), s.Encrypted2); err != nil {
		return err
	}
	return w.EndContainer()
}

func DecodeSigma2(data []byte) (Sigma2, error) {
	var s Sigma2
	r := tlv.NewReader(data)
	top, ok := r.Next()
	if !ok || top.Type != tlv.TypeStruct {
		return s, ErrInvalidMessage
	}
	body, err := r.EnterContainer(top)
	if err != nil {
		return s, ErrInvalidMessage
	}
	defer r.ExitContainer(body)

	var haveRandom, haveSessID, haveEph, haveEnc bool
	for {
		f, ok := body.Next()
		if !ok {
			break
		}
		switch {
		case f.Tag.IsContext(tagSigma2ResponderRandom):
			if len(f.Bytes) != RandomSize {
				return s, ErrInvalidMessage
			}
			copy(s.ResponderRandom[:], f.Bytes)
			haveRandom = true
		case f.Tag.IsContext(tagSigma2ResponderSessionID):
			s.ResponderSessionID = uint16(f.Uint)
			haveSessID = true
		case f.Tag.IsContext(tagSigma2ResponderEphPubKey):
			s.ResponderEphPubKey = append([]byte(nil), f.Bytes...)
			haveEph = true
		case f.Tag.IsContext(tagSigma2Encrypted2):
			s.Encrypted2 = append([]byte(nil), f.Bytes...)
			haveEnc = true
		}
	}
	if !haveRandom || !haveSessID || !haveEph || !haveEnc {
		return s, ErrInvalidMessage
	}
	return s, nil
}

// Sigma3 is the third CASE message, sent by the initiator.
type Sigma3 struct {
	Encrypted3 []byte // TBEData3, AEAD-sealed under S3K
}

func (s *Sigma3) Encode(w *tlv.Writer) error {
	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(tagSigma3Encrypted3), s.Encrypted3); err != nil {
		return err
	}
	return w.EndContainer()
}

func DecodeSigma3(data []byte) (Sigma3, error) {
	var s Sigma3
	r := tlv.NewReader(data)
	top, ok := r.Next()
	if !ok || top.Type != tlv.TypeStruct {
		return s, ErrInvalidMessage
	}
	body, err := r.EnterContainer(top)
	if err != nil {
		return s, ErrInvalidMessage
	}
	defer r.ExitContainer(body)

	var have bool
	for {
		f, ok := body.Next()
		if !ok {
			break
		}
		if f.Tag.IsContext(tagSigma3Encrypted3) {
			s.Encrypted3 = append([]byte(nil), f.Bytes...)
			have = true
		}
	}
	if !have {
		return s, ErrInvalidMessage
	}
	return s, nil
}

// tbeData is the decrypted content of Encrypted2/Encrypted3: a party's NOC
// and the signature computed over the corresponding TBS struct (spec.md
// §4.9). This spec treats the NOC and ICAC chain as opaque bytes supplied
// by the caller; certificate validation is an explicit Non-goal.
type tbeData struct {
	NOC       []byte
	Signature []byte
}

func encodeTBE(w *tlv.Writer, nocTag uint8, t tbeData) error {
	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(nocTag), t.NOC); err != nil {
		return err
	}
	if err := w.PutBytes(tlv.ContextTag(tagTBESignature), t.Signature); err != nil {
		return err
	}
	return w.EndContainer()
}

func decodeTBE(data []byte, nocTag uint8) (tbeData, error) {
	var t tbeData
	r := tlv.NewReader(data)
	top, ok := r.Next()
	if !ok || top.Type != tlv.TypeStruct {
		return t, ErrInvalidMessage
	}
	body, err := r.EnterContainer(top)
	if err != nil {
		return t, ErrInvalidMessage
	}
	defer r.ExitContainer(body)

	var haveNOC, haveSig bool
	for {
		f, ok := body.Next()
		if !ok {
			break
		}
		switch {
		case f.Tag.IsContext(nocTag):
			t.NOC = append([]byte(nil), f.Bytes...)
			haveNOC = true
		case f.Tag.IsContext(tagTBESignature):
			t.Signature = append([]byte(nil), f.Bytes...)
			haveSig = true
		}
	}
	if !haveNOC || !haveSig {
		return t, ErrInvalidMessage
	}
	return t, nil
}

// tbsData is the unsigned struct each party signs (sigma-N-tbsdata); it
// is never transmitted.
type tbsData struct {
	NOC          []byte
	SignerEphPub []byte
	PeerEphPub   []byte
}

// encodeTBEBytes encodes t to its own scratch buffer, for use as AEAD
// plaintext ahead of sealing.
func encodeTBEBytes(nocTag uint8, t tbeData) ([]byte, error) {
	wb := buf.NewWriteBuf(make([]byte, 1024))
	if err := wb.Reserve(0); err != nil {
		return nil, err
	}
	w := tlv.NewWriter(wb)
	if err := encodeTBE(w, nocTag, t); err != nil {
		return nil, err
	}
	return wb.Bytes(), nil
}

// encodeSigma2Bytes encodes s to its own buffer, sized for the NOC and
// signature Encrypted2 carries.
func encodeSigma2Bytes(s *Sigma2) ([]byte, error) {
	wb := buf.NewWriteBuf(make([]byte, 1024+len(s.Encrypted2)))
	if err := wb.Reserve(0); err != nil {
		return nil, err
	}
	w := tlv.NewWriter(wb)
	if err := s.Encode(w); err != nil {
		return nil, err
	}
	return wb.Bytes(), nil
}

func encodeTBS(nocTag, signerEphTag, peerEphTag uint8, t tbsData) ([]byte, error) {
	wb := buf.NewWriteBuf(make([]byte, 512))
	if err := wb.Reserve(0); err != nil {
		return nil, err
	}
	w := tlv.NewWriter(wb)
	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(nocTag), t.NOC); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(signerEphTag), t.SignerEphPub); err != nil {
		return nil, err
	}
	if err := w.PutBytes(tlv.ContextTag(peerEphTag), t.PeerEphPub); err != nil {
		return nil, err
	}
	if err := w.EndContainer(); err != nil {
		return nil, err
	}
	return wb.Bytes(), nil
}
