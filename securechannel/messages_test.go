package securechannel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/buf"
	"github.com/ossmatter/matterd/tlv"
)

func encode(t *testing.T, f func(*tlv.Writer) error) []byte {
	t.Helper()
	wb := buf.NewWriteBuf(make([]byte, 1024))
	require.NoError(t, wb.Reserve(0))
	w := tlv.NewWriter(wb)
	require.NoError(t, f(w))
	return wb.Bytes()
}

func TestSigma1RoundTrips(t *testing.T) {
	var s Sigma1
	copy(s.InitiatorRandom[:], []byte("01234567890123456789012345678901"))
	s.InitiatorSessionID = 7
	s.DestinationID = []byte{1, 2, 3, 4}
	s.InitiatorEphPubKey = []byte{5, 6, 7, 8, 9}

	data := encode(t, s.Encode)
	got, err := DecodeSigma1(data)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestSigma1DecodeRejectsMissingField(t *testing.T) {
	wb := buf.NewWriteBuf(make([]byte, 64))
	require.NoError(t, wb.Reserve(0))
	w := tlv.NewWriter(wb)
	require.NoError(t, w.StartStruct(tlv.AnonymousTag()))
	require.NoError(t, w.PutUint(tlv.ContextTag(tagSigma1InitiatorSessionID), 1))
	require.NoError(t, w.EndContainer())

	_, err := DecodeSigma1(wb.Bytes())
	require.ErrorIs(t, err, ErrInvalidMessage)
}

func TestSigma2RoundTrips(t *testing.T) {
	var s Sigma2
	copy(s.ResponderRandom[:], []byte("abcdefghijabcdefghijabcdefghijab"))
	s.ResponderSessionID = 9
	s.ResponderEphPubKey = []byte{1, 1, 2, 3, 5, 8}
	s.Encrypted2 = []byte{9, 9, 9}

	data := encode(t, s.Encode)
	got, err := DecodeSigma2(data)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestSigma3RoundTrips(t *testing.T) {
	s := Sigma3{Encrypted3: []byte{1, 2, 3, 4, 5}}
	data := encode(t, s.Encode)
	got, err := DecodeSigma3(data)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestTBERoundTrips(t *testing.T) {
	want := tbeData{NOC: []byte("noc-bytes"), Signature: []byte("sig-bytes")}
	wb := buf.NewWriteBuf(make([]byte, 256))
	require.NoError(t, wb.Reserve(0))
	w := tlv.NewWriter(wb)
	require.NoError(t, encodeTBE(w, tagTBEResponderNOC, want))

	got, err := decodeTBE(wb.Bytes(), tagTBEResponderNOC)
	require.NoError(t, err)
	require.Equal(t, want, got)
}
