package session

import (
	"crypto/aes"
	"crypto/cipher"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gcmCipher adapts a stdlib AES-GCM AEAD to the Cipher interface; it
// stands in for the real AES-128-CCM collaborator in tests (spec.md §4.4
// treats the concrete cipher as an external collaborator out of scope).
type gcmCipher struct{ aead cipher.AEAD }

func newGCMCipher(t *testing.T, key []byte) *gcmCipher {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	aead, err := cipher.NewGCM(block)
	require.NoError(t, err)
	return &gcmCipher{aead: aead}
}

func (c *gcmCipher) Open(dst, nonce, ciphertext, aad []byte) ([]byte, error) {
	return c.aead.Open(dst, nonce[:c.aead.NonceSize()], ciphertext, aad)
}

func (c *gcmCipher) Seal(dst, nonce, plaintext, aad []byte) []byte {
	return c.aead.Seal(dst, nonce[:c.aead.NonceSize()], plaintext, aad)
}

func TestSessionPassthroughWhenUnencrypted(t *testing.T) {
	s := &Session{}
	out, err := s.Encrypt(nil, make([]byte, 13), []byte("hello"), []byte("aad"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)

	out, err = s.Decrypt(nil, make([]byte, 13), []byte("hello"), []byte("aad"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)
}

func TestSessionEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}
	c := newGCMCipher(t, key)

	s := &Session{LocalSessID: 1, PeerAddr: resolveAddr(t, "10.0.0.1:5540")}
	s.encrypted = true
	s.sendCipher = c
	s.recvCipher = c

	nonce := make([]byte, 13)
	aad := []byte("plain-header")
	ct, err := s.Encrypt(nil, nonce, []byte("invoke-payload"), aad)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("invoke-payload"), ct)

	pt, err := s.Decrypt(nil, nonce, ct, aad)
	require.NoError(t, err)
	assert.Equal(t, []byte("invoke-payload"), pt)
}

func TestSessionDecryptRejectsTamperedAAD(t *testing.T) {
	key := make([]byte, 16)
	c := newGCMCipher(t, key)
	s := &Session{encrypted: true, sendCipher: c, recvCipher: c}

	nonce := make([]byte, 13)
	ct, err := s.Encrypt(nil, nonce, []byte("payload"), []byte("aad-1"))
	require.NoError(t, err)

	_, err = s.Decrypt(nil, nonce, ct, []byte("aad-2"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func resolveAddr(t *testing.T, s string) net.Addr {
	t.Helper()
	a, err := net.ResolveUDPAddr("udp", s)
	require.NoError(t, err)
	return a
}
