package securechannel

import (
	"crypto/aes"
	"crypto/cipher"
)

// aeadCipher adapts a stdlib AES-GCM AEAD to session.Cipher, mirroring the
// gcmCipher test helper in session/session_test.go but used here to wire a
// real key derived from a completed CASE handshake, not a fixture key.
type aeadCipher struct {
	aead cipher.AEAD
}

func newAEADCipher(key []byte) (*aeadCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aeadCipher{aead: aead}, nil
}

// Open and Seal truncate the 13-byte message.Nonce down to the AEAD's
// native nonce size, same as session/session_test.go's gcmCipher.
func (c *aeadCipher) Open(dst, nonce, ciphertext, aad []byte) ([]byte, error) {
	return c.aead.Open(dst, nonce[:c.aead.NonceSize()], ciphertext, aad)
}

func (c *aeadCipher) Seal(dst, nonce, plaintext, aad []byte) []byte {
	return c.aead.Seal(dst, nonce[:c.aead.NonceSize()], plaintext, aad)
}
