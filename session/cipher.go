package session

// Cipher is the opaque AEAD collaborator a session's encrypt/decrypt calls
// delegate to (spec.md §1 Non-goals: this module does not implement a
// cipher). Its shape matches crypto/cipher.AEAD exactly so any AEAD
// implementation satisfying that standard interface — including a real
// AES-128-CCM implementation supplied by the host application — can be
// used as a Cipher without an adapter.
type Cipher interface {
	// Open authenticates and decrypts ciphertext, appending the result to
	// dst. nonce must be message.NonceSize bytes.
	Open(dst, nonce, ciphertext, aad []byte) ([]byte, error)
	// Seal encrypts and authenticates plaintext, appending the result to
	// dst. nonce must be message.NonceSize bytes.
	Seal(dst, nonce, plaintext, aad []byte) []byte
}
