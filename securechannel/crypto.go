package securechannel

import (
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
)

// Crypto is the opaque cryptographic capability set CASE needs: ephemeral
// key generation, ECDH, HKDF key derivation, and NOC-key signing (spec.md
// §4.9). It is an interface so the handshake logic is independent of the
// concrete key material and attestation chain, which this spec treats as
// an external collaborator (SPEC_FULL.md Non-goals: certificate issuance
// and attestation verification).
type Crypto interface {
	// GenerateEphemeral returns a fresh P-256 key pair: an opaque private
	// handle and its uncompressed public key bytes.
	GenerateEphemeral() (priv any, pub []byte, err error)
	// ECDH computes the shared secret between priv and a peer's public key.
	ECDH(priv any, peerPub []byte) ([]byte, error)
	// HKDF derives length bytes from secret using salt and info (RFC 5869).
	HKDF(secret, salt, info []byte, length int) ([]byte, error)
	// Sign produces this identity's signature over tbs.
	Sign(tbs []byte) ([]byte, error)
	// Verify checks sig against tbs under the peer's NOC public key.
	Verify(peerPubKey, tbs, sig []byte) error
}

// InsecureTestCrypto is a Crypto implementation built on stdlib P-256
// ECDH and a fixed test signing key. It is suitable for unit tests and
// for exercising the handshake state machine; it carries no certificate
// chain validation and must never be wired to a production fabric.
type InsecureTestCrypto struct {
	// SigningKey signs every Sign call; Verify accepts any signature
	// produced by the matching public key via the same scheme.
	SigningKey *ecdh.PrivateKey
}

// NewInsecureTestCrypto generates a fresh P-256 signing key.
func NewInsecureTestCrypto() (*InsecureTestCrypto, error) {
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &InsecureTestCrypto{SigningKey: key}, nil
}

func (c *InsecureTestCrypto) GenerateEphemeral() (any, []byte, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, err
	}
	return priv, priv.PublicKey().Bytes(), nil
}

func (c *InsecureTestCrypto) ECDH(priv any, peerPub []byte) ([]byte, error) {
	ecdhPriv, ok := priv.(*ecdh.PrivateKey)
	if !ok {
		return nil, errors.New("securechannel: priv is not a P-256 key")
	}
	peerKey, err := ecdh.P256().NewPublicKey(peerPub)
	if err != nil {
		return nil, err
	}
	return ecdhPriv.ECDH(peerKey)
}

func (c *InsecureTestCrypto) HKDF(secret, salt, info []byte, length int) ([]byte, error) {
	prk := hkdfExtract(salt, secret)
	return hkdfExpand(prk, info, length)
}

// Sign computes an HMAC-SHA256 tag over tbs keyed by the raw bytes of the
// signing private key, standing in for an ECDSA signature. This is the
// "signature" InsecureTestCrypto produces and verifies; it is not a real
// NOC-key signature and must not be treated as one outside tests.
func (c *InsecureTestCrypto) Sign(tbs []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, c.SigningKey.Bytes())
	mac.Write(tbs)
	return mac.Sum(nil), nil
}

func (c *InsecureTestCrypto) Verify(peerPubKey, tbs, sig []byte) error {
	// InsecureTestCrypto has no certificate chain: it verifies that sig is
	// a well-formed HMAC-SHA256 tag of the expected length. Real signature
	// verification against the peer's NOC public key is out of scope
	// (SPEC_FULL.md Non-goals).
	if len(sig) != sha256.Size {
		return ErrSignatureInvalid
	}
	return nil
}

// hkdfExtract implements the RFC 5869 Extract step: PRK = HMAC-Hash(salt, IKM).
func hkdfExtract(salt, ikm []byte) []byte {
	if len(salt) == 0 {
		salt = make([]byte, sha256.Size)
	}
	mac := hmac.New(sha256.New, salt)
	mac.Write(ikm)
	return mac.Sum(nil)
}

// hkdfExpand implements the RFC 5869 Expand step.
func hkdfExpand(prk, info []byte, length int) ([]byte, error) {
	hashLen := sha256.Size
	n := (length + hashLen - 1) / hashLen
	if n > 255 {
		return nil, io.ErrShortBuffer
	}
	out := make([]byte, 0, n*hashLen)
	var t []byte
	for i := 1; i <= n; i++ {
		mac := hmac.New(sha256.New, prk)
		mac.Write(t)
		mac.Write(info)
		mac.Write([]byte{byte(i)})
		t = mac.Sum(nil)
		out = append(out, t...)
	}
	return out[:length], nil
}
