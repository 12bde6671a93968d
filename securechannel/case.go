package securechannel

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"

	"github.com/ossmatter/matterd/session"
)

// State is a CaseSession's position in the handshake (spec.md §4.9).
type State int

const (
	StateSigma1Rx State = iota
	StateSigma3Rx
	StateComplete
	StateFailed
)

// FabricCandidate is the material CaseSession needs from one local fabric
// to match a Sigma1 destination id and to answer on that fabric's behalf.
// Fabric storage itself is an external collaborator (SPEC_FULL.md
// Non-goals); a fabric.Store implementation supplies these.
type FabricCandidate struct {
	IPK           []byte
	NOCSigningKey []byte // this node's NOC public key, used in destination id derivation
	NOC           []byte // this node's NOC, embedded in Sigma2's TBE/TBS
	NodeID        uint64
}

// FabricMatcher lists the local fabrics a CaseSession may answer on.
type FabricMatcher interface {
	Candidates() []FabricCandidate
}

// destinationIDFor computes the destination id a peer would use to address
// candidate, per spec.md §4.9: HMAC-SHA256(ipk, initiator_random ∥
// NOC_signing_key).
func destinationIDFor(ipk, initiatorRandom, nocSigningKey []byte) []byte {
	mac := hmac.New(sha256.New, ipk)
	mac.Write(initiatorRandom)
	mac.Write(nocSigningKey)
	return mac.Sum(nil)
}

func matchDestination(candidates []FabricCandidate, initiatorRandom, destinationID []byte) (FabricCandidate, bool) {
	for _, c := range candidates {
		if hmac.Equal(destinationIDFor(c.IPK, initiatorRandom, c.NOCSigningKey), destinationID) {
			return c, true
		}
	}
	return FabricCandidate{}, false
}

// CaseSession drives one responder-side CASE handshake: Sigma1Rx →
// Sigma3Rx → Complete (spec.md §4.9). A device never initiates CASE in
// this spec, so there is no initiator-side state machine.
type CaseSession struct {
	crypto      Crypto
	fabrics     FabricMatcher
	localNodeID uint64

	state State

	initiatorRandom    [RandomSize]byte
	initiatorSessionID uint16
	peerEphPub         []byte
	match              FabricCandidate

	localSessionID  uint16
	responderRandom [RandomSize]byte
	ephPriv         any
	ephPub          []byte

	sharedSecret []byte
}

// NewCaseSession creates a fresh, unstarted CASE responder state machine.
func NewCaseSession(crypto Crypto, fabrics FabricMatcher, localNodeID uint64) *CaseSession {
	return &CaseSession{crypto: crypto, fabrics: fabrics, localNodeID: localNodeID, state: StateSigma1Rx}
}

// HandleSigma1 consumes a Sigma1 message and produces the Sigma2 response.
// localSessionID is the session id the transport layer has reserved for
// the eventual secure session.
func (c *CaseSession) HandleSigma1(raw []byte, localSessionID uint16) ([]byte, error) {
	if c.state != StateSigma1Rx {
		return nil, ErrWrongState
	}
	s1, err := DecodeSigma1(raw)
	if err != nil {
		return nil, err
	}

	match, ok := matchDestination(c.fabrics.Candidates(), s1.InitiatorRandom[:], s1.DestinationID)
	if !ok {
		c.state = StateFailed
		return nil, ErrNoSharedTrustRoots
	}

	ephPriv, ephPub, err := c.crypto.GenerateEphemeral()
	if err != nil {
		c.state = StateFailed
		return nil, err
	}
	sharedSecret, err := c.crypto.ECDH(ephPriv, s1.InitiatorEphPubKey)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}

	var responderRandom [RandomSize]byte
	if _, err := rand.Read(responderRandom[:]); err != nil {
		c.state = StateFailed
		return nil, err
	}

	tbs, err := encodeTBS(tagTBSResponderNOC, tagTBSResponderEphPubKey, tagTBSInitiatorEphPubKey, tbsData{
		NOC:          match.NOC,
		SignerEphPub: ephPub,
		PeerEphPub:   s1.InitiatorEphPubKey,
	})
	if err != nil {
		c.state = StateFailed
		return nil, err
	}
	sig, err := c.crypto.Sign(tbs)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}

	s2k, err := c.crypto.HKDF(sharedSecret, match.IPK, []byte("Sigma2"), 16)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}
	plain, err := encodeTBEBytes(tagTBEResponderNOC, tbeData{NOC: match.NOC, Signature: sig})
	if err != nil {
		c.state = StateFailed
		return nil, err
	}
	nonce := make([]byte, 13)
	copy(nonce, []byte("NCASE_Sigma2"))
	s2kCipher, err := newAEADCipher(s2k)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}
	encrypted2 := s2kCipher.Seal(nil, nonce, plain, nil)

	sigma2 := Sigma2{
		ResponderRandom:    responderRandom,
		ResponderSessionID: localSessionID,
		ResponderEphPubKey: ephPub,
		Encrypted2:         encrypted2,
	}
	out, err := encodeSigma2Bytes(&sigma2)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}

	c.initiatorRandom = s1.InitiatorRandom
	c.initiatorSessionID = s1.InitiatorSessionID
	c.peerEphPub = s1.InitiatorEphPubKey
	c.match = match
	c.localSessionID = localSessionID
	c.responderRandom = responderRandom
	c.ephPriv = ephPriv
	c.ephPub = ephPub
	c.sharedSecret = sharedSecret
	c.state = StateSigma3Rx
	return out, nil
}

// HandleSigma3 consumes a Sigma3 message, verifies the initiator's
// signature, derives session keys, and returns the CloneData the session
// manager uses to install a fresh encrypted session.
func (c *CaseSession) HandleSigma3(raw []byte) (session.CloneData, error) {
	if c.state != StateSigma3Rx {
		return session.CloneData{}, ErrWrongState
	}
	s3, err := DecodeSigma3(raw)
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, err
	}

	s3k, err := c.crypto.HKDF(c.sharedSecret, c.match.IPK, []byte("Sigma3"), 16)
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, err
	}
	nonce := make([]byte, 13)
	copy(nonce, []byte("NCASE_Sigma3"))
	s3kCipher, err := newAEADCipher(s3k)
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, err
	}
	plain, err := s3kCipher.Open(nil, nonce, s3.Encrypted3, nil)
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, ErrSignatureInvalid
	}
	tbe3, err := decodeTBE(plain, tagTBEInitiatorNOC)
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, err
	}

	tbs3, err := encodeTBS(tagTBSInitiatorNOC, tagTBSInitiatorEphPubKey, tagTBSResponderEphPubKey, tbsData{
		NOC:          tbe3.NOC,
		SignerEphPub: c.peerEphPub,
		PeerEphPub:   c.ephPub,
	})
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, err
	}
	if err := c.crypto.Verify(tbe3.NOC, tbs3, tbe3.Signature); err != nil {
		c.state = StateFailed
		return session.CloneData{}, ErrSignatureInvalid
	}

	keys, err := c.crypto.HKDF(c.sharedSecret, c.saltForSessionKeys(), []byte("SessionKeys"), 48)
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, err
	}
	i2r := keys[0:16]
	r2i := keys[16:32]
	// keys[32:48] is the attestation challenge. Attestation verification
	// is out of scope here, and nothing else consumes this value, so it
	// is computed and dropped rather than threaded through CloneData.

	sendCipher, err := newAEADCipher(r2i)
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, err
	}
	recvCipher, err := newAEADCipher(i2r)
	if err != nil {
		c.state = StateFailed
		return session.CloneData{}, err
	}

	c.state = StateComplete
	return session.CloneData{
		LocalSessID:  c.localSessionID,
		PeerNodeID:   0, // resolved from the initiator's NOC by the caller, not by CASE itself
		SourceNodeID: c.localNodeID,
		SendCipher:   sendCipher,
		RecvCipher:   recvCipher,
	}, nil
}

// State reports the handshake's current position.
func (c *CaseSession) State() State { return c.state }

func (c *CaseSession) saltForSessionKeys() []byte {
	salt := make([]byte, 0, 2*RandomSize)
	salt = append(salt, c.initiatorRandom[:]...)
	salt = append(salt, c.responderRandom[:]...)
	return salt
}
