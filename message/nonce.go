package message

// NonceSize is the AES-CCM nonce length used throughout this spec: security
// flags (1) + message counter (4, LE) + source node id (8, LE, zero when
// absent) (spec §4.3).
const NonceSize = 13

// Nonce derives the AEAD nonce for h. sourceNodeID is the session's source
// node id (zero for an unsecured or sourceless session); it is NOT read
// from h.SourceNodeID because the nonce always uses the session's own
// notion of the source, which for an encrypted session may differ from
// whatever (if anything) was carried on the wire.
func Nonce(h PlainHeader, sourceNodeID uint64) [NonceSize]byte {
	var n [NonceSize]byte
	secFlags := byte(0)
	if h.Encrypted {
		secFlags |= secFlagEncrypted
	}
	n[0] = secFlags
	copy(n[1:5], le32(h.MessageCounter))
	copy(n[5:13], le64(sourceNodeID))
	return n
}
