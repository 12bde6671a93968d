// Package fabric stores the Matter fabrics a node has joined: its
// operational identity (NOC/ICAC chain, node id) on each fabric it
// belongs to, plus the fabric-wide IPK CASE needs to match Sigma1's
// destination id (spec.md §6, §4.9). Certificate issuance and chain
// validation are the explicit Non-goal named in spec.md §1; a Fabric
// record treats its certificate bytes as opaque.
package fabric

import "errors"

var (
	ErrNotFound      = errors.New("fabric: no fabric at that index")
	ErrIndexInUse    = errors.New("fabric: index already in use")
	ErrStoreFull     = errors.New("fabric: no free fabric index")
	ErrInvalidRecord = errors.New("fabric: invalid fabric record")
)

// MaxFabrics bounds the fabric table the way Session/Exchange bound their
// own tables (spec.md §4.4, §4.8): a fixed, small capacity appropriate to
// a constrained device.
const MaxFabrics = 16

// Fabric is one entry of the fabric table.
type Fabric struct {
	Index uint8

	FabricID uint64
	NodeID   uint64

	IPK [16]byte

	// RootCert, ICAC, and NOC are the opaque certificate chain bytes this
	// node was issued on this fabric. This package never parses them.
	RootCert []byte
	ICAC     []byte
	NOC      []byte

	// NOCSigningKey is the public key bytes extracted from NOC, used by
	// securechannel to compute Sigma1 destination id candidates. It is
	// carried alongside NOC rather than derived from it, since parsing a
	// certificate's public key is outside this package's scope.
	NOCSigningKey []byte
}

// Store persists the fabric table (spec.md §6). Implementations must be
// safe for the single-threaded transport loop to call synchronously;
// spec.md places no concurrency requirement on fabric storage.
type Store interface {
	// Store writes f under index idx, overwriting any existing entry.
	Store(idx uint8, f Fabric) error
	// LoadAll returns every stored fabric, in no particular order.
	LoadAll() ([]Fabric, error)
	// Remove deletes the entry at idx, if any.
	Remove(idx uint8) error
}
