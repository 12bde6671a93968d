package securechannel

import "github.com/ossmatter/matterd/fabric"

// StoreMatcher adapts a fabric.Store to FabricMatcher, so a CaseSession can
// match Sigma1's destination id against whatever fabrics are currently on
// disk without this package knowing anything about fabric persistence.
type StoreMatcher struct {
	Store fabric.Store
}

// Candidates loads every fabric currently on disk and maps each one to the
// material HandleSigma1 needs. A LoadAll failure yields no candidates
// rather than propagating the error, since a malformed or momentarily
// unreadable fabric table should fail the handshake with
// ErrNoSharedTrustRoots, not crash the transport loop.
func (m StoreMatcher) Candidates() []FabricCandidate {
	fabrics, err := m.Store.LoadAll()
	if err != nil {
		return nil
	}
	out := make([]FabricCandidate, 0, len(fabrics))
	for _, f := range fabrics {
		out = append(out, FabricCandidate{
			IPK:           f.IPK[:],
			NOCSigningKey: f.NOCSigningKey,
			NOC:           f.NOC,
			NodeID:        f.NodeID,
		})
	}
	return out
}

var _ FabricMatcher = StoreMatcher{}
