package im

import (
	"errors"

	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/tlv"
)

// Status is the Interaction Model status code carried in a StatusIB
// (spec.md §4.7).
type Status uint16

const (
	StatusSuccess             Status = 0x00
	StatusFailure             Status = 0x01
	StatusInvalidAction       Status = 0x80
	StatusUnsupportedCommand  Status = 0x81
	StatusUnsupportedAttribute Status = 0x86
	StatusUnsupportedEndpoint Status = 0x7F
	StatusUnsupportedCluster  Status = 0xC3
	StatusUnsupportedAccess   Status = 0x7E
	StatusTimeout             Status = 0x94
	StatusBusy                Status = 0x9C
)

// StatusFor maps an internal error to its wire status code (spec.md §4.7).
// It is a single total switch: the data model's lookup and access errors
// and this package's ErrInvalidAction/ErrTimeout/ErrBusy have explicit
// mappings; anything else (including TLV codec errors and
// datamodel.ErrNoSpace) maps to the Failure catch-all.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, datamodel.ErrEndpointNotFound):
		return StatusUnsupportedEndpoint
	case errors.Is(err, datamodel.ErrClusterNotFound):
		return StatusUnsupportedCluster
	case errors.Is(err, datamodel.ErrAttributeNotFound):
		return StatusUnsupportedAttribute
	case errors.Is(err, datamodel.ErrCommandNotFound):
		return StatusUnsupportedCommand
	case errors.Is(err, datamodel.ErrAccessDenied):
		return StatusUnsupportedAccess
	case errors.Is(err, ErrInvalidAction):
		return StatusInvalidAction
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	case errors.Is(err, ErrBusy):
		return StatusBusy
	default:
		return StatusFailure
	}
}

// WriteStatusIB writes a StatusIB { ctx0=status, ctx1=cluster_status },
// under tag, where cluster_status is always 0 (this spec defines no
// cluster-specific status values). tag must match the enclosing
// container's tagging form — AnonymousTag() inside an array, a context
// tag inside a struct.
func WriteStatusIB(w *tlv.Writer, tag tlv.Tag, s Status) error {
	if err := w.StartStruct(tag); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(0), uint64(s)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(1), 0); err != nil {
		return err
	}
	return w.EndContainer()
}
