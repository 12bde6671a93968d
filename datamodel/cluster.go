package datamodel

import "github.com/ossmatter/matterd/tlv"

// Cluster is the functional building block of the data model tree
// (spec.md §3, §4.8): attribute read/write and command invocation,
// each gated by its own declared access privilege.
type Cluster interface {
	// ID returns the cluster id, unique within its endpoint.
	ID() ClusterID

	// Access returns the minimum privilege required for read, write, and
	// invoke operations against this cluster.
	Access() AccessRequirements

	// ReadAttribute encodes attrID's current value to w as a single
	// anonymous-tagged element, which may itself be a container (e.g. a
	// list it starts and ends). w is a scratch writer, not the live
	// response stream.
	ReadAttribute(attrID AttributeID, w *tlv.Writer) error

	// WriteAttribute applies a new value for attrID from the element
	// already decoded by the caller (IM write handling reads the value
	// once to determine its shape before handing off).
	WriteAttribute(attrID AttributeID, value tlv.Element) error

	// InvokeCommand executes cmdID with its decoded fields in r (r is
	// positioned at the command's payload struct). w is a scratch writer,
	// not the live response stream: on success, if the command produces
	// response data, InvokeCommand writes it as a single anonymous-tagged
	// TLV element to w and returns nil. Clusters with no response data
	// must leave w untouched — the caller distinguishes "no data" from
	// "data" by whether anything was written, not by the returned error.
	InvokeCommand(cmdID CommandID, r *tlv.Reader, w *tlv.Writer) error
}
