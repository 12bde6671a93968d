package im

import (
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/tlv"
)

// CommandPath identifies one command target for an InvokeRequest
// (spec.md §4.7). Per the REDESIGN FLAG, Endpoint decodes directly as a
// 16-bit field rather than an 8-bit field widened afterward.
type CommandPath struct {
	Endpoint datamodel.EndpointID
	Cluster  datamodel.ClusterID
	Command  datamodel.CommandID
}

// AttributePath identifies one attribute target for a ReadRequest or
// WriteRequest. Any field may be absent (spec.md §4.7). HandleReadRequest
// expands an absent endpoint or cluster over every matching entity; an
// absent attribute is not expanded.
type AttributePath struct {
	HasEndpoint  bool
	Endpoint     datamodel.EndpointID
	HasCluster   bool
	Cluster      datamodel.ClusterID
	HasAttribute bool
	Attribute    datamodel.AttributeID
	HasListIndex bool
	ListIndex    uint16
}

// DecodeCommandPath reads a CommandPath list element (context tags
// 0=endpoint, 1=cluster, 2=command; all mandatory, non-wildcard).
func DecodeCommandPath(parent *tlv.Reader, e tlv.Element) (CommandPath, error) {
	var p CommandPath
	r, err := parent.EnterContainer(e)
	if err != nil {
		return p, err
	}
	defer parent.ExitContainer(r)

	for {
		field, ok := r.Next()
		if !ok {
			break
		}
		switch {
		case field.Tag.IsContext(0):
			p.Endpoint = datamodel.EndpointID(field.Uint)
		case field.Tag.IsContext(1):
			p.Cluster = datamodel.ClusterID(field.Uint)
		case field.Tag.IsContext(2):
			p.Command = datamodel.CommandID(field.Uint)
		}
	}
	return p, nil
}

// EncodeCommandPath writes p as a list under tag.
func EncodeCommandPath(w *tlv.Writer, tag tlv.Tag, p CommandPath) error {
	if err := w.StartList(tag); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(0), uint64(p.Endpoint)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(1), uint64(p.Cluster)); err != nil {
		return err
	}
	if err := w.PutUint(tlv.ContextTag(2), uint64(p.Command)); err != nil {
		return err
	}
	return w.EndContainer()
}

// DecodeAttributePath reads an AttributePath list element (context tags
// 0=endpoint?, 1=cluster?, 2=attribute?, 3=list-index?, all optional).
func DecodeAttributePath(parent *tlv.Reader, e tlv.Element) (AttributePath, error) {
	var p AttributePath
	r, err := parent.EnterContainer(e)
	if err != nil {
		return p, err
	}
	defer parent.ExitContainer(r)

	for {
		field, ok := r.Next()
		if !ok {
			break
		}
		switch {
		case field.Tag.IsContext(0):
			p.HasEndpoint = true
			p.Endpoint = datamodel.EndpointID(field.Uint)
		case field.Tag.IsContext(1):
			p.HasCluster = true
			p.Cluster = datamodel.ClusterID(field.Uint)
		case field.Tag.IsContext(2):
			p.HasAttribute = true
			p.Attribute = datamodel.AttributeID(field.Uint)
		case field.Tag.IsContext(3):
			p.HasListIndex = true
			p.ListIndex = uint16(field.Uint)
		}
	}
	return p, nil
}
