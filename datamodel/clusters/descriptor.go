// Package clusters provides the server clusters this spec mandates:
// Descriptor (mandatory on every endpoint) and OnOff (SPEC_FULL.md §4.8).
package clusters

import (
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/tlv"
)

// DescriptorClusterID is the Descriptor cluster's well-known id (0x001D).
const DescriptorClusterID datamodel.ClusterID = 0x001D

const (
	attrDeviceTypeList datamodel.AttributeID = 0x0000
	attrServerList     datamodel.AttributeID = 0x0001
	attrClientList     datamodel.AttributeID = 0x0002
	attrPartsList      datamodel.AttributeID = 0x0003
)

// Descriptor implements the mandatory Descriptor cluster: it reports the
// server clusters present on its endpoint. It has no commands and no
// writable attributes.
type Descriptor struct {
	endpoint *datamodel.Endpoint
}

// NewDescriptor returns a Descriptor bound to ep. ServerList is computed
// by walking ep at read time, so it lists every cluster on ep, whether
// added before or after the Descriptor.
func NewDescriptor(ep *datamodel.Endpoint) *Descriptor {
	return &Descriptor{endpoint: ep}
}

func (d *Descriptor) ID() datamodel.ClusterID { return DescriptorClusterID }

func (d *Descriptor) Access() datamodel.AccessRequirements {
	return datamodel.AccessRequirements{} // View for everything
}

func (d *Descriptor) ReadAttribute(attrID datamodel.AttributeID, w *tlv.Writer) error {
	switch attrID {
	case attrDeviceTypeList:
		if err := w.StartArray(tlv.AnonymousTag()); err != nil {
			return err
		}
		return w.EndContainer()
	case attrServerList:
		if err := w.StartArray(tlv.AnonymousTag()); err != nil {
			return err
		}
		for _, c := range d.endpoint.Clusters() {
			if err := w.PutUint(tlv.AnonymousTag(), uint64(c.ID())); err != nil {
				return err
			}
		}
		return w.EndContainer()
	case attrClientList, attrPartsList:
		if err := w.StartArray(tlv.AnonymousTag()); err != nil {
			return err
		}
		return w.EndContainer()
	default:
		return datamodel.ErrAttributeNotFound
	}
}

func (d *Descriptor) WriteAttribute(attrID datamodel.AttributeID, value tlv.Element) error {
	return datamodel.ErrAttributeNotFound
}

func (d *Descriptor) InvokeCommand(cmdID datamodel.CommandID, r *tlv.Reader, w *tlv.Writer) error {
	return datamodel.ErrCommandNotFound
}

var _ datamodel.ChangeConsumer = AutoAddDescriptor{}

// AutoAddDescriptor is a datamodel.ChangeConsumer that appends a
// Descriptor cluster to every newly added endpoint (spec.md §4.8: "the
// descriptor cluster is auto-added to each new endpoint by the
// change-consumer hook"). The hook runs inside AddEndpoint, so the
// Descriptor is the endpoint's first cluster; clusters the caller adds
// afterwards still appear in its ServerList, which is read live.
type AutoAddDescriptor struct{}

func (AutoAddDescriptor) OnEndpointAdded(ep *datamodel.Endpoint) {
	_ = ep.AddCluster(NewDescriptor(ep))
}
