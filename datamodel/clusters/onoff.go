package clusters

import (
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/tlv"
)

// OnOffClusterID is the OnOff cluster's well-known id (0x0006).
const OnOffClusterID datamodel.ClusterID = 0x0006

// OnOff attribute and command ids.
const (
	AttrOnOff datamodel.AttributeID = 0x0000

	CmdOff    datamodel.CommandID = 0x00
	CmdOn     datamodel.CommandID = 0x01
	CmdToggle datamodel.CommandID = 0x02
)

// OnOff implements the minimal OnOff cluster: a single boolean attribute
// and the Off/On/Toggle commands (SPEC_FULL.md §4.8).
type OnOff struct {
	endpointID datamodel.EndpointID
	state      bool
}

// NewOnOff returns an OnOff cluster for the given endpoint, initially off.
func NewOnOff(endpointID datamodel.EndpointID) *OnOff {
	return &OnOff{endpointID: endpointID}
}

func (c *OnOff) ID() datamodel.ClusterID { return OnOffClusterID }

func (c *OnOff) Access() datamodel.AccessRequirements {
	return datamodel.AccessRequirements{Invoke: datamodel.PrivilegeOperate}
}

// State reports the current on/off value.
func (c *OnOff) State() bool { return c.state }

func (c *OnOff) ReadAttribute(attrID datamodel.AttributeID, w *tlv.Writer) error {
	if attrID != AttrOnOff {
		return datamodel.ErrAttributeNotFound
	}
	return w.PutBool(tlv.AnonymousTag(), c.state)
}

func (c *OnOff) WriteAttribute(attrID datamodel.AttributeID, value tlv.Element) error {
	return datamodel.ErrAttributeNotFound
}

func (c *OnOff) InvokeCommand(cmdID datamodel.CommandID, r *tlv.Reader, w *tlv.Writer) error {
	switch cmdID {
	case CmdOff:
		c.state = false
		return nil
	case CmdOn:
		c.state = true
		return nil
	case CmdToggle:
		c.state = !c.state
		return nil
	default:
		return datamodel.ErrCommandNotFound
	}
}
