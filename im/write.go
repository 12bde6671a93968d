package im

import (
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/tlv"
)

// HandleWriteRequest decodes a WriteRequest body — an array of
// AttributeDataIBs, each a concrete path plus a value — and applies each
// write independently, encoding one AttributeStatusIB per path into a
// WriteResponse body (spec.md §4.7: "mixed batched writes apply
// per-attribute with per-path status"). Unlike ReadRequest, write paths
// are not wildcard-expanded: a write names exactly one attribute.
func HandleWriteRequest(node *datamodel.Node, callerPrivilege datamodel.AccessPrivilege, body []byte, w *tlv.Writer) error {
	r := tlv.NewReader(body)
	top, ok := r.Next()
	if !ok || top.Type != tlv.TypeStruct {
		return ErrInvalidAction
	}
	req, err := r.EnterContainer(top)
	if err != nil {
		return ErrInvalidAction
	}
	defer r.ExitContainer(req)

	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return err
	}
	if err := w.StartArray(tlv.ContextTag(0)); err != nil {
		return err
	}

	for {
		field, ok := req.Next()
		if !ok {
			break
		}
		if !field.Tag.IsContext(0) || !field.IsContainer() {
			continue
		}
		dataList, err := req.EnterContainer(field)
		if err != nil {
			return err
		}
		for {
			entry, ok := dataList.Next()
			if !ok {
				break
			}
			if err := writeOneAttribute(node, callerPrivilege, dataList, entry, w); err != nil {
				return err
			}
		}
	}

	if err := w.EndContainer(); err != nil {
		return err
	}
	return w.EndContainer()
}

// writeOneAttribute decodes one AttributeDataIB { ctx0=path, ctx2=data }
// from dataList and applies it against node, writing the resulting
// AttributeStatusIB to w.
func writeOneAttribute(node *datamodel.Node, callerPrivilege datamodel.AccessPrivilege, dataList *tlv.Reader, entry tlv.Element, w *tlv.Writer) error {
	ib, err := dataList.EnterContainer(entry)
	if err != nil {
		return err
	}
	defer dataList.ExitContainer(ib)

	var path AttributePath
	status := StatusInvalidAction

	for {
		field, ok := ib.Next()
		if !ok {
			break
		}
		switch {
		case field.Tag.IsContext(0) && field.IsContainer():
			p, err := DecodeAttributePath(ib, field)
			if err != nil {
				return err
			}
			path = p
		case field.Tag.IsContext(2):
			status = applyWrite(node, callerPrivilege, path, ib, field)
		}
	}

	return writeAttrStatus(w, path, status)
}

func applyWrite(node *datamodel.Node, callerPrivilege datamodel.AccessPrivilege, path AttributePath, r *tlv.Reader, value tlv.Element) Status {
	if !path.HasEndpoint || !path.HasCluster || !path.HasAttribute {
		return StatusInvalidAction
	}
	ep, ok := node.GetEndpoint(path.Endpoint)
	if !ok {
		return StatusFor(datamodel.ErrEndpointNotFound)
	}
	cl, ok := ep.GetCluster(path.Cluster)
	if !ok {
		return StatusFor(datamodel.ErrClusterNotFound)
	}
	if !callerPrivilege.Satisfies(cl.Access().Write) {
		return StatusFor(datamodel.ErrAccessDenied)
	}
	if err := cl.WriteAttribute(path.Attribute, value); err != nil {
		return StatusFor(err)
	}
	return StatusSuccess
}
