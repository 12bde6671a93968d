package im

import (
	"github.com/ossmatter/matterd/buf"
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/tlv"
)

// HandleReadRequest decodes a ReadRequest body, walks each AttributePath —
// expanding a wildcarded endpoint or cluster field over every matching
// entity — and encodes a ReportData body to w (spec.md §4.7). A wildcarded
// attribute is not expanded: such a path yields one UnsupportedAttribute
// status for the whole path.
func HandleReadRequest(node *datamodel.Node, callerPrivilege datamodel.AccessPrivilege, body []byte, w *tlv.Writer) error {
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
	if err := w.StartArray(tlv.ContextTag(1)); err != nil {
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
		pathList, err := req.EnterContainer(field)
		if err != nil {
			return err
		}
		for {
			entry, ok := pathList.Next()
			if !ok {
				break
			}
			path, err := DecodeAttributePath(pathList, entry)
			if err != nil {
				return err
			}
			if err := readOnePath(node, callerPrivilege, path, w); err != nil {
				return err
			}
		}
	}

	if err := w.EndContainer(); err != nil {
		return err
	}
	return w.EndContainer()
}

func readOnePath(node *datamodel.Node, callerPrivilege datamodel.AccessPrivilege, path AttributePath, w *tlv.Writer) error {
	endpoints := matchingEndpoints(node, path)
	if len(endpoints) == 0 {
		return writeAttrStatus(w, path, StatusFor(datamodel.ErrEndpointNotFound))
	}

	hits := 0
	for _, ep := range endpoints {
		clusters := matchingClusters(ep, path)
		if path.HasCluster && len(clusters) == 0 {
			if err := writeAttrStatus(w, concretePath(path, ep.ID(), path.Cluster, path.Attribute), StatusFor(datamodel.ErrClusterNotFound)); err != nil {
				return err
			}
			continue
		}
		for _, cl := range clusters {
			if !callerPrivilege.Satisfies(cl.Access().Read) {
				if err := writeAttrStatus(w, concretePath(path, ep.ID(), cl.ID(), path.Attribute), StatusFor(datamodel.ErrAccessDenied)); err != nil {
					return err
				}
				continue
			}
			if path.HasAttribute {
				cp := concretePath(path, ep.ID(), cl.ID(), path.Attribute)
				if err := readOneAttribute(cl, cp, w); err != nil {
					if err := writeAttrStatus(w, cp, StatusFor(err)); err != nil {
						return err
					}
				}
				hits++
				continue
			}
			// Wildcard attribute: this spec's clusters expose a single
			// attribute id set known only to themselves; without a
			// metadata listing API we can only honor concrete attribute
			// reads. An unresolved wildcard attribute with no hits falls
			// through to the not-found status below.
		}
	}
	if path.HasAttribute {
		return nil
	}
	if hits == 0 {
		return writeAttrStatus(w, path, StatusFor(datamodel.ErrAttributeNotFound))
	}
	return nil
}

// readOneAttribute probes cl.ReadAttribute against a scratch buffer first,
// since a mid-write failure would otherwise leave w's container nesting
// unbalanced with no way to unwind it. On success the already-encoded
// bytes are copied into an AttributeDataIB in w; on failure it returns the
// error so the caller can emit an AttributeStatusIB instead.
func readOneAttribute(cl datamodel.Cluster, path AttributePath, w *tlv.Writer) error {
	scratch := buf.NewWriteBuf(make([]byte, 256))
	if err := scratch.Reserve(0); err != nil {
		return err
	}
	sw := tlv.NewWriter(scratch)
	if err := cl.ReadAttribute(path.Attribute, sw); err != nil {
		return err
	}
	value := scratch.Bytes()

	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return err
	}
	if err := w.StartStruct(tlv.ContextTag(1)); err != nil { // AttributeDataIB
		return err
	}
	if err := writeConcreteAttrPath(w, path); err != nil {
		return err
	}
	// ctx2=data, wrapped in a single-element array since Cluster.ReadAttribute
	// writes its value with an anonymous tag regardless of the value's type.
	if err := w.StartArray(tlv.ContextTag(2)); err != nil {
		return err
	}
	if err := w.PutRaw(value); err != nil {
		return err
	}
	if err := w.EndContainer(); err != nil {
		return err
	}
	if err := w.EndContainer(); err != nil {
		return err
	}
	return w.EndContainer()
}

func writeAttrStatus(w *tlv.Writer, path AttributePath, status Status) error {
	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return err
	}
	if err := w.StartStruct(tlv.ContextTag(0)); err != nil { // AttributeStatusIB
		return err
	}
	if err := writeConcreteAttrPath(w, path); err != nil {
		return err
	}
	if err := WriteStatusIB(w, tlv.ContextTag(1), status); err != nil {
		return err
	}
	if err := w.EndContainer(); err != nil {
		return err
	}
	return w.EndContainer()
}

func writeConcreteAttrPath(w *tlv.Writer, path AttributePath) error {
	if err := w.StartList(tlv.ContextTag(0)); err != nil {
		return err
	}
	if path.HasEndpoint {
		if err := w.PutUint(tlv.ContextTag(0), uint64(path.Endpoint)); err != nil {
			return err
		}
	}
	if path.HasCluster {
		if err := w.PutUint(tlv.ContextTag(1), uint64(path.Cluster)); err != nil {
			return err
		}
	}
	if path.HasAttribute {
		if err := w.PutUint(tlv.ContextTag(2), uint64(path.Attribute)); err != nil {
			return err
		}
	}
	return w.EndContainer()
}

func concretePath(base AttributePath, ep datamodel.EndpointID, cl datamodel.ClusterID, attr datamodel.AttributeID) AttributePath {
	p := base
	p.HasEndpoint, p.Endpoint = true, ep
	p.HasCluster, p.Cluster = true, cl
	if base.HasAttribute {
		p.HasAttribute, p.Attribute = true, attr
	}
	return p
}

func matchingEndpoints(node *datamodel.Node, path AttributePath) []*datamodel.Endpoint {
	if path.HasEndpoint {
		if ep, ok := node.GetEndpoint(path.Endpoint); ok {
			return []*datamodel.Endpoint{ep}
		}
		return nil
	}
	return node.Endpoints()
}

func matchingClusters(ep *datamodel.Endpoint, path AttributePath) []datamodel.Cluster {
	if path.HasCluster {
		if cl, ok := ep.GetCluster(path.Cluster); ok {
			return []datamodel.Cluster{cl}
		}
		return nil
	}
	return ep.Clusters()
}
