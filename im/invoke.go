package im

import (
	"github.com/ossmatter/matterd/buf"
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/tlv"
)

// HandleInvokeRequest decodes an InvokeRequest body and, in a single
// streaming pass, invokes each command against node at the given
// privilege and encodes the InvokeResponse body to w (spec.md §4.7,
// §4.8). Commands are executed and their response IBs written as each
// CommandDataIB is decoded, since the TLV reader's container cursor is
// shared and cannot be rewound once a nested element has been entered.
func HandleInvokeRequest(node *datamodel.Node, callerPrivilege datamodel.AccessPrivilege, body []byte, w *tlv.Writer) error {
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
	if err := w.PutBool(tlv.ContextTag(0), false); err != nil { // suppress_response
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
		if !field.Tag.IsContext(2) || !field.IsContainer() {
			continue
		}
		cmdList, err := req.EnterContainer(field)
		if err != nil {
			return err
		}
		for {
			entry, ok := cmdList.Next()
			if !ok {
				break
			}
			if err := invokeOneCommand(node, callerPrivilege, cmdList, entry, w); err != nil {
				return err
			}
		}
	}

	if err := w.EndContainer(); err != nil { // end response array
		return err
	}
	return w.EndContainer() // end response struct
}

// invokeOneCommand decodes one CommandDataIB { ctx0=path, ctx1=payload }
// from cmdList (entry is the already-Next'd struct element), invokes the
// target cluster's command with the payload reader, and writes the
// InvokeResponseIB to w.
func invokeOneCommand(node *datamodel.Node, callerPrivilege datamodel.AccessPrivilege, cmdList *tlv.Reader, entry tlv.Element, w *tlv.Writer) error {
	ib, err := cmdList.EnterContainer(entry)
	if err != nil {
		return err
	}
	defer cmdList.ExitContainer(ib)

	var path CommandPath
	var status Status = StatusInvalidAction
	var data []byte
	haveStatus := false

	for {
		field, ok := ib.Next()
		if !ok {
			break
		}
		switch {
		case field.Tag.IsContext(0) && field.IsContainer():
			p, err := DecodeCommandPath(ib, field)
			if err != nil {
				return err
			}
			path = p
		case field.Tag.IsContext(1) && field.IsContainer():
			payload, err := ib.EnterContainer(field)
			if err != nil {
				return err
			}
			status, data = resolveAndInvoke(node, callerPrivilege, path, payload)
			_ = ib.ExitContainer(payload)
			haveStatus = true
		}
	}
	if !haveStatus {
		status, data = StatusInvalidAction, nil
	}

	if err := w.StartStruct(tlv.AnonymousTag()); err != nil {
		return err
	}
	if status == StatusSuccess && data != nil {
		// Command response: ctx0 = struct{ctx0=cmd_path, ctx1=command_data}
		// (spec.md §4.7). data is a single already-encoded, anonymous-tagged
		// TLV element (the cluster's InvokeCommand writes it to a scratch
		// writer), so it is spliced into a one-element array the same way
		// readOneAttribute splices a ReadAttribute value into an
		// AttributeDataIB (im/read.go).
		if err := w.StartStruct(tlv.ContextTag(0)); err != nil {
			return err
		}
		if err := EncodeCommandPath(w, tlv.ContextTag(0), path); err != nil {
			return err
		}
		if err := w.StartArray(tlv.ContextTag(1)); err != nil {
			return err
		}
		if err := w.PutRaw(data); err != nil {
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
	// Status-only response: ctx1 = struct{ctx0=cmd_path, ctx1=StatusIB}.
	if err := w.StartStruct(tlv.ContextTag(1)); err != nil {
		return err
	}
	if err := EncodeCommandPath(w, tlv.ContextTag(0), path); err != nil {
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

// resolveAndInvoke resolves path to a cluster, checks access, and invokes
// the command against a scratch writer so the cluster's response data (if
// any) can be captured before the caller commits to a response IB shape.
func resolveAndInvoke(node *datamodel.Node, callerPrivilege datamodel.AccessPrivilege, path CommandPath, payload *tlv.Reader) (Status, []byte) {
	ep, ok := node.GetEndpoint(path.Endpoint)
	if !ok {
		return StatusFor(datamodel.ErrEndpointNotFound), nil
	}
	cl, ok := ep.GetCluster(path.Cluster)
	if !ok {
		return StatusFor(datamodel.ErrClusterNotFound), nil
	}
	if !callerPrivilege.Satisfies(cl.Access().Invoke) {
		return StatusFor(datamodel.ErrAccessDenied), nil
	}

	scratch := buf.NewWriteBuf(make([]byte, 256))
	if err := scratch.Reserve(0); err != nil {
		return StatusFor(err), nil
	}
	sw := tlv.NewWriter(scratch)
	if err := cl.InvokeCommand(path.Command, payload, sw); err != nil {
		return StatusFor(err), nil
	}
	if scratch.Len() == 0 {
		return StatusSuccess, nil
	}
	return StatusSuccess, scratch.Bytes()
}
