package im_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/buf"
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/datamodel/clusters"
	"github.com/ossmatter/matterd/im"
	"github.com/ossmatter/matterd/tlv"
)

func encodeReadRequest(t *testing.T, path im.AttributePath) []byte {
	t.Helper()
	wb := buf.NewWriteBuf(make([]byte, 256))
	require.NoError(t, wb.Reserve(0))
	w := tlv.NewWriter(wb)

	require.NoError(t, w.StartStruct(tlv.AnonymousTag()))
	require.NoError(t, w.StartArray(tlv.ContextTag(0)))
	require.NoError(t, w.StartList(tlv.AnonymousTag()))
	if path.HasEndpoint {
		require.NoError(t, w.PutUint(tlv.ContextTag(0), uint64(path.Endpoint)))
	}
	if path.HasCluster {
		require.NoError(t, w.PutUint(tlv.ContextTag(1), uint64(path.Cluster)))
	}
	if path.HasAttribute {
		require.NoError(t, w.PutUint(tlv.ContextTag(2), uint64(path.Attribute)))
	}
	require.NoError(t, w.EndContainer()) // path list
	require.NoError(t, w.EndContainer()) // path array
	require.NoError(t, w.EndContainer()) // top struct

	return wb.Bytes()
}

// firstReportKind decodes a ReportData body down to its single
// AttributeReportIB and reports which field tag (0=status, 1=data) it
// carried, along with the decoded status if applicable.
func firstReportKind(t *testing.T, resp []byte) (tag uint8, status im.Status) {
	t.Helper()
	r := tlv.NewReader(resp)
	top, ok := r.Next()
	require.True(t, ok)
	body, err := r.EnterContainer(top)
	require.NoError(t, err)
	defer r.ExitContainer(body)

	field, ok := body.Next()
	require.True(t, ok)
	require.True(t, field.Tag.IsContext(1))
	arr, err := body.EnterContainer(field)
	require.NoError(t, err)
	defer body.ExitContainer(arr)

	entry, ok := arr.Next()
	require.True(t, ok)
	ib, err := arr.EnterContainer(entry)
	require.NoError(t, err)
	defer arr.ExitContainer(ib)

	inner, ok := ib.Next()
	require.True(t, ok)
	tag = uint8(0)
	if inner.Tag.IsContext(1) {
		tag = 1
	}

	if tag == 0 {
		statusIB, err := ib.EnterContainer(inner)
		require.NoError(t, err)
		defer ib.ExitContainer(statusIB)
		for {
			f, ok := statusIB.Next()
			if !ok {
				break
			}
			if f.Tag.IsContext(1) && f.IsContainer() {
				sib, err := statusIB.EnterContainer(f)
				require.NoError(t, err)
				for {
					g, ok := sib.Next()
					if !ok {
						break
					}
					if g.Tag.IsContext(0) {
						status = im.Status(g.Uint)
					}
				}
				require.NoError(t, statusIB.ExitContainer(sib))
			}
		}
	}
	return tag, status
}

func TestHandleReadRequestReturnsAttributeDataForConcreteHit(t *testing.T) {
	node, ep := newNodeWithOnOff(t)

	reqBody := encodeReadRequest(t, im.AttributePath{
		HasEndpoint: true, Endpoint: ep,
		HasCluster: true, Cluster: clusters.OnOffClusterID,
		HasAttribute: true, Attribute: clusters.AttrOnOff,
	})

	wb := buf.NewWriteBuf(make([]byte, 256))
	require.NoError(t, wb.Reserve(0))
	w := tlv.NewWriter(wb)

	require.NoError(t, im.HandleReadRequest(node, datamodel.PrivilegeAdminister, reqBody, w))
	kind, _ := firstReportKind(t, wb.Bytes())
	require.Equal(t, uint8(1), kind)
}

func TestHandleReadRequestReturnsStatusForUnknownEndpoint(t *testing.T) {
	node, _ := newNodeWithOnOff(t)

	reqBody := encodeReadRequest(t, im.AttributePath{
		HasEndpoint: true, Endpoint: 99,
		HasCluster: true, Cluster: clusters.OnOffClusterID,
		HasAttribute: true, Attribute: clusters.AttrOnOff,
	})

	wb := buf.NewWriteBuf(make([]byte, 256))
	require.NoError(t, wb.Reserve(0))
	w := tlv.NewWriter(wb)

	require.NoError(t, im.HandleReadRequest(node, datamodel.PrivilegeAdminister, reqBody, w))
	kind, status := firstReportKind(t, wb.Bytes())
	require.Equal(t, uint8(0), kind)
	require.Equal(t, im.StatusUnsupportedEndpoint, status)
}
