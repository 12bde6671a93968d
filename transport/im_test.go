package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/buf"
	"github.com/ossmatter/matterd/datamodel"
	"github.com/ossmatter/matterd/datamodel/clusters"
	"github.com/ossmatter/matterd/im"
	"github.com/ossmatter/matterd/message"
	"github.com/ossmatter/matterd/protocol"
	"github.com/ossmatter/matterd/tlv"
)

func nodeWithOnOff(t *testing.T) *datamodel.Node {
	t.Helper()
	node := datamodel.NewNode(4, 4)
	node.SetChangeConsumer(clusters.AutoAddDescriptor{})
	ep, err := node.AddEndpoint(1)
	require.NoError(t, err)
	require.NoError(t, ep.AddCluster(clusters.NewOnOff(1)))
	return node
}

func encodeOnOffReadRequest(t *testing.T) []byte {
	t.Helper()
	wb := buf.NewWriteBuf(make([]byte, 256))
	require.NoError(t, wb.Reserve(0))
	w := tlv.NewWriter(wb)

	require.NoError(t, w.StartStruct(tlv.AnonymousTag()))
	require.NoError(t, w.StartArray(tlv.ContextTag(0)))
	require.NoError(t, w.StartList(tlv.AnonymousTag()))
	require.NoError(t, w.PutUint(tlv.ContextTag(0), 1)) // endpoint 1
	require.NoError(t, w.PutUint(tlv.ContextTag(1), uint64(clusters.OnOffClusterID)))
	require.NoError(t, w.PutUint(tlv.ContextTag(2), uint64(clusters.AttrOnOff)))
	require.NoError(t, w.EndContainer())
	require.NoError(t, w.EndContainer())
	require.NoError(t, w.EndContainer())
	return wb.Bytes()
}

// TestLoopDispatchesInteractionModelReadThroughEngine drives a real IM
// ReadRequest end to end: transport decode/session/exchange bookkeeping,
// dispatch into im.Engine, encode the ReportData response, and send it
// back over the wire — the same path a commissioned controller exercises.
func TestLoopDispatchesInteractionModelReadThroughEngine(t *testing.T) {
	reg := protocol.NewRegistry()
	reg.Register(&im.Engine{Node: nodeWithOnOff(t), Privilege: datamodel.PrivilegeAdminister})
	l, client := newTestLoop(t, reg)

	req := buildRequest(t, 0, 1, 9, true, uint8(im.OpcodeReadRequest), encodeOnOffReadRequest(t))
	_, err := client.Write(req)
	require.NoError(t, err)
	require.NoError(t, l.RunOnce())

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	resp := make([]byte, rxBufSize)
	n, err := client.Read(resp)
	require.NoError(t, err)

	p := buf.NewParseBuf(resp[:n])
	_, err = message.Decode(p)
	require.NoError(t, err)
	pp := buf.NewParseBuf(p.Tail())
	ph, err := message.DecodeProto(pp)
	require.NoError(t, err)
	require.Equal(t, uint8(im.OpcodeReportData), ph.Opcode)
	require.True(t, ph.Reliable)
}
