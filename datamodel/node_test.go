package datamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ossmatter/matterd/tlv"
)

type stubCluster struct {
	id    ClusterID
	value uint64
}

func (s *stubCluster) ID() ClusterID                   { return s.id }
func (s *stubCluster) Access() AccessRequirements       { return AccessRequirements{} }
func (s *stubCluster) ReadAttribute(id AttributeID, w *tlv.Writer) error {
	return w.PutUint(tlv.AnonymousTag(), s.value)
}
func (s *stubCluster) WriteAttribute(id AttributeID, v tlv.Element) error { return nil }
func (s *stubCluster) InvokeCommand(id CommandID, r *tlv.Reader, w *tlv.Writer) error {
	return nil
}

func TestNodeAddAndGetEndpoint(t *testing.T) {
	n := NewNode(2, 4)
	ep, err := n.AddEndpoint(1)
	require.NoError(t, err)
	assert.Equal(t, EndpointID(1), ep.ID())

	got, ok := n.GetEndpoint(1)
	require.True(t, ok)
	assert.Same(t, ep, got)
}

func TestNodeAddEndpointDuplicateIDFails(t *testing.T) {
	n := NewNode(2, 4)
	_, err := n.AddEndpoint(1)
	require.NoError(t, err)
	_, err = n.AddEndpoint(1)
	assert.ErrorIs(t, err, ErrNoSpace)
}

func TestNodeAddEndpointNoSpace(t *testing.T) {
	n := NewNode(1, 4)
	_, err := n.AddEndpoint(1)
	require.NoError(t, err)
	_, err = n.AddEndpoint(2)
	assert.ErrorIs(t, err, ErrNoSpace)
}

func TestNodeChangeConsumerNotifiedOnAdd(t *testing.T) {
	n := NewNode(2, 4)
	var seen []EndpointID
	n.SetChangeConsumer(changeConsumerFunc(func(ep *Endpoint) {
		seen = append(seen, ep.ID())
	}))
	_, err := n.AddEndpoint(5)
	require.NoError(t, err)
	assert.Equal(t, []EndpointID{5}, seen)
}

func TestEndpointAddClusterAndLookup(t *testing.T) {
	ep := newEndpoint(1, 2)
	c := &stubCluster{id: 0x0006, value: 7}
	require.NoError(t, ep.AddCluster(c))

	got, ok := ep.GetCluster(0x0006)
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Len(t, ep.Clusters(), 1)
}

func TestEndpointAddClusterDuplicateIDFails(t *testing.T) {
	ep := newEndpoint(1, 2)
	require.NoError(t, ep.AddCluster(&stubCluster{id: 1}))
	assert.ErrorIs(t, ep.AddCluster(&stubCluster{id: 1}), ErrNoSpace)
}

type changeConsumerFunc func(ep *Endpoint)

func (f changeConsumerFunc) OnEndpointAdded(ep *Endpoint) { f(ep) }
