package datamodel

// ChangeConsumer observes structural changes to the data model tree
// (spec.md §3, §4.8). A consumer is held as an ordinary interface value,
// not a true weak reference, but callers are expected to clear it (set
// nil) before letting the underlying facade go away; a nil consumer is a
// no-op, matching the "stale callback is a no-op" invariant. The default
// descriptor-auto-add behavior lives in datamodel/clusters (a ChangeConsumer
// implementation), not here, to avoid a datamodel→clusters import cycle.
type ChangeConsumer interface {
	OnEndpointAdded(ep *Endpoint)
}

// Node is the root of the data model tree: a fixed-capacity array of
// Endpoints (spec.md §3).
type Node struct {
	endpoints  []*Endpoint
	clusterCap int
	consumer   ChangeConsumer
}

// NewNode allocates a node with room for endpointCapacity endpoints, each
// able to hold up to clusterCapacity clusters.
func NewNode(endpointCapacity, clusterCapacity int) *Node {
	return &Node{endpoints: make([]*Endpoint, endpointCapacity), clusterCap: clusterCapacity}
}

// SetChangeConsumer installs the node's change-consumer callback,
// replacing any previous one.
func (n *Node) SetChangeConsumer(c ChangeConsumer) { n.consumer = c }

// AddEndpoint registers a new endpoint with the given id. The
// change-consumer, if set, is notified after the endpoint is in the tree.
func (n *Node) AddEndpoint(id EndpointID) (*Endpoint, error) {
	for _, ep := range n.endpoints {
		if ep != nil && ep.ID() == id {
			return nil, ErrNoSpace
		}
	}
	for i, slot := range n.endpoints {
		if slot == nil {
			ep := newEndpoint(id, n.clusterCap)
			n.endpoints[i] = ep
			if n.consumer != nil {
				n.consumer.OnEndpointAdded(ep)
			}
			return ep, nil
		}
	}
	return nil, ErrNoSpace
}

// GetEndpoint returns the endpoint with id, if registered.
func (n *Node) GetEndpoint(id EndpointID) (*Endpoint, bool) {
	for _, ep := range n.endpoints {
		if ep != nil && ep.ID() == id {
			return ep, true
		}
	}
	return nil, false
}

// Endpoints returns every registered endpoint, in registration order.
func (n *Node) Endpoints() []*Endpoint {
	var out []*Endpoint
	for _, ep := range n.endpoints {
		if ep != nil {
			out = append(out, ep)
		}
	}
	return out
}
