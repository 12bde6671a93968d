package datamodel

// Endpoint is an instance of a device type, holding a fixed-capacity array
// of Clusters (spec.md §3).
type Endpoint struct {
	id       EndpointID
	clusters []Cluster
}

func newEndpoint(id EndpointID, clusterCapacity int) *Endpoint {
	return &Endpoint{id: id, clusters: make([]Cluster, clusterCapacity)}
}

// ID returns the endpoint number.
func (e *Endpoint) ID() EndpointID { return e.id }

// AddCluster registers c, which must have a cluster id unique within this
// endpoint.
func (e *Endpoint) AddCluster(c Cluster) error {
	for _, existing := range e.clusters {
		if existing != nil && existing.ID() == c.ID() {
			return ErrNoSpace
		}
	}
	for i, slot := range e.clusters {
		if slot == nil {
			e.clusters[i] = c
			return nil
		}
	}
	return ErrNoSpace
}

// GetCluster returns the cluster with id, if registered.
func (e *Endpoint) GetCluster(id ClusterID) (Cluster, bool) {
	for _, c := range e.clusters {
		if c != nil && c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Clusters returns every registered cluster, in registration order.
func (e *Endpoint) Clusters() []Cluster {
	var out []Cluster
	for _, c := range e.clusters {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
