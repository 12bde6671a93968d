// Package datamodel implements the hierarchical Node/Endpoint/Cluster/
// Attribute tree (spec.md §3, §4.8).
package datamodel

// EndpointID identifies an Endpoint within a Node.
type EndpointID uint16

// ClusterID identifies a Cluster within an Endpoint.
type ClusterID uint32

// AttributeID identifies an Attribute within a Cluster.
type AttributeID uint32

// CommandID identifies a Command within a Cluster.
type CommandID uint32
