package datamodel

import "errors"

var (
	// ErrEndpointNotFound is returned when a path names an unregistered endpoint.
	ErrEndpointNotFound = errors.New("datamodel: endpoint not found")
	// ErrClusterNotFound is returned when a path names an unregistered cluster.
	ErrClusterNotFound = errors.New("datamodel: cluster not found")
	// ErrAttributeNotFound is returned when a path names an unregistered attribute.
	ErrAttributeNotFound = errors.New("datamodel: attribute not found")
	// ErrCommandNotFound is returned when a path names an unregistered command.
	ErrCommandNotFound = errors.New("datamodel: command not found")
	// ErrAccessDenied is returned when the caller's AccessPrivilege is
	// insufficient for the requested operation (SPEC_FULL.md §3).
	ErrAccessDenied = errors.New("datamodel: access denied")
	// ErrNoSpace is returned when Node.AddEndpoint or Endpoint.AddCluster
	// would exceed fixed capacity, and also when the id being added is
	// already registered.
	ErrNoSpace = errors.New("datamodel: fixed capacity exceeded")
)
