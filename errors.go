package octeontm

import "errors"

// ErrInternal is the opaque error class surfaced to the upstream
// dataplane for every failure. The distinguishing context (taxonomy
// kind, vendor error string, numeric code) is carried in the log line
// and in the wrapped error chain, so callers that need to discriminate
// can still use errors.Is against the kinds below.
var ErrInternal = errors.New("internal device error")

// Error taxonomy. Every failure wraps exactly one of these alongside
// ErrInternal.
var (
	// ErrHierarchyCommitted is returned for structural mutation
	// attempted on a committed hierarchy.
	ErrHierarchyCommitted = errors.New("hierarchy committed; dynamic updates not supported")

	// ErrInvalidParent is returned by node_add when neither a valid
	// parent nor an explicit root request was given.
	ErrInvalidParent = errors.New("invalid parent node")

	// ErrNotFound is returned when a node or shaper profile ID is
	// unknown to the vendor layer.
	ErrNotFound = errors.New("not found")

	// ErrInvalidNodeID is returned by node_delete for the invalid
	// node-ID sentinel.
	ErrInvalidNodeID = errors.New("invalid node id")

	// ErrShaperExists is returned by shaper_profile_create for a
	// duplicate profile ID.
	ErrShaperExists = errors.New("shaper profile already exists")

	// ErrOutOfMemory is returned when descriptor allocation fails
	// in the vendor layer.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrPrecondition is returned by start_tm when the hierarchy
	// has fewer leaves than the port has TX queues.
	ErrPrecondition = errors.New("incomplete hierarchy")

	// ErrVendor classifies any non-zero vendor return not covered
	// by a more specific kind.
	ErrVendor = errors.New("vendor error")
)
