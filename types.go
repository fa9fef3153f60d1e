// Package octeontm contains the domain types for the OCTEON NIC
// traffic-manager control plane.
//
// The traffic manager (TM) is the hardware block that performs
// hierarchical packet scheduling and shaping on NIC egress. The types
// here describe caller intent: scheduling nodes, shaper profiles, and
// the statistics read back from committed hierarchies. The vendor
// hardware abstraction that owns the live objects lives in the roc
// package; the orchestration lives in the tm package.
package octeontm

// InvalidNodeID is the sentinel parent ID that designates "this node
// is the root". It matches the vendor's node-ID-invalid encoding.
const InvalidNodeID uint32 = 0xFFFFFFFF

// LevelRoot is the hardware level of the single root node. Levels
// increase from the root toward the leaves; a non-root node's level is
// always derived from its parent, never taken from the caller.
const LevelRoot uint32 = 0

// ShaperProfileNone designates "no shaper profile bound".
const ShaperProfileNone uint32 = 0xFFFFFFFF

// RateSpec is one half of a dual-rate shaper: a sustained rate and the
// burst size tolerated above it.
type RateSpec struct {
	// Rate in bits per second, or bytes per second for byte-mode
	// profiles before registry normalisation.
	Rate uint64
	// BurstSize in bits (bytes before normalisation).
	BurstSize uint64
}

// ShaperParams describes a shaper profile to create. Profiles are
// keyed by caller-chosen ShaperID, unique per port.
//
// When PktMode is false the profile accounts in bytes and all four
// rate/burst values are multiplied by 8 at registry entry, so the
// vendor layer only ever sees bit units.
type ShaperParams struct {
	ShaperID  uint32
	Commit    RateSpec
	Peak      RateSpec
	PktLenAdj int32 // signed per-packet length adjustment
	PktMode   bool  // true: account packets; false: account bytes
}

// NodeParams carries the optional per-node attributes of node_add that
// are not part of the tree shape.
type NodeParams struct {
	// ShaperProfileID binds the node to an already-created shaper
	// profile. ShaperProfileNone leaves the node unshaped.
	ShaperProfileID uint32
}

// Color is a congestion-marking color bucket.
type Color int

const (
	ColorGreen Color = iota
	ColorYellow
	ColorRed
	ColorMax
)

// NodeStats is the out-parameter of node_read_stats.
//
// Leaf nodes map one-to-one to TX queues and report queue TX counters.
// Non-leaf nodes report drop counters from the TM block itself, split
// by color bucket.
type NodeStats struct {
	// Pkts and Bytes are TX counters, populated for leaf nodes only.
	Pkts  uint64
	Bytes uint64
	// PktsDropped and BytesDropped are per-color drop counters,
	// populated for non-leaf nodes only.
	PktsDropped  [ColorMax]uint64
	BytesDropped [ColorMax]uint64
}
