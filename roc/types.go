// Package roc is the boundary to the Marvell ROC hardware abstraction
// for the NIX traffic manager. It defines the descriptor types the
// control plane hands to the vendor layer, the NixTM interface the
// control plane drives, and the vendor error-code vocabulary.
//
// Descriptor ownership follows the vendor convention: a TMNode or
// ShaperProfile passed to an Add call is owned by the vendor layer on
// success and must not be mutated by the caller afterwards. On failure
// the caller keeps ownership (in Go this simply means the vendor layer
// retains no reference and the descriptor is garbage).
package roc

// Tree selects which scheduling hierarchy to enable.
type Tree int

const (
	// TreeDefault is the driver's flat default hierarchy.
	TreeDefault Tree = iota
	// TreeRateLimit is the per-queue rate-limit hierarchy.
	TreeRateLimit
	// TreeUser is a caller-constructed hierarchy.
	TreeUser
)

// RedAlgo is the congestion-marking algorithm programmed per node.
type RedAlgo int

const (
	RedAlgoStd RedAlgo = iota
	RedAlgoSend
	RedAlgoDiscard
)

// TMNode is a scheduling-node descriptor. The caller populates the
// identity and scheduling fields before TMNodeAdd; the vendor layer
// owns the descriptor afterwards and maintains RedAlgo.
type TMNode struct {
	ID              uint32
	ParentID        uint32
	Lvl             uint32
	Priority        uint32
	Weight          uint32
	ShaperProfileID uint32
	RedAlgo         RedAlgo
}

// ShaperProfile is a shaper-profile descriptor. Rates are in bits per
// second and bursts in bits; unit conversion from byte-mode happens
// before the descriptor reaches this layer.
type ShaperProfile struct {
	ID         uint32
	CommitRate uint64
	CommitSz   uint64
	PeakRate   uint64
	PeakSz     uint64
	PktLenAdj  int32
	PktMode    bool
}

// QueueStats are per-queue hardware counters.
type QueueStats struct {
	TxPkts  uint64
	TxOcts  uint64
	TxDrop  uint64
	RxPkts  uint64
	RxOcts  uint64
	RxDrop  uint64
}

// TMNodeStat indexes TMNodeStats.Stats.
type TMNodeStat int

const (
	TMNodePktsDropped TMNodeStat = iota
	TMNodeBytesDropped
	TMNodeStatMax
)

// TMNodeStats are per-node counters from the TM block.
type TMNodeStats struct {
	Stats [TMNodeStatMax]uint64
}

// NixTM is the per-device NIX traffic-manager handle. Calls are
// synchronous and may block for bounded periods on hardware mailbox
// round-trips; the control plane treats them as plain function calls
// and does not serialise around them.
type NixTM interface {
	// TMIsUserHierarchyEnabled reports whether a user hierarchy is
	// currently committed to hardware.
	TMIsUserHierarchyEnabled() bool

	// TMNodeGet returns the registered node descriptor, or nil if
	// the node ID is unknown.
	TMNodeGet(nodeID uint32) *TMNode

	// TMNodeAdd registers a node descriptor. On success the vendor
	// layer takes ownership of the descriptor.
	TMNodeAdd(node *TMNode) error

	// TMNodeDelete unregisters a node. With free set, the vendor
	// layer releases the descriptor it owns.
	TMNodeDelete(nodeID uint32, free bool) error

	// TMShaperProfileGet returns the registered profile, or nil if
	// the profile ID is unknown.
	TMShaperProfileGet(profileID uint32) *ShaperProfile

	// TMShaperProfileAdd registers a profile descriptor. On success
	// the vendor layer takes ownership of the descriptor.
	TMShaperProfileAdd(profile *ShaperProfile) error

	// TMShaperProfileDelete unregisters a profile. Fails while any
	// node references the profile.
	TMShaperProfileDelete(profileID uint32) error

	// TMNodeShaperUpdate rebinds a node to a different registered
	// profile. Supported while the hierarchy is committed.
	TMNodeShaperUpdate(nodeID, profileID uint32, forceUpdate bool) error

	// TMShaperDefaultRedAlgo selects the default congestion-marking
	// algorithm for the (node, profile) pair. profile may be nil.
	TMShaperDefaultRedAlgo(node *TMNode, profile *ShaperProfile)

	// TMLeafCount returns the number of leaf nodes in the
	// registered hierarchy.
	TMLeafCount() int

	// TMLevelIsLeaf reports whether lvl is the leaf level of the
	// registered hierarchy.
	TMLevelIsLeaf(lvl uint32) bool

	// TMHierarchyEnable commits the registered hierarchy of the
	// given tree to hardware.
	TMHierarchyEnable(tree Tree, xmitEnable bool) error

	// TMHierarchyDisable releases the committed hierarchy.
	// Disabling an uncommitted hierarchy succeeds.
	TMHierarchyDisable() error

	// QueueStats reads hardware counters for a TX queue.
	QueueStats(qid uint32) (QueueStats, error)

	// TMNodeStats reads per-node TM counters, optionally clearing
	// them.
	TMNodeStats(nodeID uint32, clear bool) (TMNodeStats, error)
}
