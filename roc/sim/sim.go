// Package sim is a software model of the NIX traffic-manager block.
//
// It implements roc.NixTM with the same registration rules the real
// ROC library enforces (duplicate IDs, unknown parents, profile
// reference counting, hierarchy enable state) so the control plane can
// be exercised end to end without hardware. The CLI runs against it;
// tests use it directly or wrap it for error injection.
package sim

import (
	"log/slog"

	"github.com/kmonendra/octeon-tm/roc"
)

// Nix models one device's NIX TM state. It is not safe for concurrent
// use; like the hardware mailbox it expects a single control-plane
// caller.
type Nix struct {
	name   string
	logger *slog.Logger

	nodes       map[uint32]*roc.TMNode
	children    map[uint32]int // parent node ID -> child count
	profiles    map[uint32]*roc.ShaperProfile
	profileRefs map[uint32]int

	enabled bool
	tree    roc.Tree

	queueStats map[uint32]roc.QueueStats
	nodeStats  map[uint32]roc.TMNodeStats
}

// New creates an empty NIX TM model for the named device.
func New(name string, logger *slog.Logger) *Nix {
	if logger == nil {
		logger = slog.Default()
	}
	return &Nix{
		name:        name,
		logger:      logger.With("component", "nix-sim", "device", name),
		nodes:       make(map[uint32]*roc.TMNode),
		children:    make(map[uint32]int),
		profiles:    make(map[uint32]*roc.ShaperProfile),
		profileRefs: make(map[uint32]int),
		queueStats:  make(map[uint32]roc.QueueStats),
		nodeStats:   make(map[uint32]roc.TMNodeStats),
	}
}

func (n *Nix) TMIsUserHierarchyEnabled() bool {
	return n.enabled && n.tree == roc.TreeUser
}

func (n *Nix) TMNodeGet(nodeID uint32) *roc.TMNode {
	return n.nodes[nodeID]
}

func (n *Nix) TMNodeAdd(node *roc.TMNode) error {
	if n.enabled {
		return roc.Errf("nix_tm_node_add", roc.ErrCodeTMHierarchyEnabled)
	}
	if node == nil || node.ID == nodeIDInvalid {
		return roc.Errf("nix_tm_node_add", roc.ErrCodeTMInvalidNode)
	}
	if _, ok := n.nodes[node.ID]; ok {
		return roc.Errf("nix_tm_node_add", roc.ErrCodeExist)
	}
	if node.ParentID != nodeIDInvalid {
		if _, ok := n.nodes[node.ParentID]; !ok {
			return roc.Errf("nix_tm_node_add", roc.ErrCodeTMInvalidParent)
		}
	} else if n.rootID() != nodeIDInvalid {
		// Only one root per device.
		return roc.Errf("nix_tm_node_add", roc.ErrCodeTMInvalidParent)
	}
	if node.ShaperProfileID != shaperProfileNone {
		if _, ok := n.profiles[node.ShaperProfileID]; !ok {
			return roc.Errf("nix_tm_node_add", roc.ErrCodeTMInvalidShaperProfile)
		}
		n.profileRefs[node.ShaperProfileID]++
	}
	n.nodes[node.ID] = node
	if node.ParentID != nodeIDInvalid {
		n.children[node.ParentID]++
	}
	n.logger.Debug("registered tm node", "node_id", node.ID, "parent_id", node.ParentID, "lvl", node.Lvl)
	return nil
}

func (n *Nix) TMNodeDelete(nodeID uint32, free bool) error {
	if n.enabled {
		return roc.Errf("nix_tm_node_delete", roc.ErrCodeTMHierarchyEnabled)
	}
	node, ok := n.nodes[nodeID]
	if !ok {
		return roc.Errf("nix_tm_node_delete", roc.ErrCodeNoEnt)
	}
	if n.children[nodeID] > 0 {
		return roc.Errf("nix_tm_node_delete", roc.ErrCodeTMChildExists)
	}
	if node.ShaperProfileID != shaperProfileNone {
		n.profileRefs[node.ShaperProfileID]--
	}
	if node.ParentID != nodeIDInvalid {
		n.children[node.ParentID]--
	}
	delete(n.nodes, nodeID)
	delete(n.children, nodeID)
	// free releases the descriptor the vendor layer owns; with a
	// garbage collector dropping the map reference is that release.
	_ = free
	n.logger.Debug("deleted tm node", "node_id", nodeID)
	return nil
}

func (n *Nix) TMShaperProfileGet(profileID uint32) *roc.ShaperProfile {
	return n.profiles[profileID]
}

func (n *Nix) TMShaperProfileAdd(profile *roc.ShaperProfile) error {
	if profile == nil || profile.ID == shaperProfileNone {
		return roc.Errf("nix_tm_shaper_profile_add", roc.ErrCodeTMInvalidShaperProfile)
	}
	if _, ok := n.profiles[profile.ID]; ok {
		return roc.Errf("nix_tm_shaper_profile_add", roc.ErrCodeExist)
	}
	n.profiles[profile.ID] = profile
	n.logger.Debug("registered shaper profile", "shaper_id", profile.ID,
		"commit_rate", profile.CommitRate, "peak_rate", profile.PeakRate)
	return nil
}

func (n *Nix) TMShaperProfileDelete(profileID uint32) error {
	if _, ok := n.profiles[profileID]; !ok {
		return roc.Errf("nix_tm_shaper_profile_delete", roc.ErrCodeNoEnt)
	}
	if n.profileRefs[profileID] > 0 {
		return roc.Errf("nix_tm_shaper_profile_delete", roc.ErrCodeTMShaperProfileInUse)
	}
	delete(n.profiles, profileID)
	delete(n.profileRefs, profileID)
	n.logger.Debug("deleted shaper profile", "shaper_id", profileID)
	return nil
}

func (n *Nix) TMNodeShaperUpdate(nodeID, profileID uint32, forceUpdate bool) error {
	node, ok := n.nodes[nodeID]
	if !ok {
		return roc.Errf("nix_tm_node_shaper_update", roc.ErrCodeTMInvalidNode)
	}
	if profileID != shaperProfileNone {
		if _, ok := n.profiles[profileID]; !ok {
			return roc.Errf("nix_tm_node_shaper_update", roc.ErrCodeTMInvalidShaperProfile)
		}
	}
	if node.ShaperProfileID != shaperProfileNone {
		n.profileRefs[node.ShaperProfileID]--
	}
	if profileID != shaperProfileNone {
		n.profileRefs[profileID]++
	}
	node.ShaperProfileID = profileID
	_ = forceUpdate // in-place rate reprogramming; no state change to model
	n.logger.Debug("rebound node shaper", "node_id", nodeID, "shaper_id", profileID)
	return nil
}

func (n *Nix) TMShaperDefaultRedAlgo(node *roc.TMNode, profile *roc.ShaperProfile) {
	if node == nil {
		return
	}
	node.RedAlgo = roc.RedAlgoStd
	// Dual-rate profiles mark-and-send past the commit rate instead
	// of tail-dropping at the node.
	if profile != nil && profile.PeakRate > 0 && profile.CommitRate > 0 {
		node.RedAlgo = roc.RedAlgoSend
	}
}

// TMLeafCount counts nodes with no children. Leaves map one-to-one to
// TX queues when the hierarchy is committed.
func (n *Nix) TMLeafCount() int {
	count := 0
	for id := range n.nodes {
		if n.children[id] == 0 {
			count++
		}
	}
	return count
}

// TMLevelIsLeaf reports whether lvl is the deepest level of the
// registered hierarchy. The root level alone is never a leaf level.
func (n *Nix) TMLevelIsLeaf(lvl uint32) bool {
	if lvl == 0 {
		return false
	}
	max := uint32(0)
	for _, node := range n.nodes {
		if node.Lvl > max {
			max = node.Lvl
		}
	}
	return lvl == max
}

func (n *Nix) TMHierarchyEnable(tree roc.Tree, xmitEnable bool) error {
	if n.enabled {
		return roc.Errf("nix_tm_hierarchy_enable", roc.ErrCodeTMHierarchyEnabled)
	}
	n.enabled = true
	n.tree = tree
	n.logger.Debug("hierarchy enabled", "tree", int(tree), "xmit_enable", xmitEnable)
	return nil
}

func (n *Nix) TMHierarchyDisable() error {
	n.enabled = false
	n.tree = roc.TreeDefault
	n.logger.Debug("hierarchy disabled")
	return nil
}

func (n *Nix) QueueStats(qid uint32) (roc.QueueStats, error) {
	return n.queueStats[qid], nil
}

func (n *Nix) TMNodeStats(nodeID uint32, clear bool) (roc.TMNodeStats, error) {
	if _, ok := n.nodes[nodeID]; !ok {
		return roc.TMNodeStats{}, roc.Errf("nix_tm_node_stats", roc.ErrCodeTMInvalidNode)
	}
	stats := n.nodeStats[nodeID]
	if clear {
		n.nodeStats[nodeID] = roc.TMNodeStats{}
	}
	return stats, nil
}

// RecordTx bumps a queue's TX counters, standing in for traffic the
// hardware would have scheduled.
func (n *Nix) RecordTx(qid uint32, pkts, bytes uint64) {
	qs := n.queueStats[qid]
	qs.TxPkts += pkts
	qs.TxOcts += bytes
	n.queueStats[qid] = qs
}

// RecordDrops bumps a node's drop counters.
func (n *Nix) RecordDrops(nodeID uint32, pkts, bytes uint64) {
	ns := n.nodeStats[nodeID]
	ns.Stats[roc.TMNodePktsDropped] += pkts
	ns.Stats[roc.TMNodeBytesDropped] += bytes
	n.nodeStats[nodeID] = ns
}

func (n *Nix) rootID() uint32 {
	for id, node := range n.nodes {
		if node.ParentID == nodeIDInvalid {
			return id
		}
	}
	return nodeIDInvalid
}

// Sentinels mirrored from the control-plane domain package; the roc
// layer sees only raw IDs.
const (
	nodeIDInvalid     uint32 = 0xFFFFFFFF
	shaperProfileNone uint32 = 0xFFFFFFFF
)
