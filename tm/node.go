package tm

import (
	"context"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/roc"
	"github.com/kmonendra/octeon-tm/store"
)

// NodeAdd registers a scheduling node on an uncommitted hierarchy.
//
// The caller-supplied level is authoritative only for the root: when a
// valid parent exists the level is overridden to parent.Lvl+1, which
// removes level/parent disagreement as a source of silent hardware
// misconfiguration.
func (m *Manager) NodeAdd(ctx context.Context, hwIf, nodeID, parentID, priority, weight, lvl uint32, params octeontm.NodeParams) error {
	port, err := m.resolve(hwIf)
	if err != nil {
		return err
	}
	nix := port.Dev.Nix

	if nix.TMIsUserHierarchyEnabled() {
		return m.rocErr(port, octeontm.ErrHierarchyCommitted, roc.ErrCodeRange,
			"tm node add: dynamic update not supported")
	}

	var parent *roc.TMNode
	if parentID != octeontm.InvalidNodeID {
		parent = nix.TMNodeGet(parentID)
	}

	// Find the right level.
	switch {
	case lvl != octeontm.LevelRoot && parent != nil:
		lvl = parent.Lvl + 1
	case parentID == octeontm.InvalidNodeID:
		lvl = octeontm.LevelRoot
	default:
		// Neither a proper parent nor a proper level was given.
		return m.rocErr(port, octeontm.ErrInvalidParent, roc.ErrCodeRange,
			"tm node add: invalid parent %d for node %d", parentID, nodeID)
	}

	node := &roc.TMNode{
		ID:              nodeID,
		ParentID:        parentID,
		Lvl:             lvl,
		Priority:        priority,
		Weight:          weight,
		ShaperProfileID: params.ShaperProfileID,
	}

	// The profile may be absent; the vendor layer decides whether
	// that is acceptable for this node.
	profile := nix.TMShaperProfileGet(params.ShaperProfileID)

	if err := nix.TMNodeAdd(node); err != nil {
		return m.rocErr(port, nil, roc.ErrCode(err), "tm node add failed for node %d", nodeID)
	}

	// Congestion marking follows the shaper class on every bind.
	nix.TMShaperDefaultRedAlgo(node, profile)

	if err := m.store.SaveNode(ctx, store.NodeRecord{
		HwIf:            hwIf,
		NodeID:          nodeID,
		ParentID:        parentID,
		Lvl:             lvl,
		Priority:        priority,
		Weight:          weight,
		ShaperProfileID: params.ShaperProfileID,
	}); err != nil {
		// Keep store and hardware in agreement: undo the
		// registration the vendor layer just accepted.
		if rbErr := nix.TMNodeDelete(nodeID, true); rbErr != nil {
			m.logger.Error("rollback of node registration failed",
				"hw_if", hwIf, "node_id", nodeID, "error", rbErr)
		}
		return m.rocErr(port, octeontm.ErrVendor, roc.ErrCodeIO,
			"tm node add: persist metadata failed: %v", err)
	}

	m.logger.Info("added tm node",
		"hw_if", hwIf, "node_id", nodeID, "parent_id", parentID,
		"lvl", lvl, "priority", priority, "weight", weight,
		"shaper_id", params.ShaperProfileID)
	return nil
}

// NodeDelete unregisters a node from an uncommitted hierarchy. The
// vendor layer releases the descriptor it owns.
func (m *Manager) NodeDelete(ctx context.Context, hwIf, nodeID uint32) error {
	port, err := m.resolve(hwIf)
	if err != nil {
		return err
	}
	nix := port.Dev.Nix

	if nix.TMIsUserHierarchyEnabled() {
		return m.rocErr(port, octeontm.ErrHierarchyCommitted, roc.ErrCodeRange,
			"tm node delete: dynamic update not supported")
	}
	if nodeID == octeontm.InvalidNodeID {
		return m.rocErr(port, octeontm.ErrInvalidNodeID, roc.ErrCodeInval,
			"tm node delete: invalid node id")
	}

	node := nix.TMNodeGet(nodeID)
	if node == nil {
		return m.rocErr(port, octeontm.ErrNotFound, roc.ErrCodeInval,
			"tm node delete: node %d not found", nodeID)
	}

	if err := nix.TMNodeDelete(node.ID, true); err != nil {
		return m.rocErr(port, nil, roc.ErrCode(err), "tm node delete failed for node %d", nodeID)
	}

	if err := m.store.DeleteNode(ctx, hwIf, nodeID); err != nil {
		// The hardware-side delete already happened; the stale
		// record is only a reporting artefact.
		m.logger.Warn("delete of node metadata failed", "hw_if", hwIf, "node_id", nodeID, "error", err)
	}

	m.logger.Info("deleted tm node", "hw_if", hwIf, "node_id", nodeID)
	return nil
}

// NodeShaperUpdate rebinds a node to a different registered shaper
// profile. This is the one mutation permitted while the hierarchy is
// committed; the vendor layer reprograms the shaper in place.
func (m *Manager) NodeShaperUpdate(ctx context.Context, hwIf, nodeID, profileID uint32) error {
	port, err := m.resolve(hwIf)
	if err != nil {
		return err
	}
	nix := port.Dev.Nix

	if err := nix.TMNodeShaperUpdate(nodeID, profileID, false); err != nil {
		return m.rocErr(port, nil, roc.ErrCode(err),
			"tm node shaper update failed for node %d", nodeID)
	}

	node := nix.TMNodeGet(nodeID)
	if node == nil {
		return m.rocErr(port, octeontm.ErrNotFound, roc.ErrCodeInval,
			"tm node shaper update: node %d not found", nodeID)
	}

	profile := nix.TMShaperProfileGet(profileID)
	nix.TMShaperDefaultRedAlgo(node, profile)

	if err := m.store.UpdateNodeShaper(ctx, hwIf, nodeID, profileID); err != nil {
		m.logger.Warn("update of node shaper metadata failed",
			"hw_if", hwIf, "node_id", nodeID, "shaper_id", profileID, "error", err)
	}

	m.logger.Info("rebound tm node shaper", "hw_if", hwIf, "node_id", nodeID, "shaper_id", profileID)
	return nil
}
