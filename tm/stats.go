package tm

import (
	"context"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/roc"
)

// NodeReadStats fills stats from the counters appropriate to the
// node's level. Leaf nodes map to TX queues, so their counters come
// from the queue statistics. Non-leaf nodes expose only RED drop
// counters. An unknown node reads as all zeroes rather than an error,
// so callers can poll a hierarchy while it is still being built.
func (m *Manager) NodeReadStats(ctx context.Context, hwIf, nodeID uint32, stats *octeontm.NodeStats) error {
	port, err := m.resolve(hwIf)
	if err != nil {
		return err
	}
	nix := port.Dev.Nix

	node := nix.TMNodeGet(nodeID)
	if node == nil {
		return nil
	}

	if nix.TMLevelIsLeaf(node.Lvl) {
		qs, err := nix.QueueStats(node.ID)
		if err != nil {
			return m.rocErr(port, nil, roc.ErrCode(err),
				"tm node %d: queue stats read failed", nodeID)
		}
		stats.Pkts = qs.TxPkts
		stats.Bytes = qs.TxOcts
		m.logger.Info("leaf node stats", "hw_if", hwIf, "node_id", nodeID,
			"tx_pkts", qs.TxPkts, "tx_octs", qs.TxOcts, "tx_drop", qs.TxDrop)
		return nil
	}

	ns, err := nix.TMNodeStats(nodeID, false)
	if err != nil {
		return m.rocErr(port, nil, roc.ErrCode(err),
			"tm node %d: node stats read failed", nodeID)
	}
	stats.PktsDropped[octeontm.ColorRed] = ns.Stats[roc.TMNodePktsDropped]
	stats.BytesDropped[octeontm.ColorRed] = ns.Stats[roc.TMNodeBytesDropped]
	return nil
}
