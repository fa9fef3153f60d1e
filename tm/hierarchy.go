package tm

import (
	"context"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/roc"
	"github.com/kmonendra/octeon-tm/store"
)

// StartTM commits the constructed hierarchy to hardware.
//
// Preconditions, in order: no user hierarchy is currently committed,
// and the hierarchy has at least as many leaves as the port has TX
// queues. The disable before enable is redundant after the committed
// check but matches what the hardware expects; keep the sequence.
func (m *Manager) StartTM(ctx context.Context, hwIf uint32) error {
	port, err := m.resolve(hwIf)
	if err != nil {
		return err
	}
	nix := port.Dev.Nix

	if nix.TMIsUserHierarchyEnabled() {
		return m.rocErr(port, octeontm.ErrHierarchyCommitted, roc.ErrCodeIO,
			"tm start: user hierarchy already exists")
	}

	if leaves := nix.TMLeafCount(); leaves < int(port.Intf.NumTxQueues) {
		return m.rocErr(port, octeontm.ErrPrecondition, roc.ErrCodeInval,
			"tm start: incomplete hierarchy: %d leaves for %d tx queues",
			leaves, port.Intf.NumTxQueues)
	}

	if err := nix.TMHierarchyDisable(); err != nil {
		return m.rocErr(port, nil, roc.ErrCode(err), "tm start: disable of prior hierarchy failed")
	}

	if err := nix.TMHierarchyEnable(roc.TreeUser, true); err != nil {
		return m.rocErr(port, nil, roc.ErrCode(err), "tm start: hierarchy enable failed")
	}

	if err := m.store.SetHierarchyState(ctx, hwIf, store.HierarchyCommitted); err != nil {
		// A failed commit must leave the port uncommitted.
		if rbErr := nix.TMHierarchyDisable(); rbErr != nil {
			m.logger.Error("rollback of hierarchy enable failed", "hw_if", hwIf, "error", rbErr)
		}
		return m.rocErr(port, octeontm.ErrVendor, roc.ErrCodeIO,
			"tm start: persist hierarchy state failed: %v", err)
	}

	m.logger.Info("tm hierarchy committed", "hw_if", hwIf, "leaves", nix.TMLeafCount())
	return nil
}

// StopTM unconditionally disables the committed hierarchy. A disable
// failure leaves the port in an indeterminate state; the caller's
// recourse is a device reset, so no cleanup is attempted here.
func (m *Manager) StopTM(ctx context.Context, hwIf uint32) error {
	port, err := m.resolve(hwIf)
	if err != nil {
		return err
	}
	nix := port.Dev.Nix

	if err := nix.TMHierarchyDisable(); err != nil {
		return m.rocErr(port, nil, roc.ErrCodeIO, "tm stop failed")
	}

	if err := m.store.SetHierarchyState(ctx, hwIf, store.HierarchyUncommitted); err != nil {
		m.logger.Warn("persist of hierarchy state failed", "hw_if", hwIf, "error", err)
	}

	m.logger.Info("tm hierarchy released", "hw_if", hwIf)
	return nil
}
