package tm

import (
	"context"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/roc"
	"github.com/kmonendra/octeon-tm/store"
)

// ShaperProfileCreate registers a shaper profile.
//
// Byte-mode profiles are normalised at entry: all four rate/burst
// values are multiplied by 8, so the rest of the system and the
// hardware see one unit system — bits and bit-bursts.
func (m *Manager) ShaperProfileCreate(ctx context.Context, hwIf uint32, params octeontm.ShaperParams) error {
	port, err := m.resolve(hwIf)
	if err != nil {
		return err
	}
	nix := port.Dev.Nix

	if nix.TMIsUserHierarchyEnabled() {
		return m.rocErr(port, octeontm.ErrHierarchyCommitted, roc.ErrCodeRange,
			"tm shaper create: dynamic update not supported")
	}
	if nix.TMShaperProfileGet(params.ShaperID) != nil {
		return m.rocErr(port, octeontm.ErrShaperExists, roc.ErrCodeInval,
			"tm shaper create: profile %d already exists", params.ShaperID)
	}

	profile := &roc.ShaperProfile{
		ID:         params.ShaperID,
		CommitRate: params.Commit.Rate,
		CommitSz:   params.Commit.BurstSize,
		PeakRate:   params.Peak.Rate,
		PeakSz:     params.Peak.BurstSize,
		PktLenAdj:  params.PktLenAdj,
		PktMode:    params.PktMode,
	}
	// Byte mode: convert to bits.
	if !params.PktMode {
		profile.CommitRate *= 8
		profile.PeakRate *= 8
		profile.CommitSz *= 8
		profile.PeakSz *= 8
	}

	if err := nix.TMShaperProfileAdd(profile); err != nil {
		return m.rocErr(port, nil, roc.ErrCode(err),
			"tm shaper create failed for profile %d", params.ShaperID)
	}

	if err := m.store.SaveShaper(ctx, store.ShaperRecord{
		HwIf:       hwIf,
		ShaperID:   params.ShaperID,
		CommitRate: profile.CommitRate,
		CommitSz:   profile.CommitSz,
		PeakRate:   profile.PeakRate,
		PeakSz:     profile.PeakSz,
		PktLenAdj:  profile.PktLenAdj,
		PktMode:    profile.PktMode,
	}); err != nil {
		if rbErr := nix.TMShaperProfileDelete(params.ShaperID); rbErr != nil {
			m.logger.Error("rollback of shaper registration failed",
				"hw_if", hwIf, "shaper_id", params.ShaperID, "error", rbErr)
		}
		return m.rocErr(port, octeontm.ErrVendor, roc.ErrCodeIO,
			"tm shaper create: persist metadata failed: %v", err)
	}

	m.logger.Info("created shaper profile",
		"hw_if", hwIf, "shaper_id", params.ShaperID,
		"commit_rate", profile.CommitRate, "commit_sz", profile.CommitSz,
		"peak_rate", profile.PeakRate, "peak_sz", profile.PeakSz,
		"pkt_mode", profile.PktMode)
	return nil
}

// ShaperProfileDelete unregisters a shaper profile. The vendor layer
// refuses while any node references the profile; that refusal is
// surfaced like any other vendor error.
func (m *Manager) ShaperProfileDelete(ctx context.Context, hwIf, shaperID uint32) error {
	port, err := m.resolve(hwIf)
	if err != nil {
		return err
	}
	nix := port.Dev.Nix

	if nix.TMIsUserHierarchyEnabled() {
		return m.rocErr(port, octeontm.ErrHierarchyCommitted, roc.ErrCodeRange,
			"tm shaper delete: dynamic update not supported")
	}

	if err := nix.TMShaperProfileDelete(shaperID); err != nil {
		return m.rocErr(port, nil, roc.ErrCode(err),
			"tm shaper delete failed for profile %d", shaperID)
	}

	if err := m.store.DeleteShaper(ctx, hwIf, shaperID); err != nil {
		m.logger.Warn("delete of shaper metadata failed", "hw_if", hwIf, "shaper_id", shaperID, "error", err)
	}

	m.logger.Info("deleted shaper profile", "hw_if", hwIf, "shaper_id", shaperID)
	return nil
}
