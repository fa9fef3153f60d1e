// Package store defines the metadata persistence interface for the TM
// control plane.
//
// The vendor layer owns the live node and shaper descriptors; the
// store keeps a metadata mirror so hierarchies survive inspection
// across control-plane restarts and the CLI can report configured
// state without touching hardware. Writes happen after the vendor
// registration succeeds; a failed write rolls the registration back.
package store

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// HierarchyState is the per-port commit state.
type HierarchyState string

const (
	HierarchyUncommitted HierarchyState = "uncommitted"
	HierarchyCommitted   HierarchyState = "committed"
)

// NodeRecord mirrors a registered TM node.
type NodeRecord struct {
	HwIf            uint32
	NodeID          uint32
	ParentID        uint32
	Lvl             uint32
	Priority        uint32
	Weight          uint32
	ShaperProfileID uint32
	CreatedAt       time.Time
}

// ShaperRecord mirrors a registered shaper profile, in normalised bit
// units.
type ShaperRecord struct {
	HwIf       uint32
	ShaperID   uint32
	CommitRate uint64
	CommitSz   uint64
	PeakRate   uint64
	PeakSz     uint64
	PktLenAdj  int32
	PktMode    bool
	CreatedAt  time.Time
}

// Store persists TM metadata per port.
type Store interface {
	io.Closer

	SaveNode(ctx context.Context, rec NodeRecord) error
	DeleteNode(ctx context.Context, hwIf, nodeID uint32) error
	GetNode(ctx context.Context, hwIf, nodeID uint32) (NodeRecord, error)
	ListNodes(ctx context.Context, hwIf uint32) ([]NodeRecord, error)
	UpdateNodeShaper(ctx context.Context, hwIf, nodeID, shaperID uint32) error

	SaveShaper(ctx context.Context, rec ShaperRecord) error
	DeleteShaper(ctx context.Context, hwIf, shaperID uint32) error
	GetShaper(ctx context.Context, hwIf, shaperID uint32) (ShaperRecord, error)
	ListShapers(ctx context.Context, hwIf uint32) ([]ShaperRecord, error)

	// SetHierarchyState records the commit state of a port.
	SetHierarchyState(ctx context.Context, hwIf uint32, state HierarchyState) error
	// GetHierarchyState returns the recorded state; ports never
	// seen before report HierarchyUncommitted.
	GetHierarchyState(ctx context.Context, hwIf uint32) (HierarchyState, error)
}
