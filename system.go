package octeontm

import "context"

// System is the façade dispatch table the upstream dataplane binds at
// device-attach time. It exposes the eight TM operations without the
// dataplane knowing which NIC implementation it is driving.
//
// The value is immutable once handed out. All operations run to
// completion on the caller's control-plane context; the context
// parameter is plumbing for the metadata store, not a cancellation
// point for hardware calls.
type System struct {
	NodeAdd             func(ctx context.Context, hwIf, nodeID, parentID, priority, weight, lvl uint32, params NodeParams) error
	NodeDelete          func(ctx context.Context, hwIf, nodeID uint32) error
	NodeReadStats       func(ctx context.Context, hwIf, nodeID uint32, stats *NodeStats) error
	ShaperProfileCreate func(ctx context.Context, hwIf uint32, params ShaperParams) error
	NodeShaperUpdate    func(ctx context.Context, hwIf, nodeID, profileID uint32) error
	ShaperProfileDelete func(ctx context.Context, hwIf, shaperID uint32) error
	StartTM             func(ctx context.Context, hwIf uint32) error
	StopTM              func(ctx context.Context, hwIf uint32) error
}
