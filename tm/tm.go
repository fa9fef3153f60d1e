// Package tm is the traffic-manager control plane for OCTEON NIC
// egress ports.
//
// The Manager mediates between the upstream dataplane and the vendor
// hardware abstraction (roc.NixTM): it validates hierarchy mutations,
// hands descriptors to the vendor layer, mirrors accepted metadata
// into the store, and reads counters back. Operations follow a fixed
// sequence: resolve the port, validate against hardware state, hand
// off to the vendor layer, then persist — with the vendor registration
// rolled back if persistence fails, so store and hardware never
// disagree.
//
// The hierarchy lifecycle is a two-state machine per port: UNCOMMITTED
// (nodes and profiles may be added and removed) and COMMITTED
// (hardware scheduling active; only shaper rebinds and stats reads are
// allowed). Committed state is always read from the hardware handle,
// never from the store.
package tm

import (
	"errors"
	"fmt"
	"log/slog"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/device"
	"github.com/kmonendra/octeon-tm/roc"
	"github.com/kmonendra/octeon-tm/store"
)

// Manager implements the eight TM façade operations for all attached
// ports.
type Manager struct {
	devices *device.Registry
	store   store.Store
	logger  *slog.Logger
}

// New creates a Manager over the attached-port registry and the
// metadata store.
func New(devices *device.Registry, st store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		devices: devices,
		store:   st,
		logger:  logger.With("component", "tm", "class", "octeon", "subclass", "tm"),
	}
}

// Ops returns the immutable dispatch table the dataplane binds at
// device-attach time.
func (m *Manager) Ops() octeontm.System {
	return octeontm.System{
		NodeAdd:             m.NodeAdd,
		NodeDelete:          m.NodeDelete,
		NodeReadStats:       m.NodeReadStats,
		ShaperProfileCreate: m.ShaperProfileCreate,
		NodeShaperUpdate:    m.NodeShaperUpdate,
		ShaperProfileDelete: m.ShaperProfileDelete,
		StartTM:             m.StartTM,
		StopTM:              m.StopTM,
	}
}

// rocErr is the single error exit for every failure: it formats the
// context, emits one uniformly-shaped error log line carrying the
// vendor's symbolic error string and numeric code, and returns the
// opaque internal error with the taxonomy kind in the wrap chain.
func (m *Manager) rocErr(port *device.Port, kind error, rv int, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	attrs := []any{"roc_error", roc.ErrorMsg(rv), "code", rv}
	if port != nil {
		attrs = append(attrs, "device", port.Dev.Name, "hw_if", port.HwIfIndex)
	}
	m.logger.Error(msg, attrs...)
	if kind == nil {
		kind = vendorKind(rv)
	}
	return fmt.Errorf("%s: %w", msg, errors.Join(octeontm.ErrInternal, kind))
}

// vendorKind classifies a vendor return code that the call site has no
// more specific taxonomy kind for.
func vendorKind(rv int) error {
	switch rv {
	case roc.ErrCodeNoMem:
		return octeontm.ErrOutOfMemory
	case roc.ErrCodeNoEnt, roc.ErrCodeTMInvalidNode:
		return octeontm.ErrNotFound
	default:
		return octeontm.ErrVendor
	}
}

// resolve maps an upstream hw_if index to its port. It has no side
// effects; failure is reported through the error mapper like any other
// fault.
func (m *Manager) resolve(hwIf uint32) (*device.Port, error) {
	port, err := m.devices.Resolve(hwIf)
	if err != nil {
		return nil, m.rocErr(nil, octeontm.ErrNotFound, roc.ErrCodeInval, "tm port resolve failed for hw_if %d", hwIf)
	}
	return port, nil
}
