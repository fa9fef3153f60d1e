// Package device models the attached OCTEON devices and resolves
// upstream hardware-interface indexes to their ports.
//
// The dataplane identifies ports by an opaque hw_if index. Every TM
// operation starts by resolving that index to the owning port, its
// device, and the device's NIX traffic-manager handle. Resolution has
// no side effects.
package device

import (
	"fmt"

	"github.com/kmonendra/octeon-tm/roc"
)

// Device is one attached OCTEON NIC.
type Device struct {
	Name string
	Nix  roc.NixTM
}

// PortIntf holds the upstream interface attributes of a port.
type PortIntf struct {
	// NumTxQueues is the configured TX queue count. start_tm
	// requires at least this many leaf nodes.
	NumTxQueues uint16
}

// Port is one egress port of a device.
type Port struct {
	HwIfIndex uint32
	Intf      PortIntf
	Dev       *Device
}

// Registry maps hw_if indexes to ports. It is populated at
// device-attach time and read on the single control-plane context, so
// it carries no locking.
type Registry struct {
	ports map[uint32]*Port
}

// NewRegistry returns an empty port registry.
func NewRegistry() *Registry {
	return &Registry{ports: make(map[uint32]*Port)}
}

// Attach registers a port under its hw_if index.
func (r *Registry) Attach(port *Port) error {
	if port == nil || port.Dev == nil || port.Dev.Nix == nil {
		return fmt.Errorf("attach port: incomplete port descriptor")
	}
	if _, ok := r.ports[port.HwIfIndex]; ok {
		return fmt.Errorf("attach port: hw_if %d already attached", port.HwIfIndex)
	}
	r.ports[port.HwIfIndex] = port
	return nil
}

// Detach removes a port. Detaching an unknown index is a no-op.
func (r *Registry) Detach(hwIfIndex uint32) {
	delete(r.ports, hwIfIndex)
}

// Resolve returns the port registered under hwIfIndex.
func (r *Registry) Resolve(hwIfIndex uint32) (*Port, error) {
	port, ok := r.ports[hwIfIndex]
	if !ok {
		return nil, fmt.Errorf("unknown hw interface %d", hwIfIndex)
	}
	return port, nil
}
