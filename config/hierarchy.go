package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	octeontm "github.com/kmonendra/octeon-tm"
)

// Hierarchy describes a complete scheduling hierarchy for one port:
// the shaper profiles to create and the nodes that form the tree. The
// CLI applies these files through the TM façade.
//
// Example:
//
//	port:
//	  hw_if: 1
//	  tx_queues: 4
//	shapers:
//	  - id: 1
//	    commit: {rate: 1000000, burst: 2000}
//	    peak: {rate: 1500000, burst: 3000}
//	    pkt_mode: false
//	nodes:
//	  - id: 100
//	    parent: root
//	    shaper: 1
//	  - id: 200
//	    parent: 100
//	    priority: 0
//	    weight: 1
//	    shaper: 1
type Hierarchy struct {
	Port    PortSpec     `yaml:"port"`
	Shapers []ShaperSpec `yaml:"shapers"`
	Nodes   []NodeSpec   `yaml:"nodes"`
}

// PortSpec identifies the target port.
type PortSpec struct {
	HwIf     uint32 `yaml:"hw_if"`
	TxQueues uint16 `yaml:"tx_queues"`
}

// RateBurst is a rate/burst pair.
type RateBurst struct {
	Rate  uint64 `yaml:"rate"`
	Burst uint64 `yaml:"burst"`
}

// ShaperSpec describes one shaper profile.
type ShaperSpec struct {
	ID        uint32    `yaml:"id"`
	Commit    RateBurst `yaml:"commit"`
	Peak      RateBurst `yaml:"peak"`
	PktLenAdj int32     `yaml:"pkt_len_adj"`
	PktMode   bool      `yaml:"pkt_mode"`
}

// NodeSpec describes one scheduling node. Parent is either a node ID
// or the literal "root".
type NodeSpec struct {
	ID       uint32  `yaml:"id"`
	Parent   string  `yaml:"parent"`
	Priority uint32  `yaml:"priority"`
	Weight   uint32  `yaml:"weight"`
	Shaper   *uint32 `yaml:"shaper"` // nil: unshaped
}

// ParentID maps the parent field onto the façade sentinel encoding.
func (n NodeSpec) ParentID() (uint32, error) {
	if n.Parent == "root" || n.Parent == "" {
		return octeontm.InvalidNodeID, nil
	}
	var id uint32
	if _, err := fmt.Sscanf(n.Parent, "%d", &id); err != nil {
		return 0, fmt.Errorf("node %d: parent %q is neither a node id nor \"root\"", n.ID, n.Parent)
	}
	return id, nil
}

// ShaperID maps the shaper field onto the façade sentinel encoding.
func (n NodeSpec) ShaperID() uint32 {
	if n.Shaper == nil {
		return octeontm.ShaperProfileNone
	}
	return *n.Shaper
}

// LoadHierarchy reads and validates a hierarchy file.
func LoadHierarchy(path string) (Hierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Hierarchy{}, fmt.Errorf("read hierarchy %s: %w", path, err)
	}
	var h Hierarchy
	if err := yaml.Unmarshal(data, &h); err != nil {
		return Hierarchy{}, fmt.Errorf("parse hierarchy %s: %w", path, err)
	}
	if err := h.Validate(); err != nil {
		return Hierarchy{}, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// Validate checks the tree shape offline: unique IDs, a single root,
// parents declared before their children, and shaper references that
// resolve. The vendor layer re-checks all of this; validating here
// gives operators file/line-quality errors before touching a device.
func (h Hierarchy) Validate() error {
	if h.Port.TxQueues == 0 {
		return fmt.Errorf("port: tx_queues must be at least 1")
	}

	shapers := make(map[uint32]bool, len(h.Shapers))
	for _, s := range h.Shapers {
		if shapers[s.ID] {
			return fmt.Errorf("shaper %d: duplicate id", s.ID)
		}
		shapers[s.ID] = true
	}

	nodes := make(map[uint32]bool, len(h.Nodes))
	roots := 0
	for _, n := range h.Nodes {
		if nodes[n.ID] {
			return fmt.Errorf("node %d: duplicate id", n.ID)
		}
		parentID, err := n.ParentID()
		if err != nil {
			return err
		}
		if parentID == octeontm.InvalidNodeID {
			roots++
		} else if !nodes[parentID] {
			return fmt.Errorf("node %d: parent %d not declared before it", n.ID, parentID)
		}
		if n.Shaper != nil && !shapers[*n.Shaper] {
			return fmt.Errorf("node %d: unknown shaper %d", n.ID, *n.Shaper)
		}
		nodes[n.ID] = true
	}

	if len(h.Nodes) > 0 && roots != 1 {
		return fmt.Errorf("hierarchy must have exactly one root node, found %d", roots)
	}
	return nil
}
