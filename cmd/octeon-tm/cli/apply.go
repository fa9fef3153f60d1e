package cli

import (
	"context"
	"fmt"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/config"
	"github.com/kmonendra/octeon-tm/device"
	"github.com/kmonendra/octeon-tm/roc/sim"
	"github.com/kmonendra/octeon-tm/store/sqlite"
	"github.com/kmonendra/octeon-tm/tm"
)

// ApplyCmd builds the hierarchy described by a file against a port
// and, unless --no-commit is given, commits it.
type ApplyCmd struct {
	File     string `arg:"" help:"Hierarchy YAML file."`
	Device   string `name:"device" help:"Device name." default:"octeon0"`
	NoCommit bool   `name:"no-commit" help:"Build the hierarchy but leave it uncommitted."`
}

// Run executes the apply command.
func (c *ApplyCmd) Run(cli *CLI, ctx context.Context) error {
	logger, err := cli.Logger()
	if err != nil {
		return err
	}

	h, err := config.LoadHierarchy(c.File)
	if err != nil {
		return err
	}

	dbPath, err := cli.DBPath()
	if err != nil {
		return err
	}
	st, err := sqlite.New(ctx, dbPath, logger)
	if err != nil {
		return fmt.Errorf("open store at %s: %w", dbPath, err)
	}
	defer st.Close()

	registry := device.NewRegistry()
	dev := &device.Device{Name: c.Device, Nix: sim.New(c.Device, logger)}
	port := &device.Port{
		HwIfIndex: h.Port.HwIf,
		Intf:      device.PortIntf{NumTxQueues: h.Port.TxQueues},
		Dev:       dev,
	}
	if err := registry.Attach(port); err != nil {
		return err
	}

	ops := tm.New(registry, st, logger).Ops()

	for _, s := range h.Shapers {
		params := octeontm.ShaperParams{
			ShaperID:  s.ID,
			Commit:    octeontm.RateSpec{Rate: s.Commit.Rate, BurstSize: s.Commit.Burst},
			Peak:      octeontm.RateSpec{Rate: s.Peak.Rate, BurstSize: s.Peak.Burst},
			PktLenAdj: s.PktLenAdj,
			PktMode:   s.PktMode,
		}
		if err := ops.ShaperProfileCreate(ctx, h.Port.HwIf, params); err != nil {
			return fmt.Errorf("shaper %d: %w", s.ID, err)
		}
	}

	for _, n := range h.Nodes {
		parentID, err := n.ParentID()
		if err != nil {
			return err
		}
		// Non-root levels are derived from the parent; only the
		// root's requested level is honoured.
		lvl := uint32(1)
		if parentID == octeontm.InvalidNodeID {
			lvl = octeontm.LevelRoot
		}
		params := octeontm.NodeParams{ShaperProfileID: n.ShaperID()}
		if err := ops.NodeAdd(ctx, h.Port.HwIf, n.ID, parentID, n.Priority, n.Weight, lvl, params); err != nil {
			return fmt.Errorf("node %d: %w", n.ID, err)
		}
	}

	if c.NoCommit {
		fmt.Printf("Built %d shapers and %d nodes on hw_if %d (uncommitted)\n",
			len(h.Shapers), len(h.Nodes), h.Port.HwIf)
		return nil
	}

	if err := ops.StartTM(ctx, h.Port.HwIf); err != nil {
		return err
	}
	fmt.Printf("Committed hierarchy on hw_if %d: %d shapers, %d nodes\n",
		h.Port.HwIf, len(h.Shapers), len(h.Nodes))
	return nil
}
