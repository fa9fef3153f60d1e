package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	octeontm "github.com/kmonendra/octeon-tm"
	"github.com/kmonendra/octeon-tm/store"
	"github.com/kmonendra/octeon-tm/store/sqlite"
)

// ShowCmd reports persisted TM metadata for a port.
type ShowCmd struct {
	Nodes   ShowNodesCmd   `cmd:"" default:"withargs" help:"Show persisted nodes."`
	Shapers ShowShapersCmd `cmd:"" help:"Show persisted shaper profiles."`
	State   ShowStateCmd   `cmd:"" help:"Show the hierarchy commit state."`
}

// ShowNodesCmd lists persisted nodes for a port.
type ShowNodesCmd struct {
	HwIf uint32 `arg:"" help:"Hardware interface index."`
	JSON bool   `name:"json" help:"Emit JSON instead of a table."`
}

// Run executes the show nodes command.
func (c *ShowNodesCmd) Run(cli *CLI, ctx context.Context) error {
	st, err := openStore(ctx, cli)
	if err != nil {
		return err
	}
	defer st.Close()

	nodes, err := st.ListNodes(ctx, c.HwIf)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		fmt.Printf("No nodes recorded for hw_if %d\n", c.HwIf)
		return nil
	}

	if c.JSON {
		return printJSON(nodes)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NODE\tPARENT\tLVL\tPRIO\tWEIGHT\tSHAPER")
	for _, n := range nodes {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%s\n",
			n.NodeID, parentLabel(n.ParentID), n.Lvl, n.Priority, n.Weight,
			shaperLabel(n.ShaperProfileID))
	}
	return w.Flush()
}

// ShowShapersCmd lists persisted shaper profiles for a port.
type ShowShapersCmd struct {
	HwIf uint32 `arg:"" help:"Hardware interface index."`
	JSON bool   `name:"json" help:"Emit JSON instead of a table."`
}

// Run executes the show shapers command.
func (c *ShowShapersCmd) Run(cli *CLI, ctx context.Context) error {
	st, err := openStore(ctx, cli)
	if err != nil {
		return err
	}
	defer st.Close()

	shapers, err := st.ListShapers(ctx, c.HwIf)
	if err != nil {
		return err
	}
	if len(shapers) == 0 {
		fmt.Printf("No shaper profiles recorded for hw_if %d\n", c.HwIf)
		return nil
	}

	if c.JSON {
		return printJSON(shapers)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "SHAPER\tCOMMIT_RATE\tCOMMIT_SZ\tPEAK_RATE\tPEAK_SZ\tPKT_MODE")
	for _, s := range shapers {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%t\n",
			s.ShaperID, s.CommitRate, s.CommitSz, s.PeakRate, s.PeakSz, s.PktMode)
	}
	return w.Flush()
}

// ShowStateCmd reports the commit state of a port.
type ShowStateCmd struct {
	HwIf uint32 `arg:"" help:"Hardware interface index."`
}

// Run executes the show state command.
func (c *ShowStateCmd) Run(cli *CLI, ctx context.Context) error {
	st, err := openStore(ctx, cli)
	if err != nil {
		return err
	}
	defer st.Close()

	state, err := st.GetHierarchyState(ctx, c.HwIf)
	if err != nil {
		return err
	}
	fmt.Printf("hw_if %d: %s\n", c.HwIf, state)
	return nil
}

func openStore(ctx context.Context, cli *CLI) (store.Store, error) {
	logger, err := cli.Logger()
	if err != nil {
		return nil, err
	}
	dbPath, err := cli.DBPath()
	if err != nil {
		return nil, err
	}
	st, err := sqlite.New(ctx, dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", dbPath, err)
	}
	return st, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func parentLabel(parentID uint32) string {
	if parentID == octeontm.InvalidNodeID {
		return "root"
	}
	return fmt.Sprintf("%d", parentID)
}

func shaperLabel(shaperID uint32) string {
	if shaperID == octeontm.ShaperProfileNone {
		return "-"
	}
	return fmt.Sprintf("%d", shaperID)
}
