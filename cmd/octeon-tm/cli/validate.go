package cli

import (
	"fmt"

	"github.com/kmonendra/octeon-tm/config"
)

// ValidateCmd checks a hierarchy file offline.
type ValidateCmd struct {
	File string `arg:"" help:"Hierarchy YAML file."`
}

// Run executes the validate command.
func (c *ValidateCmd) Run(cli *CLI) error {
	h, err := config.LoadHierarchy(c.File)
	if err != nil {
		return err
	}
	fmt.Printf("%s: OK (hw_if %d, %d shapers, %d nodes)\n",
		c.File, h.Port.HwIf, len(h.Shapers), len(h.Nodes))
	return nil
}
