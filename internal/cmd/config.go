package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for dvctl.`,
	}

	cmd.AddCommand(NewConfigInitCmd(g))
	cmd.AddCommand(NewConfigVetCmd(g))

	return cmd
}
