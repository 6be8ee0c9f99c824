package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/cmdutil"
	"github.com/dvmodel/dvctl/internal/config"
	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
)

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize default configuration",
		Long: `Write a default configuration file.

The file is created at the resolved config path (--config, DVCTL_CONFIG or
~/.dvctl/config.yaml). It holds the platform connection without a password
and the flow defaults used by 'dvctl flow setup'.

Examples:
  # Initialize configuration
  dvctl config init

  # Overwrite existing configuration
  dvctl config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.Fail(runConfigInit(g.ConfigFlag, forceFlag))
		},
	}

	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false,
		"Overwrite existing configuration")

	return cmd
}

func runConfigInit(configFlag string, force bool) error {
	pathResult, err := config.ResolveConfigPath(configFlag)
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
	}
	configFile, err := config.ExpandPath(pathResult.Value)
	if err != nil {
		return err
	}

	exists, err := config.ConfigFileExists(configFile)
	if err != nil {
		return err
	}
	if exists && !force {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  "configuration already exists",
			Location: configFile,
			Hint:     "Use --force to overwrite existing configuration.",
			Cause:    oerrors.ErrValidation,
		}
	}

	data, err := config.DefaultConfig().Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not create "+filepath.Dir(configFile))
	}
	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return oerrors.Wrap(oerrors.ErrPermission, "could not write "+configFile)
	}

	output.Println("Configuration initialized at " + configFile)
	output.Println("")
	output.Println("Next: set platform.url and platform.username, and export DVCTL_PLATFORM_PASSWORD")
	output.Println("Validate with: dvctl config vet")
	return nil
}
