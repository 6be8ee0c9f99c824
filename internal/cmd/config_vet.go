package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/cmdutil"
	"github.com/dvmodel/dvctl/internal/config"
	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate configuration",
		Long: `Validate the dvctl configuration file.

Checks performed:
  1. Config file exists at resolved path
  2. Config file is valid YAML
  3. Config matches the configuration schema (known keys, URL scheme,
     timeout format, flow concurrency)

The config path is resolved using precedence:
  --config flag > DVCTL_CONFIG env > ~/.dvctl/config.yaml

Examples:
  # Validate default configuration
  dvctl config vet

  # Validate custom config path
  dvctl config vet --config /path/to/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.Fail(runConfigVet(g.ConfigFlag))
		},
	}
}

func runConfigVet(configFlag string) error {
	pathResult, err := config.ResolveConfigPath(configFlag)
	if err != nil {
		return oerrors.Wrap(oerrors.ErrNotFound, "could not resolve config path")
	}
	configPath, err := config.ExpandPath(pathResult.Value)
	if err != nil {
		return err
	}

	output.Debug("validating config",
		"path", configPath,
		"source", pathResult.Source,
	)

	exists, err := config.ConfigFileExists(configPath)
	if err != nil {
		return err
	}
	if !exists {
		return &oerrors.DetailError{
			Type:     "not found",
			Message:  "configuration file not found",
			Location: configPath,
			Hint:     "Run 'dvctl config init' to create default configuration",
			Cause:    oerrors.ErrNotFound,
		}
	}

	v, err := config.NewValidator()
	if err != nil {
		return err
	}
	if err := v.ValidateFile(configPath); err != nil {
		return err
	}

	output.Println("Configuration is valid: " + configPath)
	return nil
}
