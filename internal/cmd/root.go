// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/config"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/version"
)

// rootFlags are the global flags shared by every subcommand.
type rootFlags struct {
	config     string
	url        string
	user       string
	verbose    bool
	timestamps bool
}

// NewRootCmd creates the root command for dvctl.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cmdtypes.GlobalConfig{})
}

// newRootCmd builds the command tree around g. PersistentPreRunE fills g
// before any subcommand runs.
func newRootCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "dvctl",
		Short: "Data vault platform administration",
		Long: `dvctl drives code generation, flow setup, parameters, signatures and
templates on a data vault modeling platform.

Connection settings are resolved with precedence:
  flag > DVCTL_* env (then VS_URL, VS_USER, VS_PASSWORD) > config file > default`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initializeGlobals(cmd, g, &flags)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "Path to config file (env: DVCTL_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flags.url, "url", "", "Platform URL (env: DVCTL_PLATFORM_URL, VS_URL)")
	rootCmd.PersistentFlags().StringVar(&flags.user, "user", "", "Platform user (env: DVCTL_PLATFORM_USERNAME, VS_USER)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&flags.timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(
		NewGenerateCmd(g),
		NewFlowCmd(g),
		NewParamCmd(g),
		NewSignatureCmd(g),
		NewTemplateCmd(g),
		NewConfigCmd(g),
		NewVersionCmd(g),
	)

	return rootCmd
}

// initializeGlobals loads configuration and sets up logging. A config that
// fails to load is recorded on g rather than failing here, so commands that do
// not need the platform still run.
func initializeGlobals(cmd *cobra.Command, g *cmdtypes.GlobalConfig, flags *rootFlags) {
	resolved, err := config.Resolve(config.ResolveOptions{
		ConfigFlag: flags.config,
		URLFlag:    flags.url,
		UserFlag:   flags.user,
	})

	g.ConfigFlag = flags.config
	g.Verbose = flags.verbose
	g.LoadErr = err
	if err != nil {
		g.Config = config.DefaultConfig()
	} else {
		g.Config = resolved.Config
		g.Resolved = resolved
		g.ConfigPath = resolved.ConfigPath.Value
	}

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: flags.verbose}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(flags.timestamps)
	} else if g.Config.Log.Timestamps != nil {
		logCfg.Timestamps = g.Config.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	output.Debug("dvctl started", "version", version.Version)
	if err != nil {
		output.Debug("config load error", "error", err)
		return
	}
	config.LogResolvedValues(resolved.Values())
}
