package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/cmdutil"
	"github.com/dvmodel/dvctl/internal/flows"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// NewFlowCmd creates the flow command group.
func NewFlowCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "flow",
		Short: "Flow management",
		Long:  `Manage the scheduler flows of a data vault.`,
	}

	c.AddCommand(NewFlowSetupCmd(g), NewFlowListCmd(g))
	return c
}

// NewFlowSetupCmd creates the flow setup command.
func NewFlowSetupCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var (
		dryRunFlag bool
		of         cmdutil.OutputFlags
	)

	cmd := &cobra.Command{
		Use:   "setup <project> <data-vault>",
		Short: "Recreate the flows of a data vault",
		Long: `Delete every flow of the data vault and create an init and an incremental
flow for each source with its build flag set, plus an init and an incremental
business vault flow.

Connections, schedules and concurrency come from the flows section of the
config file.

Examples:
  # Show what would be deleted and created
  dvctl flow setup sales edw --dry-run

  # Recreate the flows
  dvctl flow setup sales edw`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := of.Parse()
			if err != nil {
				return err
			}
			client, err := cmdutil.NewPlatformClient(g)
			if err != nil {
				return err
			}

			result, err := flows.Setup(cmd.Context(), client, args[0], args[1], flows.SetupOptions{
				Settings: g.Config.Flows.Settings(),
				DryRun:   dryRunFlag,
			})
			if result != nil {
				logSetup(result)
			}
			if err != nil {
				return cmdutil.Fail(err)
			}

			return cmdutil.WriteResult(cmd.OutOrStdout(), format, result, func() string {
				verb := "Created"
				if result.DryRun {
					verb = "Would create"
				}
				return output.FormatCheckmark(fmt.Sprintf("%s %d flows for %s (%d deleted)\n",
					verb, len(result.Plan.Create), result.Plan.DataVault.Name, len(result.Plan.Delete)))
			})
		},
	}

	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show the plan without changing anything")
	of.AddTo(cmd)
	return cmd
}

func logSetup(result *flows.SetupResult) {
	dvLog := output.ScopeLogger("dv", result.Plan.DataVault.Name)
	deleted, created := output.StatusDeleted, output.StatusCreated
	if result.DryRun {
		deleted, created = "would delete", "would create"
	}
	for _, f := range result.Plan.Delete {
		dvLog.Info(output.FormatItemLine("flow", f.Name, deleted))
	}
	if result.DryRun {
		for _, spec := range result.Plan.Create {
			dvLog.Info(output.FormatItemLine("flow", spec.Name, created))
		}
		return
	}
	for _, f := range result.Created {
		dvLog.Info(output.FormatItemLine("flow", f.Name, created))
	}
}

// NewFlowListCmd creates the flow list command.
func NewFlowListCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var of cmdutil.OutputFlags

	cmd := &cobra.Command{
		Use:   "list <project> <data-vault>",
		Short: "List the flows of a data vault",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := of.Parse()
			if err != nil {
				return err
			}
			client, err := cmdutil.NewPlatformClient(g)
			if err != nil {
				return err
			}

			list, err := flows.List(cmd.Context(), client, args[0], args[1])
			if err != nil {
				return cmdutil.Fail(err)
			}
			return cmdutil.WriteResult(cmd.OutOrStdout(), format, list, func() string {
				return flowTable(list)
			})
		},
	}

	of.AddTo(cmd)
	return cmd
}

func flowTable(list []platform.Flow) string {
	tbl := output.NewTable("ID", "NAME", "TYPE", "LOAD", "ETL GENERATIONS")
	for _, f := range list {
		tbl.Row(strconv.FormatInt(f.ID, 10), f.Name, string(f.FlowType), string(f.LoadType),
			strconv.Itoa(len(f.ETLGenerations)))
	}
	return tbl.String() + "\n"
}
