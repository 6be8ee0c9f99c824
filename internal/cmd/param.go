package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/cmdutil"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/params"
)

// NewParamCmd creates the param command group.
func NewParamCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "param",
		Short: "Parameter management",
		Long:  `Export project parameters and copy source parameters between projects.`,
	}

	c.AddCommand(NewParamExportCmd(g), NewParamCopyCmd(g))
	return c
}

// NewParamExportCmd creates the param export command.
func NewParamExportCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "export <project> <csv-path>",
		Short: "Export project parameters to CSV",
		Long: `Write every parameter of the project to a CSV file with the columns
name, value, type and description. Use "-" to write to stdout.

Examples:
  dvctl param export sales params.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdutil.NewPlatformClient(g)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			n, err := params.Export(cmd.Context(), client, args[0], &buf)
			if err != nil {
				return cmdutil.Fail(err)
			}

			if args[1] == "-" {
				_, err := buf.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := os.WriteFile(args[1], buf.Bytes(), 0o644); err != nil {
				return cmdutil.Fail(fmt.Errorf("writing %s: %w", args[1], err))
			}
			output.Println(output.FormatCheckmark(fmt.Sprintf("Exported %d parameters to %s", n, args[1])))
			return nil
		},
	}
}

// NewParamCopyCmd creates the param copy command.
func NewParamCopyCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var dryRunFlag bool

	cmd := &cobra.Command{
		Use:   "copy <project-a> <source-a> <project-b> <source-b>",
		Short: "Copy parameter values from one source to another",
		Long: `Set every parameter of source B to the value of the same-named parameter
of source A. If a parameter of A does not exist in B nothing is saved.
The change is printed as a YAML diff.

Examples:
  # Preview the change
  dvctl param copy sales crm finance crm --dry-run`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := cmdutil.NewPlatformClient(g)
			if err != nil {
				return err
			}

			result, err := params.Copy(cmd.Context(), client, params.CopyOptions{
				ProjectA: args[0],
				SourceA:  args[1],
				ProjectB: args[2],
				SourceB:  args[3],
				DryRun:   dryRunFlag,
			})
			if err != nil {
				return cmdutil.Fail(err)
			}

			diff, err := result.Diff(output.IsTTY())
			if err != nil {
				return cmdutil.Fail(err)
			}
			srcLog := output.ScopeLogger("source", result.Target.Name)
			if diff == "" {
				srcLog.Info("parameters already match")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), output.IndentDiff(diff, "  "))

			switch {
			case result.Saved:
				srcLog.Info(fmt.Sprintf("saved %d changed parameters", len(result.Changed)))
			case dryRunFlag:
				srcLog.Info(fmt.Sprintf("dry run: %d parameters would change", len(result.Changed)))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Show the diff without saving")
	return cmd
}
