package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/artifacts"
	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/cmdutil"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/templates"
)

// templateOutput is the structured result of `dvctl template test`.
type templateOutput struct {
	Result      *templates.TestResult `json:"result" yaml:"result"`
	Deployments []artifacts.Deployed  `json:"deployments,omitempty" yaml:"deployments,omitempty"`
}

// NewTemplateCmd creates the template command group.
func NewTemplateCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "template",
		Short: "Code template management",
	}

	c.AddCommand(NewTemplateTestCmd(g))
	return c
}

// NewTemplateTestCmd creates the template test command.
func NewTemplateTestCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var rf cmdutil.ReleaseFlags
	var lf cmdutil.LinkFlags
	var of cmdutil.OutputFlags
	var outDirFlag string

	cmd := &cobra.Command{
		Use:   "test <project> <data-vault> <technology> <template-file> <object>",
		Short: "Upload a template body and generate example code",
		Long: `Replace a template body with the content of a file and generate example
code for one object the template depends on.

The template name comes from the file name: <name>_ddl.* replaces the DDL
body, <name>_etl.* or any other name replaces the ETL body. The example code
is written to <name>_result_<object>. Without --dv and --bv the latest
releases are used, locked or not.

Examples:
  dvctl template test sales edw SNOWFLAKESQL ./hub_load_etl.sql HUB_CUSTOMER

  # Also deploy the example through a database link
  dvctl template test sales edw ORACLESQL ./hub_load_etl.sql HUB_CUSTOMER -l DWH_LINK`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := of.Parse()
			if err != nil {
				return err
			}
			tech, err := platform.ParseTechnology(args[2])
			if err != nil {
				return cmdutil.Fail(err)
			}
			client, err := cmdutil.NewPlatformClient(g)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			result, err := templates.Test(ctx, client, templates.TestOptions{
				Project:    args[0],
				DataVault:  args[1],
				Technology: tech,
				File:       args[3],
				Object:     args[4],
				DVRelease:  rf.DV,
				BVRelease:  rf.BV,
				OutDir:     outDirFlag,
			})
			if err != nil {
				return cmdutil.Fail(err)
			}

			tmplLog := output.ScopeLogger("template", result.Template.Name)
			tmplLog.Info(fmt.Sprintf("%s body saved", result.Body))
			tmplLog.Info(fmt.Sprintf("example for %s written to %s", args[4], result.ResultFile))

			out := templateOutput{Result: result}
			if lf.Link != "" {
				out.Deployments, err = artifacts.Deploy(ctx, client, result.Example.Generations, lf.Link)
				if err != nil {
					return cmdutil.Fail(err)
				}
				for _, d := range out.Deployments {
					status := output.StatusDeployed
					if !d.Deployed {
						status = output.StatusSkipped
					}
					tmplLog.Info(output.FormatItemLine("deploy", d.Generation.String(), status))
				}
			}

			return cmdutil.WriteResult(cmd.OutOrStdout(), format, out, func() string {
				return output.FormatCheckmark(fmt.Sprintf("Tested %s against %s: %s",
					result.Template.Name, args[4], result.ResultFile)) + "\n"
			})
		},
	}

	rf.AddTo(cmd)
	lf.AddTo(cmd)
	of.AddTo(cmd)
	cmd.Flags().StringVar(&outDirFlag, "out-dir", "", "Directory for the result file (default: current directory)")
	return cmd
}
