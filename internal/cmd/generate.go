package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/artifacts"
	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/cmdutil"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/resolve"
)

// generateOutput is the structured result of `dvctl generate`.
type generateOutput struct {
	Result      *resolve.GenerateResult `json:"result" yaml:"result"`
	Downloads   []artifacts.Downloaded  `json:"downloads,omitempty" yaml:"downloads,omitempty"`
	Deployments []artifacts.Deployed    `json:"deployments,omitempty" yaml:"deployments,omitempty"`
}

// NewGenerateCmd creates the generate command.
func NewGenerateCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var rf cmdutil.ReleaseFlags
	var lf cmdutil.LinkFlags
	var of cmdutil.OutputFlags
	var (
		forceFlag bool
		pathFlag  string
	)

	cmd := &cobra.Command{
		Use:   "generate <project> <data-vault> <technology>",
		Short: "Generate DDL, ETL and flow code",
		Long: `Generate code for a data vault release.

The release is the latest locked data vault release and its latest locked
business vault release unless named with --dv and --bv. When an older
non-prototype release exists the change set against it (DELTA) is generated,
otherwise full DDL and ETL. Generations that already exist for the same
release and technology are reused unless --force is given. Flow code is then
generated for every flow of the data vault; flows the platform cannot
generate are skipped.

Examples:
  # Generate with the latest locked releases
  dvctl generate sales edw SNOWFLAKESQL

  # Generate for named releases and download the code
  dvctl generate sales edw SNOWFLAKESQL -d R2024.03 -b bv-7 -p ./out

  # Regenerate and deploy through a database link
  dvctl generate sales edw ORACLESQL --force -l DWH_LINK`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, g, &rf, &lf, &of, forceFlag, pathFlag)
		},
	}

	rf.AddTo(cmd)
	lf.AddTo(cmd)
	of.AddTo(cmd)
	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false,
		"Generate new code even when matching generations exist")
	cmd.Flags().StringVarP(&pathFlag, "path", "p", "",
		"Download and extract the generated code into this directory")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, g *cmdtypes.GlobalConfig,
	rf *cmdutil.ReleaseFlags, lf *cmdutil.LinkFlags, of *cmdutil.OutputFlags, force bool, path string,
) error {
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
	dvLog := output.ScopeLogger("dv", args[1])

	var result *resolve.GenerateResult
	runErr := output.RunWithSpinner(ctx, func(ctx context.Context) error {
		var err error
		result, err = resolve.NewGenerator(client).Generate(ctx, resolve.GenerateOptions{
			Project:    args[0],
			DataVault:  args[1],
			Technology: tech,
			DVRelease:  rf.DV,
			BVRelease:  rf.BV,
			Force:      force,
		})
		return err
	}, output.WithTitle(fmt.Sprintf("Generating %s code for %s", tech, args[1])))

	if result == nil {
		return cmdutil.Fail(runErr)
	}
	logGeneration(dvLog, result)
	if runErr != nil {
		return cmdutil.Fail(fmt.Errorf("generating flows: %w", runErr))
	}

	out := generateOutput{Result: result}
	if path != "" {
		out.Downloads, err = artifacts.Download(ctx, client, result.Artifacts(), path)
		if err != nil {
			return cmdutil.Fail(err)
		}
		for _, d := range out.Downloads {
			dvLog.Info(fmt.Sprintf("downloaded %s to %s", d.Generation, d.Dir), "files", d.Files)
		}
	}

	if lf.Link != "" {
		out.Deployments, err = artifacts.Deploy(ctx, client, result.Artifacts(), lf.Link)
		if err != nil {
			return cmdutil.Fail(err)
		}
		for _, d := range out.Deployments {
			status := output.StatusDeployed
			if !d.Deployed {
				status = output.StatusSkipped
			}
			dvLog.Info(output.FormatItemLine("deploy", d.Generation.String(), status))
		}
	}

	return cmdutil.WriteResult(cmd.OutOrStdout(), format, out, func() string {
		return generateTable(result)
	})
}

func logGeneration(l *log.Logger, result *resolve.GenerateResult) {
	for _, item := range result.Generations {
		status := output.StatusGenerated
		if item.Reused {
			status = output.StatusReused
		}
		l.Info(output.FormatItemLine("gen", item.Generation.String(), status))
	}
	for _, f := range result.Flows {
		l.Info(output.FormatItemLine("flow", f.FlowName, string(f.Status)))
	}
}

func generateTable(result *resolve.GenerateResult) string {
	tbl := output.NewTable("KIND", "ID", "FLOW", "STATUS")
	for _, item := range result.Generations {
		status := output.StatusGenerated
		if item.Reused {
			status = output.StatusReused
		}
		tbl.Row(string(item.Generation.Kind), strconv.FormatInt(item.Generation.ID, 10), "", status)
	}
	for _, f := range result.Flows {
		id := "-"
		if f.Generation != nil {
			id = strconv.FormatInt(f.Generation.ID, 10)
		}
		tbl.Row(string(platform.KindFMC), id, f.FlowName, string(f.Status))
	}

	header := fmt.Sprintf("%s  %s / %s  %s\n",
		output.StyleSummary.Render(string(result.Strategy.Kind)),
		output.FormatRelease(result.Releases.Release.Name, result.Releases.Release.ID),
		output.FormatRelease(result.Releases.BusinessVault.Name, result.Releases.BusinessVault.ID),
		output.StyleDim.Render(result.DataVault.Name))
	return header + tbl.String() + "\n"
}
