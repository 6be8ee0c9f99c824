package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dvmodel/dvctl/internal/cmdtypes"
	"github.com/dvmodel/dvctl/internal/cmdutil"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/signatures"
)

// NewSignatureCmd creates the signature command group.
func NewSignatureCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "signature",
		Short: "Signature management",
	}

	c.AddCommand(NewSignatureImportCmd(g))
	return c
}

// NewSignatureImportCmd creates the signature import command.
func NewSignatureImportCmd(g *cmdtypes.GlobalConfig) *cobra.Command {
	var rf cmdutil.ReleaseFlags
	var of cmdutil.OutputFlags

	cmd := &cobra.Command{
		Use:   "import <project> <data-vault> <csv-dir>",
		Short: "Assign signatures from CSV files",
		Long: fmt.Sprintf(`Read %s (object,signature) and %s
(object,attribute,signature) from the directory and assign the signatures in
the business vault release. Signatures that do not exist yet are created.

The business vault release must be unlocked. Without --bv the latest
unlocked business vault release of the data vault release is used.

Examples:
  dvctl signature import sales edw ./signatures -d R2024.03`,
			signatures.ObjectFile, signatures.AttributeFile),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := of.Parse()
			if err != nil {
				return err
			}
			client, err := cmdutil.NewPlatformClient(g)
			if err != nil {
				return err
			}

			result, err := signatures.Import(cmd.Context(), client, signatures.ImportOptions{
				Project:   args[0],
				DataVault: args[1],
				Dir:       args[2],
				DVRelease: rf.DV,
				BVRelease: rf.BV,
			})
			if err != nil {
				return cmdutil.Fail(err)
			}

			bvLog := output.ScopeLogger("bv", result.Releases.BusinessVault.Name)
			for _, name := range result.CreatedObjects {
				bvLog.Info(output.FormatItemLine("signature object", name, output.StatusCreated))
			}
			for _, name := range result.CreatedAttributes {
				bvLog.Info(output.FormatItemLine("signature attribute", name, output.StatusCreated))
			}

			return cmdutil.WriteResult(cmd.OutOrStdout(), format, result, func() string {
				return signatureSummary(result)
			})
		},
	}

	rf.AddTo(cmd)
	of.AddTo(cmd)
	return cmd
}

func signatureSummary(result *signatures.ImportResult) string {
	var sb strings.Builder
	sb.WriteString(output.FormatCheckmark(fmt.Sprintf("Assigned %d object and %d attribute signatures in %s",
		result.ObjectRows, result.AttributeRows,
		output.FormatRelease(result.Releases.BusinessVault.Name, result.Releases.BusinessVault.ID))))
	sb.WriteString("\n")
	if n := len(result.CreatedObjects) + len(result.CreatedAttributes); n > 0 {
		sb.WriteString(output.StyleDim.Render(fmt.Sprintf("  %d new signatures created", n)))
		sb.WriteString("\n")
	}
	return sb.String()
}
