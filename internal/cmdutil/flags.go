// Package cmdutil provides shared command utilities for dvctl subcommands.
// It centralizes flag group management, platform client creation, and
// output formatting helpers.
package cmdutil

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
)

// ReleaseFlags holds flags that name the data vault and business vault
// releases (generate, signature import, template test).
type ReleaseFlags struct {
	DV string
	BV string
}

// AddTo registers the release flags on the given cobra command.
func (f *ReleaseFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.DV, "dv", "d", "",
		"Data vault release name or ID (default: selected by lock state)")
	cmd.Flags().StringVarP(&f.BV, "bv", "b", "",
		"Business vault release name or ID (default: selected by lock state)")
}

// LinkFlags holds the database link used to deploy generated code.
type LinkFlags struct {
	Link string
}

// AddTo registers --link (-l) and its --deploy alias.
func (f *LinkFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Link, "link", "l", "",
		"Deploy the generated code through this database link")
	cmd.Flags().StringVar(&f.Link, "deploy", "", "Alias for --link")
	_ = cmd.Flags().MarkHidden("deploy")
}

// OutputFlags holds the result output format.
type OutputFlags struct {
	Format string
}

// AddTo registers --output (-o) on the given cobra command.
func (f *OutputFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Format, "output", "o", "table",
		fmt.Sprintf("Output format (%s)", joinFormats()))
}

// Parse validates the format flag.
func (f *OutputFlags) Parse() (output.Format, error) {
	format, ok := output.ParseFormat(f.Format)
	if !ok {
		return "", &ExitError{
			Code: ExitValidationError,
			Err: fmt.Errorf("%w: invalid output format %q (valid: %s)",
				oerrors.ErrValidation, f.Format, joinFormats()),
		}
	}
	return format, nil
}

func joinFormats() string {
	return strings.Join(output.ValidFormats(), ", ")
}
