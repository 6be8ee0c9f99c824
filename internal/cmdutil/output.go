package cmdutil

import (
	"errors"
	"fmt"
	"io"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
)

// Fail wraps err in an *ExitError whose code follows the error's category.
// Errors that already carry an exit code are returned unchanged.
func Fail(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return oerrors.NewExitError(err, oerrors.ExitCodeFromError(err))
}

// WriteResult writes v as YAML or JSON, or calls table for the table format.
func WriteResult(w io.Writer, format output.Format, v any, table func() string) error {
	if format == output.FormatTable {
		_, err := fmt.Fprint(w, table())
		return err
	}
	return output.WriteStructured(w, format, v)
}
