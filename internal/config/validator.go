package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
)

//go:embed schema.cue
var schemaCUE []byte

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema.LookupPath(cue.ParsePath("#Config")),
	}, nil
}

// Validate checks a decoded YAML document against the schema. Unknown keys
// are rejected.
func (v *Validator) Validate(doc map[string]any) error {
	if doc == nil {
		doc = map[string]any{}
	}

	value := v.schema.Unify(v.ctx.Encode(doc))
	err := value.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs ValidationErrors
	seen := make(map[ValidationError]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			Field:   fieldPath(e.Path()),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[ve] {
			continue
		}
		seen[ve] = true
		errs = append(errs, ve)
	}
	return errs
}

// fieldPath joins a CUE error path into a config key, dropping the schema
// definition label (for example "#Config") the path is rooted at.
func fieldPath(path []string) string {
	for len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	return strings.Join(path, ".")
}

// ValidateFile validates a configuration file at the given path. Failures are
// returned as validation DetailErrors located at the file.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oerrors.NewValidationError("config file is not valid YAML: "+err.Error(), path, "", "")
	}

	if err := v.Validate(doc); err != nil {
		return &oerrors.DetailError{
			Type:     "validation failed",
			Message:  strings.TrimSpace(err.Error()),
			Location: path,
			Hint:     "Run 'dvctl config init --force' to regenerate a valid configuration.",
			Cause:    oerrors.ErrValidation,
		}
	}
	return nil
}
