// Package params exports project parameters and copies source parameters
// between sources.
package params

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// Header is the first row of an exported parameter CSV.
var Header = []string{"name", "value", "type", "description"}

// Client is the platform surface the parameter operations need.
type Client interface {
	Project(ctx context.Context, name string) (platform.Project, error)
	platform.ParameterService
}

// Export writes every parameter of the project to w as CSV and returns the
// number of parameters written.
func Export(ctx context.Context, c Client, projectName string, w io.Writer) (int, error) {
	project, err := c.Project(ctx, projectName)
	if err != nil {
		return 0, fmt.Errorf("looking up project %q: %w", projectName, err)
	}
	params, err := c.ProjectParameters(ctx, project.ID)
	if err != nil {
		return 0, fmt.Errorf("listing parameters of %s: %w", project.Name, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, err
	}
	for _, p := range params {
		if err := cw.Write([]string{p.Name, p.Value, p.Type, p.Description}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("writing csv: %w", err)
	}
	return len(params), nil
}

// CopyOptions names the source to copy from (A) and the source to copy to (B).
type CopyOptions struct {
	ProjectA string
	SourceA  string
	ProjectB string
	SourceB  string

	// DryRun computes the result without saving.
	DryRun bool
}

// CopyResult holds the target's parameters before and after the copy.
type CopyResult struct {
	Target  platform.Source      `json:"target" yaml:"target"`
	Before  []platform.Parameter `json:"before" yaml:"before"`
	After   []platform.Parameter `json:"after" yaml:"after"`
	Changed []string             `json:"changed" yaml:"changed"`
	Saved   bool                 `json:"saved" yaml:"saved"`
}

// Copy sets every parameter of source B to the value of the same-named
// parameter of source A and saves B once. If a parameter of A is missing in B
// nothing is saved.
func Copy(ctx context.Context, c Client, opts CopyOptions) (*CopyResult, error) {
	from, err := findSource(ctx, c, opts.ProjectA, opts.SourceA)
	if err != nil {
		return nil, err
	}
	to, err := findSource(ctx, c, opts.ProjectB, opts.SourceB)
	if err != nil {
		return nil, err
	}

	fromParams, err := c.SourceParameters(ctx, from.ID)
	if err != nil {
		return nil, fmt.Errorf("reading parameters of %s: %w", from.Name, err)
	}
	before, err := c.SourceParameters(ctx, to.ID)
	if err != nil {
		return nil, fmt.Errorf("reading parameters of %s: %w", to.Name, err)
	}

	after := append([]platform.Parameter(nil), before...)
	index := make(map[string]int, len(after))
	for i, p := range after {
		index[p.Name] = i
	}

	var missing, changed []string
	for _, p := range fromParams {
		i, ok := index[p.Name]
		if !ok {
			missing = append(missing, p.Name)
			continue
		}
		if after[i].Value != p.Value {
			changed = append(changed, p.Name)
		}
		after[i].Value = p.Value
	}
	if len(missing) > 0 {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("source %s has no parameter %s", to.Name, strings.Join(missing, ", ")),
			map[string]string{"From": opts.ProjectA + "/" + from.Name, "To": opts.ProjectB + "/" + to.Name},
			"Both sources must define the same parameters. Nothing was saved.")
	}

	result := &CopyResult{Target: to, Before: before, After: after, Changed: changed}
	if opts.DryRun {
		return result, nil
	}

	if err := c.SaveSourceParameters(ctx, to.ID, after); err != nil {
		return result, fmt.Errorf("saving parameters of %s: %w", to.Name, err)
	}
	result.Saved = true
	output.Debug("saved source parameters", "source", to.Name, "changed", len(changed))
	return result, nil
}

// Diff renders the change to the target's parameter values as a YAML diff.
// It returns an empty string when nothing changed.
func (r *CopyResult) Diff(useColor bool) (string, error) {
	before, err := valuesYAML(r.Before)
	if err != nil {
		return "", err
	}
	after, err := valuesYAML(r.After)
	if err != nil {
		return "", err
	}
	return output.DiffYAML(before, after, useColor)
}

// valuesYAML renders parameters as a name: value mapping.
func valuesYAML(params []platform.Parameter) ([]byte, error) {
	values := make(map[string]string, len(params))
	for _, p := range params {
		values[p.Name] = p.Value
	}
	return yaml.Marshal(values)
}

func findSource(ctx context.Context, c Client, projectName, sourceName string) (platform.Source, error) {
	project, err := c.Project(ctx, projectName)
	if err != nil {
		return platform.Source{}, fmt.Errorf("looking up project %q: %w", projectName, err)
	}
	sources, err := c.Sources(ctx, project.ID)
	if err != nil {
		return platform.Source{}, fmt.Errorf("listing sources of %s: %w", project.Name, err)
	}
	for _, s := range sources {
		if s.Name == sourceName {
			return s, nil
		}
	}
	return platform.Source{}, oerrors.NewNotFoundError(
		fmt.Sprintf("source %q does not exist", sourceName),
		map[string]string{"Project": project.Name}, "")
}
