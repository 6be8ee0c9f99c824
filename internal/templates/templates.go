// Package templates uploads a code template body and generates example code
// for it.
package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/resolve"
)

// Body selects which template body a file replaces.
type Body string

const (
	BodyDDL Body = "DDL"
	BodyETL Body = "ETL"
)

// NameFromFile derives the template name and body from a template file name.
// A stem ending in "_ddl" replaces the DDL body; anything else replaces the
// ETL body, with a trailing "_etl" removed.
func NameFromFile(path string) (string, Body) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if name, ok := strings.CutSuffix(stem, "_ddl"); ok {
		return name, BodyDDL
	}
	return strings.TrimSuffix(stem, "_etl"), BodyETL
}

// Client is the platform surface a template test needs.
type Client interface {
	platform.ProjectReader
	platform.ReleaseReader
	platform.TemplateService
}

// TestOptions selects the template file, the object to generate for and the
// releases. Empty release names select the latest release regardless of lock.
type TestOptions struct {
	Project    string
	DataVault  string
	Technology platform.Technology
	File       string
	Object     string
	DVRelease  string
	BVRelease  string

	// OutDir receives the result file. Defaults to the working directory.
	OutDir string
}

// TestResult is the outcome of a template test.
type TestResult struct {
	Releases   resolve.Releases         `json:"releases" yaml:"releases"`
	Template   platform.Template        `json:"template" yaml:"template"`
	Body       Body                     `json:"body" yaml:"body"`
	Example    platform.TemplateExample `json:"example" yaml:"example"`
	ResultFile string                   `json:"resultFile" yaml:"resultFile"`
}

// Test replaces the template body with the file's content, saves it, generates
// example code for one of the template's dependency objects and writes the
// code to "<template>_result_<object>" in OutDir.
func Test(ctx context.Context, c Client, opts TestOptions) (*TestResult, error) {
	content, err := os.ReadFile(opts.File)
	if err != nil {
		return nil, fmt.Errorf("reading template file: %w", err)
	}
	name, body := NameFromFile(opts.File)
	if name == "" {
		return nil, oerrors.NewValidationError("template name is empty", opts.File, "", "Name the file <template>_ddl.sql or <template>_etl.sql.")
	}

	project, err := c.Project(ctx, opts.Project)
	if err != nil {
		return nil, fmt.Errorf("looking up project %q: %w", opts.Project, err)
	}
	dv, err := c.DataVault(ctx, project.ID, opts.DataVault)
	if err != nil {
		return nil, fmt.Errorf("looking up data vault %q: %w", opts.DataVault, err)
	}
	releases, err := resolve.NewResolver(c).ResolveReleases(ctx, dv, opts.DVRelease, opts.BVRelease, resolve.LatestPolicy)
	if err != nil {
		return nil, err
	}

	bv := releases.BusinessVault
	tmpl, err := c.Template(ctx, bv.ID, name)
	if err != nil {
		return nil, fmt.Errorf("looking up template %q in %s: %w", name, bv.Name, err)
	}
	if !tmpl.HasDependency(opts.Object) {
		return nil, oerrors.NewNotFoundError(
			fmt.Sprintf("template %s does not depend on object %q", tmpl.Name, opts.Object),
			map[string]string{"Dependencies": strings.Join(tmpl.Dependencies, ", ")}, "")
	}

	if body == BodyDDL {
		tmpl.DDL = string(content)
	} else {
		tmpl.ETL = string(content)
	}
	tmpl, err = c.SaveTemplate(ctx, tmpl)
	if err != nil {
		return nil, fmt.Errorf("saving template %s: %w", name, err)
	}
	output.Debug("saved template", "template", tmpl.Name, "body", body, "bv", bv.Name)

	example, err := c.GenerateTemplateExample(ctx, platform.TemplateRequest{
		BusinessVaultReleaseID: bv.ID,
		TemplateID:             tmpl.ID,
		BaseObject:             opts.Object,
		Technology:             opts.Technology,
	})
	if err != nil {
		return nil, fmt.Errorf("generating example for %s: %w", opts.Object, err)
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", outDir, err)
	}
	resultFile := filepath.Join(outDir, fmt.Sprintf("%s_result_%s", tmpl.Name, opts.Object))
	if err := os.WriteFile(resultFile, []byte(example.Code), 0o644); err != nil {
		return nil, fmt.Errorf("writing result: %w", err)
	}

	return &TestResult{
		Releases:   releases,
		Template:   tmpl,
		Body:       body,
		Example:    example,
		ResultFile: resultFile,
	}, nil
}
