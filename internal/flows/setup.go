// Package flows recreates the scheduler flows of a data vault.
package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// Client is the platform surface flow setup needs.
type Client interface {
	platform.ProjectReader
	Sources(ctx context.Context, projectID int64) ([]platform.Source, error)
	Flows(ctx context.Context, dataVaultID int64) ([]platform.Flow, error)
	CreateFlow(ctx context.Context, dataVaultID int64, spec platform.FlowSpec) (platform.Flow, error)
	DeleteFlow(ctx context.Context, flowID int64) error
}

// Settings are the flow attributes that are the same for every created flow.
type Settings struct {
	Concurrency int `json:"concurrency" yaml:"concurrency" validate:"min=1"`

	// SourceConnection is the source connection name of source (FL) flows.
	SourceConnection string `json:"sourceConnection" yaml:"sourceConnection" validate:"required"`

	// SourceTargetConnection is the data vault connection of source flows.
	SourceTargetConnection string `json:"sourceTargetConnection" yaml:"sourceTargetConnection" validate:"required"`

	// BVTargetConnection is the data vault connection of business vault flows.
	BVTargetConnection string `json:"bvTargetConnection" yaml:"bvTargetConnection" validate:"required"`

	SourceSchedule string `json:"sourceSchedule" yaml:"sourceSchedule" validate:"required"`
	BVSchedule     string `json:"bvSchedule" yaml:"bvSchedule" validate:"required"`

	GroupTasks bool `json:"groupTasks" yaml:"groupTasks"`
}

// DefaultSettings returns the settings flows are created with when the
// configuration does not override them.
func DefaultSettings() Settings {
	return Settings{
		Concurrency:            4,
		SourceConnection:       "src",
		SourceTargetConnection: "sf",
		BVTargetConnection:     "dv",
		SourceSchedule:         `"@hourly"`,
		BVSchedule:             "timedelta(hours=1)",
	}
}

// SetupOptions controls Setup.
type SetupOptions struct {
	Settings Settings

	// DryRun computes the plan without deleting or creating anything.
	DryRun bool

	// Now stamps the start date of created flows. Defaults to time.Now.
	Now func() time.Time
}

// Plan lists the flows Setup deletes and the flows it creates.
type Plan struct {
	DataVault platform.DataVault `json:"dataVault" yaml:"dataVault"`
	Delete    []platform.Flow     `json:"delete" yaml:"delete"`
	Create    []platform.FlowSpec `json:"create" yaml:"create"`
}

// SetupResult is the outcome of Setup. Created is empty for a dry run.
type SetupResult struct {
	Plan    Plan            `json:"plan" yaml:"plan"`
	Created []platform.Flow `json:"created" yaml:"created"`
	DryRun  bool            `json:"dryRun" yaml:"dryRun"`
}

var validate = validator.New()

// Setup deletes every flow of the data vault and creates an init and an
// incremental flow for every source with its build flag set, plus an init and
// an incremental business vault flow.
func Setup(ctx context.Context, c Client, projectName, dataVaultName string, opts SetupOptions) (*SetupResult, error) {
	if err := validate.Struct(opts.Settings); err != nil {
		return nil, oerrors.NewValidationError(err.Error(), "flows", "", "Check the flows section of the config file.")
	}

	project, err := c.Project(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("looking up project %q: %w", projectName, err)
	}
	dv, err := c.DataVault(ctx, project.ID, dataVaultName)
	if err != nil {
		return nil, fmt.Errorf("looking up data vault %q: %w", dataVaultName, err)
	}

	existing, err := c.Flows(ctx, dv.ID)
	if err != nil {
		return nil, fmt.Errorf("listing flows: %w", err)
	}
	sources, err := c.Sources(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	result := &SetupResult{
		Plan: Plan{
			DataVault: dv,
			Delete:    existing,
			Create:    BuildSpecs(dv, sources, opts.Settings, now()),
		},
		DryRun: opts.DryRun,
	}
	if opts.DryRun {
		return result, nil
	}

	for _, flow := range existing {
		if err := c.DeleteFlow(ctx, flow.ID); err != nil {
			return result, fmt.Errorf("deleting flow %s: %w", flow.Name, err)
		}
		output.Debug("deleted flow", "flow", flow.Name, "id", flow.ID)
	}

	for _, spec := range result.Plan.Create {
		flow, err := c.CreateFlow(ctx, dv.ID, spec)
		if err != nil {
			return result, fmt.Errorf("creating flow %s: %w", spec.Name, err)
		}
		output.Debug("created flow", "flow", flow.Name, "id", flow.ID)
		result.Created = append(result.Created, flow)
	}
	return result, nil
}

// BuildSpecs returns the flows to create, INIT flows first. Every flow starts
// at midnight UTC of the day now falls on.
func BuildSpecs(dv platform.DataVault, sources []platform.Source, s Settings, now time.Time) []platform.FlowSpec {
	start := now.UTC().Truncate(24 * time.Hour)

	var specs []platform.FlowSpec
	for _, lt := range []platform.LoadType{platform.LoadInit, platform.LoadIncr} {
		for _, src := range sources {
			if !src.BuildFlag {
				continue
			}
			name := fmt.Sprintf("%s_%s", src.Name, lt.Lower())
			specs = append(specs, platform.FlowSpec{
				Name:                 name,
				Description:          name,
				StartDate:            start,
				Concurrency:          s.Concurrency,
				FlowType:             platform.FlowTypeFL,
				LoadType:             lt,
				GroupTasks:           s.GroupTasks,
				DVConnectionName:     s.SourceTargetConnection,
				SourceConnectionName: s.SourceConnection,
				SourceID:             src.ID,
				ScheduleInterval:     s.SourceSchedule,
			})
		}

		name := fmt.Sprintf("%s_bv_%s", dv.Code, lt.Lower())
		specs = append(specs, platform.FlowSpec{
			Name:             name,
			Description:      name,
			StartDate:        start,
			Concurrency:      s.Concurrency,
			FlowType:         platform.FlowTypeBV,
			LoadType:         lt,
			GroupTasks:       s.GroupTasks,
			DVConnectionName: s.BVTargetConnection,
			ScheduleInterval: s.BVSchedule,
		})
	}
	return specs
}

// Lister lists flows of a data vault by name.
type Lister interface {
	platform.ProjectReader
	Flows(ctx context.Context, dataVaultID int64) ([]platform.Flow, error)
}

// List returns the flows of a data vault.
func List(ctx context.Context, c Lister, projectName, dataVaultName string) ([]platform.Flow, error) {
	project, err := c.Project(ctx, projectName)
	if err != nil {
		return nil, fmt.Errorf("looking up project %q: %w", projectName, err)
	}
	dv, err := c.DataVault(ctx, project.ID, dataVaultName)
	if err != nil {
		return nil, fmt.Errorf("looking up data vault %q: %w", dataVaultName, err)
	}
	flows, err := c.Flows(ctx, dv.ID)
	if err != nil {
		return nil, fmt.Errorf("listing flows: %w", err)
	}
	return flows, nil
}
