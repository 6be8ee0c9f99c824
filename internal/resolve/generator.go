package resolve

import (
	"context"
	"fmt"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// GeneratorClient is the platform surface a generation run needs.
type GeneratorClient interface {
	platform.ProjectReader
	platform.ReleaseReader
	platform.GenerationService
	FlowGenerator
}

// GenerateOptions selects what to generate.
type GenerateOptions struct {
	Project    string
	DataVault  string
	Technology platform.Technology

	// DVRelease and BVRelease name the releases to use. Empty selects the
	// latest locked release at that level.
	DVRelease string
	BVRelease string

	// Force requests new generations even when matching ones exist.
	Force bool
}

// GeneratedItem is one DDL, ETL or DELTA generation of a run.
type GeneratedItem struct {
	Generation platform.Generation `json:"generation" yaml:"generation"`
	Reused     bool                `json:"reused" yaml:"reused"`
}

// GenerateResult is the outcome of a generation run.
type GenerateResult struct {
	Project   platform.Project   `json:"project" yaml:"project"`
	DataVault platform.DataVault `json:"dataVault" yaml:"dataVault"`
	Releases  Releases           `json:"releases" yaml:"releases"`
	Strategy  Strategy           `json:"strategy" yaml:"strategy"`

	// Generations holds DDL then ETL for FULL, or the single DELTA.
	Generations []GeneratedItem `json:"generations" yaml:"generations"`
	Flows       []FlowOutcome   `json:"flows" yaml:"flows"`
}

// Artifacts returns every generation of the run that has files: the DDL,
// ETL or DELTA generations followed by the FMC generations of non-skipped flows.
func (r *GenerateResult) Artifacts() []platform.Generation {
	var out []platform.Generation
	for _, item := range r.Generations {
		out = append(out, item.Generation)
	}
	for _, f := range r.Flows {
		if f.Generation != nil {
			out = append(out, *f.Generation)
		}
	}
	return out
}

// SkippedFlows counts flows that produced no FMC generation.
func (r *GenerateResult) SkippedFlows() int {
	n := 0
	for _, f := range r.Flows {
		if f.Status == FlowSkipped {
			n++
		}
	}
	return n
}

// Generator drives one code generation run.
type Generator struct {
	client GeneratorClient
}

// NewGenerator creates a Generator.
func NewGenerator(client GeneratorClient) *Generator {
	return &Generator{client: client}
}

// Generate resolves the releases, selects the strategy, finds or creates the
// DDL and ETL (or DELTA) generations and then the FMC generation of every flow.
// Release errors abort before anything is generated.
func (g *Generator) Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	if opts.Technology == "" {
		return nil, oerrors.NewValidationError("technology is required", "", "technology", "")
	}

	project, err := g.client.Project(ctx, opts.Project)
	if err != nil {
		return nil, fmt.Errorf("looking up project %q: %w", opts.Project, err)
	}
	dv, err := g.client.DataVault(ctx, project.ID, opts.DataVault)
	if err != nil {
		return nil, fmt.Errorf("looking up data vault %q in project %s: %w", opts.DataVault, project.Name, err)
	}

	resolver := NewResolver(g.client)
	releases, err := resolver.ResolveReleases(ctx, dv, opts.DVRelease, opts.BVRelease, GenerationPolicy)
	if err != nil {
		return nil, err
	}

	strategy, err := resolver.SelectStrategy(ctx, dv, releases.Release)
	if err != nil {
		return nil, err
	}
	output.Info("generating code",
		"release", releases.Release.Name,
		"bv", releases.BusinessVault.Name,
		"strategy", strategy.Kind,
		"technology", opts.Technology)

	result := &GenerateResult{
		Project:   project,
		DataVault: dv,
		Releases:  releases,
		Strategy:  strategy,
	}

	cache := NewGenerationCache(g.client)
	bvID := releases.BusinessVault.ID

	var etl platform.Generation
	switch strategy.Kind {
	case StrategyDelta:
		oldID := strategy.BaselineBV.ID
		key := GenerationKey{
			Kind:                   platform.KindDelta,
			BusinessVaultReleaseID: bvID,
			Technology:             opts.Technology,
			BaselineReleaseID:      oldID,
		}
		delta, reused, err := cache.FindOrCreate(ctx, key, opts.Force, func(ctx context.Context) (platform.Generation, error) {
			return g.client.GenerateDelta(ctx, platform.DeltaRequest{
				OldBusinessVaultReleaseID: oldID,
				NewBusinessVaultReleaseID: bvID,
				Technology:                opts.Technology,
			})
		})
		if err != nil {
			return nil, fmt.Errorf("generating DELTA: %w", err)
		}
		result.Generations = append(result.Generations, GeneratedItem{Generation: delta, Reused: reused})
		etl = delta

	default:
		req := platform.GenerateRequest{
			BusinessVaultReleaseID: bvID,
			Technology:             opts.Technology,
			LoadType:               platform.LoadAll,
		}

		ddl, reused, err := cache.FindOrCreate(ctx,
			GenerationKey{Kind: platform.KindDDL, BusinessVaultReleaseID: bvID, Technology: opts.Technology},
			opts.Force,
			func(ctx context.Context) (platform.Generation, error) { return g.client.GenerateDDL(ctx, req) })
		if err != nil {
			return nil, fmt.Errorf("generating DDL: %w", err)
		}
		result.Generations = append(result.Generations, GeneratedItem{Generation: ddl, Reused: reused})

		etl, reused, err = cache.FindOrCreate(ctx,
			GenerationKey{Kind: platform.KindETL, BusinessVaultReleaseID: bvID, Technology: opts.Technology},
			opts.Force,
			func(ctx context.Context) (platform.Generation, error) { return g.client.GenerateETL(ctx, req) })
		if err != nil {
			return nil, fmt.Errorf("generating ETL: %w", err)
		}
		result.Generations = append(result.Generations, GeneratedItem{Generation: etl, Reused: reused})
	}

	flows, err := NewFlowDriver(g.client, cache).Run(ctx, dv, etl, opts.Force)
	result.Flows = flows
	if err != nil {
		return result, err
	}

	if n := result.SkippedFlows(); n > 0 {
		output.Warn("some flows were skipped", "skipped", n, "total", len(flows))
	}
	return result, nil
}
