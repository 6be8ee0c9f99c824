package resolve

import (
	"context"
	"fmt"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// StrategyKind is the code generation strategy.
type StrategyKind string

const (
	// StrategyFull generates complete DDL and ETL code.
	StrategyFull StrategyKind = "FULL"
	// StrategyDelta generates the change set against a prior production release.
	StrategyDelta StrategyKind = "DELTA"
)

// Strategy is the selected generation strategy. Baseline and BaselineBV are
// set only for DELTA.
type Strategy struct {
	Kind       StrategyKind                   `json:"kind" yaml:"kind"`
	Baseline   *platform.Release              `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	BaselineBV *platform.BusinessVaultRelease `json:"baselineBv,omitempty" yaml:"baselineBv,omitempty"`
}

// SelectStrategy returns DELTA when the data vault has a non-prototype release
// dated strictly before target, with the latest such release as baseline.
// Otherwise it returns FULL.
func (r *Resolver) SelectStrategy(ctx context.Context, dv platform.DataVault, target platform.Release) (Strategy, error) {
	releases, err := r.DataVaultReleases(ctx, dv.ID)
	if err != nil {
		return Strategy{}, err
	}

	prod := platform.Filter(releases, func(rel platform.Release) bool {
		return !rel.Prototype && rel.Date.Before(target.Date)
	})
	baseline, ok := platform.Latest(prod)
	if !ok {
		output.Debug("no production release before target, using FULL", "target", target.Name)
		return Strategy{Kind: StrategyFull}, nil
	}

	bvReleases, err := r.BusinessVaultReleases(ctx, baseline.ID)
	if err != nil {
		return Strategy{}, err
	}
	baselineBV, ok := platform.Latest(bvReleases)
	if !ok {
		return Strategy{}, oerrors.NewNotFoundError(
			fmt.Sprintf("baseline release %s has no business vault release", baseline.Name),
			map[string]string{"Data vault": dv.Name, "Target": target.Name},
			"A DELTA needs the baseline's business vault release as its old side.")
	}

	output.Debug("using DELTA", "baseline", baseline.Name, "baselineBv", baselineBV.Name)
	return Strategy{Kind: StrategyDelta, Baseline: &baseline, BaselineBV: &baselineBV}, nil
}
