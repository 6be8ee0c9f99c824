package resolve

import (
	"context"
	"errors"
	"fmt"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/output"
	"github.com/dvmodel/dvctl/internal/platform"
)

// FlowGenerator lists flows and generates their FMC code.
type FlowGenerator interface {
	Flows(ctx context.Context, dataVaultID int64) ([]platform.Flow, error)
	GenerateFlow(ctx context.Context, flowID, etlGenerationID int64) (platform.Generation, error)
}

// FlowStatus is what happened to one flow during a run.
type FlowStatus string

const (
	FlowReused    FlowStatus = "reused"
	FlowGenerated FlowStatus = "generated"
	FlowSkipped   FlowStatus = "skipped"
)

// FlowOutcome reports the result for one flow. Generation is nil when the
// flow was skipped.
type FlowOutcome struct {
	FlowID     int64                `json:"flowId" yaml:"flowId"`
	FlowName   string               `json:"flowName" yaml:"flowName"`
	Status     FlowStatus           `json:"status" yaml:"status"`
	Generation *platform.Generation `json:"generation,omitempty" yaml:"generation,omitempty"`
	Reason     string               `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// FlowDriver produces FMC generations for every flow of a data vault.
type FlowDriver struct {
	flows FlowGenerator
	cache *GenerationCache
}

// NewFlowDriver creates a FlowDriver sharing the run's generation cache.
func NewFlowDriver(flows FlowGenerator, cache *GenerationCache) *FlowDriver {
	return &FlowDriver{flows: flows, cache: cache}
}

// Run processes the data vault's flows in platform order. A flow that cannot
// be generated from etl is skipped; platform generation failures skip the flow
// as well. Any other error aborts the run.
func (d *FlowDriver) Run(ctx context.Context, dv platform.DataVault, etl platform.Generation, force bool) ([]FlowOutcome, error) {
	flows, err := d.flows.Flows(ctx, dv.ID)
	if err != nil {
		return nil, fmt.Errorf("listing flows of data vault %s: %w", dv.Name, err)
	}

	outcomes := make([]FlowOutcome, 0, len(flows))
	for _, flow := range flows {
		outcome, err := d.runFlow(ctx, flow, etl, force)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (d *FlowDriver) runFlow(ctx context.Context, flow platform.Flow, etl platform.Generation, force bool) (FlowOutcome, error) {
	log := output.ScopeLogger("flow", flow.Name)
	outcome := FlowOutcome{FlowID: flow.ID, FlowName: flow.Name}

	key := GenerationKey{Kind: platform.KindFMC, FlowID: flow.ID, SourceGenerationID: etl.ID}
	if !force {
		g, ok, err := d.cache.Find(ctx, key)
		if err != nil {
			return outcome, err
		}
		if ok {
			log.Debug("reusing FMC generation", "generation", g)
			outcome.Status = FlowReused
			outcome.Generation = &g
			return outcome, nil
		}
	}

	if !hasETLGeneration(flow, etl.ID) {
		outcome.Status = FlowSkipped
		outcome.Reason = fmt.Sprintf("flow has no ETL generation matching %s", etl)
		log.Warn("skipping flow", "reason", outcome.Reason)
		return outcome, nil
	}

	g, err := d.flows.GenerateFlow(ctx, flow.ID, etl.ID)
	if err != nil {
		if errors.Is(err, oerrors.ErrRemoteGeneration) {
			outcome.Status = FlowSkipped
			outcome.Reason = err.Error()
			log.Warn("skipping flow", "reason", outcome.Reason)
			return outcome, nil
		}
		return outcome, fmt.Errorf("generating flow %s: %w", flow.Name, err)
	}

	d.cache.Add(g)
	log.Debug("generated FMC code", "generation", g)
	outcome.Status = FlowGenerated
	outcome.Generation = &g
	return outcome, nil
}

func hasETLGeneration(flow platform.Flow, generationID int64) bool {
	for _, g := range flow.ETLGenerations {
		if g.GenerationID == generationID {
			return true
		}
	}
	return false
}
