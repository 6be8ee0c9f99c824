package flows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/platform/platformtest"
)

func seeded() *platformtest.Scenario {
	s := platformtest.NewScenario()
	s.SourceList = []platform.Source{
		{ID: 100, Name: "crm", BuildFlag: true, ProjectID: 1},
		{ID: 101, Name: "erp", BuildFlag: true, ProjectID: 1},
		{ID: 102, Name: "legacy", BuildFlag: false, ProjectID: 1},
	}
	s.FlowList = []platform.Flow{
		{ID: 1, Name: "old_init", DataVaultID: 10},
		{ID: 2, Name: "old_incr", DataVaultID: 10},
		{ID: 3, Name: "other_dv", DataVaultID: 99},
	}
	return s
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 13, 45, 10, 0, time.UTC)
}

func TestSetup_RecreatesFlows(t *testing.T) {
	s := seeded()

	res, err := Setup(context.Background(), s, "sales", "edw", SetupOptions{
		Settings: DefaultSettings(),
		Now:      fixedNow,
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, s.DeletedFlows)
	require.Len(t, res.Created, 6, "2 x (built sources + 1)")

	names := make([]string, 0, len(s.CreatedFlows))
	for _, spec := range s.CreatedFlows {
		names = append(names, spec.Name)
	}
	assert.Equal(t, []string{
		"crm_init", "erp_init", "EDW_bv_init",
		"crm_incr", "erp_incr", "EDW_bv_incr",
	}, names)
}

func TestSetup_FlowAttributes(t *testing.T) {
	s := seeded()

	_, err := Setup(context.Background(), s, "sales", "edw", SetupOptions{
		Settings: DefaultSettings(),
		Now:      fixedNow,
	})
	require.NoError(t, err)

	fl := s.CreatedFlows[0]
	assert.Equal(t, platform.FlowTypeFL, fl.FlowType)
	assert.Equal(t, platform.LoadInit, fl.LoadType)
	assert.Equal(t, int64(100), fl.SourceID)
	assert.Equal(t, "sf", fl.DVConnectionName)
	assert.Equal(t, "src", fl.SourceConnectionName)
	assert.Equal(t, `"@hourly"`, fl.ScheduleInterval)
	assert.Equal(t, 4, fl.Concurrency)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), fl.StartDate)

	bv := s.CreatedFlows[2]
	assert.Equal(t, platform.FlowTypeBV, bv.FlowType)
	assert.Equal(t, "dv", bv.DVConnectionName)
	assert.Empty(t, bv.SourceConnectionName)
	assert.Equal(t, "timedelta(hours=1)", bv.ScheduleInterval)
}

func TestSetup_DryRunChangesNothing(t *testing.T) {
	s := seeded()

	res, err := Setup(context.Background(), s, "sales", "edw", SetupOptions{
		Settings: DefaultSettings(),
		DryRun:   true,
		Now:      fixedNow,
	})
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	assert.Len(t, res.Plan.Delete, 2)
	assert.Len(t, res.Plan.Create, 6)
	assert.Empty(t, res.Created)
	assert.Equal(t, 0, s.Calls["DeleteFlow"])
	assert.Equal(t, 0, s.Calls["CreateFlow"])
}

func TestSetup_InvalidSettings(t *testing.T) {
	s := seeded()
	settings := DefaultSettings()
	settings.Concurrency = 0

	_, err := Setup(context.Background(), s, "sales", "edw", SetupOptions{Settings: settings})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
	assert.Equal(t, 0, s.Calls["Project"])
}

func TestSetup_UnknownDataVault(t *testing.T) {
	s := seeded()

	_, err := Setup(context.Background(), s, "sales", "nope", SetupOptions{Settings: DefaultSettings()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
	assert.Empty(t, s.DeletedFlows)
}

func TestList(t *testing.T) {
	s := seeded()

	flows, err := List(context.Background(), s, "sales", "edw")
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "old_init", flows[0].Name)
}
