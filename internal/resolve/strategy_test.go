package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/platform/platformtest"
)

func TestSelectStrategy_DeltaAgainstLatestProduction(t *testing.T) {
	s := platformtest.NewScenario()
	s.AddRelease(1, "R1", "2023-01-01", true, true)
	s.AddRelease(2, "R2", "2023-06-01", true, false)
	target := s.AddRelease(3, "R3", "2024-01-01", true, false)
	s.AddBVRelease(20, 2, "bv-r2-a", "2023-06-02", true)
	s.AddBVRelease(21, 2, "bv-r2-b", "2023-07-02", true)

	got, err := NewResolver(s).SelectStrategy(context.Background(), s.DataVaultRecord, target)
	require.NoError(t, err)
	assert.Equal(t, StrategyDelta, got.Kind)
	require.NotNil(t, got.Baseline)
	assert.Equal(t, int64(2), got.Baseline.ID)
	require.NotNil(t, got.BaselineBV)
	assert.Equal(t, int64(21), got.BaselineBV.ID)
}

func TestSelectStrategy_FullWhenOnlyPrototypeBefore(t *testing.T) {
	s := platformtest.NewScenario()
	s.AddRelease(1, "R1", "2023-01-01", true, true)
	target := s.AddRelease(3, "R3", "2024-01-01", true, false)

	got, err := NewResolver(s).SelectStrategy(context.Background(), s.DataVaultRecord, target)
	require.NoError(t, err)
	assert.Equal(t, StrategyFull, got.Kind)
	assert.Nil(t, got.Baseline)
	assert.Nil(t, got.BaselineBV)
}

func TestSelectStrategy_IgnoresLaterAndSameDayReleases(t *testing.T) {
	s := platformtest.NewScenario()
	target := s.AddRelease(3, "R3", "2024-01-01", true, false)
	s.AddRelease(4, "R4", "2024-01-01", true, false)
	s.AddRelease(5, "R5", "2024-06-01", true, false)

	got, err := NewResolver(s).SelectStrategy(context.Background(), s.DataVaultRecord, target)
	require.NoError(t, err)
	assert.Equal(t, StrategyFull, got.Kind)
}

func TestSelectStrategy_BaselineWithoutBusinessVault(t *testing.T) {
	s := platformtest.NewScenario()
	s.AddRelease(2, "R2", "2023-06-01", true, false)
	target := s.AddRelease(3, "R3", "2024-01-01", true, false)

	_, err := NewResolver(s).SelectStrategy(context.Background(), s.DataVaultRecord, target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}
