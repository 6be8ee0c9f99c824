package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/platform/platformtest"
)

func TestDownload_ExtractsEachGeneration(t *testing.T) {
	f := platformtest.NewFake()
	f.Archives[1] = platformtest.Zip(map[string]string{
		"ddl/hub_customer.sql": "create table hub_customer();",
		"ddl/sat_customer.sql": "create table sat_customer();",
	})
	f.Archives[2] = platformtest.Zip(map[string]string{"etl/load.sql": "insert;"})

	gens := []platform.Generation{
		{ID: 1, Kind: platform.KindDDL, FileName: "ddl_11.zip"},
		{ID: 2, Kind: platform.KindETL},
	}
	dir := t.TempDir()

	got, err := Download(context.Background(), f, gens, dir)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, filepath.Join(dir, "ddl_11"), got[0].Dir)
	assert.Equal(t, 2, got[0].Files)
	assert.Equal(t, filepath.Join(dir, "etl_2"), got[1].Dir)

	data, err := os.ReadFile(filepath.Join(dir, "ddl_11", "ddl", "hub_customer.sql"))
	require.NoError(t, err)
	assert.Equal(t, "create table hub_customer();", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".zip", filepath.Ext(e.Name()), "archives are not kept")
	}
}

func TestDownload_MissingArchive(t *testing.T) {
	f := platformtest.NewFake()
	_, err := Download(context.Background(), f, []platform.Generation{{ID: 9, Kind: platform.KindDDL}}, t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}

func TestExtract_RejectsEscapingEntries(t *testing.T) {
	data := platformtest.Zip(map[string]string{"../evil.sh": "rm"})
	dir := t.TempDir()

	_, err := Extract(data, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
	_, statErr := os.Stat(filepath.Join(dir, "evil.sh"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExtract_InvalidArchive(t *testing.T) {
	_, err := Extract([]byte("not a zip"), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestTargetName(t *testing.T) {
	tests := []struct {
		name string
		gen  platform.Generation
		want string
	}{
		{"file name", platform.Generation{FileName: "out/delta_1_2.zip"}, "delta_1_2"},
		{"no file name", platform.Generation{ID: 7, Kind: platform.KindFMC}, "fmc_7"},
		{"parent dir", platform.Generation{ID: 3, Kind: platform.KindDDL, FileName: ".."}, "ddl_3"},
		{"dot", platform.Generation{ID: 4, Kind: platform.KindETL, FileName: "."}, "etl_4"},
		{"extension only", platform.Generation{ID: 5, Kind: platform.KindDDL, FileName: ".zip"}, "ddl_5"},
		{"root", platform.Generation{ID: 6, Kind: platform.KindDDL, FileName: "/"}, "ddl_6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetName(tt.gen))
		})
	}
}

func TestDownload_CollidingNamesGetDistinctDirs(t *testing.T) {
	f := platformtest.NewFake()
	f.Archives[1] = platformtest.Zip(map[string]string{"a.sql": "1"})
	f.Archives[2] = platformtest.Zip(map[string]string{"b.sql": "2"})
	f.Archives[3] = platformtest.Zip(map[string]string{"c.sql": "3"})

	gens := []platform.Generation{
		{ID: 1, Kind: platform.KindDDL, FileName: "code.zip"},
		{ID: 2, Kind: platform.KindETL, FileName: "code.zip"},
		{ID: 3, Kind: platform.KindDDL, FileName: ".."},
	}
	dir := t.TempDir()

	got, err := Download(context.Background(), f, gens, dir)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, filepath.Join(dir, "code"), got[0].Dir)
	assert.Equal(t, filepath.Join(dir, "code_2"), got[1].Dir)
	assert.Equal(t, filepath.Join(dir, "ddl_3"), got[2].Dir)

	assert.FileExists(t, filepath.Join(dir, "code", "a.sql"))
	assert.FileExists(t, filepath.Join(dir, "code_2", "b.sql"))
	assert.NoFileExists(t, filepath.Join(dir, "code", "b.sql"))
	assert.FileExists(t, filepath.Join(dir, "ddl_3", "c.sql"))
}

func TestDeploy_OnlyAutoDeployable(t *testing.T) {
	f := platformtest.NewFake()
	f.LinkList = []platform.DatabaseLink{{ID: 3, Name: "snowflake_dev"}}
	gens := []platform.Generation{
		{ID: 1, Kind: platform.KindDDL, CanAutoDeploy: true},
		{ID: 2, Kind: platform.KindFMC},
		{ID: 3, Kind: platform.KindETL, CanAutoDeploy: true},
	}

	got, err := Deploy(context.Background(), f, gens, "snowflake_dev")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].Deployed)
	assert.False(t, got[1].Deployed)
	assert.NotEmpty(t, got[1].Reason)

	assert.Equal(t, []platformtest.Deployment{
		{GenerationID: 1, LinkID: 3},
		{GenerationID: 3, LinkID: 3},
	}, f.Deployments)
}

func TestDeploy_UnknownLink(t *testing.T) {
	f := platformtest.NewFake()
	_, err := Deploy(context.Background(), f, nil, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
	assert.Empty(t, f.Deployments)
}
