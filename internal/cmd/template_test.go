package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/platform/platformtest"
	"github.com/dvmodel/dvctl/internal/testutil"
)

func templateScenario() *platformtest.Scenario {
	s := platformtest.NewScenario()
	s.AddRelease(1, "R1", "2024-01-01", true, false)
	s.AddBVRelease(11, 1, "bv", "2024-01-02", false)
	s.TemplateList = []platform.Template{
		{ID: 7, Name: "scd2", BusinessVaultReleaseID: 11, DDL: "old ddl", ETL: "old etl", Dependencies: []string{"customer_sat"}},
	}
	s.Examples["customer_sat"] = platform.TemplateExample{
		Code: "select 1;",
		Generations: []platform.Generation{
			{ID: 55, Kind: platform.KindDDL, CanAutoDeploy: true},
			{ID: 56, Kind: platform.KindETL},
		},
	}
	s.LinkList = []platform.DatabaseLink{{ID: 3, Name: "DWH"}}
	return s
}

func TestNewTemplateTestCmd(t *testing.T) {
	cmd := NewTemplateTestCmd(nil)

	for _, name := range []string{"dv", "bv", "link", "out-dir", "output"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestTemplateTest(t *testing.T) {
	testutil.IsolateHome(t)
	s := templateScenario()
	dir := t.TempDir()
	file := testutil.WriteFile(t, dir, "scd2_etl.sql", "new etl")

	_, err := execute(t, s, "template", "test", "sales", "edw", "SNOWFLAKESQL", file, "customer_sat", "--out-dir", dir)
	require.NoError(t, err)

	require.Len(t, s.SavedTemplates, 1)
	assert.Equal(t, "new etl", s.SavedTemplates[0].ETL)
	data, err := os.ReadFile(filepath.Join(dir, "scd2_result_customer_sat"))
	require.NoError(t, err)
	assert.Equal(t, "select 1;", string(data))
	assert.Empty(t, s.Deployments)
}

func TestTemplateTest_Deploy(t *testing.T) {
	testutil.IsolateHome(t)
	s := templateScenario()
	dir := testutil.CopyFixture(t, "templates")
	file := filepath.Join(dir, "scd2_ddl.sql")

	_, err := execute(t, s, "template", "test", "sales", "edw", "ORACLESQL", file, "customer_sat",
		"--out-dir", dir, "-l", "DWH")
	require.NoError(t, err)

	require.Len(t, s.SavedTemplates, 1)
	assert.Contains(t, s.SavedTemplates[0].DDL, "_scd2 as")
	assert.Equal(t, "old etl", s.SavedTemplates[0].ETL)

	require.Len(t, s.Deployments, 1)
	assert.Equal(t, platformtest.Deployment{GenerationID: 55, LinkID: 3}, s.Deployments[0])
}

func TestTemplateTest_UnknownObject(t *testing.T) {
	testutil.IsolateHome(t)
	s := templateScenario()
	dir := t.TempDir()
	file := testutil.WriteFile(t, dir, "scd2_etl.sql", "new etl")

	_, err := execute(t, s, "template", "test", "sales", "edw", "SNOWFLAKESQL", file, "order_link", "--out-dir", dir)
	require.Error(t, err)
	assert.Equal(t, 5, exitCode(t, err))
	assert.Empty(t, s.SavedTemplates)
}
