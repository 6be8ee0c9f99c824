package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/platform/platformtest"
	"github.com/dvmodel/dvctl/internal/testutil"
)

func paramScenario() *platformtest.Scenario {
	s := platformtest.NewScenario()
	s.ProjectList = append(s.ProjectList, platform.Project{ID: 2, Name: "finance"})
	s.ProjectParams[1] = []platform.Parameter{
		{Name: "FMC_SCHEMA", Value: "fmc", Type: "TEXT"},
	}
	s.SourceList = []platform.Source{
		{ID: 100, Name: "crm", ProjectID: 1},
		{ID: 200, Name: "crm", ProjectID: 2},
	}
	s.SourceParams[100] = []platform.Parameter{{Name: "CDC", Value: "Y", Type: "BOOLEAN"}}
	s.SourceParams[200] = []platform.Parameter{{Name: "CDC", Value: "N", Type: "BOOLEAN"}}
	return s
}

func TestParamExport(t *testing.T) {
	testutil.IsolateHome(t)
	file := filepath.Join(t.TempDir(), "params.csv")

	_, err := execute(t, paramScenario(), "param", "export", "sales", file)
	require.NoError(t, err)

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"FMC_SCHEMA", "fmc", "TEXT", ""}, rows[1])
}

func TestParamExport_Stdout(t *testing.T) {
	testutil.IsolateHome(t)

	out, err := execute(t, paramScenario(), "param", "export", "sales", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "FMC_SCHEMA,fmc,TEXT,\n"), out)
}

func TestParamExport_UnknownProjectWritesNoFile(t *testing.T) {
	testutil.IsolateHome(t)
	file := filepath.Join(t.TempDir(), "params.csv")

	_, err := execute(t, paramScenario(), "param", "export", "nope", file)
	require.Error(t, err)
	assert.Equal(t, 5, exitCode(t, err))
	assert.NoFileExists(t, file)
}

func TestParamCopy(t *testing.T) {
	testutil.IsolateHome(t)
	s := paramScenario()

	out, err := execute(t, s, "param", "copy", "sales", "crm", "finance", "crm")
	require.NoError(t, err)
	assert.Contains(t, out, "CDC")
	assert.Equal(t, "Y", s.SourceParams[200][0].Value)
}

func TestParamCopy_DryRun(t *testing.T) {
	testutil.IsolateHome(t)
	s := paramScenario()

	out, err := execute(t, s, "param", "copy", "sales", "crm", "finance", "crm", "--dry-run")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, "N", s.SourceParams[200][0].Value)
	assert.Zero(t, s.Calls["SaveSourceParameters"])
}

func TestParamCopy_MissingParameter(t *testing.T) {
	testutil.IsolateHome(t)
	s := paramScenario()
	s.SourceParams[100] = append(s.SourceParams[100], platform.Parameter{Name: "ONLY_IN_A", Value: "x"})

	_, err := execute(t, s, "param", "copy", "sales", "crm", "finance", "crm")
	require.Error(t, err)
	assert.Equal(t, 5, exitCode(t, err))
	assert.Zero(t, s.Calls["SaveSourceParameters"])
}
