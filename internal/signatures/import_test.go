package signatures

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/dvmodel/dvctl/internal/errors"
	"github.com/dvmodel/dvctl/internal/platform"
	"github.com/dvmodel/dvctl/internal/platform/platformtest"
)

func writeCSV(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func editableScenario() *platformtest.Scenario {
	s := platformtest.NewScenario()
	s.AddRelease(1, "R1", "2024-01-01", true, false)
	s.AddBVRelease(11, 1, "bv-locked", "2024-01-02", true)
	s.AddBVRelease(12, 1, "bv-open", "2024-01-03", false)
	s.SignatureObjectList[12] = []platform.Signature{{ID: 5, Name: "PII"}}
	return s
}

func TestImport(t *testing.T) {
	s := editableScenario()
	dir := t.TempDir()
	writeCSV(t, dir, ObjectFile, "customer_hub,PII\norder_link,FINANCE\nproduct_hub,FINANCE\n")
	writeCSV(t, dir, AttributeFile, "object,attribute,signature\ncustomer_sat,email,MASKED\n")

	res, err := Import(context.Background(), s, ImportOptions{Project: "sales", DataVault: "edw", Dir: dir})
	require.NoError(t, err)

	assert.Equal(t, int64(12), res.Releases.BusinessVault.ID)
	assert.Equal(t, 3, res.ObjectRows)
	assert.Equal(t, 1, res.AttributeRows)
	assert.Equal(t, []string{"FINANCE"}, res.CreatedObjects)
	assert.Equal(t, []string{"MASKED"}, res.CreatedAttributes)
	assert.Equal(t, 1, s.Calls["CreateSignatureObject"], "missing signature is created once")

	require.Len(t, s.ObjectAssignments, 3)
	assert.Equal(t, platformtest.ObjectAssignment{BusinessVaultReleaseID: 12, Object: "customer_hub", SignatureID: 5}, s.ObjectAssignments[0])
	assert.Equal(t, s.ObjectAssignments[1].SignatureID, s.ObjectAssignments[2].SignatureID)

	require.Len(t, s.AttributeAssignments, 1)
	assert.Equal(t, "email", s.AttributeAssignments[0].Attribute)
}

func TestImport_NamedLockedBusinessVault(t *testing.T) {
	s := editableScenario()
	dir := t.TempDir()
	writeCSV(t, dir, ObjectFile, "customer_hub,PII\n")

	_, err := Import(context.Background(), s, ImportOptions{
		Project: "sales", DataVault: "edw", Dir: dir, BVRelease: "bv-locked",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrReleaseLocked))
	assert.Empty(t, s.ObjectAssignments)
}

func TestImport_InvalidRowWritesNothing(t *testing.T) {
	s := editableScenario()
	dir := t.TempDir()
	writeCSV(t, dir, ObjectFile, "customer_hub,PII\norder_link,\n")

	_, err := Import(context.Background(), s, ImportOptions{Project: "sales", DataVault: "edw", Dir: dir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
	assert.Contains(t, err.Error(), ObjectFile+":2")
	assert.Equal(t, 0, s.Calls["Project"])
	assert.Empty(t, s.ObjectAssignments)
}

func TestImport_NoFiles(t *testing.T) {
	_, err := Import(context.Background(), editableScenario(), ImportOptions{Project: "sales", DataVault: "edw", Dir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}

func TestReadObjectRows(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []ObjectRow
		wantErr bool
	}{
		{
			name:  "header skipped",
			input: "object_name,signature_name\nhub, PII\n",
			want:  []ObjectRow{{Line: 2, Object: "hub", Signature: "PII"}},
		},
		{
			name:  "blank lines ignored",
			input: "hub,PII\n\nlink,FIN\n",
			want: []ObjectRow{
				{Line: 1, Object: "hub", Signature: "PII"},
				{Line: 3, Object: "link", Signature: "FIN"},
			},
		},
		{name: "too few columns", input: "hub\n", wantErr: true},
		{name: "empty signature", input: "hub, \n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadObjectRows(strings.NewReader(tt.input), ObjectFile)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, oerrors.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadAttributeRows_MissingAttribute(t *testing.T) {
	_, err := ReadAttributeRows(strings.NewReader("sat,,MASKED\n"), AttributeFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attribute")
}
