package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffYAML_NoChanges(t *testing.T) {
	doc := []byte("SOURCE_SCHEMA: sales\nLOAD_WINDOW: 7\n")
	diff, err := DiffYAML(doc, doc, false)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDiffYAML_BothEmpty(t *testing.T) {
	diff, err := DiffYAML(nil, []byte("  \n"), false)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestDiffYAML_ChangedValue(t *testing.T) {
	before := []byte("SOURCE_SCHEMA: sales\nLOAD_WINDOW: 7\n")
	after := []byte("SOURCE_SCHEMA: sales\nLOAD_WINDOW: 30\n")

	diff, err := DiffYAML(before, after, false)
	require.NoError(t, err)
	assert.Contains(t, diff, "LOAD_WINDOW")
	assert.Contains(t, diff, "30")
}

func TestDiffYAML_InvalidInput(t *testing.T) {
	_, err := DiffYAML([]byte("a: [unterminated"), []byte("a: 1"), false)
	assert.Error(t, err)
}

func TestIndentDiff(t *testing.T) {
	assert.Equal(t, "", IndentDiff("", "  "))
	assert.Equal(t, "  a\n  b\n", IndentDiff("a\n\nb", "  "))
}
