package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFile(t *testing.T) {
	rows := []map[string]any{
		{"nom": "Campagne A", "budget": float64(1200), "taux": 0.5},
		{"nom": "Val, avec \"guillemets\"", "budget": nil, "taux": float64(2)},
	}

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, WriteFile(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(raw)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"), "UTF-8 BOM for Excel")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(content, "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "budget,nom,taux", strings.TrimSpace(lines[0]))
	assert.Equal(t, "1200,Campagne A,0.5", strings.TrimSpace(lines[1]))
	assert.Equal(t, `,"Val, avec ""guillemets""",2`, strings.TrimSpace(lines[2]))
}

func TestHeadersUnionAcrossRows(t *testing.T) {
	rows := []map[string]any{
		{"nom": "Campagne A"},
		{"nom": "Campagne B", "budget": float64(500)},
	}

	assert.Equal(t, []string{"budget", "nom"}, Headers(rows))

	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, WriteFile(path, rows))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(raw), "\xEF\xBB\xBF")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "budget,nom", strings.TrimSpace(lines[0]))
	assert.Equal(t, ",Campagne A", strings.TrimSpace(lines[1]))
	assert.Equal(t, "500,Campagne B", strings.TrimSpace(lines[2]))
}

func TestWriteFileNoData(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "x.csv"), nil)
	assert.ErrorIs(t, err, ErrNoData)
}
