package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/streamgen/errors"
)

func TestImportPath(t *testing.T) {
	tests := []struct {
		dir      string
		expected string
	}{
		{"testdata/uikit", "example.com/uikit"},
		{"testdata/uikit/ui", "example.com/uikit/ui"},
		{"testdata/uikit/internal/streams", "example.com/uikit/internal/streams"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			got, err := ImportPath(tt.dir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestImportPath_NoModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("go 1.22\n"), 0o644))

	_, err := ImportPath(filepath.Join(dir, "streams"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no module directive")
}

func TestImportPath_InvalidPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/app\n"), 0o644))

	_, err := ImportPath(filepath.Join(dir, "gen streams"))
	require.Error(t, err)
	assert.Empty(t, errors.FlattenHints(err))
}
