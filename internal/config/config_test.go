package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadReturnsZeroValueWhenMissing(t *testing.T) {
	dir := t.TempDir()
	d, err := Load(dir)
	require.NoError(t, err)
	require.Empty(t, d.ExcludeExtensions)
	require.Empty(t, d.ExcludeDirs)
	require.Empty(t, d.CheckFiles)
}

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	contents := `exclude_extensions = ["log", "tmp"]
exclude_dirs = ["node_modules"]
check_files = ["go.mod"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(contents), 0o644))

	d, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"log", "tmp"}, d.ExcludeExtensions)
	require.Equal(t, []string{"node_modules"}, d.ExcludeDirs)
	require.Equal(t, []string{"go.mod"}, d.CheckFiles)
}
