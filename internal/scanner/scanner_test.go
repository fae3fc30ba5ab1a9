package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestScanIncludesRegularFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hello")
	writeFile(t, root, "sub/b.txt", "world")

	entries, err := Scan(root, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Contains(t, entries, "a.txt")
	require.Contains(t, entries, "sub/b.txt")
}

func TestScanExcludesDotPathComponents(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".git/config", "x")
	writeFile(t, root, ".hidden.txt", "x")
	writeFile(t, root, "visible.txt", "x")

	entries, err := Scan(root, nil, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries, "visible.txt")
}

func TestScanExcludesExtensionWithOrWithoutDot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.log", "x")
	writeFile(t, root, "b.txt", "x")

	entries, err := Scan(root, map[string]struct{}{"log": {}}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries, "b.txt")

	entries, err = Scan(root, map[string]struct{}{".log": {}}, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries, "b.txt")
}

func TestScanExcludesAncestorDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "build/out.bin", "x")
	writeFile(t, root, "src/main.go", "x")

	entries, err := Scan(root, nil, map[string]struct{}{"build": {}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Contains(t, entries, "src/main.go")
}

func TestScanHashIsContentAddressed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "same content")
	writeFile(t, root, "b.txt", "same content")

	entries, err := Scan(root, nil, nil)
	require.NoError(t, err)
	require.Equal(t, entries["a.txt"].Hash, entries["b.txt"].Hash)
}
