package applier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"diffpatch/internal/differ"
	"diffpatch/internal/envelope"
	"diffpatch/internal/patcherr"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// buildPatch runs the same create path the CLI does: compare then envelope
// encode, producing a real trailer-bearing artifact backed by the running
// test binary as the stub.
func buildPatch(t *testing.T, sourceDir, targetDir string, checkFiles []string, useDiffPatches bool) string {
	t.Helper()
	changes, err := differ.Compare(sourceDir, targetDir, differ.Options{UseDiffPatches: useDiffPatches})
	require.NoError(t, err)

	outputPath := filepath.Join(t.TempDir(), "patch.exe")
	require.NoError(t, envelope.Create(sourceDir, targetDir, outputPath, changes, checkFiles, nil))
	return outputPath
}

// E1: an added file appears after apply.
func TestApplyAddsNewFile(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "a.txt", "x")
	writeFile(t, target, "a.txt", "x")
	writeFile(t, target, "b.txt", "y")

	patchPath := buildPatch(t, source, target, []string{"a.txt"}, true)

	res, err := Apply(source, Options{PatchFilePath: patchPath})
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, 1, res.Added)

	got, err := os.ReadFile(filepath.Join(source, "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "y", string(got))
}

// E2-equivalent: a text modification applies as a line diff merge.
func TestApplyMergesLineDiff(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "a.txt", "hello\nworld")
	writeFile(t, target, "a.txt", "hello\nthere")

	patchPath := buildPatch(t, source, target, []string{"a.txt"}, true)

	res, err := Apply(source, Options{PatchFilePath: patchPath})
	require.NoError(t, err)
	require.Equal(t, 1, res.DiffsApplied)

	got, err := os.ReadFile(filepath.Join(source, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello\nthere", string(got))
}

// Exercises mergeLineDiff's Insert path (not just Replace) against a live
// file, appending a trailing line with no other edits ahead of it.
func TestApplyMergesLineDiffTrailingInsert(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "a.txt", "hello\nworld")
	writeFile(t, target, "a.txt", "hello\nworld\nagain")

	patchPath := buildPatch(t, source, target, []string{"a.txt"}, true)

	res, err := Apply(source, Options{PatchFilePath: patchPath})
	require.NoError(t, err)
	require.Equal(t, 1, res.DiffsApplied)

	got, err := os.ReadFile(filepath.Join(source, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello\nworld\nagain", string(got))
}

func TestApplyRemovesDeletedFile(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "keep.txt", "k")
	writeFile(t, source, "gone.txt", "g")
	writeFile(t, target, "keep.txt", "k")

	patchPath := buildPatch(t, source, target, []string{"keep.txt"}, true)

	res, err := Apply(source, Options{PatchFilePath: patchPath})
	require.NoError(t, err)
	require.Equal(t, 1, res.Removed)

	_, err = os.Stat(filepath.Join(source, "gone.txt"))
	require.True(t, os.IsNotExist(err))
}

// E5: missing check-file aborts hard, no files written.
func TestApplyAbortsWhenCheckFileMissing(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "a.txt", "x")
	writeFile(t, target, "a.txt", "x")
	writeFile(t, target, "b.txt", "y")

	patchPath := buildPatch(t, source, target, []string{"marker.txt"}, true)

	_, err := Apply(source, Options{PatchFilePath: patchPath})
	require.ErrorIs(t, err, patcherr.ErrDirectoryVerificationFailed)

	_, statErr := os.Stat(filepath.Join(source, "b.txt"))
	require.True(t, os.IsNotExist(statErr))
}

// E6: trailer corruption aborts with MissingEndMarker.
func TestApplyRejectsCorruptTrailer(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "a.txt", "x")
	writeFile(t, target, "a.txt", "y")

	patchPath := buildPatch(t, source, target, []string{"a.txt"}, true)

	raw, err := os.ReadFile(patchPath)
	require.NoError(t, err)
	corrupted := append(raw[:len(raw)-9], []byte("CORRUPTED")...)
	require.NoError(t, os.WriteFile(patchPath, corrupted, 0o644))

	_, err = Apply(source, Options{PatchFilePath: patchPath})
	require.ErrorIs(t, err, patcherr.ErrMissingEndMarker)
}

type fixedConfirmer struct{ answer bool }

func (f fixedConfirmer) Confirm(string) (bool, error) { return f.answer, nil }

func TestApplyUnguardedDeclinedSkipsWithoutError(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "a.txt", "x")
	writeFile(t, target, "a.txt", "y")

	patchPath := buildPatch(t, source, target, nil, true)

	res, err := Apply(source, Options{PatchFilePath: patchPath, Confirmer: fixedConfirmer{answer: false}})
	require.NoError(t, err)
	require.True(t, res.Skipped)
}

func TestApplyUnguardedConfirmedProceeds(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()
	writeFile(t, source, "a.txt", "x")
	writeFile(t, target, "a.txt", "y")
	writeFile(t, target, "b.txt", "z")

	patchPath := buildPatch(t, source, target, nil, true)

	res, err := Apply(source, Options{PatchFilePath: patchPath, Confirmer: fixedConfirmer{answer: true}})
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, 1, res.Added)
}
