package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestFromChangesPartitionsByKind(t *testing.T) {
	changes := []Change{
		{Kind: Added, Entry: FileEntry{RelativePath: "a.txt"}},
		{Kind: Modified, Entry: FileEntry{RelativePath: "b.txt"}},
		{Kind: ModifiedDiff, Diff: FileDiff{RelativePath: "c.txt"}},
		{Kind: Removed, RemovedPath: "d.txt"},
	}

	m := FromChanges(changes, []string{"check.txt"})
	require.Equal(t, []string{"check.txt"}, m.CheckFiles)
	require.Len(t, m.AddedFiles, 1)
	require.Len(t, m.ModifiedFiles, 1)
	require.Len(t, m.ModifiedDiffs, 1)
	require.Len(t, m.RemovedFiles, 1)
}

func TestFromChangesNeverReturnsNilSlices(t *testing.T) {
	m := FromChanges(nil, nil)
	require.NotNil(t, m.CheckFiles)
	require.NotNil(t, m.AddedFiles)
	require.NotNil(t, m.ModifiedFiles)
	require.NotNil(t, m.ModifiedDiffs)
	require.NotNil(t, m.RemovedFiles)
}

func TestCountsTotal(t *testing.T) {
	c := Counts{Added: 1, Modified: 2, ModifiedDiff: 3, Removed: 4}
	require.Equal(t, 10, c.Total())
}

func TestFromChangesStructuralEquality(t *testing.T) {
	changes := []Change{
		{Kind: Added, Entry: FileEntry{RelativePath: "a.txt", Hash: "h1", Size: 3}},
		{Kind: Removed, RemovedPath: "b.txt"},
	}

	got := FromChanges(changes, nil)
	want := PatchManifest{
		CheckFiles:    []string{},
		AddedFiles:    []FileEntry{{RelativePath: "a.txt", Hash: "h1", Size: 3}},
		ModifiedFiles: []FileEntry{},
		ModifiedDiffs: []FileDiff{},
		RemovedFiles:  []string{"b.txt"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}
