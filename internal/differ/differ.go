// Package differ classifies the per-file differences between a source and a
// target directory scan, implementing spec.md §4.3. The Added/Modified/
// Removed classification is adapted from the teacher's internal/cache
// BuildDelta: same two-map membership-and-hash comparison, iterated directly
// over the scan maps, so the output order is not deterministic. The rename-detection pass BuildDelta used
// for incremental bundles (exact-hash and SimHash-similarity) is not carried
// over — spec.md's Change variants have no Renamed case, and inventing one
// would violate Invariant 2 (added_files/removed_files partition strictly by
// single-scan membership).
package differ

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"diffpatch/internal/linediff"
	"diffpatch/internal/model"
	"diffpatch/internal/scanner"
)

// Options controls comparison behavior.
type Options struct {
	ExcludeExts     map[string]struct{}
	ExcludeDirs     map[string]struct{}
	UseDiffPatches  bool
}

// Compare scans sourceDir and targetDir and returns the complete,
// non-redundant Change set per spec.md §4.3. Output order is unspecified.
func Compare(sourceDir, targetDir string, opt Options) ([]model.Change, error) {
	sourceFiles, err := scanner.Scan(sourceDir, opt.ExcludeExts, opt.ExcludeDirs)
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", sourceDir, err)
	}
	targetFiles, err := scanner.Scan(targetDir, opt.ExcludeExts, opt.ExcludeDirs)
	if err != nil {
		return nil, fmt.Errorf("scan target %s: %w", targetDir, err)
	}

	var changes []model.Change

	for path, targetEntry := range targetFiles {
		sourceEntry, existed := sourceFiles[path]
		switch {
		case !existed:
			changes = append(changes, model.Change{Kind: model.Added, Entry: targetEntry})
		case sourceEntry.Hash == targetEntry.Hash:
			// Omitted: unchanged.
		default:
			if opt.UseDiffPatches {
				if fd, ok := tryTextDiff(sourceDir, targetDir, path, sourceEntry.Hash, targetEntry.Hash); ok {
					changes = append(changes, model.Change{Kind: model.ModifiedDiff, Diff: fd})
					continue
				}
			}
			changes = append(changes, model.Change{Kind: model.Modified, Entry: targetEntry})
		}
	}

	for path := range sourceFiles {
		if _, ok := targetFiles[path]; !ok {
			changes = append(changes, model.Change{Kind: model.Removed, RemovedPath: path})
		}
	}

	return changes, nil
}

// tryTextDiff attempts to build a line-range edit script for a modified
// file. It fails (returns ok=false) when either side is not valid UTF-8 text
// or cannot be read, in which case the caller falls back to a full Modified
// replacement per spec.md §4.3 step 2.
func tryTextDiff(sourceDir, targetDir, relPath, sourceHash, targetHash string) (model.FileDiff, bool) {
	sourceBytes, err := os.ReadFile(joinRel(sourceDir, relPath))
	if err != nil {
		logrus.WithField("path", relPath).WithError(err).Debug("differ: falling back to full modified, source unreadable")
		return model.FileDiff{}, false
	}
	targetBytes, err := os.ReadFile(joinRel(targetDir, relPath))
	if err != nil {
		logrus.WithField("path", relPath).WithError(err).Debug("differ: falling back to full modified, target unreadable")
		return model.FileDiff{}, false
	}
	if !utf8.Valid(sourceBytes) || !utf8.Valid(targetBytes) {
		return model.FileDiff{}, false
	}

	ops := linediff.Compute(string(sourceBytes), string(targetBytes))
	return model.FileDiff{
		RelativePath: relPath,
		TargetHash:   targetHash,
		SourceHash:   sourceHash,
		Changes:      ops,
	}, true
}

func joinRel(dir, rel string) string {
	return filepath.Join(dir, filepath.FromSlash(rel))
}
