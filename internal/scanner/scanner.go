// Package scanner walks a directory tree and returns a map of relative path
// to FileEntry, implementing spec.md §4.2. It is adapted from the teacher's
// internal/walkwalk collector: the deterministic WalkDir traversal and
// per-file SHA-256 hashing survive; the gitignore/symlink/size-budget knobs
// that walkwalk carried for the bundle-collector's use case are dropped
// because spec.md's inclusion predicate is exactly four conditions, no more.
package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"diffpatch/internal/hasher"
	"diffpatch/internal/iopool"
	"diffpatch/internal/model"
)

// Scan walks root and returns relative-path -> FileEntry for every included
// file. Walk order is unspecified; the returned map has no ordering.
//
// A file is included iff:
//   - it is a regular file;
//   - no path component of its root-relative path begins with '.';
//   - its extension (with or without a leading dot) is not in excludeExts;
//   - no directory ancestor's name is in excludeDirs.
//
// Per-file hash/metadata errors and unreadable directories are non-fatal:
// the entry is dropped and the miss is folded into a summary error that is
// logged at debug level, never returned (see spec.md §7 PerFileSoftError).
func Scan(root string, excludeExts, excludeDirs map[string]struct{}) (map[string]model.FileEntry, error) {
	type candidate struct {
		relPath string
		absPath string
		size    int64
	}

	var candidates []candidate
	var walkErr error

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			walkErr = multierr.Append(walkErr, err)
			return nil
		}
		if path == root {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if hasDotComponent(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if isExcludedDir(d.Name(), excludeDirs) {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if hasExcludedAncestor(rel, excludeDirs) {
			return nil
		}
		if isExcludedExt(rel, excludeExts) {
			return nil
		}

		info, ierr := d.Info()
		if ierr != nil {
			walkErr = multierr.Append(walkErr, ierr)
			return nil
		}

		candidates = append(candidates, candidate{relPath: rel, absPath: path, size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make(map[string]model.FileEntry, len(candidates))
	var mu sync.Mutex

	errs := iopool.Run(candidates, func(c candidate) error {
		sum, herr := hasher.HashFile(c.absPath)
		if herr != nil {
			return herr
		}
		mu.Lock()
		out[c.relPath] = model.FileEntry{
			RelativePath: c.relPath,
			Hash:         sum,
			Size:         uint64(c.size),
		}
		mu.Unlock()
		return nil
	})
	for _, e := range errs {
		walkErr = multierr.Append(walkErr, e)
	}

	if walkErr != nil {
		logrus.WithField("root", root).WithError(walkErr).Debug("scanner: soft errors dropped some files")
	}
	return out, nil
}

func hasDotComponent(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func isExcludedExt(rel string, excludeExts map[string]struct{}) bool {
	if len(excludeExts) == 0 {
		return false
	}
	ext := strings.ToLower(filepath.Ext(rel))
	if ext == "" {
		return false
	}
	if _, ok := excludeExts[ext]; ok {
		return true
	}
	if _, ok := excludeExts[strings.TrimPrefix(ext, ".")]; ok {
		return true
	}
	return false
}

func isExcludedDir(name string, excludeDirs map[string]struct{}) bool {
	_, ok := excludeDirs[name]
	return ok
}

// hasExcludedAncestor checks every directory component of rel (excluding the
// file's own base name) against excludeDirs by exact name match.
func hasExcludedAncestor(rel string, excludeDirs map[string]struct{}) bool {
	if len(excludeDirs) == 0 {
		return false
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(dir, "/") {
		if _, ok := excludeDirs[part]; ok {
			return true
		}
	}
	return false
}
