// Package applier implements spec.md §4.5: authenticate the target
// directory via check-files, extract the archive to a staging area, apply
// line diffs, copy staged files over, delete removed paths. It is adapted
// from original_source/src/patch.rs's apply_patch, generalized to cover the
// ModifiedDiff case the Rust source's early PatchData variant (kept in
// original_source/src/patch.rs) did not yet carry.
package applier

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"diffpatch/internal/cliui"
	"diffpatch/internal/envelope"
	"diffpatch/internal/iopool"
	"diffpatch/internal/model"
	"diffpatch/internal/patcherr"
)

// Stage names the applier's state machine per spec.md §4.5's ordering note:
// diffs must be applied before bulk copy so that a file covered by a full
// Modified replacement overwrites any prior diff work, never the reverse.
type Stage int

const (
	Init Stage = iota
	Decoded
	Authenticated
	Staged
	Diffed
	Copied
	Deleted
	Done
)

// Confirmer is the named external collaborator spec.md §1 scopes out of the
// core lifecycle: user-confirmation prompts. Apply calls it only when
// check_files is empty (spec.md §4.5 step 2).
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// Result reports what Apply actually did, for CLI summary rendering.
type Result struct {
	Stage        Stage
	Added        int
	Modified     int
	DiffsApplied int
	Removed      int
	SkippedDiffs int
	Skipped      bool // true if the user declined an unguarded apply
}

// Options configures a single Apply invocation.
type Options struct {
	// PatchFilePath overrides where the trailer is read from; empty means
	// "the currently running executable" (the normal stub-runtime path).
	// Set explicitly by the `apply --patch-data FILE` CLI entry (spec.md §6).
	PatchFilePath string
	Confirmer     Confirmer
	// Reporter receives lifecycle progress events (spec.md §1's named,
	// swappable external collaborator for progress indication). Nil means
	// silent.
	Reporter cliui.Reporter
}

// Apply runs the full lifecycle against currentDir and returns a Result
// describing what happened, or a hard error per spec.md §7's table
// (InvalidPatchFile / DirectoryVerificationFailed / DeserializationFailed).
// Failure at any stage aborts before advancing; the staging directory's side
// effects are discarded with its removal.
func Apply(currentDir string, opt Options) (Result, error) {
	res := Result{Stage: Init}
	reporter := opt.Reporter
	if reporter == nil {
		reporter = cliui.NullReporter{}
	}
	reporter.Start("apply patch", int(Done))

	var manifest model.PatchManifest
	var archiveBytes []byte
	var err error
	if opt.PatchFilePath != "" {
		manifest, archiveBytes, err = envelope.DecodePath(opt.PatchFilePath)
	} else {
		manifest, archiveBytes, err = envelope.Decode()
	}
	if err != nil {
		return res, err
	}
	res.Stage = Decoded
	reporter.Step("decoded")
	logrus.WithField("counts", manifest.Counts()).Info("applier: decoded patch manifest")

	if err := authenticate(manifest.CheckFiles, currentDir, opt.Confirmer); err != nil {
		if err == errUserDeclined {
			res.Skipped = true
			return res, nil
		}
		return res, err
	}
	res.Stage = Authenticated
	reporter.Step("authenticated")

	stagingDir, err := os.MkdirTemp("", "diffpatch-stage-"+uuid.NewString())
	if err != nil {
		return res, fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	if len(archiveBytes) > 0 {
		if err := extractTo(archiveBytes, stagingDir); err != nil {
			return res, fmt.Errorf("extract staged content: %w", err)
		}
	}
	res.Stage = Staged
	reporter.Step("staged")

	diffErrs := applyDiffs(manifest.ModifiedDiffs, currentDir)
	res.DiffsApplied = len(manifest.ModifiedDiffs) - len(diffErrs)
	res.SkippedDiffs = len(diffErrs)
	if len(diffErrs) > 0 {
		logrus.WithError(multierr.Combine(diffErrs...)).Warn("applier: some diffs were skipped")
	}
	res.Stage = Diffed
	reporter.Step("diffed")

	copied, copyErr := copyStagedOver(stagingDir, currentDir, manifest, reporter)
	res.Added = copied.added
	res.Modified = copied.modified
	if copyErr != nil {
		logrus.WithError(copyErr).Warn("applier: some staged files failed to copy")
	}
	res.Stage = Copied
	reporter.Step("copied")

	removed, delErr := deleteRemoved(manifest.RemovedFiles, currentDir)
	res.Removed = removed
	if delErr != nil {
		logrus.WithError(delErr).Warn("applier: some removals failed")
	}
	res.Stage = Deleted
	reporter.Step("deleted")

	res.Stage = Done
	reporter.Done("apply patch")
	return res, nil
}

var errUserDeclined = fmt.Errorf("user declined unguarded apply")

// authenticate implements spec.md §4.5 step 2: a non-empty check_files list
// must all resolve under currentDir, or the apply aborts hard. An empty list
// requires explicit confirmation instead.
func authenticate(checkFiles []string, currentDir string, confirmer Confirmer) error {
	if len(checkFiles) > 0 {
		for _, rel := range checkFiles {
			full := filepath.Join(currentDir, filepath.FromSlash(rel))
			if _, err := os.Stat(full); err != nil {
				return fmt.Errorf("%w: %s not found under %s", patcherr.ErrDirectoryVerificationFailed, rel, currentDir)
			}
		}
		return nil
	}

	logrus.Warn("applier: no check_files specified, applying without verification")
	if confirmer == nil {
		return errUserDeclined
	}
	ok, err := confirmer.Confirm("No verification files specified. Continue with patch application?")
	if err != nil {
		return fmt.Errorf("confirm unguarded apply: %w", err)
	}
	if !ok {
		return errUserDeclined
	}
	return nil
}

func extractTo(archiveBytes []byte, stagingDir string) error {
	return envelope.ExtractArchive(archiveBytes, stagingDir)
}

type copyCounts struct{ added, modified int }

// copyStagedOver copies every Added/Modified file from stagingDir over
// currentDir unconditionally, in parallel, per spec.md §4.5 step 5. reporter
// is stepped once per completed file, matching the original's indicatif bar
// over the same copy/extract work (SPEC_FULL.md's Ambient Stack section).
func copyStagedOver(stagingDir, currentDir string, manifest model.PatchManifest, reporter cliui.Reporter) (copyCounts, error) {
	type job struct {
		rel     string
		isAdded bool
	}
	jobs := make([]job, 0, len(manifest.AddedFiles)+len(manifest.ModifiedFiles))
	for _, f := range manifest.AddedFiles {
		jobs = append(jobs, job{rel: f.RelativePath, isAdded: true})
	}
	for _, f := range manifest.ModifiedFiles {
		jobs = append(jobs, job{rel: f.RelativePath, isAdded: false})
	}

	reporter.Start("copy files", len(jobs))
	var counts copyCounts
	var mu sync.Mutex
	errs := iopool.Run(jobs, func(j job) error {
		src := filepath.Join(stagingDir, filepath.FromSlash(j.rel))
		dst := filepath.Join(currentDir, filepath.FromSlash(j.rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", dst, err)
		}
		if err := copyFileOverwrite(src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", j.rel, err)
		}
		mu.Lock()
		if j.isAdded {
			counts.added++
		} else {
			counts.modified++
		}
		mu.Unlock()
		reporter.Step(j.rel)
		return nil
	})
	reporter.Done("copy files")
	if len(errs) > 0 {
		return counts, multierr.Combine(errs...)
	}
	return counts, nil
}

func copyFileOverwrite(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()
	buf := make([]byte, 64*1024)
	_, err = io.CopyBuffer(out, in, buf)
	return err
}

// deleteRemoved unlinks every removed path in parallel; missing paths are
// ignored, per spec.md §4.5 step 6.
func deleteRemoved(removed []string, currentDir string) (int, error) {
	var count int
	var mu sync.Mutex
	errs := iopool.Run(removed, func(rel string) error {
		full := filepath.Join(currentDir, filepath.FromSlash(rel))
		if _, err := os.Stat(full); err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("stat %s: %w", full, err)
		}
		if err := os.Remove(full); err != nil {
			return fmt.Errorf("remove %s: %w", full, err)
		}
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})
	if len(errs) > 0 {
		return count, multierr.Combine(errs...)
	}
	return count, nil
}
