package applier

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"diffpatch/internal/linediff"
	"diffpatch/internal/model"
)

// applyDiffs merges every ModifiedDiff's edit script into the corresponding
// live file, per spec.md §4.5 step 4. Each file is independent, so failures
// are soft: a read or write error on one file is collected and returned
// rather than aborting the whole apply. An absent or non-UTF-8 live file is
// skipped silently and not reported. The live content is not checked
// against the diff's SourceHash.
func applyDiffs(diffs []model.FileDiff, currentDir string) []error {
	var errs []error
	for _, d := range diffs {
		if err := applyOneDiff(d, currentDir); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.RelativePath, err))
		}
	}
	return errs
}

func applyOneDiff(d model.FileDiff, currentDir string) error {
	full := filepath.Join(currentDir, filepath.FromSlash(d.RelativePath))
	raw, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // absent file: skip silently, per spec.md §4.5 step 4.
		}
		return fmt.Errorf("read live file: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil // non-UTF-8 file: skip silently, per spec.md §4.5 step 4.
	}

	lines := mergeLineDiff(linediff.SplitLines(string(raw)), d.Changes)
	merged := strings.Join(lines, "\n")

	if err := os.WriteFile(full, []byte(merged), 0o644); err != nil {
		return fmt.Errorf("write merged content: %w", err)
	}
	return nil
}

// mergeLineDiff applies ops directly against a live-file line slice,
// back to front, per spec.md §4.5 step 4: sorting by old_range.start
// descending (Insert ops, lacking OldRange, sort first under the max key)
// means an op's OldRange deletion stays valid regardless of what was already
// applied at a higher position. Insertions (Insert, and the second half of
// Replace) are placed at NewRange.Start, a target-space index, so they land
// at the intended line only when no op below them changes the line count.
func mergeLineDiff(lines []string, ops []model.DiffOp) []string {
	sorted := append([]model.DiffOp(nil), ops...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i]) > sortKey(sorted[j])
	})

	for _, op := range sorted {
		switch op.Tag {
		case model.Delete:
			lines = deleteRange(lines, op.OldRange)
		case model.Insert:
			lines = insertAt(lines, op.NewRange.Start, op.Content)
		case model.Replace:
			lines = deleteRange(lines, op.OldRange)
			lines = insertAt(lines, op.NewRange.Start, op.Content)
		}
	}
	return lines
}

func sortKey(op model.DiffOp) int {
	if op.OldRange == nil {
		return math.MaxInt
	}
	return op.OldRange.Start
}

// deleteRange removes lines[r.Start : min(r.Start+r.Length, len(lines))],
// leaving lines untouched if r.Start is already out of bounds.
func deleteRange(lines []string, r *model.LineRange) []string {
	if r == nil || r.Start >= len(lines) {
		return lines
	}
	end := r.Start + r.Length
	if end > len(lines) {
		end = len(lines)
	}
	out := make([]string, 0, len(lines)-(end-r.Start))
	out = append(out, lines[:r.Start]...)
	out = append(out, lines[end:]...)
	return out
}

// insertAt splices content's lines into lines at start, leaving lines
// untouched if start is out of bounds.
func insertAt(lines []string, start int, content string) []string {
	if start > len(lines) {
		return lines
	}
	inserted := linediff.SplitLines(content)
	out := make([]string, 0, len(lines)+len(inserted))
	out = append(out, lines[:start]...)
	out = append(out, inserted...)
	out = append(out, lines[start:]...)
	return out
}
