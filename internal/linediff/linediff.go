// Package linediff computes the line-range edit script described in
// spec.md §4.3.1. It is the direct Go analogue of
// original_source/src/diff.rs's use of similar::TextDiff::grouped_ops(3):
// github.com/pmezard/go-difflib's SequenceMatcher.GetGroupedOpCodes ports the
// same grouped-diff algorithm Python's difflib (and similar's line mode) use,
// so the teacher's one real dependency lands exactly on this component.
package linediff

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"diffpatch/internal/model"
)

// contextRadius is the number of unchanged lines kept between disjoint
// change groups, fixed by spec.md §4.3.1.
const contextRadius = 3

// Compute returns the grouped edit script turning the lines of source into
// the lines of target. Line terminators are stripped before comparison;
// Insert/Replace content is rejoined with a single '\n'.
func Compute(source, target string) []model.DiffOp {
	sourceLines := splitLines(source)
	targetLines := splitLines(target)

	matcher := difflib.NewMatcher(sourceLines, targetLines)
	groups := matcher.GetGroupedOpCodes(contextRadius)

	var ops []model.DiffOp
	for _, group := range groups {
		for _, oc := range group {
			op, ok := convert(oc, sourceLines, targetLines)
			if ok {
				ops = append(ops, op)
			}
		}
	}
	return ops
}

// Apply applies ops to source's lines and returns the resulting text, joined
// by a single '\n'. It is the forward, single-cursor counterpart used by
// tests to assert round-trip fidelity; the applier (internal/applier)
// implements its own back-to-front, mutating-slice algorithm per spec.md
// §4.5 step 4 instead of calling this function, since it merges into a live
// file rather than rebuilding one from scratch.
func Apply(source string, ops []model.DiffOp) string {
	lines := splitLines(source)
	// cursor tracks position in lines (old/source space) only. Insert ops
	// carry no OldRange and consume zero source lines, so they must not
	// advance cursor or be sliced against lines using NewRange — NewRange is
	// a target-space index and diverges from cursor as soon as any earlier
	// op in the script has old_len != new_len.
	var out []string
	cursor := 0
	for _, op := range ops {
		switch op.Tag {
		case model.Equal:
			r := op.OldRange
			out = append(out, lines[cursor:r.Start+r.Length]...)
			cursor = r.Start + r.Length
		case model.Delete:
			r := op.OldRange
			out = append(out, lines[cursor:r.Start]...)
			cursor = r.Start + r.Length
		case model.Insert:
			out = append(out, splitLines(op.Content)...)
		case model.Replace:
			r := op.OldRange
			out = append(out, lines[cursor:r.Start]...)
			out = append(out, splitLines(op.Content)...)
			cursor = r.Start + r.Length
		}
	}
	out = append(out, lines[cursor:]...)
	return strings.Join(out, "\n")
}

// SplitLines exports splitLines for internal/applier, which must split live
// file content on the same terminator rule the diff was computed against.
func SplitLines(s string) []string {
	return splitLines(s)
}

func convert(oc difflib.OpCode, sourceLines, targetLines []string) (model.DiffOp, bool) {
	oldStart, oldLen := oc.I1, oc.I2-oc.I1
	newStart, newLen := oc.J1, oc.J2-oc.J1

	if oc.Tag == 'e' {
		return model.DiffOp{
			Tag:      model.Equal,
			OldRange: &model.LineRange{Start: oldStart, Length: oldLen},
			NewRange: &model.LineRange{Start: newStart, Length: newLen},
		}, true
	}

	switch {
	case oldLen > 0 && newLen > 0:
		return model.DiffOp{
			Tag:      model.Replace,
			Content:  strings.Join(targetLines[newStart:newStart+newLen], "\n"),
			OldRange: &model.LineRange{Start: oldStart, Length: oldLen},
			NewRange: &model.LineRange{Start: newStart, Length: newLen},
		}, true
	case oldLen > 0:
		return model.DiffOp{
			Tag:      model.Delete,
			Content:  strings.Join(sourceLines[oldStart:oldStart+oldLen], "\n"),
			OldRange: &model.LineRange{Start: oldStart, Length: oldLen},
		}, true
	case newLen > 0:
		return model.DiffOp{
			Tag:      model.Insert,
			Content:  strings.Join(targetLines[newStart:newStart+newLen], "\n"),
			NewRange: &model.LineRange{Start: newStart, Length: newLen},
		}, true
	default:
		// old_len == 0 && new_len == 0: no-op, per spec.md §4.3.1.
		return model.DiffOp{}, false
	}
}

// splitLines splits s into terminator-stripped lines, treating \r\n, \n and
// \r as terminators, per spec.md §4.5 step 4's split rule (shared here so
// diff construction and application agree on line boundaries).
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}
