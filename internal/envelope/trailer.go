// Package envelope implements spec.md §4.4: packing a JSON manifest plus a
// Deflate-compressed content archive into a trailer appended to a copy of
// the current executable, and recovering that trailer from within the
// running executable. It is adapted from the teacher's bundle zip writers
// (internal/bundle/zipdelta.go's staging-and-archive discipline, folded
// together with internal/ziputil's entry helpers) combined with the trailer
// framing from original_source/src/patch.rs's append_data_to_exe /
// extract_patch_data_from_exe.
package envelope

// EndMarker is the literal 9-byte magic suffix that marks a populated
// artifact. Doubles as both a stub-vs-populated sentinel (§4.4.2) and a
// framing terminator (§4.4.3).
const EndMarker = "PATCH_END"

// FooterSize is the fixed-size suffix beyond the two payloads: two 8-byte
// little-endian length fields plus the 9-byte EndMarker.
const FooterSize = 8 + 8 + len(EndMarker)

// MinPatchFileSize is the smallest a populated artifact's trailer can be:
// the fixed footer with both payloads empty. Anything smaller cannot
// possibly carry a valid trailer (spec.md §4.4.3 step 2 requires >= 25).
const MinPatchFileSize = FooterSize
