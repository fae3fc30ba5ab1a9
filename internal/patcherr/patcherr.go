// Package patcherr defines the hard-error sentinels from spec.md §7's error
// kind table: InvalidPatchFile, MissingEndMarker, DirectoryVerificationFailed
// and DeserializationFailed. InputValidation and Io are represented as plain
// wrapped errors at their call sites (fmt.Errorf("...: %w", err)), matching
// the teacher's own error style; PerFileSoftError is never returned — it is
// swallowed at the point of occurrence per §7's propagation rule.
package patcherr

import "errors"

var (
	// ErrInvalidPatchFile is returned when the trailer is absent, truncated,
	// or its length fields overflow the file size.
	ErrInvalidPatchFile = errors.New("invalid patch file")

	// ErrMissingEndMarker is returned when the last 9 bytes of the artifact
	// are not the literal "PATCH_END" marker.
	ErrMissingEndMarker = errors.New("missing PATCH_END marker")

	// ErrDirectoryVerificationFailed is returned when a non-empty
	// check_files list names a path absent from the target directory.
	ErrDirectoryVerificationFailed = errors.New("directory verification failed")

	// ErrDeserializationFailed is returned when the manifest bytes are not
	// valid PatchManifest JSON.
	ErrDeserializationFailed = errors.New("patch manifest deserialization failed")
)
