package envelope

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"diffpatch/internal/model"
	"diffpatch/internal/patcherr"
)

// IsPopulated reports whether the running executable carries a trailer,
// implementing spec.md §4.4.2's self-recognition: read the last 9 bytes of
// the own image and compare against EndMarker.
func IsPopulated() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	return isPopulatedPath(exe)
}

// IsPopulatedPath is IsPopulated for an arbitrary file rather than the
// running executable.
func IsPopulatedPath(exe string) bool {
	return isPopulatedPath(exe)
}

// DecodePath is Decode for an arbitrary file. internal/applier calls it for
// the `apply --patch-data FILE` CLI entry point (spec.md §6) to test a patch
// file without running it directly.
func DecodePath(exe string) (model.PatchManifest, []byte, error) {
	return decodePath(exe)
}

func isPopulatedPath(exe string) bool {
	f, err := os.Open(exe)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() < int64(len(EndMarker)) {
		return false
	}
	buf := make([]byte, len(EndMarker))
	if _, err := f.ReadAt(buf, info.Size()-int64(len(EndMarker))); err != nil {
		return false
	}
	return string(buf) == EndMarker
}

// Decode recovers the PatchManifest and raw archive bytes from the running
// executable's own trailer, implementing spec.md §4.4.3.
func Decode() (model.PatchManifest, []byte, error) {
	exe, err := os.Executable()
	if err != nil {
		return model.PatchManifest{}, nil, fmt.Errorf("locate current executable: %w", err)
	}
	return decodePath(exe)
}

func decodePath(exe string) (model.PatchManifest, []byte, error) {
	f, err := os.Open(exe)
	if err != nil {
		return model.PatchManifest{}, nil, fmt.Errorf("open %s: %w", exe, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return model.PatchManifest{}, nil, fmt.Errorf("stat %s: %w", exe, err)
	}
	size := info.Size()
	if size < MinPatchFileSize {
		return model.PatchManifest{}, nil, fmt.Errorf("%w: %s is only %d bytes", patcherr.ErrInvalidPatchFile, exe, size)
	}

	endBuf := make([]byte, len(EndMarker))
	if _, err := f.ReadAt(endBuf, size-int64(len(EndMarker))); err != nil {
		return model.PatchManifest{}, nil, fmt.Errorf("read end marker: %w", err)
	}
	if string(endBuf) != EndMarker {
		return model.PatchManifest{}, nil, patcherr.ErrMissingEndMarker
	}

	lenBuf := make([]byte, 16)
	if _, err := f.ReadAt(lenBuf, size-int64(FooterSize)); err != nil {
		return model.PatchManifest{}, nil, fmt.Errorf("read length fields: %w", err)
	}
	manifestLen := binary.LittleEndian.Uint64(lenBuf[0:8])
	archiveLen := binary.LittleEndian.Uint64(lenBuf[8:16])

	payloadStart := size - int64(FooterSize) - int64(manifestLen) - int64(archiveLen)
	if payloadStart < 0 {
		return model.PatchManifest{}, nil, fmt.Errorf("%w: payload lengths overflow file size", patcherr.ErrInvalidPatchFile)
	}

	manifestBytes := make([]byte, manifestLen)
	if _, err := f.ReadAt(manifestBytes, payloadStart); err != nil {
		return model.PatchManifest{}, nil, fmt.Errorf("read manifest payload: %w", err)
	}
	archiveBytes := make([]byte, archiveLen)
	if _, err := f.ReadAt(archiveBytes, payloadStart+int64(manifestLen)); err != nil {
		return model.PatchManifest{}, nil, fmt.Errorf("read archive payload: %w", err)
	}

	var manifest model.PatchManifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return model.PatchManifest{}, nil, fmt.Errorf("%w: %v", patcherr.ErrDeserializationFailed, err)
	}

	return manifest, archiveBytes, nil
}
