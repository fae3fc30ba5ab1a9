package envelope

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"diffpatch/internal/iopool"
	"diffpatch/internal/ziputil"
)

// stagedFile is a (archive-relative path, file content) pair
// prepared concurrently by buildArchive's worker pool and drained by the
// single zip-writing goroutine, matching spec.md §5's single-writer policy.
type stagedFile struct {
	zipName string
	data    []byte
}

// buildArchive reads every file named by relPaths from srcDir and packs them
// into a Deflate-compressed zip archive, returning the raw archive bytes.
// Reads happen concurrently across iopool's bounded worker set; the zip
// stream itself is written by a single goroutine after all reads complete,
// since archive/zip.Writer is not safe for concurrent use.
func buildArchive(srcDir string, relPaths []string) ([]byte, error) {
	sorted := append([]string(nil), relPaths...)
	sort.Strings(sorted)

	var collector iopool.Collector[stagedFile]
	errs := iopool.Run(sorted, func(rel string) error {
		abs := filepath.Join(srcDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(abs)
		if err != nil {
			return fmt.Errorf("read %s for archive: %w", abs, err)
		}
		collector.Add(stagedFile{zipName: ziputil.SanitizePath(rel), data: data})
		return nil
	})
	if len(errs) > 0 {
		return nil, errs[0]
	}

	staged := collector.Drain()
	sort.Slice(staged, func(i, j int) bool { return staged[i].zipName < staged[j].zipName })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range staged {
		if err := ziputil.WriteFile(zw, f.zipName, f.data); err != nil {
			return nil, fmt.Errorf("write archive entry: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractArchive unpacks archive bytes into destDir; exported for
// internal/applier's staging step (spec.md §4.5 step 3).
func ExtractArchive(archiveBytes []byte, destDir string) error {
	return extractArchive(archiveBytes, destDir)
}

// extractArchive unpacks archive bytes into destDir, creating parent
// directories as needed. Entries whose declared name cannot be resolved to a
// safe relative path (no escapes outside destDir) are skipped, per spec.md
// §4.5 step 3.
func extractArchive(archiveBytes []byte, destDir string) error {
	zr, err := zip.NewReader(bytes.NewReader(archiveBytes), int64(len(archiveBytes)))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	type job struct {
		f *zip.File
	}
	jobs := make([]job, 0, len(zr.File))
	for _, f := range zr.File {
		jobs = append(jobs, job{f: f})
	}

	errs := iopool.Run(jobs, func(j job) error {
		safe := ziputil.SanitizePath(j.f.Name)
		outPath := filepath.Join(destDir, filepath.FromSlash(safe))
		if !isWithin(destDir, outPath) {
			return nil // escapes extraction root: skip per spec.md §4.5 step 3.
		}
		if j.f.FileInfo().IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", outPath, err)
		}
		rc, err := j.f.Open()
		if err != nil {
			return fmt.Errorf("open archive entry %s: %w", j.f.Name, err)
		}
		defer rc.Close()
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer out.Close()
		if _, err := io.Copy(out, rc); err != nil {
			return fmt.Errorf("extract %s: %w", outPath, err)
		}
		return nil
	})
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func isWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
