package envelope

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"diffpatch/internal/cliui"
	"diffpatch/internal/model"
)

// ResolveOutputPath normalizes an output path per spec.md §4.4.1 step 1: a
// relative path with no directory component is placed inside sourceDir, and
// a ".exe" extension is forced regardless of host OS — this is stub-runner
// policy, not a reflection of the generator's own platform.
func ResolveOutputPath(sourceDir, output string) string {
	if !strings.ContainsRune(output, filepath.Separator) && filepath.Dir(output) == "." {
		output = filepath.Join(sourceDir, output)
	}
	if strings.ToLower(filepath.Ext(output)) != ".exe" {
		output += ".exe"
	}
	return output
}

// Create packages changes into a self-applying artifact at outputPath.
// targetDir supplies the content for Added/Modified files (ModifiedDiff
// files are never staged — they travel inside the manifest only, per
// spec.md §4.4.1 step 2). The stub is a copy of the currently running
// executable, matching the self-locating trailer technique in
// original_source/src/patch.rs's create_patch. A nil reporter runs silently.
func Create(sourceDir, targetDir, outputPath string, changes []model.Change, checkFiles []string, reporter cliui.Reporter) error {
	if reporter == nil {
		reporter = cliui.NullReporter{}
	}
	manifest := model.FromChanges(changes, checkFiles)

	var toStage []string
	for _, f := range manifest.AddedFiles {
		toStage = append(toStage, f.RelativePath)
	}
	for _, f := range manifest.ModifiedFiles {
		toStage = append(toStage, f.RelativePath)
	}

	reporter.Start("create patch", 4)
	logrus.WithField("files", len(toStage)).Info("envelope: staging added/modified content")
	archiveBytes, err := buildArchive(targetDir, toStage)
	if err != nil {
		return fmt.Errorf("stage archive: %w", err)
	}
	reporter.Step("stage archive")

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	reporter.Step("marshal manifest")

	currentExe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate current executable: %w", err)
	}
	if err := copyFile(currentExe, outputPath); err != nil {
		return fmt.Errorf("copy stub from %s to %s: %w", currentExe, outputPath, err)
	}
	reporter.Step("copy stub")

	if err := appendTrailer(outputPath, manifestBytes, archiveBytes); err != nil {
		return fmt.Errorf("append trailer to %s: %w", outputPath, err)
	}
	reporter.Step("append trailer")
	reporter.Done("create patch")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// appendTrailer writes, in order: manifest bytes, archive bytes, the two
// u64le length fields, and the literal EndMarker — the exact layout spec.md
// §3's Trailer defines.
func appendTrailer(path string, manifestBytes, archiveBytes []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(manifestBytes); err != nil {
		return err
	}
	if _, err := f.Write(archiveBytes); err != nil {
		return err
	}

	var lenBuf [16]byte
	binary.LittleEndian.PutUint64(lenBuf[0:8], uint64(len(manifestBytes)))
	binary.LittleEndian.PutUint64(lenBuf[8:16], uint64(len(archiveBytes)))
	if _, err := f.Write(lenBuf[:]); err != nil {
		return err
	}

	_, err = f.Write([]byte(EndMarker))
	return err
}
