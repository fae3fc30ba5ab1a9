package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"diffpatch/internal/cliui"
	"diffpatch/internal/config"
	"diffpatch/internal/differ"
	"diffpatch/internal/envelope"
	"diffpatch/internal/model"
)

func newCreateCmd() *cobra.Command {
	var (
		source            string
		target            string
		output            string
		checkFiles        string
		excludeExtensions string
		excludeDirs       string
		useDiffPatches    bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Compare two directories and produce a self-applying patch",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkIsDirectory(source, "Source directory"); err != nil {
				return err
			}
			if err := checkIsDirectory(target, "Target directory"); err != nil {
				return err
			}

			defaults, err := config.Load(source)
			if err != nil {
				return fmt.Errorf("load %s: %w", config.FileName, err)
			}

			excludeExts := mergeSet(splitCSV(excludeExtensions), defaults.ExcludeExtensions, normalizeExt)
			excludeDirSet := mergeSet(splitCSV(excludeDirs), defaults.ExcludeDirs, nil)
			checkFileList := mergeList(splitCSV(checkFiles), defaults.CheckFiles)

			printExcludeNarration(excludeExts, excludeDirSet)
			warnMissingCheckFiles(source, checkFileList)

			logrus.WithFields(logrus.Fields{"source": source, "target": target}).
				Info("comparing directories")

			changes, err := differ.Compare(source, target, differ.Options{
				ExcludeExts:    toSet(excludeExts),
				ExcludeDirs:    toSet(excludeDirSet),
				UseDiffPatches: useDiffPatches,
			})
			if err != nil {
				return fmt.Errorf("compare directories: %w", err)
			}

			outputPath := envelope.ResolveOutputPath(source, output)
			if err := envelope.Create(source, target, outputPath, changes, checkFileList, &cliui.LogrusReporter{}); err != nil {
				return fmt.Errorf("create patch: %w", err)
			}

			manifest := model.FromChanges(changes, checkFileList)
			fmt.Println(cliui.RenderCreateSummary(manifest.Counts(), outputPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source directory (baseline)")
	cmd.Flags().StringVar(&target, "target", "", "target directory (desired state)")
	cmd.Flags().StringVar(&output, "output", "patch.exe", "output patch file path")
	cmd.Flags().StringVar(&checkFiles, "check-files", "", "comma-separated relative paths verified before apply")
	cmd.Flags().StringVar(&excludeExtensions, "exclude-extensions", "", "comma-separated extensions to exclude, with or without leading dot")
	cmd.Flags().StringVar(&excludeDirs, "exclude-dirs", "", "comma-separated directory names to exclude, anywhere in the ancestor chain")
	cmd.Flags().BoolVar(&useDiffPatches, "use-diff-patches", true, "compute line-range diffs for modified text files instead of full replacement")
	cmd.MarkFlagRequired("source")
	cmd.MarkFlagRequired("target")

	return cmd
}

func checkIsDirectory(path, label string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s does not exist: %s", label, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %s", label, path)
	}
	return nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeExt(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "."))
}

// mergeSet combines flag-supplied values with config-file defaults,
// flag values winning when both are present (flags take priority per
// spec.md §6's config-file supplement).
func mergeSet(flagVals, fileVals []string, normalize func(string) string) []string {
	if len(flagVals) > 0 {
		return applyNormalize(flagVals, normalize)
	}
	return applyNormalize(fileVals, normalize)
}

func mergeList(flagVals, fileVals []string) []string {
	if len(flagVals) > 0 {
		return flagVals
	}
	return fileVals
}

func applyNormalize(vals []string, normalize func(string) string) []string {
	if normalize == nil {
		return vals
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = normalize(v)
	}
	return out
}

func toSet(vals []string) map[string]struct{} {
	if len(vals) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}

// printExcludeNarration reproduces original_source/src/main.rs's pre-flight
// display of discovered exclude lists before any comparison work happens.
func printExcludeNarration(exts, dirs []string) {
	if len(exts) > 0 {
		fmt.Println("Excluding file extensions:")
		for _, e := range exts {
			fmt.Println("  -", e)
		}
	}
	if len(dirs) > 0 {
		fmt.Println("Excluding directories:")
		for _, d := range dirs {
			fmt.Println("  -", d)
		}
	}
}

// warnMissingCheckFiles reproduces the original's check-file existence
// warning: a declared verification path absent from the source directory is
// logged but does not abort create.
func warnMissingCheckFiles(sourceDir string, checkFiles []string) {
	for _, rel := range checkFiles {
		full := filepath.Join(sourceDir, filepath.FromSlash(rel))
		if _, err := os.Stat(full); err != nil {
			logrus.WithField("checkFile", rel).Warn("create: declared check-file does not exist in source directory")
		}
	}
}
