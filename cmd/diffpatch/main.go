// Command diffpatch builds and applies self-applying directory patches.
// Its entrypoint is bimodal, mirroring original_source/src/main.rs's
// is_patch_executable check: a populated binary (one carrying a trailer)
// runs the applier directly against the current directory; a stub binary
// parses CLI arguments and runs create or apply.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"diffpatch/internal/applier"
	"diffpatch/internal/cliui"
	"diffpatch/internal/envelope"
)

func main() {
	configureLogging()

	if envelope.IsPopulated() {
		runSelfApply()
		return
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "diffpatch:", err)
		os.Exit(1)
	}
}

func configureLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if os.Getenv("DIFFPATCH_DEBUG") != "" {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

// runSelfApply is the normal end-user invocation: double-click or execute
// the generated stub and it patches its own directory in place.
func runSelfApply() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "diffpatch: locate current directory:", err)
		os.Exit(1)
	}

	res, err := applier.Apply(cwd, applier.Options{
		Confirmer: cliui.StdinConfirmer{In: os.Stdin, Out: os.Stdout},
		Reporter:  &cliui.LogrusReporter{},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "diffpatch: apply failed:", err)
		os.Exit(1)
	}

	fmt.Println(cliui.RenderApplySummary(cliui.ApplySummary{
		Added:        res.Added,
		Modified:     res.Modified,
		DiffsApplied: res.DiffsApplied,
		Removed:      res.Removed,
		SkippedDiffs: res.SkippedDiffs,
		Skipped:      res.Skipped,
	}))
}
