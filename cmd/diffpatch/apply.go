package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"diffpatch/internal/applier"
	"diffpatch/internal/cliui"
)

// newApplyCmd implements spec.md §6's `apply --patch-data FILE`: an
// alternative entry to the applier for testing a patch file without running
// it directly, since the normal invocation is executing the generated stub.
func newApplyCmd() *cobra.Command {
	var patchData string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a patch file to the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("locate current directory: %w", err)
			}

			res, err := applier.Apply(cwd, applier.Options{
				PatchFilePath: patchData,
				Confirmer:     cliui.StdinConfirmer{In: os.Stdin, Out: os.Stdout},
				Reporter:      &cliui.LogrusReporter{},
			})
			if err != nil {
				return fmt.Errorf("apply failed: %w", err)
			}

			fmt.Println(cliui.RenderApplySummary(cliui.ApplySummary{
				Added:        res.Added,
				Modified:     res.Modified,
				DiffsApplied: res.DiffsApplied,
				Removed:      res.Removed,
				SkippedDiffs: res.SkippedDiffs,
				Skipped:      res.Skipped,
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&patchData, "patch-data", "", "path to the patch file to apply")
	cmd.MarkFlagRequired("patch-data")

	return cmd
}
