package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "diffpatch",
		Short: "Build and apply self-applying directory patches",
	}
	root.AddCommand(newCreateCmd())
	root.AddCommand(newApplyCmd())
	return root
}
