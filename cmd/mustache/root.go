package main

import "github.com/spf13/cobra"

// newRootCmd builds the "mustache" command tree. Errors from RunE are
// left to the caller (see main.go) rather than printed by Cobra itself,
// matching the teacher pack's thin-main/log.Fatalf idiom.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mustache",
		Short:         "Render Mustache templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd())
	return root
}
