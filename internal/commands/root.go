package commands

import (
	quill "github.com/quillgen/quill"
	"github.com/quillgen/quill/internal/output"
	"github.com/spf13/cobra"
)

// RootCmd creates and returns the root command for the quill CLI.
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "quill",
		Short: "Project-aware code generation for Swift apps",
		Long: `Quill inspects an existing Swift project, detects its conventions,
and renders parameterized modules into the tree without trampling
hand-written code.

Every run is plan-first: quill computes the complete set of file
operations, shows it to you, and applies it transactionally. A failure
midway rolls back everything written in that run.`,
		Version: quill.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}
