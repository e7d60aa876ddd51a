package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillgen/quill/internal/analyzer"
	"github.com/quillgen/quill/internal/engine"
	"github.com/quillgen/quill/internal/output"
)

// AnalyzeCmd creates and returns the 'analyze' command, which prints the
// profile quill would base a generation run on.
func AnalyzeCmd() *cobra.Command {
	var root string
	var workers int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Inspect a project and report its detected conventions",
		Run: func(cmd *cobra.Command, args []string) {
			profile, err := analyzer.New(workers).Analyze(context.Background(), root)
			if err != nil {
				output.Error(err.Error())
				os.Exit(engine.ExitAborted)
			}

			printSignal := func(name string, s analyzer.Signal) {
				output.Step(fmt.Sprintf("%-20s %s (confidence %.2f)", name, s.Value, s.Confidence))
			}

			output.Info("Project profile: " + profile.Root)
			printSignal("platform", profile.Platform)
			printSignal("platform version", profile.PlatformVersion)
			printSignal("dependency manager", profile.DependencyManager)
			printSignal("architecture", profile.Architecture)

			generated := 0
			for _, sym := range profile.Symbols {
				if sym.Generated {
					generated++
				}
			}
			output.Step(fmt.Sprintf("%-20s %d (%d generated by quill)", "symbols", len(profile.Symbols), generated))

			if profile.ArchitectureAmbiguous() {
				output.Info("Architecture is ambiguous; generation will use documented default directories and note it in the integration instructions.")
			}
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Project root to analyze")
	cmd.Flags().IntVar(&workers, "workers", 0, "Analyzer worker count (default: one per CPU)")

	return cmd
}
