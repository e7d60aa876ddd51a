package main

import (
	"os"

	"github.com/quillgen/quill/internal/commands"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.GenerateCmd())
	rootCmd.AddCommand(commands.ListCmd())
	rootCmd.AddCommand(commands.AnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
