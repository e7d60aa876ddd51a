package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quillgen/quill/internal/engine"
	"github.com/quillgen/quill/internal/output"
)

// ListCmd creates and returns the 'list' command.
func ListCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the generators available in the template store",
		Run: func(cmd *cobra.Command, args []string) {
			eng, err := newEngine(storePath)
			if err != nil {
				output.Error(err.Error())
				os.Exit(engine.ExitAborted)
			}

			for _, def := range eng.Catalog().Definitions() {
				output.Info(fmt.Sprintf("%s@%s", def.ID, def.Version))
				output.Step(def.Description)
			}
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "Template store directory (default: built-in store)")

	return cmd
}
