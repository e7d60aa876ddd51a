package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/quillgen/quill/internal/catalog"
	"github.com/quillgen/quill/internal/engine"
	"github.com/quillgen/quill/internal/executor"
	"github.com/quillgen/quill/internal/output"
	"github.com/quillgen/quill/internal/plan"
	"github.com/quillgen/quill/internal/prompt"
	"github.com/quillgen/quill/internal/resolve"
)

// GenerateCmd creates and returns the 'generate' command.
func GenerateCmd() *cobra.Command {
	var root, storePath, onConflict string
	var sets []string
	var dryRun bool
	var workers int

	cmd := &cobra.Command{
		Use:   "generate [generator-id]",
		Short: "Render a generator's templates into the project",
		Long: `Generate renders a parameterized module into the project tree.

The run analyzes the project first, detects conflicts with existing code,
resolves the generator's options (prompting for anything not supplied via
--set), and computes a complete plan before touching any file.

Exit codes:
  0  success
  1  aborted during configuration or conflict resolution
  2  unresolved blocking conflict
  3  configuration validation failure
  4  filesystem write failure (after rollback)

Examples:
  quill generate auth
  quill generate auth --set provider=keychain --set service_name=com.example.app
  quill generate networking --dry-run
  quill generate auth --on-conflict extend`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			settings, err := LoadSettings(root)
			if err != nil {
				output.Error(err.Error())
				os.Exit(engine.ExitAborted)
			}
			if storePath == "" {
				storePath = settings.StorePath
			}
			if workers == 0 {
				workers = settings.Workers
			}
			if onConflict == "" {
				onConflict = settings.OnConflict
			}

			prefilled, err := parseSets(sets)
			if err != nil {
				output.Error(err.Error())
				os.Exit(engine.ExitValidation)
			}

			resolution, err := parseResolution(onConflict)
			if err != nil {
				output.Error(err.Error())
				os.Exit(engine.ExitAborted)
			}

			eng, err := newEngine(storePath)
			if err != nil {
				output.Error(err.Error())
				os.Exit(engine.ExitAborted)
			}

			inv := engine.Invocation{
				Root:       root,
				Generator:  args[0],
				Prefilled:  prefilled,
				Resolution: resolution,
				DryRun:     dryRun,
				Workers:    workers,
				Prompter:   newPrompter(prefilled),
			}

			ctx := context.Background()
			result, err := eng.Run(ctx, inv)

			// A blocking conflict with no decision yet: ask interactively
			// when we can, then run once more with the answer.
			var conflictErr *plan.ConflictError
			if errors.As(err, &conflictErr) && interactive() {
				decision, askErr := askResolution(conflictErr)
				if askErr != nil || decision == "" {
					reportFailure(err)
					os.Exit(engine.ExitAborted)
				}
				inv.Resolution = decision
				result, err = eng.Run(ctx, inv)
			}

			if err != nil {
				reportFailure(err)
				os.Exit(engine.ExitCode(err))
			}

			printPlan(result.Plan, dryRun)
			if dryRun {
				output.Info("Dry run: no files were written.")
				return
			}

			output.Success(fmt.Sprintf("Applied %s@%s (%d files)",
				result.Plan.Generator, result.Plan.Version, len(result.Written)))
			printInstructions(result.Instructions)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Project root to generate into")
	cmd.Flags().StringVar(&storePath, "store", "", "Template store directory (default: built-in store)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Pre-fill a config option as name=value (repeatable)")
	cmd.Flags().StringVar(&onConflict, "on-conflict", "", "Resolution for blocking conflicts: replace or extend")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute and show the plan without writing files")
	cmd.Flags().IntVar(&workers, "workers", 0, "Analyzer worker count (default: one per CPU)")

	return cmd
}

func newEngine(storePath string) (*engine.Engine, error) {
	store, err := openStore(storePath)
	if err != nil {
		return nil, err
	}
	return engine.New(store)
}

func openStore(storePath string) (*catalog.Store, error) {
	if storePath == "" {
		return catalog.Embedded()
	}
	return catalog.OpenFS(os.DirFS(storePath))
}

func newPrompter(prefilled map[string]string) resolve.Prompter {
	if interactive() {
		return &prompt.Interactive{}
	}
	// Non-interactive runs fall back to --set values and declared
	// defaults; a truly unanswerable option fails instead of hanging.
	return &prompt.Static{Values: prefilled}
}

func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

func parseSets(sets []string) (map[string]string, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(sets))
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", s)
		}
		out[name] = value
	}
	return out, nil
}

func parseResolution(s string) (plan.Resolution, error) {
	switch s {
	case "":
		return plan.ResolutionNone, nil
	case "replace":
		return plan.ResolutionReplace, nil
	case "extend":
		return plan.ResolutionExtend, nil
	default:
		return plan.ResolutionNone, fmt.Errorf("invalid --on-conflict %q: expected replace or extend", s)
	}
}

// askResolution shows the conflict report and asks for a decision.
// Returns "" when the user picks abort.
func askResolution(conflictErr *plan.ConflictError) (plan.Resolution, error) {
	output.Error(fmt.Sprintf("Generator %q collides with existing code:", conflictErr.Report.Generator))
	for _, entry := range conflictErr.Report.Entries {
		output.Step(entry.String())
	}

	var choice string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("How should quill proceed?").
			Options(
				huh.NewOption("Replace the conflicting files (backed up for rollback)", "replace"),
				huh.NewOption("Extend: keep existing files, generate only the rest", "extend"),
				huh.NewOption("Abort", "abort"),
			).
			Value(&choice),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return plan.ResolutionNone, nil
		}
		return plan.ResolutionNone, err
	}
	if choice == "abort" {
		return plan.ResolutionNone, nil
	}
	return plan.Resolution(choice), nil
}

func printPlan(p *plan.Plan, dryRun bool) {
	verb := "Will write"
	if !dryRun {
		verb = "Planned"
	}
	output.Info(fmt.Sprintf("%s %d file(s):", verb, len(p.Artifacts)))
	for _, artifact := range p.Artifacts {
		kind := "create"
		if artifact.Existing {
			kind = "modify"
		}
		output.Step(fmt.Sprintf("%s %s (%d bytes)", kind, artifact.Path, len(artifact.Content)))
	}
}

func printInstructions(instructions string) {
	if strings.TrimSpace(instructions) == "" {
		return
	}
	rendered, err := glamour.Render(instructions, "auto")
	if err != nil {
		// Fall back to the raw markdown rather than losing the notes.
		fmt.Println(instructions)
		return
	}
	fmt.Print(rendered)
}

// reportFailure prints an error with enough structure for the user to act
// without re-running verbosely.
func reportFailure(err error) {
	var conflictErr *plan.ConflictError
	var writeErr *executor.WriteError

	switch {
	case errors.As(err, &conflictErr):
		output.Error(conflictErr.Error())
		for _, entry := range conflictErr.Report.Entries {
			output.Step(entry.String())
		}
		output.Info("Re-run with --on-conflict replace|extend, or remove the conflicting code.")
	case errors.As(err, &writeErr):
		output.Error(writeErr.Error())
		if len(writeErr.Restored) > 0 {
			output.Info("Rolled back files from this run:")
			for _, p := range writeErr.Restored {
				output.Step(p)
			}
		}
	case errors.Is(err, resolve.ErrCancelled):
		output.Info("Cancelled; nothing was written.")
	default:
		output.Error(err.Error())
	}
}
