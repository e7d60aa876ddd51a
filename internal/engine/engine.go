// Package engine orchestrates a single generation run:
// catalog lookup, project analysis, conflict detection, config resolution,
// planning, preview and apply.
//
// Every stage before the plan is finalized is free of filesystem effects;
// only the executor mutates the tree, and it rolls itself back on failure.
package engine

import (
	"context"
	"errors"

	"github.com/quillgen/quill/internal/analyzer"
	"github.com/quillgen/quill/internal/catalog"
	"github.com/quillgen/quill/internal/conflict"
	"github.com/quillgen/quill/internal/executor"
	"github.com/quillgen/quill/internal/output"
	"github.com/quillgen/quill/internal/plan"
	"github.com/quillgen/quill/internal/render"
	"github.com/quillgen/quill/internal/resolve"
)

// Exit codes of the quill CLI.
const (
	ExitOK         = 0 // success
	ExitAborted    = 1 // user aborted, or a fatal pre-plan error
	ExitConflict   = 2 // unresolved blocking conflict
	ExitValidation = 3 // configuration validation failure
	ExitWrite      = 4 // filesystem write failure, after rollback
)

// Invocation is one generation request.
type Invocation struct {
	Root       string
	Generator  string
	Prefilled  map[string]string
	Resolution plan.Resolution
	DryRun     bool
	Workers    int
	Prompter   resolve.Prompter
}

// Result reports what a run produced. Plan is always set on success;
// Written is empty for dry runs.
type Result struct {
	Profile      *analyzer.Profile
	Report       *conflict.Report
	Plan         *plan.Plan
	Written      []string
	Instructions string
}

// Engine runs generation pipelines against one loaded catalog.
type Engine struct {
	catalog *catalog.Catalog
	planner *plan.Planner
}

// New loads the catalog from store and returns a ready engine.
func New(store *catalog.Store) (*Engine, error) {
	cat, err := catalog.Load(store)
	if err != nil {
		return nil, err
	}
	return &Engine{
		catalog: cat,
		planner: plan.New(store),
	}, nil
}

// Catalog exposes the loaded registry, for listing commands.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Run executes the pipeline for one invocation.
func (e *Engine) Run(ctx context.Context, inv Invocation) (*Result, error) {
	def, err := e.catalog.Lookup(inv.Generator)
	if err != nil {
		return nil, err
	}
	output.Debug("resolved generator", "id", def.ID, "version", def.Version)

	profile, err := analyzer.New(inv.Workers).Analyze(ctx, inv.Root)
	if err != nil {
		return nil, err
	}

	report := conflict.Detect(def, profile)
	if report.HasBlocking() && inv.Resolution == plan.ResolutionNone {
		// Fail before the resolver runs; prompting for config that can
		// never be applied would waste the user's answers.
		return &Result{Profile: profile, Report: report}, &plan.ConflictError{Report: report}
	}

	cfg, err := resolve.Resolve(ctx, def.Options, inv.Prefilled, inv.Prompter)
	if err != nil {
		return nil, err
	}

	p, err := e.planner.Build(def, profile, cfg, report, inv.Resolution)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Profile:      profile,
		Report:       report,
		Plan:         p,
		Instructions: p.Instructions,
	}

	if inv.DryRun {
		return result, nil
	}

	applied, err := executor.Apply(inv.Root, p)
	if err != nil {
		return result, err
	}
	result.Written = applied.Written

	return result, nil
}

// ExitCode maps an error from Run onto the CLI's exit code contract.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var conflictErr *plan.ConflictError
	var validationErr *resolve.ValidationError
	var writeErr *executor.WriteError
	var renderErr *render.RenderError

	switch {
	case errors.Is(err, resolve.ErrCancelled):
		return ExitAborted
	case errors.As(err, &conflictErr):
		return ExitConflict
	case errors.As(err, &validationErr):
		return ExitValidation
	case errors.As(err, &writeErr):
		return ExitWrite
	case errors.As(err, &renderErr):
		return ExitAborted
	default:
		// ScanError, NotFoundError and other fatal pre-plan failures.
		return ExitAborted
	}
}
