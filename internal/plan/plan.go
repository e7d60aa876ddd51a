// Package plan composes rendered artifacts, placement decisions and the
// conflict report into a single previewable generation plan.
//
// The Plan is the pivot of the whole pipeline: it is computed in full
// before any filesystem mutation, and everything downstream either applies
// it as-is or aborts.
package plan

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/google/uuid"

	"github.com/quillgen/quill/internal/analyzer"
	"github.com/quillgen/quill/internal/catalog"
	"github.com/quillgen/quill/internal/conflict"
	"github.com/quillgen/quill/internal/placement"
	"github.com/quillgen/quill/internal/render"
	"github.com/quillgen/quill/internal/resolve"
)

// Resolution is the user's explicit answer to a blocking conflict.
type Resolution string

const (
	// ResolutionNone means no decision was made; planning a generator with
	// blocking conflicts fails with ConflictError.
	ResolutionNone Resolution = ""

	// ResolutionReplace regenerates over the conflicting files; the
	// executor backs them up so rollback can restore them.
	ResolutionReplace Resolution = "replace"

	// ResolutionExtend keeps the conflicting files and drops the artifacts
	// that would collide with them.
	ResolutionExtend Resolution = "extend"
)

// ConflictError carries the full report so the caller can display every
// collision before asking for a decision.
type ConflictError struct {
	Report *conflict.Report
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("generator %q has %d blocking conflict(s); pass an explicit resolution",
		e.Report.Generator, len(e.Report.Blocking()))
}

// Artifact is one rendered output with its target path. Existing marks a
// modification of a file already in the tree, as opposed to a new file.
type Artifact struct {
	Path     string
	Content  []byte
	Mode     fs.FileMode
	Existing bool
	Category string
	Template string
}

// Plan is the finalized, immutable set of file operations plus integration
// instructions. Nothing is added to it after planning.
type Plan struct {
	RunID        string
	Generator    string
	Version      string
	Artifacts    []Artifact
	Capabilities []string
	Instructions string
}

// Paths returns every artifact target path in plan order.
func (p *Plan) Paths() []string {
	paths := make([]string, len(p.Artifacts))
	for i, a := range p.Artifacts {
		paths[i] = a.Path
	}
	return paths
}

// grantable lists the capabilities this engine can actually honor.
// Advisory capabilities (suffix "-note") never gate writes; they surface
// in the integration instructions instead.
var grantable = map[string]bool{
	"filesystem-write": true,
}

// Planner builds plans. Stateless apart from its collaborators.
type Planner struct {
	store    *catalog.Store
	renderer *render.Renderer
}

// New creates a planner reading templates from store.
func New(store *catalog.Store) *Planner {
	return &Planner{
		store:    store,
		renderer: render.NewRenderer(),
	}
}

// Build renders every applicable template of def and assembles the plan.
//
// A report with blocking entries requires an explicit resolution; without
// one, Build fails with ConflictError before any rendering happens.
func (pl *Planner) Build(
	def *catalog.Definition,
	profile *analyzer.Profile,
	cfg resolve.Config,
	report *conflict.Report,
	resolution Resolution,
) (*Plan, error) {
	if report.HasBlocking() && resolution == ResolutionNone {
		return nil, &ConflictError{Report: report}
	}

	if err := authorize(def); err != nil {
		return nil, err
	}

	data, err := render.BuildData(def, cfg)
	if err != nil {
		return nil, err
	}

	places := placement.New(profile)
	conflicted := make(map[string]bool)
	for _, p := range report.Paths() {
		conflicted[p] = true
	}

	p := &Plan{
		RunID:        uuid.NewString(),
		Generator:    def.ID,
		Version:      def.Version,
		Capabilities: append([]string(nil), def.Capabilities...),
	}

	for _, ref := range def.Templates {
		if !guardHolds(ref.When, cfg) {
			continue
		}

		src, err := pl.store.ReadTemplate(def, ref)
		if err != nil {
			return nil, err
		}
		content, err := pl.renderer.Render(def.ID+"/"+ref.Source, src, data)
		if err != nil {
			return nil, err
		}

		target := places.Resolve(ref.Category, ref.File)
		existing := profile.HasFile(target) || conflicted[target]

		if existing && resolution == ResolutionExtend {
			continue
		}

		p.Artifacts = append(p.Artifacts, Artifact{
			Path:     target,
			Content:  content,
			Mode:     0644,
			Existing: existing,
			Category: ref.Category,
			Template: ref.Name,
		})
	}

	p.Instructions = instructions(def, profile)
	return p, nil
}

// authorize checks the generator's declared capabilities against what the
// engine can grant.
func authorize(def *catalog.Definition) error {
	for _, cap := range def.Capabilities {
		if grantable[cap] || strings.HasSuffix(cap, "-note") {
			continue
		}
		return fmt.Errorf("generator %q requires capability %q, which this engine cannot grant", def.ID, cap)
	}
	return nil
}

// guardHolds evaluates a template's When condition against the raw config.
// Supported forms: "option" (bool true) and "option=value".
func guardHolds(when string, cfg resolve.Config) bool {
	if when == "" {
		return true
	}
	if name, value, ok := strings.Cut(when, "="); ok {
		return cfg[name] == value
	}
	return cfg.Bool(when)
}

// instructions assembles the follow-up text shown after a successful apply.
func instructions(def *catalog.Definition, profile *analyzer.Profile) string {
	var b strings.Builder

	if def.Notes != "" {
		b.WriteString(strings.TrimSpace(def.Notes))
		b.WriteString("\n")
	}

	for _, cap := range def.Capabilities {
		if strings.HasSuffix(cap, "-note") {
			fmt.Fprintf(&b, "\n> Capability note: this module assumes `%s`. Check your target's entitlements.\n",
				strings.TrimSuffix(cap, "-note"))
		}
	}

	if profile.ArchitectureAmbiguous() {
		b.WriteString("\n> The project's architectural convention could not be determined with confidence. Generated files were placed in the documented default directories; confirm the placement matches your layout.\n")
	}

	return b.String()
}
