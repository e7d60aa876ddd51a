// Package analyzer inspects a target source tree and produces an immutable
// Profile of its detected conventions.
//
// The traversal is read-only and bounded. File contents are scanned in
// parallel; results are merged in path order, so worker scheduling never
// changes the Profile.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/quillgen/quill/internal/output"
)

// Ambiguous is recorded when competing conventions score too close to call.
// Downstream stages must treat it as "ask the user", never as a default.
const Ambiguous = "ambiguous"

// maxFiles bounds the traversal so a pathological tree cannot stall a run.
const maxFiles = 20000

// ScanError reports an unreadable or inaccessible project root.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("cannot scan project root %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Signal is one detected project property with a confidence score in [0, 1].
type Signal struct {
	Value      string
	Confidence float64
}

// Symbol is one top-level declaration found in the tree. Generated marks
// symbols attributed to this engine's own prior output.
type Symbol struct {
	Name      string
	Kind      string // class, struct, enum, protocol, actor, extension
	Path      string // relative to the project root
	Generated bool
}

// Profile is the analyzer's snapshot of a project. Created once per
// invocation and never mutated afterward.
type Profile struct {
	Root              string
	Platform          Signal
	PlatformVersion   Signal
	DependencyManager Signal
	Architecture      Signal
	Symbols           []Symbol

	// Files lists every path seen in the tree, relative and slash
	// separated, in sorted order. The conflict detector matches path
	// patterns against it, so files without any top-level declaration
	// still count as occupied territory.
	Files []string

	// GeneratedFiles marks the subset of Files carrying the generated
	// header, whether or not they contributed symbols.
	GeneratedFiles map[string]bool

	// DirFiles maps each relative directory to its Swift source file count.
	// The placement resolver uses it for tie-breaking.
	DirFiles map[string]int

	files map[string]bool
}

// HasFile reports whether the snapshot saw the given relative path.
func (p *Profile) HasFile(rel string) bool {
	return p.files[filepath.ToSlash(rel)]
}

// ArchitectureAmbiguous reports whether the architecture field needs an
// explicit user decision.
func (p *Profile) ArchitectureAmbiguous() bool {
	return p.Architecture.Value == Ambiguous
}

// Analyzer performs project analysis. Safe for a single Analyze call per
// value.
type Analyzer struct {
	workers int
}

// New creates an analyzer. workers <= 0 means one worker per CPU.
func New(workers int) *Analyzer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Analyzer{workers: workers}
}

// Analyze scans the tree under root and returns its Profile.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*Profile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &ScanError{Root: root, Err: fmt.Errorf("not a directory")}
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}

	tree, err := collectTree(root)
	if err != nil {
		return nil, &ScanError{Root: root, Err: err}
	}
	output.Debug("collected project tree", "root", root, "files", len(tree.files))

	profile := &Profile{
		Root:           root,
		Files:          tree.files,
		GeneratedFiles: make(map[string]bool),
		DirFiles:       tree.dirFiles,
		files:          tree.fileSet(),
	}

	profile.Platform = detectPlatform(tree)
	profile.DependencyManager = detectDependencyManager(tree)
	profile.PlatformVersion = detectPlatformVersion(root, tree)

	sources := tree.swiftFiles()
	results, err := a.scanSources(ctx, root, sources)
	if err != nil {
		return nil, err
	}

	evidence := architectureEvidence{}
	for i, res := range results {
		profile.Symbols = append(profile.Symbols, res.symbols...)
		if res.generated {
			profile.GeneratedFiles[sources[i]] = true
		}
		evidence.add(res.evidence)
	}
	profile.Architecture = evidence.classify()

	output.Debug("analysis complete",
		"platform", profile.Platform.Value,
		"deps", profile.DependencyManager.Value,
		"architecture", profile.Architecture.Value,
		"symbols", len(profile.Symbols))

	return profile, nil
}

// scanSources reads Swift sources with a bounded worker pool. The result
// slice is ordered by path regardless of which worker finished first.
func (a *Analyzer) scanSources(ctx context.Context, root string, paths []string) ([]fileResult, error) {
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, rel := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res, err := scanSwiftFile(root, rel)
			if err != nil {
				// Unreadable individual files are skipped, not fatal;
				// only the root itself is load-bearing.
				output.Warn("skipping unreadable file", "path", rel, "error", err)
				return nil
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// tree is the outcome of the presence pass: every relative path seen,
// before any file contents are read.
type tree struct {
	files    []string // relative, slash-separated
	dirs     []string
	dirFiles map[string]int
}

func (t *tree) fileSet() map[string]bool {
	set := make(map[string]bool, len(t.files))
	for _, f := range t.files {
		set[f] = true
	}
	return set
}

func (t *tree) swiftFiles() []string {
	var out []string
	for _, f := range t.files {
		if strings.HasSuffix(f, ".swift") {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func (t *tree) hasGlob(pattern string) bool {
	for _, f := range t.files {
		if ok, _ := filepath.Match(pattern, filepath.Base(f)); ok {
			return true
		}
	}
	for _, d := range t.dirs {
		if ok, _ := filepath.Match(pattern, filepath.Base(d)); ok {
			return true
		}
	}
	return false
}

func (t *tree) find(name string) (string, bool) {
	for _, f := range t.files {
		if filepath.Base(f) == name {
			return f, true
		}
	}
	return "", false
}

// ignoredDirs are skipped during traversal. Dependency checkouts and build
// products would otherwise swamp the symbol index with foreign code.
var ignoredDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	".build":       true,
	"build":        true,
	"DerivedData":  true,
	"Pods":         true,
	"Carthage":     true,
	"node_modules": true,
	"vendor":       true,
	"tmp":          true,
}

func collectTree(root string) (*tree, error) {
	t := &tree{dirFiles: make(map[string]int)}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Skip unreadable subtrees; the root was checked upfront.
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if ignoredDirs[info.Name()] || strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			t.dirs = append(t.dirs, rel)
			return nil
		}

		if len(t.files) >= maxFiles {
			return fmt.Errorf("project exceeds %d files", maxFiles)
		}
		t.files = append(t.files, rel)

		if strings.HasSuffix(rel, ".swift") {
			t.dirFiles[filepath.ToSlash(filepath.Dir(rel))]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(t.files)
	sort.Strings(t.dirs)
	return t, nil
}
