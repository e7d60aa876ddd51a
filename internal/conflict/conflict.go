// Package conflict cross-references a generator's territory patterns
// against a project profile.
package conflict

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/quillgen/quill/internal/analyzer"
	"github.com/quillgen/quill/internal/catalog"
)

// Severity classifies how dangerous an occupied name is.
type Severity string

const (
	// Warning means the match is the engine's own prior output; regenerating
	// or extending it is likely safe.
	Warning Severity = "warning"

	// Blocking means foreign, hand-written code occupies the territory and
	// an explicit decision is required before any write.
	Blocking Severity = "blocking"
)

// Entry is one detected collision.
type Entry struct {
	Pattern  catalog.ConflictPattern
	Path     string
	Symbol   string
	Severity Severity
}

func (e Entry) String() string {
	what := e.Path
	if e.Symbol != "" {
		what = fmt.Sprintf("%s (in %s)", e.Symbol, e.Path)
	}
	return fmt.Sprintf("[%s] %s", e.Severity, what)
}

// Report is the detector's output. Derived data; recompute rather than
// mutate when inputs change.
type Report struct {
	Generator string
	Entries   []Entry
}

// HasBlocking reports whether any entry requires an explicit decision.
func (r *Report) HasBlocking() bool {
	for _, e := range r.Entries {
		if e.Severity == Blocking {
			return true
		}
	}
	return false
}

// Blocking returns only the blocking entries.
func (r *Report) Blocking() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Severity == Blocking {
			out = append(out, e)
		}
	}
	return out
}

// Paths returns the set of file paths named by entries, deduplicated in
// first-seen order.
func (r *Report) Paths() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.Entries {
		if e.Path != "" && !seen[e.Path] {
			seen[e.Path] = true
			out = append(out, e.Path)
		}
	}
	return out
}

// Detect tests every conflict pattern of def against the profile's symbol
// and file indexes. A profile with empty indexes always yields an empty
// report.
func Detect(def *catalog.Definition, profile *analyzer.Profile) *Report {
	report := &Report{Generator: def.ID}

	for _, pattern := range def.Conflicts {
		if pattern.Symbol != "" {
			for _, sym := range profile.Symbols {
				if !matches(pattern, sym) {
					continue
				}
				severity := Blocking
				if sym.Generated {
					severity = Warning
				}
				report.Entries = append(report.Entries, Entry{
					Pattern:  pattern,
					Path:     sym.Path,
					Symbol:   sym.Name,
					Severity: severity,
				})
			}
			continue
		}

		// Path-only patterns run against the file index, so a file with no
		// parseable top-level declaration still counts as occupied
		// territory.
		if pattern.Path != "" {
			for _, file := range profile.Files {
				if !matchPath(pattern.Path, file) {
					continue
				}
				severity := Blocking
				if profile.GeneratedFiles[file] {
					severity = Warning
				}
				report.Entries = append(report.Entries, Entry{
					Pattern:  pattern,
					Path:     file,
					Severity: severity,
				})
			}
		}
	}

	return report
}

func matches(pattern catalog.ConflictPattern, sym analyzer.Symbol) bool {
	if pattern.Symbol != "" {
		if ok, _ := path.Match(pattern.Symbol, sym.Name); !ok {
			return false
		}
	}
	if pattern.Path != "" {
		if !matchPath(pattern.Path, sym.Path) {
			return false
		}
	}
	return pattern.Symbol != "" || pattern.Path != ""
}

// matchPath matches a glob against either the full relative path or its
// base name, so patterns like "AuthProviding.swift" hit regardless of the
// directory the file landed in.
func matchPath(pattern, rel string) bool {
	if ok, _ := path.Match(pattern, rel); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, _ := path.Match(pattern, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}
