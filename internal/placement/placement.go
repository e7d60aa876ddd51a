// Package placement decides where rendered artifacts land in the target
// tree.
//
// Priority order, first match wins: a convention directory the project
// already uses for the artifact's category, then the documented default
// directory for that category, then the project root. When two existing
// directories both match a category, the one holding more source files of
// that category wins; remaining ties break lexicographically, so placement
// is fully deterministic.
package placement

import (
	"path"
	"strings"

	"github.com/quillgen/quill/internal/analyzer"
)

// categoryAliases lists directory base names that count as an existing
// convention for each category.
var categoryAliases = map[string][]string{
	"providers":  {"Providers", "Provider"},
	"services":   {"Services", "Service"},
	"models":     {"Models", "Model", "Entities"},
	"views":      {"Views", "View", "Screens"},
	"viewmodels": {"ViewModels", "ViewModel"},
	"support":    {"Support", "Helpers", "Utilities"},
	"tests":      {"Tests"},
}

// categoryDefaults is the documented conventional directory per category,
// used when the project shows no existing convention.
var categoryDefaults = map[string]string{
	"providers":  "Sources/Providers",
	"services":   "Sources/Services",
	"models":     "Sources/Models",
	"views":      "Sources/Views",
	"viewmodels": "Sources/ViewModels",
	"support":    "Sources/Support",
	"tests":      "Tests",
}

// Resolver maps artifact categories onto a profile's directory layout.
type Resolver struct {
	profile *analyzer.Profile
}

// New creates a resolver over an analyzed profile.
func New(profile *analyzer.Profile) *Resolver {
	return &Resolver{profile: profile}
}

// Resolve returns the relative target path for a file of the given
// category.
func (r *Resolver) Resolve(category, filename string) string {
	if dir, ok := r.conventionDir(category); ok {
		return path.Join(dir, filename)
	}
	if dir, ok := categoryDefaults[category]; ok {
		return path.Join(dir, filename)
	}
	return filename
}

// conventionDir finds an existing project directory matching the category.
func (r *Resolver) conventionDir(category string) (string, bool) {
	aliases := categoryAliases[category]
	if len(aliases) == 0 {
		return "", false
	}

	best := ""
	bestCount := -1
	for dir, count := range r.profile.DirFiles {
		if !matchesAlias(dir, aliases) {
			continue
		}
		// More files of the category wins; lexicographic order settles
		// exact ties.
		if count > bestCount || (count == bestCount && dir < best) {
			best = dir
			bestCount = count
		}
	}

	if bestCount < 0 {
		return "", false
	}
	return best, true
}

func matchesAlias(dir string, aliases []string) bool {
	base := path.Base(dir)
	for _, alias := range aliases {
		if strings.EqualFold(base, alias) {
			return true
		}
	}
	return false
}
