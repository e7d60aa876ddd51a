package analyzer

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// Presence rules are evaluated in declared order; the first match wins.
// This keeps signal merging deterministic no matter how the tree was walked.

type presenceRule struct {
	glob       string
	value      string
	confidence float64
}

var platformRules = []presenceRule{
	{"*.xcodeproj", "ios-app", 0.9},
	{"*.xcworkspace", "ios-app", 0.85},
	{"project.pbxproj", "ios-app", 0.9},
	{"Package.swift", "swift-package", 0.8},
	{"*.playground", "playground", 0.6},
}

var dependencyManagerRules = []presenceRule{
	{"Podfile", "cocoapods", 0.9},
	{"Podfile.lock", "cocoapods", 0.9},
	{"Cartfile", "carthage", 0.85},
	{"Package.resolved", "spm", 0.9},
	{"Package.swift", "spm", 0.8},
}

func detectPlatform(t *tree) Signal {
	return firstMatch(t, platformRules, Signal{Value: "unknown", Confidence: 0})
}

func detectDependencyManager(t *tree) Signal {
	return firstMatch(t, dependencyManagerRules, Signal{Value: "none", Confidence: 0.5})
}

func firstMatch(t *tree, rules []presenceRule, fallback Signal) Signal {
	for _, rule := range rules {
		if t.hasGlob(rule.glob) {
			return Signal{Value: rule.value, Confidence: rule.confidence}
		}
	}
	return fallback
}

var (
	toolsVersionRe = regexp.MustCompile(`//\s*swift-tools-version\s*:\s*([0-9]+(?:\.[0-9]+)*)`)
	deployTargetRe = regexp.MustCompile(`IPHONEOS_DEPLOYMENT_TARGET\s*=\s*([0-9.]+)`)
)

// detectPlatformVersion reads the two version markers the tree can carry:
// the swift-tools-version comment in Package.swift and the deployment
// target in project.pbxproj. Package.swift wins when both exist.
func detectPlatformVersion(root string, t *tree) Signal {
	if rel, ok := t.find("Package.swift"); ok {
		if data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
			if m := toolsVersionRe.FindSubmatch(data); m != nil {
				return Signal{Value: "swift-tools " + string(m[1]), Confidence: 0.95}
			}
		}
	}
	if rel, ok := t.find("project.pbxproj"); ok {
		if data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
			if m := deployTargetRe.FindSubmatch(data); m != nil {
				return Signal{Value: "ios " + string(m[1]), Confidence: 0.9}
			}
		}
	}
	return Signal{Value: "unknown", Confidence: 0}
}

// Architecture classification. Each convention accumulates evidence counts
// from file names and content signatures; the winner must clear both an
// absolute floor and a margin over the runner-up, otherwise the field is
// recorded as Ambiguous.

const (
	ArchMVVM  = "mvvm"
	ArchTCA   = "tca"
	ArchMVC   = "mvc"
	ArchVIPER = "viper"
)

// ambiguityFloor and ambiguityMargin implement the documented rule: the
// best convention needs a score of at least 0.5, and a lead of at least
// 0.15 over the second best.
const (
	ambiguityFloor  = 0.5
	ambiguityMargin = 0.15
)

type architectureEvidence map[string]int

func (e architectureEvidence) add(other architectureEvidence) {
	for arch, n := range other {
		e[arch] += n
	}
}

func (e architectureEvidence) classify() Signal {
	total := 0
	for _, n := range e {
		total += n
	}
	if total == 0 {
		return Signal{Value: Ambiguous, Confidence: 0}
	}

	archs := make([]string, 0, len(e))
	for arch := range e {
		archs = append(archs, arch)
	}
	// Sort by count descending, name ascending, so ties are stable.
	sort.Slice(archs, func(i, j int) bool {
		if e[archs[i]] != e[archs[j]] {
			return e[archs[i]] > e[archs[j]]
		}
		return archs[i] < archs[j]
	})

	best := float64(e[archs[0]]) / float64(total)
	second := 0.0
	if len(archs) > 1 {
		second = float64(e[archs[1]]) / float64(total)
	}

	if best < ambiguityFloor || best-second < ambiguityMargin {
		return Signal{Value: Ambiguous, Confidence: best}
	}
	return Signal{Value: archs[0], Confidence: best}
}
