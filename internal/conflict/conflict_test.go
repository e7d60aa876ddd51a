package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillgen/quill/internal/analyzer"
	"github.com/quillgen/quill/internal/catalog"
)

func loadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	store, err := catalog.Embedded()
	require.NoError(t, err)
	cat, err := catalog.Load(store)
	require.NoError(t, err)
	return cat
}

func profileWith(symbols ...analyzer.Symbol) *analyzer.Profile {
	return &analyzer.Profile{Symbols: symbols}
}

// An empty symbol index must never yield conflict entries, for any
// generator in the store.
func TestDetect_EmptyIndexNeverConflicts(t *testing.T) {
	cat := loadCatalog(t)
	profile := profileWith()

	for _, def := range cat.Definitions() {
		report := Detect(def, profile)
		assert.Empty(t, report.Entries, "generator %s", def.ID)
		assert.False(t, report.HasBlocking())
	}
}

func TestDetect_ForeignSymbolIsBlocking(t *testing.T) {
	cat := loadCatalog(t)
	def, err := cat.Lookup("auth")
	require.NoError(t, err)

	profile := profileWith(analyzer.Symbol{
		Name: "AuthProviding",
		Kind: "protocol",
		Path: "Sources/Auth/AuthProviding.swift",
	})

	report := Detect(def, profile)
	require.True(t, report.HasBlocking())
	assert.Equal(t, Blocking, report.Entries[0].Severity)
	assert.Equal(t, "AuthProviding", report.Entries[0].Symbol)
}

func TestDetect_GeneratedSymbolIsWarning(t *testing.T) {
	cat := loadCatalog(t)
	def, err := cat.Lookup("auth")
	require.NoError(t, err)

	profile := profileWith(analyzer.Symbol{
		Name:      "AuthProviding",
		Kind:      "protocol",
		Path:      "Sources/Providers/AuthProviding.swift",
		Generated: true,
	})

	report := Detect(def, profile)
	assert.False(t, report.HasBlocking())
	require.NotEmpty(t, report.Entries)
	for _, entry := range report.Entries {
		assert.Equal(t, Warning, entry.Severity)
	}
}

func TestDetect_WildcardSymbolPattern(t *testing.T) {
	cat := loadCatalog(t)
	def, err := cat.Lookup("auth")
	require.NoError(t, err)

	// Matches the "*AuthProvider" territory pattern despite a custom name.
	profile := profileWith(analyzer.Symbol{
		Name: "FirebaseAuthProvider",
		Kind: "class",
		Path: "Sources/Auth/FirebaseAuthProvider.swift",
	})

	report := Detect(def, profile)
	assert.True(t, report.HasBlocking())
}

func TestDetect_UnrelatedSymbolsIgnored(t *testing.T) {
	cat := loadCatalog(t)
	def, err := cat.Lookup("auth")
	require.NoError(t, err)

	profile := profileWith(
		analyzer.Symbol{Name: "User", Kind: "struct", Path: "Sources/Models/User.swift"},
		analyzer.Symbol{Name: "HomeViewModel", Kind: "class", Path: "Sources/ViewModels/HomeViewModel.swift"},
	)

	report := Detect(def, profile)
	assert.Empty(t, report.Entries)
}

// A foreign file occupying a territory path must block even when it holds
// no top-level declaration the symbol index can see.
func TestDetect_SymbollessForeignFileIsBlocking(t *testing.T) {
	cat := loadCatalog(t)
	def, err := cat.Lookup("auth")
	require.NoError(t, err)

	profile := &analyzer.Profile{
		Files: []string{"Sources/Providers/AuthProviding.swift"},
	}

	report := Detect(def, profile)
	require.True(t, report.HasBlocking())
	assert.Equal(t, "Sources/Providers/AuthProviding.swift", report.Entries[0].Path)
	assert.Empty(t, report.Entries[0].Symbol)
}

func TestDetect_SymbollessGeneratedFileIsWarning(t *testing.T) {
	cat := loadCatalog(t)
	def, err := cat.Lookup("auth")
	require.NoError(t, err)

	profile := &analyzer.Profile{
		Files:          []string{"Sources/Providers/AuthProviding.swift"},
		GeneratedFiles: map[string]bool{"Sources/Providers/AuthProviding.swift": true},
	}

	report := Detect(def, profile)
	assert.False(t, report.HasBlocking())
	require.NotEmpty(t, report.Entries)
	assert.Equal(t, Warning, report.Entries[0].Severity)
}

func TestDetect_PathPatternIgnoresUnrelatedFiles(t *testing.T) {
	cat := loadCatalog(t)
	def, err := cat.Lookup("auth")
	require.NoError(t, err)

	profile := &analyzer.Profile{
		Files: []string{"Sources/Models/User.swift", "README.md"},
	}

	report := Detect(def, profile)
	assert.Empty(t, report.Entries)
}

func TestMatchPath_BaseNameFallback(t *testing.T) {
	assert.True(t, matchPath("AuthProviding.swift", "Sources/Deep/Nested/AuthProviding.swift"))
	assert.False(t, matchPath("AuthProviding.swift", "Sources/Other.swift"))
	assert.True(t, matchPath("Sources/*.swift", "Sources/Other.swift"))
	assert.False(t, matchPath("Sources/*.swift", "Elsewhere/Other.swift"))
}

func TestReport_Paths(t *testing.T) {
	report := &Report{Entries: []Entry{
		{Path: "a.swift", Severity: Blocking},
		{Path: "a.swift", Severity: Warning},
		{Path: "b.swift", Severity: Warning},
	}}

	assert.Equal(t, []string{"a.swift", "b.swift"}, report.Paths())
	assert.Len(t, report.Blocking(), 1)
}
