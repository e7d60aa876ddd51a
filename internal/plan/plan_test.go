package plan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillgen/quill/internal/analyzer"
	"github.com/quillgen/quill/internal/catalog"
	"github.com/quillgen/quill/internal/conflict"
	"github.com/quillgen/quill/internal/resolve"
)

func authDef(t *testing.T) (*catalog.Store, *catalog.Definition) {
	t.Helper()
	store, err := catalog.Embedded()
	require.NoError(t, err)
	cat, err := catalog.Load(store)
	require.NoError(t, err)
	def, err := cat.Lookup("auth")
	require.NoError(t, err)
	return store, def
}

func emptyProfile() *analyzer.Profile {
	return &analyzer.Profile{Architecture: analyzer.Signal{Value: analyzer.Ambiguous}}
}

func noopConfig() resolve.Config {
	return resolve.Config{
		"provider":      "noop",
		"service_name":  "app.session",
		"include_tests": "false",
	}
}

// Clean project: the plan holds exactly the provider abstraction plus the
// no-op implementation.
func TestBuild_CleanProject(t *testing.T) {
	store, def := authDef(t)
	report := conflict.Detect(def, emptyProfile())

	p, err := New(store).Build(def, emptyProfile(), noopConfig(), report, ResolutionNone)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Sources/Providers/AuthProviding.swift",
		"Sources/Providers/NoopAuthProvider.swift",
	}, p.Paths())

	for _, artifact := range p.Artifacts {
		assert.False(t, artifact.Existing)
		assert.True(t, strings.HasPrefix(string(artifact.Content), "// quill:generated auth@"))
	}
	assert.NotEmpty(t, p.RunID)
	assert.NotEmpty(t, p.Instructions)
}

func TestBuild_ConditionalTemplates(t *testing.T) {
	store, def := authDef(t)
	cfg := noopConfig()
	cfg["include_tests"] = "true"
	report := conflict.Detect(def, emptyProfile())

	p, err := New(store).Build(def, emptyProfile(), cfg, report, ResolutionNone)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Sources/Providers/AuthProviding.swift",
		"Sources/Providers/NoopAuthProvider.swift",
		"Tests/AuthProvidingTests.swift",
	}, p.Paths())
}

func TestBuild_ProviderSwitchChangesFiles(t *testing.T) {
	store, def := authDef(t)
	cfg := noopConfig()
	cfg["provider"] = "keychain"
	report := conflict.Detect(def, emptyProfile())

	p, err := New(store).Build(def, emptyProfile(), cfg, report, ResolutionNone)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Sources/Providers/AuthProviding.swift",
		"Sources/Providers/KeychainAuthProvider.swift",
	}, p.Paths())

	// The composition point names the selected provider.
	assert.Contains(t, string(p.Artifacts[0].Content), "KeychainAuthProvider()")
	// The configured service name lands in the provider.
	assert.Contains(t, string(p.Artifacts[1].Content), `"app.session"`)
}

func TestBuild_BlockingConflictWithoutResolution(t *testing.T) {
	store, def := authDef(t)
	profile := &analyzer.Profile{
		Symbols: []analyzer.Symbol{
			{Name: "AuthProviding", Kind: "protocol", Path: "Auth/AuthProviding.swift"},
		},
	}
	report := conflict.Detect(def, profile)
	require.True(t, report.HasBlocking())

	_, err := New(store).Build(def, profile, noopConfig(), report, ResolutionNone)

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, report, conflictErr.Report)
}

func TestBuild_ReplaceMarksConflictingArtifactsAsModifications(t *testing.T) {
	store, def := authDef(t)
	profile := profileWithFile(t, "Sources/Providers/AuthProviding.swift", "AuthProviding")
	report := conflict.Detect(def, profile)

	p, err := New(store).Build(def, profile, noopConfig(), report, ResolutionReplace)
	require.NoError(t, err)

	byPath := make(map[string]Artifact)
	for _, a := range p.Artifacts {
		byPath[a.Path] = a
	}
	assert.True(t, byPath["Sources/Providers/AuthProviding.swift"].Existing)
	assert.False(t, byPath["Sources/Providers/NoopAuthProvider.swift"].Existing)
}

func TestBuild_ExtendDropsConflictingArtifacts(t *testing.T) {
	store, def := authDef(t)
	profile := profileWithFile(t, "Sources/Providers/AuthProviding.swift", "AuthProviding")
	report := conflict.Detect(def, profile)

	p, err := New(store).Build(def, profile, noopConfig(), report, ResolutionExtend)
	require.NoError(t, err)

	assert.Equal(t, []string{"Sources/Providers/NoopAuthProvider.swift"}, p.Paths())
}

func TestBuild_UngrantableCapabilityRejected(t *testing.T) {
	store, def := authDef(t)
	bad := *def
	bad.Capabilities = []string{"filesystem-write", "root-shell"}
	report := conflict.Detect(&bad, emptyProfile())

	_, err := New(store).Build(&bad, emptyProfile(), noopConfig(), report, ResolutionNone)
	require.ErrorContains(t, err, "root-shell")
}

func TestBuild_AdvisoryCapabilitySurfacesInInstructions(t *testing.T) {
	store, err := catalog.Embedded()
	require.NoError(t, err)
	cat, err := catalog.Load(store)
	require.NoError(t, err)
	def, err := cat.Lookup("networking")
	require.NoError(t, err)

	cfg := resolve.Config{"base_url": "https://api.example.com", "provider": "urlsession"}
	report := conflict.Detect(def, emptyProfile())

	p, err := New(store).Build(def, emptyProfile(), cfg, report, ResolutionNone)
	require.NoError(t, err)
	assert.Contains(t, p.Instructions, "network-entitlement")
}

func TestBuild_AmbiguousArchitectureNoted(t *testing.T) {
	store, def := authDef(t)
	report := conflict.Detect(def, emptyProfile())

	p, err := New(store).Build(def, emptyProfile(), noopConfig(), report, ResolutionNone)
	require.NoError(t, err)
	assert.Contains(t, p.Instructions, "could not be determined")
}

func TestGuardHolds(t *testing.T) {
	cfg := resolve.Config{"provider": "noop", "include_tests": "true"}

	assert.True(t, guardHolds("", cfg))
	assert.True(t, guardHolds("provider=noop", cfg))
	assert.False(t, guardHolds("provider=keychain", cfg))
	assert.True(t, guardHolds("include_tests", cfg))
	assert.False(t, guardHolds("missing", cfg))
}

// profileWithFile analyzes a real temp tree holding one hand-written file,
// so the profile's file index and symbol index both see it.
func profileWithFile(t *testing.T, rel, symbol string) *analyzer.Profile {
	t.Helper()
	root := t.TempDir()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
	require.NoError(t, os.WriteFile(abs, []byte("protocol "+symbol+" {}\n"), 0644))

	profile, err := analyzer.New(1).Analyze(context.Background(), root)
	require.NoError(t, err)
	require.True(t, profile.HasFile(rel))
	return profile
}
