// Package catalog loads the file-based template store and exposes the
// registry of generator definitions.
//
// A store is a directory (or embedded filesystem) shaped like:
//
//	store.yml                          schema version marker
//	generators/<id>/manifest.yml       definition metadata
//	generators/<id>/templates/*.tmpl   parameterized source fragments
//	generators/<id>/NOTES.md           integration instructions (optional)
//
// The store format is versioned independently of the engine; Open rejects
// stores written for a newer schema.
package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the store format this engine reads.
const SchemaVersion = 1

// NotFoundError reports a lookup for a generator id the store does not have.
type NotFoundError struct {
	ID        string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown generator %q (available: %v)", e.ID, e.Available)
}

// Store is an open template store. Read-only.
type Store struct {
	fsys    fs.FS
	Version int
}

// OpenFS opens a store rooted at fsys and verifies its schema version.
func OpenFS(fsys fs.FS) (*Store, error) {
	data, err := fs.ReadFile(fsys, "store.yml")
	if err != nil {
		return nil, fmt.Errorf("reading store.yml: %w", err)
	}

	var meta struct {
		SchemaVersion int `yaml:"schema_version"`
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing store.yml: %w", err)
	}
	if meta.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("store schema version %d is newer than this engine supports (%d)", meta.SchemaVersion, SchemaVersion)
	}
	if meta.SchemaVersion < 1 {
		return nil, fmt.Errorf("store.yml is missing a schema_version field")
	}

	return &Store{fsys: fsys, Version: meta.SchemaVersion}, nil
}

// ReadTemplate returns the raw bytes of a template within a definition's
// directory.
func (s *Store) ReadTemplate(def *Definition, ref TemplateRef) ([]byte, error) {
	data, err := fs.ReadFile(s.fsys, path.Join(def.dir, ref.Source))
	if err != nil {
		return nil, fmt.Errorf("reading template %s of generator %q: %w", ref.Source, def.ID, err)
	}
	return data, nil
}

// Catalog is the registry of generator definitions, loaded once per run.
type Catalog struct {
	store *Store
	defs  map[string]*Definition
	ids   []string
}

// Load reads every generator manifest in the store.
func Load(store *Store) (*Catalog, error) {
	manifests, err := fs.Glob(store.fsys, "generators/*/manifest.yml")
	if err != nil {
		return nil, fmt.Errorf("scanning store: %w", err)
	}

	c := &Catalog{
		store: store,
		defs:  make(map[string]*Definition, len(manifests)),
	}

	for _, manifest := range manifests {
		def, err := loadDefinition(store.fsys, manifest)
		if err != nil {
			return nil, err
		}
		if _, dup := c.defs[def.ID]; dup {
			return nil, fmt.Errorf("duplicate generator id %q", def.ID)
		}
		c.defs[def.ID] = def
		c.ids = append(c.ids, def.ID)
	}

	sort.Strings(c.ids)
	return c, nil
}

func loadDefinition(fsys fs.FS, manifest string) (*Definition, error) {
	data, err := fs.ReadFile(fsys, manifest)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", manifest, err)
	}

	var raw struct {
		SchemaVersion int    `yaml:"schema_version"`
		Notes         string `yaml:"notes"`
		Definition    `yaml:",inline"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", manifest, err)
	}
	if raw.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%s requires store schema %d, engine supports %d", manifest, raw.SchemaVersion, SchemaVersion)
	}

	def := raw.Definition
	def.dir = path.Dir(manifest)
	if err := def.validate(); err != nil {
		return nil, err
	}

	if raw.Notes != "" {
		notes, err := fs.ReadFile(fsys, path.Join(def.dir, raw.Notes))
		if err != nil {
			return nil, fmt.Errorf("reading notes for generator %q: %w", def.ID, err)
		}
		def.Notes = string(notes)
	}

	return &def, nil
}

// Lookup returns the definition registered under id.
func (c *Catalog) Lookup(id string) (*Definition, error) {
	def, ok := c.defs[id]
	if !ok {
		return nil, &NotFoundError{ID: id, Available: c.ids}
	}
	return def, nil
}

// Definitions returns every definition in id order.
func (c *Catalog) Definitions() []*Definition {
	defs := make([]*Definition, 0, len(c.ids))
	for _, id := range c.ids {
		defs = append(defs, c.defs[id])
	}
	return defs
}

// Store returns the store this catalog was loaded from.
func (c *Catalog) Store() *Store {
	return c.store
}
