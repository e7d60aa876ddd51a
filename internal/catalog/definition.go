package catalog

import (
	"fmt"
)

// OptionType enumerates the value kinds a config option can take.
type OptionType string

const (
	OptionEnum   OptionType = "enum"
	OptionBool   OptionType = "bool"
	OptionString OptionType = "string"
)

// Option describes one entry in a generator's config schema. Options are
// resolved in declaration order.
type Option struct {
	Name    string     `yaml:"name"`
	Type    OptionType `yaml:"type"`
	Prompt  string     `yaml:"prompt"`
	Allowed []string   `yaml:"allowed"`
	Default string     `yaml:"default"`
}

// TemplateRef points at one parameterized source fragment within a
// generator's directory.
//
// When is an optional guard of the form "option" (bool option must be true)
// or "option=value"; a template whose guard does not hold is skipped.
type TemplateRef struct {
	Name     string `yaml:"name"`
	Source   string `yaml:"source"`
	Category string `yaml:"category"`
	File     string `yaml:"file"`
	When     string `yaml:"when"`
}

// ConflictPattern marks symbol or file territory a generator considers its
// own. Either field may be empty; set fields are glob patterns.
type ConflictPattern struct {
	Symbol string `yaml:"symbol"`
	Path   string `yaml:"path"`
}

// Definition is one named, versioned unit of generation work. Loaded from
// the store at startup and read-only for the rest of the run.
type Definition struct {
	ID           string            `yaml:"id"`
	Version      string            `yaml:"version"`
	Description  string            `yaml:"description"`
	Capabilities []string          `yaml:"capabilities"`
	Options      []Option          `yaml:"options"`
	Templates    []TemplateRef     `yaml:"templates"`
	Conflicts    []ConflictPattern `yaml:"conflicts"`

	// Notes holds the generator's integration instructions (markdown),
	// loaded from the file named by the manifest's notes field.
	Notes string `yaml:"-"`

	dir string // directory within the store, e.g. "generators/auth"
}

// validate checks structural invariants the resolver and planner rely on.
func (d *Definition) validate() error {
	if d.ID == "" {
		return fmt.Errorf("manifest in %s is missing an id", d.dir)
	}
	if d.Version == "" {
		return fmt.Errorf("generator %q is missing a version", d.ID)
	}
	seen := make(map[string]bool, len(d.Options))
	for _, opt := range d.Options {
		if opt.Name == "" {
			return fmt.Errorf("generator %q has an unnamed option", d.ID)
		}
		if seen[opt.Name] {
			return fmt.Errorf("generator %q declares option %q twice", d.ID, opt.Name)
		}
		seen[opt.Name] = true

		switch opt.Type {
		case OptionEnum:
			if len(opt.Allowed) == 0 {
				return fmt.Errorf("generator %q: enum option %q has no allowed values", d.ID, opt.Name)
			}
			if opt.Default != "" && !contains(opt.Allowed, opt.Default) {
				return fmt.Errorf("generator %q: default %q for option %q is not in its allowed set", d.ID, opt.Default, opt.Name)
			}
		case OptionBool:
			if opt.Default != "" && opt.Default != "true" && opt.Default != "false" {
				return fmt.Errorf("generator %q: bool option %q has non-bool default %q", d.ID, opt.Name, opt.Default)
			}
		case OptionString:
			// Free-form; nothing to check here.
		default:
			return fmt.Errorf("generator %q: option %q has unknown type %q", d.ID, opt.Name, opt.Type)
		}
	}
	if len(d.Templates) == 0 {
		return fmt.Errorf("generator %q declares no templates", d.ID)
	}
	for _, ref := range d.Templates {
		if ref.Source == "" || ref.File == "" {
			return fmt.Errorf("generator %q: template %q needs both source and file", d.ID, ref.Name)
		}
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, val := range values {
		if val == v {
			return true
		}
	}
	return false
}
