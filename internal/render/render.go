// Package render turns templates and a resolved config into artifact
// content.
//
// Rendering is a pure function of its inputs: the same template and config
// always produce byte-identical output. User-supplied string values are
// escaped for Swift source before they reach a template, so a malformed
// value can never unbalance the generated file's grammar.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"unicode"

	"github.com/quillgen/quill/internal/catalog"
	"github.com/quillgen/quill/internal/resolve"
)

// RenderError reports a template that cannot safely render with the given
// config.
type RenderError struct {
	Template string
	Option   string
	Err      error
}

func (e *RenderError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("cannot render %s: option %q: %v", e.Template, e.Option, e.Err)
	}
	return fmt.Sprintf("cannot render %s: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Data is the value handed to every template.
type Data struct {
	Generator string
	Version   string

	// Config holds the resolved options. String-typed values arrive
	// already escaped for Swift string-literal position; enum and bool
	// values are drawn from validated sets and pass through untouched.
	Config map[string]string
}

// Renderer parses and executes templates with a shared helper set. Parsed
// templates are cached per name; safe for concurrent use.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// NewRenderer creates a renderer with the built-in helper functions.
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// Render executes the named template over data. The name keys the parse
// cache and appears in error messages.
func (r *Renderer) Render(name string, src []byte, data Data) ([]byte, error) {
	tmpl, err := r.parse(name, src)
	if err != nil {
		return nil, &RenderError{Template: name, Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, &RenderError{Template: name, Err: err}
	}
	return buf.Bytes(), nil
}

func (r *Renderer) parse(name string, src []byte) (*template.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	tmpl, err := template.New(name).
		Funcs(r.funcMap).
		Option("missingkey=error").
		Parse(string(src))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[name] = tmpl
	r.mu.Unlock()
	return tmpl, nil
}

// BuildData assembles template data from a definition and its resolved
// config, escaping user-supplied strings.
func BuildData(def *catalog.Definition, cfg resolve.Config) (Data, error) {
	escaped := make(map[string]string, len(cfg))
	for _, opt := range def.Options {
		value := cfg[opt.Name]
		if opt.Type == catalog.OptionString {
			safe, err := EscapeSwiftString(value)
			if err != nil {
				return Data{}, &RenderError{Template: def.ID, Option: opt.Name, Err: err}
			}
			value = safe
		}
		escaped[opt.Name] = value
	}
	return Data{
		Generator: def.ID,
		Version:   def.Version,
		Config:    escaped,
	}, nil
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"pascalCase": PascalCase,
		"camelCase":  CamelCase,
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"trim":       strings.TrimSpace,
		"hasPrefix":  strings.HasPrefix,
		"hasSuffix":  strings.HasSuffix,
		"replace":    strings.ReplaceAll,
	}
}

// PascalCase converts snake_case, kebab-case or camelCase to PascalCase.
func PascalCase(s string) string {
	if s == "" {
		return ""
	}
	sep := func(r rune) bool { return r == '_' || r == '-' || r == ' ' }
	if strings.ContainsFunc(s, sep) {
		parts := strings.FieldsFunc(s, sep)
		for i, part := range parts {
			parts[i] = capitalize(part)
		}
		return strings.Join(parts, "")
	}
	return capitalize(s)
}

// CamelCase converts snake_case, kebab-case or PascalCase to camelCase.
func CamelCase(s string) string {
	p := PascalCase(s)
	if p == "" {
		return ""
	}
	return string(unicode.ToLower(rune(p[0]))) + p[1:]
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
