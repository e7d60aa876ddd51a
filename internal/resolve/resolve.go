// Package resolve turns a generator's config schema into a fully validated
// generation config.
//
// Resolution walks options in declared order. A valid pre-filled value is
// accepted as-is; anything else suspends the pipeline through the Prompter,
// the single interactive point in a run. The first invalid value aborts the
// whole resolution; no filesystem state exists yet at this stage.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quillgen/quill/internal/catalog"
)

// ErrCancelled is returned when the user abandons resolution. The run ends
// with zero filesystem effects.
var ErrCancelled = errors.New("configuration cancelled")

// ValidationError reports a value that failed an option's type or allowed
// set. It carries enough detail to act on without re-running verbosely.
type ValidationError struct {
	Option  string
	Value   string
	Allowed []string
	Reason  string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid value %q for option %q: %s", e.Value, e.Option, e.Reason)
	if len(e.Allowed) > 0 {
		msg += fmt.Sprintf(" (allowed: %s)", strings.Join(e.Allowed, ", "))
	}
	return msg
}

// Prompter obtains a value for one unresolved option. Implementations
// return ErrCancelled (possibly wrapped) on user abort.
type Prompter interface {
	Ask(ctx context.Context, opt catalog.Option) (string, error)
}

// Config is a fully resolved option map. Produced exactly once per run and
// consumed read-only afterward.
type Config map[string]string

// Bool reads a bool option. Unset or malformed values read as false;
// Resolve guarantees neither occurs for declared bool options.
func (c Config) Bool(name string) bool {
	return c[name] == "true"
}

// Resolve produces a Config for schema, preferring prefilled values and
// suspending on the prompter for the rest.
func Resolve(ctx context.Context, schema []catalog.Option, prefilled map[string]string, prompter Prompter) (Config, error) {
	cfg := make(Config, len(schema))

	for _, opt := range schema {
		if v, ok := prefilled[opt.Name]; ok {
			if err := Validate(opt, v); err != nil {
				return nil, err
			}
			cfg[opt.Name] = v
			continue
		}

		v, err := ask(ctx, opt, prompter)
		if err != nil {
			return nil, err
		}
		if err := Validate(opt, v); err != nil {
			return nil, err
		}
		cfg[opt.Name] = v
	}

	// Reject prefilled keys the schema does not declare; a typo here would
	// otherwise silently do nothing.
	for name := range prefilled {
		if !declared(schema, name) {
			return nil, &ValidationError{
				Option: name,
				Value:  prefilled[name],
				Reason: "option is not declared by this generator",
			}
		}
	}

	return cfg, nil
}

func ask(ctx context.Context, opt catalog.Option, prompter Prompter) (string, error) {
	if prompter == nil {
		if opt.Default != "" {
			return opt.Default, nil
		}
		return "", &ValidationError{
			Option: opt.Name,
			Reason: "no value supplied and no default declared",
		}
	}

	v, err := prompter.Ask(ctx, opt)
	if err != nil {
		return "", err
	}
	if v == "" {
		v = opt.Default
	}
	return v, nil
}

// Validate checks a single value against an option's type and allowed set.
func Validate(opt catalog.Option, value string) error {
	switch opt.Type {
	case catalog.OptionBool:
		if value != "true" && value != "false" {
			return &ValidationError{
				Option:  opt.Name,
				Value:   value,
				Allowed: []string{"true", "false"},
				Reason:  "expected a bool",
			}
		}
	case catalog.OptionEnum:
		for _, allowed := range opt.Allowed {
			if value == allowed {
				return nil
			}
		}
		return &ValidationError{
			Option:  opt.Name,
			Value:   value,
			Allowed: opt.Allowed,
			Reason:  "not in the allowed set",
		}
	case catalog.OptionString:
		if value == "" {
			return &ValidationError{
				Option: opt.Name,
				Reason: "value must not be empty",
			}
		}
	default:
		return &ValidationError{
			Option: opt.Name,
			Value:  value,
			Reason: fmt.Sprintf("unknown option type %q", opt.Type),
		}
	}
	return nil
}

func declared(schema []catalog.Option, name string) bool {
	for _, opt := range schema {
		if opt.Name == name {
			return true
		}
	}
	return false
}
