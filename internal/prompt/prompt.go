// Package prompt implements the resolver's interactive collaborator on top
// of huh forms.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/quillgen/quill/internal/catalog"
	"github.com/quillgen/quill/internal/resolve"
)

// Interactive asks for option values through terminal forms, one form per
// option so resolution stays a strict sequential walk.
type Interactive struct{}

var _ resolve.Prompter = (*Interactive)(nil)

// Ask renders a form for a single option and blocks until the user answers
// or aborts.
func (p *Interactive) Ask(ctx context.Context, opt catalog.Option) (string, error) {
	title := opt.Prompt
	if title == "" {
		title = opt.Name
	}

	var value string
	var field huh.Field

	switch opt.Type {
	case catalog.OptionEnum:
		options := make([]huh.Option[string], 0, len(opt.Allowed))
		for _, allowed := range opt.Allowed {
			options = append(options, huh.NewOption(allowed, allowed))
		}
		value = opt.Default
		field = huh.NewSelect[string]().
			Title(title).
			Options(options...).
			Value(&value)

	case catalog.OptionBool:
		confirmed := opt.Default == "true"
		confirm := huh.NewConfirm().
			Title(title).
			Value(&confirmed)
		if err := run(ctx, confirm); err != nil {
			return "", err
		}
		if confirmed {
			return "true", nil
		}
		return "false", nil

	default:
		value = opt.Default
		field = huh.NewInput().
			Title(title).
			Placeholder(opt.Default).
			Value(&value)
	}

	if err := run(ctx, field); err != nil {
		return "", err
	}
	return value, nil
}

func run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field))
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return resolve.ErrCancelled
		}
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// Static answers from a fixed map. Used in tests and in non-interactive
// runs, where a missing answer is an error rather than a hang.
type Static struct {
	Values map[string]string
}

var _ resolve.Prompter = (*Static)(nil)

// Ask returns the preset value for the option, falling back to its default.
func (p *Static) Ask(ctx context.Context, opt catalog.Option) (string, error) {
	if v, ok := p.Values[opt.Name]; ok {
		return v, nil
	}
	if opt.Default != "" {
		return opt.Default, nil
	}
	return "", fmt.Errorf("no value for option %q in non-interactive mode", opt.Name)
}
