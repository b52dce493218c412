package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/samplekeeper/internal/client/entities"
	"github.com/dmitrijs2005/samplekeeper/internal/client/services"
)

// clearValue typed at a text prompt empties the field.
const clearValue = "-"

// fillForm prompts for every field of the open form and submits it. After
// a failed submit the user may go through the form again or discard it.
func (a *App) fillForm(ctx context.Context) error {
	for {
		form := a.console.Form()
		if form == nil {
			return nil
		}
		d, err := a.console.Registry().Get(form.Kind)
		if err != nil {
			a.console.Cancel()
			return nil
		}

		if form.IsEdit() {
			a.printf("Edit %s #%s (Enter keeps the current value, '%s' clears it)\n", d.Title, form.Editing.ID(), clearValue)
		} else {
			a.printf("New %s (Enter keeps the default, '%s' clears it)\n", d.Title, clearValue)
		}

		for _, f := range d.Fields {
			v, err := a.promptField(f, form.Values[f.Key])
			if err != nil {
				a.console.Cancel()
				return err
			}
			if err := a.console.SetField(f.Key, v); err != nil {
				a.console.Cancel()
				return err
			}
		}

		_, err = a.console.Submit(ctx)
		if err == nil {
			return nil
		}

		if errors.Is(err, services.ErrSessionExpired) {
			a.console.Cancel()
			a.checkSession(err)
			return nil
		}

		if !Confirm(a.reader, "Edit the form again?", a.out) {
			a.console.Cancel()
			a.println("Discarded.")
			return nil
		}
	}
}

// promptField asks for one value. An empty answer keeps current.
func (a *App) promptField(f entities.Field, current any) (any, error) {
	prompt := f.Label
	if f.Required {
		prompt += "*"
	}

	switch f.Type {
	case entities.Checkbox:
		answer, err := getSimpleText(a.reader, prompt+" [y/n] ("+a.fieldText(f, current)+")", a.out)
		if err != nil || answer == "" {
			return current, err
		}
		return entities.Truthy(strings.ToLower(answer)), nil

	case entities.Select:
		opts := a.console.SelectOptions(f.Options)
		if len(opts) == 0 {
			a.printf("  (no %s to choose from)\n", f.Options)
		}
		for _, o := range opts {
			a.printf("  %-6s %s\n", o.Value, o.Label)
		}
		return a.promptText(prompt+" id", current)

	case entities.Textarea:
		if cur := valueText(current); cur != "" {
			a.printf("  current: %s\n", cur)
		}
		text, err := GetMultiline(a.reader, prompt, a.out)
		if err != nil || text == "" {
			return current, err
		}
		if text == clearValue {
			return "", nil
		}
		return text, nil
	}

	switch f.Type {
	case entities.Date:
		prompt += " (YYYY-MM-DD)"
	case entities.Number:
		if f.Step != "" {
			prompt += " (step " + f.Step + ")"
		}
	}
	return a.promptText(prompt, current)
}

func (a *App) promptText(prompt string, current any) (any, error) {
	if cur := valueText(current); cur != "" {
		prompt += " [" + cur + "]"
	}
	answer, err := getSimpleText(a.reader, prompt, a.out)
	switch {
	case err != nil:
		return current, err
	case answer == "":
		return current, nil
	case answer == clearValue:
		return "", nil
	}
	return answer, nil
}
