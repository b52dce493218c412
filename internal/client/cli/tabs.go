package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/samplekeeper/internal/client/entities"
	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/client/services"
)

const msgSessionExpired = "Your session has expired. Please log in again."

// loadAll refreshes every collection and lists the kinds that failed.
func (a *App) loadAll(ctx context.Context) {
	failed := a.console.LoadAll(ctx)
	if len(failed) == 0 {
		return
	}

	kinds := make([]string, 0, len(failed))
	for k := range failed {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	for _, k := range kinds {
		if errors.Is(failed[k], services.ErrSessionExpired) {
			a.println(msgSessionExpired)
			return
		}
	}
	for _, k := range kinds {
		a.printf("Could not load %s: %v\n", k, failed[k])
	}
}

// checkSession prints the expiry hint when err ended the session.
func (a *App) checkSession(err error) {
	if errors.Is(err, services.ErrSessionExpired) {
		a.println(msgSessionExpired)
	}
}

func (a *App) active() *entities.Descriptor {
	d, _ := a.console.Registry().Get(a.console.Active())
	return d
}

// Tabs lists every kind with its record count; the active one is starred.
func (a *App) Tabs(_ context.Context, _ []string) error {
	active := a.console.Active()
	for _, d := range a.console.Registry().Descriptors() {
		mark := " "
		if d.Kind == active {
			mark = "*"
		}
		a.printf("%s %-14s %-14s %d\n", mark, d.Kind, d.Title, a.console.Count(d.Kind))
	}
	return nil
}

// Tab switches the active kind and lists it.
func (a *App) Tab(ctx context.Context, args []string) error {
	kind := arg(args, 0)
	if kind == "" {
		a.printf("Usage: tab <kind> (one of %s)\n", strings.Join(a.console.Registry().Kinds(), ", "))
		return nil
	}
	if err := a.console.SetActive(kind); err != nil {
		a.printf("Unknown kind %q. Choose one of %s.\n", kind, strings.Join(a.console.Registry().Kinds(), ", "))
		return nil
	}
	return a.List(ctx, nil)
}

// List prints the active kind filtered by the current search term.
func (a *App) List(_ context.Context, _ []string) error {
	d := a.active()
	items := a.console.Visible()

	header := fmt.Sprintf("%s (%d)", d.Title, len(items))
	if term := a.console.SearchTerm(); strings.TrimSpace(term) != "" {
		header += fmt.Sprintf(" matching %q", term)
	}
	a.println(header)

	if len(items) == 0 {
		a.println("  No items found.")
		return nil
	}
	for _, r := range items {
		a.printCard(d, r)
	}
	return nil
}

// Search stores the term for the active kind and lists the matches. No
// term clears the filter.
func (a *App) Search(ctx context.Context, args []string) error {
	a.console.SetSearch(strings.Join(args, " "))
	return a.List(ctx, nil)
}

// Show prints every declared field of one record.
func (a *App) Show(_ context.Context, args []string) error {
	d := a.active()
	r, ok := a.record(d, args)
	if !ok {
		return nil
	}

	a.printCard(d, r)
	for _, f := range d.Fields {
		a.printf("  %-22s %s\n", f.Label+":", a.fieldText(f, r[f.Key]))
	}
	return nil
}

// Options lists the choices offered for select fields referencing kind.
func (a *App) Options(_ context.Context, args []string) error {
	kind := arg(args, 0)
	if kind == "" {
		kind = a.console.Active()
	}
	if !a.console.Registry().Has(kind) {
		a.printf("Unknown kind %q.\n", kind)
		return nil
	}

	opts := a.console.SelectOptions(kind)
	if len(opts) == 0 {
		a.println("  No options.")
		return nil
	}
	for _, o := range opts {
		a.printf("  %-6s %s\n", o.Value, o.Label)
	}
	return nil
}

// New opens an empty form for the active kind and walks through it.
func (a *App) New(ctx context.Context, _ []string) error {
	a.console.OpenCreate()
	return a.fillForm(ctx)
}

// Edit opens the form of an existing record.
func (a *App) Edit(ctx context.Context, args []string) error {
	d := a.active()
	if _, ok := a.record(d, args); !ok {
		return nil
	}
	if _, err := a.console.OpenEditByID(args[0]); err != nil {
		a.printf("Error: %v\n", err)
		return nil
	}
	return a.fillForm(ctx)
}

// Delete removes a record after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	d := a.active()
	r, ok := a.record(d, args)
	if !ok {
		return nil
	}

	a.printCard(d, r)
	err := a.console.Delete(ctx, d.Kind, r.ID())
	switch {
	case errors.Is(err, services.ErrNotConfirmed):
		a.println("Cancelled.")
	case err != nil:
		a.checkSession(err)
	}
	return nil
}

// Reload fetches every kind again.
func (a *App) Reload(ctx context.Context, _ []string) error {
	a.loadAll(ctx)
	if !a.session.IsAuthenticated() {
		return nil
	}
	return a.Tabs(ctx, nil)
}

// record resolves args[0] to a record of d, printing usage or a not-found
// message when it cannot.
func (a *App) record(d *entities.Descriptor, args []string) (models.Record, bool) {
	id := arg(args, 0)
	if id == "" {
		a.println("Usage: <command> <id>")
		return nil, false
	}
	r, ok := a.console.Find(d.Kind, id)
	if !ok {
		a.printf("No %s record with id %s.\n", d.Kind, id)
		return nil, false
	}
	return r, true
}

// printCard prints the list view of a record: labels, id and creation date.
func (a *App) printCard(d *entities.Descriptor, r models.Record) {
	display, err := d.DisplayLabel(r)
	if err != nil {
		display = "(unlabelled)"
	}
	secondary, err := d.SecondaryLabel(r)
	if err != nil {
		secondary = ""
	}

	a.printf("  #%-5s %s\n", r.ID(), display)
	line := secondary
	if created := formatDate(r.CreatedAt()); created != "" {
		if line != "" {
			line += "  "
		}
		line += "created " + created
	}
	if line != "" {
		a.printf("         %s\n", line)
	}
}

// fieldText renders a stored value for display. Select values show the
// referenced record's label next to the id.
func (a *App) fieldText(f entities.Field, v any) string {
	switch f.Type {
	case entities.Checkbox:
		if entities.Truthy(v) {
			return "yes"
		}
		return "no"
	case entities.Select:
		id := models.IDString(v)
		if id == "" {
			return ""
		}
		for _, o := range a.console.SelectOptions(f.Options) {
			if o.Value == id {
				return fmt.Sprintf("%s (#%s)", o.Label, id)
			}
		}
		return "#" + id
	}
	return valueText(v)
}

func valueText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "yes"
		}
		return "no"
	default:
		return models.IDString(val)
	}
}

// formatDate shortens an RFC 3339 timestamp to its date. Other values are
// returned unchanged.
func formatDate(s string) string {
	if s == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format(time.DateOnly)
	}
	return s
}
