package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/samplekeeper/internal/client/entities"
	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/common"
	"github.com/dmitrijs2005/samplekeeper/internal/logging"
)

var (
	ErrNoSession    = errors.New("console requires a session manager")
	ErrNoRegistry   = errors.New("console requires an entity registry")
	ErrNotConfirmed = errors.New("deletion not confirmed")
	ErrNoForm       = errors.New("no form is open")
	ErrUnknownField = errors.New("unknown field")
	ErrUnknownKind  = entities.ErrUnknownKind
)

// Notice texts.
const (
	MsgCreated = "Item created successfully"
	MsgUpdated = "Item updated successfully"
	MsgDeleted = "Item deleted successfully"

	DeletePrompt = "Are you sure you want to delete this item?"
)

// Requester issues authenticated calls. *SessionManager implements it.
type Requester interface {
	IssueRequest(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// denyAll is the default Confirmer: without an interactive prompt nothing
// gets deleted.
var denyAll = ConfirmFunc(func(context.Context, string) bool { return false })

// FormError lists the fields of a form that failed local validation, in
// descriptor order.
type FormError struct {
	Fields []FieldProblem
}

type FieldProblem struct {
	Key     string
	Label   string
	Message string
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Label+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *FormError) Unwrap() error { return common.ErrValidation }

type ConsoleOption func(*Console)

func WithConsoleLogger(l logging.Logger) ConsoleOption {
	return func(c *Console) {
		if l != nil {
			c.log = l
		}
	}
}

func WithEncoder(e entities.Encoder) ConsoleOption {
	return func(c *Console) { c.enc = e }
}

func WithConfirmer(cf Confirmer) ConsoleOption {
	return func(c *Console) {
		if cf != nil {
			c.confirm = cf
		}
	}
}

func WithNotifier(n *Notifier) ConsoleOption {
	return func(c *Console) {
		if n != nil {
			c.notices = n
		}
	}
}

// WithActiveKind selects the initial tab.
func WithActiveKind(kind string) ConsoleOption {
	return func(c *Console) { c.active = kind }
}

// Console is the configuration-driven CRUD orchestrator.
type Console struct {
	req     Requester
	reg     *entities.Registry
	enc     entities.Encoder
	confirm Confirmer
	notices *Notifier
	log     logging.Logger
	store   *collections
	pending atomic.Int32

	mu     sync.Mutex
	active string
	search string
	form   *models.FormBuffer
}

// NewConsole wires a console to its requester and descriptor table. The
// initial tab is "requests" when present, else the first kind.
func NewConsole(req Requester, reg *entities.Registry, opts ...ConsoleOption) (*Console, error) {
	if req == nil {
		return nil, ErrNoSession
	}
	if reg == nil {
		return nil, ErrNoRegistry
	}

	c := &Console{
		req:     req,
		reg:     reg,
		confirm: denyAll,
		log:     logging.Nop(),
		store:   newCollections(reg.Kinds()),
	}
	for _, o := range opts {
		o(c)
	}
	if c.notices == nil {
		c.notices = NewNotifier(DefaultNoticeTTL)
	}
	c.log = c.log.With("component", "console")

	if c.active == "" && reg.Has("requests") {
		c.active = "requests"
	}
	if !reg.Has(c.active) {
		c.active = reg.Kinds()[0]
	}
	return c, nil
}

func (c *Console) Registry() *entities.Registry { return c.reg }

func (c *Console) Notifier() *Notifier { return c.notices }

// Notice returns the visible transient message, if any.
func (c *Console) Notice() (models.Notice, bool) { return c.notices.Current() }

// Loading reports whether any request is in flight.
func (c *Console) Loading() bool { return c.pending.Load() > 0 }

func (c *Console) track() func() {
	c.pending.Add(1)
	return func() { c.pending.Add(-1) }
}

// Active returns the active entity kind.
func (c *Console) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetActive switches tabs. The search term is reset and an open form is
// discarded.
func (c *Console) SetActive(kind string) error {
	if !c.reg.Has(kind) {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = kind
	c.search = ""
	c.form = nil
	return nil
}

func (c *Console) activeDescriptor() *entities.Descriptor {
	d, _ := c.reg.Get(c.Active())
	return d
}

// Items returns the collection of kind in response order.
func (c *Console) Items(kind string) []models.Record {
	return c.store.list(kind)
}

// Count returns the collection size of kind.
func (c *Console) Count(kind string) int {
	return len(c.store.list(kind))
}

// Find returns the record of kind with the given id.
func (c *Console) Find(kind, id string) (models.Record, bool) {
	return c.store.find(kind, id)
}

// LoadAll fetches every kind concurrently and publishes the results
// together once all requests have settled. A failing kind yields an empty
// collection; its error is reported in the returned map.
func (c *Console) LoadAll(ctx context.Context) map[string]error {
	defer c.track()()

	kinds := c.reg.Kinds()
	since := c.store.beginLoad()
	results := make([][]models.Record, len(kinds))
	errs := make([]error, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		g.Go(func() error {
			results[i], errs[i] = c.fetch(logging.ContextWith(ctx, "kind", kind), kind)
			return nil
		})
	}
	_ = g.Wait()

	loaded := make(map[string][]models.Record, len(kinds))
	failed := make(map[string]error)
	for i, kind := range kinds {
		if errs[i] != nil {
			c.log.Warn(ctx, "loading collection failed", "kind", kind, "error", errs[i])
			failed[kind] = errs[i]
			loaded[kind] = []models.Record{}
			continue
		}
		c.log.Debug(ctx, "collection loaded", "kind", kind, "count", len(results[i]))
		loaded[kind] = results[i]
	}

	for _, kind := range c.store.publish(loaded, since) {
		c.log.Info(ctx, "replayed local changes onto listing", "kind", kind)
	}
	return failed
}

func (c *Console) fetch(ctx context.Context, kind string) ([]models.Record, error) {
	d, err := c.reg.Get(kind)
	if err != nil {
		return nil, err
	}
	raw, err := c.req.IssueRequest(ctx, d.CollectionPath(), RequestOptions{Method: http.MethodGet})
	if err != nil {
		return nil, err
	}
	return models.DecodeRecordList(raw)
}

// Create posts values to kind's endpoint and appends the returned record.
func (c *Console) Create(ctx context.Context, kind string, values map[string]any) (models.Record, error) {
	defer c.track()()

	d, err := c.reg.Get(kind)
	if err != nil {
		return nil, c.fail(ctx, "create", err)
	}
	raw, err := c.req.IssueRequest(ctx, d.CollectionPath(), RequestOptions{Method: http.MethodPost, Body: values})
	if err != nil {
		return nil, c.fail(ctx, "create", err)
	}
	rec, err := models.DecodeRecord(raw)
	if err != nil {
		return nil, c.fail(ctx, "create", err)
	}

	c.store.add(kind, rec)
	c.notices.Success(MsgCreated)
	c.log.Info(ctx, "record created", "kind", kind, "id", rec.ID())
	return rec, nil
}

// Update puts values to the record's endpoint and replaces the record with
// the same id.
func (c *Console) Update(ctx context.Context, kind, id string, values map[string]any) (models.Record, error) {
	defer c.track()()

	d, err := c.reg.Get(kind)
	if err != nil {
		return nil, c.fail(ctx, "update", err)
	}
	raw, err := c.req.IssueRequest(ctx, d.ItemPath(id), RequestOptions{Method: http.MethodPut, Body: values})
	if err != nil {
		return nil, c.fail(ctx, "update", err)
	}
	rec, err := models.DecodeRecord(raw)
	if err != nil {
		return nil, c.fail(ctx, "update", err)
	}

	if !c.store.replace(kind, id, rec) {
		c.log.Debug(ctx, "updated record not in collection", "kind", kind, "id", id)
	}
	c.notices.Success(MsgUpdated)
	c.log.Info(ctx, "record updated", "kind", kind, "id", id)
	return rec, nil
}

// Delete asks for confirmation, then deletes the record and drops it from
// the collection. A declined confirmation returns ErrNotConfirmed without
// any request.
func (c *Console) Delete(ctx context.Context, kind, id string) error {
	d, err := c.reg.Get(kind)
	if err != nil {
		return c.fail(ctx, "delete", err)
	}
	if !c.confirm.Confirm(ctx, DeletePrompt) {
		return ErrNotConfirmed
	}

	defer c.track()()
	if _, err := c.req.IssueRequest(ctx, d.ItemPath(id), RequestOptions{Method: http.MethodDelete}); err != nil {
		return c.fail(ctx, "delete", err)
	}

	c.store.remove(kind, id)
	c.notices.Success(MsgDeleted)
	c.log.Info(ctx, "record deleted", "kind", kind, "id", id)
	return nil
}

func (c *Console) fail(ctx context.Context, op string, err error) error {
	c.log.Warn(ctx, op+" failed", "error", err)
	c.notices.Error(errorMessage(err))
	return err
}

// SetSearch stores the search term of the active tab.
func (c *Console) SetSearch(term string) {
	c.mu.Lock()
	c.search = term
	c.mu.Unlock()
}

func (c *Console) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.search
}

// Visible returns the active collection filtered by the stored search term.
func (c *Console) Visible() []models.Record {
	items, _ := c.SearchKind(c.Active(), c.SearchTerm())
	return items
}

// Search filters the active collection by term.
func (c *Console) Search(term string) []models.Record {
	items, _ := c.SearchKind(c.Active(), term)
	return items
}

// SearchKind returns the records of kind whose display or secondary label
// contains term, case-insensitively. An empty term returns the whole
// collection. Records whose labels cannot be rendered are left out.
func (c *Console) SearchKind(kind, term string) ([]models.Record, error) {
	d, err := c.reg.Get(kind)
	if err != nil {
		return nil, err
	}
	items := c.store.list(kind)
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return items, nil
	}

	out := make([]models.Record, 0, len(items))
	for _, r := range items {
		display, err := d.DisplayLabel(r)
		if err != nil {
			c.log.Debug(context.Background(), "label failed", "kind", kind, "id", r.ID(), "error", err)
			continue
		}
		secondary, err := d.SecondaryLabel(r)
		if err != nil {
			c.log.Debug(context.Background(), "label failed", "kind", kind, "id", r.ID(), "error", err)
			continue
		}
		if strings.Contains(strings.ToLower(display), needle) ||
			strings.Contains(strings.ToLower(secondary), needle) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SelectOptions maps kind's collection to select choices. Unknown kinds
// yield no options; a record whose label fails is offered as "#<id>".
func (c *Console) SelectOptions(kind string) []models.Option {
	d, err := c.reg.Get(kind)
	if err != nil {
		return []models.Option{}
	}
	items := c.store.list(kind)
	out := make([]models.Option, 0, len(items))
	for _, r := range items {
		label, err := d.DisplayLabel(r)
		if err != nil {
			label = "#" + r.ID()
		}
		out = append(out, models.Option{Value: r.ID(), Label: label})
	}
	return out
}

// OpenCreate opens an empty form for the active kind.
func (c *Console) OpenCreate() *models.FormBuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, _ := c.reg.Get(c.active)
	values := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		values[f.Key] = f.Default()
	}
	c.form = &models.FormBuffer{Kind: c.active, Values: values}
	return c.form.Clone()
}

// OpenEdit opens a form seeded from record. Fields the record lacks or
// holds as null get their defaults.
func (c *Console) OpenEdit(record models.Record) *models.FormBuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, _ := c.reg.Get(c.active)
	values := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		v, ok := record[f.Key]
		if !ok || v == nil {
			v = f.Default()
		}
		values[f.Key] = v
	}
	c.form = &models.FormBuffer{Kind: c.active, Values: values, Editing: record.Clone()}
	return c.form.Clone()
}

// OpenEditByID opens the edit form for a record of the active kind.
func (c *Console) OpenEditByID(id string) (*models.FormBuffer, error) {
	r, ok := c.store.find(c.Active(), id)
	if !ok {
		return nil, fmt.Errorf("%w: %s #%s", common.ErrorNotFound, c.Active(), id)
	}
	return c.OpenEdit(r), nil
}

// Form returns a copy of the open form, or nil.
func (c *Console) Form() *models.FormBuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form.Clone()
}

// SetField updates one value of the open form.
func (c *Console) SetField(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == nil {
		return ErrNoForm
	}
	d, _ := c.reg.Get(c.form.Kind)
	if _, ok := d.Field(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	c.form.Values[key] = value
	return nil
}

// Cancel closes the form without submitting.
func (c *Console) Cancel() {
	c.mu.Lock()
	c.form = nil
	c.mu.Unlock()
}

// Submit validates the open form, encodes it for the wire and creates or
// updates the record. The form is closed only on success.
func (c *Console) Submit(ctx context.Context) (models.Record, error) {
	form := c.Form()
	if form == nil {
		return nil, ErrNoForm
	}
	d, err := c.reg.Get(form.Kind)
	if err != nil {
		return nil, err
	}

	if ferr := validateForm(d, form.Values); ferr != nil {
		c.notices.Error(ferr.Error())
		return nil, ferr
	}

	payload := c.enc.Encode(d, form.Values)

	var rec models.Record
	if form.IsEdit() {
		rec, err = c.Update(ctx, form.Kind, form.Editing.ID(), payload)
	} else {
		rec, err = c.Create(ctx, form.Kind, payload)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.form = nil
	c.mu.Unlock()
	return rec, nil
}

// validateForm checks presence of required fields and the format of
// email, number and date values.
func validateForm(d *entities.Descriptor, values map[string]any) *FormError {
	var problems []FieldProblem
	for _, f := range d.Fields {
		if f.Type == entities.Checkbox {
			continue
		}
		text := formText(values[f.Key])

		tag := ""
		switch f.Type {
		case entities.Email:
			tag = "contains=@"
		case entities.Number:
			tag = "numeric"
		case entities.Date:
			tag = "datetime=2006-01-02"
		}
		switch {
		case f.Required && tag != "":
			tag = "required," + tag
		case f.Required:
			tag = "required"
		case tag != "":
			tag = "omitempty," + tag
		}
		if tag == "" {
			continue
		}

		if err := validate.Var(text, tag); err != nil {
			msg := "Invalid value."
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				msg = messageFor(verrs[0].Tag(), verrs[0].Param())
			}
			problems = append(problems, FieldProblem{Key: f.Key, Label: f.Label, Message: msg})
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return &FormError{Fields: problems}
}

func formText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
