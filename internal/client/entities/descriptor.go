package entities

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"text/template"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
)

// FieldType is the input kind of a form field.
type FieldType string

const (
	Text     FieldType = "text"
	Email    FieldType = "email"
	Number   FieldType = "number"
	Date     FieldType = "date"
	Checkbox FieldType = "checkbox"
	Select   FieldType = "select"
	Textarea FieldType = "textarea"
)

var fieldTypes = []any{Text, Email, Number, Date, Checkbox, Select, Textarea}

var (
	kindPattern     = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	keyPattern      = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	endpointPattern = regexp.MustCompile(`^/[a-z0-9-]+/$`)
)

// ErrNilRecord is returned by the label functions for a nil record.
var ErrNilRecord = errors.New("nil record")

// Field is one form field of a descriptor. Options names the entity kind a
// select field draws its choices from; Step is the input granularity of a
// number field.
type Field struct {
	Key      string    `yaml:"key" json:"key"`
	Label    string    `yaml:"label" json:"label"`
	Type     FieldType `yaml:"type" json:"type"`
	Required bool      `yaml:"required,omitempty" json:"required"`
	Step     string    `yaml:"step,omitempty" json:"step"`
	Options  string    `yaml:"options,omitempty" json:"options"`
}

// Default is the value a fresh form holds for the field.
func (f Field) Default() any {
	if f.Type == Checkbox {
		return false
	}
	return ""
}

func (f Field) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Key, validation.Required, validation.Match(keyPattern)),
		validation.Field(&f.Label, validation.Required),
		validation.Field(&f.Type, validation.Required, validation.In(fieldTypes...)),
		validation.Field(&f.Options,
			validation.When(f.Type == Select, validation.Required).Else(validation.Empty)),
		validation.Field(&f.Step,
			validation.When(f.Type != Number, validation.Empty), is.Float),
	)
}

// Descriptor is the declarative description of one entity kind.
type Descriptor struct {
	Kind      string  `yaml:"kind" json:"kind"`
	Title     string  `yaml:"title" json:"title"`
	Endpoint  string  `yaml:"endpoint" json:"endpoint"`
	Display   string  `yaml:"display" json:"display"`
	Secondary string  `yaml:"secondary" json:"secondary"`
	Fields    []Field `yaml:"fields" json:"fields"`

	display   *template.Template
	secondary *template.Template
}

func (d Descriptor) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Kind, validation.Required, validation.Match(kindPattern)),
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Endpoint, validation.Required, validation.Match(endpointPattern)),
		validation.Field(&d.Display, validation.Required),
		validation.Field(&d.Secondary, validation.Required),
		validation.Field(&d.Fields, validation.Required),
	)
}

func (d *Descriptor) compile() error {
	var err error
	if d.display, err = parseLabel(d.Kind+".display", d.Display); err != nil {
		return err
	}
	if d.secondary, err = parseLabel(d.Kind+".secondary", d.Secondary); err != nil {
		return err
	}
	return nil
}

func parseLabel(name, text string) (*template.Template, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return t, nil
}

// Field looks up a field by key.
func (d *Descriptor) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// CollectionPath is the list/create endpoint.
func (d *Descriptor) CollectionPath() string {
	return d.Endpoint
}

// ItemPath is the update/delete endpoint of the record with the given id.
func (d *Descriptor) ItemPath(id string) string {
	return d.Endpoint + url.PathEscape(id) + "/"
}

// DisplayLabel renders the primary label of r.
func (d *Descriptor) DisplayLabel(r models.Record) (string, error) {
	return d.render(d.display, r)
}

// SecondaryLabel renders the secondary label of r.
func (d *Descriptor) SecondaryLabel(r models.Record) (string, error) {
	return d.render(d.secondary, r)
}

func (d *Descriptor) render(t *template.Template, r models.Record) (string, error) {
	if r == nil {
		return "", ErrNilRecord
	}
	if t == nil {
		return "", fmt.Errorf("%s: descriptor not compiled", d.Kind)
	}
	var sb strings.Builder
	if err := t.Execute(&sb, d.view(r)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// view exposes the declared fields, id and created_at of r to the label
// templates. Absent and null values render as "". Keys that are neither
// declared nor present stay missing and fail the template.
func (d *Descriptor) view(r models.Record) map[string]any {
	v := make(map[string]any, len(r)+len(d.Fields)+2)
	v["id"] = ""
	v["created_at"] = ""
	for _, f := range d.Fields {
		v[f.Key] = ""
	}
	for k, val := range r {
		if val == nil {
			v[k] = ""
			continue
		}
		v[k] = val
	}
	return v
}
