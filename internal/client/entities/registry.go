package entities

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed descriptors.yaml
var builtin []byte

var (
	ErrInvalidDescriptors = errors.New("invalid entity descriptors")
	ErrUnknownKind        = errors.New("unknown entity kind")
)

// Registry is an ordered, validated set of descriptors. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	order  []string
	byKind map[string]*Descriptor
}

type table struct {
	Entities []Descriptor `yaml:"entities"`
}

// Default returns the built-in descriptor table.
func Default() (*Registry, error) {
	return Load(builtin)
}

// LoadFile reads a YAML descriptor table from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptors: %w", err)
	}
	return Load(data)
}

// Load parses a YAML descriptor table.
func Load(data []byte) (*Registry, error) {
	var t table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptors, err)
	}
	return New(t.Entities...)
}

// New validates descs and builds a registry preserving their order.
func New(descs ...Descriptor) (*Registry, error) {
	if len(descs) == 0 {
		return nil, fmt.Errorf("%w: no entity kinds", ErrInvalidDescriptors)
	}

	r := &Registry{byKind: make(map[string]*Descriptor, len(descs))}
	for i := range descs {
		d := descs[i]
		d.Fields = append([]Field(nil), d.Fields...)
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDescriptors, kindName(d, i), err)
		}
		if _, dup := r.byKind[d.Kind]; dup {
			return nil, fmt.Errorf("%w: duplicate kind %q", ErrInvalidDescriptors, d.Kind)
		}
		if err := uniqueKeys(d); err != nil {
			return nil, err
		}
		if err := d.compile(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDescriptors, err)
		}
		r.order = append(r.order, d.Kind)
		r.byKind[d.Kind] = &d
	}

	for _, kind := range r.order {
		for _, f := range r.byKind[kind].Fields {
			if f.Type != Select {
				continue
			}
			if _, ok := r.byKind[f.Options]; !ok {
				return nil, fmt.Errorf("%w: %s.%s references unknown kind %q",
					ErrInvalidDescriptors, kind, f.Key, f.Options)
			}
		}
	}
	return r, nil
}

func kindName(d Descriptor, i int) string {
	if d.Kind != "" {
		return d.Kind
	}
	return fmt.Sprintf("entities[%d]", i)
}

func uniqueKeys(d Descriptor) error {
	seen := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: %s: duplicate field %q", ErrInvalidDescriptors, d.Kind, f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	return nil
}

// Kinds returns the entity kinds in table order.
func (r *Registry) Kinds() []string {
	return append([]string(nil), r.order...)
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	_, ok := r.byKind[kind]
	return ok
}

// Get returns the descriptor of kind or ErrUnknownKind.
func (r *Registry) Get(kind string) (*Descriptor, error) {
	d, ok := r.byKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return d, nil
}

// Descriptors returns every descriptor in table order.
func (r *Registry) Descriptors() []*Descriptor {
	out := make([]*Descriptor, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.byKind[k])
	}
	return out
}
