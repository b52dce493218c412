package entities

import (
	"encoding/json"
	"strings"
)

// BoolEncoding selects the wire representation of checkbox fields.
type BoolEncoding int

const (
	// BoolAsInt sends 1/0, which is what the sample backend stores.
	BoolAsInt BoolEncoding = iota
	// BoolAsBool sends JSON true/false.
	BoolAsBool
)

// ParseBoolEncoding maps the configuration value ("int" or "bool").
func ParseBoolEncoding(s string) BoolEncoding {
	if strings.EqualFold(s, "bool") {
		return BoolAsBool
	}
	return BoolAsInt
}

// Encoder maps form values to the request body sent to the backend.
type Encoder struct {
	Booleans BoolEncoding
}

// Encode returns a copy of values with every checkbox field of d coerced to
// the configured wire representation. Other values pass through unchanged.
func (e Encoder) Encode(d *Descriptor, values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	for _, f := range d.Fields {
		if f.Type != Checkbox {
			continue
		}
		on := Truthy(out[f.Key])
		if e.Booleans == BoolAsBool {
			out[f.Key] = on
			continue
		}
		if on {
			out[f.Key] = 1
		} else {
			out[f.Key] = 0
		}
	}
	return out
}

// Truthy interprets a checkbox value. Strings "0", "false", "no" and "off"
// are false so that typed-in answers behave as expected.
func Truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	case json.Number:
		f, err := b.Float64()
		return err != nil || f != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "", "0", "false", "no", "off", "n":
			return false
		}
		return true
	default:
		return true
	}
}
