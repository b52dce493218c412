package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Record is one entity instance as returned by the backend: field keys to
// values, plus the server-assigned "id" and optional "created_at". Numbers
// are kept as json.Number so identifiers survive round trips unchanged.
type Record map[string]any

// ID returns the identifier in its canonical string form, or "" when the
// record has none.
func (r Record) ID() string {
	return IDString(r["id"])
}

// CreatedAt returns the creation timestamp as sent by the server.
func (r Record) CreatedAt() string {
	if s, ok := r["created_at"].(string); ok {
		return s
	}
	return ""
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IDString normalises an identifier value (json.Number, float64, int or
// string) into the string used in URLs and comparisons.
func IDString(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

// NumberID renders an integer identifier the way decoded records carry it.
func NumberID(n int) json.Number {
	return json.Number(strconv.Itoa(n))
}

var ErrNotARecord = errors.New("response is not a JSON object")

func newDecoder(raw []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec
}

// DecodeRecord parses a single record body.
func DecodeRecord(raw []byte) (Record, error) {
	var r Record
	if err := newDecoder(raw).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if r == nil {
		return nil, ErrNotARecord
	}
	return r, nil
}

// DecodeRecordList accepts either a bare JSON array or an envelope exposing
// the array under "results" or "data". An envelope with neither yields an
// empty list. Array elements that are not objects are dropped.
func DecodeRecordList(raw []byte) ([]Record, error) {
	var v any
	if err := newDecoder(raw).Decode(&v); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}

	var items []any
	switch body := v.(type) {
	case []any:
		items = body
	case map[string]any:
		if list, ok := body["results"].([]any); ok {
			items = list
		} else if list, ok := body["data"].([]any); ok {
			items = list
		}
	default:
		return nil, fmt.Errorf("decode list: unexpected %T body", v)
	}

	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out, nil
}
