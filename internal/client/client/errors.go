package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// TransportError reports a request that got no HTTP response. Its message is
// the underlying transport error's message.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() []error { return []error{ErrUnavailable, e.Err} }

// APIError is a non-2xx response from the backend. Raw is set when no
// known message key was present and Message is the compacted body.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string][]string
	Raw         bool
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

var reservedKeys = map[string]struct{}{
	"non_field_errors": {},
	"detail":           {},
	"message":          {},
}

// NewAPIError builds an APIError from a response status and body.
func NewAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		e.Message = fmt.Sprintf("Error %d: %s", status, http.StatusText(status))
		return e
	}

	obj, ok := v.(map[string]any)
	if !ok {
		e.Message = compact(body)
		e.Raw = true
		return e
	}

	e.FieldErrors = fieldErrors(obj)
	switch {
	case firstString(obj["non_field_errors"]) != "":
		e.Message = firstString(obj["non_field_errors"])
	case stringValue(obj["detail"]) != "":
		e.Message = stringValue(obj["detail"])
	case stringValue(obj["message"]) != "":
		e.Message = stringValue(obj["message"])
	default:
		e.Message = compact(body)
		e.Raw = true
	}
	return e
}

func fieldErrors(obj map[string]any) map[string][]string {
	var out map[string][]string
	for k, v := range obj {
		if _, skip := reservedKeys[k]; skip {
			continue
		}
		var msgs []string
		switch val := v.(type) {
		case string:
			msgs = []string{val}
		case []any:
			for _, m := range val {
				if s, ok := m.(string); ok {
					msgs = append(msgs, s)
				}
			}
		}
		if len(msgs) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[k] = msgs
	}
	return out
}

func firstString(v any) string {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return ""
	}
	s, _ := list[0].(string)
	return s
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func compact(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return string(bytes.TrimSpace(body))
	}
	return buf.String()
}
