package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const generalField = "general"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors converts a validator error into the per-field message map
// used by RegisterResult.
func fieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string][]string{generalField: {err.Error()}}
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], messageFor(fe.Tag(), fe.Param()))
	}
	return out
}

func messageFor(tag, param string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Password must be at least %s characters long.", param)
	case "eqfield":
		return "Passwords do not match."
	case "contains":
		return "Enter a valid email address."
	case "numeric":
		return "Enter a number."
	case "datetime":
		return "Enter a date as YYYY-MM-DD."
	default:
		return "Invalid value."
	}
}

// summarize flattens field errors into one line, ordered by field name.
// A single error is returned without its field prefix.
func summarize(fields map[string][]string) string {
	if len(fields) == 1 {
		for _, msgs := range fields {
			if len(msgs) > 0 {
				return msgs[0]
			}
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if msgs := fields[k]; len(msgs) > 0 {
			parts = append(parts, k+": "+msgs[0])
		}
	}
	return strings.Join(parts, "; ")
}
