// Package models defines the data exchanged between the samplekeeper client
// layers: the signed-in user, operation results, entity records and the
// transient form and notice state of the console.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// UserID is the user's identifier as the backend sends it, a JSON number or
// a string. Numbers are written back as numbers.
type UserID string

func (id UserID) String() string { return string(id) }

func (id UserID) MarshalJSON() ([]byte, error) {
	if isJSONNumber(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *UserID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	case isJSONNumber(string(b)):
		*id = UserID(b)
		return nil
	}
	return fmt.Errorf("user id: unsupported JSON value %s", b)
}

func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	var n json.Number
	return json.Unmarshal([]byte(s), &n) == nil
}

// User is the profile returned by the backend on login and token
// verification. Unknown attributes are ignored.
type User struct {
	ID        UserID `json:"id,omitempty"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// DisplayName renders "First Last", falling back to the username when the
// profile carries no names.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
