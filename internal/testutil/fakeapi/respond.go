package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const msgRequired = "This field is required."

type errorBody map[string]any

func detail(msg string) errorBody {
	return errorBody{"detail": msg}
}

func nonField(msg string) errorBody {
	return errorBody{"non_field_errors": []string{msg}}
}

// fieldErrors is the {"field": ["msg", ...]} validation body.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func (f fieldErrors) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, msgRequired)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into dst. It writes a 400 and reports
// false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, detail("JSON parse error."))
		return false
	}
	return true
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

type ctxKey struct{}

type principal struct {
	acc *account
	jti string
}

func withPrincipal(ctx context.Context, p principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func principalFrom(ctx context.Context) (principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(principal)
	return p, ok
}

// authenticate accepts "Token <jwt>" and "Bearer <jwt>" headers. A token is
// valid while its id is still active and its account exists.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, raw, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || (scheme != "Token" && scheme != "Bearer") || raw == "" {
			writeJSON(w, http.StatusUnauthorized, detail("Authentication credentials were not provided."))
			return
		}

		claims, err := ParseToken(strings.TrimSpace(raw), s.secret)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, detail("Invalid token."))
			return
		}

		s.mu.Lock()
		_, live := s.active[claims.ID]
		acc := s.accountByID(claims.UserID)
		s.mu.Unlock()

		if !live || acc == nil {
			writeJSON(w, http.StatusUnauthorized, detail("Invalid token."))
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal{acc: acc, jti: claims.ID})))
	})
}

// accountByID must be called with s.mu held.
func (s *Server) accountByID(id string) *account {
	for _, a := range s.accounts {
		if a.profile().ID.String() == id {
			return a
		}
	}
	return nil
}

// accountByEmail must be called with s.mu held.
func (s *Server) accountByEmail(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.email, email) {
			return a
		}
	}
	return nil
}
