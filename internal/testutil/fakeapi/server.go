package fakeapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/samplekeeper/internal/client/entities"
	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/logging"
)

// BasePath is the prefix every route is mounted under.
const BasePath = "/api"

const (
	defaultSecret   = "samplekeeper-dev-secret"
	defaultTokenTTL = 24 * time.Hour
)

type account struct {
	id        int
	username  string
	email     string
	firstName string
	lastName  string
	hash      []byte
	verified  bool
}

func (a *account) profile() *models.User {
	return &models.User{
		ID:        models.UserID(strconv.Itoa(a.id)),
		Username:  a.username,
		FirstName: a.firstName,
		LastName:  a.lastName,
		Email:     a.email,
	}
}

type resetLink struct {
	uid   string
	token string
}

type collection struct {
	nextID  int
	records []models.Record
}

// Server is the in-memory backend. It is safe for concurrent use.
type Server struct {
	secret   []byte
	tokenTTL time.Duration
	verify   bool
	envelope string
	registry *entities.Registry
	log      logging.Logger

	mu         sync.Mutex
	accounts   map[string]*account
	nextUserID int
	active     map[string]struct{}
	verifyTok  map[string]string
	resets     map[string]resetLink
	data       map[string]*collection
	failing    map[string]int
	calls      map[string]int
}

type Option func(*Server)

// WithSecret sets the token signing key.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = []byte(secret) }
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithVerification makes registration require email verification before
// the account can log in.
func WithVerification() Option {
	return func(s *Server) { s.verify = true }
}

// WithEnvelope wraps list responses in {key: [...], "count": n} instead of
// returning a bare array.
func WithEnvelope(key string) Option {
	return func(s *Server) { s.envelope = key }
}

// WithRegistry serves the kinds of reg instead of the built-in table.
func WithRegistry(reg *entities.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// New builds a server with no accounts and empty collections.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		secret:     []byte(defaultSecret),
		tokenTTL:   defaultTokenTTL,
		log:        logging.Nop(),
		accounts:   make(map[string]*account),
		nextUserID: 1,
		active:     make(map[string]struct{}),
		verifyTok:  make(map[string]string),
		resets:     make(map[string]resetLink),
		data:       make(map[string]*collection),
		failing:    make(map[string]int),
		calls:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.registry == nil {
		reg, err := entities.Default()
		if err != nil {
			return nil, err
		}
		s.registry = reg
	}
	for _, kind := range s.registry.Kinds() {
		s.data[kind] = &collection{nextID: 1}
	}

	return s, nil
}

// Handler returns the router with every route mounted under BasePath.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route(BasePath, func(r chi.Router) {
		r.Use(s.countCalls)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login/", s.login)
			r.Post("/register/", s.register)
			r.Post("/verify-email/", s.verifyEmail)
			r.Post("/resend-verification/", s.resendVerification)
			r.Post("/password-reset/", s.passwordReset)
			r.Post("/password-reset-confirm/", s.passwordResetConfirm)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Post("/logout/", s.logout)
				r.Get("/verify-token/", s.verifyToken)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			for _, d := range s.registry.Descriptors() {
				h := &recordHandler{srv: s, desc: d}
				r.Get(d.Endpoint, h.list)
				r.Post(d.Endpoint, h.create)
				r.Put(d.Endpoint+"{id}/", h.update)
				r.Delete(d.Endpoint+"{id}/", h.delete)
			}
		})
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

func (s *Server) countCalls(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callKey(r.Method, strings.TrimPrefix(r.URL.Path, BasePath))
		s.mu.Lock()
		s.calls[key]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func callKey(method, path string) string {
	return method + " " + path
}

// Calls reports how many requests hit method and path (relative to
// BasePath, e.g. "/requests/").
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[callKey(method, path)]
}

// FailKind makes every request to kind's endpoints answer with status.
// A zero status clears the failure.
func (s *Server) FailKind(kind string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failing, kind)
		return
	}
	s.failing[kind] = status
}

// RevokeAll invalidates every issued token, as if they all expired
// server-side.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.active)
}

// AddUser creates a verified account and returns its profile.
func (s *Server) AddUser(username, password, email, firstName, lastName string) (*models.User, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.addAccount(username, email, firstName, lastName, hash)
	a.verified = true
	return a.profile(), nil
}

func (s *Server) addAccount(username, email, firstName, lastName string, hash []byte) *account {
	a := &account{
		id:        s.nextUserID,
		username:  username,
		email:     email,
		firstName: firstName,
		lastName:  lastName,
		hash:      hash,
	}
	s.nextUserID++
	s.accounts[username] = a
	return a
}

// VerificationToken returns the pending email verification token of
// username, the value a real backend would mail out.
func (s *Server) VerificationToken(username string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, u := range s.verifyTok {
		if u == username {
			return tok, true
		}
	}
	return "", false
}

// ResetLink returns the uid and token of the pending password reset for
// email.
func (s *Server) ResetLink(email string) (uid, token string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.resets[strings.ToLower(email)]
	return l.uid, l.token, ok
}

// Seed appends records to kind as if they had been created through the API,
// assigning ids and creation timestamps. It returns the stored records.
func (s *Server) Seed(kind string, records ...models.Record) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.data[kind]
	if !ok {
		return nil
	}
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		out = append(out, col.insert(r).Clone())
	}
	return out
}

// Records returns a copy of kind's collection.
func (s *Server) Records(kind string) []models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.data[kind]
	if !ok {
		return nil
	}
	out := make([]models.Record, len(col.records))
	for i, r := range col.records {
		out[i] = r.Clone()
	}
	return out
}

func (c *collection) insert(values models.Record) models.Record {
	rec := values.Clone()
	rec["id"] = models.NumberID(c.nextID)
	rec["created_at"] = time.Now().UTC().Format(time.RFC3339)
	c.nextID++
	c.records = append(c.records, rec)
	return rec
}

func (c *collection) index(id string) int {
	for i, r := range c.records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}
