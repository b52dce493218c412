package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/samplekeeper/internal/client/client"
	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/logging"
)

// ErrSessionExpired is returned by IssueRequest when the backend rejected
// the session token. The session has been cleared by then.
var ErrSessionExpired = errors.New("session expired")

// State is the authentication state of a SessionManager.
type State int

const (
	StateRestoring State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a point-in-time copy of the session state.
// AuthLoading is true until the initial restore has finished.
type Session struct {
	State       State
	User        *models.User
	Token       string
	AuthLoading bool
}

// Loading reports whether the initial restore is still running.
func (s Session) Loading() bool { return s.AuthLoading }

// IsAuthenticated holds iff both a user and a token are present.
func (s Session) IsAuthenticated() bool { return s.User != nil && s.Token != "" }

// RequestOptions are the per-call settings of IssueRequest.
type RequestOptions struct {
	Method string
	Body   any
	Header http.Header
}

// SessionManager owns the session and issues authenticated requests.
// It is safe for concurrent use.
type SessionManager struct {
	client client.Client
	store  SessionStore
	log    logging.Logger

	mu    sync.RWMutex
	state State
	user  *models.User
	token string
}

// NewSessionManager returns a manager in the Restoring state. Call
// RestoreSession once at startup.
func NewSessionManager(c client.Client, store SessionStore, log logging.Logger) *SessionManager {
	if log == nil {
		log = logging.Nop()
	}
	return &SessionManager{
		client: c,
		store:  store,
		log:    log.With("component", "session"),
		state:  StateRestoring,
	}
}

// Snapshot returns a copy of the current session.
func (m *SessionManager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Session{State: m.state, Token: m.token, AuthLoading: m.state == StateRestoring}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

func (m *SessionManager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

// User returns the signed-in profile or nil.
func (m *SessionManager) User() *models.User {
	return m.Snapshot().User
}

// RestoreSession loads the persisted session and verifies its token with
// the backend. Any failure clears the persisted session. It always leaves
// the Restoring state; later calls only return the current snapshot.
func (m *SessionManager) RestoreSession(ctx context.Context) Session {
	m.mu.RLock()
	restoring := m.state == StateRestoring
	m.mu.RUnlock()
	if !restoring {
		return m.Snapshot()
	}

	token, user, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn(ctx, "reading persisted session failed", "error", err)
		m.clearStore(ctx)
		m.finishRestore(nil, "")
		return m.Snapshot()
	}
	if token == "" || user == nil {
		m.finishRestore(nil, "")
		return m.Snapshot()
	}

	verified, err := m.client.VerifyToken(ctx, token)
	if err != nil {
		m.log.Info(ctx, "persisted token rejected", "error", err)
		m.clearStore(ctx)
		m.finishRestore(nil, "")
		return m.Snapshot()
	}
	if verified == nil {
		verified = user
	}
	m.finishRestore(verified, token)
	m.log.Info(ctx, "session restored", "user", verified.Username)
	return m.Snapshot()
}

func (m *SessionManager) finishRestore(user *models.User, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateRestoring {
		return
	}
	if user != nil && token != "" {
		m.user, m.token, m.state = user, token, StateAuthenticated
		return
	}
	m.user, m.token, m.state = nil, "", StateAnonymous
}

// Login authenticates with the backend and persists the session.
func (m *SessionManager) Login(ctx context.Context, username, password string) models.AuthResult {
	creds := models.Credentials{Username: strings.TrimSpace(username), Password: password}
	if err := validate.Struct(creds); err != nil {
		return models.AuthResult{Message: summarize(fieldErrors(err))}
	}

	resp, err := m.client.Login(ctx, creds)
	if err != nil {
		m.log.Info(ctx, "login failed", "username", creds.Username, "error", err)
		return models.AuthResult{Message: errorMessage(err)}
	}
	if resp.Token == "" || resp.User == nil {
		return models.AuthResult{Message: "Unexpected login response"}
	}

	if err := m.store.Save(ctx, resp.Token, resp.User); err != nil {
		m.log.Warn(ctx, "persisting session failed", "error", err)
	}

	m.mu.Lock()
	m.user, m.token, m.state = resp.User, resp.Token, StateAuthenticated
	m.mu.Unlock()

	m.log.Info(ctx, "logged in", "user", resp.User.Username)
	msg := resp.Message
	if msg == "" {
		msg = "Login successful"
	}
	return models.AuthResult{Success: true, Message: msg}
}

// Register creates an account. It never signs the user in.
func (m *SessionManager) Register(ctx context.Context, reg models.Registration) models.RegisterResult {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if err := validate.Struct(reg); err != nil {
		fields := fieldErrors(err)
		return models.RegisterResult{
			AuthResult:  models.AuthResult{Message: summarize(fields)},
			FieldErrors: fields,
		}
	}

	resp, err := m.client.Register(ctx, reg)
	if err != nil {
		m.log.Info(ctx, "registration failed", "username", reg.Username, "error", err)
		res := models.RegisterResult{AuthResult: models.AuthResult{Message: errorMessage(err)}}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && len(apiErr.FieldErrors) > 0 {
			res.FieldErrors = apiErr.FieldErrors
			if apiErr.Raw {
				res.Message = summarize(apiErr.FieldErrors)
			}
		}
		return res
	}

	return models.RegisterResult{
		AuthResult:           models.AuthResult{Success: true, Message: resp.Message},
		RequiresVerification: resp.RequiresVerification,
	}
}

// Logout clears the session. The backend call is best effort.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.token
	m.user, m.token, m.state = nil, "", StateAnonymous
	m.mu.Unlock()

	m.endSession(ctx, token)
}

func (m *SessionManager) endSession(ctx context.Context, token string) {
	if token != "" {
		if err := m.client.Logout(ctx, token); err != nil {
			m.log.Warn(ctx, "logout call failed", "error", err)
		}
	}
	m.clearStore(ctx)
}

func (m *SessionManager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn(ctx, "clearing persisted session failed", "error", err)
	}
}

func (m *SessionManager) VerifyEmail(ctx context.Context, token string) models.AuthResult {
	req := models.TokenRequest{Token: strings.TrimSpace(token)}
	if err := validate.Struct(req); err != nil {
		return models.AuthResult{Message: "Verification token is required."}
	}
	return m.messageResult(m.client.VerifyEmail(ctx, req.Token))
}

func (m *SessionManager) ResendVerification(ctx context.Context, email string) models.AuthResult {
	req := models.EmailRequest{Email: strings.TrimSpace(email)}
	if err := validate.Struct(req); err != nil {
		return models.AuthResult{Message: summarize(fieldErrors(err))}
	}
	return m.messageResult(m.client.ResendVerification(ctx, req.Email))
}

func (m *SessionManager) RequestPasswordReset(ctx context.Context, email string) models.AuthResult {
	req := models.EmailRequest{Email: strings.TrimSpace(email)}
	if err := validate.Struct(req); err != nil {
		return models.AuthResult{Message: summarize(fieldErrors(err))}
	}
	return m.messageResult(m.client.RequestPasswordReset(ctx, req.Email))
}

func (m *SessionManager) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, confirmPassword string) models.AuthResult {
	req := models.PasswordResetConfirmation{
		UID:             strings.TrimSpace(uid),
		Token:           strings.TrimSpace(token),
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	}
	if req.UID == "" || req.Token == "" {
		return models.AuthResult{Message: "Invalid recovery link."}
	}
	if err := validate.Struct(req); err != nil {
		return models.AuthResult{Message: summarize(fieldErrors(err))}
	}
	return m.messageResult(m.client.ConfirmPasswordReset(ctx, req))
}

func (m *SessionManager) messageResult(msg string, err error) models.AuthResult {
	if err != nil {
		return models.AuthResult{Message: errorMessage(err)}
	}
	return models.AuthResult{Success: true, Message: msg}
}

// IssueRequest performs an authenticated call on behalf of the console.
// A 401 ends the session exactly once, however many concurrent calls saw
// it, and fails with ErrSessionExpired.
func (m *SessionManager) IssueRequest(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	raw, err := m.client.Do(ctx, client.Request{
		Method: opts.Method,
		Path:   path,
		Token:  token,
		Body:   opts.Body,
		Header: opts.Header,
	})
	if err == nil {
		return raw, nil
	}
	if errors.Is(err, client.ErrUnauthorized) {
		m.expire(ctx, token)
		return nil, ErrSessionExpired
	}
	return nil, err
}

// expire clears the session only if it still carries the token the failed
// request was sent with.
func (m *SessionManager) expire(ctx context.Context, token string) {
	m.mu.Lock()
	if token == "" || m.token != token {
		m.mu.Unlock()
		return
	}
	m.user, m.token, m.state = nil, "", StateAnonymous
	m.mu.Unlock()

	m.log.Warn(ctx, "session expired")
	m.endSession(ctx, token)
}

// errorMessage is the human-readable text of a transport or API failure.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
