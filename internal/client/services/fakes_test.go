package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/samplekeeper/internal/client/client"
	"github.com/dmitrijs2005/samplekeeper/internal/client/models"

	_ "modernc.org/sqlite"
)

// fakeClient implements client.Client with overridable behaviour and call
// accounting.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	doFn          func(ctx context.Context, r client.Request) (json.RawMessage, error)
	loginFn       func(creds models.Credentials) (*models.LoginResponse, error)
	registerFn    func(reg models.Registration) (*models.RegisterResponse, error)
	verifyTokenFn func(token string) (*models.User, error)
	messageFn     func(op string, body any) (string, error)
	logoutErr     error

	logoutTokens []string
	requests     []client.Request
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: map[string]int{}}
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) Do(ctx context.Context, r client.Request) (json.RawMessage, error) {
	f.record("do")
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.mu.Unlock()
	if f.doFn != nil {
		return f.doFn(ctx, r)
	}
	return json.RawMessage(`{}`), nil
}

func (f *fakeClient) Login(_ context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	f.record("login")
	return f.loginFn(creds)
}

func (f *fakeClient) Register(_ context.Context, reg models.Registration) (*models.RegisterResponse, error) {
	f.record("register")
	return f.registerFn(reg)
}

func (f *fakeClient) Logout(_ context.Context, token string) error {
	f.record("logout")
	f.mu.Lock()
	f.logoutTokens = append(f.logoutTokens, token)
	f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeClient) VerifyToken(_ context.Context, token string) (*models.User, error) {
	f.record("verify-token")
	return f.verifyTokenFn(token)
}

func (f *fakeClient) message(op string, body any) (string, error) {
	f.record(op)
	if f.messageFn != nil {
		return f.messageFn(op, body)
	}
	return "ok", nil
}

func (f *fakeClient) VerifyEmail(_ context.Context, token string) (string, error) {
	return f.message("verify-email", token)
}

func (f *fakeClient) ResendVerification(_ context.Context, email string) (string, error) {
	return f.message("resend-verification", email)
}

func (f *fakeClient) RequestPasswordReset(_ context.Context, email string) (string, error) {
	return f.message("password-reset", email)
}

func (f *fakeClient) ConfirmPasswordReset(_ context.Context, req models.PasswordResetConfirmation) (string, error) {
	return f.message("password-reset-confirm", req)
}

func apiError(status int, body string) error {
	return client.NewAPIError(status, []byte(body))
}

var unauthorized = apiError(http.StatusUnauthorized, `{"detail":"Invalid token."}`)

func setupStore(t *testing.T) (*SQLiteSessionStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, client.RunMigrations(context.Background(), db))
	return NewSQLiteSessionStore(db), db
}

func persisted(t *testing.T, store SessionStore) (string, *models.User) {
	t.Helper()
	token, user, err := store.Load(context.Background())
	require.NoError(t, err)
	return token, user
}
