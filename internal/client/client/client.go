package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
)

// Request describes one call to the backend. Path is relative to the API
// base URL. Body is sent as JSON unless it is already []byte or
// json.RawMessage. Token, when non-empty, is attached as the Authorization
// header.
type Request struct {
	Method string
	Path   string
	Token  string
	Body   any
	Header http.Header
}

// Client is the backend contract used by the session layer.
type Client interface {
	// Do performs req and returns the raw JSON body of a 2xx response
	// (nil for an empty body).
	Do(ctx context.Context, req Request) (json.RawMessage, error)

	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Register(ctx context.Context, reg models.Registration) (*models.RegisterResponse, error)
	Logout(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (string, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirmation) (string, error)
}
