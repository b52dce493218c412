package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
)

// Auth endpoint paths, relative to the API base URL.
const (
	PathLogin                = "/auth/login/"
	PathRegister             = "/auth/register/"
	PathLogout               = "/auth/logout/"
	PathVerifyToken          = "/auth/verify-token/"
	PathVerifyEmail          = "/auth/verify-email/"
	PathResendVerification   = "/auth/resend-verification/"
	PathPasswordReset        = "/auth/password-reset/"
	PathPasswordResetConfirm = "/auth/password-reset-confirm/"
)

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	raw, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathLogin, Body: creds})
	if err != nil {
		return nil, err
	}
	return decodeInto[models.LoginResponse](raw)
}

func (c *HTTPClient) Register(ctx context.Context, reg models.Registration) (*models.RegisterResponse, error) {
	raw, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathRegister, Body: reg})
	if err != nil {
		return nil, err
	}
	return decodeInto[models.RegisterResponse](raw)
}

func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: PathLogout, Token: token})
	return err
}

func (c *HTTPClient) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	raw, err := c.Do(ctx, Request{Method: http.MethodGet, Path: PathVerifyToken, Token: token})
	if err != nil {
		return nil, err
	}
	resp, err := decodeInto[models.VerifyTokenResponse](raw)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) (string, error) {
	return c.postMessage(ctx, PathVerifyEmail, models.TokenRequest{Token: token})
}

func (c *HTTPClient) ResendVerification(ctx context.Context, email string) (string, error) {
	return c.postMessage(ctx, PathResendVerification, models.EmailRequest{Email: email})
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return c.postMessage(ctx, PathPasswordReset, models.EmailRequest{Email: email})
}

func (c *HTTPClient) ConfirmPasswordReset(ctx context.Context, req models.PasswordResetConfirmation) (string, error) {
	return c.postMessage(ctx, PathPasswordResetConfirm, req)
}

func (c *HTTPClient) postMessage(ctx context.Context, path string, body any) (string, error) {
	raw, err := c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
	if err != nil {
		return "", err
	}
	resp, err := decodeInto[models.MessageResponse](raw)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
