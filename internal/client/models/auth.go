package models

// AuthResult is the terminal outcome of a session operation. Session
// operations never return errors; failures are reported here with a
// human-readable Message.
type AuthResult struct {
	Success bool
	Message string
}

// RegisterResult extends AuthResult with the verification flag and the
// per-field errors reported by local validation or by the backend.
type RegisterResult struct {
	AuthResult
	RequiresVerification bool
	FieldErrors          map[string][]string
}

// FieldError returns the first message recorded for field, if any.
func (r RegisterResult) FieldError(field string) string {
	if msgs := r.FieldErrors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Registration is the payload of POST /auth/register/.
type Registration struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,contains=@"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
}

// Credentials is the payload of POST /auth/login/.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PasswordResetConfirmation is the payload of POST /auth/password-reset-confirm/.
type PasswordResetConfirmation struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// EmailRequest is the payload of the resend-verification and password-reset
// endpoints.
type EmailRequest struct {
	Email string `json:"email" validate:"required,contains=@"`
}

// TokenRequest is the payload of POST /auth/verify-email/.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// LoginResponse is the success body of login.
type LoginResponse struct {
	Token   string `json:"token"`
	User    *User  `json:"user"`
	Message string `json:"message"`
}

// RegisterResponse is the success body of register.
type RegisterResponse struct {
	Message              string `json:"message"`
	RequiresVerification bool   `json:"requires_verification"`
	User                 *User  `json:"user,omitempty"`
}

// MessageResponse is the success body of the remaining auth endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyTokenResponse is the success body of GET /auth/verify-token/.
type VerifyTokenResponse struct {
	User *User `json:"user"`
}
