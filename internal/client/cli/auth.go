package cli

import (
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/common"
)

// getSimpleText and getPassword point to the interactive input helpers and
// can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// registration prompts in form order, with the payload key each one fills.
var registrationFields = []struct {
	key    string
	prompt string
}{
	{"username", "Username"},
	{"email", "Email"},
	{"first_name", "First name"},
	{"last_name", "Last name"},
	{"password", "Password"},
	{"password_confirm", "Confirm password"},
}

func isInputClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// textArg returns args[i] or prompts for it.
func (a *App) textArg(args []string, i int, prompt string) (string, error) {
	if v := arg(args, i); v != "" {
		return v, nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// secret prompts for a password and returns it as a string, wiping the
// byte buffer.
func (a *App) secret(prompt string) (string, error) {
	pw, err := getPassword(a.reader, prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

func (a *App) report(res models.AuthResult) {
	if res.Success {
		a.println(res.Message)
		return
	}
	a.printf("Error: %s\n", res.Message)
}

// Login signs in with the given or prompted username and a prompted
// password, then loads every collection.
func (a *App) Login(ctx context.Context, args []string) error {
	username, err := a.textArg(args, 0, "Username")
	if err != nil {
		return err
	}
	password, err := a.secret("Password")
	if err != nil {
		return err
	}

	res := a.session.Login(ctx, username, password)
	if !res.Success {
		a.printf("Login failed: %s\n", res.Message)
		return nil
	}

	a.println(res.Message)
	a.printf("Signed in as %s.\n", a.session.User().DisplayName())
	a.loadAll(ctx)
	return nil
}

// Register creates an account. Field errors are listed per field.
func (a *App) Register(ctx context.Context, _ []string) error {
	values := make(map[string]string, len(registrationFields))
	for _, f := range registrationFields {
		var (
			v   string
			err error
		)
		if f.key == "password" || f.key == "password_confirm" {
			v, err = a.secret(f.prompt)
		} else {
			v, err = getSimpleText(a.reader, f.prompt, a.out)
		}
		if err != nil {
			return err
		}
		values[f.key] = v
	}

	res := a.session.Register(ctx, models.Registration{
		Username:        values["username"],
		Email:           values["email"],
		Password:        values["password"],
		PasswordConfirm: values["password_confirm"],
		FirstName:       values["first_name"],
		LastName:        values["last_name"],
	})

	if !res.Success {
		a.printf("Registration failed: %s\n", res.Message)
		for _, f := range registrationFields {
			if msg := res.FieldError(f.key); msg != "" {
				a.printf("  %s: %s\n", f.prompt, msg)
			}
		}
		return nil
	}

	a.println(res.Message)
	if res.RequiresVerification {
		a.println("Check your inbox, then run 'verify-email <token>'.")
	} else {
		a.println("You can now log in.")
	}
	return nil
}

// Logout ends the session locally and on the server.
func (a *App) Logout(ctx context.Context, _ []string) error {
	a.session.Logout(ctx)
	a.println("Signed out.")
	return nil
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(_ context.Context, _ []string) error {
	u := a.session.User()
	if u == nil {
		a.println("Not signed in.")
		return nil
	}
	a.printf("%s (%s)\n", u.DisplayName(), u.Username)
	if u.Email != "" {
		a.printf("Email: %s\n", u.Email)
	}
	return nil
}

// VerifyEmail confirms an address with the token from the verification
// mail. On failure it offers to send a new one.
func (a *App) VerifyEmail(ctx context.Context, args []string) error {
	token, err := a.textArg(args, 0, "Verification token")
	if err != nil {
		return err
	}

	res := a.session.VerifyEmail(ctx, token)
	a.report(res)
	if res.Success {
		a.println("You can now log in.")
		return nil
	}

	if !Confirm(a.reader, "Send a new verification email?", a.out) {
		return nil
	}
	return a.ResendVerification(ctx, nil)
}

func (a *App) ResendVerification(ctx context.Context, args []string) error {
	email, err := a.textArg(args, 0, "Email")
	if err != nil {
		return err
	}
	a.report(a.session.ResendVerification(ctx, email))
	return nil
}

func (a *App) ForgotPassword(ctx context.Context, args []string) error {
	email, err := a.textArg(args, 0, "Email")
	if err != nil {
		return err
	}
	a.report(a.session.RequestPasswordReset(ctx, email))
	return nil
}

// ResetPassword sets a new password using the uid and token of a reset
// link. A link missing either part is rejected before asking for the
// password.
func (a *App) ResetPassword(ctx context.Context, args []string) error {
	uid, err := a.textArg(args, 0, "Link uid")
	if err != nil {
		return err
	}
	token, err := a.textArg(args, 1, "Link token")
	if err != nil {
		return err
	}

	var password, confirm string
	if uid != "" && token != "" {
		if password, err = a.secret("New password"); err != nil {
			return err
		}
		if confirm, err = a.secret("Confirm password"); err != nil {
			return err
		}
	}

	res := a.session.ConfirmPasswordReset(ctx, uid, token, password, confirm)
	a.report(res)
	if res.Success {
		a.println("You can now log in with the new password.")
	}
	return nil
}
