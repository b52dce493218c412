package fakeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/common"
)

const minPasswordLen = 8

// Response messages of the auth endpoints.
const (
	MsgLoginOK           = "Login successful"
	MsgBadCredentials    = "Unable to log in with provided credentials."
	MsgNotVerified       = "Please verify your email address before logging in."
	MsgRegistered        = "Registration successful."
	MsgRegisteredVerify  = "Registration successful. Please check your email to verify your account."
	MsgLoggedOut         = "Successfully logged out."
	MsgEmailVerified     = "Email verified successfully. You can now log in."
	MsgBadVerification   = "Invalid or expired verification token."
	MsgVerificationSent  = "Verification email sent."
	MsgAlreadyVerified   = "This email address is already verified."
	MsgResetSent         = "If an account with that email exists, a password reset link has been sent."
	MsgPasswordReset     = "Password has been reset successfully."
	MsgBadResetLink      = "Invalid or expired password reset link."
	MsgPasswordMismatch  = "Passwords do not match."
	MsgPasswordTooShort  = "This password is too short. It must contain at least 8 characters."
	MsgUsernameTaken     = "A user with that username already exists."
	MsgEmailTaken        = "A user with that email already exists."
	MsgInvalidEmail      = "Enter a valid email address."
	MsgUnknownEmail      = "No account is registered with this email address."
	MsgVerificationToken = "Verification token is required."
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if !decodeJSON(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.require("username", in.Username)
	errs.require("password", in.Password)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.mu.Lock()
	acc := s.accounts[in.Username]
	var (
		hash     []byte
		verified bool
	)
	if acc != nil {
		hash, verified = acc.hash, acc.verified
	}
	s.mu.Unlock()

	if acc == nil || !checkPassword(hash, in.Password) {
		writeJSON(w, http.StatusBadRequest, nonField(MsgBadCredentials))
		return
	}
	if !verified {
		writeJSON(w, http.StatusBadRequest, nonField(MsgNotVerified))
		return
	}

	token, jti, err := GenerateToken(acc.profile().ID.String(), s.secret, s.tokenTTL)
	if err != nil {
		s.log.Error(r.Context(), "token signing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, detail("Internal server error."))
		return
	}

	s.mu.Lock()
	s.active[jti] = struct{}{}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:   token,
		User:    acc.profile(),
		Message: MsgLoginOK,
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.Registration
	if !decodeJSON(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.require("username", in.Username)
	errs.require("email", in.Email)
	errs.require("password", in.Password)
	errs.require("password_confirm", in.PasswordConfirm)
	errs.require("first_name", in.FirstName)
	errs.require("last_name", in.LastName)
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		errs.add("email", MsgInvalidEmail)
	}
	if in.Password != "" && len(in.Password) < minPasswordLen {
		errs.add("password", MsgPasswordTooShort)
	}
	if in.PasswordConfirm != "" && in.Password != in.PasswordConfirm {
		errs.add("password_confirm", MsgPasswordMismatch)
	}

	s.mu.Lock()
	if _, taken := s.accounts[in.Username]; taken && in.Username != "" {
		errs.add("username", MsgUsernameTaken)
	}
	if in.Email != "" && s.accountByEmail(in.Email) != nil {
		errs.add("email", MsgEmailTaken)
	}
	s.mu.Unlock()

	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		s.log.Error(r.Context(), "password hashing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, detail("Internal server error."))
		return
	}

	s.mu.Lock()
	acc := s.addAccount(in.Username, in.Email, in.FirstName, in.LastName, hash)
	msg := MsgRegistered
	if s.verify {
		s.verifyTok[uuid.NewString()] = acc.username
		msg = MsgRegisteredVerify
	} else {
		acc.verified = true
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Message:              msg,
		RequiresVerification: s.verify,
		User:                 acc.profile(),
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())

	s.mu.Lock()
	delete(s.active, p.jti)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: MsgLoggedOut})
}

func (s *Server) verifyToken(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, models.VerifyTokenResponse{User: p.acc.profile()})
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var in models.TokenRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Token == "" {
		writeJSON(w, http.StatusBadRequest, detail(MsgVerificationToken))
		return
	}

	s.mu.Lock()
	username, ok := s.verifyTok[in.Token]
	if ok {
		delete(s.verifyTok, in.Token)
		if acc := s.accounts[username]; acc != nil {
			acc.verified = true
		}
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusBadRequest, detail(MsgBadVerification))
		return
	}
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: MsgEmailVerified})
}

func (s *Server) resendVerification(w http.ResponseWriter, r *http.Request) {
	var in models.EmailRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.require("email", in.Email)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc := s.accountByEmail(in.Email)
	switch {
	case acc == nil:
		writeJSON(w, http.StatusBadRequest, errorBody{"email": []string{MsgUnknownEmail}})
		return
	case acc.verified:
		writeJSON(w, http.StatusBadRequest, detail(MsgAlreadyVerified))
		return
	}

	for tok, u := range s.verifyTok {
		if u == acc.username {
			delete(s.verifyTok, tok)
		}
	}
	s.verifyTok[uuid.NewString()] = acc.username

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: MsgVerificationSent})
}

func (s *Server) passwordReset(w http.ResponseWriter, r *http.Request) {
	var in models.EmailRequest
	if !decodeJSON(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.require("email", in.Email)
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	token, err := common.MakeRandHexString(20)
	if err != nil {
		s.log.Error(r.Context(), "reset token generation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, detail("Internal server error."))
		return
	}

	s.mu.Lock()
	if acc := s.accountByEmail(in.Email); acc != nil {
		s.resets[strings.ToLower(acc.email)] = resetLink{
			uid:   strconv.Itoa(acc.id),
			token: token,
		}
	}
	s.mu.Unlock()

	// Unknown addresses get the same answer.
	writeJSON(w, http.StatusOK, models.MessageResponse{Message: MsgResetSent})
}

func (s *Server) passwordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var in models.PasswordResetConfirmation
	if !decodeJSON(w, r, &in) {
		return
	}

	errs := fieldErrors{}
	errs.require("new_password", in.NewPassword)
	errs.require("confirm_password", in.ConfirmPassword)
	if in.NewPassword != "" && len(in.NewPassword) < minPasswordLen {
		errs.add("new_password", MsgPasswordTooShort)
	}
	if in.ConfirmPassword != "" && in.NewPassword != in.ConfirmPassword {
		errs.add("confirm_password", MsgPasswordMismatch)
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	s.mu.Lock()
	var (
		acc *account
		key string
	)
	for email, l := range s.resets {
		if l.uid == in.UID && l.token == in.Token {
			acc, key = s.accountByID(l.uid), email
			break
		}
	}
	s.mu.Unlock()

	if acc == nil {
		writeJSON(w, http.StatusBadRequest, detail(MsgBadResetLink))
		return
	}

	hash, err := hashPassword(in.NewPassword)
	if err != nil {
		s.log.Error(r.Context(), "password hashing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, detail("Internal server error."))
		return
	}

	s.mu.Lock()
	acc.hash = hash
	delete(s.resets, key)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.MessageResponse{Message: MsgPasswordReset})
}
