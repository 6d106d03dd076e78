package session

import (
	"errors"
	"fmt"

	"github.com/coachboard/coachboard-client/internal/api"
)

// AuthErrorKind classifies why an authentication flow failed
type AuthErrorKind string

const (
	KindInvalidCredentials AuthErrorKind = "invalid_credentials"
	KindOAuthFailed        AuthErrorKind = "oauth_failed"
	KindRegistrationFailed AuthErrorKind = "registration_failed"
	KindNetwork            AuthErrorKind = "network"
)

const (
	msgLoginFailed        = "Login failed. Please check your credentials."
	msgRegistrationFailed = "Registration failed. Please try again."
	msgNoTokens           = "Authentication failed. No tokens received."
)

var (
	ErrNoSession      = errors.New("not logged in")
	ErrNoRefreshToken = errors.New("no refresh token stored")
)

// AuthError carries a user-presentable message alongside the underlying cause.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// authFailure prefers the backend's detail message and falls back to a generic one.
// Errors that never reached the backend are reported as network failures.
func authFailure(kind AuthErrorKind, fallback string, err error) *AuthError {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Detail
		if msg == "" {
			msg = fallback
		}
		return &AuthError{Kind: kind, Message: msg, Err: err}
	}
	return &AuthError{Kind: KindNetwork, Message: fallback, Err: err}
}
