package auth

import "github.com/tendant/portfolio-content/pkg/portfolio"

// Error is an authentication failure. Reason is a stable machine-readable
// code; every Error unwraps to portfolio.ErrUnauthorized.
type Error struct {
	Reason  string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return portfolio.ErrUnauthorized }

var (
	ErrNoToken            = &Error{Reason: "no_token", Message: "No token provided"}
	ErrTokenExpired       = &Error{Reason: "token_expired", Message: "Token has expired"}
	ErrTokenInvalid       = &Error{Reason: "token_invalid", Message: "Invalid token"}
	ErrSubjectGone        = &Error{Reason: "user_not_found", Message: "User no longer exists"}
	ErrInvalidCredentials = &Error{Reason: "invalid_credentials", Message: "Invalid email or password"}
)
