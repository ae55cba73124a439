package domain

import "errors"

// Common errors
var (
	ErrMalformedToken   = errors.New("malformed access token")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrForbidden        = errors.New("access forbidden: switching organizations requires super admin")
	ErrSessionExpired   = errors.New("session expired")
)

// LoginError carries the server-provided message from a rejected login, so it
// can be shown to the user verbatim.
type LoginError struct {
	Message string
}

func (e *LoginError) Error() string {
	if e.Message == "" {
		return "login failed"
	}
	return e.Message
}
