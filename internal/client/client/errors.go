package client

import "errors"

var (
	ErrUnavailable      = errors.New("server unavailable")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrEmailNotVerified = errors.New("email is not verified")
	ErrNotSignedIn      = errors.New("not signed in")
)
