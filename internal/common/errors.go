// Package common defines shared constants and sentinel errors used across
// client and server layers of credkeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrUserNotFound and ErrCredentialNotFound both match ErrorNotFound.
	ErrUserNotFound       = fmt.Errorf("user %w", ErrorNotFound)
	ErrCredentialNotFound = fmt.Errorf("credential %w", ErrorNotFound)

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument marks requests rejected before touching any store.
	ErrInvalidArgument = errors.New("invalid argument")

	// Login / account state errors.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrAccountLocked      = errors.New("email is not verified")
	ErrAlreadyVerified    = errors.New("email is already verified")
	ErrAlreadyExists      = errors.New("already exists")

	// Bearer decoding errors.
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
