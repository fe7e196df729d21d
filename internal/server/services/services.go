// Package services contains the server-side credential lifecycle: minting
// and verifying credentials (TokenIssuer, TokenVerifier) and the user-facing
// flows built on top of them (AuthService).
package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

// timeNow is a seam for tests; every expiry decision in this package reads it.
var timeNow = time.Now

// PasswordHasher is the opaque hash/compare capability used by the flows.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Mailer delivers out-of-band secrets. Delivery failures never fail the
// calling flow.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, user *models.User, token string) error
	SendResetEmail(ctx context.Context, email, code string) error
}

// Metrics receives credential lifecycle events.
type Metrics interface {
	CredentialIssued(kind models.Kind)
	CredentialsPurged(n int64)
}

type nopMetrics struct{}

func (nopMetrics) CredentialIssued(models.Kind) {}
func (nopMetrics) CredentialsPurged(int64)      {}

// TokenInfo is a credential value with its absolute expiry.
type TokenInfo struct {
	Token   string
	Expires time.Time
}

// AuthTokens bundles a short-lived access bearer and a persisted refresh bearer.
type AuthTokens struct {
	Access  TokenInfo
	Refresh TokenInfo
}
