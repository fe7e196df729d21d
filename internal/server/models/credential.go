package models

import (
	"fmt"
	"time"
)

// Kind discriminates persisted credentials.
type Kind string

const (
	KindRefresh       Kind = "refresh"
	KindResetPassword Kind = "resetPassword"
	KindVerifyEmail   Kind = "verifyEmail"
)

// Valid reports whether k is one of the persisted credential kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindRefresh, KindResetPassword, KindVerifyEmail:
		return true
	}
	return false
}

// ParseKind converts a stored value back into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown credential kind %q", s)
	}
	return k, nil
}

// Credential is a persisted refresh, password-reset or email-verify
// credential. Value is a signed bearer for refresh and verifyEmail, and a
// short random code for resetPassword.
type Credential struct {
	ID        string
	Value     string
	OwnerID   string
	Kind      Kind
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// ExpiredAt reports whether the credential is no longer usable at now.
func (c *Credential) ExpiredAt(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
