// Package auth implements the credential codec: HS256 bearer tokens for the
// access, refresh and email-verify credentials, random human-typed codes for
// password reset, and password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TypeAccess marks access bearers. Persisted bearers carry their credential
// kind in the same claim.
const TypeAccess = "access"

// BearerClaims is the decoded content of a bearer token.
type BearerClaims struct {
	Subject   string
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

type bearerClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type verifyOptions struct {
	ignoreExpiration bool
	now              func() time.Time
}

// VerifyOption tunes VerifyBearer.
type VerifyOption func(*verifyOptions)

// WithoutExpiration skips the exp check. Signature and structure are still
// enforced; the caller is expected to check expiry against its own record.
func WithoutExpiration() VerifyOption {
	return func(o *verifyOptions) { o.ignoreExpiration = true }
}

// WithClock makes expiry checks use now instead of the wall clock.
func WithClock(now func() time.Time) VerifyOption {
	return func(o *verifyOptions) { o.now = now }
}

// BearerExpiry truncates t to the precision carried by the exp claim, so the
// value handed to callers equals what VerifyBearer later decodes.
func BearerExpiry(t time.Time) time.Time {
	return t.Truncate(time.Second)
}

// SignBearer returns an HS256 token carrying sub, typ, iat, exp and a random
// jti.
func SignBearer(subject, typ string, issuedAt, expiresAt time.Time, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, bearerClaims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(BearerExpiry(expiresAt)),
			ID:        uuid.NewString(),
		},
	})

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyBearer checks the signature and structure of tokenString and, unless
// WithoutExpiration is given, its expiry.
//
// Errors: common.ErrMalformedToken, common.ErrInvalidSignature,
// common.ErrTokenExpired, common.ErrInvalidToken.
func VerifyBearer(tokenString string, secret []byte, opts ...VerifyOption) (*BearerClaims, error) {
	var o verifyOptions
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if o.ignoreExpiration {
		parserOpts = append(parserOpts, jwt.WithoutClaimsValidation())
	} else {
		parserOpts = append(parserOpts, jwt.WithExpirationRequired())
	}
	if o.now != nil {
		parserOpts = append(parserOpts, jwt.WithTimeFunc(o.now))
	}

	claims := &bearerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Subject == "" || claims.Type == "" || claims.ExpiresAt == nil {
		return nil, common.ErrMalformedToken
	}

	out := &BearerClaims{
		Subject:   claims.Subject,
		Type:      claims.Type,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return common.ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	default:
		return common.ErrInvalidToken
	}
}
