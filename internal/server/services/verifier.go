package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
)

// TokenVerifier checks presented credentials against the codec and, for
// persisted kinds, the credential store.
type TokenVerifier struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secret      []byte
}

func NewTokenVerifier(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenVerifier {
	return &TokenVerifier{db: db, repomanager: m, secret: []byte(cfg.SecretKey)}
}

// VerifyBearerOfKind decodes token ignoring its embedded expiry, then
// requires an active, unexpired store record of kind for the decoded subject.
//
// Codec failures (common.ErrMalformedToken, common.ErrInvalidSignature) come
// back as-is; a well-formed bearer without a usable record yields
// common.ErrCredentialNotFound.
func (v *TokenVerifier) VerifyBearerOfKind(ctx context.Context, token string, kind models.Kind) (*models.Credential, error) {
	claims, err := auth.VerifyBearer(token, v.secret, auth.WithoutExpiration())
	if err != nil {
		return nil, err
	}
	if claims.Type != string(kind) {
		return nil, common.ErrCredentialNotFound
	}

	cred, err := v.repomanager.Credentials(v.db).FindActive(ctx, token, kind, claims.Subject)
	if err != nil {
		return nil, err
	}
	if cred.ExpiredAt(timeNow()) {
		return nil, common.ErrCredentialNotFound
	}
	return cred, nil
}

// VerifyCode checks a human-typed code of kind for the user registered under
// email. It does not consume the code. An expired record is reported exactly
// like a missing one.
func (v *TokenVerifier) VerifyCode(ctx context.Context, email string, kind models.Kind, code string) (*models.Credential, error) {
	user, err := v.repomanager.Users(v.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	cred, err := v.repomanager.Credentials(v.db).FindActive(ctx, code, kind, user.ID)
	if err != nil {
		return nil, err
	}
	if cred.ExpiredAt(timeNow()) {
		return nil, common.ErrCredentialNotFound
	}
	return cred, nil
}

// VerifyAccessToken validates an access bearer (signature, typ and strict
// expiry, no store lookup) and returns its claims. Refresh and email-verify
// bearers yield common.ErrInvalidToken.
func (v *TokenVerifier) VerifyAccessToken(token string) (*auth.BearerClaims, error) {
	claims, err := auth.VerifyBearer(token, v.secret, auth.WithClock(timeNow))
	if err != nil {
		return nil, err
	}
	if claims.Type != auth.TypeAccess {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
