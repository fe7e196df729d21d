package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
)

// TokenIssuer mints every credential kind with its configured lifetime.
// Reset codes and email-verify bearers are kept at one per user by deleting
// the previous ones before saving; the two calls are not atomic, so
// concurrent issuance may briefly leave two valid credentials.
type TokenIssuer struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	secret          []byte
	accessTTL       time.Duration
	refreshTTL      time.Duration
	resetCodeTTL    time.Duration
	resetCodeLength int
	verifyEmailTTL  time.Duration
	metrics         Metrics
}

func NewTokenIssuer(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, metrics Metrics) *TokenIssuer {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &TokenIssuer{
		db:              db,
		repomanager:     m,
		secret:          []byte(cfg.SecretKey),
		accessTTL:       cfg.AccessTokenValidityDuration,
		refreshTTL:      cfg.RefreshTokenValidityDuration,
		resetCodeTTL:    cfg.ResetCodeValidityDuration,
		resetCodeLength: cfg.ResetCodeLength,
		verifyEmailTTL:  cfg.VerifyEmailValidityDuration,
		metrics:         metrics,
	}
}

// IssueAuthPair mints an access bearer and a refresh bearer for user. Only
// the refresh bearer is persisted; there is no cap on how many a user holds.
func (i *TokenIssuer) IssueAuthPair(ctx context.Context, user *models.User) (*AuthTokens, error) {
	now := timeNow()

	accessExp := auth.BearerExpiry(now.Add(i.accessTTL))
	access, err := auth.SignBearer(user.ID, auth.TypeAccess, now, accessExp, i.secret)
	if err != nil {
		return nil, fmt.Errorf("error signing access token: %w", err)
	}

	refreshExp := auth.BearerExpiry(now.Add(i.refreshTTL))
	refresh, err := i.saveBearer(ctx, user.ID, models.KindRefresh, now, refreshExp)
	if err != nil {
		return nil, err
	}

	return &AuthTokens{
		Access:  TokenInfo{Token: access, Expires: accessExp},
		Refresh: TokenInfo{Token: refresh, Expires: refreshExp},
	}, nil
}

// IssueResetCode replaces any password-reset code of the user registered
// under email with a fresh one and returns it. The caller delivers it.
func (i *TokenIssuer) IssueResetCode(ctx context.Context, email string) (string, error) {
	user, err := i.repomanager.Users(i.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		return "", err
	}

	repo := i.repomanager.Credentials(i.db)
	if _, err := repo.DeleteAllOfKind(ctx, user.ID, models.KindResetPassword); err != nil {
		return "", fmt.Errorf("error deleting reset codes: %w", err)
	}

	code, err := auth.GenerateCode(i.resetCodeLength)
	if err != nil {
		return "", fmt.Errorf("error generating reset code: %w", err)
	}

	_, err = repo.Save(ctx, &models.Credential{
		Value:     code,
		OwnerID:   user.ID,
		Kind:      models.KindResetPassword,
		ExpiresAt: timeNow().Add(i.resetCodeTTL),
	})
	if err != nil {
		return "", fmt.Errorf("error saving reset code: %w", err)
	}

	i.metrics.CredentialIssued(models.KindResetPassword)
	return code, nil
}

// IssueVerifyEmailToken resolves email and delegates to
// IssueVerifyEmailTokenForUser.
func (i *TokenIssuer) IssueVerifyEmailToken(ctx context.Context, email string) (string, error) {
	user, err := i.repomanager.Users(i.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	return i.IssueVerifyEmailTokenForUser(ctx, user)
}

// IssueVerifyEmailTokenForUser replaces the user's email-verify bearer. It is
// a signed bearer rather than a short code since it travels as a link.
func (i *TokenIssuer) IssueVerifyEmailTokenForUser(ctx context.Context, user *models.User) (string, error) {
	if user.EmailVerified {
		return "", common.ErrAlreadyVerified
	}

	if _, err := i.repomanager.Credentials(i.db).DeleteAllOfKind(ctx, user.ID, models.KindVerifyEmail); err != nil {
		return "", fmt.Errorf("error deleting verify-email tokens: %w", err)
	}

	now := timeNow()
	return i.saveBearer(ctx, user.ID, models.KindVerifyEmail, now, auth.BearerExpiry(now.Add(i.verifyEmailTTL)))
}

func (i *TokenIssuer) saveBearer(ctx context.Context, ownerID string, kind models.Kind, issuedAt, expiresAt time.Time) (string, error) {
	token, err := auth.SignBearer(ownerID, string(kind), issuedAt, expiresAt, i.secret)
	if err != nil {
		return "", fmt.Errorf("error signing %s token: %w", kind, err)
	}

	_, err = i.repomanager.Credentials(i.db).Save(ctx, &models.Credential{
		Value:     token,
		OwnerID:   ownerID,
		Kind:      kind,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("error saving %s token: %w", kind, err)
	}

	i.metrics.CredentialIssued(kind)
	return token, nil
}
