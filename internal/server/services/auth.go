package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/config"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
)

// AuthService composes TokenIssuer and TokenVerifier into the user-facing
// flows. Session state is implicit in which credentials exist.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *TokenIssuer
	verifier    *TokenVerifier
	hasher      PasswordHasher
	mailer      Mailer
	metrics     Metrics
	log         logging.Logger
}

func NewAuthService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	cfg *config.Config,
	hasher PasswordHasher,
	mailer Mailer,
	metrics Metrics,
	log logging.Logger,
) *AuthService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		issuer:      NewTokenIssuer(db, m, cfg, metrics),
		verifier:    NewTokenVerifier(db, m, cfg),
		hasher:      hasher,
		mailer:      mailer,
		metrics:     metrics,
		log:         log.With("module", "auth"),
	}
}

// Issuer and Verifier expose the underlying components.
func (s *AuthService) Issuer() *TokenIssuer     { return s.issuer }
func (s *AuthService) Verifier() *TokenVerifier { return s.verifier }

type RegisterInput struct {
	Email       string
	Name        string
	Password    string
	DeviceToken string
}

// Session is what a successful Register or Login hands back.
type Session struct {
	User   *models.User
	Tokens *AuthTokens
}

// Register creates an unverified account, mails an email-verify bearer and
// returns a fresh auth pair.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	email := common.NormalizeEmail(in.Email)
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: malformed email", common.ErrInvalidArgument)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Name: in.Name, PasswordHash: hash}
	if in.DeviceToken != "" {
		user.DeviceTokens = []string{in.DeviceToken}
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.issuer.IssueVerifyEmailTokenForUser(ctx, user)
	if err != nil {
		return nil, err
	}
	s.sendVerificationEmail(ctx, user, token)

	tokens, err := s.issuer.IssueAuthPair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return &Session{User: user, Tokens: tokens}, nil
}

// Login checks the password, then the verification flag, and issues a pair.
// A non-empty deviceToken is added to the user's device set.
func (s *AuthService) Login(ctx context.Context, email, password, deviceToken string) (*Session, error) {
	users := s.repomanager.Users(s.db)

	user, err := users.GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return nil, common.ErrAccountLocked
	}

	tokens, err := s.issuer.IssueAuthPair(ctx, user)
	if err != nil {
		return nil, err
	}

	if deviceToken != "" && !user.HasDeviceToken(deviceToken) {
		user, err = users.Update(ctx, user.ID, models.UserPatch{AddDeviceTokens: []string{deviceToken}})
		if err != nil {
			return nil, fmt.Errorf("error registering device token: %w", err)
		}
	}

	return &Session{User: user, Tokens: tokens}, nil
}

// Refresh rotates a refresh bearer: the presented one is deleted and a new
// pair is issued. Every failure is reported as common.ErrorUnauthorized so
// callers cannot tell expired, revoked and forged tokens apart.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	tokens, err := s.refresh(ctx, refreshToken)
	if err != nil {
		s.log.Debug(ctx, "refresh rejected", "error", err)
		return nil, common.ErrorUnauthorized
	}
	return tokens, nil
}

func (s *AuthService) refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	cred, err := s.verifier.VerifyBearerOfKind(ctx, refreshToken, models.KindRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, cred.OwnerID)
	if err != nil {
		return nil, err
	}

	n, err := s.repomanager.Credentials(s.db).Delete(ctx, refreshToken, models.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("error deleting refresh token: %w", err)
	}
	// a concurrent refresh already consumed it
	if n == 0 {
		return nil, common.ErrCredentialNotFound
	}

	return s.issuer.IssueAuthPair(ctx, user)
}

// ForgotPassword issues a reset code and mails it. An unknown email surfaces
// as common.ErrUserNotFound; the transport decides whether to mask it.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = common.NormalizeEmail(email)

	code, err := s.issuer.IssueResetCode(ctx, email)
	if err != nil {
		return err
	}

	if err := s.mailer.SendResetEmail(ctx, email, code); err != nil {
		s.log.Warn(ctx, "reset email not delivered", "error", err)
	}
	return nil
}

// VerifyCode confirms a reset code without consuming it.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) error {
	_, err := s.verifier.VerifyCode(ctx, email, models.KindResetPassword, code)
	return err
}

// ResetPassword re-verifies the code, removes every reset code of the user
// and stores the new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	cred, err := s.verifier.VerifyCode(ctx, email, models.KindResetPassword, code)
	if err != nil {
		return err
	}

	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := s.repomanager.Credentials(s.db).DeleteAllOfKind(ctx, cred.OwnerID, models.KindResetPassword); err != nil {
		return fmt.Errorf("error deleting reset codes: %w", err)
	}

	if _, err := s.repomanager.Users(s.db).Update(ctx, cred.OwnerID, models.UserPatch{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	s.log.Info(ctx, "password reset", "user_id", cred.OwnerID)
	return nil
}

// Logout unregisters deviceToken and revokes the refresh credential. The
// revoked row is kept. An unknown or already revoked value yields
// common.ErrCredentialNotFound.
func (s *AuthService) Logout(ctx context.Context, refreshToken, deviceToken string) error {
	creds := s.repomanager.Credentials(s.db)

	cred, err := creds.FindActive(ctx, refreshToken, models.KindRefresh, "")
	if err != nil {
		return err
	}

	if deviceToken != "" {
		_, err := s.repomanager.Users(s.db).Update(ctx, cred.OwnerID, models.UserPatch{RemoveDeviceTokens: []string{deviceToken}})
		switch {
		case errors.Is(err, common.ErrUserNotFound):
			s.log.Warn(ctx, "logout for missing user", "user_id", cred.OwnerID)
		case err != nil:
			return fmt.Errorf("error removing device token: %w", err)
		}
	}

	if _, err := creds.Revoke(ctx, refreshToken, models.KindRefresh); err != nil {
		return err
	}
	return nil
}

// SendVerificationEmail reissues the email-verify bearer for email and mails it.
func (s *AuthService) SendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		return err
	}

	token, err := s.issuer.IssueVerifyEmailTokenForUser(ctx, user)
	if err != nil {
		return err
	}

	s.sendVerificationEmail(ctx, user, token)
	return nil
}

// VerifyEmail consumes an email-verify bearer and marks the owner verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	cred, err := s.verifier.VerifyBearerOfKind(ctx, token, models.KindVerifyEmail)
	if err != nil {
		return err
	}

	if _, err := s.repomanager.Credentials(s.db).DeleteAllOfKind(ctx, cred.OwnerID, models.KindVerifyEmail); err != nil {
		return fmt.Errorf("error deleting verify-email tokens: %w", err)
	}

	verified := true
	if _, err := s.repomanager.Users(s.db).Update(ctx, cred.OwnerID, models.UserPatch{EmailVerified: &verified}); err != nil {
		return fmt.Errorf("error marking email verified: %w", err)
	}
	return nil
}

type UserInfo struct {
	User    *models.User
	Access  TokenInfo
	Refresh *TokenInfo // nil when the user holds no active refresh credential
}

// UserInfo returns the profile behind an access bearer together with that
// bearer and the user's most recent active refresh credential.
func (s *AuthService) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	claims, err := s.verifier.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	info := &UserInfo{User: user, Access: TokenInfo{Token: accessToken, Expires: claims.ExpiresAt}}

	cred, err := s.repomanager.Credentials(s.db).FindLatestActiveByOwner(ctx, user.ID, models.KindRefresh)
	switch {
	case errors.Is(err, common.ErrorNotFound):
	case err != nil:
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	case !cred.ExpiredAt(timeNow()):
		info.Refresh = &TokenInfo{Token: cred.Value, Expires: cred.ExpiresAt}
	}

	return info, nil
}

// ChangePassword stores a new hash for an authenticated user.
func (s *AuthService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.repomanager.Users(s.db).Update(ctx, userID, models.UserPatch{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	return nil
}

// VerifyAccessToken returns the user id carried by a valid access bearer.
func (s *AuthService) VerifyAccessToken(token string) (string, error) {
	claims, err := s.verifier.VerifyAccessToken(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password must not be empty", common.ErrInvalidArgument)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return hash, nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *models.User, token string) {
	if err := s.mailer.SendVerificationEmail(ctx, user, token); err != nil {
		s.log.Warn(ctx, "verification email not delivered", "user_id", user.ID, "error", err)
	}
}
