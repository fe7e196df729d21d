// Package services contains application services for the credkeeper CLI.
// AuthService drives the remote credential flows and keeps the local session
// store in step with the pair the client currently holds.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/client/client"
	"github.com/dmitrijs2005/credkeeper/internal/client/models"
	"github.com/dmitrijs2005/credkeeper/internal/client/repositories/session"
	"github.com/dmitrijs2005/credkeeper/internal/common"
)

// Client is the remote API used by AuthService.
type Client interface {
	Close() error
	SetTokens(t models.Tokens)
	OnTokens(fn func(models.Tokens))
	Register(ctx context.Context, email, name, password, deviceToken string) (*models.Session, error)
	Login(ctx context.Context, email, password, deviceToken string) (*models.Session, error)
	Refresh(ctx context.Context) error
	Logout(ctx context.Context, deviceToken string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, password string) error
	SendVerificationEmail(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	UserInfo(ctx context.Context) (*models.Profile, error)
	ChangePassword(ctx context.Context, password string) error
	Ping(ctx context.Context) error
}

// AuthService lists the operations the CLI exposes.
type AuthService interface {
	Restore(ctx context.Context) (*models.Session, error)
	Register(ctx context.Context, email, name string, password []byte) error
	Login(ctx context.Context, email string, password []byte) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code string, password []byte) error
	SendVerificationEmail(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	UserInfo(ctx context.Context) (*models.Profile, error)
	ChangePassword(ctx context.Context, password []byte) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client      Client
	sessions    session.Repository
	deviceToken string
	current     *models.Session
}

// NewAuthService binds the API client to the session store. Every pair the
// client obtains, including ones from transparent refreshes, is persisted.
func NewAuthService(c Client, sessions session.Repository, deviceToken string) AuthService {
	a := &authService{client: c, sessions: sessions, deviceToken: deviceToken}
	c.OnTokens(a.persistTokens)
	return a
}

func (a *authService) persistTokens(t models.Tokens) {
	if a.current == nil {
		return
	}
	a.current.Apply(t)
	// Errors here only cost a re-login on the next run.
	_ = a.sessions.Save(context.Background(), a.current)
}

// Restore loads the saved session, if any, into the client.
func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, client.ErrNotSignedIn
		}
		return nil, err
	}

	a.current = s
	a.client.SetTokens(models.Tokens{
		AccessToken:    s.AccessToken,
		AccessExpires:  s.AccessExpires,
		RefreshToken:   s.RefreshToken,
		RefreshExpires: s.RefreshExpires,
	})
	return s, nil
}

func (a *authService) start(ctx context.Context, s *models.Session) error {
	a.current = s
	if err := a.sessions.Save(ctx, s); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// Register creates the account and signs in with the returned pair. The
// server keeps login closed until the email is verified, but the pair is
// usable for UserInfo right away.
func (a *authService) Register(ctx context.Context, email, name string, password []byte) error {
	s, err := a.client.Register(ctx, email, name, string(password), a.deviceToken)
	if err != nil {
		return err
	}
	return a.start(ctx, s)
}

func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	s, err := a.client.Login(ctx, email, string(password), a.deviceToken)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	return a.start(ctx, s)
}

func (a *authService) Refresh(ctx context.Context) error {
	if a.current == nil {
		return client.ErrNotSignedIn
	}
	return a.client.Refresh(ctx)
}

// Logout revokes the session on the server and forgets it locally. An
// already revoked session is still cleared locally.
func (a *authService) Logout(ctx context.Context) error {
	if a.current == nil {
		return client.ErrNotSignedIn
	}

	err := a.client.Logout(ctx, a.current.DeviceToken)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	a.current = nil
	return a.sessions.Clear(ctx)
}

func (a *authService) ForgotPassword(ctx context.Context, email string) error {
	return a.client.ForgotPassword(ctx, email)
}

func (a *authService) VerifyCode(ctx context.Context, email, code string) error {
	return a.client.VerifyCode(ctx, email, code)
}

func (a *authService) ResetPassword(ctx context.Context, email, code string, password []byte) error {
	return a.client.ResetPassword(ctx, email, code, string(password))
}

func (a *authService) SendVerificationEmail(ctx context.Context, email string) error {
	return a.client.SendVerificationEmail(ctx, email)
}

func (a *authService) VerifyEmail(ctx context.Context, token string) error {
	return a.client.VerifyEmail(ctx, token)
}

func (a *authService) UserInfo(ctx context.Context) (*models.Profile, error) {
	if a.current == nil {
		return nil, client.ErrNotSignedIn
	}
	return a.client.UserInfo(ctx)
}

func (a *authService) ChangePassword(ctx context.Context, password []byte) error {
	if a.current == nil {
		return client.ErrNotSignedIn
	}
	return a.client.ChangePassword(ctx, string(password))
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
