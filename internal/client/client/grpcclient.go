package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/api/authv1"
	"github.com/dmitrijs2005/credkeeper/internal/client/models"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// protectedMethods carry the access bearer and are retried after a refresh.
var protectedMethods = map[string]struct{}{
	authv1.MethodUserInfo:       {},
	authv1.MethodChangePassword: {},
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      authv1.AuthServiceClient

	mu       sync.Mutex
	tokens   models.Tokens
	onTokens func(models.Tokens)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if _, ok := protectedMethods[method]; !ok {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	tokens := s.Tokens()
	err := invoker(withAccessToken(ctx, tokens.AccessToken), method, req, reply, cc, opts...)
	if status.Code(err) != codes.Unauthenticated || tokens.RefreshToken == "" {
		return err
	}

	if rerr := s.refresh(ctx, tokens.RefreshToken); rerr != nil {
		return err
	}

	return invoker(withAccessToken(ctx, s.Tokens().AccessToken), method, req, reply, cc, opts...)
}

func NewCredkeeperClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = authv1.NewAuthServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// OnTokens registers fn to be called with every pair the client obtains.
func (s *GRPCClient) OnTokens(fn func(models.Tokens)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTokens = fn
}

func (s *GRPCClient) SetTokens(t models.Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
}

func (s *GRPCClient) Tokens() models.Tokens {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens
}

func (s *GRPCClient) storeTokens(t authv1.AuthTokens) models.Tokens {
	tokens := models.Tokens{
		AccessToken:    t.Access.Token,
		AccessExpires:  t.Access.Expires,
		RefreshToken:   t.Refresh.Token,
		RefreshExpires: t.Refresh.Expires,
	}

	s.mu.Lock()
	s.tokens = tokens
	fn := s.onTokens
	s.mu.Unlock()

	if fn != nil {
		fn(tokens)
	}
	return tokens
}

func (s *GRPCClient) refresh(ctx context.Context, refreshToken string) error {
	resp, err := s.client.RefreshTokens(ctx, &authv1.RefreshTokensRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	s.storeTokens(resp.Tokens)
	return nil
}

func toSession(user authv1.UserProfile, t models.Tokens, device string) *models.Session {
	s := &models.Session{Email: user.Email, UserID: user.ID, DeviceToken: device}
	s.Apply(t)
	return s
}

func (s *GRPCClient) Register(ctx context.Context, email, name, password, deviceToken string) (*models.Session, error) {
	resp, err := s.client.Register(ctx, &authv1.RegisterRequest{Email: email, Name: name, Password: password, DeviceToken: deviceToken})
	if err != nil {
		return nil, s.mapError(err)
	}
	return toSession(resp.User, s.storeTokens(resp.Tokens), deviceToken), nil
}

func (s *GRPCClient) Login(ctx context.Context, email, password, deviceToken string) (*models.Session, error) {
	resp, err := s.client.Login(ctx, &authv1.LoginRequest{Email: email, Password: password, DeviceToken: deviceToken})
	if err != nil {
		return nil, s.mapError(err)
	}
	return toSession(resp.User, s.storeTokens(resp.Tokens), deviceToken), nil
}

// Refresh rotates the current pair.
func (s *GRPCClient) Refresh(ctx context.Context) error {
	refreshToken := s.Tokens().RefreshToken
	if refreshToken == "" {
		return ErrNotSignedIn
	}
	return s.mapError(s.refresh(ctx, refreshToken))
}

// Logout revokes the current refresh bearer and forgets the pair.
func (s *GRPCClient) Logout(ctx context.Context, deviceToken string) error {
	refreshToken := s.Tokens().RefreshToken
	if refreshToken == "" {
		return ErrNotSignedIn
	}

	if _, err := s.client.Logout(ctx, &authv1.LogoutRequest{RefreshToken: refreshToken, DeviceToken: deviceToken}); err != nil {
		return s.mapError(err)
	}

	s.SetTokens(models.Tokens{})
	return nil
}

func (s *GRPCClient) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.client.ForgotPassword(ctx, &authv1.ForgotPasswordRequest{Email: email})
	return s.mapError(err)
}

func (s *GRPCClient) VerifyCode(ctx context.Context, email, code string) error {
	_, err := s.client.VerifyCode(ctx, &authv1.VerifyCodeRequest{Email: email, Code: code})
	return s.mapError(err)
}

func (s *GRPCClient) ResetPassword(ctx context.Context, email, code, password string) error {
	_, err := s.client.ResetPassword(ctx, &authv1.ResetPasswordRequest{Email: email, Code: code, Password: password})
	return s.mapError(err)
}

func (s *GRPCClient) SendVerificationEmail(ctx context.Context, email string) error {
	_, err := s.client.SendVerificationEmail(ctx, &authv1.SendVerificationEmailRequest{Email: email})
	return s.mapError(err)
}

func (s *GRPCClient) VerifyEmail(ctx context.Context, token string) error {
	_, err := s.client.VerifyEmail(ctx, &authv1.VerifyEmailRequest{Token: token})
	return s.mapError(err)
}

func (s *GRPCClient) UserInfo(ctx context.Context) (*models.Profile, error) {
	resp, err := s.client.UserInfo(ctx, &authv1.Empty{})
	if err != nil {
		return nil, s.mapError(err)
	}

	p := &models.Profile{
		ID:            resp.User.ID,
		Email:         resp.User.Email,
		Name:          resp.User.Name,
		EmailVerified: resp.User.EmailVerified,
		DeviceTokens:  resp.User.DeviceTokens,
		AccessExpires: resp.Access.Expires,
	}
	if resp.Refresh != nil {
		exp := resp.Refresh.Expires
		p.RefreshExpires = &exp
	}
	return p, nil
}

func (s *GRPCClient) ChangePassword(ctx context.Context, password string) error {
	_, err := s.client.ChangePassword(ctx, &authv1.ChangePasswordRequest{Password: password})
	return s.mapError(err)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	resp, err := s.client.Ping(ctx, &authv1.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.FailedPrecondition:
		return ErrEmailNotVerified
	case codes.NotFound:
		return fmt.Errorf("%w: %s", common.ErrorNotFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", common.ErrInvalidArgument, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
