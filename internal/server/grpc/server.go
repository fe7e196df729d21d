// Package grpc exposes services.AuthService as the credkeeper.v1.AuthService
// gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/credkeeper/internal/api/authv1"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"
	"google.golang.org/grpc"
)

// AuthService is the subset of services.AuthService the handlers call.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password, deviceToken string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*services.AuthTokens, error)
	Logout(ctx context.Context, refreshToken, deviceToken string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	SendVerificationEmail(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, token string) error
	UserInfo(ctx context.Context, accessToken string) (*services.UserInfo, error)
	ChangePassword(ctx context.Context, userID, newPassword string) error
	VerifyAccessToken(token string) (string, error)
}

type GRPCServer struct {
	authv1.UnimplementedAuthServiceServer
	address      string
	auth         AuthService
	logger       logging.Logger
	interceptors []grpc.UnaryServerInterceptor
}

// NewGRPCServer builds the server. Extra interceptors run before the
// access-token check.
func NewGRPCServer(address string, l logging.Logger, auth AuthService, interceptors ...grpc.UnaryServerInterceptor) *GRPCServer {
	return &GRPCServer{
		address:      address,
		logger:       l.With("module", "grpc_server"),
		auth:         auth,
		interceptors: interceptors,
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	chain := append(append([]grpc.UnaryServerInterceptor{}, s.interceptors...), s.accessTokenInterceptor)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(chain...))
	authv1.RegisterAuthServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
