package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/api/authv1"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// required returns an InvalidArgument status naming the first empty field.
func required(fields ...string) error {
	for i := 0; i+1 < len(fields); i += 2 {
		if fields[i+1] == "" {
			return status.Error(codes.InvalidArgument, fmt.Sprintf("%s is required", fields[i]))
		}
	}
	return nil
}

func toProfile(u *models.User) authv1.UserProfile {
	return authv1.UserProfile{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		EmailVerified: u.EmailVerified,
		DeviceTokens:  u.DeviceTokens,
	}
}

func toToken(t services.TokenInfo) authv1.Token {
	return authv1.Token{Token: t.Token, Expires: t.Expires.UTC()}
}

func toAuthTokens(t *services.AuthTokens) authv1.AuthTokens {
	return authv1.AuthTokens{Access: toToken(t.Access), Refresh: toToken(t.Refresh)}
}

func (s *GRPCServer) Register(ctx context.Context, req *authv1.RegisterRequest) (*authv1.RegisterResponse, error) {
	if err := required("email", req.Email, "password", req.Password); err != nil {
		return nil, err
	}

	sess, err := s.auth.Register(ctx, services.RegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "Register", err)
	}

	s.logger.Info(ctx, "Registered", "user_id", sess.User.ID)
	return &authv1.RegisterResponse{User: toProfile(sess.User), Tokens: toAuthTokens(sess.Tokens)}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *authv1.LoginRequest) (*authv1.LoginResponse, error) {
	if err := required("email", req.Email, "password", req.Password); err != nil {
		return nil, err
	}

	sess, err := s.auth.Login(ctx, req.Email, req.Password, req.DeviceToken)
	if err != nil {
		return nil, s.toStatus(ctx, "Login", err)
	}

	return &authv1.LoginResponse{User: toProfile(sess.User), Tokens: toAuthTokens(sess.Tokens)}, nil
}

func (s *GRPCServer) RefreshTokens(ctx context.Context, req *authv1.RefreshTokensRequest) (*authv1.RefreshTokensResponse, error) {
	if err := required("refresh_token", req.RefreshToken); err != nil {
		return nil, err
	}

	tokens, err := s.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "RefreshTokens", err)
	}

	return &authv1.RefreshTokensResponse{Tokens: toAuthTokens(tokens)}, nil
}

func (s *GRPCServer) Logout(ctx context.Context, req *authv1.LogoutRequest) (*authv1.Empty, error) {
	if err := required("refresh_token", req.RefreshToken); err != nil {
		return nil, err
	}

	if err := s.auth.Logout(ctx, req.RefreshToken, req.DeviceToken); err != nil {
		return nil, s.toStatus(ctx, "Logout", err)
	}
	return &authv1.Empty{}, nil
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, req *authv1.ForgotPasswordRequest) (*authv1.Empty, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}

	if err := s.auth.ForgotPassword(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, "ForgotPassword", err)
	}
	return &authv1.Empty{}, nil
}

func (s *GRPCServer) VerifyCode(ctx context.Context, req *authv1.VerifyCodeRequest) (*authv1.Empty, error) {
	if err := required("email", req.Email, "code", req.Code); err != nil {
		return nil, err
	}

	if err := s.auth.VerifyCode(ctx, req.Email, req.Code); err != nil {
		return nil, s.toStatus(ctx, "VerifyCode", err)
	}
	return &authv1.Empty{}, nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *authv1.ResetPasswordRequest) (*authv1.Empty, error) {
	if err := required("email", req.Email, "code", req.Code, "password", req.Password); err != nil {
		return nil, err
	}

	if err := s.auth.ResetPassword(ctx, req.Email, req.Code, req.Password); err != nil {
		return nil, s.toStatus(ctx, "ResetPassword", err)
	}
	return &authv1.Empty{}, nil
}

func (s *GRPCServer) SendVerificationEmail(ctx context.Context, req *authv1.SendVerificationEmailRequest) (*authv1.Empty, error) {
	if err := required("email", req.Email); err != nil {
		return nil, err
	}

	if err := s.auth.SendVerificationEmail(ctx, req.Email); err != nil {
		return nil, s.toStatus(ctx, "SendVerificationEmail", err)
	}
	return &authv1.Empty{}, nil
}

func (s *GRPCServer) VerifyEmail(ctx context.Context, req *authv1.VerifyEmailRequest) (*authv1.Empty, error) {
	if err := required("token", req.Token); err != nil {
		return nil, err
	}

	if err := s.auth.VerifyEmail(ctx, req.Token); err != nil {
		return nil, s.toStatus(ctx, "VerifyEmail", err)
	}
	return &authv1.Empty{}, nil
}

func (s *GRPCServer) UserInfo(ctx context.Context, _ *authv1.Empty) (*authv1.UserInfoResponse, error) {
	token, ok := accessTokenFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	info, err := s.auth.UserInfo(ctx, token)
	if err != nil {
		return nil, s.toStatus(ctx, "UserInfo", err)
	}

	resp := &authv1.UserInfoResponse{User: toProfile(info.User), Access: toToken(info.Access)}
	if info.Refresh != nil {
		r := toToken(*info.Refresh)
		resp.Refresh = &r
	}
	return resp, nil
}

func (s *GRPCServer) ChangePassword(ctx context.Context, req *authv1.ChangePasswordRequest) (*authv1.Empty, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	}
	if err := required("password", req.Password); err != nil {
		return nil, err
	}

	if err := s.auth.ChangePassword(ctx, userID, req.Password); err != nil {
		return nil, s.toStatus(ctx, "ChangePassword", err)
	}
	return &authv1.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *authv1.Empty) (*authv1.PingResponse, error) {
	return &authv1.PingResponse{Status: "OK"}, nil
}
