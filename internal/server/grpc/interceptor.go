package grpc

import (
	"context"

	"github.com/dmitrijs2005/credkeeper/internal/api/authv1"
	"github.com/dmitrijs2005/credkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const (
	userIDKey      ctxKey = "userID"
	accessTokenKey ctxKey = "accessToken"
)

// protectedMethods require a valid access bearer in the access_token metadata.
var protectedMethods = map[string]struct{}{
	authv1.MethodUserInfo:       {},
	authv1.MethodChangePassword: {},
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if _, ok := protectedMethods[info.FullMethod]; !ok {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
			accessToken = values[0]
		}
	}
	if accessToken == "" {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	userID, err := s.auth.VerifyAccessToken(accessToken)
	if err != nil {
		s.logger.Debug(ctx, "access token rejected", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, accessTokenKey, accessToken)
	return handler(ctx, req)
}

func userIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok && v != ""
}

func accessTokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accessTokenKey).(string)
	return v, ok && v != ""
}
