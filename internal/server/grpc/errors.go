package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus maps service errors onto gRPC codes. Anything unrecognised is
// logged and reported as a bare Internal error.
func (s *GRPCServer) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrMalformedToken),
		errors.Is(err, common.ErrInvalidSignature),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrAccountLocked):
		return status.Error(codes.FailedPrecondition, common.ErrAccountLocked.Error())
	case errors.Is(err, common.ErrUserNotFound):
		return status.Error(codes.NotFound, common.ErrUserNotFound.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, common.ErrCredentialNotFound.Error())
	case errors.Is(err, common.ErrAlreadyVerified):
		return status.Error(codes.AlreadyExists, common.ErrAlreadyVerified.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, "email already registered")
	default:
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
