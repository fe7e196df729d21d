// Package client talks to the credkeeper AuthService over gRPC and bootstraps
// the CLI's local SQLite store.
//
// GRPCClient keeps the current access/refresh pair in memory, attaches the
// access bearer to calls that need it and, when such a call is rejected as
// Unauthenticated, rotates the pair once through RefreshTokens and retries.
// Rotated pairs are reported to the listener set with OnTokens so callers can
// persist them.
//
// Status codes are mapped to sentinel errors (ErrUnavailable,
// ErrUnauthorized, ErrEmailNotVerified) or to the matching values of
// internal/common; match them with errors.Is.
package client
