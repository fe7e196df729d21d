// Package credentials declares the repository contract for persisted
// credentials (refresh, password-reset and email-verify) and provides
// PostgreSQL and in-memory implementations.
package credentials

import (
	"context"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

// Repository stores non-access credentials.
//
// Lookups only ever match non-revoked rows. None of the lookups filter on
// ExpiresAt; callers compare it against their own clock.
type Repository interface {
	// Save inserts c and returns it with ID and CreatedAt populated.
	Save(ctx context.Context, c *models.Credential) (*models.Credential, error)

	// FindActive returns the non-revoked credential with the given value and
	// kind. An empty ownerID matches any owner. Returns
	// common.ErrCredentialNotFound when nothing matches.
	FindActive(ctx context.Context, value string, kind models.Kind, ownerID string) (*models.Credential, error)

	// FindLatestActiveByOwner returns the most recently created non-revoked
	// credential of kind for ownerID.
	FindLatestActiveByOwner(ctx context.Context, ownerID string, kind models.Kind) (*models.Credential, error)

	// DeleteAllOfKind removes every credential of kind for ownerID, revoked or
	// not, and reports how many rows went away.
	DeleteAllOfKind(ctx context.Context, ownerID string, kind models.Kind) (int64, error)

	// Delete removes credentials with the given value and kind and reports
	// how many rows went away. Deleting a missing value is not an error.
	Delete(ctx context.Context, value string, kind models.Kind) (int64, error)

	// Revoke flags the active credential as revoked and returns it. The row is
	// kept. A missing or already revoked credential yields
	// common.ErrCredentialNotFound.
	Revoke(ctx context.Context, value string, kind models.Kind) (*models.Credential, error)

	// DeleteExpired purges rows whose expiry is at or before the given instant.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
