// Package users is the profile store the auth flows depend on: lookup by
// email or id and partial updates of the password hash, verification flag
// and device-token set.
package users

import (
	"context"

	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts user (with its device tokens) and returns it with ID and
	// CreatedAt populated. A duplicate email yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail and GetByID return common.ErrUserNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// Update applies patch to the user with the given id and returns the
	// resulting record.
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
}
