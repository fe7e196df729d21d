// Package session persists the single signed-in session of the CLI.
package session

import (
	"context"

	"github.com/dmitrijs2005/credkeeper/internal/client/models"
)

// Repository stores at most one session. Load returns common.ErrorNotFound
// when nobody is signed in.
type Repository interface {
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}
