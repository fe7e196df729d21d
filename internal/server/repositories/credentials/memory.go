package credentials

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps credentials in process memory. It backs the
// "memory" storage mode and the service tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	rows  []*models.Credential
	clock func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{clock: time.Now}
}

func (r *MemoryRepository) Save(_ context.Context, c *models.Credential) (*models.Credential, error) {
	saved := *c
	saved.ID = uuid.NewString()
	saved.CreatedAt = r.clock()

	r.mu.Lock()
	r.rows = append(r.rows, &saved)
	r.mu.Unlock()

	out := saved
	return &out, nil
}

// latest walks rows newest first and returns a copy of the first match.
func (r *MemoryRepository) latest(match func(*models.Credential) bool) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.rows) - 1; i >= 0; i-- {
		if c := r.rows[i]; match(c) {
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrCredentialNotFound
}

func (r *MemoryRepository) FindActive(_ context.Context, value string, kind models.Kind, ownerID string) (*models.Credential, error) {
	return r.latest(func(c *models.Credential) bool {
		return !c.Revoked && c.Value == value && c.Kind == kind && (ownerID == "" || c.OwnerID == ownerID)
	})
}

func (r *MemoryRepository) FindLatestActiveByOwner(_ context.Context, ownerID string, kind models.Kind) (*models.Credential, error) {
	return r.latest(func(c *models.Credential) bool {
		return !c.Revoked && c.OwnerID == ownerID && c.Kind == kind
	})
}

func (r *MemoryRepository) deleteWhere(match func(*models.Credential) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.rows[:0]
	var n int64
	for _, c := range r.rows {
		if match(c) {
			n++
			continue
		}
		kept = append(kept, c)
	}
	clear(r.rows[len(kept):])
	r.rows = kept
	return n
}

func (r *MemoryRepository) DeleteAllOfKind(_ context.Context, ownerID string, kind models.Kind) (int64, error) {
	return r.deleteWhere(func(c *models.Credential) bool {
		return c.OwnerID == ownerID && c.Kind == kind
	}), nil
}

func (r *MemoryRepository) Delete(_ context.Context, value string, kind models.Kind) (int64, error) {
	return r.deleteWhere(func(c *models.Credential) bool {
		return c.Value == value && c.Kind == kind
	}), nil
}

func (r *MemoryRepository) Revoke(_ context.Context, value string, kind models.Kind) (*models.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.rows) - 1; i >= 0; i-- {
		c := r.rows[i]
		if !c.Revoked && c.Value == value && c.Kind == kind {
			c.Revoked = true
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrCredentialNotFound
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	return r.deleteWhere(func(c *models.Credential) bool {
		return !c.ExpiresAt.After(before)
	}), nil
}

// Len reports the number of stored rows, revoked ones included.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
