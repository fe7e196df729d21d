package users

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process profile store.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
	}
}

func clone(u *models.User) *models.User {
	out := *u
	out.DeviceTokens = slices.Clone(u.DeviceTokens)
	if out.DeviceTokens == nil {
		out.DeviceTokens = []string{}
	}
	return &out
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return nil, common.ErrAlreadyExists
	}

	created := clone(user)
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now()
	created.DeviceTokens = []string{}
	models.UserPatch{AddDeviceTokens: user.DeviceTokens}.Apply(created)

	r.byID[created.ID] = created
	r.byEmail[created.Email] = created.ID
	return clone(created), nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	return clone(u), nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch models.UserPatch) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrUserNotFound
	}
	patch.Apply(u)
	return clone(u), nil
}
