package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/users"
)

// MemoryRepositoryManager hands out process-local stores. The db handle is
// ignored; every call returns the same shared instance.
type MemoryRepositoryManager struct {
	users       *users.MemoryRepository
	credentials *credentials.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:       users.NewMemoryRepository(),
		credentials: credentials.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) Credentials(dbx.DBTX) credentials.Repository {
	return m.credentials
}
