package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mediavault/internal/dbx"
	"github.com/dmitrijs2005/mediavault/internal/server/repositories/entries"
	"github.com/dmitrijs2005/mediavault/internal/server/repositories/users"
)

// InMemoryRepositoryManager hands out the same in-memory repositories for
// every DBTX. Transactions passed in are ignored.
type InMemoryRepositoryManager struct {
	users   *users.MemoryRepository
	entries *entries.MemoryRepository
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Entries(dbx.DBTX) entries.Repository {
	return m.entries
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{
		users:   users.NewMemoryRepository(),
		entries: entries.NewMemoryRepository(),
	}
}
