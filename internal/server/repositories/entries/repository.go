package entries

import (
	"context"

	"github.com/dmitrijs2005/mediavault/internal/server/models"
)

// Repository is the vault record store. Every lookup that takes an ownerID
// is scoped to that owner and reports common.ErrorNotFound for rows owned by
// someone else.
type Repository interface {
	Create(ctx context.Context, entry *models.VaultEntry) (*models.VaultEntry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.VaultEntry, error)
	GetOwned(ctx context.Context, ownerID, id string) (*models.VaultEntry, error)
	GetOwnedForUpdate(ctx context.Context, ownerID, id string) (*models.VaultEntry, error)
	GetByStoredName(ctx context.Context, storedName string) (*models.VaultEntry, error)
	Update(ctx context.Context, ownerID, id string, patch models.EntryPatch) (*models.VaultEntry, error)
	Delete(ctx context.Context, ownerID, id string) error
	ListStoredNames(ctx context.Context) ([]string, error)
}
