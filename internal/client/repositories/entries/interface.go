package entries

import (
	"context"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
)

// Repository caches the vault listing locally so it can be shown while the
// server is unreachable. Every method is scoped to one owner except Clear.
type Repository interface {
	// ReplaceAll swaps the owner's cached entries for items.
	ReplaceAll(ctx context.Context, ownerID string, items []models.Entry) error

	// CreateOrUpdate stores a single entry, replacing a cached copy.
	CreateOrUpdate(ctx context.Context, entry *models.Entry) error

	// GetAll returns the owner's cached entries, newest first.
	GetAll(ctx context.Context, ownerID string) ([]models.Entry, error)

	// GetByID returns common.ErrorNotFound when the entry is not cached.
	GetByID(ctx context.Context, ownerID, id string) (*models.Entry, error)

	DeleteByID(ctx context.Context, ownerID, id string) error

	// Clear drops every cached entry.
	Clear(ctx context.Context) error
}
