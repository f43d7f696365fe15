// Package users stores vault accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/mediavault/internal/server/models"
)

// Repository persists accounts. Create fails with common.ErrorAlreadyExists
// on a taken username; lookups fail with common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
