package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
)

// Client is the mediavault API as seen by the CLI. Implementations remember
// the token of the last successful Register or Login.
type Client interface {
	Close() error
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	Ping(ctx context.Context) error

	List(ctx context.Context) ([]models.Entry, error)
	Get(ctx context.Context, id string) (*models.Entry, error)
	Upload(ctx context.Context, path string, description string, isPrivate bool) (*models.Entry, error)
	Update(ctx context.Context, id string, description *string, isPrivate *bool) (*models.Entry, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, storagePath string, w io.Writer) (int64, error)
}
