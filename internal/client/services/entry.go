package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/mediavault/internal/client/client"
	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/client/repositories/entries"
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/dbx"
)

// EntryService is the vault as seen by the CLI. Reads fall back to the
// local cache when the server is unavailable and report that with the
// returned bool; writes always need the server.
type EntryService interface {
	List(ctx context.Context, ownerID string) ([]models.Entry, bool, error)
	Get(ctx context.Context, ownerID, id string) (*models.Entry, bool, error)
	Upload(ctx context.Context, ownerID, path, description string, isPrivate bool) (*models.Entry, error)
	Describe(ctx context.Context, ownerID, id, description string) (*models.Entry, error)
	Delete(ctx context.Context, ownerID, id string) error
	// Download saves the entry's bytes to dest and returns the final path.
	Download(ctx context.Context, id, dest string) (string, int64, error)
}

type entryService struct {
	client client.Client
	db     *sql.DB
}

func NewEntryService(client client.Client, db *sql.DB) EntryService {
	return &entryService{client: client, db: db}
}

func (s *entryService) repo() entries.Repository {
	return entries.NewSQLiteRepository(s.db)
}

func (s *entryService) List(ctx context.Context, ownerID string) ([]models.Entry, bool, error) {
	items, err := s.client.List(ctx)
	if err != nil {
		if !errors.Is(err, client.ErrUnavailable) {
			return nil, false, err
		}
		cached, cerr := s.repo().GetAll(ctx, ownerID)
		if cerr != nil {
			return nil, false, errors.Join(err, cerr)
		}
		return cached, true, nil
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return entries.NewSQLiteRepository(tx).ReplaceAll(ctx, ownerID, items)
	})
	if err != nil {
		return nil, false, fmt.Errorf("cache update error: %w", err)
	}
	return items, false, nil
}

func (s *entryService) Get(ctx context.Context, ownerID, id string) (*models.Entry, bool, error) {
	e, err := s.client.Get(ctx, id)
	switch {
	case err == nil:
		e.OwnerID = ownerID
		if err := s.repo().CreateOrUpdate(ctx, e); err != nil {
			return nil, false, fmt.Errorf("cache update error: %w", err)
		}
		return e, false, nil
	case errors.Is(err, client.ErrNotFound):
		_ = s.repo().DeleteByID(ctx, ownerID, id)
		return nil, false, err
	case errors.Is(err, client.ErrUnavailable):
		cached, cerr := s.repo().GetByID(ctx, ownerID, id)
		if cerr != nil {
			if errors.Is(cerr, common.ErrorNotFound) {
				return nil, false, err
			}
			return nil, false, errors.Join(err, cerr)
		}
		return cached, true, nil
	default:
		return nil, false, err
	}
}

func (s *entryService) Upload(ctx context.Context, ownerID, path, description string, isPrivate bool) (*models.Entry, error) {
	e, err := s.client.Upload(ctx, path, description, isPrivate)
	if err != nil {
		return nil, err
	}
	e.OwnerID = ownerID
	if err := s.repo().CreateOrUpdate(ctx, e); err != nil {
		return nil, fmt.Errorf("cache update error: %w", err)
	}
	return e, nil
}

func (s *entryService) Describe(ctx context.Context, ownerID, id, description string) (*models.Entry, error) {
	e, err := s.client.Update(ctx, id, &description, nil)
	if err != nil {
		return nil, err
	}
	e.OwnerID = ownerID
	if err := s.repo().CreateOrUpdate(ctx, e); err != nil {
		return nil, fmt.Errorf("cache update error: %w", err)
	}
	return e, nil
}

func (s *entryService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.client.Delete(ctx, id); err != nil && !errors.Is(err, client.ErrNotFound) {
		return err
	}
	return s.repo().DeleteByID(ctx, ownerID, id)
}

// targetPath resolves dest: an existing directory receives the file under
// its original name.
func targetPath(dest string, e *models.Entry) string {
	info, err := os.Stat(dest)
	if err != nil || !info.IsDir() {
		return dest
	}
	name := filepath.Base(e.OriginalName)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		name = e.StoredName
	}
	return filepath.Join(dest, name)
}

func (s *entryService) Download(ctx context.Context, id, dest string) (string, int64, error) {
	e, err := s.client.Get(ctx, id)
	if err != nil {
		return "", 0, err
	}
	target := targetPath(dest, e)

	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := s.client.Download(ctx, e.StoragePath, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", 0, err
	}
	return target, n, nil
}
