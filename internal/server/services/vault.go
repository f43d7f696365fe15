package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/dbx"
	"github.com/dmitrijs2005/mediavault/internal/logging"
	"github.com/dmitrijs2005/mediavault/internal/server/blobstore"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/dmitrijs2005/mediavault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// allowedMimeTypes lists the declared content types accepted for upload.
var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/mov":       true,
	"video/avi":       true,
	"video/quicktime": true,
}

// normalizeMimeType strips parameters and lower-cases the media type. It
// returns "" for values that do not parse.
func normalizeMimeType(declared string) string {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

// UploadRequest describes one file upload. IsPrivate defaults to true.
type UploadRequest struct {
	OwnerID      string
	File         io.Reader
	OriginalName string
	MimeType     string
	Description  *string
	IsPrivate    *bool
}

// VaultOptions tunes a VaultService.
type VaultOptions struct {
	MaxUploadSize int64
	// ServeRequireOwner makes Open refuse blobs owned by someone else.
	ServeRequireOwner bool
}

// VaultService stores and serves the files of a vault. Every operation is
// scoped to an owner; entries owned by anyone else look exactly like
// missing ones.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       blobstore.Store
	log         logging.Logger
	opts        VaultOptions
	now         func() time.Time
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, blobs blobstore.Store, log logging.Logger, opts VaultOptions) *VaultService {
	return &VaultService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		log:         log.With("module", "vault"),
		opts:        opts,
		now:         time.Now,
	}
}

// Upload validates the request, writes the blob and then the record. When
// the record cannot be written the blob is removed again.
func (s *VaultService) Upload(ctx context.Context, req UploadRequest) (*models.VaultEntry, error) {
	mimeType := normalizeMimeType(req.MimeType)
	if !allowedMimeTypes[mimeType] {
		return nil, common.ErrUnsupportedMediaType
	}
	if req.File == nil || strings.TrimSpace(req.OriginalName) == "" {
		return nil, common.ErrNoFile
	}

	entry := &models.VaultEntry{
		OwnerID:      req.OwnerID,
		StoredName:   newStoredName(s.now(), req.OriginalName),
		OriginalName: req.OriginalName,
		MimeType:     mimeType,
		IsPrivate:    true,
	}
	entry.StoragePath = storagePath(entry.StoredName)
	if req.Description != nil && *req.Description != "" {
		entry.Description = req.Description
	}
	if req.IsPrivate != nil {
		entry.IsPrivate = *req.IsPrivate
	}

	n, err := s.blobs.Put(ctx, entry.StoredName, req.File, s.opts.MaxUploadSize)
	if err != nil {
		if errors.Is(err, common.ErrPayloadTooLarge) {
			return nil, common.ErrPayloadTooLarge
		}
		s.log.Error(ctx, "blob write failed", "stored_name", entry.StoredName, "error", err)
		return nil, common.ErrorInternal
	}
	entry.SizeBytes = n

	created, err := s.repomanager.Entries(s.db).Create(ctx, entry)
	if err != nil {
		s.log.Error(ctx, "record insert failed, removing blob", "stored_name", entry.StoredName, "error", err)
		if derr := s.blobs.Delete(context.WithoutCancel(ctx), entry.StoredName); derr != nil {
			s.log.Warn(ctx, "orphaned blob left behind", "stored_name", entry.StoredName, "error", derr)
		}
		return nil, common.ErrorInternal
	}

	s.log.Info(ctx, "file uploaded", "entry_id", created.ID, "size", created.SizeBytes)
	return created, nil
}

// List returns all of the owner's entries, newest first.
func (s *VaultService) List(ctx context.Context, ownerID string) ([]*models.VaultEntry, error) {
	items, err := s.repomanager.Entries(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		s.log.Error(ctx, "list entries failed", "error", err)
		return nil, common.ErrorInternal
	}
	if items == nil {
		items = []*models.VaultEntry{}
	}
	return items, nil
}

// Get returns the entry when ownerID owns it, common.ErrorNotFound otherwise.
func (s *VaultService) Get(ctx context.Context, ownerID, entryID string) (*models.VaultEntry, error) {
	if _, err := uuid.Parse(entryID); err != nil {
		return nil, common.ErrorNotFound
	}
	e, err := s.repomanager.Entries(s.db).GetOwned(ctx, ownerID, entryID)
	if err != nil {
		return nil, s.translate(ctx, "get entry failed", err)
	}
	return e, nil
}

// Update changes the description and/or the private flag of an owned entry.
func (s *VaultService) Update(ctx context.Context, ownerID, entryID string, patch models.EntryPatch) (*models.VaultEntry, error) {
	if _, err := uuid.Parse(entryID); err != nil {
		return nil, common.ErrorNotFound
	}
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrValidation)
	}

	var updated *models.VaultEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)
		if _, err := repo.GetOwnedForUpdate(ctx, ownerID, entryID); err != nil {
			return err
		}
		var err error
		updated, err = repo.Update(ctx, ownerID, entryID, patch)
		return err
	})
	if err != nil {
		return nil, s.translate(ctx, "update entry failed", err)
	}
	return updated, nil
}

// Delete removes the blob and then the record of an owned entry. A blob that
// is already gone counts as removed.
func (s *VaultService) Delete(ctx context.Context, ownerID, entryID string) error {
	if _, err := uuid.Parse(entryID); err != nil {
		return common.ErrorNotFound
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Entries(tx)
		e, err := repo.GetOwnedForUpdate(ctx, ownerID, entryID)
		if err != nil {
			return err
		}
		if err := s.blobs.Delete(ctx, e.StoredName); err != nil {
			return err
		}
		return repo.Delete(ctx, ownerID, entryID)
	})
	if err != nil {
		return s.translate(ctx, "delete entry failed", err)
	}

	s.log.Info(ctx, "file deleted", "entry_id", entryID)
	return nil
}

// Open returns the bytes behind storedName together with its record. With
// ServeRequireOwner set, a caller who does not own the entry gets
// common.ErrorNotFound. The caller must close the blob reader.
func (s *VaultService) Open(ctx context.Context, ownerID, storedName string) (*blobstore.Blob, *models.VaultEntry, error) {
	if !blobstore.ValidName(storedName) {
		return nil, nil, common.ErrorNotFound
	}

	e, err := s.repomanager.Entries(s.db).GetByStoredName(ctx, storedName)
	if err != nil {
		return nil, nil, s.translate(ctx, "lookup by stored name failed", err)
	}
	if s.opts.ServeRequireOwner && e.OwnerID != ownerID {
		return nil, nil, common.ErrorNotFound
	}

	b, err := s.blobs.Open(ctx, storedName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "record points at missing blob", "stored_name", storedName)
		}
		return nil, nil, s.translate(ctx, "blob open failed", err)
	}
	return b, e, nil
}

// translate keeps common.ErrorNotFound and hides everything else behind
// common.ErrorInternal.
func (s *VaultService) translate(ctx context.Context, msg string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.log.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}
