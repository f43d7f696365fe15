package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/dbx"
)

const entryColumns = `id, owner_id, stored_name, original_name, mime_type, size_bytes,
	storage_path, description, is_private, created_at, updated_at`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) insert(ctx context.Context, e *models.Entry) error {
	query := `INSERT INTO cached_entries (` + entryColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				owner_id = excluded.owner_id,
				stored_name = excluded.stored_name,
				original_name = excluded.original_name,
				mime_type = excluded.mime_type,
				size_bytes = excluded.size_bytes,
				storage_path = excluded.storage_path,
				description = excluded.description,
				is_private = excluded.is_private,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.OwnerID, e.StoredName, e.OriginalName, e.MimeType, e.SizeBytes,
		e.StoragePath, e.Description, e.IsPrivate, e.CreatedAt.UnixNano(), e.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert entry: %w", err)
	}
	return nil
}

// CreateOrUpdate upserts an entry by id.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, e *models.Entry) error {
	return r.insert(ctx, e)
}

// ReplaceAll is not atomic on its own; run it inside dbx.WithTx.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, ownerID string, items []models.Entry) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_entries WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("failed to clear owner entries: %w", err)
	}
	for i := range items {
		items[i].OwnerID = ownerID
		if err := r.insert(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var (
		e                    models.Entry
		desc                 sql.NullString
		createdAt, updatedAt int64
	)
	if err := s.Scan(&e.ID, &e.OwnerID, &e.StoredName, &e.OriginalName, &e.MimeType, &e.SizeBytes,
		&e.StoragePath, &desc, &e.IsPrivate, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	e.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &e, nil
}

// GetAll lists the owner's cached entries, newest first.
func (r *SQLiteRepository) GetAll(ctx context.Context, ownerID string) ([]models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM cached_entries WHERE owner_id = ? ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]models.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByID returns one cached entry of the owner.
func (r *SQLiteRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM cached_entries WHERE owner_id = ? AND id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return e, nil
}

// DeleteByID removes a cached entry. Deleting a missing entry is not an error.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, ownerID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_entries WHERE owner_id = ? AND id = ?`, ownerID, id); err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cached_entries`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
