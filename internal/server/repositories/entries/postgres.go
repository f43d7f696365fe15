// Package entries provides the PostgreSQL-backed vault record store.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/dbx"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const entryColumns = `id, user_id, stored_name, original_name, mime_type, size_bytes,
		storage_path, description, is_private, created_at, updated_at`

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.VaultEntry, error) {
	var (
		e    models.VaultEntry
		desc sql.NullString
	)
	if err := s.Scan(&e.ID, &e.OwnerID, &e.StoredName, &e.OriginalName, &e.MimeType, &e.SizeBytes,
		&e.StoragePath, &desc, &e.IsPrivate, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	return &e, nil
}

// Create inserts a new record and fills in the generated id and timestamps.
// A stored name collision yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, entry *models.VaultEntry) (*models.VaultEntry, error) {
	query := `
		INSERT INTO vault_entries (user_id, stored_name, original_name, mime_type, size_bytes,
			storage_path, description, is_private)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.OwnerID, entry.StoredName, entry.OriginalName, entry.MimeType, entry.SizeBytes,
		entry.StoragePath, entry.Description, entry.IsPrivate,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

// ListByOwner returns the owner's entries, newest first. The result is never nil.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	result := make([]*models.VaultEntry, 0)
	for rows.Next() {
		item, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.VaultEntry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// GetOwned returns the entry only when it belongs to ownerID.
func (r *PostgresRepository) GetOwned(ctx context.Context, ownerID, id string) (*models.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries
		WHERE id = $1 AND user_id = $2`
	return r.getOne(ctx, query, id, ownerID)
}

// GetOwnedForUpdate is GetOwned with a row lock; use it inside a transaction.
func (r *PostgresRepository) GetOwnedForUpdate(ctx context.Context, ownerID, id string) (*models.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`
	return r.getOne(ctx, query, id, ownerID)
}

func (r *PostgresRepository) GetByStoredName(ctx context.Context, storedName string) (*models.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries
		WHERE stored_name = $1`
	return r.getOne(ctx, query, storedName)
}

// Update applies the non-nil fields of patch and bumps updated_at.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id string, patch models.EntryPatch) (*models.VaultEntry, error) {
	query := `
		UPDATE vault_entries SET
			description = COALESCE($3, description),
			is_private = COALESCE($4, is_private),
			updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + entryColumns
	return r.getOne(ctx, query, id, ownerID, patch.Description, patch.IsPrivate)
}

// Delete removes the owner's entry; zero affected rows is common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// ListStoredNames returns the stored name of every record, across owners.
func (r *PostgresRepository) ListStoredNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT stored_name FROM vault_entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to select stored names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
