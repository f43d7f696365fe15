package entries

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediavault/internal/common"
	"github.com/dmitrijs2005/mediavault/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository for tests and local runs.
// It does not take part in transactions.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]*models.VaultEntry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]*models.VaultEntry{}}
}

func clone(e *models.VaultEntry) *models.VaultEntry {
	cp := *e
	if e.Description != nil {
		d := *e.Description
		cp.Description = &d
	}
	return &cp
}

func (r *MemoryRepository) Create(_ context.Context, entry *models.VaultEntry) (*models.VaultEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.byID {
		if e.StoredName == entry.StoredName {
			return nil, common.ErrorAlreadyExists
		}
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	r.byID[entry.ID] = clone(entry)
	return entry, nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]*models.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.VaultEntry, 0)
	for _, e := range r.byID {
		if e.OwnerID == ownerID {
			result = append(result, clone(e))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *MemoryRepository) GetOwned(_ context.Context, ownerID, id string) (*models.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	if !ok || e.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return clone(e), nil
}

func (r *MemoryRepository) GetOwnedForUpdate(ctx context.Context, ownerID, id string) (*models.VaultEntry, error) {
	return r.GetOwned(ctx, ownerID, id)
}

func (r *MemoryRepository) GetByStoredName(_ context.Context, storedName string) (*models.VaultEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.byID {
		if e.StoredName == storedName {
			return clone(e), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Update(_ context.Context, ownerID, id string, patch models.EntryPatch) (*models.VaultEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	if patch.Description != nil {
		d := *patch.Description
		e.Description = &d
	}
	if patch.IsPrivate != nil {
		e.IsPrivate = *patch.IsPrivate
	}
	e.UpdatedAt = time.Now()
	return clone(e), nil
}

func (r *MemoryRepository) Delete(_ context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.OwnerID != ownerID {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) ListStoredNames(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byID))
	for _, e := range r.byID {
		names = append(names, e.StoredName)
	}
	return names, nil
}
