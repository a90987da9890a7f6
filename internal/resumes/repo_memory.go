package resumes

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Resume // id -> record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Resume),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, res Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	res = withDefaults(res, uuid.NewString, time.Now)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data {
		if existing.StoragePath == res.StoragePath {
			return Resume{}, ErrDuplicateStoragePath
		}
	}
	r.data[res.ID] = res
	return res, nil
}

func (r *MemoryRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[id]
	if !ok || res.OwnerID != ownerID {
		return Resume{}, ErrNotFound
	}
	return res, nil
}

// withDefaults fills the fields a store assigns on create.
func withDefaults(res Resume, newID func() string, now func() time.Time) Resume {
	if res.ID == "" {
		res.ID = newID()
	}
	if res.UploadedAt.IsZero() {
		res.UploadedAt = now().UTC()
	}
	if res.UpdatedAt.IsZero() {
		res.UpdatedAt = res.UploadedAt
	}
	return res
}

var _ Repo = (*MemoryRepo)(nil)
