package resumes

import "context"

// Repo persists resume records.
type Repo interface {
	// Create assigns ID and timestamps when they are unset and stores the record.
	Create(ctx context.Context, r Resume) (Resume, error)
	// FindByIDAndOwner returns ErrNotFound both when the id is unknown and
	// when it belongs to a different owner.
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (Resume, error)
}
