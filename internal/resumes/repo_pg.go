package resumes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new resume record.
func (r *PGRepo) Create(ctx context.Context, res Resume) (Resume, error) {
	const query = `
INSERT INTO resumes (
    id,
    owner_id,
    file_name,
    file_type,
    file_size,
    storage_path,
    uploaded_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	res = withDefaults(res, uuid.NewString, time.Now)

	_, err := r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.OwnerID,
		res.FileName,
		res.FileType,
		res.FileSize,
		res.StoragePath,
		res.UploadedAt,
		res.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Resume{}, ErrDuplicateStoragePath
		}
		return Resume{}, err
	}
	return res, nil
}

// FindByIDAndOwner fetches a record only when both id and owner match.
func (r *PGRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (Resume, error) {
	const query = `
SELECT id, owner_id, file_name, file_type, file_size, storage_path, uploaded_at, updated_at
FROM resumes
WHERE id = $1 AND owner_id = $2
LIMIT 1`
	var res Resume
	err := r.DB.QueryRowContext(ctx, query, id, ownerID).Scan(
		&res.ID,
		&res.OwnerID,
		&res.FileName,
		&res.FileType,
		&res.FileSize,
		&res.StoragePath,
		&res.UploadedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

var _ Repo = (*PGRepo)(nil)
