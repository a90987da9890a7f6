package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-uploads/internal/events"
	"resume-uploads/internal/shared/metrics"
	"resume-uploads/internal/shared/storage/blob"
	"resume-uploads/internal/shared/telemetry"
)

const cleanupTimeout = 10 * time.Second

// UploadInput describes one incoming file. A nil Body means no file was sent.
type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	RequestID   string
}

// Download is an open blob stream plus the record it belongs to.
// The caller must close Body.
type Download struct {
	Resume Resume
	Body   io.ReadCloser
}

// Service stores uploads and serves them back to their owners.
type Service struct {
	Store     blob.Store
	Repo      Repo
	Validator Validator
	Events    events.Publisher
	// CleanupOrphans deletes the blob when the record write fails.
	CleanupOrphans bool
	Now            func() time.Time
}

// Upload validates the file, writes the blob, then records it. The record
// is never written unless the blob write succeeded.
func (s *Service) Upload(ctx context.Context, ownerID string, in UploadInput) (Resume, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Resume{}, fmt.Errorf("%w: owner id required", ErrValidation)
	}

	contentType := normalizeType(in.ContentType)
	if err := s.Validator.Validate(FileInput{
		Present:     in.Body != nil && strings.TrimSpace(in.FileName) != "",
		ContentType: contentType,
		Size:        in.Size,
	}); err != nil {
		return Resume{}, err
	}

	now := s.now()
	key := StoragePath(ownerID, now, in.FileName)

	// Put is create-only, so a key collision stops here and the blob behind
	// an earlier record is never replaced or cleaned up by this call.
	if err := s.Store.Put(ctx, key, in.Body, in.Size, contentType); err != nil {
		metrics.IncUploadFailures()
		telemetry.Error("resume.blob_write_failed", map[string]any{
			"owner_id":     ownerID,
			"storage_path": key,
			"collision":    errors.Is(err, blob.ErrExists),
			"error":        err.Error(),
		})
		return Resume{}, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	created, err := s.Repo.Create(ctx, Resume{
		OwnerID:     ownerID,
		FileName:    in.FileName,
		FileType:    contentType,
		FileSize:    in.Size,
		StoragePath: key,
		UploadedAt:  now,
		UpdatedAt:   now,
	})
	if err != nil {
		metrics.IncUploadFailures()
		metrics.IncOrphanedBlobs()
		telemetry.Error("resume.metadata_write_failed", map[string]any{
			"owner_id":     ownerID,
			"storage_path": key,
			"orphaned":     true,
			"error":        err.Error(),
		})
		if s.CleanupOrphans {
			s.deleteOrphan(key)
		}
		return Resume{}, fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	}

	metrics.IncUploads()
	metrics.ObserveUploadBytes(created.FileSize)
	s.publishUploaded(ctx, created, in.RequestID)
	return created, nil
}

// Download looks the record up scoped to ownerID and opens its blob.
func (s *Service) Download(ctx context.Context, ownerID, id string) (Download, error) {
	if strings.TrimSpace(ownerID) == "" || strings.TrimSpace(id) == "" {
		return Download{}, ErrNotFound
	}

	res, err := s.Repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Download{}, ErrNotFound
		}
		return Download{}, fmt.Errorf("%w: find resume: %v", ErrBackend, err)
	}

	body, err := s.Store.Open(ctx, res.StoragePath)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			telemetry.Error("resume.blob_missing", map[string]any{
				"resume_id":    res.ID,
				"storage_path": res.StoragePath,
			})
			return Download{}, ErrNotFound
		}
		return Download{}, fmt.Errorf("%w: open blob: %v", ErrBackend, err)
	}

	metrics.IncDownloads()
	return Download{Resume: res, Body: body}, nil
}

// deleteOrphan runs detached from the request context, which is often the
// reason the record write failed.
func (s *Service) deleteOrphan(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()
	if err := s.Store.Delete(ctx, key); err != nil {
		telemetry.Warn("resume.orphan_cleanup_failed", map[string]any{
			"storage_path": key,
			"error":        err.Error(),
		})
		return
	}
	telemetry.Info("resume.orphan_cleaned", map[string]any{"storage_path": key})
}

func (s *Service) publishUploaded(ctx context.Context, res Resume, requestID string) {
	if s.Events == nil {
		return
	}
	err := s.Events.Publish(ctx, events.ResumeUploaded{
		ResumeID:   res.ID,
		OwnerID:    res.OwnerID,
		FileName:   res.FileName,
		FileType:   res.FileType,
		FileSize:   res.FileSize,
		RequestID:  requestID,
		UploadedAt: res.UploadedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		telemetry.Warn("resume.event_publish_failed", map[string]any{
			"resume_id": res.ID,
			"error":     err.Error(),
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
