package resumes

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the parent of every user-correctable upload rejection.
	ErrValidation      = errors.New("validation failed")
	ErrMissingFile     = fmt.Errorf("%w: no file uploaded", ErrValidation)
	ErrUnsupportedType = fmt.Errorf("%w: only PDF and Word documents are allowed", ErrValidation)
	ErrTooLarge        = fmt.Errorf("%w: file exceeds the maximum allowed size", ErrValidation)

	// ErrNotFound covers both absent records and records owned by someone else.
	ErrNotFound = errors.New("resume not found")

	ErrStorageWrite  = errors.New("storage write failed")
	ErrMetadataWrite = errors.New("metadata write failed")
	ErrBackend       = errors.New("backend failure")

	// ErrDuplicateStoragePath is returned by a repo when another record
	// already points at the same blob.
	ErrDuplicateStoragePath = errors.New("storage path already recorded")
)
