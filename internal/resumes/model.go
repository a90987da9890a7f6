package resumes

import "time"

// Resume is the metadata record for one uploaded file. StoragePath locates
// the blob and is never exposed to callers.
type Resume struct {
	ID          string
	OwnerID     string
	FileName    string
	FileType    string
	FileSize    int64
	StoragePath string
	UploadedAt  time.Time
	UpdatedAt   time.Time
}
