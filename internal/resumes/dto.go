package resumes

import "time"

// ResumeResponse is the outward-facing representation of a resume record.
type ResumeResponse struct {
	ID         string    `json:"id"`
	OwnerID    string    `json:"ownerId"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	FileSize   int64     `json:"fileSize"`
	UploadedAt time.Time `json:"uploadedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type uploadResponse struct {
	Resume  ResumeResponse `json:"resume"`
	Message string         `json:"message"`
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		FileName:   r.FileName,
		FileType:   r.FileType,
		FileSize:   r.FileSize,
		UploadedAt: r.UploadedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
