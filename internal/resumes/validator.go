package resumes

import (
	"mime"
	"strings"
)

const DefaultMaxBytes int64 = 5 << 20

var allowedTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// FileInput is what the validator needs to know about an upload.
type FileInput struct {
	Present     bool
	ContentType string
	Size        int64
}

// Validator accepts or rejects an upload before any I/O happens.
type Validator struct {
	// MaxBytes is the inclusive size ceiling; zero or less disables it.
	MaxBytes int64
}

// Validate checks presence, then type, then size, and returns the first failure.
func (v Validator) Validate(in FileInput) error {
	if !in.Present {
		return ErrMissingFile
	}
	if !AllowedType(in.ContentType) {
		return ErrUnsupportedType
	}
	if v.MaxBytes > 0 && in.Size > v.MaxBytes {
		return ErrTooLarge
	}
	return nil
}

// AllowedType reports whether a declared content type is on the allow-list.
// Parameters and case are ignored.
func AllowedType(contentType string) bool {
	_, ok := allowedTypes[normalizeType(contentType)]
	return ok
}

func normalizeType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
