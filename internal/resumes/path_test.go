package resumes

import (
	"testing"
	"time"

	"resume-uploads/internal/shared/storage/blob"
)

func TestStoragePath(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	tests := []struct {
		owner, name, want string
	}{
		{"user-1", "resume.pdf", "user-1/1700000000123_resume.pdf"},
		{"user-1", "../../secret.pdf", "user-1/1700000000123_.._.._secret.pdf"},
		{"org/user", `dir\cv.docx`, "org_user/1700000000123_dir_cv.docx"},
		{"..", "a.pdf", "_/1700000000123_a.pdf"},
	}
	for _, tt := range tests {
		got := StoragePath(tt.owner, at, tt.name)
		if got != tt.want {
			t.Fatalf("StoragePath(%q, %q) = %q, want %q", tt.owner, tt.name, got, tt.want)
		}
		if err := blob.CheckKey(got); err != nil {
			t.Fatalf("StoragePath(%q, %q) produced invalid key %q: %v", tt.owner, tt.name, got, err)
		}
	}
}
