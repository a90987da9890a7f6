package events

import (
	"encoding/json"
	"fmt"
)

const (
	TypeResumeUploaded = "resume.uploaded"
	messageVersion     = 1
)

// ResumeUploaded is sent after a resume blob and its record are both stored.
type ResumeUploaded struct {
	Type       string `json:"type"`
	Version    int    `json:"version"`
	ResumeID   string `json:"resumeId"`
	OwnerID    string `json:"ownerId"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType"`
	FileSize   int64  `json:"fileSize"`
	RequestID  string `json:"requestId,omitempty"`
	UploadedAt string `json:"uploadedAt"`
}

// EncodeMessage fills in the envelope fields and returns the JSON payload.
func EncodeMessage(msg ResumeUploaded) ([]byte, error) {
	if msg.Type == "" {
		msg.Type = TypeResumeUploaded
	}
	if msg.Version == 0 {
		msg.Version = messageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a payload and rejects unknown event types.
func DecodeMessage(payload []byte) (ResumeUploaded, error) {
	var msg ResumeUploaded
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ResumeUploaded{}, err
	}
	if msg.Type != TypeResumeUploaded {
		return ResumeUploaded{}, fmt.Errorf("unexpected event type %q", msg.Type)
	}
	return msg, nil
}
