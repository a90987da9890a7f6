package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-uploads/internal/shared/auth"
	"resume-uploads/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	verifier, err := auth.NewVerifier("", false)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	router := gin.New()
	router.Use(RequestID(), Auth(verifier, true), Logging())
	router.GET("/resumes/:id/download", func(c *gin.Context) {
		c.Set(ResumeIDKey, c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	req := httptest.NewRequest(http.MethodGet, "/resumes/resume-1/download", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatalf("expected log output")
	}
	last := lines[len(lines)-1]
	var payload map[string]any
	if err := json.Unmarshal([]byte(last), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}

	for _, key := range []string{"request_id", "user_id", "resume_id", "duration_ms", "status", "route"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["user_id"] != "guest:guest1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["resume_id"] != "resume-1" {
		t.Fatalf("unexpected resume_id: %v", payload["resume_id"])
	}
	if payload["request_id"] != resp.Header().Get("X-Request-Id") {
		t.Fatalf("request id mismatch: %v vs %s", payload["request_id"], resp.Header().Get("X-Request-Id"))
	}
}
