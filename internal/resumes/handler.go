package resumes

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"resume-uploads/internal/shared/server/middleware"
	"resume-uploads/internal/shared/server/respond"
	"resume-uploads/internal/shared/telemetry"
	"resume-uploads/internal/shared/util"
)

// multipartOverhead is allowed on top of the file ceiling for boundaries and part headers.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes/:id/download", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	if limit := h.Svc.Validator.MaxBytes; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}

	in := UploadInput{RequestID: middleware.RequestIDFromContext(c)}

	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		file, openErr := fileHeader.Open()
		if openErr != nil {
			telemetry.Error("resume.upload_open_failed", map[string]any{"error": openErr.Error()})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to upload resume", nil)
			return
		}
		defer file.Close()

		in.FileName = fileHeader.Filename
		in.ContentType = fileHeader.Header.Get("Content-Type")
		in.Size = fileHeader.Size
		in.Body = file
	case isBodyTooLarge(err):
		writeError(c, ErrTooLarge)
		return
	}

	res, err := h.Svc.Upload(c.Request.Context(), ownerID, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Set(middleware.ResumeIDKey, res.ID)
	respond.JSON(c, http.StatusCreated, uploadResponse{
		Resume:  toResponse(res),
		Message: "Resume uploaded",
	})
}

func (h *Handler) download(c *gin.Context) {
	ownerID := middleware.UserIDFromContext(c)
	id := strings.TrimSpace(c.Param("id"))
	c.Set(middleware.ResumeIDKey, id)

	dl, err := h.Svc.Download(c.Request.Context(), ownerID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	defer dl.Body.Close()

	c.Header("Content-Disposition", contentDisposition(dl.Resume.FileName))
	c.Header("X-Content-Type-Options", "nosniff")
	// DataFromReader copies incrementally; a client disconnect cancels the
	// request context, which aborts the backend read.
	c.DataFromReader(http.StatusOK, dl.Resume.FileSize, dl.Resume.FileType, dl.Body, nil)
	if err := c.Request.Context().Err(); err != nil {
		telemetry.Warn("resume.download_aborted", map[string]any{
			"resume_id": dl.Resume.ID,
			"error":     err.Error(),
		})
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", validationMessage(err), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found", nil)
	default:
		telemetry.Error("resume.request_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingFile):
		return "No file uploaded"
	case errors.Is(err, ErrUnsupportedType):
		return "Invalid file type. Only PDF and Word documents are allowed"
	case errors.Is(err, ErrTooLarge):
		return "File too large"
	default:
		return "Invalid upload"
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func contentDisposition(fileName string) string {
	v := fmt.Sprintf("attachment; filename=%s", strconv.Quote(asciiFileName(fileName)))
	if !isASCII(fileName) {
		v += "; filename*=UTF-8''" + url.PathEscape(fileName)
	}
	return v
}

func asciiFileName(name string) string {
	name = util.HeaderFileName(name)
	if isASCII(name) {
		return name
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return '_'
		}
		return r
	}, name)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
