package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"memories-backend/internal/metrics"
	"memories-backend/internal/models"
	"memories-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UploadHandler handles media upload requests
type UploadHandler struct {
	uploadService *services.UploadService
	collector     *metrics.Collector
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService *services.UploadService, collector *metrics.Collector) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		collector:     collector,
	}
}

// UploadResponse represents the upload response
type UploadResponse struct {
	FileURL string `json:"fileUrl"`
}

// Upload handles POST /upload. The multipart body is streamed part by
// part rather than parsed into memory, so the size cap applies before
// the file is buffered.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	mr, err := r.MultipartReader()
	if err != nil {
		respondError(w, "Expected multipart form data", http.StatusBadRequest)
		return
	}

	part, err := nextFilePart(mr)
	if err != nil {
		respondError(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer part.Close()

	name, err := h.uploadService.Save(ctx, part, part.FileName(), part.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrFileTooLarge):
			h.collector.RecordUpload("too_large")
		case errors.Is(err, models.ErrUnsupportedType):
			h.collector.RecordUpload("unsupported_type")
		default:
			h.collector.RecordUpload("error")
			log.Error().Err(err).Msg("Failed to store upload")
			respondError(w, "Failed to store file", http.StatusInternalServerError)
			return
		}
		respondServiceError(w, err)
		return
	}

	h.collector.RecordUpload("ok")

	fileURL := requestScheme(r) + "://" + r.Host + "/uploads/" + name

	log.Info().
		Str("file", name).
		Msg("File uploaded")

	respondJSON(w, http.StatusOK, UploadResponse{FileURL: fileURL})
}

// requestScheme resolves the client-facing scheme. A TLS-terminating
// proxy announces it via X-Forwarded-Proto; the proxy is already
// trusted for forwarded headers by the RealIP middleware.
func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// nextFilePart advances the multipart stream to the "file" field
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}
