package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"memories-backend/internal/models"
	"memories-backend/internal/storage"

	"github.com/google/uuid"
)

var mediaTypeRegex = regexp.MustCompile(`^(image|video)/[a-zA-Z0-9.+-]+$`)

// UploadService validates and persists media uploads
type UploadService struct {
	storage  storage.Storage
	maxBytes int64
}

// NewUploadService creates a new upload service. maxBytes is the
// inclusive size cap for a single file.
func NewUploadService(st storage.Storage, maxBytes int64) *UploadService {
	return &UploadService{storage: st, maxBytes: maxBytes}
}

// Save streams an uploaded file to storage and returns the storage name.
// The declared MIME type must be image/* or video/*; the stream is
// capped at maxBytes and rejected one byte over without buffering the
// whole body. The client filename contributes only its extension.
func (s *UploadService) Save(ctx context.Context, r io.Reader, filename, declaredType string) (string, error) {
	if !mediaTypeRegex.MatchString(declaredType) {
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedType, declaredType)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext

	capped := &cappedReader{r: r, remaining: s.maxBytes}
	if err := s.storage.Save(ctx, name, capped); err != nil {
		return "", err
	}

	return name, nil
}

// cappedReader passes through at most remaining bytes. Once they are
// consumed it probes for one more byte; finding any means the cap was
// exceeded, so no oversize data ever reaches the storage backend.
type cappedReader struct {
	r         io.Reader
	remaining int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		var b [1]byte
		n, err := c.r.Read(b[:])
		if n > 0 {
			return 0, models.ErrFileTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}
