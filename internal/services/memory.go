package services

import (
	"context"
	"strings"
	"time"

	"memories-backend/internal/models"

	"github.com/google/uuid"
)

const (
	excerptLimit  = 115
	excerptMarker = "..."
)

// MemoryStore persists memory records
type MemoryStore interface {
	Create(ctx context.Context, memory *models.Memory) error
	GetByID(ctx context.Context, id string) (*models.Memory, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Memory, error)
	ListPublic(ctx context.Context) ([]*models.Memory, error)
	Update(ctx context.Context, memory *models.Memory) error
	Delete(ctx context.Context, id string) error
}

// MemoryInput carries the mutable fields of a memory. Updates are
// full-field replaces; partial updates are not supported.
type MemoryInput struct {
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl"`
	IsPublic bool   `json:"isPublic"`
}

// Validate checks the required fields
func (in *MemoryInput) Validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return models.NewValidationError("text", "text is required")
	}
	if strings.TrimSpace(in.MediaURL) == "" {
		return models.NewValidationError("mediaUrl", "mediaUrl is required")
	}
	return nil
}

// MemoryService enforces ownership and visibility over memory records.
// A memory is mutated or deleted only by its owner; a non-public memory
// is readable only by its owner.
type MemoryService struct {
	memoryStore MemoryStore
}

// NewMemoryService creates a new memory service
func NewMemoryService(memoryStore MemoryStore) *MemoryService {
	return &MemoryService{memoryStore: memoryStore}
}

// List returns the owner's memories as summaries, oldest first
func (s *MemoryService) List(ctx context.Context, userID string) ([]*models.MemorySummary, error) {
	memories, err := s.memoryStore.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return summarize(memories), nil
}

// ListPublic returns all public memories as summaries, oldest first.
// This is the anonymous listing; it bypasses ownership but not visibility.
func (s *MemoryService) ListPublic(ctx context.Context) ([]*models.MemorySummary, error) {
	memories, err := s.memoryStore.ListPublic(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(memories), nil
}

// Get returns the full record. requesterID may be empty for anonymous
// requests; a private memory is returned only to its owner.
func (s *MemoryService) Get(ctx context.Context, id, requesterID string) (*models.Memory, error) {
	memory, err := s.memoryStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !memory.IsPublic && memory.UserID != requesterID {
		return nil, models.ErrForbidden
	}

	return memory, nil
}

// Create stores a new memory owned by userID
func (s *MemoryService) Create(ctx context.Context, userID string, input MemoryInput) (*models.Memory, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	memory := &models.Memory{
		ID:        uuid.New().String(),
		UserID:    userID,
		Text:      input.Text,
		MediaURL:  input.MediaURL,
		IsPublic:  input.IsPublic,
		CreatedAt: time.Now(),
	}

	if err := s.memoryStore.Create(ctx, memory); err != nil {
		return nil, err
	}

	return memory, nil
}

// Update replaces the mutable fields of a memory. Only the owner may
// update; the owner and creation time never change.
func (s *MemoryService) Update(ctx context.Context, id, userID string, input MemoryInput) (*models.Memory, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	memory, err := s.memoryStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if memory.UserID != userID {
		return nil, models.ErrForbidden
	}

	memory.Text = input.Text
	memory.MediaURL = input.MediaURL
	memory.IsPublic = input.IsPublic

	if err := s.memoryStore.Update(ctx, memory); err != nil {
		return nil, err
	}

	return memory, nil
}

// Delete removes a memory. Only the owner may delete.
func (s *MemoryService) Delete(ctx context.Context, id, userID string) error {
	memory, err := s.memoryStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if memory.UserID != userID {
		return models.ErrForbidden
	}

	return s.memoryStore.Delete(ctx, id)
}

func summarize(memories []*models.Memory) []*models.MemorySummary {
	summaries := make([]*models.MemorySummary, 0, len(memories))
	for _, memory := range memories {
		summaries = append(summaries, &models.MemorySummary{
			ID:       memory.ID,
			MediaURL: memory.MediaURL,
			Except:   Excerpt(memory.Text),
		})
	}
	return summaries
}

// Excerpt truncates text to the listing excerpt length. The marker is
// appended only when the text actually exceeds the limit; shorter texts
// are returned whole.
func Excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLimit {
		return text
	}
	return string(runes[:excerptLimit]) + excerptMarker
}
