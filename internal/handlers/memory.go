package handlers

import (
	"encoding/json"
	"net/http"

	"memories-backend/internal/middleware"
	"memories-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MemoryHandler handles memory-related HTTP requests
type MemoryHandler struct {
	memoryService *services.MemoryService
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(memoryService *services.MemoryService) *MemoryHandler {
	return &MemoryHandler{
		memoryService: memoryService,
	}
}

// ListMemories handles GET /memories. Authenticated requests list the
// caller's own memories; anonymous requests get the public listing.
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var err error
	var summaries any
	if userID != "" {
		summaries, err = h.memoryService.List(ctx, userID)
	} else {
		summaries, err = h.memoryService.ListPublic(ctx)
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list memories")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summaries)
}

// GetMemory handles GET /memories/{id}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := memoryID(w, r)
	if !ok {
		return
	}

	memory, err := h.memoryService.Get(ctx, id, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, memory)
}

// CreateMemory handles POST /memories
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var input services.MemoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	memory, err := h.memoryService.Create(ctx, userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("memory_id", memory.ID).
		Str("user_id", userID).
		Msg("Memory created")

	respondJSON(w, http.StatusOK, memory)
}

// UpdateMemory handles PUT /memories/{id}
func (h *MemoryHandler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	id, ok := memoryID(w, r)
	if !ok {
		return
	}

	var input services.MemoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	memory, err := h.memoryService.Update(ctx, id, userID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, memory)
}

// DeleteMemory handles DELETE /memories/{id}
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	id, ok := memoryID(w, r)
	if !ok {
		return
	}

	if err := h.memoryService.Delete(ctx, id, userID); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("memory_id", id).
		Str("user_id", userID).
		Msg("Memory deleted")

	w.WriteHeader(http.StatusOK)
}

// memoryID extracts and validates the {id} route parameter before it
// ever reaches the database
func memoryID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, "id must be a valid UUID", http.StatusBadRequest)
		return "", false
	}
	return id, true
}
