package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"memories-backend/internal/middleware"
	"memories-backend/internal/models"
	"memories-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

type memMemoryStore struct {
	mu       sync.Mutex
	memories map[string]models.Memory
}

func newMemMemoryStore() *memMemoryStore {
	return &memMemoryStore{memories: make(map[string]models.Memory)}
}

func (f *memMemoryStore) Create(ctx context.Context, memory *models.Memory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memories[memory.ID] = *memory
	return nil
}

func (f *memMemoryStore) GetByID(ctx context.Context, id string) (*models.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	memory, ok := f.memories[id]
	if !ok {
		return nil, fmt.Errorf("memory %s: %w", id, models.ErrNotFound)
	}
	return &memory, nil
}

func (f *memMemoryStore) ListByUser(ctx context.Context, userID string) ([]*models.Memory, error) {
	return f.list(func(m models.Memory) bool { return m.UserID == userID })
}

func (f *memMemoryStore) ListPublic(ctx context.Context) ([]*models.Memory, error) {
	return f.list(func(m models.Memory) bool { return m.IsPublic })
}

func (f *memMemoryStore) list(keep func(models.Memory) bool) ([]*models.Memory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Memory
	for _, m := range f.memories {
		if keep(m) {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *memMemoryStore) Update(ctx context.Context, memory *models.Memory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.memories[memory.ID]; !ok {
		return fmt.Errorf("memory %s: %w", memory.ID, models.ErrNotFound)
	}
	f.memories[memory.ID] = *memory
	return nil
}

func (f *memMemoryStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.memories[id]; !ok {
		return fmt.Errorf("memory %s: %w", id, models.ErrNotFound)
	}
	delete(f.memories, id)
	return nil
}

// newMemoryRouter wires the memory routes the way the server does
func newMemoryRouter(t *testing.T) (chi.Router, *services.AuthService) {
	t.Helper()

	authService := services.NewAuthService(nil, nil, "test-secret", time.Hour)
	memoryService := services.NewMemoryService(newMemMemoryStore())
	handler := NewMemoryHandler(memoryService)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(authService))
		r.Get("/memories", handler.ListMemories)
		r.Get("/memories/{id}", handler.GetMemory)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(authService))
		r.Post("/memories", handler.CreateMemory)
		r.Put("/memories/{id}", handler.UpdateMemory)
		r.Delete("/memories/{id}", handler.DeleteMemory)
	})

	return r, authService
}

func tokenFor(t *testing.T, authService *services.AuthService, userID string) string {
	t.Helper()
	token, err := authService.IssueToken(&models.User{ID: userID})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	return token
}

func doJSON(t *testing.T, r chi.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createMemory(t *testing.T, r chi.Router, token string, input services.MemoryInput) models.Memory {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/memories", token, input)
	if w.Code != http.StatusOK {
		t.Fatalf("create failed with status %d: %s", w.Code, w.Body.String())
	}

	var memory models.Memory
	if err := json.Unmarshal(w.Body.Bytes(), &memory); err != nil {
		t.Fatalf("failed to decode memory: %v", err)
	}
	return memory
}

func TestPrivateMemoryScenario(t *testing.T) {
	r, authService := newMemoryRouter(t)
	tokenA := tokenFor(t, authService, "user-a")
	tokenB := tokenFor(t, authService, "user-b")

	memory := createMemory(t, r, tokenA, services.MemoryInput{
		Text:     "hello",
		MediaURL: "http://x/y.png",
		IsPublic: false,
	})

	// User B may not read it
	if w := doJSON(t, r, http.MethodGet, "/memories/"+memory.ID, tokenB, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for user B, got %d", w.Code)
	}

	// Anonymous may not read it either
	if w := doJSON(t, r, http.MethodGet, "/memories/"+memory.ID, "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for anonymous, got %d", w.Code)
	}

	// The owner gets the full record
	w := doJSON(t, r, http.MethodGet, "/memories/"+memory.ID, tokenA, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", w.Code)
	}
	var got models.Memory
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode memory: %v", err)
	}
	if got.Text != "hello" {
		t.Errorf("expected full text hello, got %q", got.Text)
	}
}

func TestMemoryWireFormat(t *testing.T) {
	r, authService := newMemoryRouter(t)
	token := tokenFor(t, authService, "user-a")

	memory := createMemory(t, r, token, services.MemoryInput{Text: "hello", MediaURL: "http://x/y.png"})

	w := doJSON(t, r, http.MethodGet, "/memories/"+memory.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	// Record fields are camelCase throughout
	for _, key := range []string{"id", "userId", "text", "mediaUrl", "isPublic", "createdAt"} {
		if _, ok := payload[key]; !ok {
			t.Errorf("expected %q key in payload: %s", key, w.Body.String())
		}
	}
	if _, ok := payload["user_id"]; ok {
		t.Errorf("unexpected snake_case key in payload: %s", w.Body.String())
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	r, _ := newMemoryRouter(t)

	w := doJSON(t, r, http.MethodPost, "/memories", "", services.MemoryInput{
		Text: "x", MediaURL: "http://x/y.png",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
}

func TestCreateValidationError(t *testing.T) {
	r, authService := newMemoryRouter(t)
	token := tokenFor(t, authService, "user-a")

	w := doJSON(t, r, http.MethodPost, "/memories", token, map[string]string{"mediaUrl": "http://x/y.png"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing text, got %d", w.Code)
	}
}

func TestGetMalformedID(t *testing.T) {
	r, authService := newMemoryRouter(t)
	token := tokenFor(t, authService, "user-a")

	w := doJSON(t, r, http.MethodGet, "/memories/not-a-uuid", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", w.Code)
	}
}

func TestGetUnknownIDReturns404(t *testing.T) {
	r, authService := newMemoryRouter(t)
	token := tokenFor(t, authService, "user-a")

	w := doJSON(t, r, http.MethodGet, "/memories/7b0a0e9e-2af9-4f15-9f0f-5a9d48cf0c5e", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown id, got %d", w.Code)
	}
}

func TestUpdateByNonOwner(t *testing.T) {
	r, authService := newMemoryRouter(t)
	tokenA := tokenFor(t, authService, "user-a")
	tokenB := tokenFor(t, authService, "user-b")

	memory := createMemory(t, r, tokenA, services.MemoryInput{Text: "before", MediaURL: "http://x/y.png"})

	w := doJSON(t, r, http.MethodPut, "/memories/"+memory.ID, tokenB, services.MemoryInput{
		Text: "hijacked", MediaURL: "http://x/z.png",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-owner update, got %d", w.Code)
	}

	// The record is untouched
	w = doJSON(t, r, http.MethodGet, "/memories/"+memory.ID, tokenA, nil)
	var got models.Memory
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode memory: %v", err)
	}
	if got.Text != "before" {
		t.Errorf("non-owner update modified the record: %q", got.Text)
	}
}

func TestUpdateByOwnerRoundTrip(t *testing.T) {
	r, authService := newMemoryRouter(t)
	token := tokenFor(t, authService, "user-a")

	memory := createMemory(t, r, token, services.MemoryInput{Text: "before", MediaURL: "http://x/a.png"})

	w := doJSON(t, r, http.MethodPut, "/memories/"+memory.ID, token, services.MemoryInput{
		Text: "after", MediaURL: "http://x/b.png", IsPublic: true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("owner update failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/memories/"+memory.ID, token, nil)
	var got models.Memory
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode memory: %v", err)
	}
	if got.Text != "after" || got.MediaURL != "http://x/b.png" || !got.IsPublic {
		t.Errorf("stored record does not reflect the update: %+v", got)
	}
}

func TestDeleteOwnershipOverHTTP(t *testing.T) {
	r, authService := newMemoryRouter(t)
	tokenA := tokenFor(t, authService, "user-a")
	tokenB := tokenFor(t, authService, "user-b")

	memory := createMemory(t, r, tokenA, services.MemoryInput{Text: "x", MediaURL: "http://x/y.png"})

	if w := doJSON(t, r, http.MethodDelete, "/memories/"+memory.ID, tokenB, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for non-owner delete, got %d", w.Code)
	}

	w := doJSON(t, r, http.MethodDelete, "/memories/"+memory.ID, tokenA, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for owner delete, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty delete response, got %q", w.Body.String())
	}

	if w := doJSON(t, r, http.MethodGet, "/memories/"+memory.ID, tokenA, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestListOwnVsPublic(t *testing.T) {
	r, authService := newMemoryRouter(t)
	tokenA := tokenFor(t, authService, "user-a")
	tokenB := tokenFor(t, authService, "user-b")

	createMemory(t, r, tokenA, services.MemoryInput{Text: "private a", MediaURL: "http://x/1.png"})
	public := createMemory(t, r, tokenB, services.MemoryInput{Text: "public b", MediaURL: "http://x/2.png", IsPublic: true})

	// Authenticated listing returns only the caller's memories
	w := doJSON(t, r, http.MethodGet, "/memories", tokenA, nil)
	var ownSummaries []models.MemorySummary
	if err := json.Unmarshal(w.Body.Bytes(), &ownSummaries); err != nil {
		t.Fatalf("failed to decode summaries: %v", err)
	}
	if len(ownSummaries) != 1 || ownSummaries[0].Except != "private a" {
		t.Errorf("unexpected own listing: %+v", ownSummaries)
	}

	// Anonymous listing returns only public memories
	w = doJSON(t, r, http.MethodGet, "/memories", "", nil)
	var publicSummaries []models.MemorySummary
	if err := json.Unmarshal(w.Body.Bytes(), &publicSummaries); err != nil {
		t.Fatalf("failed to decode summaries: %v", err)
	}
	if len(publicSummaries) != 1 || publicSummaries[0].ID != public.ID {
		t.Errorf("unexpected public listing: %+v", publicSummaries)
	}
}
