package handlers

import (
	"encoding/json"
	"net/http"

	"memories-backend/internal/oauth"
	"memories-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration requests
type AuthHandler struct {
	authService *services.AuthService
	provider    *oauth.GitHubProvider
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, provider *oauth.GitHubProvider) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		provider:    provider,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Code string `json:"code"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Token string `json:"token"`
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Code == "" {
		respondError(w, "code is required", http.StatusBadRequest)
		return
	}

	token, err := h.authService.Register(ctx, req.Code)
	if err != nil {
		log.Warn().Err(err).Msg("Registration failed")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, RegisterResponse{Token: token})
}

// Login handles GET /register: clients without a session are sent to
// GitHub's authorization endpoint
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.provider.AuthorizeURL(), http.StatusTemporaryRedirect)
}
