package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memories-backend/internal/models"
	"memories-backend/internal/services"
)

func newAuthService(ttl time.Duration) *services.AuthService {
	return services.NewAuthService(nil, nil, "test-secret", ttl)
}

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context())))
	})
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	svc := newAuthService(time.Hour)
	token, err := svc.IssueToken(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	handler := Auth(svc)(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "user-1" {
		t.Errorf("expected user id in context, got %q", w.Body.String())
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	svc := newAuthService(time.Hour)
	expired := newAuthService(-time.Minute)
	expiredToken, err := expired.IssueToken(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"malformed", "Bearer"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expiredToken},
	}

	handler := Auth(svc)(echoUserID())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestOptionalAuthAnonymous(t *testing.T) {
	handler := OptionalAuth(newAuthService(time.Hour))(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected anonymous pass-through, got %d", w.Code)
	}
	if w.Body.String() != "" {
		t.Errorf("expected empty user id, got %q", w.Body.String())
	}
}

func TestOptionalAuthWithToken(t *testing.T) {
	svc := newAuthService(time.Hour)
	token, err := svc.IssueToken(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	handler := OptionalAuth(svc)(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Body.String() != "user-1" {
		t.Errorf("expected user id in context, got %q", w.Body.String())
	}
}

func TestOptionalAuthInvalidTokenIsAnonymous(t *testing.T) {
	handler := OptionalAuth(newAuthService(time.Hour))(echoUserID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected pass-through, got %d", w.Code)
	}
	if w.Body.String() != "" {
		t.Errorf("expected empty user id for invalid token, got %q", w.Body.String())
	}
}
