package services

import (
	"context"
	"fmt"
	"time"

	"memories-backend/internal/models"
	"memories-backend/internal/oauth"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityProvider exchanges authorization codes and fetches remote profiles
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (*oauth.Profile, error)
}

// UserStore persists local users keyed by their remote identity
type UserStore interface {
	FindOrCreate(ctx context.Context, profile *oauth.Profile) (*models.User, error)
}

// AuthService handles registration and session tokens.
//
// Tokens are stateless: validity is determined entirely by signature and
// expiry. There is no revocation list; compromising the signing secret
// invalidates the security of all outstanding tokens. This is a
// deliberate trade-off, not an omission.
type AuthService struct {
	provider  IdentityProvider
	userStore UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(provider IdentityProvider, userStore UserStore, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		provider:  provider,
		userStore: userStore,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// Register exchanges a GitHub authorization code for a session token,
// creating the local user on first login
func (s *AuthService) Register(ctx context.Context, code string) (string, error) {
	accessToken, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	profile, err := s.provider.FetchProfile(ctx, accessToken)
	if err != nil {
		return "", err
	}

	user, err := s.userStore.FindOrCreate(ctx, profile)
	if err != nil {
		return "", fmt.Errorf("failed to find or create user: %w", err)
	}

	return s.IssueToken(user)
}

// IssueToken mints a signed session token for a user. The subject is the
// local user id; name and avatar are informational claims only.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"name":       user.Name,
		"avatar_url": user.AvatarURL,
		"iat":        now.Unix(),
		"exp":        now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a session token and returns the subject user id.
// Any failure (bad signature, expired, malformed) yields ErrUnauthenticated.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUnauthenticated, err)
	}

	if !token.Valid {
		return "", models.ErrUnauthenticated
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.ErrUnauthenticated
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", models.ErrUnauthenticated)
	}

	return sub, nil
}
