// Package oauth implements the GitHub authorization-code flow.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"memories-backend/internal/models"
)

const (
	defaultAuthorizeURL = "https://github.com/login/oauth/authorize"
	defaultTokenURL     = "https://github.com/login/oauth/access_token"
	defaultUserURL      = "https://api.github.com/user"
)

// Profile is the remote user profile fetched after a code exchange
type Profile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
}

// GitHubProvider exchanges authorization codes and fetches profiles.
// One provider round trip per call; retries are left to the caller.
type GitHubProvider struct {
	clientID     string
	clientSecret string
	authorizeURL string
	tokenURL     string
	userURL      string
	httpClient   *http.Client
}

// NewGitHubProvider creates a GitHub OAuth provider
func NewGitHubProvider(clientID, clientSecret string) *GitHubProvider {
	return &GitHubProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		authorizeURL: defaultAuthorizeURL,
		tokenURL:     defaultTokenURL,
		userURL:      defaultUserURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// SetEndpoints overrides the provider URLs. Used by tests.
func (g *GitHubProvider) SetEndpoints(authorizeURL, tokenURL, userURL string) {
	g.authorizeURL = authorizeURL
	g.tokenURL = tokenURL
	g.userURL = userURL
}

// AuthorizeURL returns the GitHub authorization URL to redirect
// unauthenticated clients to
func (g *GitHubProvider) AuthorizeURL() string {
	params := url.Values{}
	params.Add("client_id", g.clientID)
	return g.authorizeURL + "?" + params.Encode()
}

// Exchange trades an authorization code for an access token
func (g *GitHubProvider) Exchange(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", g.clientID)
	data.Set("client_secret", g.clientSecret)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: provider returned status %d", models.ErrExchangeFailed, resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrExchangeFailed, err)
	}

	// GitHub reports a rejected code as 200 with an error payload,
	// which leaves access_token empty
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token in response", models.ErrExchangeFailed)
	}

	return tokenResp.AccessToken, nil
}

// FetchProfile retrieves the remote user profile for an access token
func (g *GitHubProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProfileFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProfileFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", models.ErrProfileFetchFailed, resp.StatusCode)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrProfileFetchFailed, err)
	}

	if err := validateProfile(&profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// validateProfile rejects partial provider data instead of propagating it
func validateProfile(p *Profile) error {
	if p.ID <= 0 {
		return fmt.Errorf("%w: missing numeric id", models.ErrInvalidProfile)
	}
	if p.Login == "" {
		return fmt.Errorf("%w: missing login", models.ErrInvalidProfile)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", models.ErrInvalidProfile)
	}
	u, err := url.Parse(p.AvatarURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: avatar_url is not a URL", models.ErrInvalidProfile)
	}
	return nil
}
