// Package oauth implements the Google OAuth 2.0 code-exchange flow behind
// the outbound OAuthProvider port.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cookease/api/internal/infrastructure/config"
	"github.com/cookease/api/internal/ports/outbound"
	"go.uber.org/zap"
)

const (
	defaultAuthURL     = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURL    = "https://oauth2.googleapis.com/token"
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"
)

// GoogleProvider authenticates users against Google's OAuth 2.0 endpoints.
// Endpoint URLs are overridable for tests.
type GoogleProvider struct {
	clientID     string
	clientSecret string
	redirectURL  string

	authURL     string
	tokenURL    string
	userInfoURL string

	client *http.Client
	logger *zap.Logger
}

// Option customizes a GoogleProvider.
type Option func(*GoogleProvider)

// WithEndpoints overrides the Google endpoint URLs. Used by tests to point
// the provider at a local server.
func WithEndpoints(authURL, tokenURL, userInfoURL string) Option {
	return func(p *GoogleProvider) {
		p.authURL = authURL
		p.tokenURL = tokenURL
		p.userInfoURL = userInfoURL
	}
}

// NewGoogleProvider creates a provider from the application config.
func NewGoogleProvider(cfg *config.Config, logger *zap.Logger, opts ...Option) *GoogleProvider {
	p := &GoogleProvider{
		clientID:     cfg.Auth.GoogleClientID,
		clientSecret: cfg.Auth.GoogleClientSecret,
		redirectURL:  cfg.Auth.GoogleRedirectURL,
		authURL:      defaultAuthURL,
		tokenURL:     defaultTokenURL,
		userInfoURL:  defaultUserInfoURL,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       logger.Named("google-oauth"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoginURL builds the consent-screen URL the client is redirected to.
func (p *GoogleProvider) LoginURL(state string) string {
	params := url.Values{
		"client_id":     {p.clientID},
		"redirect_uri":  {p.redirectURL},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
		"access_type":   {"offline"},
	}
	return p.authURL + "?" + params.Encode()
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userInfoResponse struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Exchange trades an authorization code for an access token and fetches the
// user's Google profile with it.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*outbound.OAuthProfile, error) {
	token, err := p.exchangeToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange token: %w", err)
	}

	info, err := p.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}

	p.logger.Debug("google profile fetched", zap.String("sub", info.Sub))

	return &outbound.OAuthProfile{
		ExternalID:  info.Sub,
		Email:       info.Email,
		DisplayName: info.Name,
	}, nil
}

func (p *GoogleProvider) exchangeToken(ctx context.Context, code string) (*tokenResponse, error) {
	data := url.Values{
		"code":          {code},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
		"redirect_uri":  {p.redirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("empty access token in response")
	}
	return &token, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, accessToken string) (*userInfoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create user info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user info request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read user info response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var info userInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("parse user info response: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("empty sub in user info response")
	}
	return &info, nil
}

var _ outbound.OAuthProvider = (*GoogleProvider)(nil)
