package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cookease/api/internal/infrastructure/config"
	"github.com/cookease/api/internal/infrastructure/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.GoogleClientID = "client-id"
	cfg.Auth.GoogleClientSecret = "client-secret"
	cfg.Auth.GoogleRedirectURL = "http://localhost:8080/api/v1/auth/google/callback"
	return cfg
}

func TestLoginURL(t *testing.T) {
	provider := oauth.NewGoogleProvider(testConfig(), zap.NewNop())

	raw := provider.LoginURL("state-123")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "openid email profile", query.Get("scope"))
	assert.Equal(t, "state-123", query.Get("state"))
}

func TestExchange(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		var tokenForm url.Values
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/token":
				require.NoError(t, r.ParseForm())
				tokenForm = r.PostForm
				json.NewEncoder(w).Encode(map[string]any{
					"access_token": "access-token-123",
					"token_type":   "Bearer",
					"expires_in":   3600,
				})
			case "/userinfo":
				assert.Equal(t, "Bearer access-token-123", r.Header.Get("Authorization"))
				json.NewEncoder(w).Encode(map[string]any{
					"sub":   "google-user-1",
					"email": "alice@example.com",
					"name":  "Alice",
				})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer server.Close()

		provider := oauth.NewGoogleProvider(testConfig(), zap.NewNop(),
			oauth.WithEndpoints(server.URL+"/auth", server.URL+"/token", server.URL+"/userinfo"))

		profile, err := provider.Exchange(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "google-user-1", profile.ExternalID)
		assert.Equal(t, "alice@example.com", profile.Email)
		assert.Equal(t, "Alice", profile.DisplayName)

		assert.Equal(t, "auth-code", tokenForm.Get("code"))
		assert.Equal(t, "authorization_code", tokenForm.Get("grant_type"))
		assert.Equal(t, "client-secret", tokenForm.Get("client_secret"))
	})

	t.Run("token endpoint rejects the code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer server.Close()

		provider := oauth.NewGoogleProvider(testConfig(), zap.NewNop(),
			oauth.WithEndpoints(server.URL, server.URL, server.URL))

		_, err := provider.Exchange(context.Background(), "bad-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_grant")
	})

	t.Run("user info without sub", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/token" {
				json.NewEncoder(w).Encode(map[string]any{"access_token": "tok"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"email": "ghost@example.com"})
		}))
		defer server.Close()

		provider := oauth.NewGoogleProvider(testConfig(), zap.NewNop(),
			oauth.WithEndpoints(server.URL+"/auth", server.URL+"/token", server.URL+"/userinfo"))

		_, err := provider.Exchange(context.Background(), "auth-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty sub")
	})
}
