package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cookease/api/internal/infrastructure/ai/gemini"
	"github.com/cookease/api/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(baseURL string) *gemini.Client {
	cfg := &config.Config{}
	cfg.AI.BaseURL = baseURL
	cfg.AI.APIKey = "test-key"
	cfg.AI.Model = "gemini-1.5-flash"
	cfg.AI.Timeout = 5 * time.Second
	return gemini.NewClient(cfg, zap.NewNop())
}

func TestGenerate(t *testing.T) {
	t.Run("returns first candidate text", func(t *testing.T) {
		var gotPath, gotKey string
		var gotBody map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.URL.Query().Get("key")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]any{{"text": `["id1","id2"]`}}}},
				},
			})
		}))
		defer server.Close()

		text, err := newClient(server.URL).Generate(context.Background(), "recommend recipes")
		require.NoError(t, err)
		assert.Equal(t, `["id1","id2"]`, text)
		assert.Equal(t, "/v1beta/models/gemini-1.5-flash:generateContent", gotPath)
		assert.Equal(t, "test-key", gotKey)

		contents := gotBody["contents"].([]any)
		parts := contents[0].(map[string]any)["parts"].([]any)
		assert.Equal(t, "recommend recipes", parts[0].(map[string]any)["text"])
	})

	t.Run("non-200 response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newClient(server.URL).Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, gemini.ErrGenerationFailed)
	})

	t.Run("empty candidate list", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
		}))
		defer server.Close()

		_, err := newClient(server.URL).Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, gemini.ErrGenerationFailed)
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := newClient("http://127.0.0.1:1").Generate(context.Background(), "prompt")
		assert.ErrorIs(t, err, gemini.ErrGenerationFailed)
	})
}
