// Package gemini provides a text-generation client for the Google Gemini
// generateContent API, implementing the outbound TextGenerator port.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cookease/api/internal/infrastructure/config"
	"github.com/cookease/api/internal/ports/outbound"
	"go.uber.org/zap"
)

// ErrGenerationFailed is returned for any non-success outcome: transport
// errors, non-200 responses, or responses without a candidate.
var ErrGenerationFailed = errors.New("text generation failed")

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a Gemini client from the application config.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	timeout := cfg.AI.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info("gemini client initialized",
		zap.String("base_url", cfg.AI.BaseURL),
		zap.String("model", cfg.AI.Model),
		zap.Duration("timeout", timeout))

	return &Client{
		baseURL: cfg.AI.BaseURL,
		apiKey:  cfg.AI.APIKey,
		model:   cfg.AI.Model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("gemini-client"),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends the prompt to the model and returns the first candidate's
// text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("gemini request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("gemini returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))
		return "", fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrGenerationFailed, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates in response", ErrGenerationFailed)
	}

	c.logger.Debug("gemini generation complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("prompt_len", len(prompt)))

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

var _ outbound.TextGenerator = (*Client)(nil)
