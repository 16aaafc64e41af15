// Package llmclient provides the generative-text backend behind
// schemas.LLMClient. The only implementation talks to Google Gemini through
// the official SDK; callers never see provider-specific types.
package llmclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/sablewing/magpie/api/schemas"
	"github.com/sablewing/magpie/internal/config"
)

// GeminiClient implements schemas.LLMClient using the Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

var _ schemas.LLMClient = (*GeminiClient)(nil)

// NewGeminiClient initializes the client. The API key is required; content
// callers that can tolerate a missing backend should not construct one.
func NewGeminiClient(ctx context.Context, cfg config.ContentConfig, logger *zap.Logger) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("llm_client.gemini"),
	}, nil
}

// Generate sends a single-shot request to the Gemini API. No streaming, no
// conversation state, no retry: a failure is reported to the caller, which
// owns the fallback.
func (c *GeminiClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Options.Temperature),
		MaxOutputTokens: req.Options.MaxOutputTokens,
	}
	if req.SystemPrompt != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.UserPrompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty completion")
	}

	c.logger.Debug("LLM generation complete",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("chars", len(text)),
	)
	return text, nil
}

// Close cleans up client resources. The SDK client holds no connections that
// outlive its requests, so this is a no-op kept for interface symmetry.
func (c *GeminiClient) Close() error {
	return nil
}
