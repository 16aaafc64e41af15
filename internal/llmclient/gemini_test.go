package llmclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sablewing/magpie/internal/config"
)

func TestNewGeminiClientRequiresAPIKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		cfg := config.ContentConfig{Model: "gemini-2.5-flash", APIKey: key}
		_, err := NewGeminiClient(context.Background(), cfg, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key")
	}
}

func TestNewGeminiClientConstruction(t *testing.T) {
	cfg := config.ContentConfig{
		Model:  "gemini-2.5-flash",
		APIKey: "test-api-key",
	}
	client, err := NewGeminiClient(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", client.model)
	assert.NoError(t, client.Close())
}
