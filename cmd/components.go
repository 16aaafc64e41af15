package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sablewing/magpie/api/schemas"
	"github.com/sablewing/magpie/internal/config"
	"github.com/sablewing/magpie/internal/content"
	"github.com/sablewing/magpie/internal/engage"
	"github.com/sablewing/magpie/internal/llmclient"
	"github.com/sablewing/magpie/internal/observability"
	"github.com/sablewing/magpie/internal/platform"
)

// botComponents holds the initialized services shared by the run, engage,
// and post commands.
type botComponents struct {
	Platform *platform.Client
	Account  schemas.Account
	LLM      schemas.LLMClient
	Content  *content.Provider
	Cycle    *engage.Cycle
}

// Shutdown releases resources. Safe to call on a partially built set.
func (b *botComponents) Shutdown() {
	if b.LLM != nil {
		if err := b.LLM.Close(); err != nil {
			observability.GetLogger().Warn("Error closing generation backend.", zap.Error(err))
		}
	}
}

// initializeBot performs the startup sequence: validate credentials, build
// the platform client, resolve the acting account, and assemble the content
// provider and interaction cycle. Credential or authentication failures are
// fatal; a missing generation backend only degrades content to the static
// fallbacks.
func initializeBot(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*botComponents, error) {
	components := &botComponents{}

	client, err := platform.NewClient(cfg.Twitter, logger)
	if err != nil {
		return nil, err
	}
	components.Platform = client

	account, err := client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating with the platform: %w", err)
	}
	components.Account = account
	logger.Info("Authenticated.",
		zap.String("account_id", account.ID),
		zap.String("username", account.Username))

	// The interface value must stay nil when no backend exists so the
	// provider takes its fallback-only path.
	var llm schemas.LLMClient
	if cfg.Content.APIKey == "" {
		logger.Warn("No generation API key configured, using static fallback content only.")
	} else {
		gemini, err := llmclient.NewGeminiClient(ctx, cfg.Content, logger)
		if err != nil {
			logger.Warn("Generation backend unavailable, using static fallback content only.", zap.Error(err))
		} else {
			llm = gemini
		}
	}
	components.LLM = llm

	components.Content = content.NewProvider(llm, cfg.Content, logger)
	components.Cycle = engage.New(client, components.Content, account, cfg.Engage, logger)
	return components, nil
}
