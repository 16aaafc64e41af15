// Package content produces the text payloads the bot publishes. The
// provider is the terminal error boundary for content generation: any
// backend failure degrades to a static phrase set, never to an error.
package content

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sablewing/magpie/api/schemas"
	"github.com/sablewing/magpie/internal/config"
)

// maxPostRunes is the platform's hard length limit. Prompts ask for less
// (240) to leave headroom, but generated text is clipped here regardless.
const maxPostRunes = 280

const (
	postSystemPrompt = "You write short, engaging social media posts. " +
		"Return only the post text with no commentary, no markdown, and no surrounding quotes."
	replySystemPrompt = "You write short, friendly replies to social media posts. " +
		"Return only the reply text with no commentary, no markdown, and no surrounding quotes."
)

// replyFallbacks are generic acknowledgements used when the backend cannot
// produce a contextual reply.
var replyFallbacks = []string{
	"Thanks for sharing this!",
	"Really interesting point.",
	"Great perspective, appreciate you posting it.",
	"This is worth a read.",
	"Good food for thought!",
}

// Provider implements schemas.ContentProvider on top of an optional
// generative backend. A nil backend is valid and yields fallback content
// only.
type Provider struct {
	llm    schemas.LLMClient
	topics []string
	opts   schemas.GenerationOptions
	logger *zap.Logger

	// Injection points for deterministic tests.
	randIntn func(int) int
	now      func() time.Time
}

var _ schemas.ContentProvider = (*Provider)(nil)

// NewProvider wires a provider from configuration. llm may be nil when no
// backend API key is configured.
func NewProvider(llm schemas.LLMClient, cfg config.ContentConfig, logger *zap.Logger) *Provider {
	return &Provider{
		llm:    llm,
		topics: cfg.Topics,
		opts: schemas.GenerationOptions{
			Temperature:     cfg.Temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
		logger:   logger.Named("content"),
		randIntn: rand.Intn,
		now:      time.Now,
	}
}

// Generate produces text for the given kind. For ContentReply, seed is the
// text of the post being replied to. Generate never fails.
func (p *Provider) Generate(ctx context.Context, kind schemas.ContentKind, seed string) string {
	switch kind {
	case schemas.ContentReply:
		return p.generateReply(ctx, seed)
	default:
		return p.generatePost(ctx)
	}
}

func (p *Provider) generatePost(ctx context.Context) string {
	topic := p.topics[p.randIntn(len(p.topics))]

	if p.llm != nil {
		prompt := fmt.Sprintf(
			"Write an engaging social media post about %s. Keep it under 240 characters and include 1 or 2 relevant hashtags.",
			topic,
		)
		text, err := p.llm.Generate(ctx, schemas.GenerationRequest{
			SystemPrompt: postSystemPrompt,
			UserPrompt:   prompt,
			Options:      p.opts,
		})
		if err == nil {
			return normalize(text)
		}
		p.logger.Warn("Content backend failed for post, using fallback.",
			zap.String("topic", topic), zap.Error(err))
	}

	return normalize(p.fallbackPost(topic))
}

func (p *Provider) generateReply(ctx context.Context, original string) string {
	if p.llm != nil {
		prompt := fmt.Sprintf(
			"Write a friendly reply of one or two sentences to this post: %q. Stay on topic and do not use hashtags.",
			original,
		)
		text, err := p.llm.Generate(ctx, schemas.GenerationRequest{
			SystemPrompt: replySystemPrompt,
			UserPrompt:   prompt,
			Options:      p.opts,
		})
		if err == nil {
			return normalize(text)
		}
		p.logger.Warn("Content backend failed for reply, using fallback.", zap.Error(err))
	}

	return normalize(replyFallbacks[p.randIntn(len(replyFallbacks))])
}

// fallbackPost is the fixed template used when generation is unavailable.
// The timestamp keeps repeated fallbacks from tripping duplicate-content
// rejection on the platform side.
func (p *Provider) fallbackPost(topic string) string {
	return fmt.Sprintf("Thinking about %s today. What's everyone working on? (%s)",
		topic, p.now().Format("Jan 2, 15:04"))
}

// quoteCutset covers the straight and typographic quotes models like to wrap
// output in.
const quoteCutset = "\"'“”‘’"

// normalize strips surrounding quote characters unconditionally and clips
// the result to the platform length limit on a rune boundary.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, quoteCutset)
	text = strings.TrimSpace(text)

	runes := []rune(text)
	if len(runes) > maxPostRunes {
		text = string(runes[:maxPostRunes])
	}
	return text
}
