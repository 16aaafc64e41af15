package schemas

import "context"

// SearchClient retrieves interaction candidates from the platform.
type SearchClient interface {
	// Search returns up to maxResults candidates matching the query, in the
	// platform's relevance/recency order. An empty result is not an error.
	Search(ctx context.Context, query string, maxResults int) ([]Candidate, error)
}

// ActionClient performs externally observable write actions on the platform.
// Each call is a single remote request with no local retry; failures are
// classified by the implementation and left to the caller to log.
type ActionClient interface {
	Post(ctx context.Context, text string) error
	Like(ctx context.Context, userID, tweetID string) error
	Retweet(ctx context.Context, userID, tweetID string) error
	Reply(ctx context.Context, text, tweetID string) error
}

// PlatformClient is the full remote platform surface the bot consumes.
type PlatformClient interface {
	SearchClient
	ActionClient
	// Me returns the authenticated account. It doubles as the startup
	// authentication check: a failure here is fatal.
	Me(ctx context.Context) (Account, error)
}

// ContentProvider produces the text payload for a post or a reply. Generate
// never fails: on backend errors it falls back to a static phrase set, making
// it the terminal error boundary for content generation.
type ContentProvider interface {
	Generate(ctx context.Context, kind ContentKind, seed string) string
}

// GenerationOptions controls the text generation process of the backend.
type GenerationOptions struct {
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"max_output_tokens"`
}

// GenerationRequest encapsulates a single-shot request to the generative
// text backend. There is no streaming and no conversation state.
type GenerationRequest struct {
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	Options      GenerationOptions `json:"options"`
}

// LLMClient defines a standard interface for the generative text backend,
// abstracting the specifics of the underlying provider (e.g., Gemini).
type LLMClient interface {
	// Generate produces a text completion for the provided request.
	Generate(ctx context.Context, req GenerationRequest) (string, error)
	// Close cleans up any resources held by the client.
	Close() error
}
