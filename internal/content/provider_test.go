package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sablewing/magpie/api/schemas"
	"github.com/sablewing/magpie/internal/config"
)

// MockLLMClient mocks the schemas.LLMClient interface.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockLLMClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testContentConfig() config.ContentConfig {
	return config.ContentConfig{
		Temperature:     0.9,
		MaxOutputTokens: 256,
		Topics:          []string{"technology", "open source software"},
	}
}

func newTestProvider(t *testing.T, llm schemas.LLMClient) *Provider {
	p := NewProvider(llm, testContentConfig(), zaptest.NewLogger(t))
	p.randIntn = func(int) int { return 0 } // deterministic topic/phrase draw
	p.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestGeneratePostUsesBackend(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req schemas.GenerationRequest) bool {
		return strings.Contains(req.UserPrompt, "technology") &&
			strings.Contains(req.UserPrompt, "240 characters")
	})).Return("Ship early, ship often. #golang #opensource", nil).Once()

	p := newTestProvider(t, llm)
	got := p.Generate(context.Background(), schemas.ContentPost, "")
	assert.Equal(t, "Ship early, ship often. #golang #opensource", got)
	llm.AssertExpectations(t)
}

func TestGenerateStripsSurroundingQuotes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"double quotes", `"Quoted post"`, "Quoted post"},
		{"single quotes", `'Quoted post'`, "Quoted post"},
		{"curly quotes", "“Quoted post”", "Quoted post"},
		{"quotes with whitespace", "  \"Quoted post\"  ", "Quoted post"},
		{"no quotes untouched", "Plain post", "Plain post"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			llm := new(MockLLMClient)
			llm.On("Generate", mock.Anything, mock.Anything).Return(tc.raw, nil).Once()
			p := newTestProvider(t, llm)
			assert.Equal(t, tc.want, p.Generate(context.Background(), schemas.ContentPost, ""))
		})
	}
}

func TestGenerateNormalizationIsIdempotent(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, mock.Anything).Return(`"Same text every time"`, nil).Twice()

	p := newTestProvider(t, llm)
	first := p.Generate(context.Background(), schemas.ContentPost, "")
	second := p.Generate(context.Background(), schemas.ContentPost, "")
	assert.Equal(t, first, second)
	assert.Equal(t, "Same text every time", first)
}

func TestGeneratePostFallsBackOnBackendFailure(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("quota exceeded")).Once()

	p := newTestProvider(t, llm)
	got := p.Generate(context.Background(), schemas.ContentPost, "")

	require.NotEmpty(t, got)
	// The fallback is templated with the topic and a timestamp.
	assert.Contains(t, got, "technology")
	assert.Contains(t, got, "Jun 1")
}

func TestGenerateReplyUsesCandidateContext(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(req schemas.GenerationRequest) bool {
		return strings.Contains(req.UserPrompt, "concurrency in Go is underrated") &&
			strings.Contains(req.UserPrompt, "do not use hashtags")
	})).Return("Completely agree, channels changed how I design programs.", nil).Once()

	p := newTestProvider(t, llm)
	got := p.Generate(context.Background(), schemas.ContentReply, "concurrency in Go is underrated")
	assert.Equal(t, "Completely agree, channels changed how I design programs.", got)
	llm.AssertExpectations(t)
}

func TestGenerateReplyFallbackIsFromStaticSet(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("timeout")).Once()

	p := newTestProvider(t, llm)
	got := p.Generate(context.Background(), schemas.ContentReply, "anything")

	require.NotEmpty(t, got)
	assert.Contains(t, replyFallbacks, got)
}

func TestGenerateWithoutBackendNeverFails(t *testing.T) {
	p := newTestProvider(t, nil)

	post := p.Generate(context.Background(), schemas.ContentPost, "")
	reply := p.Generate(context.Background(), schemas.ContentReply, "seed")
	assert.NotEmpty(t, post)
	assert.NotEmpty(t, reply)
}

func TestGenerateClipsOverlongText(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, mock.Anything).Return(strings.Repeat("a", 400), nil).Once()

	p := newTestProvider(t, llm)
	got := p.Generate(context.Background(), schemas.ContentPost, "")
	assert.Len(t, []rune(got), maxPostRunes)
}
