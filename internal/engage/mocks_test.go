package engage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sablewing/magpie/api/schemas"
)

// MockPlatform mocks the schemas.PlatformClient interface.
type MockPlatform struct {
	mock.Mock
}

func (m *MockPlatform) Search(ctx context.Context, query string, maxResults int) ([]schemas.Candidate, error) {
	args := m.Called(ctx, query, maxResults)
	if c := args.Get(0); c != nil {
		return c.([]schemas.Candidate), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlatform) Me(ctx context.Context) (schemas.Account, error) {
	args := m.Called(ctx)
	return args.Get(0).(schemas.Account), args.Error(1)
}

func (m *MockPlatform) Post(ctx context.Context, text string) error {
	return m.Called(ctx, text).Error(0)
}

func (m *MockPlatform) Like(ctx context.Context, userID, tweetID string) error {
	return m.Called(ctx, userID, tweetID).Error(0)
}

func (m *MockPlatform) Retweet(ctx context.Context, userID, tweetID string) error {
	return m.Called(ctx, userID, tweetID).Error(0)
}

func (m *MockPlatform) Reply(ctx context.Context, text, tweetID string) error {
	return m.Called(ctx, text, tweetID).Error(0)
}

// stubContent satisfies schemas.ContentProvider with canned text and records
// the seeds it was asked to reply to.
type stubContent struct {
	replySeeds []string
	postText   string
	replyText  string
}

func (s *stubContent) Generate(_ context.Context, kind schemas.ContentKind, seed string) string {
	if kind == schemas.ContentReply {
		s.replySeeds = append(s.replySeeds, seed)
		if s.replyText != "" {
			return s.replyText
		}
		return "stub reply"
	}
	if s.postText != "" {
		return s.postText
	}
	return "stub post"
}
