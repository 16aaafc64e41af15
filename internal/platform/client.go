// Package platform implements the X API v2 client the bot acts through.
// Every operation is a single signed request; failures come back as
// *APIError with a classification the cycle can log and skip past.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dghubble/oauth1"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sablewing/magpie/api/schemas"
	"github.com/sablewing/magpie/internal/config"
)

// Client is an OAuth 1.0a user-context client for the X API v2.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Statically assert the full platform surface is implemented.
var _ schemas.PlatformClient = (*Client)(nil)

// NewClient builds a signed client from the four static credentials.
// Missing or placeholder credentials are rejected here, before any request
// is made (fatal-startup class).
func NewClient(cfg config.TwitterConfig, logger *zap.Logger) (*Client, error) {
	if err := cfg.CredentialsValid(); err != nil {
		return nil, err
	}

	oauthCfg := oauth1.NewConfig(cfg.APIKey, cfg.APISecret)
	token := oauth1.NewToken(cfg.AccessToken, cfg.AccessSecret)
	httpClient := oauthCfg.Client(oauth1.NoContext, token)
	httpClient.Timeout = cfg.Timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger.Named("platform"),
	}, nil
}

// Me returns the authenticated account. A failure here means the credentials
// are unusable and the process should not continue.
func (c *Client) Me(ctx context.Context) (schemas.Account, error) {
	var resp struct {
		Data struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/2/users/me", nil, nil, &resp); err != nil {
		return schemas.Account{}, fmt.Errorf("users/me: %w", err)
	}
	return schemas.Account{ID: resp.Data.ID, Username: resp.Data.Username}, nil
}

// Search queries the recent-search endpoint and returns candidates in the
// order the platform ranked them. An empty result set is not an error.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]schemas.Candidate, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("tweet.fields", "author_id")

	var resp struct {
		Data []struct {
			ID       string `json:"id"`
			Text     string `json:"text"`
			AuthorID string `json:"author_id"`
		} `json:"data"`
		Meta struct {
			ResultCount int `json:"result_count"`
		} `json:"meta"`
	}
	if err := c.do(ctx, http.MethodGet, "/2/tweets/search/recent", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("tweets/search/recent: %w", err)
	}

	candidates := make([]schemas.Candidate, 0, len(resp.Data))
	for _, t := range resp.Data {
		candidates = append(candidates, schemas.Candidate{ID: t.ID, Text: t.Text, AuthorID: t.AuthorID})
	}
	return candidates, nil
}

// Post publishes a standalone status update.
func (c *Client) Post(ctx context.Context, text string) error {
	body := map[string]any{"text": text}
	if err := c.do(ctx, http.MethodPost, "/2/tweets", nil, body, nil); err != nil {
		return fmt.Errorf("tweets (post): %w", err)
	}
	return nil
}

// Like marks a tweet as liked by the given user.
func (c *Client) Like(ctx context.Context, userID, tweetID string) error {
	path := fmt.Sprintf("/2/users/%s/likes", userID)
	body := map[string]any{"tweet_id": tweetID}
	if err := c.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("like %s: %w", tweetID, err)
	}
	return nil
}

// Retweet reposts a tweet on behalf of the given user.
func (c *Client) Retweet(ctx context.Context, userID, tweetID string) error {
	path := fmt.Sprintf("/2/users/%s/retweets", userID)
	body := map[string]any{"tweet_id": tweetID}
	if err := c.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("retweet %s: %w", tweetID, err)
	}
	return nil
}

// Reply publishes text as a reply to the given tweet.
func (c *Client) Reply(ctx context.Context, text, tweetID string) error {
	body := map[string]any{
		"text":  text,
		"reply": map[string]any{"in_reply_to_tweet_id": tweetID},
	}
	if err := c.do(ctx, http.MethodPost, "/2/tweets", nil, body, nil); err != nil {
		return fmt.Errorf("tweets (reply to %s): %w", tweetID, err)
	}
	return nil
}

// do executes one rate-limited, signed request and decodes the response
// into out (when non-nil). Non-2xx responses become classified *APIError
// values; there is no retry at this layer.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request limiter: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := classifyError(resp.StatusCode, respBody)
		c.logger.Debug("API request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("kind", string(apiErr.Kind)),
		)
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}
