package platform

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind categorizes platform API error responses for targeted handling.
// The cycle logs the kind and moves on; nothing retries locally.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindPermission     ErrorKind = "permission"
	KindRateLimited    ErrorKind = "rate_limited"
	KindDuplicate      ErrorKind = "duplicate"
	KindUnknown        ErrorKind = "unknown"
)

// APIError is a classified failure of a single platform API request.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("platform API error (%s, status %d): %s: %s", e.Kind, e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("platform API error (%s, status %d): %s", e.Kind, e.StatusCode, e.Title)
}

// apiErrorBody covers both error envelopes the v2 API uses: the problem
// document ({"title","detail"}) and the legacy list ({"errors":[...]}).
type apiErrorBody struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// duplicateMarkers identify rejections caused by repeating an action the
// account already performed (duplicate tweet text, re-retweeting, etc.).
var duplicateMarkers = []string{"duplicate", "already retweeted", "already liked", "already favorited"}

// classifyError maps an HTTP status and response body onto an APIError.
func classifyError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{Kind: KindUnknown, StatusCode: statusCode}

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		apiErr.Title = parsed.Title
		apiErr.Detail = parsed.Detail
		if apiErr.Detail == "" && len(parsed.Errors) > 0 {
			apiErr.Detail = parsed.Errors[0].Message
		}
	}
	if apiErr.Title == "" {
		apiErr.Title = http.StatusText(statusCode)
	}

	switch statusCode {
	case http.StatusUnauthorized:
		apiErr.Kind = KindAuthentication
	case http.StatusForbidden:
		apiErr.Kind = KindPermission
		if isDuplicate(apiErr.Title + " " + apiErr.Detail) {
			apiErr.Kind = KindDuplicate
		}
	case http.StatusTooManyRequests:
		apiErr.Kind = KindRateLimited
	}
	return apiErr
}

func isDuplicate(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range duplicateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
