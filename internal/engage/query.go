package engage

import (
	"fmt"
	"strings"
)

// BuildQuery assembles the recent-search query: keywords OR-joined, with the
// fixed exclusion filters (no retweets, no replies) and a single-language
// restriction. The platform's relevance/recency ordering of the results is
// trusted as-is.
func BuildQuery(keywords []string, language string) string {
	var subject string
	if len(keywords) == 1 {
		subject = keywords[0]
	} else {
		subject = "(" + strings.Join(keywords, " OR ") + ")"
	}
	return fmt.Sprintf("%s -is:retweet -is:reply lang:%s", subject, language)
}
