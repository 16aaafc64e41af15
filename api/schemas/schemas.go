package schemas

// Candidate is a remote post matched by a keyword search and eligible for
// automated interaction. Candidates are transient; they live for one cycle
// and are never persisted or deduplicated across cycles.
type Candidate struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	AuthorID string `json:"author_id"`
}

// Account identifies the authenticated account acting on the platform. It is
// resolved once at startup and passed explicitly to every component that
// needs it.
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CycleResult summarizes one search-and-act pass. It exists for the duration
// of a single cycle invocation and is consumed by the summary log line.
type CycleResult struct {
	CandidatesFound int `json:"candidates_found"`
	ActionsTaken    int `json:"actions_taken"`
	Retweets        int `json:"retweets"`
	Replies         int `json:"replies"`
}

// ContentKind selects the shape of text the content provider produces.
type ContentKind string

const (
	// ContentPost is a standalone status update.
	ContentPost ContentKind = "post"
	// ContentReply is a short response to an existing post; the seed text is
	// the post being replied to.
	ContentReply ContentKind = "reply"
)
