// Package engage implements the interaction cycle: one scheduled
// search-and-act pass over the platform. The cycle is a thin sequential
// workflow; every remote failure is logged and isolated so the pass always
// completes and returns control to the scheduler.
package engage

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sablewing/magpie/api/schemas"
	"github.com/sablewing/magpie/internal/config"
)

// ErrCycleInFlight is returned when a trigger fires while a previous cycle
// is still running. The new trigger is skipped, not queued.
var ErrCycleInFlight = errors.New("an interaction cycle is already in flight")

// Cycle orchestrates one run: query construction, candidate retrieval,
// bounded sequential processing with probabilistic sub-actions, and pacing
// delays between candidates.
type Cycle struct {
	platform schemas.PlatformClient
	content  schemas.ContentProvider
	account  schemas.Account
	cfg      config.EngageConfig
	logger   *zap.Logger

	// inFlight is a single-slot run-lock. Overlapping triggers are skipped
	// and logged rather than queued.
	inFlight *semaphore.Weighted

	// Injection points for deterministic tests.
	randFloat func() float64
	sleep     func(ctx context.Context, d time.Duration) error
}

// New builds a cycle acting as the given account. The account is resolved
// once at startup; the cycle holds no other state between runs.
func New(
	platform schemas.PlatformClient,
	content schemas.ContentProvider,
	account schemas.Account,
	cfg config.EngageConfig,
	logger *zap.Logger,
) *Cycle {
	return &Cycle{
		platform:  platform,
		content:   content,
		account:   account,
		cfg:       cfg,
		logger:    logger.Named("engage"),
		inFlight:  semaphore.NewWeighted(1),
		randFloat: rand.Float64,
		sleep:     sleepContext,
	}
}

// Run executes one interaction cycle. Zero candidates is a normal early
// termination, not an error. The returned result is valid even when err is
// non-nil (partial progress is reported).
func (c *Cycle) Run(ctx context.Context) (schemas.CycleResult, error) {
	if !c.inFlight.TryAcquire(1) {
		c.logger.Warn("Cycle trigger skipped: previous cycle still in flight.")
		return schemas.CycleResult{}, ErrCycleInFlight
	}
	defer c.inFlight.Release(1)

	cycleID := uuid.NewString()[:8]
	logger := c.logger.With(zap.String("cycle_id", cycleID))

	query := BuildQuery(c.cfg.KeywordList(), c.cfg.Language)
	logger.Info("Cycle starting.", zap.String("query", query), zap.Int("action_cap", c.cfg.ActionCap))

	var result schemas.CycleResult
	candidates, err := c.platform.Search(ctx, query, c.cfg.MaxResults)
	if err != nil {
		return result, err
	}
	result.CandidatesFound = len(candidates)

	if len(candidates) == 0 {
		logger.Info("No candidates found, cycle complete.")
		return result, nil
	}

	for _, candidate := range candidates {
		if result.ActionsTaken >= c.cfg.ActionCap {
			break
		}
		result.ActionsTaken++

		c.processCandidate(ctx, candidate, &result, logger)

		// Pacing between candidates is a functional requirement: it keeps
		// the account's write pattern under the platform's abuse heuristics.
		if err := c.pause(ctx); err != nil {
			return result, err
		}
	}

	if c.cfg.PostInCycle {
		if err := c.PostUpdate(ctx); err != nil {
			logger.Warn("In-cycle post failed.", zap.Error(err))
		}
	}

	logger.Info("Cycle complete.",
		zap.Int("candidates_found", result.CandidatesFound),
		zap.Int("actions_taken", result.ActionsTaken),
		zap.Int("retweets", result.Retweets),
		zap.Int("replies", result.Replies),
	)
	return result, nil
}

// processCandidate performs the like and, when the probability gates pass,
// the retweet and reply for one candidate. A like failure skips the
// sub-actions: the candidate is treated as one failure boundary, and the
// cycle simply moves on.
func (c *Cycle) processCandidate(ctx context.Context, candidate schemas.Candidate, result *schemas.CycleResult, logger *zap.Logger) {
	candLogger := logger.With(zap.String("tweet_id", candidate.ID))

	if err := c.platform.Like(ctx, c.account.ID, candidate.ID); err != nil {
		candLogger.Warn("Like failed, skipping candidate.", zap.Error(err))
		return
	}

	if c.randFloat() < c.cfg.RetweetProbability {
		if err := c.platform.Retweet(ctx, c.account.ID, candidate.ID); err != nil {
			candLogger.Warn("Retweet failed.", zap.Error(err))
		} else {
			result.Retweets++
		}
	}

	if c.randFloat() < c.cfg.ReplyProbability {
		reply := c.content.Generate(ctx, schemas.ContentReply, candidate.Text)
		if err := c.platform.Reply(ctx, reply, candidate.ID); err != nil {
			candLogger.Warn("Reply failed.", zap.Error(err))
		} else {
			result.Replies++
		}
	}
}

// PostUpdate generates and publishes one standalone status update.
func (c *Cycle) PostUpdate(ctx context.Context) error {
	text := c.content.Generate(ctx, schemas.ContentPost, "")
	if err := c.platform.Post(ctx, text); err != nil {
		return err
	}
	c.logger.Info("Status update posted.", zap.Int("chars", len(text)))
	return nil
}

// pause sleeps for the base delay plus uniform random jitter.
func (c *Cycle) pause(ctx context.Context) error {
	delay := c.cfg.BaseDelay + time.Duration(c.randFloat()*float64(c.cfg.DelayJitter))
	return c.sleep(ctx, delay)
}

// sleepContext is a context-aware sleep; it returns the context error when
// cancelled early.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
