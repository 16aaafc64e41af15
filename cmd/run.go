package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sablewing/magpie/internal/config"
	"github.com/sablewing/magpie/internal/engage"
	"github.com/sablewing/magpie/internal/observability"
	"github.com/sablewing/magpie/internal/scheduler"
)

// newRunCmd creates the long-running daemon command. It registers the
// interaction cycle and the standalone posting task on their configured
// intervals and blocks until the process receives a shutdown signal.
func newRunCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the bot on its configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			components, err := initializeBot(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			sched := scheduler.New(logger)

			err = sched.Register(scheduler.Task{
				Name:      "engage",
				Interval:  cfg.Schedule.EngageInterval,
				Immediate: true,
				Run: func(ctx context.Context) {
					if _, err := components.Cycle.Run(ctx); err != nil {
						logCycleError(logger, err)
					}
				},
			})
			if err != nil {
				return err
			}

			if cfg.Schedule.PostEnabled {
				err = sched.Register(scheduler.Task{
					Name:     "post",
					Interval: cfg.Schedule.PostInterval,
					Run: func(ctx context.Context) {
						if err := components.Cycle.PostUpdate(ctx); err != nil {
							logger.Error("Scheduled post failed.", zap.Error(err))
						}
					},
				})
				if err != nil {
					return err
				}
			}

			logger.Info("Scheduler starting.",
				zap.Duration("engage_interval", cfg.Schedule.EngageInterval),
				zap.Duration("post_interval", cfg.Schedule.PostInterval),
				zap.Bool("post_enabled", cfg.Schedule.PostEnabled))

			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("Shutdown complete.")
			return nil
		},
	}
}

// logCycleError keeps scheduler noise proportional: a skipped overlapping
// trigger is expected behavior, everything else is a real failure.
func logCycleError(logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, context.Canceled):
	case errors.Is(err, engage.ErrCycleInFlight):
		// Already logged by the cycle at Warn.
	default:
		logger.Error("Interaction cycle failed.", zap.Error(err))
	}
}
