package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sablewing/magpie/internal/config"
	"github.com/sablewing/magpie/internal/observability"
)

// newEngageCmd runs a single interaction cycle and exits. Useful for cron
// driven setups and for verifying configuration before starting the daemon.
func newEngageCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "engage",
		Short: "Run one interaction cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			components, err := initializeBot(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			result, err := components.Cycle.Run(ctx)
			if err != nil {
				logger.Error("Interaction cycle failed.", zap.Error(err))
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"Cycle complete: %d candidates, %d liked, %d retweeted, %d replied\n",
				result.CandidatesFound, result.ActionsTaken, result.Retweets, result.Replies)
			return nil
		},
	}
}
