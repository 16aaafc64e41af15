package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sablewing/magpie/api/schemas"
	"github.com/sablewing/magpie/internal/config"
	"github.com/sablewing/magpie/internal/observability"
)

// newPostCmd publishes one standalone status update and exits. With --text
// the given message is posted verbatim instead of generated content.
func newPostCmd(cfg *config.Config) *cobra.Command {
	var text string

	postCmd := &cobra.Command{
		Use:   "post",
		Short: "Publish one status update and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			components, err := initializeBot(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			if text == "" {
				text = components.Content.Generate(ctx, schemas.ContentPost, "")
			}
			if err := components.Platform.Post(ctx, text); err != nil {
				return fmt.Errorf("posting update: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Posted: %s\n", text)
			return nil
		},
	}

	postCmd.Flags().StringVarP(&text, "text", "t", "", "post this text instead of generating content")
	return postCmd
}
