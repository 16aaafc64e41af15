package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sablewing/magpie/internal/browser"
	"github.com/sablewing/magpie/internal/config"
	"github.com/sablewing/magpie/internal/observability"
)

// newLoginCmd drives the browser-based login variant. A real Chrome window
// opens on the platform login page; once the user signs in, the session
// cookies are captured and persisted. With --check the stored session is
// verified instead.
func newLoginCmd(cfg *config.Config) *cobra.Command {
	var check bool

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Capture a browser login session, or verify a stored one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			browserCfg := cfg.Browser
			if !check {
				// A person has to type into this window, so the login flow
				// ignores the headless setting.
				browserCfg.Headless = false
			}

			session, err := browser.NewSession(browserCfg, logger)
			if err != nil {
				return err
			}

			if check {
				return session.Check(ctx)
			}
			return session.Login(ctx)
		},
	}

	loginCmd.Flags().BoolVar(&check, "check", false, "verify the stored session instead of logging in")
	return loginCmd
}
