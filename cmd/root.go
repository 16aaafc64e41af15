// Package cmd wires the CLI surface. Configuration and logging are
// initialized once in the root command's PersistentPreRunE so every
// subcommand sees the same resolved state.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sablewing/magpie/internal/config"
	"github.com/sablewing/magpie/internal/observability"
)

// NewRootCommand builds a fresh command tree. Each invocation gets its own
// viper instance and config so tests never share flag or env state.
func NewRootCommand() *cobra.Command {
	var cfgFile string
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:           "magpie",
		Short:         "Magpie is a scheduled engagement bot for X.",
		Long:          "Magpie searches for posts matching configured keywords and likes, retweets, and replies to them on a schedule. Content comes from a generative backend with static fallbacks.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := initializeViper(cfgFile)
			if err != nil {
				return err
			}

			loaded, err := config.NewFromViper(v)
			if err != nil {
				// Fall back to a console logger so the failure is visible.
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "magpie"})
				return err
			}
			*cfg = *loaded

			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Info("Starting magpie.", zap.String("version", Version))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(
		newRunCmd(cfg),
		newEngageCmd(cfg),
		newPostCmd(cfg),
		newLoginCmd(cfg),
		newVersionCmd(),
	)
	return rootCmd
}

// initializeViper loads the config file when present and binds the MAGPIE_*
// environment namespace. A missing config file is not an error; defaults and
// environment variables still apply.
func initializeViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("MAGPIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return v, nil
}
