package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridchat/internal/config"
	logpkg "github.com/kailas-cloud/hybridchat/internal/logger"
	"github.com/kailas-cloud/hybridchat/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hybridchat",
		Short: "Outdoor gear assistant combining internal knowledge with a web-grounded assistant",
		Long: `hybridchat answers questions from an internal knowledge base (customers,
products, policies) and delegates real-time or unmatched questions to a
web-grounded assistant. Configuration is read from config/<ENV>.yaml.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newAskCmd(),
		newSeedCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

// loadEnv reads the configuration for ENV and builds the matching logger.
func loadEnv() (string, config.Config, *zap.Logger, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return "", config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return "", config.Config{}, nil, fmt.Errorf("create logger: %w", err)
	}
	return env, cfg, logger, nil
}
