package cli

import (
	"ridematch/internal/shared/config"
	"ridematch/internal/shared/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ridematch",
	Short: "Ride matching service with real-time driver notifications",
	Long: `ridematch matches riders with drivers.

Riders create rides over HTTP, every connected driver receives the offer
through the /ws/notifications stream, and the first driver to accept wins.

Without a subcommand the HTTP server is started (same as 'ridematch serve').
Configuration is read from .env, CONFIG_FILE (default config/config.yaml)
and environment variables, in that order.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute запускает дерево команд
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(cfg config.Config) *logger.Logger {
	return logger.New("ridematch", logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
}
