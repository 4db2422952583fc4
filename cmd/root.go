package cmd

import (
	"fmt"
	"os"

	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "flightme",
	Short: "Flight price analysis backend",
	Long: `flightme collects flight listings for a route, analyses them with a language model
and serves the results over HTTP.

Commands:
  flightme serve     Run the HTTP API and background jobs (default)
  flightme analyze   Analyse a single route and print the result
  flightme check     Run start-up diagnostics`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	RunE:         runServe,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging := shared.LoggingConfig{Level: logLevel, Format: logFormat}
		return logging.Apply()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", envOr("LOG_LEVEL", "info"),
		"Log level: trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envOr("LOG_FORMAT", "text"),
		"Log format: text, json")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
