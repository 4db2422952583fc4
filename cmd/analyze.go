package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"

	"github.com/fenilmodi00/flightme-backend/config"
	"github.com/spf13/cobra"
)

var (
	analyzeOrigin      string
	analyzeDestination string
	analyzeDate        string
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze",
	Short:   "Analyse flight prices for one route and print the result as JSON",
	Example: `  flightme analyze --origin JFK --destination LAX --date 2026-12-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		app, err := buildApplication(ctx, config.LoadConfig())
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.pipeline.AnalyzeRoute(ctx, analyzeOrigin, analyzeDestination, analyzeDate, "cli")
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOrigin, "origin", "", "Origin IATA code")
	analyzeCmd.Flags().StringVar(&analyzeDestination, "destination", "", "Destination IATA code")
	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "Travel date (YYYY-MM-DD)")
	analyzeCmd.MarkFlagRequired("origin")
	analyzeCmd.MarkFlagRequired("destination")
	analyzeCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(analyzeCmd)
}
