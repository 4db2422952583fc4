package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fenilmodi00/flightme-backend/config"
	"github.com/fenilmodi00/flightme-backend/database"
	"github.com/fenilmodi00/flightme-backend/services"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run start-up diagnostics against the configured environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		healthy := runChecks(cmd.Context(), cmd.OutOrStdout(), config.LoadConfig())
		if !healthy {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

type checkResult struct {
	name   string
	detail string
	err    error
}

func runChecks(ctx context.Context, out io.Writer, cfg *config.Config) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintf(out, "🏥 flightme Health Check - %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out, strings.Repeat("=", 50))

	results := []checkResult{
		checkDatabase(ctx, cfg),
		checkModelCredentials(cfg),
		checkSources(cfg),
		checkPopularRoutes(),
	}

	passed := 0
	for _, result := range results {
		if result.err != nil {
			fmt.Fprintf(out, "%-20s ❌ FAILED (%v)\n", result.name+":", result.err)
			continue
		}
		passed++
		fmt.Fprintf(out, "%-20s ✅ OK (%s)\n", result.name+":", result.detail)
	}

	fmt.Fprintln(out, strings.Repeat("-", 50))
	total := len(results)
	percent := float64(passed) / float64(total) * 100
	switch {
	case passed == total:
		fmt.Fprintf(out, "🎉 SYSTEM HEALTHY: %d/%d checks passed (%.0f%%)\n", passed, total, percent)
	case passed >= total/2:
		fmt.Fprintf(out, "⚠️  SYSTEM DEGRADED: %d/%d checks passed (%.0f%%)\n", passed, total, percent)
	default:
		fmt.Fprintf(out, "❌ SYSTEM UNHEALTHY: %d/%d checks passed (%.0f%%)\n", passed, total, percent)
	}
	return passed == total
}

func checkDatabase(ctx context.Context, cfg *config.Config) checkResult {
	result := checkResult{name: "Database"}

	store, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		result.err = err
		return result
	}
	defer store.Close()

	if err := store.HealthCheck(ctx); err != nil {
		result.err = err
		return result
	}
	result.detail = string(store.Dialect())
	return result
}

func checkModelCredentials(cfg *config.Config) checkResult {
	result := checkResult{name: "Model credentials"}

	client, err := services.NewModelClient(cfg, nil)
	switch {
	case err != nil:
		result.err = err
	case client == nil:
		result.err = fmt.Errorf("no API key configured for provider %q", cfg.LLMProvider)
	default:
		result.detail = fmt.Sprintf("%s, model %s", cfg.LLMProvider, cfg.GetLLMModel())
	}
	return result
}

func checkSources(cfg *config.Config) checkResult {
	result := checkResult{name: "Flight sources"}

	definitions, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		result.err = err
		return result
	}

	names := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		names = append(names, definition.Name)
	}
	result.detail = strings.Join(names, ", ")
	return result
}

func checkPopularRoutes() checkResult {
	result := checkResult{name: "Popular routes"}

	routes, err := services.NewPopularRouteService()
	if err != nil {
		result.err = err
		return result
	}
	result.detail = fmt.Sprintf("%d routes", len(routes.All()))
	return result
}
