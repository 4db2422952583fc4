package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fenilmodi00/flightme-backend/config"
	"github.com/fenilmodi00/flightme-backend/database"
	"github.com/fenilmodi00/flightme-backend/services"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/sirupsen/logrus"
)

// application holds the services shared by the serve and analyze commands
type application struct {
	cfg         *config.Config
	store       *database.Store
	httpClients *shared.HTTPClientFactory
	pipeline    *services.FlightPriceService
}

func buildApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	store, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		logrus.WithError(err).Warn("Migration warning")
	}

	httpClients := shared.NewHTTPClientFactory(cfg.GetLLMTimeout())

	modelClient, err := services.NewModelClient(cfg, httpClients)
	if err != nil {
		store.Close()
		return nil, err
	}

	sources, err := buildSources(cfg, httpClients.ScraperTransport())
	if err != nil {
		store.Close()
		return nil, err
	}

	pauseMin, pauseMax := cfg.GetSourcePause()
	fetcher := services.NewFlightFetcher(sources, services.NewChromeBrowserProvider(),
		shared.NewRandomizedPacer(pauseMin, pauseMax))

	cache := services.NewResultCache(cfg.GetCacheTTL(), cfg.GetCacheMaxEntries())
	analyzer := services.NewFlightAnalyzer(modelClient, cache)

	pipeline := services.NewFlightPriceService(
		services.NewSearchValidator(),
		fetcher,
		services.NewHistoricalGenerator(),
		analyzer,
		store,
		services.FlightPriceServiceOptions{
			Freshness:     cfg.GetCacheTTL(),
			HistoryWindow: cfg.GetHistoryWindow(),
		},
	)

	logrus.WithFields(logrus.Fields{
		"component":       "Application",
		"dialect":         store.Dialect(),
		"sources":         fetcher.Sources(),
		"cache_ttl":       cfg.GetCacheTTL(),
		"cache_max":       cfg.GetCacheMaxEntries(),
		"history_window":  cfg.GetHistoryWindow(),
		"source_pause":    fmt.Sprintf("%v-%v", pauseMin, pauseMax),
		"model_available": modelClient != nil,
	}).Info("Flight price services initialized")

	return &application{
		cfg:         cfg,
		store:       store,
		httpClients: httpClients,
		pipeline:    pipeline,
	}, nil
}

// buildSources turns the configured definitions into fetch sources by kind
func buildSources(cfg *config.Config, transport http.RoundTripper) ([]services.Source, error) {
	definitions, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load source definitions: %w", err)
	}

	sources := make([]services.Source, 0, len(definitions))
	for _, definition := range definitions {
		switch definition.Kind {
		case config.SourceKindHTML:
			sources = append(sources, services.NewHTMLSource(definition, cfg.DefaultCurrency).WithTransport(transport))
		default:
			sources = append(sources, services.NewBrowserSource(definition, cfg.DefaultCurrency))
		}
	}
	return sources, nil
}

func (a *application) Close() {
	a.httpClients.CloseAll()
	if err := a.store.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close database")
	}
}

const shutdownTimeout = 15 * time.Second
