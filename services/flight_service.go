package services

import (
	"context"
	"time"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/sirupsen/logrus"
)

// AnalysisStore is the persistence the pipeline needs
type AnalysisStore interface {
	FindLatest(ctx context.Context, origin, destination, travelDate string) (*models.AnalysisResult, time.Time, error)
	Save(ctx context.Context, result *models.AnalysisResult, origin, destination, travelDate string) error
	RecordSearch(ctx context.Context, origin, destination, travelDate, requester string) error
}

// FlightPriceService runs the search pipeline: validate, reuse a fresh analysis or fetch, analyse and persist
type FlightPriceService struct {
	validator     *SearchValidator
	fetcher       *FlightFetcher
	generator     *HistoricalGenerator
	analyzer      *FlightAnalyzer
	store         AnalysisStore
	freshness     time.Duration
	historyWindow int
	now           func() time.Time
	metrics       *shared.ServiceMetrics
}

// FlightPriceServiceOptions carries the tunables of the pipeline
type FlightPriceServiceOptions struct {
	Freshness     time.Duration
	HistoryWindow int
}

// NewFlightPriceService wires the pipeline; store may be nil to disable persistence
func NewFlightPriceService(
	validator *SearchValidator,
	fetcher *FlightFetcher,
	generator *HistoricalGenerator,
	analyzer *FlightAnalyzer,
	store AnalysisStore,
	options FlightPriceServiceOptions,
) *FlightPriceService {
	if options.Freshness <= 0 {
		options.Freshness = 24 * time.Hour
	}
	if options.HistoryWindow <= 0 {
		options.HistoryWindow = 30
	}

	return &FlightPriceService{
		validator:     validator,
		fetcher:       fetcher,
		generator:     generator,
		analyzer:      analyzer,
		store:         store,
		freshness:     options.Freshness,
		historyWindow: options.HistoryWindow,
		now:           time.Now,
		metrics:       shared.NewServiceMetrics("FlightPriceService"),
	}
}

// WithClock replaces the clock used for freshness checks and timestamps
func (s *FlightPriceService) WithClock(now func() time.Time) *FlightPriceService {
	s.now = now
	return s
}

// GetMetrics returns pipeline counters
func (s *FlightPriceService) GetMetrics() *shared.ServiceMetrics {
	return s.metrics
}

// Analyzer returns the analyzer used by the pipeline
func (s *FlightPriceService) Analyzer() *FlightAnalyzer {
	return s.analyzer
}

// Fetcher returns the fetcher used by the pipeline
func (s *FlightPriceService) Fetcher() *FlightFetcher {
	return s.fetcher
}

// AnalyzeRoute returns a price analysis for the route. A persisted analysis younger than the
// freshness window is returned as is; otherwise sources are scraped and a new analysis is stored.
func (s *FlightPriceService) AnalyzeRoute(ctx context.Context, origin, destination, date, requester string) (*models.AnalysisResult, error) {
	start := time.Now()

	query, err := s.validator.Validate(origin, destination, date)
	if err != nil {
		s.metrics.IncrementCounter("invalid_requests")
		return nil, err
	}

	logger := logrus.WithFields(logrus.Fields{
		"component":   "FlightPriceService",
		"origin":      query.Origin,
		"destination": query.Destination,
		"date":        query.DateString(),
	})

	if s.store != nil {
		if err := s.store.RecordSearch(ctx, query.Origin, query.Destination, query.DateString(), requester); err != nil {
			s.metrics.IncrementCounter("search_record_failures")
			logger.WithError(err).Warn("Failed to record search")
		}

		persisted, createdAt, err := s.store.FindLatest(ctx, query.Origin, query.Destination, query.DateString())
		if err != nil {
			logger.WithError(err).Warn("Failed to look up persisted analysis, recomputing")
		} else if persisted != nil && models.IsFresh(createdAt, s.now(), s.freshness) {
			s.metrics.IncrementCounter("persisted_hits")
			s.metrics.RecordRequest(true, time.Since(start))
			logger.WithField("created_at", createdAt).Info("Returning persisted analysis")
			return persisted, nil
		}
	}

	results := s.fetcher.FetchAll(ctx, query)
	for _, result := range results {
		if result.Outcome == FetchOutcomeFailed {
			s.metrics.IncrementCounter("source_failures")
		}
	}

	request := models.AnalysisRequest{
		CurrentPrices:    Aggregate(results),
		HistoricalPrices: s.generator.GenerateForRoute(query, s.historyWindow),
	}
	logger.WithField("listings", len(request.CurrentPrices)).Info("Aggregated listings")

	result, err := s.analyzer.Analyze(ctx, request)
	if err != nil {
		s.metrics.RecordRequest(false, time.Since(start))
		return nil, err
	}

	// a cached analysis keeps the time it was first produced
	if result.CreatedAt == nil {
		createdAt := s.now().UTC().Truncate(time.Microsecond)
		result.CreatedAt = &createdAt
	}
	result.PriceTrendEmoji = result.PriceTrend.Emoji()

	if s.store != nil {
		if err := s.store.Save(ctx, result, query.Origin, query.Destination, query.DateString()); err != nil {
			s.metrics.IncrementCounter("save_failures")
			logger.WithError(err).Error("Failed to save analysis, returning unsaved result")
		}
	}

	s.metrics.IncrementCounter("analyses_computed")
	s.metrics.RecordRequest(true, time.Since(start))
	return result, nil
}

// HistoricalPrices returns the synthetic chart series for a validated route, the same series
// AnalyzeRoute analyses on that day
func (s *FlightPriceService) HistoricalPrices(ctx context.Context, origin, destination, date string) (models.HistoricalSeries, error) {
	query, err := s.validator.Validate(origin, destination, date)
	if err != nil {
		return models.HistoricalSeries{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.HistoricalSeries{}, err
	}
	return ToSeries(s.generator.GenerateForRoute(query, s.historyWindow)), nil
}
