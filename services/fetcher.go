package services

import (
	"context"
	"time"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/sirupsen/logrus"
)

// FetchOutcome tells apart sources that returned listings, none, or failed
type FetchOutcome int

const (
	FetchOutcomeListings FetchOutcome = iota
	FetchOutcomeEmpty
	FetchOutcomeFailed
)

func (o FetchOutcome) String() string {
	switch o {
	case FetchOutcomeListings:
		return "listings"
	case FetchOutcomeEmpty:
		return "empty"
	case FetchOutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchResult is what one source produced for one query
type FetchResult struct {
	Source   string
	Outcome  FetchOutcome
	Listings []models.Listing
	Reason   string
}

// NewListingsResult wraps listings; no listings is reported as empty
func NewListingsResult(source string, listings []models.Listing) FetchResult {
	if len(listings) == 0 {
		return FetchResult{Source: source, Outcome: FetchOutcomeEmpty}
	}
	return FetchResult{Source: source, Outcome: FetchOutcomeListings, Listings: listings}
}

// NewFailedResult records a source failure and its reason
func NewFailedResult(source, reason string) FetchResult {
	return FetchResult{Source: source, Outcome: FetchOutcomeFailed, Reason: reason}
}

// Source fetches listings for a route from one travel site
type Source interface {
	Name() string
	Fetch(ctx context.Context, query models.RouteQuery) FetchResult
}

// BrowserAware is implemented by sources that can say whether they render pages in the
// shared browser session. Sources without it are assumed to need one.
type BrowserAware interface {
	NeedsBrowser() bool
}

func needsBrowser(source Source) bool {
	aware, ok := source.(BrowserAware)
	return !ok || aware.NeedsBrowser()
}

// BrowserProvider hands out a headless browser session bound to the returned context.
// The cancel function releases the session.
type BrowserProvider interface {
	Acquire(ctx context.Context) (context.Context, context.CancelFunc, error)
}

// FlightFetcher runs every configured source for a query
type FlightFetcher struct {
	sources []Source
	browser BrowserProvider
	pacer   shared.Pacer
	metrics *shared.ServiceMetrics
}

// NewFlightFetcher creates a fetcher over sources in declaration order
func NewFlightFetcher(sources []Source, browser BrowserProvider, pacer shared.Pacer) *FlightFetcher {
	return &FlightFetcher{
		sources: sources,
		browser: browser,
		pacer:   pacer,
		metrics: shared.NewServiceMetrics("FlightFetcher"),
	}
}

// Sources returns the configured source names
func (f *FlightFetcher) Sources() []string {
	names := make([]string, 0, len(f.sources))
	for _, source := range f.sources {
		names = append(names, source.Name())
	}
	return names
}

// GetMetrics returns per-source outcome counters
func (f *FlightFetcher) GetMetrics() *shared.ServiceMetrics {
	return f.metrics
}

// FetchAll queries sources one after another, pausing between them.
// One browser session serves the whole run and is released before returning; it is only
// started when some source needs it.
func (f *FlightFetcher) FetchAll(ctx context.Context, query models.RouteQuery) []FetchResult {
	logger := logrus.WithFields(logrus.Fields{
		"component":   "FlightFetcher",
		"origin":      query.Origin,
		"destination": query.Destination,
		"date":        query.DateString(),
	})

	sessionCtx := ctx
	if f.browser != nil && f.anyNeedsBrowser() {
		browserCtx, release, err := f.browser.Acquire(ctx)
		if err != nil {
			logger.WithError(err).Error("Failed to start browser session, browser sources will fail")
		} else {
			defer release()
			sessionCtx = browserCtx
		}
	}

	results := make([]FetchResult, 0, len(f.sources))
	for i, source := range f.sources {
		if i > 0 && f.pacer != nil {
			f.pacer.Pause(sessionCtx)
		}

		if err := sessionCtx.Err(); err != nil {
			results = append(results, NewFailedResult(source.Name(), err.Error()))
			continue
		}

		start := time.Now()
		result := f.fetchOne(sessionCtx, source, query)
		f.metrics.RecordRequest(result.Outcome != FetchOutcomeFailed, time.Since(start))
		f.metrics.IncrementCounter(source.Name() + "_" + result.Outcome.String())

		fields := logrus.Fields{
			"source":   result.Source,
			"outcome":  result.Outcome.String(),
			"listings": len(result.Listings),
			"duration": time.Since(start),
		}
		if result.Outcome == FetchOutcomeFailed {
			logger.WithFields(fields).WithField("reason", result.Reason).Warn("Source failed")
		} else {
			logger.WithFields(fields).Info("Source fetched")
		}

		results = append(results, result)
	}

	return results
}

func (f *FlightFetcher) anyNeedsBrowser() bool {
	for _, source := range f.sources {
		if needsBrowser(source) {
			return true
		}
	}
	return false
}

// fetchOne isolates a source so a panic inside it becomes a failed result
func (f *FlightFetcher) fetchOne(ctx context.Context, source Source, query models.RouteQuery) (result FetchResult) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logrus.WithFields(logrus.Fields{
				"component": "FlightFetcher",
				"source":    source.Name(),
				"panic":     recovered,
			}).Error("Source panicked")
			result = NewFailedResult(source.Name(), "source panicked")
		}
	}()

	result = source.Fetch(ctx, query)
	if result.Source == "" {
		result.Source = source.Name()
	}
	return result
}
