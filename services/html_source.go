package services

import (
	"context"
	"net/http"
	"time"

	"github.com/fenilmodi00/flightme-backend/config"
	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
)

// HTMLSource fetches a static results page with colly, no browser needed
type HTMLSource struct {
	definition config.SourceDefinition
	parser     *ListingParser
	timeout    time.Duration
	transport  http.RoundTripper
}

// defaultScraperTransport is shared by collectors that were not given one, so keep-alive
// connections are pooled across requests instead of piling up per collector
var defaultScraperTransport http.RoundTripper = shared.NewPooledTransport()

// NewHTMLSource creates a static-page source
func NewHTMLSource(definition config.SourceDefinition, defaultCurrency string) *HTMLSource {
	return &HTMLSource{
		definition: definition,
		parser:     NewListingParser(definition, defaultCurrency),
		timeout:    definition.WaitTimeout,
		transport:  defaultScraperTransport,
	}
}

// WithTransport replaces the transport used for page requests
func (s *HTMLSource) WithTransport(transport http.RoundTripper) *HTMLSource {
	s.transport = transport
	return s
}

func (s *HTMLSource) Name() string {
	return s.definition.Name
}

// NeedsBrowser is false; pages are fetched over plain HTTP
func (s *HTMLSource) NeedsBrowser() bool {
	return false
}

func (s *HTMLSource) Fetch(ctx context.Context, query models.RouteQuery) FetchResult {
	url := s.definition.BuildURL(query.Origin, query.Destination, query.DateString())

	logger := logrus.WithFields(logrus.Fields{
		"component": "HTMLSource",
		"source":    s.definition.Name,
		"url":       url,
	})

	c := newCollector(ctx, s.timeout, s.transport)

	var listings []models.Listing
	var fetchErr error

	c.OnHTML("html", func(e *colly.HTMLElement) {
		listings = s.parser.ParseSelection(e.DOM)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		logger.WithFields(logrus.Fields{
			"status_code": r.StatusCode,
			"error":       err.Error(),
		}).Warn("Source request failed")
	})

	logger.Info("Scraping source")
	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		return NewFailedResult(s.definition.Name, fetchErr.Error())
	}

	return NewListingsResult(s.definition.Name, listings)
}

// newCollector builds a single-use collector bound to ctx with browser-like headers.
// The transport outlives the collector.
func newCollector(ctx context.Context, timeout time.Duration, transport http.RoundTripper) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(shared.BrowserUserAgent),
		colly.StdlibContext(ctx),
		colly.AllowURLRevisit(),
	)
	c.WithTransport(transport)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		shared.SetBrowserLikeHeaders(*r.Headers)
	})

	return c
}
