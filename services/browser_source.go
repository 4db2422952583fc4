package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/fenilmodi00/flightme-backend/config"
	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/sirupsen/logrus"
)

// ChromeBrowserProvider starts one headless Chrome per Acquire call
type ChromeBrowserProvider struct {
	options []chromedp.ExecAllocatorOption
}

// NewChromeBrowserProvider creates a provider with headless defaults
func NewChromeBrowserProvider() *ChromeBrowserProvider {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("mute-audio", true),
		chromedp.UserAgent(shared.BrowserUserAgent),
		chromedp.WindowSize(1920, 1080),
	)
	return &ChromeBrowserProvider{options: opts}
}

// Acquire launches the browser and returns a context bound to its first tab
func (p *ChromeBrowserProvider) Acquire(ctx context.Context) (context.Context, context.CancelFunc, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, p.options...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	release := func() {
		cancelBrowser()
		cancelAlloc()
		logrus.WithField("component", "ChromeBrowserProvider").Debug("Browser session released")
	}

	// an empty Run starts the browser so launch failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logrus.WithField("component", "ChromeBrowserProvider").Debug("Browser session started")
	return browserCtx, release, nil
}

// PageCapturer loads url, waits for readySelector and returns the rendered HTML
type PageCapturer func(ctx context.Context, url, readySelector string, waitTimeout, settle time.Duration) (string, error)

// BrowserSource renders a results page in the shared browser session and parses it
type BrowserSource struct {
	definition config.SourceDefinition
	parser     *ListingParser
	capture    PageCapturer
	rng        *rand.Rand
	rngMutex   sync.Mutex
}

// NewBrowserSource creates a chromedp-backed source
func NewBrowserSource(definition config.SourceDefinition, defaultCurrency string) *BrowserSource {
	return &BrowserSource{
		definition: definition,
		parser:     NewListingParser(definition, defaultCurrency),
		capture:    captureWithChrome,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithCapturer replaces the page loader
func (s *BrowserSource) WithCapturer(capture PageCapturer) *BrowserSource {
	s.capture = capture
	return s
}

func (s *BrowserSource) Name() string {
	return s.definition.Name
}

func (s *BrowserSource) NeedsBrowser() bool {
	return true
}

// Fetch never returns an error; timeouts and missing elements become failed results
func (s *BrowserSource) Fetch(ctx context.Context, query models.RouteQuery) FetchResult {
	url := s.definition.BuildURL(query.Origin, query.Destination, query.DateString())

	logger := logrus.WithFields(logrus.Fields{
		"component": "BrowserSource",
		"source":    s.definition.Name,
		"url":       url,
	})
	logger.Info("Scraping source")

	html, err := s.capture(ctx, url, s.definition.Selectors.Ready, s.definition.WaitTimeout, s.settleDelay())
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return NewFailedResult(s.definition.Name, fmt.Sprintf("timed out waiting for %q", s.definition.Selectors.Ready))
		}
		return NewFailedResult(s.definition.Name, err.Error())
	}

	listings, err := s.parser.ParseHTML(html)
	if err != nil {
		return NewFailedResult(s.definition.Name, err.Error())
	}

	return NewListingsResult(s.definition.Name, listings)
}

func (s *BrowserSource) settleDelay() time.Duration {
	spread := s.definition.SettleMax - s.definition.SettleMin
	if spread <= 0 {
		return s.definition.SettleMin
	}
	s.rngMutex.Lock()
	defer s.rngMutex.Unlock()
	return s.definition.SettleMin + time.Duration(s.rng.Int63n(int64(spread)+1))
}

func captureWithChrome(ctx context.Context, url, readySelector string, waitTimeout, settle time.Duration) (string, error) {
	if err := chromedp.Run(ctx, chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("navigation failed: %w", err)
	}

	if readySelector != "" {
		waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitReady(readySelector, chromedp.ByQuery))
		cancel()
		if err != nil {
			return "", fmt.Errorf("wait for %q: %w", readySelector, err)
		}
	}

	var html string
	err := chromedp.Run(ctx,
		chromedp.Sleep(settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to capture page: %w", err)
	}

	return html, nil
}
