package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
)

const hotelResultsPage = `<html><body>
<div data-testid="property-card">
  <div data-testid="title">Harbor View Inn</div>
  <a data-testid="title-link" href="/hotel/us/harbor-view.html">Harbor View Inn</a>
  <span data-testid="price-and-discounted-price">$1,245</span>
  <div data-testid="review-score">8.7</div>
</div>
<div data-testid="property-card">
  <div data-testid="title">Budget Lodge</div>
  <a data-testid="title-link" href="https://booking.test/hotel/budget.html">Budget Lodge</a>
</div>
<div data-testid="property-card">
  <div data-testid="title">No Link Hotel</div>
</div>
</body></html>`

func TestParseHotels(t *testing.T) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(hotelResultsPage))
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}

	hotels := ParseHotels(document.Selection, func(href string) string {
		if strings.HasPrefix(href, "/") {
			return "https://booking.test" + href
		}
		return href
	})

	if len(hotels) != 2 {
		t.Fatalf("expected 2 hotels, got %d", len(hotels))
	}
	if hotels[0].Name != "Harbor View Inn" || hotels[0].Price != "1245" || hotels[0].Rating != "8.7" {
		t.Errorf("unexpected first hotel %+v", hotels[0])
	}
	if hotels[0].Link != "https://booking.test/hotel/us/harbor-view.html" {
		t.Errorf("expected absolute link, got %s", hotels[0].Link)
	}
	if hotels[1].Price != "N/A" || hotels[1].Rating != "N/A" {
		t.Errorf("expected N/A defaults, got %+v", hotels[1])
	}
}

func TestSearchHotelsAgainstServer(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("ss")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, hotelResultsPage)
	}))
	defer server.Close()

	service := NewHotelService().WithSearchURL(server.URL + "/searchresults.html")
	hotels, err := service.SearchHotels(context.Background(), " Los Angeles ")
	if err != nil {
		t.Fatalf("SearchHotels failed: %v", err)
	}
	if query != "Los Angeles" {
		t.Errorf("expected trimmed location in query, got %q", query)
	}
	if len(hotels) != 2 {
		t.Fatalf("expected 2 hotels, got %d", len(hotels))
	}
	if hotels[0].Link != server.URL+"/hotel/us/harbor-view.html" {
		t.Errorf("expected link resolved against the server, got %s", hotels[0].Link)
	}
}

func TestSearchHotelsErrors(t *testing.T) {
	service := NewHotelService()
	if _, err := service.SearchHotels(context.Background(), "  "); !shared.HasCategory(err, shared.ErrorCategoryInvalidInput) {
		t.Errorf("expected invalid input for empty location, got %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewHotelService().WithSearchURL(server.URL).SearchHotels(context.Background(), "Paris")
	if !shared.HasCategory(err, shared.ErrorCategorySourceUnavailable) {
		t.Errorf("expected source_unavailable, got %v", err)
	}
}

const attractionsPage = `<html><body>
<div id="mw-content-text">
  <ul>
    <li><b>Griffith Observatory</b>. Public observatory on Mount Hollywood. <a href="/wiki/Griffith_Observatory">more</a></li>
    <li>Santa Monica Pier. Historic pier with an amusement park. <img src="//upload.test/pier.jpg"></li>
    <li>   </li>
  </ul>
</div>
<ul><li><b>Sidebar link</b></li></ul>
</body></html>`

func TestParseAttractions(t *testing.T) {
	document, err := goquery.NewDocumentFromReader(strings.NewReader(attractionsPage))
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}

	attractions := ParseAttractions(document.Selection, "Los Angeles", "https://wiki.test")
	if len(attractions) != 2 {
		t.Fatalf("expected 2 attractions, got %d", len(attractions))
	}

	observatory := attractions[0]
	if observatory.Name != "Griffith Observatory" || observatory.City != "Los Angeles" {
		t.Errorf("unexpected attraction %+v", observatory)
	}
	if !strings.HasPrefix(observatory.Description, "Public observatory on Mount Hollywood.") {
		t.Errorf("unexpected description %q", observatory.Description)
	}
	if observatory.Link == nil || *observatory.Link != "https://wiki.test/wiki/Griffith_Observatory" {
		t.Errorf("unexpected link %v", observatory.Link)
	}
	if observatory.ImageURL != nil {
		t.Errorf("expected no image, got %s", *observatory.ImageURL)
	}

	pier := attractions[1]
	if pier.Name != "Santa Monica Pier" {
		t.Errorf("expected name from the first sentence, got %q", pier.Name)
	}
	if pier.Description != "Historic pier with an amusement park." {
		t.Errorf("unexpected description %q", pier.Description)
	}
	if pier.ImageURL == nil || *pier.ImageURL != "https://upload.test/pier.jpg" {
		t.Errorf("unexpected image %v", pier.ImageURL)
	}
	if pier.Link != nil {
		t.Errorf("expected no link, got %s", *pier.Link)
	}
}

func TestFormatCityTitle(t *testing.T) {
	testCases := map[string]string{
		"New York":      "New_York_City",
		"san francisco": "San_Francisco_Bay_Area",
		"Dallas":        "Dallas-Fort_Worth_metropolitan_area",
		"Paris":         "paris",
		"St. Louis":     "st_louis",
		"Washington DC": "Washington,_D.C.",
	}
	for city, expected := range testCases {
		if title := FormatCityTitle(city); title != expected {
			t.Errorf("FormatCityTitle(%q) = %q, want %q", city, title, expected)
		}
	}
}

func TestGetAttractionsScrapesThenCaches(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		// only the second page pattern exists
		if r.URL.Path != "/wiki/Tourist_attractions_in_Los_Angeles_metropolitan_area" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, attractionsPage)
	}))
	defer server.Close()

	dataDir := t.TempDir()
	service := NewAttractionService(dataDir).WithBaseURL(server.URL)

	attractions, err := service.GetAttractions(context.Background(), "Los Angeles")
	if err != nil {
		t.Fatalf("GetAttractions failed: %v", err)
	}
	if len(attractions) != 2 {
		t.Fatalf("expected 2 attractions, got %d", len(attractions))
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Errorf("expected two page attempts, got %d", hits)
	}

	if _, err := os.Stat(filepath.Join(dataDir, "attractions_los_angeles.json")); err != nil {
		t.Fatalf("expected cache file to be written: %v", err)
	}

	cached, err := service.GetAttractions(context.Background(), "Los Angeles")
	if err != nil {
		t.Fatalf("cached GetAttractions failed: %v", err)
	}
	if len(cached) != 2 || atomic.LoadInt32(&hits) != 2 {
		t.Errorf("expected the second call to be served from cache, hits %d", hits)
	}
}

func TestGetAttractionsUnknownCity(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	dataDir := t.TempDir()
	service := NewAttractionService(dataDir).WithBaseURL(server.URL)

	attractions, err := service.GetAttractions(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("GetAttractions failed: %v", err)
	}
	if len(attractions) != 0 {
		t.Errorf("expected no attractions, got %d", len(attractions))
	}

	entries, _ := os.ReadDir(dataDir)
	if len(entries) != 0 {
		t.Errorf("expected nothing cached for an empty result, got %d files", len(entries))
	}

	if _, err := service.GetAttractions(context.Background(), ""); !shared.HasCategory(err, shared.ErrorCategoryInvalidInput) {
		t.Errorf("expected invalid input for empty city, got %v", err)
	}
}

func TestHTMLSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flights/JFK-LAX/2026-12-01" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, resultsPage)
	}))
	defer server.Close()

	definition := testSourceDefinition(10)
	definition.URLTemplate = server.URL + "/flights/{origin}-{destination}/{date}"
	definition.WaitTimeout = 5 * time.Second

	result := NewHTMLSource(definition, "USD").Fetch(context.Background(), testQuery)
	if result.Outcome != FetchOutcomeListings || len(result.Listings) != 3 {
		t.Fatalf("expected 3 listings, got %+v", result)
	}

	definition.URLTemplate = server.URL + "/missing"
	failed := NewHTMLSource(definition, "USD").Fetch(context.Background(), testQuery)
	if failed.Outcome != FetchOutcomeFailed {
		t.Errorf("expected a failed result for a 404, got %s", failed.Outcome)
	}
}

type countingTransport struct {
	requests int32
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	atomic.AddInt32(&c.requests, 1)
	return http.DefaultTransport.RoundTrip(r)
}

func TestScrapersShareTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch {
		case strings.HasPrefix(r.URL.Path, "/flights/"):
			fmt.Fprint(w, resultsPage)
		case strings.HasPrefix(r.URL.Path, "/wiki/"):
			fmt.Fprint(w, attractionsPage)
		default:
			fmt.Fprint(w, hotelResultsPage)
		}
	}))
	defer server.Close()

	if NewHTMLSource(testSourceDefinition(10), "USD").transport != NewHotelService().transport ||
		NewHotelService().transport != NewAttractionService(t.TempDir()).transport {
		t.Error("expected scrapers to share one default transport")
	}

	transport := &countingTransport{}
	definition := testSourceDefinition(10)
	definition.URLTemplate = server.URL + "/flights/{origin}-{destination}/{date}"

	source := NewHTMLSource(definition, "USD").WithTransport(transport)
	for i := 0; i < 2; i++ {
		if result := source.Fetch(context.Background(), testQuery); result.Outcome != FetchOutcomeListings {
			t.Fatalf("fetch %d failed: %+v", i, result)
		}
	}
	if _, err := NewHotelService().WithSearchURL(server.URL).WithTransport(transport).SearchHotels(context.Background(), "Paris"); err != nil {
		t.Fatalf("SearchHotels failed: %v", err)
	}
	attractions := NewAttractionService(t.TempDir()).WithBaseURL(server.URL).WithTransport(transport)
	if _, err := attractions.GetAttractions(context.Background(), "Paris"); err != nil {
		t.Fatalf("GetAttractions failed: %v", err)
	}

	if requests := atomic.LoadInt32(&transport.requests); requests != 4 {
		t.Errorf("expected every request to go through the injected transport, got %d", requests)
	}
}

func TestGetAttractionsDoesNotBlockOtherCities(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "slowtown") {
			once.Do(func() { close(entered) })
			<-release
		}
		http.NotFound(w, r)
	}))
	defer server.Close()
	defer close(release)

	dataDir := t.TempDir()
	cached := `[{"name": "Louvre", "description": "Art museum.", "link": null, "image_url": null, "city": "Paris"}]`
	if err := os.WriteFile(filepath.Join(dataDir, "attractions_paris.json"), []byte(cached), 0o644); err != nil {
		t.Fatalf("failed to seed cache: %v", err)
	}

	service := NewAttractionService(dataDir).WithBaseURL(server.URL)
	go service.GetAttractions(context.Background(), "Slowtown")
	<-entered

	done := make(chan []models.Attraction, 1)
	go func() {
		attractions, _ := service.GetAttractions(context.Background(), "Paris")
		done <- attractions
	}()

	select {
	case attractions := <-done:
		if len(attractions) != 1 || attractions[0].Name != "Louvre" {
			t.Errorf("unexpected cached attractions %+v", attractions)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("a slow scrape for one city blocked the lookup of another")
	}
}
