package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fenilmodi00/flightme-backend/database"
	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var handlerNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

type fixedSource struct {
	calls int
}

func (s *fixedSource) Name() string { return "Kayak" }

func (s *fixedSource) Fetch(ctx context.Context, query models.RouteQuery) services.FetchResult {
	s.calls++
	return services.NewListingsResult("Kayak", []models.Listing{
		{Source: "Kayak", Airline: "Delta", Price: decimal.NewFromInt(320), Currency: "USD"},
		{Source: "Kayak", Airline: "JetBlue", Price: decimal.NewFromInt(289), Currency: "USD"},
	})
}

type fixedModel struct {
	calls int
}

func (m *fixedModel) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.calls++
	return `{"analysis": "Fares are steady.", "recommendation": "Book soon", "price_trend": "stable",
		"best_value_airlines": ["JetBlue"], "confidence_level": 0.7, "additional_insights": []}`, nil
}

type handlerFixture struct {
	app    *fiber.App
	source *fixedSource
	model  *fixedModel
	store  *database.Store
}

func setupHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	clock := func() time.Time { return handlerNow }

	store, err := database.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "handlers.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	store.WithClock(clock)

	source := &fixedSource{}
	model := &fixedModel{}

	pipeline := services.NewFlightPriceService(
		services.NewSearchValidator().WithClock(clock),
		services.NewFlightFetcher([]services.Source{source}, nil, nil),
		services.NewHistoricalGeneratorWith(clock),
		services.NewFlightAnalyzer(model, services.NewResultCache(24*time.Hour, 10).WithClock(clock)).WithClock(clock),
		store,
		services.FlightPriceServiceOptions{Freshness: 24 * time.Hour, HistoryWindow: 30},
	).WithClock(clock)

	routes, err := services.NewPopularRouteService()
	if err != nil {
		t.Fatalf("failed to load popular routes: %v", err)
	}

	router := &Router{
		Flights: NewFlightHandler(pipeline, routes, store),
		System:  NewSystemHandler(pipeline, store),
	}
	app := fiber.New()
	router.Register(app)

	return &handlerFixture{app: app, source: source, model: model, store: store}
}

func (f *handlerFixture) get(t *testing.T, target string) (int, []byte) {
	t.Helper()
	resp, err := f.app.Test(httptest.NewRequest("GET", target, nil), -1)
	if err != nil {
		t.Fatalf("request %s failed: %v", target, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp.StatusCode, body
}

func TestAnalyzeEndpoint(t *testing.T) {
	fixture := setupHandlerFixture(t)

	status, body := fixture.get(t, "/api/analyze?origin=JFK&destination=LAX&date=2026-12-01")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result["analysis"] != "Fares are steady." || result["price_trend"] != "stable" {
		t.Errorf("unexpected result %v", result)
	}
	if result["price_trend_emoji"] != "➡️" {
		t.Errorf("expected stable emoji, got %v", result["price_trend_emoji"])
	}
	metadata, _ := result["metadata"].(map[string]interface{})
	priceRange, _ := metadata["price_range"].(map[string]interface{})
	if priceRange["min"] != float64(289) {
		t.Errorf("expected numeric min price 289, got %v", priceRange["min"])
	}
}

func TestAnalyzeEndpointIsIdempotent(t *testing.T) {
	fixture := setupHandlerFixture(t)
	target := "/api/analyze?origin=JFK&destination=LAX&date=2026-12-01"

	_, first := fixture.get(t, target)
	_, second := fixture.get(t, target)

	if string(first) != string(second) {
		t.Errorf("expected byte-identical responses:\n%s\n%s", first, second)
	}
	if fixture.source.calls != 1 || fixture.model.calls != 1 {
		t.Errorf("expected the second call to be served from storage, got %d fetches and %d model calls",
			fixture.source.calls, fixture.model.calls)
	}
}

func TestAnalyzeEndpointRejectsInvalidInput(t *testing.T) {
	fixture := setupHandlerFixture(t)

	testCases := []struct {
		name    string
		target  string
		message string
	}{
		{"same airports", "/api/analyze?origin=JFK&destination=JFK&date=2026-12-01", services.MessageSameAirports},
		{"yesterday", "/api/analyze?origin=JFK&destination=LAX&date=2026-10-14", services.MessageDateInPast},
		{"lowercase", "/api/analyze?origin=jfk&destination=LAX&date=2026-12-01", services.MessageInvalidAirport},
		{"wrong length", "/api/analyze?origin=JFKX&destination=LAX&date=2026-12-01", services.MessageInvalidAirport},
		{"missing date", "/api/analyze?origin=JFK&destination=LAX", services.MessageInvalidDate},
		{"historical too far", "/api/historical?origin=JFK&destination=LAX&date=2028-01-01", services.MessageDateTooFar},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := fixture.get(t, tc.target)
			if status != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", status, body)
			}
			var payload map[string]string
			if err := json.Unmarshal(body, &payload); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if payload["error"] != tc.message {
				t.Errorf("expected %q, got %q", tc.message, payload["error"])
			}
		})
	}

	if fixture.source.calls != 0 {
		t.Errorf("invalid requests must not fetch, got %d calls", fixture.source.calls)
	}
}

func TestHistoricalEndpoint(t *testing.T) {
	fixture := setupHandlerFixture(t)

	status, body := fixture.get(t, "/api/historical?origin=SFO&destination=JFK&date=2026-11-20")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var series models.HistoricalSeries
	if err := json.Unmarshal(body, &series); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(series.Dates) != 30 || len(series.Prices) != 30 {
		t.Errorf("expected 30 points, got %d/%d", len(series.Dates), len(series.Prices))
	}
	if series.Dates[29] != "2026-10-14" {
		t.Errorf("expected the series to end yesterday, got %s", series.Dates[29])
	}
}

func TestPopularRoutesEndpoint(t *testing.T) {
	fixture := setupHandlerFixture(t)

	status, body := fixture.get(t, "/api/routes/popular")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var payload struct {
		Success bool                  `json:"success"`
		Data    []models.PopularRoute `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !payload.Success || len(payload.Data) != 5 {
		t.Errorf("expected 5 suggestions, got %+v", payload)
	}
}

func TestRecentSearchesEndpoint(t *testing.T) {
	fixture := setupHandlerFixture(t)

	fixture.get(t, "/api/analyze?origin=JFK&destination=LAX&date=2026-12-01")

	status, body := fixture.get(t, "/api/searches/recent?limit=5")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var payload struct {
		Success bool                  `json:"success"`
		Data    []models.SearchRecord `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].Origin != "JFK" {
		t.Errorf("expected the analyze call to be recorded, got %+v", payload.Data)
	}

	if status, _ := fixture.get(t, "/api/searches/recent?limit=500"); status != fiber.StatusBadRequest {
		t.Errorf("expected 400 for an oversized limit, got %d", status)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	fixture := setupHandlerFixture(t)

	status, body := fixture.get(t, "/health")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	fixture.get(t, "/api/analyze?origin=JFK&destination=LAX&date=2026-12-01")

	status, body = fixture.get(t, "/api/metrics")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			ResultCacheSize int      `json:"result_cache_size"`
			Sources         []string `json:"sources"`
			DatabasePool    *struct {
				MaxOpenConnections int   `json:"max_open_connections"`
				OpenConnections    int   `json:"open_connections"`
				InUse              int   `json:"in_use"`
				WaitCount          int64 `json:"wait_count"`
			} `json:"database_pool"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Data.ResultCacheSize != 1 || len(payload.Data.Sources) != 1 || payload.Data.Sources[0] != "Kayak" {
		t.Errorf("unexpected metrics payload %s", body)
	}
	pool := payload.Data.DatabasePool
	if pool == nil {
		t.Fatalf("expected database pool stats, got %s", body)
	}
	if pool.MaxOpenConnections != 1 || pool.OpenConnections != 1 || pool.InUse != 0 {
		t.Errorf("expected one idle sqlite connection, got %+v", *pool)
	}

	fixture.store.Close()
	if status, _ := fixture.get(t, "/health"); status != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503 once the database is gone, got %d", status)
	}
}
