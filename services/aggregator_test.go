package services

import (
	"testing"
	"time"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func TestAggregateKeepsSourceOrder(t *testing.T) {
	results := []FetchResult{
		NewListingsResult("Kayak", []models.Listing{listing("Delta", 300), listing("United", 250)}),
		NewFailedResult("Broken", "timed out"),
		NewListingsResult("Empty", nil),
		NewListingsResult("Expedia", []models.Listing{listing("JetBlue", 199)}),
	}

	listings := Aggregate(results)
	if len(listings) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(listings))
	}

	expected := []string{"Delta", "United", "JetBlue"}
	for i, airline := range expected {
		if listings[i].Airline != airline {
			t.Errorf("listing %d: expected %s, got %s", i, airline, listings[i].Airline)
		}
	}
}

func TestAggregateAllFailed(t *testing.T) {
	listings := Aggregate([]FetchResult{NewFailedResult("A", "down"), NewFailedResult("B", "down")})
	if listings == nil || len(listings) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", listings)
	}
}

func TestNewListingsResultOutcome(t *testing.T) {
	if outcome := NewListingsResult("A", nil).Outcome; outcome != FetchOutcomeEmpty {
		t.Errorf("expected empty outcome, got %s", outcome)
	}
	if outcome := NewListingsResult("A", []models.Listing{listing("Delta", 1)}).Outcome; outcome != FetchOutcomeListings {
		t.Errorf("expected listings outcome, got %s", outcome)
	}
	failed := NewFailedResult("A", "boom")
	if failed.Outcome != FetchOutcomeFailed || failed.Reason != "boom" {
		t.Errorf("unexpected failed result %+v", failed)
	}
}

func TestHistoricalGeneratorShape(t *testing.T) {
	// a Thursday, so the window contains weekends
	now := time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)
	generator := NewHistoricalGeneratorWith(func() time.Time { return now })

	points := generator.GenerateForRoute(testQuery, 30)
	if len(points) != 30 {
		t.Fatalf("expected 30 points, got %d", len(points))
	}
	if points[0].Date != "2026-09-15" {
		t.Errorf("expected first date 2026-09-15, got %s", points[0].Date)
	}
	if points[29].Date != "2026-10-14" {
		t.Errorf("expected last date 2026-10-14, got %s", points[29].Date)
	}

	for i := 1; i < len(points); i++ {
		if points[i].Date <= points[i-1].Date {
			t.Fatalf("dates not ascending at %d: %s then %s", i, points[i-1].Date, points[i].Date)
		}
	}
}

func TestHistoricalGeneratorEmptyWindow(t *testing.T) {
	generator := NewHistoricalGenerator()
	if points := generator.GenerateForRoute(testQuery, 0); len(points) != 0 {
		t.Errorf("expected no points, got %d", len(points))
	}
}

func TestHistoricalGeneratorStableWithinDay(t *testing.T) {
	current := time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC)
	generator := NewHistoricalGeneratorWith(func() time.Time { return current })

	morning := generator.GenerateForRoute(testQuery, 30)
	current = current.Add(10 * time.Hour)
	evening := generator.GenerateForRoute(testQuery, 30)
	if !samePrices(morning, evening) {
		t.Error("expected the same series for the same route later that day")
	}

	otherRoute := testQuery
	otherRoute.Destination = "SFO"
	if samePrices(morning, generator.GenerateForRoute(otherRoute, 30)) {
		t.Error("expected a different route to get a different series")
	}

	current = current.Add(24 * time.Hour)
	if samePrices(morning, generator.GenerateForRoute(testQuery, 30)) {
		t.Error("expected the series to change the next day")
	}
}

func samePrices(a, b []models.HistoricalPoint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Price.Equal(b[i].Price) {
			return false
		}
	}
	return true
}

func TestHistoricalGeneratorProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	base := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

	properties.Property("every generated price stays within the generator bounds", prop.ForAll(
		func(dayOffset int, window int) bool {
			now := base.AddDate(0, 0, dayOffset)
			generator := NewHistoricalGeneratorWith(func() time.Time { return now })
			points := generator.GenerateForRoute(testQuery, window)
			if len(points) != window {
				t.Logf("expected %d points, got %d", window, len(points))
				return false
			}

			// 250 minimum base; 350 base + 40 weekend + <100 proximity maximum
			lower := decimal.NewFromInt(250)
			upper := decimal.NewFromInt(490)
			for _, point := range points {
				if point.Price.LessThan(lower) || point.Price.GreaterThan(upper) {
					t.Logf("price %s on %s out of bounds", point.Price, point.Date)
					return false
				}
				if point.Price.Exponent() < -2 {
					t.Logf("price %s has more than two decimals", point.Price)
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 3650),
		gen.IntRange(1, 90),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestToSeries(t *testing.T) {
	series := ToSeries(history("100.5", "200"))
	if len(series.Dates) != 2 || len(series.Prices) != 2 {
		t.Fatalf("unexpected series %+v", series)
	}
	if series.Dates[0] != "2026-10-01" || series.Prices[0] != 100.5 || series.Prices[1] != 200 {
		t.Errorf("unexpected series %+v", series)
	}

	empty := ToSeries(nil)
	if empty.Dates == nil || empty.Prices == nil {
		t.Error("expected empty slices rather than nil")
	}
}
