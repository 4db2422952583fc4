package services

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/shopspring/decimal"
)

// Aggregate concatenates listings in source order, keeping each source's own order.
// Empty and failed results contribute nothing.
func Aggregate(results []FetchResult) []models.Listing {
	total := 0
	for _, result := range results {
		total += len(result.Listings)
	}

	listings := make([]models.Listing, 0, total)
	for _, result := range results {
		if result.Outcome != FetchOutcomeListings {
			continue
		}
		listings = append(listings, result.Listings...)
	}
	return listings
}

// HistoricalGenerator produces the synthetic daily price series used as history.
// It does not reflect observed prices.
type HistoricalGenerator struct {
	now func() time.Time
}

func NewHistoricalGenerator() *HistoricalGenerator {
	return NewHistoricalGeneratorWith(time.Now)
}

// NewHistoricalGeneratorWith creates a generator with an explicit clock
func NewHistoricalGeneratorWith(now func() time.Time) *HistoricalGenerator {
	return &HistoricalGenerator{now: now}
}

// GenerateForRoute returns window points, one per day from today-window to today-1, ascending
// by date. The randomness is derived from the route, the travel date and today's date, so
// repeated searches on the same day see the same series.
func (g *HistoricalGenerator) GenerateForRoute(query models.RouteQuery, window int) []models.HistoricalPoint {
	now := g.now()
	hash := fnv.New64a()
	fmt.Fprintf(hash, "%s|%s|%s|%s", query.Origin, query.Destination, query.DateString(), now.Format("2006-01-02"))
	return buildHistory(rand.New(rand.NewSource(int64(hash.Sum64()))), now, window)
}

func buildHistory(rng *rand.Rand, now time.Time, window int) []models.HistoricalPoint {
	if window <= 0 {
		return []models.HistoricalPoint{}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	randomInt := func(low, high int) int {
		return low + rng.Intn(high-low+1)
	}

	points := make([]models.HistoricalPoint, 0, window)
	for i := window; i >= 1; i-- {
		day := today.AddDate(0, 0, -i)

		base := 300 + randomInt(-50, 50)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			base += randomInt(20, 40)
		}

		// closer to today is more expensive
		proximity := decimal.NewFromInt(int64(window - i)).Div(decimal.NewFromInt(int64(window)))
		adjustment := proximity.Mul(decimal.NewFromInt(int64(randomInt(20, 100))))

		points = append(points, models.HistoricalPoint{
			Date:  day.Format("2006-01-02"),
			Price: decimal.NewFromInt(int64(base)).Add(adjustment).Round(2),
		})
	}

	return points
}

// ToSeries flattens points into the chart payload
func ToSeries(points []models.HistoricalPoint) models.HistoricalSeries {
	series := models.HistoricalSeries{
		Dates:  make([]string, 0, len(points)),
		Prices: make([]float64, 0, len(points)),
	}
	for _, point := range points {
		series.Dates = append(series.Dates, point.Date)
		series.Prices = append(series.Prices, point.Price.InexactFloat64())
	}
	return series
}
