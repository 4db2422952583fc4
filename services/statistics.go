package services

import (
	"sort"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/shopspring/decimal"
)

const (
	trendLookback         = 7
	trendThresholdPercent = 5
)

// CurrentStatistics summarises the prices found for the requested date
type CurrentStatistics struct {
	Min    decimal.Decimal `json:"min"`
	Max    decimal.Decimal `json:"max"`
	Avg    decimal.Decimal `json:"avg"`
	Median decimal.Decimal `json:"median"`
}

// HistoricalStatistics summarises the historical series
type HistoricalStatistics struct {
	Min   decimal.Decimal   `json:"min"`
	Max   decimal.Decimal   `json:"max"`
	Avg   decimal.Decimal   `json:"avg"`
	Trend models.PriceTrend `json:"trend"`
}

// PriceStatistics is sent to the model alongside the raw listings
type PriceStatistics struct {
	Current    CurrentStatistics    `json:"current"`
	Historical HistoricalStatistics `json:"historical"`
}

// ProviderSummary aggregates the listings of one airline
type ProviderSummary struct {
	Airline    string          `json:"airline"`
	MinPrice   decimal.Decimal `json:"min_price"`
	AvgPrice   decimal.Decimal `json:"avg_price"`
	MaxPrice   decimal.Decimal `json:"max_price"`
	NumFlights int             `json:"num_flights"`
}

// Summarize computes current and historical statistics; empty inputs yield zeros
func Summarize(current []models.Listing, historical []models.HistoricalPoint) PriceStatistics {
	currentPrices := make([]decimal.Decimal, 0, len(current))
	for _, listing := range current {
		currentPrices = append(currentPrices, listing.Price)
	}
	historicalPrices := make([]decimal.Decimal, 0, len(historical))
	for _, point := range historical {
		historicalPrices = append(historicalPrices, point.Price)
	}

	minimum, maximum, average := summarizePrices(currentPrices)
	historicalMin, historicalMax, historicalAvg := summarizePrices(historicalPrices)

	return PriceStatistics{
		Current: CurrentStatistics{
			Min:    minimum,
			Max:    maximum,
			Avg:    average,
			Median: upperMedian(currentPrices),
		},
		Historical: HistoricalStatistics{
			Min:   historicalMin,
			Max:   historicalMax,
			Avg:   historicalAvg,
			Trend: ComputeTrend(historical),
		},
	}
}

// ComputeTrend labels the change across the last week of history.
// A change strictly above +5% is rising, strictly below -5% is falling.
func ComputeTrend(historical []models.HistoricalPoint) models.PriceTrend {
	if len(historical) < 2 {
		return models.PriceTrendStable
	}

	recent := historical
	if len(recent) > trendLookback {
		recent = recent[len(recent)-trendLookback:]
	}

	first := recent[0].Price
	last := recent[len(recent)-1].Price
	if first.IsZero() {
		return models.PriceTrendStable
	}

	// (last-first)/first*100 compared against the threshold without dividing
	change := last.Sub(first).Mul(decimal.NewFromInt(100))
	threshold := first.Abs().Mul(decimal.NewFromInt(trendThresholdPercent))
	if first.IsNegative() {
		change = change.Neg()
	}

	switch {
	case change.GreaterThan(threshold):
		return models.PriceTrendRising
	case change.LessThan(threshold.Neg()):
		return models.PriceTrendFalling
	default:
		return models.PriceTrendStable
	}
}

// ProviderBreakdown groups listings by airline in first-seen order
func ProviderBreakdown(current []models.Listing) []ProviderSummary {
	order := make([]string, 0)
	grouped := make(map[string][]decimal.Decimal)

	for _, listing := range current {
		airline := listing.Airline
		if airline == "" {
			airline = "Unknown"
		}
		if _, seen := grouped[airline]; !seen {
			order = append(order, airline)
		}
		grouped[airline] = append(grouped[airline], listing.Price)
	}

	summaries := make([]ProviderSummary, 0, len(order))
	for _, airline := range order {
		prices := grouped[airline]
		minimum, maximum, average := summarizePrices(prices)
		summaries = append(summaries, ProviderSummary{
			Airline:    airline,
			MinPrice:   minimum,
			AvgPrice:   average,
			MaxPrice:   maximum,
			NumFlights: len(prices),
		})
	}
	return summaries
}

func summarizePrices(prices []decimal.Decimal) (decimal.Decimal, decimal.Decimal, decimal.Decimal) {
	if len(prices) == 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}

	minimum := decimal.Min(prices[0], prices[1:]...)
	maximum := decimal.Max(prices[0], prices[1:]...)
	average := decimal.Sum(prices[0], prices[1:]...).Div(decimal.NewFromInt(int64(len(prices))))
	return minimum, maximum, average
}

// upperMedian is the element at index n/2 of the sorted prices
func upperMedian(prices []decimal.Decimal) decimal.Decimal {
	if len(prices) == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	return sorted[len(sorted)/2]
}
