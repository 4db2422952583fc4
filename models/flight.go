package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices render as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceTrend is the direction label attached to an analysis
type PriceTrend string

const (
	PriceTrendRising  PriceTrend = "rising"
	PriceTrendFalling PriceTrend = "falling"
	PriceTrendStable  PriceTrend = "stable"
)

// Valid reports whether the trend is one of the known labels
func (t PriceTrend) Valid() bool {
	switch t {
	case PriceTrendRising, PriceTrendFalling, PriceTrendStable:
		return true
	}
	return false
}

// Emoji returns the display arrow for the trend
func (t PriceTrend) Emoji() string {
	switch t {
	case PriceTrendRising:
		return "↗️"
	case PriceTrendFalling:
		return "↘️"
	case PriceTrendStable:
		return "➡️"
	default:
		return "❓"
	}
}

// Listing is one priced flight option returned by a single source
type Listing struct {
	Source        string          `json:"source"`
	Airline       string          `json:"airline"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	DepartureTime string          `json:"departure_time"`
	Duration      string          `json:"duration"`
}

// HistoricalPoint is a single dated price observation
type HistoricalPoint struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Price decimal.Decimal `json:"price"`
}

// AnalysisRequest is the analyzer input; its fingerprint keys the result cache
type AnalysisRequest struct {
	CurrentPrices    []Listing         `json:"current_prices"`
	HistoricalPrices []HistoricalPoint `json:"historical_prices"`
}

// PriceRange summarises the current prices in result metadata
type PriceRange struct {
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Average decimal.Decimal `json:"average"`
}

// AnalysisMetadata is attached by the analyzer after the model reply is decoded
type AnalysisMetadata struct {
	Timestamp          time.Time  `json:"timestamp"`
	NumFlightsAnalyzed int        `json:"num_flights_analyzed"`
	AirlinesAnalyzed   int        `json:"airlines_analyzed"`
	PriceRange         PriceRange `json:"price_range"`
}

// AnalysisResult is the language-model analysis of a route's prices
type AnalysisResult struct {
	Analysis           string           `json:"analysis"`
	Recommendation     string           `json:"recommendation"`
	PriceTrend         PriceTrend       `json:"price_trend"`
	BestTimeToBook     string           `json:"best_time_to_book"`
	BestValueAirlines  []string         `json:"best_value_airlines"`
	PriceVolatility    string           `json:"price_volatility"`
	ConfidenceLevel    float64          `json:"confidence_level"`
	AdditionalInsights []string         `json:"additional_insights"`
	RiskAssessment     string           `json:"risk_assessment,omitempty"`
	Metadata           AnalysisMetadata `json:"metadata"`
	PriceTrendEmoji    string           `json:"price_trend_emoji,omitempty"`
	CreatedAt          *time.Time       `json:"created_at,omitempty"`
}

// Clone returns a copy that shares no slices with r
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	clone := *r
	clone.BestValueAirlines = copyStrings(r.BestValueAirlines)
	clone.AdditionalInsights = copyStrings(r.AdditionalInsights)
	if r.CreatedAt != nil {
		createdAt := *r.CreatedAt
		clone.CreatedAt = &createdAt
	}
	return &clone
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// IsFresh reports whether an analysis created at createdAt may still be served at now
func IsFresh(createdAt, now time.Time, window time.Duration) bool {
	return now.Sub(createdAt) < window
}

// HistoricalSeries is the chart payload for the historical endpoint
type HistoricalSeries struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}

// RouteQuery is a validated search for one route on one travel date
type RouteQuery struct {
	Origin      string
	Destination string
	TravelDate  time.Time
}

// DateString returns the travel date as YYYY-MM-DD
func (q RouteQuery) DateString() string {
	return q.TravelDate.Format("2006-01-02")
}
