package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fenilmodi00/flightme-backend/models"
	"github.com/fenilmodi00/flightme-backend/shared"
	"github.com/sirupsen/logrus"
)

const analysisSystemInstruction = "You are a flight price analysis expert. Analyze flight pricing data and provide insights and recommendations. Respond in JSON format."

const (
	promptSampleListings   = 5
	promptHistoricalPoints = 10
)

// FlightAnalyzer turns current and historical prices into a model-written analysis.
// Results are cached by request fingerprint.
type FlightAnalyzer struct {
	client  ModelClient
	cache   *ResultCache
	now     func() time.Time
	metrics *shared.ServiceMetrics
}

// NewFlightAnalyzer creates an analyzer; client may be nil when no credentials are configured
func NewFlightAnalyzer(client ModelClient, cache *ResultCache) *FlightAnalyzer {
	return &FlightAnalyzer{
		client:  client,
		cache:   cache,
		now:     time.Now,
		metrics: shared.NewServiceMetrics("FlightAnalyzer"),
	}
}

// WithClock replaces the clock used for result metadata
func (a *FlightAnalyzer) WithClock(now func() time.Time) *FlightAnalyzer {
	a.now = now
	return a
}

// Cache exposes the result cache for sweeping and metrics
func (a *FlightAnalyzer) Cache() *ResultCache {
	return a.cache
}

// GetMetrics returns analyzer counters
func (a *FlightAnalyzer) GetMetrics() *shared.ServiceMetrics {
	return a.metrics
}

// Analyze returns the analysis for request, from cache when an identical request was analysed recently
func (a *FlightAnalyzer) Analyze(ctx context.Context, request models.AnalysisRequest) (*models.AnalysisResult, error) {
	start := time.Now()
	logger := logrus.WithFields(logrus.Fields{
		"component":      "FlightAnalyzer",
		"listings":       len(request.CurrentPrices),
		"history_points": len(request.HistoricalPrices),
	})

	if len(request.CurrentPrices) == 0 {
		a.metrics.IncrementCounter("no_data")
		return nil, shared.NewServiceError(shared.ErrorCategoryNoData, "NO_DATA",
			"No current flight price data available for analysis", "FlightAnalyzer", "analyze", false, nil)
	}

	key, err := Fingerprint(request)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryExternalService, "FINGERPRINT_FAILED", "FlightAnalyzer", "analyze", false)
	}

	if cached, found := a.cache.Get(key); found {
		a.metrics.IncrementCounter("cache_hits")
		logger.Info("Using cached analysis result")
		return cached, nil
	}
	a.metrics.IncrementCounter("cache_misses")

	if a.client == nil {
		return nil, shared.NewServiceError(shared.ErrorCategoryExternalService, "MISSING_CREDENTIALS",
			"LLM API key not found. Please set the LLM_API_KEY (or GROQ_API_KEY) environment variable.",
			"FlightAnalyzer", "analyze", false, nil)
	}

	statistics := Summarize(request.CurrentPrices, request.HistoricalPrices)
	breakdown := ProviderBreakdown(request.CurrentPrices)

	prompt, err := BuildAnalysisPrompt(request, statistics, breakdown)
	if err != nil {
		return nil, shared.WrapError(err, shared.ErrorCategoryExternalService, "PROMPT_FAILED", "FlightAnalyzer", "analyze", false)
	}

	reply, err := a.client.Complete(ctx, analysisSystemInstruction, prompt)
	if err != nil {
		a.metrics.RecordRequest(false, time.Since(start))
		serviceErr := shared.NewServiceError(shared.ErrorCategoryExternalService, "MODEL_REQUEST_FAILED",
			fmt.Sprintf("Failed to analyze flight prices: %v", err), "FlightAnalyzer", "analyze", true, err)
		serviceErr.LogError()
		return nil, serviceErr
	}

	result, err := DecodeAnalysisReply(reply)
	if err != nil {
		a.metrics.RecordRequest(false, time.Since(start))
		serviceErr := shared.NewServiceError(shared.ErrorCategoryExternalService, "MALFORMED_REPLY",
			"Failed to parse analysis results", "FlightAnalyzer", "analyze", true, err)
		serviceErr.LogError()
		return nil, serviceErr
	}

	if !result.PriceTrend.Valid() {
		logger.WithField("reported_trend", result.PriceTrend).Warn("Model returned an unknown price trend, using computed trend")
		result.PriceTrend = statistics.Historical.Trend
	}

	analyzedAt := a.now()
	createdAt := analyzedAt.UTC().Truncate(time.Microsecond)
	result.CreatedAt = &createdAt
	result.Metadata = models.AnalysisMetadata{
		Timestamp:          analyzedAt,
		NumFlightsAnalyzed: len(request.CurrentPrices),
		AirlinesAnalyzed:   len(breakdown),
		PriceRange: models.PriceRange{
			Min:     statistics.Current.Min,
			Max:     statistics.Current.Max,
			Average: statistics.Current.Avg,
		},
	}

	a.cache.Put(key, result)
	a.metrics.RecordRequest(true, time.Since(start))
	logger.WithField("duration", time.Since(start)).Info("Successfully generated flight price analysis")

	return result, nil
}

// BuildAnalysisPrompt renders the fixed-shape analysis prompt
func BuildAnalysisPrompt(request models.AnalysisRequest, statistics PriceStatistics, breakdown []ProviderSummary) (string, error) {
	statisticsJSON, err := json.MarshalIndent(statistics, "", "  ")
	if err != nil {
		return "", err
	}
	breakdownJSON, err := json.MarshalIndent(breakdown, "", "  ")
	if err != nil {
		return "", err
	}

	sample := request.CurrentPrices
	if len(sample) > promptSampleListings {
		sample = sample[:promptSampleListings]
	}
	sampleJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return "", err
	}

	history := request.HistoricalPrices
	if len(history) > promptHistoricalPoints {
		history = history[len(history)-promptHistoricalPoints:]
	}
	if history == nil {
		history = []models.HistoricalPoint{}
	}
	historyJSON, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("\nPlease analyze the following flight pricing data and provide insights and recommendations.\n\n")
	b.WriteString("CURRENT PRICES SUMMARY:\n")
	fmt.Fprintf(&b, "- Minimum Price: $%s\n", statistics.Current.Min.StringFixed(2))
	fmt.Fprintf(&b, "- Maximum Price: $%s\n", statistics.Current.Max.StringFixed(2))
	fmt.Fprintf(&b, "- Average Price: $%s\n", statistics.Current.Avg.StringFixed(2))
	fmt.Fprintf(&b, "- Number of flights found: %d\n\n", len(request.CurrentPrices))
	fmt.Fprintf(&b, "PRICE STATISTICS:\n%s\n\n", statisticsJSON)
	fmt.Fprintf(&b, "AIRLINE BREAKDOWN:\n%s\n\n", breakdownJSON)
	fmt.Fprintf(&b, "SAMPLE OF CURRENT FLIGHT OPTIONS:\n%s\n\n", sampleJSON)
	fmt.Fprintf(&b, "HISTORICAL PRICE TRENDS:\n%s\n\n", historyJSON)
	b.WriteString(`Based on this data, please provide:
1. A detailed analysis of the current pricing situation
2. A prediction of whether prices are likely to rise, fall, or remain stable
3. Recommendation on the best time to book
4. Any specific airlines that offer the best value
5. Price volatility assessment
6. Confidence level in the analysis
7. Additional insights that would help a traveler make a decision

Please format your response as a JSON object with these fields:
- analysis (string): Overall analysis of the price data
- recommendation (string): Specific recommendation for booking
- price_trend (string): One of "rising", "falling", or "stable"
- best_time_to_book (string): When the user should book
- best_value_airlines (array of strings): Airlines offering the best value
- price_volatility (string): Assessment of how much prices are fluctuating
- confidence_level (number between 0 and 1): How confident you are in this analysis
- additional_insights (array of strings): Other relevant insights
- risk_assessment (string): Assessment of booking risk
`)

	return b.String(), nil
}

// flexibleStrings accepts either a JSON array of strings or a single string
type flexibleStrings []string

func (f *flexibleStrings) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*f = []string{}
	} else {
		*f = []string{single}
	}
	return nil
}

// flexibleNumber accepts a JSON number or a numeric string
type flexibleNumber float64

func (n *flexibleNumber) UnmarshalJSON(data []byte) error {
	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*n = flexibleNumber(value)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(text), "%"), 64)
	if err != nil {
		return fmt.Errorf("confidence_level %q is not a number", text)
	}
	if strings.HasSuffix(strings.TrimSpace(text), "%") {
		parsed /= 100
	}
	*n = flexibleNumber(parsed)
	return nil
}

type modelReply struct {
	Analysis           string          `json:"analysis"`
	Recommendation     string          `json:"recommendation"`
	PriceTrend         string          `json:"price_trend"`
	BestTimeToBook     string          `json:"best_time_to_book"`
	BestValueAirlines  flexibleStrings `json:"best_value_airlines"`
	PriceVolatility    string          `json:"price_volatility"`
	ConfidenceLevel    flexibleNumber  `json:"confidence_level"`
	AdditionalInsights flexibleStrings `json:"additional_insights"`
	RiskAssessment     string          `json:"risk_assessment"`
}

// DecodeAnalysisReply parses the model's JSON object, tolerating markdown code fences
func DecodeAnalysisReply(reply string) (*models.AnalysisResult, error) {
	body := extractJSONObject(reply)
	if body == "" {
		return nil, fmt.Errorf("reply contains no JSON object")
	}

	var decoded modelReply
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		return nil, fmt.Errorf("invalid analysis json: %w", err)
	}
	if strings.TrimSpace(decoded.Analysis) == "" {
		return nil, fmt.Errorf("analysis field is missing")
	}

	confidence := float64(decoded.ConfidenceLevel)
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	result := &models.AnalysisResult{
		Analysis:           decoded.Analysis,
		Recommendation:     decoded.Recommendation,
		PriceTrend:         models.PriceTrend(strings.ToLower(strings.TrimSpace(decoded.PriceTrend))),
		BestTimeToBook:     decoded.BestTimeToBook,
		BestValueAirlines:  []string(decoded.BestValueAirlines),
		PriceVolatility:    decoded.PriceVolatility,
		ConfidenceLevel:    confidence,
		AdditionalInsights: []string(decoded.AdditionalInsights),
		RiskAssessment:     decoded.RiskAssessment,
	}
	if result.BestValueAirlines == nil {
		result.BestValueAirlines = []string{}
	}
	if result.AdditionalInsights == nil {
		result.AdditionalInsights = []string{}
	}

	return result, nil
}

// extractJSONObject strips code fences and surrounding prose, returning the outermost object
func extractJSONObject(reply string) string {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
