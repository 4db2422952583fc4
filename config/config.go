package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	ServerPort            string
	DatabaseURL           string
	LogLevel              string
	LogFormat             string
	CacheTTLHours         string
	CacheMaxEntries       string
	LLMProvider           string
	LLMAPIKey             string
	LLMBaseURL            string
	LLMModel              string
	LLMTimeoutSeconds     string
	SourcesFile           string
	SourcePauseMinMS      string
	SourcePauseMaxMS      string
	HistoryWindowDays     string
	DefaultCurrency       string
	AnalysisRetentionDays string
	DataDir               string
}

// LLM provider names accepted in LLM_PROVIDER
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	DefaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	DefaultGroqModel     = "llama-3.3-70b-versatile"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultClaudeModel   = "claude-3-5-haiku-latest"
	DefaultDatabaseURL   = "sqlite://flightme.db"
	DefaultHistoryWindow = 30
)

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGroq))

	return &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		DatabaseURL:           getEnv("DATABASE_URL", DefaultDatabaseURL),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		CacheTTLHours:         getEnv("CACHE_TTL_HOURS", "24"),
		CacheMaxEntries:       getEnv("CACHE_MAX_ENTRIES", "1000"),
		LLMProvider:           provider,
		LLMAPIKey:             getEnv("LLM_API_KEY", fallbackAPIKey(provider)),
		LLMBaseURL:            getEnv("LLM_BASE_URL", ""),
		LLMModel:              getEnv("LLM_MODEL", ""),
		LLMTimeoutSeconds:     getEnv("LLM_TIMEOUT_SECONDS", "60"),
		SourcesFile:           getEnv("SOURCES_FILE", ""),
		SourcePauseMinMS:      getEnv("SOURCE_PAUSE_MIN_MS", "5000"),
		SourcePauseMaxMS:      getEnv("SOURCE_PAUSE_MAX_MS", "8000"),
		HistoryWindowDays:     getEnv("HISTORY_WINDOW_DAYS", "30"),
		DefaultCurrency:       getEnv("DEFAULT_CURRENCY", "USD"),
		AnalysisRetentionDays: getEnv("ANALYSIS_RETENTION_DAYS", "30"),
		DataDir:               getEnv("DATA_DIR", "data"),
	}
}

// fallbackAPIKey picks the provider-specific key variable when LLM_API_KEY is unset
func fallbackAPIKey(provider string) string {
	switch provider {
	case ProviderAnthropic:
		return getEnv("ANTHROPIC_API_KEY", "")
	case ProviderOpenAI:
		return getEnv("OPENAI_API_KEY", "")
	default:
		return getEnv("GROQ_API_KEY", "")
	}
}

// GetCacheTTL returns the analysis freshness window
func (c *Config) GetCacheTTL() time.Duration {
	return time.Duration(c.intOrDefault("CACHE_TTL_HOURS", c.CacheTTLHours, 24)) * time.Hour
}

// GetCacheMaxEntries returns the result cache capacity
func (c *Config) GetCacheMaxEntries() int {
	return c.intOrDefault("CACHE_MAX_ENTRIES", c.CacheMaxEntries, 1000)
}

// GetLLMTimeout bounds a single model call
func (c *Config) GetLLMTimeout() time.Duration {
	return time.Duration(c.intOrDefault("LLM_TIMEOUT_SECONDS", c.LLMTimeoutSeconds, 60)) * time.Second
}

// GetSourcePause returns the bounds of the randomized pause between sources
func (c *Config) GetSourcePause() (time.Duration, time.Duration) {
	minimum := time.Duration(c.intOrDefault("SOURCE_PAUSE_MIN_MS", c.SourcePauseMinMS, 5000)) * time.Millisecond
	maximum := time.Duration(c.intOrDefault("SOURCE_PAUSE_MAX_MS", c.SourcePauseMaxMS, 8000)) * time.Millisecond
	if maximum < minimum {
		logrus.Warnf("SOURCE_PAUSE_MAX_MS below SOURCE_PAUSE_MIN_MS, using %s for both", minimum)
		maximum = minimum
	}
	return minimum, maximum
}

// GetHistoryWindow returns the number of days in the synthetic history
func (c *Config) GetHistoryWindow() int {
	return c.intOrDefault("HISTORY_WINDOW_DAYS", c.HistoryWindowDays, DefaultHistoryWindow)
}

// GetRetention returns how long persisted analyses are kept
func (c *Config) GetRetention() time.Duration {
	return time.Duration(c.intOrDefault("ANALYSIS_RETENTION_DAYS", c.AnalysisRetentionDays, 30)) * 24 * time.Hour
}

// GetLLMModel returns the configured model or the provider default
func (c *Config) GetLLMModel() string {
	if c.LLMModel != "" {
		return c.LLMModel
	}
	switch c.LLMProvider {
	case ProviderAnthropic:
		return DefaultClaudeModel
	case ProviderOpenAI:
		return DefaultOpenAIModel
	default:
		return DefaultGroqModel
	}
}

// GetLLMBaseURL returns the configured endpoint; empty means the client library default
func (c *Config) GetLLMBaseURL() string {
	if c.LLMBaseURL != "" {
		return c.LLMBaseURL
	}
	if c.LLMProvider == ProviderGroq || c.LLMProvider == "" {
		return DefaultGroqBaseURL
	}
	return ""
}

func (c *Config) intOrDefault(name, raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		logrus.Warnf("Invalid %s value: %s, using default %d", name, raw, fallback)
		return fallback
	}
	return value
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
