package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/incois/floatchat/internal/core/domain"
)

type Config struct {
	APIPort  string
	LogLevel string

	SearchAPIKey    string
	SearchEngineID  string
	SearchBaseURL   string
	SearchTimeoutMS int

	PerMinuteSearchCalls int
	PerTurnSearchCalls   int
	PerResponseTokens    int

	DefaultTopK     int
	IntentRulesPath string

	APIRateLimitRPS       float64
	APIRateLimitBurst     int
	APIMaxInFlight        int
	APIBackpressureWaitMS int

	BreakerEnabled bool
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		SearchAPIKey:    mustEnv("SEARCH_API_KEY", ""),
		SearchEngineID:  mustEnv("SEARCH_ENGINE_ID", ""),
		SearchBaseURL:   mustEnv("SEARCH_BASE_URL", "https://www.googleapis.com/customsearch/v1"),
		SearchTimeoutMS: mustEnvInt("SEARCH_TIMEOUT_MS", 5000),

		PerMinuteSearchCalls: mustEnvInt("RATE_PER_MINUTE_SEARCH_CALLS", 5),
		PerTurnSearchCalls:   mustEnvInt("RATE_PER_TURN_SEARCH_CALLS", 3),
		PerResponseTokens:    mustEnvInt("RATE_PER_RESPONSE_TOKENS", 1800),

		DefaultTopK:     mustEnvInt("SEARCH_DEFAULT_TOP_K", 5),
		IntentRulesPath: mustEnv("INTENT_RULES_PATH", ""),

		APIRateLimitRPS:       mustEnvFloat("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst:     mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIMaxInFlight:        mustEnvInt("API_MAX_IN_FLIGHT", 64),
		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 200),

		BreakerEnabled: mustEnvBool("SEARCH_BREAKER_ENABLED", true),
	}
}

// Validate rejects configurations that cannot serve a single query. Missing
// search credentials are fatal at startup, never surfaced per request.
func (c Config) Validate() error {
	if c.SearchAPIKey == "" {
		return domain.WrapError(domain.ErrConfiguration, "validate config", fmt.Errorf("SEARCH_API_KEY is required"))
	}
	if c.SearchEngineID == "" {
		return domain.WrapError(domain.ErrConfiguration, "validate config", fmt.Errorf("SEARCH_ENGINE_ID is required"))
	}
	return nil
}

func (c Config) RateLimits() domain.RateLimits {
	limits := domain.DefaultRateLimits()
	if c.PerMinuteSearchCalls > 0 {
		limits.PerMinuteSearchCalls = c.PerMinuteSearchCalls
	}
	if c.PerTurnSearchCalls > 0 {
		limits.PerTurnSearchCalls = c.PerTurnSearchCalls
	}
	if c.PerResponseTokens > 0 {
		limits.PerResponseTokens = c.PerResponseTokens
	}
	return limits
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
