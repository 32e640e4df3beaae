package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits requests whose method and path match Pattern.
type Rule struct {
	Pattern string        // Path pattern, see MatchRule
	Method  string        // HTTP method; empty matches any
	Limit   int           // Maximum requests per window; 0 means unlimited
	Window  time.Duration // Time window
	Burst   int           // Burst capacity (defaults to Limit if 0)
}

func (r *Rule) key() string {
	return r.Method + " " + r.Pattern
}

func (r *Rule) burst() int {
	if r.Burst > 0 {
		return r.Burst
	}
	return r.Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	Rules           []Rule
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		Rules:           DefaultRules(),
	}
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	cfg.Enabled = getEnvBool("RATE_LIMIT_ENABLED", cfg.Enabled)
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}

	cfg.DefaultLimit = getEnvInt("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = getEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Whitelist = parseIPList(os.Getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST"))

	return cfg
}

// DefaultRules returns the route-specific limits. Scoring routes fall under
// the default limit like every other page action.
func DefaultRules() []Rule {
	return []Rule{
		// File imports parse request bodies up to the upload cap
		{Pattern: "/headlines/upload", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Pattern: "/api/headlines/upload", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},

		// Each reset mints a new session
		{Pattern: "/session/reset", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},

		// Per-entry actions share one bucket whatever the index
		{Pattern: "/headlines/{index}/remove", Method: "POST", Limit: 300, Window: time.Minute, Burst: 60},
		{Pattern: "/api/headlines/{index}", Limit: 300, Window: time.Minute, Burst: 60},
	}
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
