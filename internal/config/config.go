// Package config provides configuration loading and validation for the headline scorer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/headline-scorer/internal/scoring"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultEndpoint        = scoring.DefaultEndpoint
	DefaultTimeout         = scoring.DefaultTimeout
	DefaultPort            = 9011
	DefaultSessionTTLHours = 24
	DefaultMaxUploadBytes  = 1 << 20
)

// Duration is a time.Duration that reads from JSON as a string such as "30s".
type Duration time.Duration

// UnmarshalJSON accepts a Go duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string or a number of seconds")
	}
	*d = Duration(seconds * float64(time.Second))
	return nil
}

// Config represents the server configuration.
// Values come from an optional JSON file, then environment variables, then defaults.
type Config struct {
	Endpoint        string   `json:"endpoint,omitempty" validate:"required,url,startswith=http"` // Scoring backend URL
	Timeout         Duration `json:"timeout,omitempty" validate:"gt=0"`                          // Per-call timeout for the backend
	Port            int      `json:"port,omitempty" validate:"min=1,max=65535"`                  // HTTP listen port
	SessionSecret   string   `json:"session_secret,omitempty" validate:"required,min=16"`        // HMAC key for session cookies
	SessionTTLHours int      `json:"session_ttl_hours,omitempty" validate:"min=1"`               // Idle session lifetime
	MaxUploadBytes  int64    `json:"max_upload_bytes,omitempty" validate:"gt=0"`                 // Upload size cap
}

// TimeoutDuration returns Timeout as a time.Duration
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout)
}

// SessionTTL returns the idle session lifetime
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Default returns a configuration with every default filled in except SessionSecret.
func Default() Config {
	return Config{
		Endpoint:        DefaultEndpoint,
		Timeout:         Duration(DefaultTimeout),
		Port:            DefaultPort,
		SessionTTLHours: DefaultSessionTTLHours,
		MaxUploadBytes:  DefaultMaxUploadBytes,
	}
}

// Load builds the effective configuration: the JSON file at path (if any),
// overridden by environment variables, with defaults for anything still unset.
// A random session secret is generated when none is configured.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	merged := cfg.MergeWithDefaults(Default())
	if merged.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		merged.SessionSecret = secret
	}

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields with any of SCORER_ENDPOINT, SCORER_TIMEOUT, PORT,
// SESSION_SECRET, SESSION_TTL_HOURS and MAX_UPLOAD_BYTES that are set.
func (c *Config) ApplyEnv() error {
	if v := getEnvString("SCORER_ENDPOINT", ""); v != "" {
		c.Endpoint = v
	}
	if v := getEnvString("SCORER_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SCORER_TIMEOUT: %w", err)
		}
		c.Timeout = Duration(d)
	}
	if v, ok, err := getEnvInt("PORT"); err != nil {
		return err
	} else if ok {
		c.Port = v
	}
	if v := getEnvString("SESSION_SECRET", ""); v != "" {
		c.SessionSecret = v
	}
	if v, ok, err := getEnvInt("SESSION_TTL_HOURS"); err != nil {
		return err
	} else if ok {
		c.SessionTTLHours = v
	}
	if v, ok, err := getEnvInt("MAX_UPLOAD_BYTES"); err != nil {
		return err
	} else if ok {
		c.MaxUploadBytes = int64(v)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Endpoint == "" {
		result.Endpoint = defaults.Endpoint
	}
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.SessionSecret == "" {
		result.SessionSecret = defaults.SessionSecret
	}
	if result.SessionTTLHours == 0 {
		result.SessionTTLHours = defaults.SessionTTLHours
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}

	return result
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	return validationError(validator.New().Struct(c))
}

// ValidateScoring checks only the fields the scoring client reads.
func (c *Config) ValidateScoring() error {
	return validationError(validator.New().StructPartial(c, "Endpoint", "Timeout"))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("'%s' failed '%s'", fieldName(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, ", "))
}

// fieldName returns the JSON name of a Config field for error messages.
func fieldName(structField string) string {
	switch structField {
	case "Endpoint":
		return "endpoint"
	case "Timeout":
		return "timeout"
	case "Port":
		return "port"
	case "SessionSecret":
		return "session_secret"
	case "SessionTTLHours":
		return "session_ttl_hours"
	case "MaxUploadBytes":
		return "max_upload_bytes"
	default:
		return structField
	}
}
