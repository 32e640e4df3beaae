package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
)

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable.
// ok is false when the variable is unset.
func getEnvInt(key string) (value int, ok bool, err error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %v", key, err)
	}
	return value, true, nil
}

// randomSecret returns a per-process session key.
// Cookies issued before a restart stop validating.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
