package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override CLI flag defaults.
const (
	EnvConfig   = "TAPRUNNER_CONFIG"
	EnvStore    = "TAPRUNNER_STORE"
	EnvDSN      = "TAPRUNNER_DSN"
	EnvLogLevel = "TAPRUNNER_LOG_LEVEL"
	EnvFPS      = "TAPRUNNER_FPS"
)

// LoadEnv loads KEY=VALUE pairs from the given .env files (default ".env")
// into the process environment. Variables already set win. Missing files
// are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// EnvOr returns the value of the environment variable, or fallback when unset.
func EnvOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// EnvIntOr returns the integer value of the environment variable, or fallback
// when it is unset or not a number.
func EnvIntOr(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
