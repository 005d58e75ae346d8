// ABOUTME: Configuration loader for the DokLink auth client
// ABOUTME: Reads an optional .env file then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIURL is used when DOKLINK_API_URL is unset
const DefaultAPIURL = "http://localhost:8080"

type Config struct {
	// Backend
	APIURL      string
	HTTPTimeout time.Duration // DOKLINK_HTTP_TIMEOUT seconds (default: 30)

	// Flow timers, in seconds
	ResendSeconds    int // delay before a code may be re-sent (default: 30)
	CountdownSeconds int // pause after verification before exiting (default: 5)

	// Local state: recent logins and the debug log
	ConfigDir string

	// Logging
	LogLevel  string // debug, info, warn, error (default: info)
	LogFormat string // text, json (default: text)
}

// Load reads envFiles (".env" when none given) into the environment without
// overriding variables that are already set, then builds the Config.
// Missing env files are skipped.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := loadEnvFile(path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		APIURL:           ensureScheme(strings.TrimRight(getEnv("DOKLINK_API_URL", DefaultAPIURL), "/")),
		HTTPTimeout:      time.Duration(getEnvInt("DOKLINK_HTTP_TIMEOUT", 30)) * time.Second,
		ResendSeconds:    getEnvInt("DOKLINK_RESEND_SECONDS", 30),
		CountdownSeconds: getEnvInt("DOKLINK_COUNTDOWN_SECONDS", 5),
		ConfigDir:        getEnv("DOKLINK_CONFIG_DIR", DefaultConfigDir()),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	for _, r := range []struct {
		name     string
		value    int
		min, max int
	}{
		{"DOKLINK_HTTP_TIMEOUT", int(cfg.HTTPTimeout / time.Second), 1, 300},
		{"DOKLINK_RESEND_SECONDS", cfg.ResendSeconds, 1, 600},
		{"DOKLINK_COUNTDOWN_SECONDS", cfg.CountdownSeconds, 1, 60},
	} {
		if r.value < r.min || r.value > r.max {
			return nil, fmt.Errorf("%s must be between %d and %d, got %d", r.name, r.min, r.max, r.value)
		}
	}

	return cfg, nil
}

// DefaultConfigDir returns the default config directory following the XDG base directory layout
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "doklink")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "doklink")
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
