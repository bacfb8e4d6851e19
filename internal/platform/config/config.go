package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort             = "8080"
	DefaultMediaFile        = "media_data.json"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultFetchTimeout     = 15 * time.Second
	DefaultFetchConcurrency = 8
	DefaultFetchRetries     = 2
	DefaultTopLimit         = 12
	DefaultBucketLimit      = 10
	DefaultSidebarLimit     = 5
	DefaultShutdownTimeout  = 10 * time.Second
)

// Settings is the process configuration assembled from the environment.
type Settings struct {
	Port             string
	MediaFile        string
	LogLevel         string
	LogFormat        string
	FetchTimeout     time.Duration
	FetchConcurrency int
	FetchRetries     int
	TopLimit         int
	BucketLimit      int
	SidebarLimit     int
	ShutdownTimeout  time.Duration
}

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. Pass one or more paths
// to load from specific files; with no paths, ".env" is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// FromEnv builds Settings from environment variables, falling back to the
// package defaults.
func FromEnv() Settings {
	return Settings{
		Port:             GetEnv("PORT", DefaultPort),
		MediaFile:        GetEnv("MEDIA_FILE", DefaultMediaFile),
		LogLevel:         GetEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:        GetEnv("LOG_FORMAT", DefaultLogFormat),
		FetchTimeout:     GetEnvDuration("FETCH_TIMEOUT", DefaultFetchTimeout),
		FetchConcurrency: GetEnvInt("FETCH_CONCURRENCY", DefaultFetchConcurrency),
		FetchRetries:     GetEnvInt("FETCH_RETRIES", DefaultFetchRetries),
		TopLimit:         GetEnvInt("TOP_LIMIT", DefaultTopLimit),
		BucketLimit:      GetEnvInt("BUCKET_LIMIT", DefaultBucketLimit),
		SidebarLimit:     GetEnvInt("SIDEBAR_LIMIT", DefaultSidebarLimit),
		ShutdownTimeout:  GetEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
	}
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvDuration parses the environment variable named by key with
// time.ParseDuration ("15s", "2m"). Unset, empty, invalid or non-positive
// values yield fallback.
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
