// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/splitcheck/pkg/logging"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr string

	// DBDriver is "sqlite" or "postgres".
	DBDriver    string
	DBPath      string
	DatabaseURL string

	// PublicBaseURL is the web client's origin and prefixes session links.
	// When empty the request's Origin header is used; without one the link is
	// left to the client.
	PublicBaseURL string
	// UploadBaseURL is this server's public origin, used in local image URLs.
	// When empty it is derived from each upload request.
	UploadBaseURL  string
	AllowedOrigins []string

	// ImageStore is "local" or "s3".
	ImageStore    string
	UploadDir     string
	S3Bucket      string
	S3Prefix      string
	MaxImageBytes int64

	LogLevel  slog.Level
	LogFormat string

	ShutdownTimeout time.Duration
}

// Load reads a .env file if present, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() (Config, error) {
	cfg := Config{
		Addr:           getEnv("ADDR", ":8080"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:         getEnv("DB_PATH", "./data/splitcheck.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PublicBaseURL:  strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		UploadBaseURL:  strings.TrimRight(os.Getenv("UPLOAD_BASE_URL"), "/"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		ImageStore:     strings.ToLower(getEnv("IMAGE_STORE", "local")),
		UploadDir:      getEnv("UPLOAD_DIR", "./data/uploads"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3Prefix:       getEnv("S3_PREFIX", "bills/"),
		LogLevel:       logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.MaxImageBytes, err = strconv.ParseInt(getEnv("MAX_IMAGE_BYTES", "5242880"), 10, 64); err != nil || cfg.MaxImageBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_IMAGE_BYTES must be a positive integer")
	}
	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}

	switch c.ImageStore {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when IMAGE_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
