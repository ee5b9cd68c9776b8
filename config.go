package main

import (
	"os"
	"strconv"
	"strings"
)

const (
	// DefaultAPIBaseURL matches the dev proxy of the conversion service.
	DefaultAPIBaseURL = "http://localhost:8000/api/v1"
	// DefaultMaxUploadMB is the client-side ceiling checked before upload.
	DefaultMaxUploadMB = 500
)

type Config struct {
	APIBaseURL    string
	MaxUploadSize int64 // bytes
	LogFile       string
	LogLevel      string
	StartDir      string
}

func LoadConfig() Config {
	cfg := Config{
		APIBaseURL:    strings.TrimRight(getEnv("QUANTIZER_API_URL", DefaultAPIBaseURL), "/"),
		MaxUploadSize: getEnvAsInt64("QUANTIZER_MAX_UPLOAD_MB", DefaultMaxUploadMB) * 1024 * 1024,
		LogFile:       getEnv("QUANTIZER_LOG_FILE", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		StartDir:      getEnv("QUANTIZER_START_DIR", ""),
	}

	if debug := os.Getenv("DEBUG"); debug != "" {
		switch strings.ToLower(debug) {
		case "1", "true", "yes", "on":
			cfg.LogLevel = "debug"
		}
	}

	if cfg.StartDir == "" {
		if hd, err := os.UserHomeDir(); err == nil {
			cfg.StartDir = hd
		} else {
			cfg.StartDir = "."
		}
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}
