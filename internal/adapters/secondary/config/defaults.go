package config

import (
	"os"
	"strconv"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// GetDefaultConfig returns the default configuration with environment overrides
func GetDefaultConfig() *entities.Config {
	return &entities.Config{
		Server: entities.ServerConfig{
			Host:            getEnvOrDefault("MDLIVE_HOST", "127.0.0.1"),
			Port:            getEnvIntOrDefault("MDLIVE_PORT", 4000),
			ReadTimeout:     getEnvIntOrDefault("MDLIVE_READ_TIMEOUT", 30),
			WriteTimeout:    getEnvIntOrDefault("MDLIVE_WRITE_TIMEOUT", 60),
			ShutdownTimeout: getEnvIntOrDefault("MDLIVE_SHUTDOWN_TIMEOUT", 5),
		},
		Render: entities.RenderConfig{
			Offline: getEnvBoolOrDefault("MDLIVE_OFFLINE", false),
			Context: os.Getenv("MDLIVE_CONTEXT"),
			APIURL:  os.Getenv("MDLIVE_API_URL"),
		},
		Watcher: entities.WatcherConfig{
			DebounceMs:     getEnvIntOrDefault("MDLIVE_DEBOUNCE_MS", 200),
			MaxHoldSeconds: getEnvIntOrDefault("MDLIVE_MAX_HOLD_SECONDS", 30),
		},
		Browser: entities.BrowserConfig{
			AutoOpen: getEnvBoolOrDefault("MDLIVE_AUTO_OPEN", true),
		},
		Logging: entities.LoggingConfig{
			Level:   getEnvOrDefault("MDLIVE_LOG_LEVEL", "info"),
			Verbose: getEnvBoolOrDefault("MDLIVE_LOG_VERBOSE", false),
		},
	}
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBoolOrDefault(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
