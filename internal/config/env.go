package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// envPrefix is prepended to every environment variable name.
const envPrefix = "TASKS_"

// loadFromEnv overrides config from TASKS_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setString := func(name, field string, target *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(name, field string, target *bool) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*target = boolFromString(v)
			sources[field] = SourceEnv
		}
	}
	setInt := func(name, field string, target *int) error {
		v := os.Getenv(envPrefix + name)
		if v == "" {
			return nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", envPrefix, name, v, err)
		}
		*target = i
		sources[field] = SourceEnv
		return nil
	}

	setString("DATA_DIR", "data_dir", &cfg.DataDir)
	setString("BACKEND", "backend", &cfg.Backend)
	setString("KEY", "storage_key", &cfg.StorageKey)
	setBool("VALIDATE", "validate", &cfg.Validate)
	setString("SCHEMA", "schema_file", &cfg.SchemaFile)
	if err := setInt("SAVE_RETRIES", "save_retries", &cfg.SaveRetries); err != nil {
		return err
	}
	if err := setInt("SAVE_RETRY_DELAY_MS", "save_retry_delay_ms", &cfg.SaveRetryDelayMS); err != nil {
		return err
	}

	// Logging configuration
	setString("LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("LOG_CALLER", "log_caller", &cfg.LogCaller)
	setString("LOG_FILE", "log_file", &cfg.LogFile)
	return nil
}

// boolFromString parses common truthy spellings.
func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on", "y":
		return true
	default:
		return false
	}
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}
