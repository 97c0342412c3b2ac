package config

import (
	"time"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultDataDir          = "~/.tasks"
	DefaultBackend          = "file"
	DefaultStorageKey       = "@tasks"
	DefaultValidate         = true
	DefaultSaveRetries      = 2
	DefaultSaveRetryDelayMS = 200
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultLogFileName      = "tasks.log"
)

// Config holds the full configuration for tasks.
type Config struct {
	// Storage
	DataDir    string `toml:"data_dir"`
	Backend    string `toml:"backend"`
	StorageKey string `toml:"storage_key"`

	// Validation of the stored blob on load
	Validate   bool   `toml:"validate"`
	SchemaFile string `toml:"schema_file"` // empty means the embedded schema

	// Background saves
	SaveRetries      int `toml:"save_retries"`
	SaveRetryDelayMS int `toml:"save_retry_delay_ms"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogFile       string `toml:"log_file"`
}

// SaveRetryDelay returns the pause between save attempts.
func (c *Config) SaveRetryDelay() time.Duration {
	return time.Duration(c.SaveRetryDelayMS) * time.Millisecond
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_dir",
		"backend",
		"storage_key",
		"validate",
		"schema_file",
		"save_retries",
		"save_retry_delay_ms",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_file",
	}
}

// Fields returns the configurable field names in display order.
func Fields() []string {
	return configFields()
}

// Value returns the string form of a field by name.
func (c *Config) Value(field string) string {
	switch field {
	case "data_dir":
		return c.DataDir
	case "backend":
		return c.Backend
	case "storage_key":
		return c.StorageKey
	case "validate":
		return formatBool(c.Validate)
	case "schema_file":
		return c.SchemaFile
	case "save_retries":
		return formatInt(c.SaveRetries)
	case "save_retry_delay_ms":
		return formatInt(c.SaveRetryDelayMS)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return formatBool(c.LogTimestamps)
	case "log_caller":
		return formatBool(c.LogCaller)
	case "log_file":
		return c.LogFile
	}
	return ""
}
