package config

import (
	"flag"
)

// flagFields maps flag names to config field names.
var flagFields = map[string]string{
	"data-dir":            "data_dir",
	"backend":             "backend",
	"key":                 "storage_key",
	"validate":            "validate",
	"schema":              "schema_file",
	"save-retries":        "save_retries",
	"save-retry-delay-ms": "save_retry_delay_ms",
	"log-level":           "log_level",
	"log-format":          "log_format",
	"log-timestamps":      "log_timestamps",
	"log-caller":          "log_caller",
	"log-file":            "log_file",
}

// parseFlags defines the global flags on fs, parses args into cfg and marks
// explicitly set flags in sources. Flag defaults are the values already
// layered from files and the environment.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasks", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Directory holding the task data")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Storage backend (file, sqlite, memory)")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key for the task collection")
	fs.BoolVar(&cfg.Validate, "validate", cfg.Validate, "Validate stored data against the schema on load")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Schema file overriding the embedded schema")

	// Saves
	fs.IntVar(&cfg.SaveRetries, "save-retries", cfg.SaveRetries, "Extra attempts after a failed save")
	fs.IntVar(&cfg.SaveRetryDelayMS, "save-retry-delay-ms", cfg.SaveRetryDelayMS, "Delay between save attempts (milliseconds)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Log file used while the TUI is running")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
