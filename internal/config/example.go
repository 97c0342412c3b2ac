package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasks configuration file
# Values can be overridden by TASKS_* environment variables or CLI flags

# Directory holding the task data (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.tasks"

# Storage backend: file (one JSON file per key), sqlite (tasks.db) or memory
backend = "file"

# Key the task collection is stored under
storage_key = "@tasks"

# Validate stored data against the JSON Schema when loading
validate = true

# Schema file overriding the embedded one
# schema_file = "~/.tasks/tasks.schema.json"

# Extra attempts after a failed save, and the delay between them
save_retries = 2
save_retry_delay_ms = 200

# Logging: debug, info, warn, error / text, json, logfmt
log_level = "info"
log_format = "text"
log_timestamps = true
log_caller = false

# The TUI logs here instead of the terminal (default: <data_dir>/tasks.log)
# log_file = "~/.tasks/tasks.log"
`
}
