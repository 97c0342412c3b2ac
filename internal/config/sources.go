package config

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.Backend = DefaultBackend
	cfg.StorageKey = DefaultStorageKey
	cfg.Validate = DefaultValidate
	cfg.SaveRetries = DefaultSaveRetries
	cfg.SaveRetryDelayMS = DefaultSaveRetryDelayMS
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = true
}

// Default returns a finalized config with only built-in defaults applied.
func Default() (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)
	if err := finalizeConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFile returns the highest-priority config file that was read, or "".
func (cws *ConfigWithSources) ConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// Write prints every field with its value and source.
func (cws *ConfigWithSources) Write(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, field := range configFields() {
		source := cws.Sources[field]
		if source == "" {
			source = SourceDefault
		}
		fmt.Fprintf(tw, "%s\t%s\t(%s)\n", field, cws.Config.Value(field), source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(cws.Files) == 0 {
		_, err := fmt.Fprintln(w, "\nNo config file found.")
		return err
	}
	fmt.Fprintln(w, "\nConfig files:")
	for _, path := range cws.Files {
		if _, err := fmt.Fprintf(w, "  %s\n", path); err != nil {
			return err
		}
	}
	return nil
}
