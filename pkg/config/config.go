package config

import (
	"gopkg.in/yaml.v3"

	"github.com/sdejongh/globsync/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Sync        SyncConfig        `yaml:"sync"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SyncConfig holds sync-related settings
type SyncConfig struct {
	Base            string             `yaml:"base"`
	UpdateAndDelete bool               `yaml:"update_and_delete"`
	IgnoreInDest    StringList         `yaml:"ignore_in_dest"`
	Verbose         bool               `yaml:"verbose"`
	Containment     models.Containment `yaml:"containment"`
}

// StringList is a list of strings that may also be written as a single
// scalar in YAML
type StringList []string

// UnmarshalYAML accepts either a scalar or a sequence
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	}

	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers     int   `yaml:"max_workers"`
	BandwidthLimit int64 `yaml:"bandwidth_limit"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show progress bar
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Format  string `yaml:"format"` // "json" or "text"
	Level   string `yaml:"level"`  // "debug", "info", "warn", "error"
	File    string `yaml:"file"`   // Log file path (empty = no run log)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			UpdateAndDelete: true,
			Containment:     models.ContainmentSegment,
		},
		Performance: PerformanceConfig{
			MaxWorkers:     models.DefaultMaxWorkers,
			BandwidthLimit: 0,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: false,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Format:  "json",
			Level:   "info",
			File:    "",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return err
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// Options returns the sync options described by the configuration
func (c *Config) Options() *models.Options {
	return &models.Options{
		UpdateAndDelete: c.Sync.UpdateAndDelete,
		Verbose:         c.Sync.Verbose,
		Base:            c.Sync.Base,
		IgnoreInDest:    append([]string(nil), c.Sync.IgnoreInDest...),
		Containment:     c.Sync.Containment,
		MaxWorkers:      c.Performance.MaxWorkers,
		BandwidthLimit:  c.Performance.BandwidthLimit,
	}
}
