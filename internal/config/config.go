// Package config provides YAML-based configuration loading for botwalk.
package config

import "time"

// Config holds all runtime settings.
type Config struct {
	// StepDelayMS is the pause after each program step, in milliseconds.
	StepDelayMS int `yaml:"step_delay_ms"`

	// LevelsDir is an extra directory of level files, searched in addition
	// to the built-in levels. Empty means built-ins only.
	LevelsDir string `yaml:"levels_dir"`

	// DBPath is the SQLite database location for attempts/completions.
	DBPath string `yaml:"db_path"`

	// Telemetry enables OpenTelemetry tracing of interpreter runs.
	// Exporter settings come from the standard OTEL_* environment variables.
	Telemetry bool `yaml:"telemetry"`
}

// StepDelay returns the configured step delay as a duration.
func (c Config) StepDelay() time.Duration {
	return time.Duration(c.StepDelayMS) * time.Millisecond
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		StepDelayMS: 350,
		DBPath:      "~/.botwalk/botwalk.db",
	}
}
