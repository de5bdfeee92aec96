// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mwiater/mdextract/internal/layout"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "mdextract.yaml"
	// DefaultOutputDir is where extracted files land when no output is configured.
	DefaultOutputDir = "scraper"
	// defaultLogLevel is used when the config omits logLevel.
	defaultLogLevel = "info"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// Config represents the top-level application configuration.
type Config struct {
	Debug        bool     `json:"debug" mapstructure:"debug"`
	Output       string   `json:"output" mapstructure:"output"`
	Flat         bool     `json:"flat" mapstructure:"flat"`
	Exclude      []string `json:"exclude,omitempty" mapstructure:"exclude"`
	PatternsFile string   `json:"patternsFile,omitempty" mapstructure:"patternsFile"`
	LogFile      string   `json:"logFile,omitempty" mapstructure:"logFile"`
	LogLevel     string   `json:"logLevel,omitempty" mapstructure:"logLevel"`
	DryRun       bool     `json:"dryRun" mapstructure:"dryRun"`
	Force        bool     `json:"force" mapstructure:"force"`
	ConfigPath   string   `json:"-" mapstructure:"-"`
}

// OutputDir returns the output root, applying a default if not set.
func (c Config) OutputDir() string {
	if out := strings.TrimSpace(c.Output); out != "" {
		return out
	}
	return DefaultOutputDir
}

// LogFilePath returns the path to the application log file. An empty path
// means console only.
func (c Config) LogFilePath() string {
	return strings.TrimSpace(c.LogFile)
}

// Level returns the normalized log level, honouring the debug switch.
func (c Config) Level() string {
	if c.Debug {
		return "debug"
	}
	switch level := strings.ToLower(strings.TrimSpace(c.LogLevel)); level {
	case "":
		return defaultLogLevel
	case "warning":
		return "warn"
	default:
		return level
	}
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if _, ok := validLogLevels[c.Level()]; !ok {
		errs = append(errs, fmt.Errorf("invalid logLevel %q (want debug, info, warn or error)", c.LogLevel))
	}
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err))
		}
	}
	return errors.Join(errs...)
}

// Patterns returns the routing table: built-in patterns overlaid with the
// patterns file, when one is configured.
func (c Config) Patterns() ([]layout.Pattern, error) {
	base := layout.DefaultPatterns()
	if strings.TrimSpace(c.PatternsFile) == "" {
		return base, nil
	}
	custom, err := LoadPatterns(c.PatternsFile)
	if err != nil {
		return nil, err
	}
	return layout.Merge(base, custom), nil
}
