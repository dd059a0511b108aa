// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

const (
	// LogLevelDebug logs every archive entry.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo logs one line per operation.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn logs skipped entries and overwrites only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError logs failures only.
	LogLevelError LogLevel = "error"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
)

type (
	// LogLevel is the minimum severity written by the logger.
	LogLevel string

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// Config holds the application configuration.
	Config struct {
		// WorkDir is scanned for archives; relative paths resolve against it.
		WorkDir string `json:"work_dir" mapstructure:"work_dir" toml:"work_dir"`
		// Extract configures archive extraction.
		Extract ExtractConfig `json:"extract" mapstructure:"extract" toml:"extract"`
		// Zip configures directory packaging.
		Zip ZipConfig `json:"zip" mapstructure:"zip" toml:"zip"`
		// Log configures the logger.
		Log LogConfig `json:"log" mapstructure:"log" toml:"log"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui" toml:"ui"`
	}

	// ExtractConfig configures archive extraction.
	ExtractConfig struct {
		// Destination is the default extraction directory; empty means WorkDir.
		Destination string `json:"destination" mapstructure:"destination" toml:"destination"`
		// ExcludeLeadingDir drops a single wrapping top-level folder.
		ExcludeLeadingDir bool `json:"exclude_leading_dir" mapstructure:"exclude_leading_dir" toml:"exclude_leading_dir"`
	}

	// ZipConfig configures directory packaging.
	ZipConfig struct {
		// NamePrefix prefixes generated archive names.
		NamePrefix string `json:"name_prefix" mapstructure:"name_prefix" toml:"name_prefix"`
		// Exclude lists entry names that are never packed.
		Exclude []string `json:"exclude" mapstructure:"exclude" toml:"exclude"`
	}

	// LogConfig configures the logger.
	LogConfig struct {
		Level LogLevel `json:"level" mapstructure:"level" toml:"level"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		// ColorScheme selects the markdown style for help pages.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme" toml:"color_scheme"`
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		WorkDir: ".",
		Zip: ZipConfig{
			NamePrefix: "zipper",
			Exclude:    []string{},
		},
		Log: LogConfig{Level: LogLevelInfo},
		UI:  UIConfig{ColorScheme: ColorSchemeAuto},
	}
}

// Validate returns an error wrapping ErrInvalidLogLevel for unknown levels.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: debug, info, warn, error)", ErrInvalidLogLevel, string(l))
	}
}

// Level converts l to a charmbracelet/log level. Unknown values map to info.
func (l LogLevel) Level() log.Level {
	switch l {
	case LogLevelDebug:
		return log.DebugLevel
	case LogLevelWarn:
		return log.WarnLevel
	case LogLevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Validate returns an error wrapping ErrInvalidColorScheme for unknown schemes.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: auto, dark, light)", ErrInvalidColorScheme, string(c))
	}
}

// Validate checks every enumerated field of the configuration.
func (c *Config) Validate() error {
	return errors.Join(c.Log.Level.Validate(), c.UI.ColorScheme.Validate())
}
