// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ndeet/unzipper/internal/issue"
	"github.com/ndeet/unzipper/pkg/cueutil"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "unzipper"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFile is looked up in the current directory when no user config exists.
	LocalConfigFile = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes environment overrides, e.g. UNZIPPER_ZIP_NAME_PREFIX.
	EnvPrefix = "UNZIPPER"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the unzipper configuration directory using platform-specific
// conventions: %APPDATA% on Windows, ~/Library/Application Support on macOS and
// $XDG_CONFIG_HOME (defaulting to ~/.config) elsewhere.
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Path returns the user config file path inside dir, or inside ConfigDir when
// dir is empty.
func Path(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, ConfigFileName+"."+ConfigFileExt), nil
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("work_dir", defaults.WorkDir)
	v.SetDefault("extract.destination", defaults.Extract.Destination)
	v.SetDefault("extract.exclude_leading_dir", defaults.Extract.ExcludeLeadingDir)
	v.SetDefault("zip.name_prefix", defaults.Zip.NamePrefix)
	v.SetDefault("zip.exclude", defaults.Zip.Exclude)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadWithOptions resolves the config file, merges it over the defaults and
// returns the decoded configuration with the path it came from ("" when none).
func loadWithOptions(ctx context.Context, afs afero.Fs, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()
	resolvedPath := ""

	// An explicit --config path must exist; the implicit locations are optional.
	if opts.ConfigFilePath != "" {
		if !fileExists(afs, opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'unzipper config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cuePath, err := Path(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}
		switch {
		case fileExists(afs, cuePath):
			resolvedPath = cuePath
		case fileExists(afs, LocalConfigFile):
			resolvedPath = LocalConfigFile
		}
	}

	if resolvedPath != "" {
		if err := loadCUEIntoViper(afs, v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'unzipper config init' to write a fresh default file").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema, so enumerations are checked again.
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check UNZIPPER_* environment variables for typos").
			Wrap(err).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// Fields are optional, so the file only needs to be valid, not concrete.
func loadCUEIntoViper(afs afero.Fs, v *viper.Viper, path string) error {
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, "#Config", data, cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

func fileExists(afs afero.Fs, path string) bool {
	info, err := afs.Stat(path)
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default configuration to dir (ConfigDir when
// empty) unless a config file already exists there. It returns the file path
// and whether it was written.
func CreateDefaultConfig(afs afero.Fs, dir string) (string, bool, error) {
	cfgPath, err := Path(dir)
	if err != nil {
		return "", false, err
	}

	if _, err := afs.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := Save(afs, cfgPath, DefaultConfig()); err != nil {
		return "", false, err
	}
	return cfgPath, true, nil
}

// Save writes cfg as CUE to path, creating parent directories.
func Save(afs afero.Fs, path string, cfg *Config) error {
	if err := afs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := afero.WriteFile(afs, path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// Unzipper Configuration File\n")
	sb.WriteString("// Every field is optional. UNZIPPER_* environment variables take precedence.\n\n")

	fmt.Fprintf(&sb, "work_dir: %q\n", cfg.WorkDir)

	sb.WriteString("\nextract: {\n")
	fmt.Fprintf(&sb, "\tdestination: %q\n", cfg.Extract.Destination)
	fmt.Fprintf(&sb, "\texclude_leading_dir: %v\n", cfg.Extract.ExcludeLeadingDir)
	sb.WriteString("}\n")

	sb.WriteString("\nzip: {\n")
	fmt.Fprintf(&sb, "\tname_prefix: %q\n", cfg.Zip.NamePrefix)
	if len(cfg.Zip.Exclude) > 0 {
		sb.WriteString("\texclude: [\n")
		for _, name := range cfg.Zip.Exclude {
			fmt.Fprintf(&sb, "\t\t%q,\n", name)
		}
		sb.WriteString("\t]\n")
	} else {
		sb.WriteString("\texclude: []\n")
	}
	sb.WriteString("}\n")

	sb.WriteString("\nlog: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Log.Level)
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	sb.WriteString("}\n")

	return sb.String()
}

// GenerateTOML renders the configuration as TOML, for tooling that does not read CUE.
func GenerateTOML(cfg *Config) (string, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config as TOML: %w", err)
	}
	return string(data), nil
}
