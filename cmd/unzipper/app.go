// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ndeet/unzipper/internal/config"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// App wires CLI services and shared dependencies. All Cobra handlers
	// receive an App and delegate filesystem work through its Fs.
	App struct {
		Fs     afero.Fs
		Config ConfigProvider
		Now    func() time.Time

		stdout io.Writer
		stderr io.Writer

		// Populated by the root command before any subcommand runs.
		verbose bool
		cfg     *config.Config
		cfgPath string
		logger  *log.Logger
		workDir string
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Fs     afero.Fs
		Config ConfigProvider
		Now    func() time.Time
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider(deps.Fs)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}

	return &App{
		Fs:     deps.Fs,
		Config: deps.Config,
		Now:    deps.Now,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		cfg:    config.DefaultConfig(),
		logger: log.New(io.Discard),
	}
}

// newLogger builds the CLI logger. verbose forces debug level.
func newLogger(w io.Writer, level config.LogLevel, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "unzipper"})
	logger.SetLevel(level.Level())
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// resolve makes p absolute against the working directory. An empty p
// resolves to the working directory itself.
func (a *App) resolve(p string) string {
	if p == "" {
		return a.workDir
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(a.workDir, p)
}
