// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ndeet/unzipper/internal/config"
	"github.com/ndeet/unzipper/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type rootFlags struct {
	verbose bool
	cfgFile string
	dir     string
}

// NewRootCommand builds the command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "unzipper",
		Short: "Extract, zip and join archives in a directory",
		Long: TitleStyle.Render("unzipper") + SubtitleStyle.Render(" - extract, zip and join archives in place") + `

unzipper works on the archives sitting in one directory, typically a web
host's upload folder. It extracts zip, rar, gzip, tar, lz4 and snappy files,
packages directories into timestamped zip files and reassembles split
archives (.001, .002, ...).

` + SubtitleStyle.Render("Examples:") + `
  unzipper list                          List archives in the working directory
  unzipper extract site.zip --exclude-leading-dir
  unzipper zip public                    Create zipper-YYYY-MM-DD--HH-MM.zip
  unzipper join backup.zip.001           Reassemble a split archive
  unzipper config show                   Show the effective configuration`,
		Args: usageArgs(cobra.NoArgs),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	rootCmd.SetFlagErrorFunc(usageFlagError)

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	rootCmd.PersistentFlags().StringVar(&flags.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/unzipper/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", "", "working directory (default from config work_dir)")

	rootCmd.AddCommand(
		newListCommand(app),
		newExtractCommand(app),
		newZipCommand(app),
		newJoinCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the code of the failure kind.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// setup loads configuration and resolves the working directory. Config errors
// are reported as warnings; the command continues with defaults.
func (a *App) setup(cmd *cobra.Command, flags *rootFlags) error {
	cfg, cfgPath, err := a.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.cfgFile})
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, flags.verbose))
		cfg = config.DefaultConfig()
		cfgPath = ""
	}
	a.cfg = cfg
	a.cfgPath = cfgPath
	a.verbose = flags.verbose || cfg.UI.Verbose
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Log.Level, a.verbose)

	dir := flags.dir
	if dir == "" {
		dir = cfg.WorkDir
	}
	workDir, err := filepath.Abs(dir)
	if err != nil {
		return a.fail(cmd, fmt.Errorf("failed to resolve working directory %s: %w", dir, err))
	}
	a.workDir = workDir

	a.logger.Debug("configuration loaded", "config", cfgPath, "work_dir", workDir)
	return nil
}

// fail prints err once, styled, and returns it wrapped in an ExitError so
// fang does not print it again.
func (a *App) fail(cmd *cobra.Command, err error) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	stderr := cmd.ErrOrStderr()
	fmt.Fprintln(stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, a.verbose))

	if a.verbose {
		if page := issuePage(err); page != nil {
			if rendered, renderErr := page.Render(string(a.cfg.UI.ColorScheme)); renderErr == nil {
				fmt.Fprint(stderr, rendered)
			}
		}
	}

	return &ExitError{Code: exitCodeFor(err), Err: err}
}

// issuePage returns the catalog page attached to err, falling back to the
// page for its fsop kind.
func issuePage(err error) *issue.Issue {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return issue.Get(ae.Issue)
	}
	return issue.Get(issue.KindIssue(err))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
