// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ndeet/unzipper/internal/config"
	"github.com/ndeet/unzipper/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `unzipper config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage unzipper configuration",
		Long: `Manage unzipper configuration.

Configuration is stored in:
  - Linux: ~/.config/unzipper/config.cue
  - macOS: ~/Library/Application Support/unzipper/config.cue
  - Windows: %APPDATA%\unzipper\config.cue

A ./unzipper.cue file is used when the user file does not exist.
UNZIPPER_* environment variables override both, e.g.
UNZIPPER_EXTRACT_EXCLUDE_LEADING_DIR=true.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := showConfig(cmd.OutOrStdout(), app.cfg, app.cfgPath, format); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, cue or toml")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig(app.Fs, "")
			if err != nil {
				return app.fail(cmd, issue.NewErrorContext().
					WithOperation("create configuration").
					WithIssue(issue.KindIssue(err)).
					WithSuggestion("Check that your config directory is writable").
					Wrap(err).
					BuildError())
			}

			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Configuration already exists at %s\n",
					SubtitleStyle.Render("•"), PathStyle.Render(path))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Created default configuration at %s\n",
				SuccessStyle.Render("✓"), PathStyle.Render(path))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path("")
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, cfgPath, format string) error {
	switch strings.ToLower(format) {
	case "cue":
		fmt.Fprint(w, config.GenerateCUE(cfg))
		return nil
	case "toml":
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
		return nil
	case "text", "":
	default:
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("unknown format %q (valid: text, cue, toml)", format)}
	}

	keyStyle := PathStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if cfgPath != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("work_dir"), valueStyle.Render(cfg.WorkDir))

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("extract"))
	destination := cfg.Extract.Destination
	if destination == "" {
		destination = "(working directory)"
	}
	fmt.Fprintf(w, "  destination: %s\n", valueStyle.Render(destination))
	fmt.Fprintf(w, "  exclude_leading_dir: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Extract.ExcludeLeadingDir)))

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("zip"))
	fmt.Fprintf(w, "  name_prefix: %s\n", valueStyle.Render(cfg.Zip.NamePrefix))
	if len(cfg.Zip.Exclude) == 0 {
		fmt.Fprintf(w, "  exclude: %s\n", SubtitleStyle.Render("(none)"))
	} else {
		fmt.Fprintf(w, "  exclude: %s\n", valueStyle.Render(strings.Join(cfg.Zip.Exclude, ", ")))
	}

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))

	fmt.Fprintf(w, "\n%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))

	return nil
}
