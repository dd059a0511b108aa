// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/ndeet/unzipper/internal/issue"
	"github.com/ndeet/unzipper/pkg/catalog"
	"github.com/ndeet/unzipper/pkg/extract"

	"github.com/spf13/cobra"
)

func newExtractCommand(app *App) *cobra.Command {
	var (
		dest              string
		excludeLeadingDir bool
	)

	cmd := &cobra.Command{
		Use:   "extract <archive>",
		Short: "Extract an archive into a directory",
		Long: `Extract an archive into a directory.

Supported formats: .zip, .rar, .tar, .tar.gz, .tgz, .gz, .lz4 and .sz.
With --exclude-leading-dir, an archive whose content is wrapped in a single
top-level folder has that folder removed, so its children land directly in
the destination.`,
		Example: `  # Extract next to the archive
  unzipper extract wordpress.zip

  # Drop the wrapping "wordpress/" folder
  unzipper extract wordpress.zip --exclude-leading-dir --dest public`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("exclude-leading-dir") {
				excludeLeadingDir = app.cfg.Extract.ExcludeLeadingDir
			}
			if dest == "" {
				dest = app.cfg.Extract.Destination
			}

			archivePath := app.resolve(args[0])
			res, err := extract.Extract(cmd.Context(), app.Fs, archivePath, app.resolve(dest),
				extract.WithExcludeLeadingDir(excludeLeadingDir),
				extract.WithLogger(app.logger),
			)
			if err != nil {
				var hints []string
				if catalog.KindOf(archivePath) == catalog.KindMultipart {
					hints = append(hints, fmt.Sprintf("Join the parts first: unzipper join %s", filepath.Base(archivePath)))
				}
				return app.fail(cmd, issue.FromOp(err, "extract archive", archivePath, hints...))
			}

			note := ""
			if res.Flattened {
				note = SubtitleStyle.Render(" (leading folder removed)")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Extracted %s to %s: %d files, %s%s\n",
				SuccessStyle.Render("✓"),
				PathStyle.Render(filepath.Base(res.Archive)),
				PathStyle.Render(res.Destination),
				res.Files, humanSize(res.Bytes), note)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination directory (default from config, else the working directory)")
	cmd.Flags().BoolVar(&excludeLeadingDir, "exclude-leading-dir", false, "remove a single wrapping top-level folder")

	return cmd
}
