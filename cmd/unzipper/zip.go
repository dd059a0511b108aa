// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/ndeet/unzipper/internal/issue"
	"github.com/ndeet/unzipper/pkg/packer"

	"github.com/spf13/cobra"
)

func newZipCommand(app *App) *cobra.Command {
	var (
		output  string
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "zip [directory]",
		Short: "Package a directory into a zip file",
		Long: `Package a directory, and everything below it, into a zip file.

The archive is written to the working directory as
<prefix>-YYYY-MM-DD--HH-MM.zip unless --output is given. Entry names start
with the directory's own name; empty directories are kept.`,
		Example: `  # Package the working directory
  unzipper zip

  # Package public/ without VCS metadata
  unzipper zip public --exclude .git --exclude node_modules`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := app.workDir
			if len(args) == 1 {
				source = app.resolve(args[0])
			}
			if output == "" {
				output = packer.DefaultArchiveName(app.cfg.Zip.NamePrefix, app.Now())
			}

			names := slices.Concat(app.cfg.Zip.Exclude, exclude)
			res, err := packer.ZipDirectory(app.Fs, packer.PackRequest{
				SourcePath:        source,
				OutputArchivePath: app.resolve(output),
			},
				packer.WithExclude(packer.ExcludeNames(names...)),
				packer.WithLogger(app.logger),
			)
			if err != nil {
				return app.fail(cmd, issue.FromOp(err, "zip directory", source))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Zipped %s into %s: %d entries\n",
				SuccessStyle.Render("✓"),
				PathStyle.Render(filepath.Base(source)),
				PathStyle.Render(res.Path),
				res.Entries)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default <prefix>-YYYY-MM-DD--HH-MM.zip)")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "entry name to leave out (repeatable, added to zip.exclude)")

	return cmd
}
