// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/ndeet/unzipper/internal/issue"
	"github.com/ndeet/unzipper/pkg/catalog"
	"github.com/ndeet/unzipper/pkg/fsop"

	"github.com/spf13/cobra"
)

var errNoArchives = fmt.Errorf("%w: directory holds no archives", fsop.ErrNotFound)

func newListCommand(app *App) *cobra.Command {
	var extractableOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archives in the working directory",
		Long: `List the archives sitting directly in the working directory.

Split archive parts are shown by their first part (.001) only.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := catalog.Scan(app.Fs, app.workDir)
			if err != nil {
				return app.fail(cmd, issue.FromOp(err, "list archives", app.workDir))
			}
			if extractableOnly {
				entries = catalog.Filter(entries, func(e catalog.Entry) bool { return e.Kind.Extractable() })
			}
			if len(entries) == 0 {
				return app.fail(cmd, issue.NewErrorContext().
					WithOperation("list archives").
					WithResource(app.workDir).
					WithIssue(issue.NoArchivesId).
					WithSuggestion("Use --dir to point at another directory").
					Wrap(errNoArchives).
					BuildError())
			}

			renderEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}

	cmd.Flags().BoolVar(&extractableOnly, "extractable", false, "hide split archive parts that need joining first")

	return cmd
}

func renderEntries(w io.Writer, entries []catalog.Entry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s%s  %s\n",
			kindColumnStyle.Render(e.Kind.String()),
			sizeColumnStyle.Render(humanSize(e.Size)),
			PathStyle.Render(e.Name))
	}
}

// humanSize formats n bytes with a binary unit, e.g. "1.5 MiB".
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
